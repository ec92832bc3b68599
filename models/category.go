package models

import (
	"encoding/json"
	"strconv"

	"github.com/uptrace/bun"
)

// Category is an age/eligibility bracket with a gender scope. Titles holds
// display names keyed by language code, stored as data only.
type Category struct {
	bun.BaseModel `bun:"table:categories,alias:ct"`

	CategoryID int             `bun:"category_id,pk,autoincrement" json:"categoryID"`
	Code       string          `bun:"code,notnull,unique" json:"code"`
	Gender     Gender          `bun:"gender,notnull" json:"gender"`
	MinAge     int             `bun:"min_age,notnull" json:"minAge"`
	MaxAge     int             `bun:"max_age,notnull" json:"maxAge"`
	Titles     json.RawMessage `bun:"titles,notnull,type:jsonb" json:"titles"`
	IsMasters  bool            `bun:"is_masters,notnull,default:false" json:"isMasters"`
}

// Title returns the display title for lang, falling back to the code.
func (c *Category) Title(lang string) string {
	var titles map[string]string
	if err := json.Unmarshal(c.Titles, &titles); err == nil {
		if t, ok := titles[lang]; ok && t != "" {
			return t
		}
	}
	return c.Code
}

// AllowsAthlete checks gender scope and competition-age bounds for the
// given season. Competition age is season year minus birth year, the usual
// federation rule, so it ignores the birthday within the year.
func (c *Category) AllowsAthlete(a *Athlete, seasonYear int) error {
	if c.Gender != GenderMixed && a.Gender != c.Gender {
		return &NotEligibleError{Msg: "athlete " + a.License + " gender does not match category " + c.Code}
	}
	if len(a.BirthDate) < 4 {
		return Validationf("athlete %s has invalid birth date %q", a.License, a.BirthDate)
	}
	birthYear, err := strconv.Atoi(a.BirthDate[:4])
	if err != nil {
		return Validationf("athlete %s has invalid birth date %q", a.License, a.BirthDate)
	}
	age := seasonYear - birthYear
	if age < c.MinAge || age > c.MaxAge {
		return &NotEligibleError{Msg: "athlete " + a.License + " age " + strconv.Itoa(age) + " outside category " + c.Code}
	}
	return nil
}
