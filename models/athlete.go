package models

import "github.com/uptrace/bun"

// Athlete is a licensed athlete. Identity is immutable; club affiliation
// and active status change over seasons.
type Athlete struct {
	bun.BaseModel `bun:"table:athletes,alias:a"`

	AthleteID int    `bun:"athlete_id,pk,autoincrement" json:"athleteID"`
	License   string `bun:"license,notnull,unique" json:"license"`
	FirstName string `bun:"first_name,notnull" json:"firstName"`
	LastName  string `bun:"last_name,notnull" json:"lastName"`
	Gender    Gender `bun:"gender,notnull" json:"gender"`
	BirthDate string `bun:"birth_date,notnull,type:date" json:"birthDate"`
	ClubID    int    `bun:"club_id,notnull" json:"clubID"`
	Active    bool   `bun:"active,notnull,default:true" json:"active"`

	Club *Club `bun:"rel:belongs-to,join:club_id=club_id" json:"-"`
}

// DisplayName is the name shown in standings.
func (a *Athlete) DisplayName() string {
	return a.LastName + " " + a.FirstName
}
