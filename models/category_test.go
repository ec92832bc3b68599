package models

import (
	"encoding/json"
	"testing"
)

func TestCategoryAllowsAthlete(t *testing.T) {
	juniorM := &Category{
		Code:   "J18M",
		Gender: GenderMen,
		MinAge: 15,
		MaxAge: 18,
	}
	openMixed := &Category{
		Code:   "OPEN",
		Gender: GenderMixed,
		MinAge: 15,
		MaxAge: 99,
	}

	tests := []struct {
		name    string
		cat     *Category
		athlete *Athlete
		season  int
		wantErr func(error) bool
	}{
		{
			name:    "in range",
			cat:     juniorM,
			athlete: &Athlete{License: "TN001", Gender: GenderMen, BirthDate: "2009-03-15"},
			season:  2026,
			wantErr: nil,
		},
		{
			name: "turns category age within the season still counts",
			cat:  juniorM,
			// Born late 2008: still 17 on 1 Jan 2026 but ages to 18 that
			// season, and 2026-2008=18 is in range.
			athlete: &Athlete{License: "TN002", Gender: GenderMen, BirthDate: "2008-12-30"},
			season:  2026,
			wantErr: nil,
		},
		{
			name:    "too old",
			cat:     juniorM,
			athlete: &Athlete{License: "TN003", Gender: GenderMen, BirthDate: "2007-01-01"},
			season:  2026,
			wantErr: IsNotEligible,
		},
		{
			name:    "too young",
			cat:     juniorM,
			athlete: &Athlete{License: "TN004", Gender: GenderMen, BirthDate: "2012-06-01"},
			season:  2026,
			wantErr: IsNotEligible,
		},
		{
			name:    "wrong gender",
			cat:     juniorM,
			athlete: &Athlete{License: "TN005", Gender: GenderWomen, BirthDate: "2009-03-15"},
			season:  2026,
			wantErr: IsNotEligible,
		},
		{
			name:    "mixed category accepts either gender",
			cat:     openMixed,
			athlete: &Athlete{License: "TN006", Gender: GenderWomen, BirthDate: "2000-01-01"},
			season:  2026,
			wantErr: nil,
		},
		{
			name:    "garbage birth date",
			cat:     juniorM,
			athlete: &Athlete{License: "TN007", Gender: GenderMen, BirthDate: "—"},
			season:  2026,
			wantErr: IsValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cat.AllowsAthlete(tt.athlete, tt.season)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("AllowsAthlete() = %v, want nil", err)
				}
				return
			}
			if err == nil || !tt.wantErr(err) {
				t.Fatalf("AllowsAthlete() = %v, want matching error", err)
			}
		})
	}
}

func TestCategoryTitle(t *testing.T) {
	titles, _ := json.Marshal(map[string]string{"fr": "Juniors Hommes", "ar": "أواسط ذكور"})
	cat := &Category{Code: "J18M", Titles: titles}

	if got := cat.Title("fr"); got != "Juniors Hommes" {
		t.Errorf("Title(fr) = %q", got)
	}
	if got := cat.Title("ar"); got != "أواسط ذكور" {
		t.Errorf("Title(ar) = %q", got)
	}
	if got := cat.Title("en"); got != "J18M" {
		t.Errorf("Title(en) = %q, want code fallback", got)
	}
}
