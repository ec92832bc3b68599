package models

import "github.com/uptrace/bun"

// BoatClass describes a boat type: crew size, discipline, weight class and
// which genders may race it. LaneCount is the course capacity used when
// partitioning entrants into heats.
type BoatClass struct {
	bun.BaseModel `bun:"table:boat_classes,alias:bc"`

	BoatClassID int    `bun:"boat_class_id,pk,autoincrement" json:"boatClassID"`
	Code        string `bun:"code,notnull,unique" json:"code"`
	Name        string `bun:"name,notnull" json:"name"`
	CrewSize    int    `bun:"crew_size,notnull" json:"crewSize"`
	Discipline  string `bun:"discipline,notnull" json:"discipline"`
	WeightClass string `bun:"weight_class,notnull,default:'open'" json:"weightClass"`
	Gender      Gender `bun:"gender,notnull" json:"gender"`
	LaneCount   int    `bun:"lane_count,notnull,default:6" json:"laneCount"`
}

// AllowsGender reports whether the boat class may be raced by events of
// the given gender.
func (b *BoatClass) AllowsGender(g Gender) bool {
	return b.Gender == GenderMixed || b.Gender == g
}
