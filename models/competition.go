package models

import "github.com/uptrace/bun"

// Competition is one federation competition, possibly raced over several
// stages (journeys).
type Competition struct {
	bun.BaseModel `bun:"table:competitions,alias:cp"`

	CompetitionID int    `bun:"competition_id,pk,autoincrement" json:"competitionID"`
	Name          string `bun:"name,notnull" json:"name"`
	Season        int    `bun:"season,notnull" json:"season"`
	Venue         string `bun:"venue,notnull" json:"venue"`

	Stages []*Stage `bun:"rel:has-many,join:competition_id=competition_id" json:"stages,omitempty"`
}

// Stage is one journey leg of a competition. The terminal stage is the one
// with the highest sequence number.
type Stage struct {
	bun.BaseModel `bun:"table:stages,alias:st"`

	StageID       int    `bun:"stage_id,pk,autoincrement" json:"stageID"`
	CompetitionID int    `bun:"competition_id,notnull" json:"competitionID"`
	Sequence      int    `bun:"sequence,notnull" json:"sequence"`
	Name          string `bun:"name,notnull" json:"name"`
	Date          string `bun:"date,notnull,type:date" json:"date"`
}
