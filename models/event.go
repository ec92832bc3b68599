package models

import "github.com/uptrace/bun"

// Event is one boat-class/category/gender combination within a competition
// stage. It owns its races and, once completed, its medals.
type Event struct {
	bun.BaseModel `bun:"table:events,alias:ev"`

	EventID       int         `bun:"event_id,pk,autoincrement" json:"eventID"`
	CompetitionID int         `bun:"competition_id,notnull,unique:events_no_dupes" json:"competitionID"`
	StageID       int         `bun:"stage_id,notnull" json:"stageID"`
	BoatClassID   int         `bun:"boat_class_id,notnull,unique:events_no_dupes" json:"boatClassID"`
	CategoryID    int         `bun:"category_id,notnull,unique:events_no_dupes" json:"categoryID"`
	Gender        Gender      `bun:"gender,notnull,unique:events_no_dupes" json:"gender"`
	Status        EventStatus `bun:"status,notnull,default:'pending'" json:"status"`
	CurrentPhase  *Phase      `bun:"current_phase" json:"currentPhase,omitempty"`

	// Progression configuration, fixed at event creation.
	HasRepechage    bool `bun:"has_repechage,notnull,default:false" json:"hasRepechage"`
	TTDirectAdvance int  `bun:"tt_direct_advance,notnull" json:"ttDirectAdvance"`
	TTToRepechage   int  `bun:"tt_to_repechage,notnull,default:0" json:"ttToRepechage"`
	AdvancePerHeat  int  `bun:"advance_per_heat,notnull" json:"advancePerHeat"`

	// Medal entry IDs, set when the event completes.
	GoldEntryID   *int `bun:"gold_entry_id" json:"goldEntryID,omitempty"`
	SilverEntryID *int `bun:"silver_entry_id" json:"silverEntryID,omitempty"`
	BronzeEntryID *int `bun:"bronze_entry_id" json:"bronzeEntryID,omitempty"`

	BoatClass *BoatClass `bun:"rel:belongs-to,join:boat_class_id=boat_class_id" json:"-"`
	Category  *Category  `bun:"rel:belongs-to,join:category_id=category_id" json:"-"`
	Races     []*Race    `bun:"rel:has-many,join:event_id=event_id" json:"-"`
}

// MedalSet is the podium of a completed event. Silver and bronze may be
// absent when fewer than three entrants finished.
type MedalSet struct {
	Gold   *int `json:"gold,omitempty"`
	Silver *int `json:"silver,omitempty"`
	Bronze *int `json:"bronze,omitempty"`
}
