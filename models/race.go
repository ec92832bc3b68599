package models

import "github.com/uptrace/bun"

// Race is one heat of one phase of an event. Once completed its lane
// results are immutable; corrections supersede the race with a replacement
// rather than editing history, so aggregation stays reproducible.
type Race struct {
	bun.BaseModel `bun:"table:races,alias:rc"`

	RaceID      int        `bun:"race_id,pk,autoincrement" json:"raceID"`
	EventID     int        `bun:"event_id,notnull" json:"eventID"`
	Phase       Phase      `bun:"phase,notnull" json:"phase"`
	Heat        int        `bun:"heat,notnull" json:"heat"`
	Status      RaceStatus `bun:"status,notnull,default:'scheduled'" json:"status"`
	CompletedAt *string    `bun:"completed_at" json:"completedAt,omitempty"`
	Amended     bool       `bun:"amended,notnull,default:false" json:"amended"`
	Supersedes  *int       `bun:"supersedes_race_id" json:"supersedes,omitempty"`

	Event *Event  `bun:"rel:belongs-to,join:event_id=event_id" json:"-"`
	Lanes []*Lane `bun:"rel:has-many,join:race_id=race_id" json:"lanes,omitempty"`
}

// Lane is one lane assignment within a race. FinishMS and Position are nil
// until results are recorded; Position stays nil for non-finishers.
type Lane struct {
	bun.BaseModel `bun:"table:lanes,alias:ln"`

	LaneID   int        `bun:"lane_id,pk,autoincrement" json:"laneID"`
	RaceID   int        `bun:"race_id,notnull,unique:lanes_no_dupes" json:"raceID"`
	Number   int        `bun:"number,notnull,unique:lanes_no_dupes" json:"number"`
	EntryID  int        `bun:"entry_id,notnull" json:"entryID"`
	FinishMS *int       `bun:"finish_ms" json:"finishMS,omitempty"`
	Result   LaneResult `bun:"result,notnull,default:'ok'" json:"result"`
	Position *int       `bun:"position" json:"position,omitempty"`

	Entry *CompetitionEntry `bun:"rel:belongs-to,join:entry_id=entry_id" json:"-"`
}
