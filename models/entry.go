package models

import "github.com/uptrace/bun"

// CompetitionEntry is one registration: a single athlete or an ordered crew
// bound to a category and boat class within a competition. Approved entries
// seed the first phase of their event.
type CompetitionEntry struct {
	bun.BaseModel `bun:"table:competition_entries,alias:e"`

	EntryID       int         `bun:"entry_id,pk,autoincrement" json:"entryID"`
	CompetitionID int         `bun:"competition_id,notnull" json:"competitionID"`
	EventID       *int        `bun:"event_id" json:"eventID,omitempty"`
	ClubID        int         `bun:"club_id,notnull" json:"clubID"`
	CategoryID    int         `bun:"category_id,notnull" json:"categoryID"`
	BoatClassID   int         `bun:"boat_class_id,notnull" json:"boatClassID"`
	Status        EntryStatus `bun:"status,notnull,default:'pending'" json:"status"`
	SubmittedAt   string      `bun:"submitted_at,notnull,default:current_timestamp" json:"submittedAt"`

	Club  *Club        `bun:"rel:belongs-to,join:club_id=club_id" json:"-"`
	Seats []*EntrySeat `bun:"rel:has-many,join:entry_id=entry_id" json:"seats,omitempty"`
}

// EntrySeat is one seat of an entry's crew, in rowing order. A single boat
// has exactly one seat.
type EntrySeat struct {
	bun.BaseModel `bun:"table:entry_seats,alias:es"`

	ID        int `bun:"id,pk,autoincrement" json:"id"`
	EntryID   int `bun:"entry_id,notnull,unique:entry_seats_no_dupes" json:"entryID"`
	Seat      int `bun:"seat,notnull,unique:entry_seats_no_dupes" json:"seat"`
	AthleteID int `bun:"athlete_id,notnull" json:"athleteID"`

	Athlete *Athlete `bun:"rel:belongs-to,join:athlete_id=athlete_id" json:"-"`
}
