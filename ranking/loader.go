package ranking

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/nasreddinesoltani/trf-portal-api/models"
)

// Loader builds ranking snapshots from the database. Reads are a consistent
// view of completed, non-amended races only; results still being recorded
// simply do not appear yet.
type Loader struct {
	db *bun.DB
}

// NewLoader creates a Loader over the given database.
func NewLoader(db *bun.DB) *Loader {
	return &Loader{db: db}
}

// snapshotRow is a flat scan target for the lanes join: one row per seat of
// one lane of one completed race.
type snapshotRow struct {
	// races / events / stages
	RaceID     int           `bun:"race_id"`
	EventID    int           `bun:"event_id"`
	StageID    int           `bun:"stage_id"`
	StageSeq   int           `bun:"stage_seq"`
	CategoryID int           `bun:"category_id"`
	Gender     models.Gender `bun:"gender"`
	// boat class
	CrewSize     int `bun:"crew_size"`
	LaneCapacity int `bun:"lane_count"`
	// lane
	LaneNumber int               `bun:"number"`
	EntryID    int               `bun:"entry_id"`
	Result     models.LaneResult `bun:"result"`
	FinishMS   *int              `bun:"finish_ms"`
	// entry club
	ClubID   int    `bun:"club_id"`
	ClubName string `bun:"club_name"`
	ClubCode string `bun:"club_code"`
	// seat
	Seat      int    `bun:"seat"`
	AthleteID int    `bun:"athlete_id"`
	FirstName string `bun:"first_name"`
	LastName  string `bun:"last_name"`
}

const snapshotJoinSQL = `
SELECT
	rc.race_id, rc.event_id, ev.stage_id, st.sequence AS stage_seq,
	ev.category_id, ev.gender,
	bc.crew_size, bc.lane_count,
	ln.number, ln.entry_id, ln.result, ln.finish_ms,
	e.club_id, cl.name AS club_name, cl.code AS club_code,
	es.seat, es.athlete_id, a.first_name, a.last_name
FROM lanes ln
INNER JOIN races rc               ON ln.race_id     = rc.race_id
INNER JOIN events ev              ON rc.event_id    = ev.event_id
INNER JOIN stages st              ON ev.stage_id    = st.stage_id
INNER JOIN boat_classes bc        ON ev.boat_class_id = bc.boat_class_id
INNER JOIN categories ct          ON ev.category_id = ct.category_id
INNER JOIN competition_entries e  ON ln.entry_id    = e.entry_id
INNER JOIN clubs cl               ON e.club_id      = cl.club_id
INNER JOIN entry_seats es         ON es.entry_id    = e.entry_id
INNER JOIN athletes a             ON es.athlete_id  = a.athlete_id
`

// Load builds the snapshot for one competition. When includeMasters is
// false, events in masters categories are filtered out before aggregation.
func (l *Loader) Load(ctx context.Context, competitionID int, includeMasters bool) (*Snapshot, error) {
	q := snapshotJoinSQL + `WHERE ev.competition_id = ? AND rc.status = 'completed' AND NOT rc.amended`
	if !includeMasters {
		q += ` AND NOT ct.is_masters`
	}
	q += ` ORDER BY rc.race_id, ln.number, es.seat`

	var rows []snapshotRow
	if err := l.db.NewRaw(q, competitionID).Scan(ctx, &rows); err != nil {
		return nil, err
	}

	var stages []StageInfo
	err := l.db.NewSelect().
		Model((*models.Stage)(nil)).
		ColumnExpr("st.stage_id, st.sequence, st.name").
		Where("st.competition_id = ?", competitionID).
		OrderExpr("st.sequence ASC").
		Scan(ctx, &stages)
	if err != nil {
		return nil, err
	}

	var cats []*models.Category
	if err := l.db.NewSelect().Model(&cats).Scan(ctx); err != nil {
		return nil, err
	}
	catIndex := make(map[int]*models.Category, len(cats))
	for _, c := range cats {
		catIndex[c.CategoryID] = c
	}

	return &Snapshot{
		Rows:       foldSeats(rows),
		Stages:     stages,
		Categories: catIndex,
	}, nil
}

// foldSeats collapses per-seat rows into one RaceRow per lane. Input is
// ordered by race, lane, seat.
func foldSeats(rows []snapshotRow) []RaceRow {
	out := []RaceRow{}
	for _, r := range rows {
		n := len(out)
		if n == 0 || out[n-1].RaceID != r.RaceID || out[n-1].LaneNumber != r.LaneNumber {
			out = append(out, RaceRow{
				RaceID:       r.RaceID,
				EventID:      r.EventID,
				StageID:      r.StageID,
				StageSeq:     r.StageSeq,
				CategoryID:   r.CategoryID,
				Gender:       r.Gender,
				CrewSize:     r.CrewSize,
				LaneCapacity: r.LaneCapacity,
				LaneNumber:   r.LaneNumber,
				EntryID:      r.EntryID,
				ClubID:       r.ClubID,
				ClubName:     r.ClubName,
				ClubCode:     r.ClubCode,
				Result:       r.Result,
				FinishMS:     r.FinishMS,
			})
			n++
		}
		out[n-1].Seats = append(out[n-1].Seats, Seat{
			AthleteID: r.AthleteID,
			Name:      r.LastName + " " + r.FirstName,
		})
	}
	return out
}
