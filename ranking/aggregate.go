// Package ranking computes grouped, tie-broken standings for a competition
// from its completed races and a ranking-system configuration. The compute
// path is pure over an in-memory snapshot; Loader builds the snapshot from
// the database.
package ranking

import (
	"encoding/json"
	"sort"

	"github.com/nasreddinesoltani/trf-portal-api/models"
	"github.com/nasreddinesoltani/trf-portal-api/scoring"
)

// Seat is one crew member of a lane's entry, in seat order.
type Seat struct {
	AthleteID int
	Name      string
}

// RaceRow is one lane of one completed race, joined flat.
type RaceRow struct {
	RaceID       int
	EventID      int
	StageID      int
	StageSeq     int
	CategoryID   int
	Gender       models.Gender
	CrewSize     int
	LaneCapacity int
	LaneNumber   int
	EntryID      int
	ClubID       int
	ClubName     string
	ClubCode     string
	Result       models.LaneResult
	FinishMS     *int
	Seats        []Seat
}

// StageInfo identifies one journey leg, ordered by sequence.
type StageInfo struct {
	StageID  int    `bun:"stage_id" json:"stageID"`
	Sequence int    `bun:"sequence" json:"sequence"`
	Name     string `bun:"name" json:"name"`
}

// Snapshot is the full "as of now" input to a ranking computation.
type Snapshot struct {
	Rows       []RaceRow
	Stages     []StageInfo
	Categories map[int]*models.Category
}

// GroupMeta carries display metadata alongside a group key.
type GroupMeta struct {
	Key           string          `json:"key"`
	Gender        models.Gender   `json:"gender"`
	CategoryID    int             `json:"categoryID,omitempty"`
	CategoryCode  string          `json:"categoryCode,omitempty"`
	CategoryTitle json.RawMessage `json:"categoryTitles,omitempty"`
}

// Entry is one ranked entity within a group. StagePoints is aligned with
// Result.Stages and only populated for multi-stage all-journeys systems.
type Entry struct {
	Rank           int               `json:"rank"`
	EntityType     models.EntityType `json:"entityType"`
	EntityID       int               `json:"entityID"`
	Name           string            `json:"name"`
	ClubCode       string            `json:"clubCode,omitempty"`
	Points         int               `json:"points"`
	Medals         scoring.Medals    `json:"medals"`
	PositionCounts map[int]int       `json:"positionCounts"`
	StagePoints    []int             `json:"stagePoints,omitempty"`
}

// Result is a full grouped standings computation.
type Result struct {
	GroupBy     models.GroupBy       `json:"groupBy"`
	ScoringMode models.ScoringMode   `json:"scoringMode"`
	Stages      []StageInfo          `json:"stages"`
	Groups      map[string][]Entry   `json:"rankings"`
	GroupMeta   map[string]GroupMeta `json:"groupMetadata"`
}

// entityKey identifies one scored entity on its axis.
type entityKey struct {
	kind models.EntityType
	id   int
}

// stageScore accumulates one entity's outcomes within one stage.
type stageScore struct {
	points    int
	positions []int
}

// accum accumulates one entity's outcomes across stages within a group.
type accum struct {
	key      entityKey
	name     string
	clubCode string
	stages   map[int]*stageScore
}

// Compute runs a full standings computation for one ranking system over a
// snapshot. A data inconsistency (a lane whose crew does not match the boat
// class) aborts the whole computation; standings are complete or withheld.
func Compute(sys *models.RankingSystem, snap *Snapshot) (*Result, error) {
	if err := sys.Validate(); err != nil {
		return nil, err
	}

	table := sys.Points()
	byRace := map[int][]RaceRow{}
	raceOrder := []int{}
	for _, row := range snap.Rows {
		if len(row.Seats) != row.CrewSize {
			return nil, models.Validationf(
				"race %d lane %d has %d seats, boat class needs %d",
				row.RaceID, row.LaneNumber, len(row.Seats), row.CrewSize)
		}
		if _, ok := byRace[row.RaceID]; !ok {
			raceOrder = append(raceOrder, row.RaceID)
		}
		byRace[row.RaceID] = append(byRace[row.RaceID], row)
	}

	groups := map[string]map[entityKey]*accum{}
	meta := map[string]GroupMeta{}

	for _, raceID := range raceOrder {
		rows := byRace[raceID]
		lanes := make([]*models.Lane, len(rows))
		byLane := make(map[int]RaceRow, len(rows))
		for i, row := range rows {
			lanes[i] = &models.Lane{Number: row.LaneNumber, Result: row.Result, FinishMS: row.FinishMS}
			byLane[row.LaneNumber] = row
		}

		placements := scoring.ResolveFinishOrder(lanes, rows[0].LaneCapacity, sys.DNFGetsPoints)
		for _, pl := range placements {
			row := byLane[pl.Lane.Number]
			points := scoring.PointsForPosition(table, sys.MaxScoringPosition, pl.Position)
			for _, ek := range routeEntities(sys, row) {
				gk, gm, err := groupKey(sys, row, snap.Categories)
				if err != nil {
					return nil, err
				}
				if _, ok := groups[gk]; !ok {
					groups[gk] = map[entityKey]*accum{}
					meta[gk] = gm
				}
				acc, ok := groups[gk][ek.key]
				if !ok {
					acc = &accum{key: ek.key, name: ek.name, clubCode: ek.clubCode, stages: map[int]*stageScore{}}
					groups[gk][ek.key] = acc
				}
				ss, ok := acc.stages[row.StageID]
				if !ok {
					ss = &stageScore{}
					acc.stages[row.StageID] = ss
				}
				ss.points += points
				ss.positions = append(ss.positions, pl.Position)
			}
		}
	}

	res := &Result{
		GroupBy:     sys.GroupBy,
		ScoringMode: sys.ScoringMode,
		Stages:      snap.Stages,
		Groups:      map[string][]Entry{},
		GroupMeta:   meta,
	}

	breakdown := sys.JourneyMode == models.JourneyAll && len(snap.Stages) > 1
	for gk, entities := range groups {
		res.Groups[gk] = rankGroup(sys, snap, entities, breakdown)
	}
	return res, nil
}

// routedEntity is one entity credited with a lane's result.
type routedEntity struct {
	key      entityKey
	name     string
	clubCode string
}

// routeEntities applies the entity-axis routing of §entityType/pointMode:
// athlete systems credit every seated athlete, club systems credit the
// club, and club systems in mixed mode send single-boat results to the
// sculler instead of the club.
func routeEntities(sys *models.RankingSystem, row RaceRow) []routedEntity {
	switch sys.EntityType {
	case models.EntityClub:
		if sys.PointMode == models.PointModeMixed && row.CrewSize == 1 {
			s := row.Seats[0]
			return []routedEntity{{
				key:      entityKey{kind: models.EntityAthlete, id: s.AthleteID},
				name:     s.Name,
				clubCode: row.ClubCode,
			}}
		}
		return []routedEntity{{
			key:  entityKey{kind: models.EntityClub, id: row.ClubID},
			name: row.ClubName,
		}}
	default: // athlete
		out := make([]routedEntity, 0, len(row.Seats))
		for _, s := range row.Seats {
			out = append(out, routedEntity{
				key:      entityKey{kind: models.EntityAthlete, id: s.AthleteID},
				name:     s.Name,
				clubCode: row.ClubCode,
			})
		}
		return out
	}
}

func groupKey(sys *models.RankingSystem, row RaceRow, cats map[int]*models.Category) (string, GroupMeta, error) {
	cat, ok := cats[row.CategoryID]
	if !ok {
		return "", GroupMeta{}, models.Validationf("race %d references unknown category %d", row.RaceID, row.CategoryID)
	}
	gm := GroupMeta{
		Gender:        row.Gender,
		CategoryID:    cat.CategoryID,
		CategoryCode:  cat.Code,
		CategoryTitle: cat.Titles,
	}
	switch sys.GroupBy {
	case models.GroupByGender:
		gm.Key = string(row.Gender)
		gm.CategoryID = 0
		gm.CategoryCode = ""
		gm.CategoryTitle = nil
	case models.GroupByCategory:
		gm.Key = cat.Code
		gm.Gender = ""
	default: // category_gender
		gm.Key = cat.Code + "_" + string(row.Gender)
	}
	return gm.Key, gm, nil
}

// rankGroup selects stages per journey mode, totals each entity and sorts
// into competition ranking order (ties share a rank, the next rank skips
// the tied count).
func rankGroup(sys *models.RankingSystem, snap *Snapshot, entities map[entityKey]*accum, breakdown bool) []Entry {
	terminal := 0
	for _, st := range snap.Stages {
		if st.Sequence > terminal {
			terminal = st.Sequence
		}
	}
	seqByID := make(map[int]int, len(snap.Stages))
	for _, st := range snap.Stages {
		seqByID[st.StageID] = st.Sequence
	}

	entries := make([]Entry, 0, len(entities))
	for _, acc := range entities {
		counted := selectStages(sys, acc, seqByID, terminal)

		e := Entry{
			EntityType:     acc.key.kind,
			EntityID:       acc.key.id,
			Name:           acc.name,
			ClubCode:       acc.clubCode,
			PositionCounts: map[int]int{},
		}
		positions := []int{}
		for _, stageID := range counted {
			ss := acc.stages[stageID]
			e.Points += ss.points
			for _, p := range ss.positions {
				positions = append(positions, p)
				if p > 0 {
					e.PositionCounts[p]++
				}
			}
		}
		e.Medals = scoring.TallyMedals(positions)
		if breakdown {
			e.StagePoints = make([]int, len(snap.Stages))
			for i, st := range snap.Stages {
				if ss, ok := acc.stages[st.StageID]; ok {
					e.StagePoints[i] = ss.points
				}
			}
		}
		entries = append(entries, e)
	}

	less, sameRank := orderFuncs(sys)
	sort.SliceStable(entries, func(i, j int) bool { return less(entries[i], entries[j]) })
	for i := range entries {
		if i > 0 && sameRank(entries[i-1], entries[i]) {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = i + 1
		}
	}
	return entries
}

// selectStages returns the stage IDs counted for one entity under the
// system's journey mode.
func selectStages(sys *models.RankingSystem, acc *accum, seqByID map[int]int, terminalSeq int) []int {
	ids := make([]int, 0, len(acc.stages))
	for id := range acc.stages {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return seqByID[ids[i]] < seqByID[ids[j]] })

	switch sys.JourneyMode {
	case models.JourneyFinalOnly:
		out := ids[:0]
		for _, id := range ids {
			if seqByID[id] == terminalSeq {
				out = append(out, id)
			}
		}
		return out
	case models.JourneyBestN:
		// Best scores first; earliest stage wins a points tie.
		sort.SliceStable(ids, func(i, j int) bool {
			pi, pj := acc.stages[ids[i]].points, acc.stages[ids[j]].points
			if pi != pj {
				return pi > pj
			}
			return seqByID[ids[i]] < seqByID[ids[j]]
		})
		if len(ids) > sys.BestNCount {
			ids = ids[:sys.BestNCount]
		}
		return ids
	default:
		return ids
	}
}

// orderFuncs returns the sort comparator and the rank-equality predicate
// for the system's scoring mode. Name is only a determinism tiebreak and
// never makes two entities share a rank.
func orderFuncs(sys *models.RankingSystem) (less, sameRank func(a, b Entry) bool) {
	if sys.ScoringMode == models.ScoreMedals {
		less = func(a, b Entry) bool {
			if a.Medals.Total != b.Medals.Total {
				return a.Medals.Total > b.Medals.Total
			}
			if a.Medals.Gold != b.Medals.Gold {
				return a.Medals.Gold > b.Medals.Gold
			}
			if a.Medals.Silver != b.Medals.Silver {
				return a.Medals.Silver > b.Medals.Silver
			}
			if a.Medals.Bronze != b.Medals.Bronze {
				return a.Medals.Bronze > b.Medals.Bronze
			}
			return a.Name < b.Name
		}
		sameRank = func(a, b Entry) bool { return a.Medals == b.Medals }
		return
	}
	less = func(a, b Entry) bool {
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		return a.Name < b.Name
	}
	sameRank = func(a, b Entry) bool { return a.Points == b.Points }
	return
}
