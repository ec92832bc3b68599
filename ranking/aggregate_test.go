package ranking

import (
	"encoding/json"
	"testing"

	"github.com/nasreddinesoltani/trf-portal-api/models"
)

func testCategories() map[int]*models.Category {
	return map[int]*models.Category{
		1: {CategoryID: 1, Code: "SEN", Gender: models.GenderMixed, Titles: json.RawMessage(`{"en":"Senior"}`)},
		2: {CategoryID: 2, Code: "J18", Gender: models.GenderMixed, Titles: json.RawMessage(`{"en":"Junior 18"}`)},
	}
}

func testSystem() *models.RankingSystem {
	return &models.RankingSystem{
		Name:               "cup",
		GroupBy:            models.GroupByCategoryGender,
		EntityType:         models.EntityAthlete,
		ScoringMode:        models.ScorePoints,
		PointMode:          models.PointModeAll,
		JourneyMode:        models.JourneyAll,
		MaxScoringPosition: 8,
	}
}

// skiffRow builds a single-sculler lane row.
func skiffRow(raceID, stageID, stageSeq, laneNo, entryID, athleteID int, name string, clubID int, finishMS int) RaceRow {
	ms := finishMS
	return RaceRow{
		RaceID:       raceID,
		EventID:      raceID,
		StageID:      stageID,
		StageSeq:     stageSeq,
		CategoryID:   1,
		Gender:       models.GenderMen,
		CrewSize:     1,
		LaneCapacity: 6,
		LaneNumber:   laneNo,
		EntryID:      entryID,
		ClubID:       clubID,
		ClubName:     "Club",
		ClubCode:     "CL",
		Result:       models.ResultOK,
		FinishMS:     &ms,
		Seats:        []Seat{{AthleteID: athleteID, Name: name}},
	}
}

func stages(n int) []StageInfo {
	out := make([]StageInfo, n)
	for i := range out {
		out[i] = StageInfo{StageID: i + 1, Sequence: i + 1, Name: "stage"}
	}
	return out
}

func TestComputePointsAndRanks(t *testing.T) {
	snap := &Snapshot{
		Stages:     stages(1),
		Categories: testCategories(),
		Rows: []RaceRow{
			skiffRow(1, 1, 1, 1, 10, 100, "Amdouni Karim", 1, 420000),
			skiffRow(1, 1, 1, 2, 11, 101, "Ben Salah Youssef", 1, 415000),
			skiffRow(1, 1, 1, 3, 12, 102, "Trabelsi Omar", 2, 430000),
		},
	}

	res, err := Compute(testSystem(), snap)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	group, ok := res.Groups["SEN_men"]
	if !ok {
		t.Fatalf("missing group SEN_men, got %v", res.Groups)
	}
	if len(group) != 3 {
		t.Fatalf("group has %d entries, want 3", len(group))
	}
	if group[0].Name != "Ben Salah Youssef" || group[0].Points != 20 || group[0].Rank != 1 {
		t.Errorf("winner entry = %+v", group[0])
	}
	if group[1].Points != 12 || group[2].Points != 8 {
		t.Errorf("points = %d,%d want 12,8", group[1].Points, group[2].Points)
	}

	// Points awarded in one race never exceed entrants x winner points.
	total := group[0].Points + group[1].Points + group[2].Points
	if total > 3*20 {
		t.Errorf("race awarded %d points, cap is %d", total, 3*20)
	}

	gm := res.GroupMeta["SEN_men"]
	if gm.CategoryCode != "SEN" || gm.Gender != models.GenderMen {
		t.Errorf("group metadata = %+v", gm)
	}
}

func TestComputeTiesShareRankAndSkip(t *testing.T) {
	// Two athletes with equal totals share rank 1, third is rank 3.
	snap := &Snapshot{
		Stages:     stages(1),
		Categories: testCategories(),
		Rows: []RaceRow{
			// Two separate races, each with its own winner and runner-up.
			skiffRow(1, 1, 1, 1, 10, 100, "Amdouni Karim", 1, 420000),
			skiffRow(1, 1, 1, 2, 11, 101, "Ben Salah Youssef", 1, 425000),
			skiffRow(2, 1, 1, 1, 12, 102, "Trabelsi Omar", 2, 418000),
			skiffRow(2, 1, 1, 2, 13, 103, "Zouari Anis", 2, 419000),
		},
	}

	res, err := Compute(testSystem(), snap)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	group := res.Groups["SEN_men"]
	if len(group) != 4 {
		t.Fatalf("group has %d entries, want 4", len(group))
	}
	if group[0].Rank != 1 || group[1].Rank != 1 {
		t.Errorf("tied winners have ranks %d,%d want 1,1", group[0].Rank, group[1].Rank)
	}
	if group[2].Rank != 3 || group[3].Rank != 3 {
		t.Errorf("tied runners-up have ranks %d,%d want 3,3", group[2].Rank, group[3].Rank)
	}
	// Deterministic alphabetical order inside the tie.
	if group[0].Name > group[1].Name || group[2].Name > group[3].Name {
		t.Errorf("tie order not alphabetical: %q, %q, %q, %q",
			group[0].Name, group[1].Name, group[2].Name, group[3].Name)
	}
}

func TestComputeBestN(t *testing.T) {
	sys := testSystem()
	sys.JourneyMode = models.JourneyBestN
	sys.BestNCount = 2

	// Athlete 100 scores 12, 12, 20 across three stages; best two = 32.
	rival := func(race, stage, seq, laneNo int, ms int) RaceRow {
		return skiffRow(race, stage, seq, laneNo, 20, 200, "Rival Some", 2, ms)
	}
	snap := &Snapshot{
		Stages:     stages(3),
		Categories: testCategories(),
		Rows: []RaceRow{
			skiffRow(1, 1, 1, 1, 10, 100, "Amdouni Karim", 1, 420000),
			rival(1, 1, 1, 2, 410000), // stage 1: 12 points
			skiffRow(2, 2, 2, 1, 10, 100, "Amdouni Karim", 1, 430000),
			rival(2, 2, 2, 2, 410000), // stage 2: 12 points
			skiffRow(3, 3, 3, 1, 10, 100, "Amdouni Karim", 1, 405000),
			rival(3, 3, 3, 2, 410000), // stage 3: 20 points
		},
	}

	res, err := Compute(sys, snap)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	group := res.Groups["SEN_men"]
	var karim *Entry
	for i := range group {
		if group[i].EntityID == 100 {
			karim = &group[i]
		}
	}
	if karim == nil {
		t.Fatal("athlete 100 missing from group")
	}
	if karim.Points != 32 {
		t.Errorf("best-2 total = %d, want 32 (20+12)", karim.Points)
	}
}

func TestComputeFinalOnly(t *testing.T) {
	sys := testSystem()
	sys.JourneyMode = models.JourneyFinalOnly

	snap := &Snapshot{
		Stages:     stages(2),
		Categories: testCategories(),
		Rows: []RaceRow{
			skiffRow(1, 1, 1, 1, 10, 100, "Amdouni Karim", 1, 420000),
			skiffRow(2, 2, 2, 1, 10, 100, "Amdouni Karim", 1, 421000),
			skiffRow(2, 2, 2, 2, 11, 101, "Ben Salah Youssef", 1, 419000),
		},
	}

	res, err := Compute(sys, snap)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	group := res.Groups["SEN_men"]
	for _, e := range group {
		if e.EntityID == 100 && e.Points != 12 {
			t.Errorf("final-only total for athlete 100 = %d, want 12 (terminal stage only)", e.Points)
		}
	}
}

func TestComputeClubMixedRouting(t *testing.T) {
	sys := testSystem()
	sys.EntityType = models.EntityClub
	sys.PointMode = models.PointModeMixed

	crew := skiffRow(2, 1, 1, 1, 30, 300, "Stroke Seat", 1, 400000)
	crew.CrewSize = 2
	crew.Seats = []Seat{{AthleteID: 300, Name: "Stroke Seat"}, {AthleteID: 301, Name: "Bow Seat"}}

	snap := &Snapshot{
		Stages:     stages(1),
		Categories: testCategories(),
		Rows: []RaceRow{
			skiffRow(1, 1, 1, 1, 10, 100, "Amdouni Karim", 1, 420000),
			crew,
		},
	}

	res, err := Compute(sys, snap)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	group := res.Groups["SEN_men"]

	var athleteEntries, clubEntries int
	for _, e := range group {
		switch e.EntityType {
		case models.EntityAthlete:
			athleteEntries++
			if e.EntityID != 100 {
				t.Errorf("athlete-routed entity = %d, want the sculler 100", e.EntityID)
			}
		case models.EntityClub:
			clubEntries++
			if e.EntityID != 1 {
				t.Errorf("club-routed entity = %d, want club 1", e.EntityID)
			}
		}
	}
	if athleteEntries != 1 || clubEntries != 1 {
		t.Errorf("mixed routing produced %d athlete / %d club entries, want 1/1", athleteEntries, clubEntries)
	}
}

func TestComputeMedalMode(t *testing.T) {
	sys := testSystem()
	sys.ScoringMode = models.ScoreMedals
	sys.GroupBy = models.GroupByGender

	snap := &Snapshot{
		Stages:     stages(1),
		Categories: testCategories(),
		Rows: []RaceRow{
			// Race 1: 101 beats 100. Race 2: 100 beats 101. Race 3: 101 wins alone.
			skiffRow(1, 1, 1, 1, 10, 100, "Amdouni Karim", 1, 420000),
			skiffRow(1, 1, 1, 2, 11, 101, "Ben Salah Youssef", 1, 410000),
			skiffRow(2, 1, 1, 1, 10, 100, "Amdouni Karim", 1, 409000),
			skiffRow(2, 1, 1, 2, 11, 101, "Ben Salah Youssef", 1, 411000),
			skiffRow(3, 1, 1, 1, 11, 101, "Ben Salah Youssef", 1, 415000),
		},
	}

	res, err := Compute(sys, snap)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	group := res.Groups["men"]
	if len(group) != 2 {
		t.Fatalf("group has %d entries, want 2", len(group))
	}
	// 101: 2 gold 1 silver; 100: 1 gold 1 silver.
	if group[0].EntityID != 101 || group[0].Rank != 1 {
		t.Errorf("medal leader = %+v", group[0])
	}
	if group[0].Medals.Gold != 2 || group[0].Medals.Silver != 1 {
		t.Errorf("leader medals = %+v", group[0].Medals)
	}
}

func TestComputeCrewSizeMismatchFatal(t *testing.T) {
	bad := skiffRow(1, 1, 1, 1, 10, 100, "Amdouni Karim", 1, 420000)
	bad.CrewSize = 2 // one seat recorded for a double

	snap := &Snapshot{
		Stages:     stages(1),
		Categories: testCategories(),
		Rows:       []RaceRow{bad},
	}

	if _, err := Compute(testSystem(), snap); !models.IsValidation(err) {
		t.Errorf("Compute with inconsistent crew = %v, want ValidationError", err)
	}
}

func TestComputeEmptySnapshot(t *testing.T) {
	snap := &Snapshot{Stages: stages(1), Categories: testCategories()}
	res, err := Compute(testSystem(), snap)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(res.Groups) != 0 {
		t.Errorf("empty snapshot produced groups: %v", res.Groups)
	}
}

func TestFoldSeats(t *testing.T) {
	ms := 400000
	rows := []snapshotRow{
		{RaceID: 1, LaneNumber: 1, EntryID: 5, CrewSize: 2, Seat: 1, AthleteID: 9, FirstName: "A", LastName: "X", FinishMS: &ms},
		{RaceID: 1, LaneNumber: 1, EntryID: 5, CrewSize: 2, Seat: 2, AthleteID: 8, FirstName: "B", LastName: "Y", FinishMS: &ms},
		{RaceID: 1, LaneNumber: 2, EntryID: 6, CrewSize: 2, Seat: 1, AthleteID: 7, FirstName: "C", LastName: "Z", FinishMS: &ms},
	}
	folded := foldSeats(rows)
	if len(folded) != 2 {
		t.Fatalf("folded into %d lanes, want 2", len(folded))
	}
	if len(folded[0].Seats) != 2 || folded[0].Seats[0].Name != "X A" {
		t.Errorf("lane 1 seats = %+v", folded[0].Seats)
	}
}
