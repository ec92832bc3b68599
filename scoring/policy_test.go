package scoring

import (
	"testing"

	"github.com/nasreddinesoltani/trf-portal-api/models"
)

func lane(number int, result models.LaneResult, finishMS int) *models.Lane {
	ln := &models.Lane{Number: number, Result: result}
	if result == models.ResultOK {
		ms := finishMS
		ln.FinishMS = &ms
	}
	return ln
}

func TestPointsForPosition(t *testing.T) {
	table := models.DefaultPointTable

	cases := []struct {
		name     string
		position int
		max      int
		want     int
	}{
		{"winner", 1, 8, 20},
		{"second", 2, 8, 12},
		{"last scored", 8, 8, 1},
		{"beyond max", 9, 8, 0},
		{"max below table", 4, 3, 0},
		{"no position", 0, 8, 0},
		{"negative", -1, 8, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PointsForPosition(table, tc.max, tc.position); got != tc.want {
				t.Errorf("PointsForPosition(%d) = %d, want %d", tc.position, got, tc.want)
			}
		})
	}
}

func TestResolveFinishOrderBasic(t *testing.T) {
	lanes := []*models.Lane{
		lane(1, models.ResultOK, 412300),
		lane(2, models.ResultOK, 408100),
		lane(3, models.ResultOK, 415800),
	}

	got := ResolveFinishOrder(lanes, 6, false)
	if len(got) != 3 {
		t.Fatalf("got %d placements, want 3", len(got))
	}
	wantOrder := []int{2, 1, 3} // lane numbers by finish time
	for i, p := range got {
		if p.Lane.Number != wantOrder[i] {
			t.Errorf("placement %d is lane %d, want %d", i, p.Lane.Number, wantOrder[i])
		}
		if p.Position != i+1 {
			t.Errorf("placement %d has position %d, want %d", i, p.Position, i+1)
		}
	}
}

func TestResolveFinishOrderTiesSharePosition(t *testing.T) {
	lanes := []*models.Lane{
		lane(1, models.ResultOK, 400000),
		lane(2, models.ResultOK, 400000),
		lane(3, models.ResultOK, 402000),
	}

	got := ResolveFinishOrder(lanes, 6, false)
	if got[0].Position != 1 || got[1].Position != 1 {
		t.Errorf("tied lanes have positions %d and %d, want 1 and 1", got[0].Position, got[1].Position)
	}
	if got[2].Position != 3 {
		t.Errorf("lane after tie has position %d, want 3", got[2].Position)
	}
}

func TestResolveFinishOrderNonFinishersUnplaced(t *testing.T) {
	lanes := []*models.Lane{
		lane(1, models.ResultOK, 400000),
		lane(2, models.ResultDNF, 0),
		lane(3, models.ResultDSQ, 0),
	}

	got := ResolveFinishOrder(lanes, 6, false)
	if got[0].Position != 1 {
		t.Errorf("finisher position = %d, want 1", got[0].Position)
	}
	for _, p := range got[1:] {
		if p.Position != 0 {
			t.Errorf("non-finisher lane %d has position %d, want 0", p.Lane.Number, p.Position)
		}
	}
}

func TestResolveFinishOrderFillsSparseHeat(t *testing.T) {
	// Two finishers in a six-lane heat: the four non-starters take
	// positions 3..6 in lane order.
	lanes := []*models.Lane{
		lane(1, models.ResultOK, 401000),
		lane(2, models.ResultDNS, 0),
		lane(3, models.ResultOK, 399000),
		lane(4, models.ResultDNS, 0),
		lane(5, models.ResultDNS, 0),
		lane(6, models.ResultDNS, 0),
	}

	got := ResolveFinishOrder(lanes, 6, true)
	byLane := map[int]int{}
	for _, p := range got {
		byLane[p.Lane.Number] = p.Position
	}
	want := map[int]int{3: 1, 1: 2, 2: 3, 4: 4, 5: 5, 6: 6}
	for laneNo, pos := range want {
		if byLane[laneNo] != pos {
			t.Errorf("lane %d has position %d, want %d", laneNo, byLane[laneNo], pos)
		}
	}

	table := models.DefaultPointTable
	if pts := PointsForPosition(table, 8, byLane[2]); pts != 8 {
		t.Errorf("first non-starter scores %d points, want 8", pts)
	}
}

func TestResolveFinishOrderFullHeatNoFill(t *testing.T) {
	// dnfGetsPoints only applies when finishers are short of capacity.
	lanes := []*models.Lane{
		lane(1, models.ResultOK, 401000),
		lane(2, models.ResultOK, 402000),
		lane(3, models.ResultDNF, 0),
	}

	got := ResolveFinishOrder(lanes, 2, true)
	for _, p := range got {
		if p.Lane.Number == 3 && p.Position != 0 {
			t.Errorf("dnf lane filled position %d in a full heat", p.Position)
		}
	}
}

func TestTallyMedals(t *testing.T) {
	m := TallyMedals([]int{1, 2, 1, 3, 4, 0, 2})
	if m.Gold != 2 || m.Silver != 2 || m.Bronze != 1 || m.Total != 5 {
		t.Errorf("TallyMedals = %+v, want 2/2/1 total 5", m)
	}
}
