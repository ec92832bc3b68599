package progression

import (
	"testing"

	"github.com/nasreddinesoltani/trf-portal-api/models"
)

func scheduledRace(entryIDs []int) *models.Race {
	rc := &models.Race{
		RaceID:  7,
		EventID: 1,
		Phase:   models.PhaseTimeTrial,
		Heat:    1,
		Status:  models.RaceScheduled,
	}
	for i, id := range entryIDs {
		rc.Lanes = append(rc.Lanes, &models.Lane{Number: i + 1, EntryID: id})
	}
	return rc
}

func TestApplyResultsSetsPositionsAndCompletes(t *testing.T) {
	rc := scheduledRace([]int{1, 2, 3})
	err := applyResults(rc, []LaneInput{
		{Lane: 1, TimeMS: 412000, Result: models.ResultOK},
		{Lane: 2, TimeMS: 408000, Result: models.ResultOK},
		{Lane: 3, Result: models.ResultDNF},
	})
	if err != nil {
		t.Fatalf("applyResults: %v", err)
	}
	if rc.Status != models.RaceCompleted || rc.CompletedAt == nil {
		t.Errorf("race not completed: status=%s completedAt=%v", rc.Status, rc.CompletedAt)
	}
	if rc.Lanes[1].Position == nil || *rc.Lanes[1].Position != 1 {
		t.Errorf("lane 2 position = %v, want 1", rc.Lanes[1].Position)
	}
	if rc.Lanes[0].Position == nil || *rc.Lanes[0].Position != 2 {
		t.Errorf("lane 1 position = %v, want 2", rc.Lanes[0].Position)
	}
	if rc.Lanes[2].Position != nil {
		t.Errorf("dnf lane has position %d", *rc.Lanes[2].Position)
	}
}

func TestApplyResultsCompletedRaceImmutable(t *testing.T) {
	// A second result set for the same race must conflict, never replace
	// the lanes the first write committed.
	rc := scheduledRace([]int{1, 2})
	first := []LaneInput{
		{Lane: 1, TimeMS: 400000, Result: models.ResultOK},
		{Lane: 2, TimeMS: 405000, Result: models.ResultOK},
	}
	if err := applyResults(rc, first); err != nil {
		t.Fatalf("first applyResults: %v", err)
	}

	second := []LaneInput{
		{Lane: 1, TimeMS: 405000, Result: models.ResultOK},
		{Lane: 2, TimeMS: 400000, Result: models.ResultOK},
	}
	if err := applyResults(rc, second); !models.IsStateConflict(err) {
		t.Fatalf("second applyResults = %v, want StateConflictError", err)
	}
	if *rc.Lanes[0].FinishMS != 400000 || *rc.Lanes[0].Position != 1 {
		t.Errorf("lane 1 mutated by rejected write: %dms position %d",
			*rc.Lanes[0].FinishMS, *rc.Lanes[0].Position)
	}
}

func TestApplyResultsRejectsDuplicateLane(t *testing.T) {
	// Two results for lane 1 pass the count check but must not leave
	// lane 2 unrecorded.
	rc := scheduledRace([]int{1, 2})
	err := applyResults(rc, []LaneInput{
		{Lane: 1, TimeMS: 400000, Result: models.ResultOK},
		{Lane: 1, TimeMS: 405000, Result: models.ResultOK},
	})
	if !models.IsValidation(err) {
		t.Fatalf("duplicate lane = %v, want ValidationError", err)
	}
	if rc.Status == models.RaceCompleted {
		t.Error("race completed despite rejected result set")
	}
}

func TestApplyResultsValidation(t *testing.T) {
	cases := []struct {
		name    string
		results []LaneInput
	}{
		{"wrong count", []LaneInput{{Lane: 1, TimeMS: 400000, Result: models.ResultOK}}},
		{"unknown lane", []LaneInput{
			{Lane: 1, TimeMS: 400000, Result: models.ResultOK},
			{Lane: 9, TimeMS: 405000, Result: models.ResultOK},
		}},
		{"ok without time", []LaneInput{
			{Lane: 1, TimeMS: 400000, Result: models.ResultOK},
			{Lane: 2, Result: models.ResultOK},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rc := scheduledRace([]int{1, 2})
			if err := applyResults(rc, tc.results); !models.IsValidation(err) {
				t.Errorf("applyResults = %v, want ValidationError", err)
			}
		})
	}
}
