// Package progression drives the lifecycle of one elimination event:
// seeding the time trial, consuming recorded results, advancing entrants
// through repechage and knockout rounds and finalizing medals.
//
// Every transition is a pure function over a snapshot of the event's races,
// so guard conditions are testable without the database. Service wraps the
// transitions with per-event locking and persistence.
package progression

import (
	"sort"

	"github.com/nasreddinesoltani/trf-portal-api/models"
	"github.com/nasreddinesoltani/trf-portal-api/scoring"
)

// Snapshot is the state a transition reads: the event row and all of its
// non-amended races with lanes.
type Snapshot struct {
	Event        *models.Event
	Races        []*models.Race
	LaneCapacity int
}

// Advancement describes the outcome of one processed phase. Races are the
// generated next-phase races, unsaved.
type Advancement struct {
	NextPhase  models.Phase
	Races      []*models.Race
	Advanced   []int // entry IDs advancing, in seeding order
	Eliminated []int // entry IDs out of the event
	Completed  bool
	Medals     *models.MedalSet
}

// SeedTimeTrial partitions approved entries into time-trial heats sized to
// the lane capacity. Lane order follows the given entry order (submission
// order when no seeding rule is supplied).
func SeedTimeTrial(ev *models.Event, entryIDs []int, laneCapacity int) ([]*models.Race, error) {
	if ev.Status != models.EventPending {
		return nil, models.Conflictf("event %d already seeded (status %s)", ev.EventID, ev.Status)
	}
	if len(entryIDs) == 0 {
		return nil, models.Validationf("event %d has no approved entries to seed", ev.EventID)
	}
	if laneCapacity < 1 {
		return nil, models.Validationf("event %d boat class has lane capacity %d", ev.EventID, laneCapacity)
	}
	return buildRaces(ev.EventID, models.PhaseTimeTrial, partition(entryIDs, laneCapacity)), nil
}

// ProcessTimeTrial ranks all entrants across the completed time-trial heats
// and produces the next phase: repechage heats plus deferred direct
// qualifiers, or the first knockout round when the event has no repechage.
func ProcessTimeTrial(snap *Snapshot) (*Advancement, error) {
	ev := snap.Event
	if err := guardPhase(snap, models.PhaseTimeTrial); err != nil {
		return nil, err
	}

	ranked := timeTrialRanking(phaseRaces(snap.Races, models.PhaseTimeTrial))
	direct := clamp(ev.TTDirectAdvance, len(ranked))
	directIDs := ranked[:direct]
	rest := ranked[direct:]

	adv := &Advancement{}
	if ev.HasRepechage && ev.TTToRepechage > 0 && len(rest) > 0 {
		repCount := clamp(ev.TTToRepechage, len(rest))
		repIDs := rest[:repCount]
		adv.NextPhase = models.PhaseRepechage
		adv.Races = buildRaces(ev.EventID, models.PhaseRepechage, partition(repIDs, snap.LaneCapacity))
		adv.Advanced = append(append([]int{}, directIDs...), repIDs...)
		adv.Eliminated = rest[repCount:]
		return adv, nil
	}

	next := nextKnockoutPhase(models.PhaseTimeTrial, len(directIDs), snap.LaneCapacity)
	adv.NextPhase = next
	adv.Races = buildRaces(ev.EventID, next, snake(directIDs, heatCount(len(directIDs), snap.LaneCapacity)))
	adv.Advanced = directIDs
	adv.Eliminated = rest
	return adv, nil
}

// ProcessKnockout advances the top finishers of each completed heat of the
// given phase. Repechage winners merge with the time trial's direct
// qualifiers before the next knockout round is drawn.
func ProcessKnockout(snap *Snapshot, phase models.Phase) (*Advancement, error) {
	switch phase {
	case models.PhaseRepechage, models.PhaseQuarterfinal, models.PhaseSemifinal:
	default:
		return nil, models.Validationf("phase %q is not a knockout phase", phase)
	}
	ev := snap.Event
	if err := guardPhase(snap, phase); err != nil {
		return nil, err
	}

	races := phaseRaces(snap.Races, phase)
	advancers, losers := splitHeats(races, clamp(ev.AdvancePerHeat, snap.LaneCapacity), snap.LaneCapacity)

	if phase == models.PhaseRepechage {
		// Direct qualifiers skipped the repechage; recompute them from the
		// completed time trial so the merge is reproducible.
		ranked := timeTrialRanking(phaseRaces(snap.Races, models.PhaseTimeTrial))
		direct := clamp(ev.TTDirectAdvance, len(ranked))
		advancers = append(append([]int{}, ranked[:direct]...), advancers...)
	}

	adv := &Advancement{Advanced: advancers}
	next := nextKnockoutPhase(phase, len(advancers), snap.LaneCapacity)
	adv.NextPhase = next

	if next == models.PhaseFinalA {
		finalists := advancers
		if len(finalists) > snap.LaneCapacity {
			finalists = finalists[:snap.LaneCapacity]
		}
		adv.Races = buildRaces(ev.EventID, models.PhaseFinalA, [][]int{finalists})
		if phase == models.PhaseSemifinal && len(losers) > 0 {
			// The best non-qualifiers contest the small final.
			bFinalists := losers
			if len(bFinalists) > snap.LaneCapacity {
				bFinalists = bFinalists[:snap.LaneCapacity]
				adv.Eliminated = losers[snap.LaneCapacity:]
			}
			adv.Races = append(buildRaces(ev.EventID, models.PhaseFinalB, [][]int{bFinalists}), adv.Races...)
		} else {
			adv.Eliminated = losers
		}
		return adv, nil
	}

	adv.Races = buildRaces(ev.EventID, next, snake(advancers, heatCount(len(advancers), snap.LaneCapacity)))
	adv.Eliminated = losers
	return adv, nil
}

// ProcessFinals assigns medals from the completed A final and marks the
// event completed. This transition is terminal.
func ProcessFinals(snap *Snapshot) (*Advancement, error) {
	ev := snap.Event
	if ev.Status == models.EventCompleted {
		return nil, models.Conflictf("event %d already completed", ev.EventID)
	}
	if err := guardPhase(snap, models.PhaseFinalA); err != nil {
		return nil, err
	}
	if err := requireCompleted(phaseRaces(snap.Races, models.PhaseFinalB)); err != nil {
		return nil, err
	}

	finalA := phaseRaces(snap.Races, models.PhaseFinalA)
	if len(finalA) != 1 {
		return nil, models.Validationf("event %d has %d A-final races, want 1", ev.EventID, len(finalA))
	}

	medals := &models.MedalSet{}
	for _, pl := range scoring.ResolveFinishOrder(finalA[0].Lanes, snap.LaneCapacity, false) {
		id := pl.Lane.EntryID
		switch pl.Position {
		case 1:
			medals.Gold = &id
		case 2:
			medals.Silver = &id
		case 3:
			medals.Bronze = &id
		}
	}
	if medals.Gold == nil {
		return nil, models.Validationf("event %d A final has no finisher to award gold", ev.EventID)
	}

	return &Advancement{Completed: true, Medals: medals}, nil
}

// guardPhase checks that the event is in the given phase and that all of
// the phase's races are completed. A phase the event has moved past is a
// duplicate action, not a recomputation.
func guardPhase(snap *Snapshot, phase models.Phase) error {
	ev := snap.Event
	if ev.CurrentPhase == nil {
		return models.Conflictf("event %d has not been seeded", ev.EventID)
	}
	cur, want := models.PhaseIndex(*ev.CurrentPhase), models.PhaseIndex(phase)
	if cur > want || ev.Status == models.EventCompleted {
		return models.Conflictf("phase %s of event %d already processed", phase, ev.EventID)
	}
	if cur < want {
		return models.Conflictf("event %d is in phase %s, not %s", ev.EventID, *ev.CurrentPhase, phase)
	}
	races := phaseRaces(snap.Races, phase)
	if len(races) == 0 {
		return models.Validationf("event %d has no races in phase %s", ev.EventID, phase)
	}
	return requireCompleted(races)
}

func requireCompleted(races []*models.Race) error {
	for _, rc := range races {
		if rc.Status != models.RaceCompleted {
			return models.Conflictf("race %d (phase %s heat %d) has no recorded results yet", rc.RaceID, rc.Phase, rc.Heat)
		}
		if len(rc.Lanes) == 0 {
			return models.Validationf("race %d has no lanes", rc.RaceID)
		}
	}
	return nil
}

// phaseRaces filters the snapshot's races to one phase, amended races
// excluded, ordered by heat.
func phaseRaces(races []*models.Race, phase models.Phase) []*models.Race {
	out := []*models.Race{}
	for _, rc := range races {
		if rc.Phase == phase && !rc.Amended {
			out = append(out, rc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Heat < out[j].Heat })
	return out
}

// timeTrialRanking ranks every entrant across all heats: finishers by
// ascending time, then non-finishers in heat and lane order.
func timeTrialRanking(races []*models.Race) []int {
	type entrant struct {
		entryID  int
		finished bool
		finishMS int
		heat     int
		lane     int
	}
	all := []entrant{}
	for _, rc := range races {
		for _, ln := range rc.Lanes {
			e := entrant{entryID: ln.EntryID, heat: rc.Heat, lane: ln.Number}
			if ln.Result == models.ResultOK && ln.FinishMS != nil {
				e.finished = true
				e.finishMS = *ln.FinishMS
			}
			all = append(all, e)
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.finished != b.finished {
			return a.finished
		}
		if a.finished {
			if a.finishMS != b.finishMS {
				return a.finishMS < b.finishMS
			}
			return a.lane < b.lane
		}
		if a.heat != b.heat {
			return a.heat < b.heat
		}
		return a.lane < b.lane
	})
	out := make([]int, len(all))
	for i, e := range all {
		out[i] = e.entryID
	}
	return out
}

// splitHeats takes the top advancePerHeat finishers of each heat. Advancers
// are returned in seeding order (heat position first, then finish time) and
// losers in the same discipline for B-final selection.
func splitHeats(races []*models.Race, advancePerHeat, laneCapacity int) (advancers, losers []int) {
	type placed struct {
		entryID  int
		heatPos  int
		finishMS int
	}
	adv, lose := []placed{}, []placed{}
	for _, rc := range races {
		placements := scoring.ResolveFinishOrder(rc.Lanes, laneCapacity, false)
		n := clamp(advancePerHeat, len(placements))
		for i, pl := range placements {
			ms := 1 << 30
			if pl.Lane.FinishMS != nil {
				ms = *pl.Lane.FinishMS
			}
			p := placed{entryID: pl.Lane.EntryID, heatPos: i + 1, finishMS: ms}
			if i < n {
				adv = append(adv, p)
			} else {
				lose = append(lose, p)
			}
		}
	}
	byPosThenTime := func(s []placed) func(i, j int) bool {
		return func(i, j int) bool {
			if s[i].heatPos != s[j].heatPos {
				return s[i].heatPos < s[j].heatPos
			}
			return s[i].finishMS < s[j].finishMS
		}
	}
	sort.SliceStable(adv, byPosThenTime(adv))
	sort.SliceStable(lose, byPosThenTime(lose))
	for _, p := range adv {
		advancers = append(advancers, p.entryID)
	}
	for _, p := range lose {
		losers = append(losers, p.entryID)
	}
	return advancers, losers
}

// nextKnockoutPhase picks the round matching the advancer count, never
// earlier than the phase after the current one. Rounds that are not needed
// for the field size are skipped.
func nextKnockoutPhase(current models.Phase, count, laneCapacity int) models.Phase {
	var byCount models.Phase
	switch {
	case count <= laneCapacity:
		byCount = models.PhaseFinalA
	case count <= 2*laneCapacity:
		byCount = models.PhaseSemifinal
	default:
		byCount = models.PhaseQuarterfinal
	}

	var floor models.Phase
	switch current {
	case models.PhaseTimeTrial, models.PhaseRepechage:
		floor = models.PhaseQuarterfinal
	case models.PhaseQuarterfinal:
		floor = models.PhaseSemifinal
	default:
		floor = models.PhaseFinalA
	}
	if models.PhaseIndex(byCount) < models.PhaseIndex(floor) {
		return floor
	}
	return byCount
}

// partition splits ids into balanced consecutive heats of at most capacity,
// earlier heats taking the remainder.
func partition(ids []int, capacity int) [][]int {
	heats := heatCount(len(ids), capacity)
	base := len(ids) / heats
	extra := len(ids) % heats
	out := make([][]int, 0, heats)
	i := 0
	for h := 0; h < heats; h++ {
		size := base
		if h < extra {
			size++
		}
		out = append(out, ids[i:i+size])
		i += size
	}
	return out
}

// snake deals ids into heats serpentine-style so seeded strength balances
// across heats.
func snake(ids []int, heats int) [][]int {
	out := make([][]int, heats)
	h, dir := 0, 1
	for _, id := range ids {
		out[h] = append(out[h], id)
		h += dir
		if h == heats {
			h, dir = heats-1, -1
		} else if h < 0 {
			h, dir = 0, 1
		}
	}
	return out
}

func heatCount(n, capacity int) int {
	if n <= 0 {
		return 1
	}
	return (n + capacity - 1) / capacity
}

// buildRaces materializes scheduled races with lanes numbered 1..k in the
// given seeding order.
func buildRaces(eventID int, phase models.Phase, heats [][]int) []*models.Race {
	races := []*models.Race{}
	for h, ids := range heats {
		if len(ids) == 0 {
			continue
		}
		rc := &models.Race{
			EventID: eventID,
			Phase:   phase,
			Heat:    h + 1,
			Status:  models.RaceScheduled,
		}
		for i, id := range ids {
			rc.Lanes = append(rc.Lanes, &models.Lane{Number: i + 1, EntryID: id})
		}
		races = append(races, rc)
	}
	return races
}

func clamp(n, max int) int {
	if n > max {
		return max
	}
	if n < 0 {
		return 0
	}
	return n
}
