// Package scoring holds the shared pure scoring policy: point tables,
// finish-order resolution and medal tallies. Both the ranking aggregator
// and the bracket progression machine rank heats through this package so
// the two never disagree on an order.
package scoring

import (
	"sort"

	"github.com/nasreddinesoltani/trf-portal-api/models"
)

// PointsForPosition returns the configured points for position. Positions
// beyond maxScoringPosition or the table, and position 0 (no position
// assigned), score zero.
func PointsForPosition(table []int, maxScoringPosition, position int) int {
	if position < 1 || position > maxScoringPosition || position > len(table) {
		return 0
	}
	return table[position-1]
}

// Placement pairs a lane with its resolved position. Position 0 means the
// lane received no position (non-finisher, no fill-in rule applied).
type Placement struct {
	Lane     *models.Lane
	Position int
}

// ResolveFinishOrder orders the lanes of one race. Lanes with result ok are
// sorted by ascending finish time and given positions 1..k; exact time ties
// share a position and the next position skips the tied count. Lanes with
// dns/dnf/dsq get no position, unless dnfGetsPoints is set and fewer than
// laneCapacity lanes finished, in which case non-finishers are appended in
// lane order at the next positions so sparsely contested heats still score.
func ResolveFinishOrder(lanes []*models.Lane, laneCapacity int, dnfGetsPoints bool) []Placement {
	finishers := make([]*models.Lane, 0, len(lanes))
	others := make([]*models.Lane, 0)
	for _, ln := range lanes {
		if ln.Result == models.ResultOK && ln.FinishMS != nil {
			finishers = append(finishers, ln)
		} else {
			others = append(others, ln)
		}
	}

	sort.SliceStable(finishers, func(i, j int) bool {
		if *finishers[i].FinishMS != *finishers[j].FinishMS {
			return *finishers[i].FinishMS < *finishers[j].FinishMS
		}
		return finishers[i].Number < finishers[j].Number
	})
	sort.Slice(others, func(i, j int) bool { return others[i].Number < others[j].Number })

	out := make([]Placement, 0, len(lanes))
	for i, ln := range finishers {
		pos := i + 1
		if i > 0 && *ln.FinishMS == *finishers[i-1].FinishMS {
			pos = out[i-1].Position
		}
		out = append(out, Placement{Lane: ln, Position: pos})
	}

	fill := dnfGetsPoints && len(finishers) < laneCapacity
	next := len(finishers) + 1
	for _, ln := range others {
		pos := 0
		if fill {
			pos = next
			next++
		}
		out = append(out, Placement{Lane: ln, Position: pos})
	}
	return out
}

// Medals counts podium finishes for one entity.
type Medals struct {
	Gold   int `json:"gold"`
	Silver int `json:"silver"`
	Bronze int `json:"bronze"`
	Total  int `json:"total"`
}

// Add counts one finish at the given position.
func (m *Medals) Add(position int) {
	switch position {
	case 1:
		m.Gold++
	case 2:
		m.Silver++
	case 3:
		m.Bronze++
	default:
		return
	}
	m.Total++
}

// TallyMedals counts rank 1/2/3 finishes across the given positions.
func TallyMedals(positions []int) Medals {
	var m Medals
	for _, p := range positions {
		m.Add(p)
	}
	return m
}
