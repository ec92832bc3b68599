package models

// Gender scopes a category or event. Mixed is only valid for categories
// and boat classes, never for a single athlete.
type Gender string

const (
	GenderMen   Gender = "men"
	GenderWomen Gender = "women"
	GenderMixed Gender = "mixed"
)

// EventStatus is the lifecycle state of an elimination event.
type EventStatus string

const (
	EventPending    EventStatus = "pending"
	EventInProgress EventStatus = "in_progress"
	EventCompleted  EventStatus = "completed"
)

// Phase is one stage of a knockout event. Phases only ever advance
// forward along PhaseOrder.
type Phase string

const (
	PhaseTimeTrial    Phase = "time_trial"
	PhaseRepechage    Phase = "repechage"
	PhaseQuarterfinal Phase = "quarterfinal"
	PhaseSemifinal    Phase = "semifinal"
	PhaseFinalB       Phase = "final_b"
	PhaseFinalA       Phase = "final_a"
)

// PhaseOrder is the fixed progression order. FinalB sorts before FinalA so
// bracket listings show the small final first, but both belong to the same
// finals round.
var PhaseOrder = []Phase{
	PhaseTimeTrial,
	PhaseRepechage,
	PhaseQuarterfinal,
	PhaseSemifinal,
	PhaseFinalB,
	PhaseFinalA,
}

// PhaseIndex returns the position of p in PhaseOrder, or -1.
func PhaseIndex(p Phase) int {
	for i, ph := range PhaseOrder {
		if ph == p {
			return i
		}
	}
	return -1
}

// RaceStatus tracks whether results have been recorded for a race.
type RaceStatus string

const (
	RaceScheduled RaceStatus = "scheduled"
	RaceCompleted RaceStatus = "completed"
)

// LaneResult is the recorded outcome status for a single lane.
type LaneResult string

const (
	ResultOK  LaneResult = "ok"
	ResultDNS LaneResult = "dns"
	ResultDNF LaneResult = "dnf"
	ResultDSQ LaneResult = "dsq"
)

// EntryStatus is the registration workflow state of a competition entry.
type EntryStatus string

const (
	EntryPending  EntryStatus = "pending"
	EntryApproved EntryStatus = "approved"
	EntryRejected EntryStatus = "rejected"
)
