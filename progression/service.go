package progression

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/nasreddinesoltani/trf-portal-api/models"
	"github.com/nasreddinesoltani/trf-portal-api/scoring"
)

// Service runs progression transitions against the database. Every event is
// a single-writer state machine: operations that mutate the current phase
// or generate races execute under a per-event lock so a transition's
// read-then-write never interleaves with another.
type Service struct {
	db *bun.DB

	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

// NewService creates a Service over the given database.
func NewService(db *bun.DB) *Service {
	return &Service{db: db, locks: map[int]*sync.Mutex{}}
}

func (s *Service) eventLock(eventID int) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[eventID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[eventID] = l
	}
	return l
}

// loadSnapshot reads the event with its boat class and all non-amended
// races with lanes.
func (s *Service) loadSnapshot(ctx context.Context, eventID int) (*Snapshot, error) {
	ev := &models.Event{}
	err := s.db.NewSelect().Model(ev).
		Relation("BoatClass").
		Where("ev.event_id = ?", eventID).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.Validationf("event %d not found", eventID)
		}
		return nil, err
	}

	var races []*models.Race
	err = s.db.NewSelect().Model(&races).
		Relation("Lanes", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("ln.number ASC")
		}).
		Where("rc.event_id = ?", eventID).
		OrderExpr("rc.phase, rc.heat").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &Snapshot{Event: ev, Races: races, LaneCapacity: ev.BoatClass.LaneCount}, nil
}

// SeedTimeTrial draws the time-trial heats from the event's approved
// entries, in submission order, and moves the event to in_progress.
func (s *Service) SeedTimeTrial(ctx context.Context, eventID int) ([]*models.Race, error) {
	lock := s.eventLock(eventID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := s.loadSnapshot(ctx, eventID)
	if err != nil {
		return nil, err
	}

	var entries []*models.CompetitionEntry
	err = s.db.NewSelect().Model(&entries).
		Where("e.event_id = ?", eventID).
		Where("e.status = ?", models.EntryApproved).
		OrderExpr("e.submitted_at ASC, e.entry_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	entryIDs := make([]int, len(entries))
	for i, e := range entries {
		entryIDs[i] = e.EntryID
	}

	races, err := SeedTimeTrial(snap.Event, entryIDs, snap.LaneCapacity)
	if err != nil {
		return nil, err
	}

	phase := models.PhaseTimeTrial
	snap.Event.Status = models.EventInProgress
	snap.Event.CurrentPhase = &phase

	if err := s.persist(ctx, snap.Event, races); err != nil {
		return nil, err
	}
	zap.L().Info("time trial seeded",
		zap.Int("eventID", eventID),
		zap.Int("entries", len(entryIDs)),
		zap.Int("heats", len(races)))
	return races, nil
}

// ProcessPhase runs the guarded transition for the given phase and persists
// the advancement atomically.
func (s *Service) ProcessPhase(ctx context.Context, eventID int, phase models.Phase) (*Advancement, error) {
	lock := s.eventLock(eventID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := s.loadSnapshot(ctx, eventID)
	if err != nil {
		return nil, err
	}

	var adv *Advancement
	switch phase {
	case models.PhaseTimeTrial:
		adv, err = ProcessTimeTrial(snap)
	case models.PhaseRepechage, models.PhaseQuarterfinal, models.PhaseSemifinal:
		adv, err = ProcessKnockout(snap, phase)
	case models.PhaseFinalA, models.PhaseFinalB:
		adv, err = ProcessFinals(snap)
	default:
		return nil, models.Validationf("unknown phase %q", phase)
	}
	if err != nil {
		return nil, err
	}

	ev := snap.Event
	if adv.Completed {
		ev.Status = models.EventCompleted
		ev.GoldEntryID = adv.Medals.Gold
		ev.SilverEntryID = adv.Medals.Silver
		ev.BronzeEntryID = adv.Medals.Bronze
	} else {
		next := adv.NextPhase
		ev.CurrentPhase = &next
	}

	if err := s.persist(ctx, ev, adv.Races); err != nil {
		return nil, err
	}
	zap.L().Info("phase processed",
		zap.Int("eventID", eventID),
		zap.String("phase", string(phase)),
		zap.Int("advanced", len(adv.Advanced)),
		zap.Int("eliminated", len(adv.Eliminated)),
		zap.Bool("completed", adv.Completed))
	return adv, nil
}

// persist writes the updated event and any generated races with their lanes
// in one transaction.
func (s *Service) persist(ctx context.Context, ev *models.Event, races []*models.Race) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.NewUpdate().Model(ev).WherePK().Exec(ctx); err != nil {
		return err
	}
	for _, rc := range races {
		if _, err := tx.NewInsert().Model(rc).Exec(ctx); err != nil {
			return err
		}
		for _, ln := range rc.Lanes {
			ln.RaceID = rc.RaceID
			if _, err := tx.NewInsert().Model(ln).Exec(ctx); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// loadRace reads one race with its lanes, event and boat class.
func (s *Service) loadRace(ctx context.Context, raceID int) (*models.Race, error) {
	rc := &models.Race{}
	err := s.db.NewSelect().Model(rc).
		Relation("Lanes").
		Relation("Event").
		Relation("Event.BoatClass").
		Where("rc.race_id = ?", raceID).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.Validationf("race %d not found", raceID)
		}
		return nil, err
	}
	return rc, nil
}

// RecordResults attaches finish times and statuses to a scheduled race and
// marks it completed. Completed races are immutable; corrections go through
// AmendRace instead.
func (s *Service) RecordResults(ctx context.Context, raceID int, results []LaneInput) (*models.Race, error) {
	// First load only resolves the event for locking; the race is read
	// again under the lock so the guards never see a stale status.
	rc, err := s.loadRace(ctx, raceID)
	if err != nil {
		return nil, err
	}
	lock := s.eventLock(rc.EventID)
	lock.Lock()
	defer lock.Unlock()

	rc, err = s.loadRace(ctx, raceID)
	if err != nil {
		return nil, err
	}
	return s.recordLocked(ctx, rc, results)
}

// LaneInput is one lane's recorded outcome.
type LaneInput struct {
	Lane   int               `json:"lane" validate:"required,min=1"`
	TimeMS int               `json:"timeMS" validate:"min=0"`
	Result models.LaneResult `json:"result" validate:"required,oneof=ok dns dnf dsq"`
}

// applyResults guards and mutates one race in memory: every lane gets its
// recorded outcome exactly once, finish-order positions are resolved and the
// race is marked completed. Persistence is the caller's job.
func applyResults(rc *models.Race, results []LaneInput) error {
	if rc.Status == models.RaceCompleted {
		return models.Conflictf("race %d is completed; use an amended replacement to correct results", rc.RaceID)
	}
	if len(results) != len(rc.Lanes) {
		return models.Validationf("race %d has %d lanes, got %d results", rc.RaceID, len(rc.Lanes), len(results))
	}

	byNumber := make(map[int]*models.Lane, len(rc.Lanes))
	for _, ln := range rc.Lanes {
		byNumber[ln.Number] = ln
	}
	seen := make(map[int]bool, len(results))
	for _, in := range results {
		ln, ok := byNumber[in.Lane]
		if !ok {
			return models.Validationf("race %d has no lane %d", rc.RaceID, in.Lane)
		}
		if seen[in.Lane] {
			return models.Validationf("race %d got two results for lane %d", rc.RaceID, in.Lane)
		}
		seen[in.Lane] = true
		ln.Result = in.Result
		ln.FinishMS = nil
		ln.Position = nil
		if in.Result == models.ResultOK {
			if in.TimeMS <= 0 {
				return models.Validationf("lane %d finished ok but has no time", in.Lane)
			}
			ms := in.TimeMS
			ln.FinishMS = &ms
		}
	}

	// Stored positions are the plain finish order; ranking systems with
	// fill-in rules re-resolve from status and time.
	capacity := len(rc.Lanes)
	if rc.Event != nil && rc.Event.BoatClass != nil {
		capacity = rc.Event.BoatClass.LaneCount
	}
	for _, pl := range scoring.ResolveFinishOrder(rc.Lanes, capacity, false) {
		if pl.Position > 0 {
			pos := pl.Position
			pl.Lane.Position = &pos
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	rc.Status = models.RaceCompleted
	rc.CompletedAt = &now
	return nil
}

// recordLocked does the actual result write; the caller holds the event lock
// and rc was loaded under it.
func (s *Service) recordLocked(ctx context.Context, rc *models.Race, results []LaneInput) (*models.Race, error) {
	if err := applyResults(rc, results); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.NewUpdate().Model(rc).WherePK().Exec(ctx); err != nil {
		return nil, err
	}
	for _, ln := range rc.Lanes {
		if _, err := tx.NewUpdate().Model(ln).WherePK().Exec(ctx); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	zap.L().Info("race results recorded", zap.Int("raceID", rc.RaceID), zap.Int("lanes", len(rc.Lanes)))
	return rc, nil
}

// AmendRace supersedes a completed race with a replacement carrying the
// corrected results. The original stays in the log flagged amended and all
// aggregation ignores it, so the competition record stays append-only.
func (s *Service) AmendRace(ctx context.Context, raceID int, results []LaneInput) (*models.Race, error) {
	old, err := s.loadRace(ctx, raceID)
	if err != nil {
		return nil, err
	}

	lock := s.eventLock(old.EventID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock; the status and amended guards must see the
	// current row, not the pre-lock copy.
	old, err = s.loadRace(ctx, raceID)
	if err != nil {
		return nil, err
	}

	if old.Status != models.RaceCompleted {
		return nil, models.Conflictf("race %d is not completed; record results instead of amending", raceID)
	}
	if old.Amended {
		return nil, models.Conflictf("race %d was already superseded", raceID)
	}

	repl := &models.Race{
		EventID:    old.EventID,
		Phase:      old.Phase,
		Heat:       old.Heat,
		Status:     models.RaceScheduled,
		Supersedes: &old.RaceID,
	}
	for _, ln := range old.Lanes {
		repl.Lanes = append(repl.Lanes, &models.Lane{Number: ln.Number, EntryID: ln.EntryID})
	}
	repl.Event = old.Event

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	old.Amended = true
	if _, err := tx.NewUpdate().Model(old).Column("amended").WherePK().Exec(ctx); err != nil {
		return nil, err
	}
	if _, err := tx.NewInsert().Model(repl).Exec(ctx); err != nil {
		return nil, err
	}
	for _, ln := range repl.Lanes {
		ln.RaceID = repl.RaceID
		if _, err := tx.NewInsert().Model(ln).Exec(ctx); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	zap.L().Info("race amended", zap.Int("oldRaceID", raceID), zap.Int("newRaceID", repl.RaceID))
	return s.recordLocked(ctx, repl, results)
}
