package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/nasreddinesoltani/trf-portal-api/models"
)

// Entries lists a competition's entries, optionally filtered by status.
func (h *Handler) Entries(c echo.Context) error {
	competitionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid competition id")
	}
	status := c.QueryParam("status")

	var entries []models.CompetitionEntry
	q := h.db.NewSelect().Model(&entries).
		Relation("Seats", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("es.seat ASC")
		}).
		Where("e.competition_id = ?", competitionID).
		OrderExpr("e.entry_id ASC")
	if status != "" {
		q = q.Where("e.status = ?", status)
	}
	if err := q.Scan(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, entries)
}

type approveEntriesRequest struct {
	EntryIDs []int `json:"entryIDs" validate:"required,min=1"`
}

// entryOutcome is the per-entry result of a batch approval.
type entryOutcome struct {
	EntryID  int    `json:"entryID"`
	Approved bool   `json:"approved"`
	Reason   string `json:"reason,omitempty"`
}

// ApproveEntries processes a batch of pending entries sequentially. Each
// entry is checked against its category, gender scope and crew size;
// failures are reported per entry and never abort the rest of the batch.
func (h *Handler) ApproveEntries(c echo.Context) error {
	var req approveEntriesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	outcomes := make([]entryOutcome, 0, len(req.EntryIDs))
	approved := 0
	for _, id := range req.EntryIDs {
		if err := h.approveEntry(ctx, id); err != nil {
			outcomes = append(outcomes, entryOutcome{EntryID: id, Reason: err.Error()})
			continue
		}
		outcomes = append(outcomes, entryOutcome{EntryID: id, Approved: true})
		approved++
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"approved": approved,
		"failed":   len(req.EntryIDs) - approved,
		"outcomes": outcomes,
	})
}

// approveEntry validates and approves one entry.
func (h *Handler) approveEntry(ctx context.Context, entryID int) error {
	entry := &models.CompetitionEntry{}
	err := h.db.NewSelect().Model(entry).
		Relation("Seats", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("es.seat ASC")
		}).
		Relation("Seats.Athlete").
		Where("e.entry_id = ?", entryID).
		Scan(ctx)
	if err != nil {
		return models.Validationf("entry %d not found", entryID)
	}
	if entry.Status != models.EntryPending {
		return models.Conflictf("entry %d is already %s", entryID, entry.Status)
	}

	comp := &models.Competition{}
	if err := h.db.NewSelect().Model(comp).Where("cp.competition_id = ?", entry.CompetitionID).Scan(ctx); err != nil {
		return models.Validationf("entry %d references unknown competition %d", entryID, entry.CompetitionID)
	}
	cat := &models.Category{}
	if err := h.db.NewSelect().Model(cat).Where("ct.category_id = ?", entry.CategoryID).Scan(ctx); err != nil {
		return models.Validationf("entry %d references unknown category %d", entryID, entry.CategoryID)
	}
	bc := &models.BoatClass{}
	if err := h.db.NewSelect().Model(bc).Where("bc.boat_class_id = ?", entry.BoatClassID).Scan(ctx); err != nil {
		return models.Validationf("entry %d references unknown boat class %d", entryID, entry.BoatClassID)
	}

	if len(entry.Seats) != bc.CrewSize {
		return &models.NotEligibleError{
			EntryID: entryID,
			Msg:     "crew has " + strconv.Itoa(len(entry.Seats)) + " seats, boat class " + bc.Code + " needs " + strconv.Itoa(bc.CrewSize),
		}
	}
	for _, seat := range entry.Seats {
		if seat.Athlete == nil {
			return models.Validationf("entry %d seat %d has no athlete", entryID, seat.Seat)
		}
		if !seat.Athlete.Active {
			return &models.NotEligibleError{EntryID: entryID, Msg: "athlete " + seat.Athlete.License + " is not active"}
		}
		if err := cat.AllowsAthlete(seat.Athlete, comp.Season); err != nil {
			return err
		}
	}

	entry.Status = models.EntryApproved
	_, err = h.db.NewUpdate().Model(entry).Column("status").WherePK().Exec(ctx)
	return err
}
