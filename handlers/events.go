package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/nasreddinesoltani/trf-portal-api/models"
)

type createEventRequest struct {
	CompetitionID int    `json:"competitionID" validate:"required,min=1"`
	StageID       int    `json:"stageID" validate:"required,min=1"`
	BoatClassID   int    `json:"boatClassID" validate:"required,min=1"`
	CategoryID    int    `json:"categoryID" validate:"required,min=1"`
	Gender        string `json:"gender" validate:"required,oneof=men women mixed"`

	HasRepechage    bool `json:"hasRepechage"`
	TTDirectAdvance int  `json:"ttDirectAdvance" validate:"required,min=1"`
	TTToRepechage   int  `json:"ttToRepechage" validate:"min=0"`
	AdvancePerHeat  int  `json:"advancePerHeat" validate:"required,min=1"`
}

// CreateEvent registers one boat-class/category/gender combination with its
// progression configuration.
func (h *Handler) CreateEvent(c echo.Context) error {
	var req createEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.HasRepechage && req.TTToRepechage < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "repechage events need ttToRepechage >= 1")
	}

	ctx := c.Request().Context()
	gender := models.Gender(req.Gender)

	bc := &models.BoatClass{}
	if err := h.db.NewSelect().Model(bc).Where("bc.boat_class_id = ?", req.BoatClassID).Scan(ctx); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown boat class")
	}
	if !bc.AllowsGender(gender) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "boat class "+bc.Code+" does not admit "+req.Gender+" events")
	}

	cat := &models.Category{}
	if err := h.db.NewSelect().Model(cat).Where("ct.category_id = ?", req.CategoryID).Scan(ctx); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown category")
	}
	if cat.Gender != models.GenderMixed && cat.Gender != gender {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "category "+cat.Code+" does not admit "+req.Gender+" events")
	}

	ev := &models.Event{
		CompetitionID:   req.CompetitionID,
		StageID:         req.StageID,
		BoatClassID:     req.BoatClassID,
		CategoryID:      req.CategoryID,
		Gender:          gender,
		Status:          models.EventPending,
		HasRepechage:    req.HasRepechage,
		TTDirectAdvance: req.TTDirectAdvance,
		TTToRepechage:   req.TTToRepechage,
		AdvancePerHeat:  req.AdvancePerHeat,
	}
	if _, err := h.db.NewInsert().Model(ev).Exec(ctx); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate key value") {
			return echo.NewHTTPError(http.StatusConflict, "event already exists for this combination")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, ev)
}

// Events lists a competition's events with status and phase.
func (h *Handler) Events(c echo.Context) error {
	competitionID := c.QueryParam("competitionID")

	var events []models.Event
	q := h.db.NewSelect().Model(&events).OrderExpr("ev.event_id ASC")
	if competitionID != "" {
		q = q.Where("ev.competition_id = ?", competitionID)
	}
	if err := q.Scan(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, events)
}

// GetBracket returns an event's races grouped by phase, current result sets
// only (superseded races are excluded).
func (h *Handler) GetBracket(c echo.Context) error {
	eventID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}

	ctx := c.Request().Context()
	ev := &models.Event{}
	if err := h.db.NewSelect().Model(ev).Where("ev.event_id = ?", eventID).Scan(ctx); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "event not found")
	}

	var races []*models.Race
	err = h.db.NewSelect().Model(&races).
		Relation("Lanes", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("ln.number ASC")
		}).
		Where("rc.event_id = ?", eventID).
		Where("NOT rc.amended").
		OrderExpr("rc.heat ASC").
		Scan(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	phases := map[models.Phase][]*models.Race{}
	for _, rc := range races {
		phases[rc.Phase] = append(phases[rc.Phase], rc)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"event":  ev,
		"phases": phases,
	})
}
