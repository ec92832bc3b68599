package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nasreddinesoltani/trf-portal-api/models"
	"github.com/nasreddinesoltani/trf-portal-api/progression"
)

type raceResultsRequest struct {
	Results []progression.LaneInput `json:"results" validate:"required,min=1,dive"`
}

// RecordRaceResults attaches a full result set to a scheduled race. A race
// that is already completed returns a conflict; corrections go through
// AmendRace.
func (h *Handler) RecordRaceResults(c echo.Context) error {
	raceID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid race id")
	}
	var req raceResultsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rc, err := h.progression.RecordResults(c.Request().Context(), raceID, req.Results)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rc)
}

// AmendRace supersedes a completed race with a corrected result set. The
// original stays in the result log flagged amended.
func (h *Handler) AmendRace(c echo.Context) error {
	raceID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid race id")
	}
	var req raceResultsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rc, err := h.progression.AmendRace(c.Request().Context(), raceID, req.Results)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rc)
}

// SeedTimeTrial draws the first-phase heats of an event from its approved
// entries.
func (h *Handler) SeedTimeTrial(c echo.Context) error {
	eventID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}

	races, err := h.progression.SeedTimeTrial(c.Request().Context(), eventID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, races)
}

// ProcessPhase runs the guarded advancement for one phase of an event.
func (h *Handler) ProcessPhase(c echo.Context) error {
	eventID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}
	phase := models.Phase(c.Param("phase"))
	if models.PhaseIndex(phase) < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown phase "+c.Param("phase"))
	}

	adv, err := h.progression.ProcessPhase(c.Request().Context(), eventID, phase)
	if err != nil {
		return httpError(err)
	}

	msg := "advanced to " + string(adv.NextPhase)
	if adv.Completed {
		msg = "event completed, medals assigned"
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":       msg,
		"advancedCount": len(adv.Advanced),
		"races":         adv.Races,
		"medals":        adv.Medals,
	})
}
