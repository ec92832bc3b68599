package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nasreddinesoltani/trf-portal-api/models"
	"github.com/nasreddinesoltani/trf-portal-api/ranking"
)

// GetRankings computes grouped standings for one competition under one
// ranking system. The snapshot is whatever races are completed right now;
// stages still being raced simply contribute nothing yet.
func (h *Handler) GetRankings(c echo.Context) error {
	competitionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid competition id")
	}
	systemID, err := strconv.Atoi(c.QueryParam("systemID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing or invalid systemID param")
	}
	includeMasters := c.QueryParam("includeMasters") == "true"

	ctx := c.Request().Context()
	sys := &models.RankingSystem{}
	if err := h.db.NewSelect().Model(sys).Where("rs.system_id = ?", systemID).Scan(ctx); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "ranking system not found")
	}
	if sys.CompetitionID != nil && *sys.CompetitionID != competitionID {
		return echo.NewHTTPError(http.StatusBadRequest, "ranking system belongs to another competition")
	}

	snap, err := h.rankings.Load(ctx, competitionID, includeMasters)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	res, err := ranking.Compute(sys, snap)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}

// ListRankingSystems returns the systems available for a competition:
// its own plus the federation-wide ones.
func (h *Handler) ListRankingSystems(c echo.Context) error {
	competitionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid competition id")
	}

	var systems []models.RankingSystem
	err = h.db.NewSelect().Model(&systems).
		Where("rs.competition_id IS NULL OR rs.competition_id = ?", competitionID).
		OrderExpr("rs.name ASC").
		Scan(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, systems)
}

type rankingSystemRequest struct {
	CompetitionID      *int   `json:"competitionID"`
	Name               string `json:"name" validate:"required"`
	GroupBy            string `json:"groupBy" validate:"required,oneof=gender category category_gender"`
	EntityType         string `json:"entityType" validate:"required,oneof=athlete club"`
	ScoringMode        string `json:"scoringMode" validate:"required,oneof=points medals"`
	PointMode          string `json:"pointMode" validate:"omitempty,oneof=all mixed"`
	JourneyMode        string `json:"journeyMode" validate:"omitempty,oneof=all final_only best_n"`
	BestNCount         int    `json:"bestNCount" validate:"min=0"`
	PointTable         []int  `json:"pointTable" validate:"omitempty,dive,min=0"`
	MaxScoringPosition int    `json:"maxScoringPosition" validate:"min=0"`
	DNFGetsPoints      bool   `json:"dnfGetsPointsIfFewFinishers"`
}

// CreateRankingSystem stores a new scoring configuration.
func (h *Handler) CreateRankingSystem(c echo.Context) error {
	var req rankingSystemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if req.PointMode == "" {
		req.PointMode = string(models.PointModeAll)
	}
	if req.JourneyMode == "" {
		req.JourneyMode = string(models.JourneyAll)
	}
	if len(req.PointTable) == 0 {
		req.PointTable = models.DefaultPointTable
	}
	if req.MaxScoringPosition == 0 {
		req.MaxScoringPosition = len(req.PointTable)
	}
	table, err := json.Marshal(req.PointTable)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sys := &models.RankingSystem{
		CompetitionID:      req.CompetitionID,
		Name:               req.Name,
		GroupBy:            models.GroupBy(req.GroupBy),
		EntityType:         models.EntityType(req.EntityType),
		ScoringMode:        models.ScoringMode(req.ScoringMode),
		PointMode:          models.PointMode(req.PointMode),
		JourneyMode:        models.JourneyMode(req.JourneyMode),
		BestNCount:         req.BestNCount,
		PointTable:         table,
		MaxScoringPosition: req.MaxScoringPosition,
		DNFGetsPoints:      req.DNFGetsPoints,
	}
	if err := sys.Validate(); err != nil {
		return httpError(err)
	}

	if _, err := h.db.NewInsert().Model(sys).Exec(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, sys)
}
