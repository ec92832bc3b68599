package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nasreddinesoltani/trf-portal-api/models"
)

// Clubs returns all clubs ordered by code.
func (h *Handler) Clubs(c echo.Context) error {
	var clubs []models.Club
	err := h.db.NewSelect().Model(&clubs).OrderExpr("cl.code ASC").Scan(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, clubs)
}

type createClubRequest struct {
	Code string `json:"code" validate:"required"`
	Name string `json:"name" validate:"required"`
	City string `json:"city" validate:"required"`
}

// CreateClub inserts a new club.
func (h *Handler) CreateClub(c echo.Context) error {
	var req createClubRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	club := &models.Club{
		Code: strings.ToUpper(strings.TrimSpace(req.Code)),
		Name: strings.TrimSpace(req.Name),
		City: strings.TrimSpace(req.City),
	}
	if _, err := h.db.NewInsert().Model(club).Exec(c.Request().Context()); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate key value") {
			return echo.NewHTTPError(http.StatusConflict, "club already exists")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, club)
}

// Athletes returns athletes, optionally filtered by club and gender.
func (h *Handler) Athletes(c echo.Context) error {
	clubID := c.QueryParam("clubID")
	gender := c.QueryParam("gender")

	var athletes []models.Athlete
	q := h.db.NewSelect().Model(&athletes).OrderExpr("a.last_name ASC, a.first_name ASC")
	if clubID != "" {
		q = q.Where("a.club_id = ?", clubID)
	}
	if gender != "" {
		q = q.Where("a.gender = ?", gender)
	}
	if err := q.Scan(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, athletes)
}

// Categories returns all categories.
func (h *Handler) Categories(c echo.Context) error {
	var cats []models.Category
	err := h.db.NewSelect().Model(&cats).OrderExpr("ct.min_age ASC, ct.code ASC").Scan(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, cats)
}

// BoatClasses returns all boat classes.
func (h *Handler) BoatClasses(c echo.Context) error {
	var bcs []models.BoatClass
	err := h.db.NewSelect().Model(&bcs).OrderExpr("bc.crew_size ASC, bc.code ASC").Scan(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, bcs)
}

// Competitions returns all competitions with their stages, newest season
// first.
func (h *Handler) Competitions(c echo.Context) error {
	var comps []models.Competition
	err := h.db.NewSelect().Model(&comps).
		Relation("Stages").
		OrderExpr("cp.season DESC, cp.name ASC").
		Scan(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, comps)
}
