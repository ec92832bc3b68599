package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/nasreddinesoltani/trf-portal-api/models"
	"github.com/nasreddinesoltani/trf-portal-api/progression"
	"github.com/nasreddinesoltani/trf-portal-api/ranking"
)

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	db          *bun.DB
	JWTKey      []byte
	progression *progression.Service
	rankings    *ranking.Loader
}

// New creates a Handler with the given database connection and JWT signing key.
func New(db *bun.DB, jwtKey []byte) *Handler {
	return &Handler{
		db:          db,
		JWTKey:      jwtKey,
		progression: progression.NewService(db),
		rankings:    ranking.NewLoader(db),
	}
}

// httpError maps engine errors onto HTTP status codes: validation errors
// are 400, state conflicts 409, eligibility failures 422. Anything else is
// a 500.
func httpError(err error) *echo.HTTPError {
	switch {
	case models.IsValidation(err):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case models.IsStateConflict(err):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case models.IsNotEligible(err):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
