package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/nasreddinesoltani/trf-portal-api/config"
	"github.com/nasreddinesoltani/trf-portal-api/db"
	"github.com/nasreddinesoltani/trf-portal-api/handlers"
	applog "github.com/nasreddinesoltani/trf-portal-api/logger"
	mw "github.com/nasreddinesoltani/trf-portal-api/middleware"
	"github.com/nasreddinesoltani/trf-portal-api/models"
)

// requestValidator wires go-playground/validator into echo's c.Validate.
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func main() {
	cfg := config.Load()
	logger, err := applog.New(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	bdb := db.Setup(cfg)
	defer bdb.Close()

	if err := db.CreateTables(context.Background(), bdb); err != nil {
		logger.Fatal("create tables failed", zap.Error(err))
	}

	h := handlers.New(bdb, cfg.JWTKey())

	e := echo.New()
	e.Validator = &requestValidator{validate: validator.New()}
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.Int("status", v.Status),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			switch {
			case v.Status >= 500:
				logger.Error("http request", fields...)
			case v.Status >= 400:
				logger.Warn("http request", fields...)
			default:
				logger.Info("http request", fields...)
			}
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"*", "Authorization"},
		AllowCredentials: true,
	}))

	// Public
	e.POST("/api/signin", h.Signin)

	// Protected – require valid JWT in Authorization header
	api := e.Group("/api", mw.JWT(cfg.JWTKey()))

	// Reference data
	api.GET("/clubs", h.Clubs)
	api.GET("/athletes", h.Athletes)
	api.GET("/categories", h.Categories)
	api.GET("/boat-classes", h.BoatClasses)
	api.GET("/competitions", h.Competitions)

	// Rankings
	api.GET("/competitions/:id/rankings", h.GetRankings)
	api.GET("/competitions/:id/ranking-systems", h.ListRankingSystems)
	api.GET("/competitions/:id/entries", h.Entries)

	// Events and brackets
	api.GET("/events", h.Events)
	api.GET("/events/:id/bracket", h.GetBracket)

	// Administrative operations – result entry and progression are gated
	// on the admin role.
	admin := api.Group("", mw.RequireRole(models.RoleAdmin))
	admin.POST("/clubs", h.CreateClub)
	admin.POST("/ranking-systems", h.CreateRankingSystem)
	admin.POST("/events", h.CreateEvent)
	admin.POST("/events/:id/seed", h.SeedTimeTrial)
	admin.POST("/events/:id/process/:phase", h.ProcessPhase)
	admin.POST("/races/:id/results", h.RecordRaceResults)
	admin.POST("/races/:id/amend", h.AmendRace)
	admin.POST("/entries/approve", h.ApproveEntries)

	if cfg.Debug {
		logger.Info("starting server", zap.String("mode", "debug"), zap.String("addr", cfg.Port))
		if err := e.Start(cfg.Port); err != nil {
			logger.Fatal("server exited", zap.Error(err))
		}
		return
	}

	autoTLS := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Cache:      autocert.DirCache(".cache"),
		HostPolicy: autocert.HostWhitelist(cfg.TLSDomains...),
	}

	s := &http.Server{
		Addr:         ":443",
		Handler:      e,
		TLSConfig:    autoTLS.TLSConfig(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	if err := s.ListenAndServeTLS("", ""); err != http.ErrServerClosed {
		logger.Error("tls server exited", zap.Error(err))
		os.Exit(1)
	}
}
