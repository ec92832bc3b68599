package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/nasreddinesoltani/trf-portal-api/config"
	"github.com/nasreddinesoltani/trf-portal-api/models"
)

// Setup opens a PostgreSQL connection using the provided config.
func Setup(cfg *config.Config) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.PostgresDSN())))
	db := bun.NewDB(sqldb, pgdialect.New())

	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := db.PingContext(context.Background()); err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	return db
}

// CreateTables creates all tables in dependency order.
func CreateTables(ctx context.Context, db *bun.DB) error {
	tables := []interface{}{
		(*models.User)(nil),
		(*models.Club)(nil),
		(*models.Athlete)(nil),
		(*models.Category)(nil),
		(*models.BoatClass)(nil),
		(*models.Competition)(nil),
		(*models.Stage)(nil),
		(*models.Event)(nil),
		(*models.CompetitionEntry)(nil),
		(*models.EntrySeat)(nil),
		(*models.Race)(nil),
		(*models.Lane)(nil),
		(*models.RankingSystem)(nil),
	}

	for _, model := range tables {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("creating table for %T: %w", model, err)
		}
	}

	// A heat slot may only be occupied by one live race; superseded
	// (amended) races stay outside the constraint.
	constraints := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS races_live_no_dupes ON races (event_id, phase, heat) WHERE NOT amended`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'stages_no_dupes') THEN ALTER TABLE stages ADD CONSTRAINT stages_no_dupes UNIQUE (competition_id, sequence); END IF; END $$`,
	}
	for _, stmt := range constraints {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.Printf("constraint: %v", err)
		}
	}

	return nil
}
