// cmd/migrate/main.go
// Imports reference data from the legacy portal's MySQL database into the
// local PostgreSQL database: clubs, athletes, categories and boat classes.
//
// Usage:
//
//	LEGACY_MYSQL_DSN="user:pass@tcp(host:3306)/trf_legacy?parseTime=true" \
//	DB_PASS="pgpass" \
//	go run ./cmd/migrate
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/uptrace/bun"

	"github.com/nasreddinesoltani/trf-portal-api/config"
	bundb "github.com/nasreddinesoltani/trf-portal-api/db"
	"github.com/nasreddinesoltani/trf-portal-api/models"
)

const batchSize = 500

func main() {
	ctx := context.Background()

	cfg := config.Load()

	// --- MySQL (legacy portal) ---
	if cfg.LegacyMySQLDSN == "" {
		log.Fatal("LEGACY_MYSQL_DSN required, e.g.: user:pass@tcp(host:3306)/trf_legacy?parseTime=true")
	}
	myDB, err := sql.Open("mysql", cfg.LegacyMySQLDSN)
	if err != nil {
		log.Fatalf("open mysql: %v", err)
	}
	defer myDB.Close()
	myDB.SetMaxOpenConns(4)
	if err := myDB.PingContext(ctx); err != nil {
		log.Fatalf("ping mysql: %v", err)
	}
	log.Println("connected to legacy MySQL")

	// --- PostgreSQL ---
	pgDB := bundb.Setup(cfg)
	defer pgDB.Close()
	log.Println("connected to PostgreSQL")

	// Create tables (idempotent)
	if err := bundb.CreateTables(ctx, pgDB); err != nil {
		log.Fatalf("create tables: %v", err)
	}

	steps := []struct {
		name string
		fn   func() (int, error)
	}{
		{"clubs", func() (int, error) { return migrateClubs(ctx, myDB, pgDB) }},
		{"categories", func() (int, error) { return migrateCategories(ctx, myDB, pgDB) }},
		{"boat_classes", func() (int, error) { return migrateBoatClasses(ctx, myDB, pgDB) }},
		{"athletes", func() (int, error) { return migrateAthletes(ctx, myDB, pgDB) }},
	}

	for _, s := range steps {
		n, err := s.fn()
		if err != nil {
			log.Fatalf("migrate %s: %v", s.name, err)
		}
		log.Printf("%-15s  %d rows migrated", s.name, n)
	}

	log.Println("migration complete")
}

// --- helpers ---

func fmtDate(t time.Time) string {
	return t.Format("2006-01-02")
}

func flush(ctx context.Context, pg *bun.DB, batch []interface{}) error {
	for _, m := range batch {
		if _, err := pg.NewInsert().Model(m).On("CONFLICT DO NOTHING").Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func migrateClubs(ctx context.Context, my *sql.DB, pg *bun.DB) (int, error) {
	rows, err := my.QueryContext(ctx, `SELECT code, name, city FROM clubs`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	n := 0
	batch := []interface{}{}
	for rows.Next() {
		var code, name string
		var city sql.NullString
		if err := rows.Scan(&code, &name, &city); err != nil {
			return n, err
		}
		batch = append(batch, &models.Club{Code: code, Name: name, City: city.String})
		if len(batch) == batchSize {
			if err := flush(ctx, pg, batch); err != nil {
				return n, err
			}
			n += len(batch)
			batch = batch[:0]
		}
	}
	if err := flush(ctx, pg, batch); err != nil {
		return n, err
	}
	return n + len(batch), rows.Err()
}

func migrateCategories(ctx context.Context, my *sql.DB, pg *bun.DB) (int, error) {
	// The legacy schema stores the French and Arabic titles in columns;
	// they become the titles JSON map.
	rows, err := my.QueryContext(ctx,
		`SELECT code, gender, min_age, max_age, title_fr, title_ar, is_masters FROM categories`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var code, gender string
		var minAge, maxAge int
		var titleFR, titleAR sql.NullString
		var isMasters bool
		if err := rows.Scan(&code, &gender, &minAge, &maxAge, &titleFR, &titleAR, &isMasters); err != nil {
			return n, err
		}
		titles, err := json.Marshal(map[string]string{"fr": titleFR.String, "ar": titleAR.String})
		if err != nil {
			return n, err
		}
		cat := &models.Category{
			Code:      code,
			Gender:    models.Gender(gender),
			MinAge:    minAge,
			MaxAge:    maxAge,
			Titles:    titles,
			IsMasters: isMasters,
		}
		if _, err := pg.NewInsert().Model(cat).On("CONFLICT DO NOTHING").Exec(ctx); err != nil {
			return n, err
		}
		n++
	}
	return n, rows.Err()
}

func migrateBoatClasses(ctx context.Context, my *sql.DB, pg *bun.DB) (int, error) {
	rows, err := my.QueryContext(ctx,
		`SELECT code, name, crew_size, discipline, weight_class, gender, lane_count FROM boat_classes`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var code, name, discipline, weightClass, gender string
		var crewSize, laneCount int
		if err := rows.Scan(&code, &name, &crewSize, &discipline, &weightClass, &gender, &laneCount); err != nil {
			return n, err
		}
		bc := &models.BoatClass{
			Code:        code,
			Name:        name,
			CrewSize:    crewSize,
			Discipline:  discipline,
			WeightClass: weightClass,
			Gender:      models.Gender(gender),
			LaneCount:   laneCount,
		}
		if _, err := pg.NewInsert().Model(bc).On("CONFLICT DO NOTHING").Exec(ctx); err != nil {
			return n, err
		}
		n++
	}
	return n, rows.Err()
}

func migrateAthletes(ctx context.Context, my *sql.DB, pg *bun.DB) (int, error) {
	// Legacy athletes reference clubs by code; resolve against the rows
	// just imported.
	clubIDs := map[string]int{}
	var clubs []models.Club
	if err := pg.NewSelect().Model(&clubs).Scan(ctx); err != nil {
		return 0, err
	}
	for _, cl := range clubs {
		clubIDs[cl.Code] = cl.ClubID
	}

	rows, err := my.QueryContext(ctx,
		`SELECT license, first_name, last_name, gender, birth_date, club_code, active FROM athletes`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	n := 0
	batch := []interface{}{}
	for rows.Next() {
		var license, firstName, lastName, gender, clubCode string
		var birthDate time.Time
		var active bool
		if err := rows.Scan(&license, &firstName, &lastName, &gender, &birthDate, &clubCode, &active); err != nil {
			return n, err
		}
		clubID, ok := clubIDs[clubCode]
		if !ok {
			log.Printf("athlete %s: unknown club code %q, skipped", license, clubCode)
			continue
		}
		batch = append(batch, &models.Athlete{
			License:   license,
			FirstName: firstName,
			LastName:  lastName,
			Gender:    models.Gender(gender),
			BirthDate: fmtDate(birthDate),
			ClubID:    clubID,
			Active:    active,
		})
		if len(batch) == batchSize {
			if err := flush(ctx, pg, batch); err != nil {
				return n, err
			}
			n += len(batch)
			batch = batch[:0]
		}
	}
	if err := flush(ctx, pg, batch); err != nil {
		return n, err
	}
	return n + len(batch), rows.Err()
}
