package models

import (
	"encoding/json"

	"github.com/uptrace/bun"
)

// GroupBy selects the bucketing axis of a ranking system.
type GroupBy string

const (
	GroupByGender         GroupBy = "gender"
	GroupByCategory       GroupBy = "category"
	GroupByCategoryGender GroupBy = "category_gender"
)

// EntityType selects whether rankings are per athlete or per club.
type EntityType string

const (
	EntityAthlete EntityType = "athlete"
	EntityClub    EntityType = "club"
)

// ScoringMode selects points or medal-count scoring.
type ScoringMode string

const (
	ScorePoints ScoringMode = "points"
	ScoreMedals ScoringMode = "medals"
)

// PointMode controls club-entity routing. In mixed mode single-boat results
// credit the athlete axis only and crew results credit the club.
type PointMode string

const (
	PointModeAll   PointMode = "all"
	PointModeMixed PointMode = "mixed"
)

// JourneyMode selects which stages count toward the total.
type JourneyMode string

const (
	JourneyAll       JourneyMode = "all"
	JourneyFinalOnly JourneyMode = "final_only"
	JourneyBestN     JourneyMode = "best_n"
)

// DefaultPointTable is the federation point scale, position 1 first.
var DefaultPointTable = []int{20, 12, 8, 6, 4, 3, 2, 1}

// RankingSystem is a named, administrator-edited scoring configuration.
// It is immutable during a ranking computation.
type RankingSystem struct {
	bun.BaseModel `bun:"table:ranking_systems,alias:rs"`

	SystemID      int         `bun:"system_id,pk,autoincrement" json:"systemID"`
	CompetitionID *int        `bun:"competition_id" json:"competitionID,omitempty"`
	Name          string      `bun:"name,notnull" json:"name"`
	GroupBy       GroupBy     `bun:"group_by,notnull" json:"groupBy"`
	EntityType    EntityType  `bun:"entity_type,notnull" json:"entityType"`
	ScoringMode   ScoringMode `bun:"scoring_mode,notnull" json:"scoringMode"`
	PointMode     PointMode   `bun:"point_mode,notnull,default:'all'" json:"pointMode"`
	JourneyMode   JourneyMode `bun:"journey_mode,notnull,default:'all'" json:"journeyMode"`
	BestNCount    int         `bun:"best_n_count,notnull,default:0" json:"bestNCount"`

	PointTable         json.RawMessage `bun:"point_table,notnull,type:jsonb" json:"pointTable"`
	MaxScoringPosition int             `bun:"max_scoring_position,notnull,default:8" json:"maxScoringPosition"`
	DNFGetsPoints      bool            `bun:"dnf_gets_points,notnull,default:false" json:"dnfGetsPointsIfFewFinishers"`
}

// Points decodes the configured point table, falling back to the default
// scale when unset or malformed.
func (rs *RankingSystem) Points() []int {
	var table []int
	if err := json.Unmarshal(rs.PointTable, &table); err != nil || len(table) == 0 {
		return DefaultPointTable
	}
	return table
}

// Validate checks the configuration enums.
func (rs *RankingSystem) Validate() error {
	switch rs.GroupBy {
	case GroupByGender, GroupByCategory, GroupByCategoryGender:
	default:
		return Validationf("unknown groupBy %q", rs.GroupBy)
	}
	switch rs.EntityType {
	case EntityAthlete, EntityClub:
	default:
		return Validationf("unknown entityType %q", rs.EntityType)
	}
	switch rs.ScoringMode {
	case ScorePoints, ScoreMedals:
	default:
		return Validationf("unknown scoringMode %q", rs.ScoringMode)
	}
	switch rs.PointMode {
	case PointModeAll, PointModeMixed:
	default:
		return Validationf("unknown pointMode %q", rs.PointMode)
	}
	switch rs.JourneyMode {
	case JourneyAll, JourneyFinalOnly:
	case JourneyBestN:
		if rs.BestNCount < 1 {
			return Validationf("journeyMode best_n requires bestNCount >= 1")
		}
	default:
		return Validationf("unknown journeyMode %q", rs.JourneyMode)
	}
	if rs.MaxScoringPosition < 1 {
		return Validationf("maxScoringPosition must be >= 1")
	}
	return nil
}
