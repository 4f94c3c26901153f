package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// TournamentStatus соответствует колонке status в таблице tournaments.
type TournamentStatus string

const (
	StatusDraft     TournamentStatus = "draft"
	StatusOngoing   TournamentStatus = "ongoing"
	StatusCompleted TournamentStatus = "completed"
)

type TournamentFormat string

const (
	FormatSingleElimination TournamentFormat = "single_elimination"
	FormatDoubleElimination TournamentFormat = "double_elimination"
	FormatRoundRobin        TournamentFormat = "round_robin"
	FormatSwiss             TournamentFormat = "swiss"
	FormatGroupStage        TournamentFormat = "group_stage"
)

// IsElimination reports whether standings for the format are positional.
func (f TournamentFormat) IsElimination() bool {
	return f == FormatSingleElimination || f == FormatDoubleElimination
}

type SeedingMethod string

const (
	SeedingRating   SeedingMethod = "rating"
	SeedingRandom   SeedingMethod = "random"
	SeedingManual   SeedingMethod = "manual"
	SeedingBalanced SeedingMethod = "balanced"
	SeedingRegional SeedingMethod = "regional"
)

type ByePlacement string

const (
	ByePlacementSeedingChart ByePlacement = "seeding_chart"
	ByePlacementEvenStep     ByePlacement = "even_step"
)

// BracketOptions хранится в tournaments.options (JSONB).
type BracketOptions struct {
	SeedingMethod   SeedingMethod `json:"seeding_method,omitempty"`
	RandomizeSeeds  bool          `json:"randomize_seeds,omitempty"`
	BestOf          int           `json:"best_of,omitempty"`
	ThirdPlaceMatch bool          `json:"third_place_match,omitempty"`
	BracketReset    bool          `json:"bracket_reset,omitempty"`
	AllowDraws      bool          `json:"allow_draws,omitempty"`
	RoundRobinLegs  int           `json:"round_robin_legs,omitempty"`
	SwissRounds     int           `json:"swiss_rounds,omitempty"`
	ByePlacement    ByePlacement  `json:"bye_placement,omitempty"`
	GroupCount      int           `json:"group_count,omitempty"`
	AdvancePerGroup int           `json:"advance_per_group,omitempty"`
}

func (o BracketOptions) Value() (driver.Value, error) {
	return json.Marshal(o)
}

func (o *BracketOptions) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*o = BracketOptions{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for bracket options")
	}
	if len(data) == 0 {
		*o = BracketOptions{}
		return nil
	}
	return json.Unmarshal(data, o)
}

type Tournament struct {
	ID          int              `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	Format      TournamentFormat `json:"format,omitempty" db:"format"`
	Status      TournamentStatus `json:"status" db:"status"`
	TotalTeams  int              `json:"total_teams" db:"total_teams"`
	TotalRounds int              `json:"total_rounds" db:"total_rounds"`
	Options     BracketOptions   `json:"options" db:"options"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty" db:"completed_at"`
}

// SeedAssignment - позиция команды в посеве турнира. Seed 1 - сильнейший посев.
type SeedAssignment struct {
	TournamentID int     `json:"tournament_id" db:"tournament_id"`
	TeamID       int     `json:"team_id" db:"team_id"`
	Seed         int     `json:"seed" db:"seed"`
	Rating       float64 `json:"rating" db:"rating"`
}
