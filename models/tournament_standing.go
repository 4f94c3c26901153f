package models

import "time"

type StandingEntry struct {
	TournamentID    int       `json:"tournament_id" db:"tournament_id"`
	TeamID          int       `json:"team_id" db:"team_id"`
	Position        int       `json:"position" db:"position"`
	PlacementLabel  string    `json:"placement_label,omitempty" db:"placement_label"`
	Points          int       `json:"points" db:"points"`
	MatchesPlayed   int       `json:"matches_played" db:"matches_played"`
	Wins            int       `json:"wins" db:"wins"`
	Losses          int       `json:"losses" db:"losses"`
	Draws           int       `json:"draws" db:"draws"`
	MapWins         int       `json:"map_wins" db:"map_wins"`
	MapLosses       int       `json:"map_losses" db:"map_losses"`
	MapDifferential int       `json:"map_differential" db:"map_differential"`
	RoundWins       int       `json:"round_wins" db:"round_wins"`
	RoundLosses     int       `json:"round_losses" db:"round_losses"`
	RoundDiff       int       `json:"round_differential" db:"round_differential"`
	Buchholz        *int      `json:"buchholz,omitempty" db:"buchholz"` // только для Swiss
	GroupNumber     *int      `json:"group_number,omitempty" db:"group_number"`
	GroupPosition   *int      `json:"group_position,omitempty" db:"group_position"`
	Advancing       bool      `json:"advancing,omitempty" db:"advancing"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`

	Team *Team `json:"team,omitempty" db:"-"`
}
