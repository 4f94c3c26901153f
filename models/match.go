package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusCancelled MatchStatus = "cancelled"
)

// IsTerminal - completed и cancelled больше не меняются.
func (s MatchStatus) IsTerminal() bool {
	return s == MatchStatusCompleted || s == MatchStatusCancelled
}

type BracketType string

const (
	BracketMain       BracketType = "main"
	BracketUpper      BracketType = "upper"
	BracketLower      BracketType = "lower"
	BracketGrandFinal BracketType = "grand_final"
	BracketReset      BracketType = "bracket_reset"
	BracketThirdPlace BracketType = "third_place"
	BracketRoundRobin BracketType = "round_robin"
	BracketSwiss      BracketType = "swiss"
	BracketGroup      BracketType = "group"
)

const (
	SlotTeam1 = 1
	SlotTeam2 = 2
)

// MapResult is the per-map breakdown of a series.
type MapResult struct {
	MapName     string `json:"map_name,omitempty"`
	Team1Rounds int    `json:"team1_rounds"`
	Team2Rounds int    `json:"team2_rounds"`
}

type MapResults []MapResult

func (m MapResults) Value() (driver.Value, error) {
	if m == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(m)
}

func (m *MapResults) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("unsupported type for map results")
	}
}

// Match - узел сетки. WinnerNext*/LoserNext* задают рёбра графа и вычисляются один раз при генерации.
type Match struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	Round        int         `json:"round" db:"round"`
	Position     int         `json:"position" db:"position"`
	BracketType  BracketType `json:"bracket_type" db:"bracket_type"`
	GroupNumber  *int        `json:"group_number,omitempty" db:"group_number"` // только для group_stage
	Team1ID      *int        `json:"team1_id,omitempty" db:"team1_id"`
	Team2ID      *int        `json:"team2_id,omitempty" db:"team2_id"`
	Status       MatchStatus `json:"status" db:"status"`
	Team1Score   *int        `json:"team1_score,omitempty" db:"team1_score"`
	Team2Score   *int        `json:"team2_score,omitempty" db:"team2_score"`
	BestOf       int         `json:"best_of" db:"best_of"`
	Maps         MapResults  `json:"maps,omitempty" db:"maps_data"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`

	WinnerNextMatchID *int `json:"winner_next_match_id,omitempty" db:"winner_next_match_id"`
	WinnerNextSlot    *int `json:"winner_next_slot,omitempty" db:"winner_next_slot"`
	LoserNextMatchID  *int `json:"loser_next_match_id,omitempty" db:"loser_next_match_id"`
	LoserNextSlot     *int `json:"loser_next_slot,omitempty" db:"loser_next_slot"`
}

func (m *Match) HasBothTeams() bool {
	return m.Team1ID != nil && m.Team2ID != nil
}

// WinnerID returns nil until the match is completed and not drawn.
func (m *Match) WinnerID() *int {
	if m.Status != MatchStatusCompleted || m.Team1Score == nil || m.Team2Score == nil || !m.HasBothTeams() {
		return nil
	}
	switch {
	case *m.Team1Score > *m.Team2Score:
		return m.Team1ID
	case *m.Team2Score > *m.Team1Score:
		return m.Team2ID
	}
	return nil
}

func (m *Match) LoserID() *int {
	w := m.WinnerID()
	if w == nil {
		return nil
	}
	if *w == *m.Team1ID {
		return m.Team2ID
	}
	return m.Team1ID
}

func (m *Match) HasTeam(teamID int) bool {
	return (m.Team1ID != nil && *m.Team1ID == teamID) || (m.Team2ID != nil && *m.Team2ID == teamID)
}
