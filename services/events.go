package services

import (
	"github.com/Dosada05/bracket-engine/models"
)

// Notifier delivers tournament events after commit. Delivery is at-least-once.
type Notifier interface {
	Publish(tournamentID int, eventType string, payload interface{})
}

type nopNotifier struct{}

func (nopNotifier) Publish(int, string, interface{}) {}

type MatchUpdatedPayload struct {
	Match                *models.Match   `json:"match"`
	Updated              []*models.Match `json:"updated,omitempty"`
	Created              []*models.Match `json:"created,omitempty"`
	AdvancementTriggered bool            `json:"advancement_triggered"`
}

type StandingsUpdatedPayload struct {
	TournamentID int                     `json:"tournament_id"`
	Standings    []*models.StandingEntry `json:"standings"`
}

type TournamentCompletedPayload struct {
	TournamentID int    `json:"tournament_id"`
	ChampionID   *int   `json:"champion_id,omitempty"`
	ArchiveURL   string `json:"archive_url,omitempty"`
}
