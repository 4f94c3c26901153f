package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/bracket-engine/brackets"
	"github.com/Dosada05/bracket-engine/models"
	"github.com/Dosada05/bracket-engine/repositories"
)

type StandingsService interface {
	GetStandings(ctx context.Context, tournamentID int) ([]*models.StandingEntry, error)
	GetAdvancingTeams(ctx context.Context, tournamentID int) (*AdvancingResult, error)
}

// AdvancingResult - команды, выходящие из групп, в порядке посева плей-офф.
type AdvancingResult struct {
	TournamentID   int                     `json:"tournament_id"`
	GroupsComplete bool                    `json:"groups_complete"`
	Teams          []*models.StandingEntry `json:"teams"`
}

type standingsService struct {
	tournamentRepo repositories.TournamentRepository
	standingRepo   repositories.StandingRepository
	teamRepo       repositories.TeamRepository
	logger         *slog.Logger
}

func NewStandingsService(
	tournamentRepo repositories.TournamentRepository,
	standingRepo repositories.StandingRepository,
	teamRepo repositories.TeamRepository,
	logger *slog.Logger,
) StandingsService {
	return &standingsService{
		tournamentRepo: tournamentRepo,
		standingRepo:   standingRepo,
		teamRepo:       teamRepo,
		logger:         logger,
	}
}

// GetStandings returns the stored table ordered by position with team details attached.
// A tournament without a generated bracket has an empty table.
func (s *standingsService) GetStandings(ctx context.Context, tournamentID int) ([]*models.StandingEntry, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, mapRepositoryError(err)
	}
	standings, err := s.standingRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if len(standings) == 0 {
		return standings, nil
	}

	ids := make([]int, len(standings))
	for i, st := range standings {
		ids[i] = st.TeamID
	}
	teams, err := s.teamRepo.ListByIDs(ctx, nil, ids)
	if err != nil {
		// таблица полезна и без названий команд
		s.logger.WarnContext(ctx, "failed to load teams for standings",
			slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return standings, nil
	}
	attachTeams(standings, teams)
	return standings, nil
}

// GetAdvancingTeams lists the teams that currently qualify out of a group stage, group winners
// first. The caller seeds the playoff tournament from this order with manual seeding;
// GroupsComplete tells whether the order can still change.
func (s *standingsService) GetAdvancingTeams(ctx context.Context, tournamentID int) (*AdvancingResult, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if t.Format != models.FormatGroupStage {
		return nil, fmt.Errorf("%w: tournament %d is %s, not a group stage", ErrValidationFailed, tournamentID, t.Format)
	}

	standings, err := s.GetStandings(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return &AdvancingResult{
		TournamentID:   tournamentID,
		GroupsComplete: t.Status == models.StatusCompleted,
		Teams:          brackets.AdvancingTeams(standings),
	}, nil
}
