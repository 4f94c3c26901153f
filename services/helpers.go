package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/bracket-engine/brackets"
	"github.com/Dosada05/bracket-engine/models"
	"github.com/Dosada05/bracket-engine/repositories"
)

// mapRepositoryError переводит ошибки репозиториев в ошибки сервисного слоя,
// сохраняя исходную ошибку в цепочке.
func mapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return fmt.Errorf("%w: %w", ErrTournamentNotFound, err)
	case errors.Is(err, repositories.ErrMatchNotFound):
		return fmt.Errorf("%w: %w", ErrMatchNotFound, err)
	case errors.Is(err, repositories.ErrTeamNotFound):
		return fmt.Errorf("%w: %w", ErrTeamNotFound, err)
	case errors.Is(err, repositories.ErrTeamNameConflict):
		return fmt.Errorf("%w: %w", ErrTeamNameConflict, err)
	case errors.Is(err, repositories.ErrConcurrencyConflict):
		return fmt.Errorf("%w: %w", ErrConcurrencyConflict, err)
	case errors.Is(err, repositories.ErrSeedTeamInvalid),
		errors.Is(err, repositories.ErrMatchTeamInvalid),
		errors.Is(err, repositories.ErrStandingTeamInvalid),
		errors.Is(err, repositories.ErrTournamentInvalidFormat):
		return fmt.Errorf("%w: %w", brackets.ErrInvalidInput, err)
	}
	return err
}

// loadState читает граф турнира. Вызывается под блокировкой турнира.
func loadState(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament,
	matchRepo repositories.MatchRepository, seedRepo repositories.SeedRepository) (*brackets.State, error) {
	matches, err := matchRepo.ListByTournament(ctx, exec, t.ID, repositories.ListMatchesFilter{})
	if err != nil {
		return nil, fmt.Errorf("load matches of tournament %d: %w", t.ID, err)
	}
	seeds, err := seedRepo.ListByTournament(ctx, exec, t.ID)
	if err != nil {
		return nil, fmt.Errorf("load seeds of tournament %d: %w", t.ID, err)
	}
	return &brackets.State{Tournament: t, Matches: matches, Seeds: seeds}, nil
}

// replaceStandings заменяет снимок таблицы целиком.
func replaceStandings(ctx context.Context, exec repositories.SQLExecutor, repo repositories.StandingRepository,
	tournamentID int, standings []*models.StandingEntry) error {
	if err := repo.DeleteByTournamentID(ctx, exec, tournamentID); err != nil {
		return fmt.Errorf("clear standings of tournament %d: %w", tournamentID, err)
	}
	if err := repo.BatchCreate(ctx, exec, standings); err != nil {
		return fmt.Errorf("save standings of tournament %d: %w", tournamentID, err)
	}
	return nil
}

func attachTeams(standings []*models.StandingEntry, teams []models.Team) {
	byID := make(map[int]*models.Team, len(teams))
	for i := range teams {
		byID[teams[i].ID] = &teams[i]
	}
	for _, s := range standings {
		if team, ok := byID[s.TeamID]; ok {
			s.Team = team
		}
	}
}

func warningMessages(warnings []error) []string {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = w.Error()
	}
	return out
}
