package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/bracket-engine/brackets"
	"github.com/Dosada05/bracket-engine/models"
	"github.com/Dosada05/bracket-engine/realtime"
	"github.com/Dosada05/bracket-engine/repositories"
	"github.com/Dosada05/bracket-engine/storage"
)

const archiveTimeout = 30 * time.Second

type CompleteMatchInput struct {
	Team1Score int                `json:"team1_score"`
	Team2Score int                `json:"team2_score"`
	Maps       []models.MapResult `json:"maps,omitempty"`
}

type CompleteResult struct {
	MatchID              int      `json:"match_id"`
	TournamentID         int      `json:"tournament_id"`
	Status               string   `json:"status"`
	AdvancementTriggered bool     `json:"advancement_triggered"`
	TournamentCompleted  bool     `json:"tournament_completed"`
	CreatedMatchIDs      []int    `json:"created_match_ids,omitempty"`
	Warnings             []string `json:"warnings,omitempty"`
	ArchiveURL           string   `json:"archive_url,omitempty"`
}

type MatchService interface {
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, filter repositories.ListMatchesFilter) ([]*models.Match, error)
	CompleteMatch(ctx context.Context, matchID int, input CompleteMatchInput) (*CompleteResult, error)
	CancelMatch(ctx context.Context, matchID int) (*CompleteResult, error)
}

type matchService struct {
	tx             TxManager
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	seedRepo       repositories.SeedRepository
	standingRepo   repositories.StandingRepository
	teamRepo       repositories.TeamRepository
	engine         *brackets.Engine
	archiver       storage.BracketArchiver
	notifier       Notifier
	logger         *slog.Logger
	now            func() time.Time
}

func NewMatchService(
	tx TxManager,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	seedRepo repositories.SeedRepository,
	standingRepo repositories.StandingRepository,
	teamRepo repositories.TeamRepository,
	engine *brackets.Engine,
	archiver storage.BracketArchiver,
	notifier Notifier,
	logger *slog.Logger,
) MatchService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if archiver == nil {
		archiver = storage.NewBracketArchiver(nil)
	}
	return &matchService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		seedRepo:       seedRepo,
		standingRepo:   standingRepo,
		teamRepo:       teamRepo,
		engine:         engine,
		archiver:       archiver,
		notifier:       notifier,
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (s *matchService) GetByID(ctx context.Context, id int) (*models.Match, error) {
	m, err := s.matchRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return m, nil
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int, filter repositories.ListMatchesFilter) ([]*models.Match, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, mapRepositoryError(err)
	}
	matches, err := s.matchRepo.ListByTournament(ctx, nil, tournamentID, filter)
	if err != nil {
		return nil, mapRepositoryError(fmt.Errorf("list matches of tournament %d: %w", tournamentID, err))
	}
	return matches, nil
}

// CompleteMatch records a result, advances the bracket and recomputes standings atomically.
// A second completion of the same match waits on the tournament lock and then fails with
// brackets.ErrAlreadyCompleted.
func (s *matchService) CompleteMatch(ctx context.Context, matchID int, input CompleteMatchInput) (*CompleteResult, error) {
	report := brackets.ScoreReport{
		Team1Score: input.Team1Score,
		Team2Score: input.Team2Score,
		Maps:       input.Maps,
	}
	return s.progress(ctx, matchID, func(state *brackets.State) (*brackets.Outcome, error) {
		return s.engine.CompleteMatch(state, matchID, report)
	})
}

func (s *matchService) CancelMatch(ctx context.Context, matchID int) (*CompleteResult, error) {
	return s.progress(ctx, matchID, func(state *brackets.State) (*brackets.Outcome, error) {
		return s.engine.CancelMatch(state, matchID)
	})
}

type stepFunc func(state *brackets.State) (*brackets.Outcome, error)

func (s *matchService) progress(ctx context.Context, matchID int, step stepFunc) (*CompleteResult, error) {
	var (
		state   *brackets.State
		outcome *brackets.Outcome
	)
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		// турнир матча нужен до блокировки; сам матч перечитывается уже под ней
		probe, err := s.matchRepo.GetByID(ctx, exec, matchID)
		if err != nil {
			return err
		}
		t, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, probe.TournamentID)
		if err != nil {
			return err
		}
		state, err = loadState(ctx, exec, t, s.matchRepo, s.seedRepo)
		if err != nil {
			return err
		}

		outcome, err = step(state)
		if err != nil {
			return err
		}
		return s.persistOutcome(ctx, exec, t, outcome)
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	result := &CompleteResult{
		MatchID:              outcome.Match.ID,
		TournamentID:         state.Tournament.ID,
		Status:               string(outcome.Match.Status),
		AdvancementTriggered: outcome.AdvancementTriggered,
		TournamentCompleted:  outcome.TournamentCompleted,
		Warnings:             warningMessages(outcome.Warnings),
	}
	for _, m := range outcome.Created {
		result.CreatedMatchIDs = append(result.CreatedMatchIDs, m.ID)
	}

	s.logger.InfoContext(ctx, "match processed",
		slog.Int("tournament_id", result.TournamentID),
		slog.Int("match_id", result.MatchID),
		slog.String("status", result.Status),
		slog.Bool("advancement_triggered", result.AdvancementTriggered),
		slog.Bool("tournament_completed", result.TournamentCompleted))

	s.notifier.Publish(result.TournamentID, realtime.EventMatchUpdated, MatchUpdatedPayload{
		Match:                outcome.Match,
		Updated:              outcome.Updated,
		Created:              outcome.Created,
		AdvancementTriggered: outcome.AdvancementTriggered,
	})
	s.notifier.Publish(result.TournamentID, realtime.EventStandingsUpdated, StandingsUpdatedPayload{
		TournamentID: result.TournamentID,
		Standings:    outcome.Standings,
	})

	if outcome.TournamentCompleted {
		result.ArchiveURL = s.archive(ctx, state, outcome.Standings)
		payload := TournamentCompletedPayload{TournamentID: result.TournamentID, ArchiveURL: result.ArchiveURL}
		if len(outcome.Standings) > 0 {
			payload.ChampionID = &outcome.Standings[0].TeamID
		}
		s.notifier.Publish(result.TournamentID, realtime.EventTournamentCompleted, payload)
	}
	return result, nil
}

func (s *matchService) persistOutcome(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, out *brackets.Outcome) error {
	if err := s.matchRepo.Update(ctx, exec, out.Match); err != nil {
		return fmt.Errorf("save match %d: %w", out.Match.ID, err)
	}
	for _, m := range out.Updated {
		if m.ID == out.Match.ID {
			continue
		}
		if err := s.matchRepo.Update(ctx, exec, m); err != nil {
			return fmt.Errorf("save advanced match %d: %w", m.ID, err)
		}
	}
	for _, m := range out.Created {
		if err := s.matchRepo.Create(ctx, exec, m); err != nil {
			return fmt.Errorf("create match round %d position %d: %w", m.Round, m.Position, err)
		}
	}

	if err := replaceStandings(ctx, exec, s.standingRepo, t.ID, out.Standings); err != nil {
		return err
	}

	if out.TournamentCompleted && t.Status != models.StatusCompleted {
		completedAt := s.now()
		if err := s.tournamentRepo.UpdateStatus(ctx, exec, t.ID, models.StatusCompleted, &completedAt); err != nil {
			return err
		}
		t.Status = models.StatusCompleted
		t.CompletedAt = &completedAt
	}
	return nil
}

// archive сохраняет итоговую сетку в хранилище. Ошибки только логируются: результат уже закоммичен.
func (s *matchService) archive(ctx context.Context, state *brackets.State, standings []*models.StandingEntry) string {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()

	teams, err := s.teamRepo.ListByIDs(ctx, nil, brackets.SeedOrder(state.Seeds))
	if err != nil {
		s.logger.WarnContext(ctx, "archive skipped: failed to load teams",
			slog.Int("tournament_id", state.Tournament.ID), slog.Any("error", err))
		return ""
	}
	attachTeams(standings, teams)

	res, err := s.archiver.Archive(ctx, storage.BracketSnapshot{
		Bracket:    brackets.BuildView(state.Tournament, state.Matches, state.Seeds, teams),
		Standings:  standings,
		ArchivedAt: s.now(),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to archive final bracket",
			slog.Int("tournament_id", state.Tournament.ID), slog.Any("error", err))
		return ""
	}
	if res == nil {
		return ""
	}
	s.logger.InfoContext(ctx, "final bracket archived",
		slog.Int("tournament_id", state.Tournament.ID), slog.String("key", res.Key))
	return res.Location
}
