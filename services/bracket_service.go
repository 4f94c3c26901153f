package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/bracket-engine/brackets"
	"github.com/Dosada05/bracket-engine/models"
	"github.com/Dosada05/bracket-engine/realtime"
	"github.com/Dosada05/bracket-engine/repositories"
	"golang.org/x/sync/errgroup"
)

type GenerateBracketInput struct {
	// TeamIDs в порядке ввода; для manual посева это и есть посев.
	TeamIDs []int                   `json:"team_ids"`
	Format  models.TournamentFormat `json:"format,omitempty"`
	// Options == nil оставляет опции, сохранённые в турнире.
	Options *models.BracketOptions `json:"options,omitempty"`
}

type GenerateResult struct {
	TournamentID   int                     `json:"tournament_id"`
	Format         models.TournamentFormat `json:"format"`
	TotalTeams     int                     `json:"total_teams"`
	TotalRounds    int                     `json:"total_rounds"`
	MatchesCreated int                     `json:"matches_created"`
}

type BracketService interface {
	GenerateBracket(ctx context.Context, tournamentID int, input GenerateBracketInput) (*GenerateResult, error)
	GetBracketView(ctx context.Context, tournamentID int) (*brackets.BracketView, error)
}

type bracketService struct {
	tx             TxManager
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	seedRepo       repositories.SeedRepository
	matchRepo      repositories.MatchRepository
	standingRepo   repositories.StandingRepository
	engine         *brackets.Engine
	seeder         *brackets.Seeder
	notifier       Notifier
	logger         *slog.Logger
}

func NewBracketService(
	tx TxManager,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	seedRepo repositories.SeedRepository,
	matchRepo repositories.MatchRepository,
	standingRepo repositories.StandingRepository,
	engine *brackets.Engine,
	seeder *brackets.Seeder,
	notifier Notifier,
	logger *slog.Logger,
) BracketService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &bracketService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		seedRepo:       seedRepo,
		matchRepo:      matchRepo,
		standingRepo:   standingRepo,
		engine:         engine,
		seeder:         seeder,
		notifier:       notifier,
		logger:         logger,
	}
}

// GenerateBracket seeds the teams, builds the bracket and replaces whatever the tournament had
// before. Everything happens in one transaction under the tournament row lock.
func (s *bracketService) GenerateBracket(ctx context.Context, tournamentID int, input GenerateBracketInput) (*GenerateResult, error) {
	if len(input.TeamIDs) < 2 {
		return nil, fmt.Errorf("%w: at least 2 team ids are required, got %d", brackets.ErrInvalidInput, len(input.TeamIDs))
	}

	var result *GenerateResult
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if t.Status == models.StatusCompleted {
			return fmt.Errorf("%w: tournament %d", ErrTournamentCompleted, t.ID)
		}

		format := input.Format
		if format == "" {
			format = t.Format
		}
		if format == "" {
			return fmt.Errorf("%w: %w", ErrValidationFailed, ErrTournamentFormatMissing)
		}
		opts := t.Options
		if input.Options != nil {
			opts = *input.Options
		}
		opts, err = brackets.NormalizeOptions(format, opts)
		if err != nil {
			return err
		}

		teams, err := s.loadTeams(ctx, exec, input.TeamIDs)
		if err != nil {
			return err
		}
		groupCount := opts.GroupCount
		if format == models.FormatGroupStage {
			groupCount = brackets.GroupCount(len(teams), opts.GroupCount)
		}
		seeded, err := s.seeder.Seed(teams, opts.SeedingMethod, brackets.SeedOptions{
			Randomize:  opts.RandomizeSeeds,
			GroupCount: groupCount,
		})
		if err != nil {
			return err
		}
		seeds := brackets.Assignments(t.ID, seeded)

		bracket, err := s.engine.Generate(format, brackets.GenerateParams{
			Tournament: t,
			TeamIDs:    brackets.SeedOrder(seeds),
			Options:    opts,
		})
		if err != nil {
			return err
		}

		// старая сетка удаляется целиком
		if err := s.standingRepo.DeleteByTournamentID(ctx, exec, t.ID); err != nil {
			return err
		}
		if err := s.matchRepo.DeleteByTournament(ctx, exec, t.ID); err != nil {
			return err
		}
		if err := s.seedRepo.DeleteByTournament(ctx, exec, t.ID); err != nil {
			return err
		}
		if err := s.seedRepo.BatchCreate(ctx, exec, seeds); err != nil {
			return err
		}

		matches, err := s.persistBracket(ctx, exec, t.ID, opts.BestOf, bracket)
		if err != nil {
			return err
		}

		t.Format = format
		t.Options = opts
		t.Status = models.StatusOngoing
		t.TotalTeams = len(seeds)
		t.TotalRounds = bracket.TotalRounds
		t.CompletedAt = nil
		if err := s.tournamentRepo.UpdateBracketState(ctx, exec, t); err != nil {
			return err
		}

		standings, err := s.engine.Standings(&brackets.State{Tournament: t, Matches: matches, Seeds: seeds})
		if err != nil {
			return err
		}
		if err := replaceStandings(ctx, exec, s.standingRepo, t.ID, standings); err != nil {
			return err
		}

		result = &GenerateResult{
			TournamentID:   t.ID,
			Format:         format,
			TotalTeams:     t.TotalTeams,
			TotalRounds:    t.TotalRounds,
			MatchesCreated: len(matches),
		}
		return nil
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	s.logger.InfoContext(ctx, "bracket generated",
		slog.Int("tournament_id", result.TournamentID),
		slog.String("format", string(result.Format)),
		slog.Int("teams", result.TotalTeams),
		slog.Int("matches", result.MatchesCreated))
	s.notifier.Publish(result.TournamentID, realtime.EventBracketGenerated, result)
	return result, nil
}

// loadTeams returns the roster in the order of ids; unknown ids are an input error.
func (s *bracketService) loadTeams(ctx context.Context, exec repositories.SQLExecutor, ids []int) ([]models.Team, error) {
	found, err := s.teamRepo.ListByIDs(ctx, exec, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]models.Team, len(found))
	for _, team := range found {
		byID[team.ID] = team
	}

	teams := make([]models.Team, 0, len(ids))
	missing := make([]int, 0)
	for _, id := range ids {
		team, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		teams = append(teams, team)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: unknown team ids %v", brackets.ErrInvalidInput, missing)
	}
	return teams, nil
}

// persistBracket пишет сетку в два прохода: сначала матчи, затем связи по полученным id.
func (s *bracketService) persistBracket(ctx context.Context, exec repositories.SQLExecutor,
	tournamentID, bestOf int, bracket *brackets.Bracket) ([]*models.Match, error) {
	ids := make(map[string]int, len(bracket.Matches))
	matches := make([]*models.Match, 0, len(bracket.Matches))

	for _, bm := range bracket.Matches {
		m := bm.ToModel(tournamentID, bestOf)
		if err := s.matchRepo.Create(ctx, exec, m); err != nil {
			return nil, fmt.Errorf("create match %s: %w", bm.UID, err)
		}
		ids[bm.UID] = m.ID
		matches = append(matches, m)
	}

	for i, bm := range bracket.Matches {
		if bm.WinnerTo == nil && bm.LoserTo == nil {
			continue
		}
		winnerID, winnerSlot, loserID, loserSlot, err := bm.ResolveLinks(ids)
		if err != nil {
			return nil, err
		}
		m := matches[i]
		if err := s.matchRepo.UpdateLinks(ctx, exec, m.ID, winnerID, winnerSlot, loserID, loserSlot); err != nil {
			return nil, fmt.Errorf("link match %s: %w", bm.UID, err)
		}
		m.WinnerNextMatchID, m.WinnerNextSlot = winnerID, winnerSlot
		m.LoserNextMatchID, m.LoserNextSlot = loserID, loserSlot
	}
	return matches, nil
}

// GetBracketView собирает представление сетки; чтения идут параллельно вне транзакции.
func (s *bracketService) GetBracketView(ctx context.Context, tournamentID int) (*brackets.BracketView, error) {
	var (
		tournament *models.Tournament
		matches    []*models.Match
		seeds      []models.SeedAssignment
		teams      []models.Team
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tournament, err = s.tournamentRepo.GetByID(gctx, nil, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByTournament(gctx, nil, tournamentID, repositories.ListMatchesFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		seeds, err = s.seedRepo.ListByTournament(gctx, nil, tournamentID)
		if err != nil {
			return err
		}
		teams, err = s.teamRepo.ListByIDs(gctx, nil, brackets.SeedOrder(seeds))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, mapRepositoryError(err)
	}

	return brackets.BuildView(tournament, matches, seeds, teams), nil
}
