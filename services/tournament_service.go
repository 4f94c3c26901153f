package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/bracket-engine/brackets"
	"github.com/Dosada05/bracket-engine/models"
	"github.com/Dosada05/bracket-engine/repositories"
)

const maxTournamentNameLength = 255

type CreateTournamentInput struct {
	Name    string                  `json:"name"`
	Format  models.TournamentFormat `json:"format,omitempty"`
	Options models.BracketOptions   `json:"options"`
}

type ListTournamentsInput struct {
	Status *models.TournamentStatus
	Format *models.TournamentFormat
	Limit  int
	Offset int
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, input ListTournamentsInput) ([]*models.Tournament, error)
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	registry       *brackets.Registry
	logger         *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	registry *brackets.Registry,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		registry:       registry,
		logger:         logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, ErrTournamentNameRequired)
	}
	if len(name) > maxTournamentNameLength {
		return nil, fmt.Errorf("%w: tournament name is longer than %d characters", ErrValidationFailed, maxTournamentNameLength)
	}

	opts := input.Options
	if input.Format != "" {
		if _, err := s.registry.Strategy(input.Format); err != nil {
			return nil, err
		}
		normalized, err := brackets.NormalizeOptions(input.Format, opts)
		if err != nil {
			return nil, err
		}
		opts = normalized
	}

	t := &models.Tournament{
		Name:    name,
		Format:  input.Format,
		Status:  models.StatusDraft,
		Options: opts,
	}
	if err := s.tournamentRepo.Create(ctx, nil, t); err != nil {
		return nil, mapRepositoryError(fmt.Errorf("create tournament: %w", err))
	}

	s.logger.InfoContext(ctx, "tournament created", slog.Int("tournament_id", t.ID), slog.String("format", string(t.Format)))
	return t, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return t, nil
}

func (s *tournamentService) List(ctx context.Context, input ListTournamentsInput) ([]*models.Tournament, error) {
	if input.Limit <= 0 || input.Limit > 100 {
		input.Limit = 20
	}
	if input.Offset < 0 {
		input.Offset = 0
	}
	tournaments, err := s.tournamentRepo.List(ctx, nil, repositories.ListTournamentsFilter{
		Status: input.Status,
		Format: input.Format,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return tournaments, nil
}
