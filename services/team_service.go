package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/bracket-engine/models"
	"github.com/Dosada05/bracket-engine/repositories"
)

type CreateTeamInput struct {
	Name      string  `json:"name"`
	ShortName *string `json:"short_name,omitempty"`
	LogoURL   *string `json:"logo_url,omitempty"`
	Rating    float64 `json:"rating"`
	Region    *string `json:"region,omitempty"`
}

type TeamService interface {
	Create(ctx context.Context, input CreateTeamInput) (*models.Team, error)
	GetByID(ctx context.Context, id int) (*models.Team, error)
}

type teamService struct {
	teamRepo repositories.TeamRepository
	logger   *slog.Logger
}

func NewTeamService(teamRepo repositories.TeamRepository, logger *slog.Logger) TeamService {
	return &teamService{teamRepo: teamRepo, logger: logger}
}

func (s *teamService) Create(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, ErrTeamNameRequired)
	}
	if input.Rating < 0 {
		return nil, fmt.Errorf("%w: rating must not be negative", ErrValidationFailed)
	}

	team := &models.Team{
		Name:      name,
		ShortName: input.ShortName,
		LogoURL:   input.LogoURL,
		Rating:    input.Rating,
		Region:    input.Region,
	}
	if err := s.teamRepo.Create(ctx, nil, team); err != nil {
		return nil, mapRepositoryError(err)
	}
	s.logger.InfoContext(ctx, "team created", slog.Int("team_id", team.ID))
	return team, nil
}

func (s *teamService) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return team, nil
}
