package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/bracket-engine/models"
	"github.com/lib/pq"
)

var (
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamNameConflict = errors.New("team name already exists")
)

type TeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, team *models.Team) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Team, error)
	// ListByIDs возвращает найденные команды в порядке id; отсутствующие id просто пропускаются.
	ListByIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]models.Team, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTeamRepository) Create(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	query := `
		INSERT INTO teams (name, short_name, logo_url, rating, region)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		team.Name, team.ShortName, team.LogoURL, team.Rating, team.Region,
	).Scan(&team.ID)
	return r.handleTeamError(err)
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Team, error) {
	query := `SELECT id, name, short_name, logo_url, rating, region FROM teams WHERE id = $1`
	team, err := scanTeam(r.getExecutor(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *postgresTeamRepository) ListByIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]models.Team, error) {
	teams := make([]models.Team, 0, len(ids))
	if len(ids) == 0 {
		return teams, nil
	}
	query := `
		SELECT id, name, short_name, logo_url, rating, region
		FROM teams
		WHERE id = ANY($1)
		ORDER BY id ASC`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		team, errScan := scanTeam(rows)
		if errScan != nil {
			return nil, errScan
		}
		teams = append(teams, team)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

func scanTeam(row rowScanner) (models.Team, error) {
	var team models.Team
	err := row.Scan(&team.ID, &team.Name, &team.ShortName, &team.LogoURL, &team.Rating, &team.Region)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return team, ErrTeamNotFound
		}
		return team, err
	}
	return team, nil
}

func (r *postgresTeamRepository) handleTeamError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" && pqErr.Constraint == "teams_name_key" {
		return ErrTeamNameConflict
	}
	return err
}
