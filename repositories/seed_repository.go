package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/bracket-engine/models"
	"github.com/lib/pq"
)

var (
	ErrSeedConflict    = errors.New("seed or team already assigned in tournament")
	ErrSeedTeamInvalid = errors.New("seed references unknown team")
)

type SeedRepository interface {
	BatchCreate(ctx context.Context, exec SQLExecutor, seeds []models.SeedAssignment) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.SeedAssignment, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresSeedRepository struct {
	db *sql.DB
}

func NewPostgresSeedRepository(db *sql.DB) SeedRepository {
	return &postgresSeedRepository{db: db}
}

func (r *postgresSeedRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresSeedRepository) BatchCreate(ctx context.Context, exec SQLExecutor, seeds []models.SeedAssignment) error {
	if len(seeds) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)

	queryBuilder := strings.Builder{}
	queryBuilder.WriteString(`INSERT INTO seed_assignments (tournament_id, team_id, seed, rating) VALUES `)
	args := make([]interface{}, 0, len(seeds)*4)
	for i, s := range seeds {
		if i > 0 {
			queryBuilder.WriteString(", ")
		}
		base := i * 4
		queryBuilder.WriteString(fmt.Sprintf("($%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4))
		args = append(args, s.TournamentID, s.TeamID, s.Seed, s.Rating)
	}

	_, err := executor.ExecContext(ctx, queryBuilder.String(), args...)
	return r.handleSeedError(err)
}

func (r *postgresSeedRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.SeedAssignment, error) {
	query := `
		SELECT tournament_id, team_id, seed, rating
		FROM seed_assignments
		WHERE tournament_id = $1
		ORDER BY seed ASC`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seeds := make([]models.SeedAssignment, 0)
	for rows.Next() {
		var s models.SeedAssignment
		if err := rows.Scan(&s.TournamentID, &s.TeamID, &s.Seed, &s.Rating); err != nil {
			return nil, err
		}
		seeds = append(seeds, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return seeds, nil
}

func (r *postgresSeedRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	_, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM seed_assignments WHERE tournament_id = $1`, tournamentID)
	return r.handleSeedError(err)
}

func (r *postgresSeedRepository) handleSeedError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			return ErrSeedConflict
		case "23503":
			if pqErr.Constraint == "seed_assignments_team_id_fkey" {
				return ErrSeedTeamInvalid
			}
		}
	}
	return handleConcurrencyError(err)
}
