package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/bracket-engine/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound      = errors.New("tournament not found")
	ErrTournamentInvalidFormat = errors.New("invalid tournament format or status")
)

type ListTournamentsFilter struct {
	Status *models.TournamentStatus
	Format *models.TournamentFormat
	Limit  int
	Offset int
}

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	// GetByIDForUpdate берёт блокировку строки турнира до конца транзакции exec.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	List(ctx context.Context, exec SQLExecutor, filter ListTournamentsFilter) ([]*models.Tournament, error)
	UpdateBracketState(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus, completedAt *time.Time) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `
	id, name, format, status, total_teams, total_rounds, options, created_at, updated_at, completed_at`

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	if t.Status == "" {
		t.Status = models.StatusDraft
	}
	query := `
		INSERT INTO tournaments (name, format, status, options)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := executor.QueryRowContext(ctx, query,
		t.Name, nullableFormat(t.Format), t.Status, t.Options,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	return r.scanTournament(r.getExecutor(exec).QueryRowContext(ctx, query, id))
}

func (r *postgresTournamentRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1 FOR UPDATE`
	t, err := r.scanTournament(r.getExecutor(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, handleConcurrencyError(err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, exec SQLExecutor, filter ListTournamentsFilter) ([]*models.Tournament, error) {
	executor := r.getExecutor(exec)
	queryBuilder := strings.Builder{}
	queryBuilder.WriteString(`SELECT` + tournamentColumns + ` FROM tournaments WHERE 1=1`)

	args := []interface{}{}
	argID := 1

	if filter.Status != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND status = $%d", argID))
		args = append(args, *filter.Status)
		argID++
	}
	if filter.Format != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND format = $%d", argID))
		args = append(args, *filter.Format)
		argID++
	}

	queryBuilder.WriteString(" ORDER BY created_at DESC, id DESC")

	if filter.Limit > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argID))
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argID))
		args = append(args, filter.Offset)
	}

	rows, err := executor.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t, errScan := r.scanTournament(rows)
		if errScan != nil {
			return nil, errScan
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

// UpdateBracketState сохраняет результат генерации: формат, статус, счётчики и опции.
func (r *postgresTournamentRepository) UpdateBracketState(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournaments SET
			format = $1, status = $2, total_teams = $3, total_rounds = $4, options = $5,
			completed_at = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at`

	err := executor.QueryRowContext(ctx, query,
		nullableFormat(t.Format), t.Status, t.TotalTeams, t.TotalRounds, t.Options, t.CompletedAt, t.ID,
	).Scan(&t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTournamentNotFound
		}
		return r.handleTournamentError(err)
	}
	return nil
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus, completedAt *time.Time) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET status = $1, completed_at = $2, updated_at = NOW() WHERE id = $3`
	result, err := executor.ExecContext(ctx, query, status, completedAt, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) scanTournament(row rowScanner) (*models.Tournament, error) {
	var (
		t      models.Tournament
		format sql.NullString
	)
	err := row.Scan(
		&t.ID, &t.Name, &format, &t.Status, &t.TotalTeams, &t.TotalRounds, &t.Options,
		&t.CreatedAt, &t.UpdatedAt, &t.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	t.Format = models.TournamentFormat(format.String)
	return &t, nil
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23514" { // check_violation
			return ErrTournamentInvalidFormat
		}
	}
	return handleConcurrencyError(err)
}

// nullableFormat: формат остаётся NULL до первой генерации сетки.
func nullableFormat(f models.TournamentFormat) interface{} {
	if f == "" {
		return nil
	}
	return string(f)
}
