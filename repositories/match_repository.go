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
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchPositionConflict  = errors.New("match position already taken in bracket")
	ErrMatchTeamInvalid       = errors.New("match references unknown team")
	ErrMatchLinkInvalid       = errors.New("match links to unknown match")
	ErrMatchTournamentInvalid = errors.New("match references unknown tournament")
)

type ListMatchesFilter struct {
	BracketType *models.BracketType
	Round       *int
	Status      *models.MatchStatus
}

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, filter ListMatchesFilter) ([]*models.Match, error)
	// Update сохраняет изменяемое состояние матча: участников, счёт, статус и карты.
	Update(ctx context.Context, exec SQLExecutor, match *models.Match) error
	UpdateLinks(ctx context.Context, exec SQLExecutor, id int, winnerNextID, winnerSlot, loserNextID, loserSlot *int) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `
	id, tournament_id, round, position, bracket_type, team1_id, team2_id, status,
	team1_score, team2_score, best_of, maps_data, completed_at, created_at,
	winner_next_match_id, winner_next_slot, loser_next_match_id, loser_next_slot, group_number`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches (
			tournament_id, round, position, bracket_type, team1_id, team2_id, status,
			team1_score, team2_score, best_of, maps_data, completed_at,
			winner_next_match_id, winner_next_slot, loser_next_match_id, loser_next_slot, group_number
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		m.TournamentID, m.Round, m.Position, m.BracketType,
		nullableInt(m.Team1ID), nullableInt(m.Team2ID), m.Status,
		nullableInt(m.Team1Score), nullableInt(m.Team2Score), m.BestOf, m.Maps, m.CompletedAt,
		nullableInt(m.WinnerNextMatchID), nullableInt(m.WinnerNextSlot),
		nullableInt(m.LoserNextMatchID), nullableInt(m.LoserNextSlot), nullableInt(m.GroupNumber),
	).Scan(&m.ID, &m.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE id = $1`
	return r.scanMatch(r.getExecutor(exec).QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, filter ListMatchesFilter) ([]*models.Match, error) {
	executor := r.getExecutor(exec)
	queryBuilder := strings.Builder{}
	queryBuilder.WriteString(`SELECT` + matchColumns + ` FROM matches WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	argID := 2

	if filter.BracketType != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND bracket_type = $%d", argID))
		args = append(args, *filter.BracketType)
		argID++
	}
	if filter.Round != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND round = $%d", argID))
		args = append(args, *filter.Round)
		argID++
	}
	if filter.Status != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND status = $%d", argID))
		args = append(args, *filter.Status)
	}
	queryBuilder.WriteString(" ORDER BY bracket_type ASC, group_number ASC NULLS FIRST, round ASC, position ASC, id ASC")

	rows, err := executor.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, errScan := r.scanMatch(rows)
		if errScan != nil {
			return nil, errScan
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches SET
			team1_id = $1, team2_id = $2, status = $3, team1_score = $4, team2_score = $5,
			maps_data = $6, completed_at = $7
		WHERE id = $8`
	result, err := executor.ExecContext(ctx, query,
		nullableInt(m.Team1ID), nullableInt(m.Team2ID), m.Status,
		nullableInt(m.Team1Score), nullableInt(m.Team2Score), m.Maps, m.CompletedAt,
		m.ID,
	)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateLinks(ctx context.Context, exec SQLExecutor, id int, winnerNextID, winnerSlot, loserNextID, loserSlot *int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches SET
			winner_next_match_id = $1, winner_next_slot = $2, loser_next_match_id = $3, loser_next_slot = $4
		WHERE id = $5`
	result, err := executor.ExecContext(ctx, query,
		nullableInt(winnerNextID), nullableInt(winnerSlot), nullableInt(loserNextID), nullableInt(loserSlot), id,
	)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	_, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM matches WHERE tournament_id = $1`, tournamentID)
	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) scanMatch(row rowScanner) (*models.Match, error) {
	var (
		m                                            models.Match
		team1, team2, score1, score2                 sql.NullInt64
		winnerNext, winnerSlot, loserNext, loserSlot sql.NullInt64
		group                                        sql.NullInt64
	)
	err := row.Scan(
		&m.ID, &m.TournamentID, &m.Round, &m.Position, &m.BracketType, &team1, &team2, &m.Status,
		&score1, &score2, &m.BestOf, &m.Maps, &m.CompletedAt, &m.CreatedAt,
		&winnerNext, &winnerSlot, &loserNext, &loserSlot, &group,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	m.Team1ID, m.Team2ID = intFromNull(team1), intFromNull(team2)
	m.Team1Score, m.Team2Score = intFromNull(score1), intFromNull(score2)
	m.WinnerNextMatchID, m.WinnerNextSlot = intFromNull(winnerNext), intFromNull(winnerSlot)
	m.LoserNextMatchID, m.LoserNextSlot = intFromNull(loserNext), intFromNull(loserSlot)
	m.GroupNumber = intFromNull(group)
	return &m, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "matches_slot_key" {
				return ErrMatchPositionConflict
			}
		case "23503":
			switch pqErr.Constraint {
			case "matches_team1_id_fkey", "matches_team2_id_fkey":
				return ErrMatchTeamInvalid
			case "matches_winner_next_match_id_fkey", "matches_loser_next_match_id_fkey":
				return ErrMatchLinkInvalid
			default:
				return ErrMatchTournamentInvalid
			}
		}
	}
	return handleConcurrencyError(err)
}
