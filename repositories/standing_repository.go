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
	ErrStandingTeamInvalid       = errors.New("standing references unknown team")
	ErrStandingTournamentInvalid = errors.New("standing tournament conflict or invalid")
)

// StandingRepository хранит снимок таблицы. Таблица всегда пересчитывается целиком,
// поэтому точечного Update нет: DeleteByTournamentID + BatchCreate в одной транзакции.
type StandingRepository interface {
	BatchCreate(ctx context.Context, exec SQLExecutor, standings []*models.StandingEntry) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.StandingEntry, error)
	DeleteByTournamentID(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

func (r *postgresStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const standingColumnCount = 20

func (r *postgresStandingRepository) BatchCreate(ctx context.Context, exec SQLExecutor, standings []*models.StandingEntry) error {
	if len(standings) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)

	queryBuilder := strings.Builder{}
	queryBuilder.WriteString(`
		INSERT INTO standings (
			tournament_id, team_id, position, placement_label, points, matches_played,
			wins, losses, draws, map_wins, map_losses, map_differential,
			round_wins, round_losses, round_differential, buchholz,
			group_number, group_position, advancing, updated_at
		) VALUES `)

	now := time.Now().UTC()
	args := make([]interface{}, 0, len(standings)*standingColumnCount)
	for i, s := range standings {
		if i > 0 {
			queryBuilder.WriteString(", ")
		}
		queryBuilder.WriteString("(")
		for j := 1; j <= standingColumnCount; j++ {
			if j > 1 {
				queryBuilder.WriteString(", ")
			}
			queryBuilder.WriteString(fmt.Sprintf("$%d", i*standingColumnCount+j))
		}
		queryBuilder.WriteString(")")

		if s.UpdatedAt.IsZero() {
			s.UpdatedAt = now
		}
		args = append(args,
			s.TournamentID, s.TeamID, s.Position, s.PlacementLabel, s.Points, s.MatchesPlayed,
			s.Wins, s.Losses, s.Draws, s.MapWins, s.MapLosses, s.MapDifferential,
			s.RoundWins, s.RoundLosses, s.RoundDiff, nullableInt(s.Buchholz),
			nullableInt(s.GroupNumber), nullableInt(s.GroupPosition), s.Advancing, s.UpdatedAt,
		)
	}

	_, err := executor.ExecContext(ctx, queryBuilder.String(), args...)
	return r.handleStandingError(err)
}

func (r *postgresStandingRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.StandingEntry, error) {
	query := `
		SELECT tournament_id, team_id, position, placement_label, points, matches_played,
		       wins, losses, draws, map_wins, map_losses, map_differential,
		       round_wins, round_losses, round_differential, buchholz,
		       group_number, group_position, advancing, updated_at
		FROM standings
		WHERE tournament_id = $1
		ORDER BY position ASC, team_id ASC`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := make([]*models.StandingEntry, 0)
	for rows.Next() {
		var (
			s                               models.StandingEntry
			buchholz, group, groupPosition sql.NullInt64
		)
		err := rows.Scan(
			&s.TournamentID, &s.TeamID, &s.Position, &s.PlacementLabel, &s.Points, &s.MatchesPlayed,
			&s.Wins, &s.Losses, &s.Draws, &s.MapWins, &s.MapLosses, &s.MapDifferential,
			&s.RoundWins, &s.RoundLosses, &s.RoundDiff, &buchholz,
			&group, &groupPosition, &s.Advancing, &s.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		s.Buchholz = intFromNull(buchholz)
		s.GroupNumber, s.GroupPosition = intFromNull(group), intFromNull(groupPosition)
		standings = append(standings, &s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return standings, nil
}

func (r *postgresStandingRepository) DeleteByTournamentID(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	_, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM standings WHERE tournament_id = $1`, tournamentID)
	return r.handleStandingError(err)
}

func (r *postgresStandingRepository) handleStandingError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
		if pqErr.Constraint == "standings_team_id_fkey" {
			return ErrStandingTeamInvalid
		}
		return ErrStandingTournamentInvalid
	}
	return handleConcurrencyError(err)
}
