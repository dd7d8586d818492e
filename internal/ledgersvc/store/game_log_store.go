package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tableside/poker-services/internal/ledgersvc/models"
)

// Querier is what a log append needs from its executor. Both *pgxpool.Pool
// and pgx.Tx satisfy it, so stores append events inside the same
// transaction as the state delta they describe.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type GameLogStore struct {
	db *pgxpool.Pool
}

func NewGameLogStore(db *pgxpool.Pool) *GameLogStore {
	return &GameLogStore{db: db}
}

// AppendTx writes one event row through q, which must be the transaction
// carrying the paired state mutation. The bigserial id is the event's
// position in the game's stream.
func (s *GameLogStore) AppendTx(ctx context.Context, q Querier, gameID uuid.UUID, actorID uuid.NullUUID, action string, details any) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to marshal log details: %w", err)
	}

	query := `
		INSERT INTO game_logs (game_id, actor_id, action, details)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := q.Exec(ctx, query, gameID, actorID, action, payload); err != nil {
		return fmt.Errorf("failed to append game log: %w", err)
	}

	return nil
}

// GetLogsByGameID returns the game's event stream, newest first, ordered
// by the server-assigned sequence.
func (s *GameLogStore) GetLogsByGameID(ctx context.Context, gameID uuid.UUID) ([]*models.GameLog, error) {
	query := `
		SELECT id, game_id, actor_id, action, details, created_at
		FROM game_logs
		WHERE game_id = $1
		ORDER BY id DESC
	`

	rows, err := s.db.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.GameLog
	for rows.Next() {
		var l models.GameLog
		err := rows.Scan(
			&l.ID,
			&l.GameID,
			&l.ActorID,
			&l.Action,
			&l.Details,
			&l.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game log: %w", err)
		}
		logs = append(logs, &l)
	}

	return logs, rows.Err()
}
