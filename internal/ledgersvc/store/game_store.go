package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tableside/poker-services/internal/ledgersvc/ledger"
	"github.com/tableside/poker-services/internal/ledgersvc/models"
)

const gameColumns = "id, table_id, status, passcode, game_number, created_by, created_at, ended_at"

type GameStore struct {
	db   *pgxpool.Pool
	logs *GameLogStore
}

func NewGameStore(db *pgxpool.Pool, logs *GameLogStore) *GameStore {
	return &GameStore{db: db, logs: logs}
}

func scanGame(row pgx.Row) (*models.Game, error) {
	game := &models.Game{}
	err := row.Scan(
		&game.ID,
		&game.TableID,
		&game.Status,
		&game.Passcode,
		&game.GameNumber,
		&game.CreatedBy,
		&game.CreatedAt,
		&game.EndedAt,
	)
	if err != nil {
		return nil, err
	}
	return game, nil
}

func (s *GameStore) GetGameByID(ctx context.Context, gameID uuid.UUID) (*models.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE id = $1
	`

	game, err := scanGame(s.db.QueryRow(ctx, query, gameID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.NotFoundf("game %s not found", gameID)
		}
		return nil, fmt.Errorf("failed to get game by ID: %w", err)
	}

	return game, nil
}

// GetLiveGameByPasscode resolves a join code against live games only.
// Passcodes of ended games are recycled and never match here.
func (s *GameStore) GetLiveGameByPasscode(ctx context.Context, passcode string) (*models.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE passcode = $1 AND status = $2
		LIMIT 1
	`

	game, err := scanGame(s.db.QueryRow(ctx, query, passcode, models.GameStatusLive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.NotFoundf("no live game with passcode %s", passcode)
		}
		return nil, fmt.Errorf("failed to get game by passcode: %w", err)
	}

	return game, nil
}

// CreateGame inserts a live game and its game_created event in one
// transaction. The per-table game number is assigned in the statement,
// not by the caller; the table row is locked first so two concurrent
// creates on the same table serialize and cannot both read the same
// MAX(game_number). A passcode colliding with another live game trips
// the uniq_live_passcode partial index and comes back as a ConflictError
// so the caller can regenerate and retry.
func (s *GameStore) CreateGame(ctx context.Context, tableID, createdBy uuid.UUID, passcode, tableName string) (*models.Game, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin create game tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		WITH locked_table AS (
			SELECT id
			FROM poker_tables
			WHERE id = $1
			FOR UPDATE
		)
		INSERT INTO games (table_id, status, passcode, game_number, created_by)
		SELECT lt.id, $2, $3,
			COALESCE((SELECT MAX(game_number) FROM games WHERE table_id = lt.id), 0) + 1,
			$4
		FROM locked_table lt
		RETURNING ` + gameColumns + `
	`

	game, err := scanGame(tx.QueryRow(ctx, query, tableID, models.GameStatusLive, passcode, createdBy))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.Invalidf("invalid table reference: %s", tableID)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" && pgErr.ConstraintName == "uniq_live_passcode" {
				return nil, ledger.Conflictf("passcode %s is taken by a live game", passcode)
			}
			if pgErr.Code == "23503" {
				return nil, ledger.Invalidf("invalid table reference: %s", tableID)
			}
		}
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	actor := uuid.NullUUID{UUID: createdBy, Valid: true}
	details := models.GameCreatedDetails{TableName: tableName}
	if err := s.logs.AppendTx(ctx, tx, game.ID, actor, models.ActionGameCreated, details); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit create game tx: %w", err)
	}

	return game, nil
}

// EndGame is the only transition out of 'live'. The update is guarded on
// the current status, so of two concurrent end taps exactly one commits
// the transition; the loser gets a StateError. The game_ended event
// snapshots the final pot inside the same transaction. Seats may still
// be open: ending with money on the table is allowed.
func (s *GameStore) EndGame(ctx context.Context, gameID uuid.UUID, actorID uuid.NullUUID) (*models.Game, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin end game tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE games
		SET status = $2, ended_at = now()
		WHERE id = $1 AND status = $3
		RETURNING ` + gameColumns + `
	`

	game, err := scanGame(tx.QueryRow(ctx, query, gameID, models.GameStatusEnded, models.GameStatusLive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM games WHERE id = $1)`, gameID).Scan(&exists); err != nil {
				return nil, fmt.Errorf("failed to check game existence: %w", err)
			}
			if !exists {
				return nil, ledger.NotFoundf("game %s not found", gameID)
			}
			return nil, ledger.Statef("game %s has already ended", gameID)
		}
		return nil, fmt.Errorf("failed to end game: %w", err)
	}

	var totalPot decimal.Decimal
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_buyin), 0)
		FROM game_players
		WHERE game_id = $1
	`, gameID).Scan(&totalPot)
	if err != nil {
		return nil, fmt.Errorf("failed to sum final pot: %w", err)
	}

	details := models.GameEndedDetails{TotalPot: totalPot}
	if err := s.logs.AppendTx(ctx, tx, game.ID, actorID, models.ActionGameEnded, details); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit end game tx: %w", err)
	}

	return game, nil
}
