package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tableside/poker-services/internal/ledgersvc/ledger"
	"github.com/tableside/poker-services/internal/ledgersvc/models"
)

const playerColumns = "id, game_id, user_id, player_name, total_buyin, cashout_amount, is_cashed_out, cashed_out_at, created_at, updated_at"

type GamePlayerStore struct {
	db   *pgxpool.Pool
	logs *GameLogStore
}

func NewGamePlayerStore(db *pgxpool.Pool, logs *GameLogStore) *GamePlayerStore {
	return &GamePlayerStore{db: db, logs: logs}
}

func scanPlayer(row pgx.Row) (*models.GamePlayer, error) {
	gp := &models.GamePlayer{}
	err := row.Scan(
		&gp.ID,
		&gp.GameID,
		&gp.UserID,
		&gp.PlayerName,
		&gp.TotalBuyin,
		&gp.CashoutAmount,
		&gp.IsCashedOut,
		&gp.CashedOutAt,
		&gp.CreatedAt,
		&gp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return gp, nil
}

func (s *GamePlayerStore) GetPlayersByGameID(ctx context.Context, gameID uuid.UUID) ([]*models.GamePlayer, error) {
	query := `
		SELECT ` + playerColumns + `
		FROM game_players
		WHERE game_id = $1
		ORDER BY created_at
	`

	rows, err := s.db.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game players: %w", err)
	}
	defer rows.Close()

	var players []*models.GamePlayer
	for rows.Next() {
		gp, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game player: %w", err)
		}
		players = append(players, gp)
	}

	return players, rows.Err()
}

// GetSeatForUser returns the user's seat in the game, or nil when the
// user is not seated.
func (s *GamePlayerStore) GetSeatForUser(ctx context.Context, gameID, userID uuid.UUID) (*models.GamePlayer, error) {
	query := `
		SELECT ` + playerColumns + `
		FROM game_players
		WHERE game_id = $1 AND user_id = $2
	`

	gp, err := scanPlayer(s.db.QueryRow(ctx, query, gameID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // not seated
		}
		return nil, fmt.Errorf("failed to get seat for user: %w", err)
	}

	return gp, nil
}

type SeatPlayerParams struct {
	GameID     uuid.UUID
	UserID     uuid.NullUUID // null for guests
	PlayerName string
	Buyin      decimal.Decimal
	ActorID    uuid.NullUUID
	Action     string // player_joined or player_added
	AddedBy    string // host nickname, player_added only
}

// SeatPlayer inserts a seat and its join event in one transaction. The
// CTE locks the game row and enforces status='live', so a seat can never
// land in an ended game. It fails with:
// - StateError if the game is not live
// - NotFoundError if the game does not exist
// - ConflictError if the user already holds a seat (unique_game_user)
func (s *GamePlayerStore) SeatPlayer(ctx context.Context, arg SeatPlayerParams) (*models.GamePlayer, error) {
	if arg.PlayerName == "" {
		return nil, ledger.Invalidf("player name cannot be empty")
	}
	if !arg.Buyin.IsPositive() {
		return nil, ledger.Invalidf("buy-in must be positive, got %s", arg.Buyin)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin seat player tx: %w", err)
	}
	defer tx.Rollback(ctx)

	const query = `
WITH live_game AS (
  SELECT id
  FROM games
  WHERE id = $1
    AND status = 'live'
  FOR UPDATE
)
INSERT INTO game_players (game_id, user_id, player_name, total_buyin)
SELECT lg.id, $2, $3, $4
FROM live_game lg
RETURNING ` + playerColumns + `
`

	gp, err := scanPlayer(tx.QueryRow(ctx, query, arg.GameID, arg.UserID, arg.PlayerName, arg.Buyin))
	if err != nil {
		// zero rows means the game is not live (or does not exist)
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM games WHERE id = $1)`, arg.GameID).Scan(&exists); err != nil {
				return nil, fmt.Errorf("failed to check game existence: %w", err)
			}
			if !exists {
				return nil, ledger.NotFoundf("game %s not found", arg.GameID)
			}
			return nil, ledger.Statef("game %s has ended, no new seats", arg.GameID)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" && pgErr.ConstraintName == "unique_game_user" {
				return nil, ledger.Conflictf("user already seated in game %s", arg.GameID)
			}
			if pgErr.Code == "23503" {
				return nil, ledger.Invalidf("invalid reference: %s", pgErr.Message)
			}
		}
		return nil, fmt.Errorf("failed to seat player: %w", err)
	}

	var details any
	switch arg.Action {
	case models.ActionPlayerAdded:
		details = models.PlayerAddedDetails{PlayerName: gp.PlayerName, Buyin: gp.TotalBuyin, AddedBy: arg.AddedBy}
	default:
		details = models.PlayerJoinedDetails{PlayerName: gp.PlayerName, Buyin: gp.TotalBuyin}
	}
	if err := s.logs.AppendTx(ctx, tx, gp.GameID, arg.ActorID, arg.Action, details); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit seat player tx: %w", err)
	}

	return gp, nil
}

// Rebuy adds amount to the seat's stored total as a single guarded
// increment. The delta is applied in SQL against the stored value, never
// against a client-cached copy, so two devices rebuying at once both
// land. The guard re-checks is_cashed_out and game status under the
// seat's row lock: a rebuy racing a cashout loses cleanly instead of
// reviving the seat.
func (s *GamePlayerStore) Rebuy(ctx context.Context, playerID uuid.UUID, amount decimal.Decimal, actorID uuid.NullUUID) (*models.GamePlayer, error) {
	if !amount.IsPositive() {
		return nil, ledger.Invalidf("rebuy amount must be positive, got %s", amount)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin rebuy tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
WITH seat AS (
  SELECT gp.id
  FROM game_players gp
  JOIN games g ON g.id = gp.game_id
  WHERE gp.id = $1
    AND gp.is_cashed_out = false
    AND g.status = 'live'
  FOR UPDATE OF gp
)
UPDATE game_players p
SET total_buyin = p.total_buyin + $2, updated_at = now()
FROM seat
WHERE p.id = seat.id
RETURNING ` + prefixedPlayerColumns("p") + `
`

	gp, err := scanPlayer(tx.QueryRow(ctx, query, playerID, amount))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.classifySeatFailure(ctx, tx, playerID, "rebuy")
		}
		return nil, fmt.Errorf("failed to apply rebuy: %w", err)
	}

	details := models.RebuyDetails{PlayerName: gp.PlayerName, Amount: amount, NewTotal: gp.TotalBuyin}
	if err := s.logs.AppendTx(ctx, tx, gp.GameID, actorID, models.ActionRebuy, details); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit rebuy tx: %w", err)
	}

	return gp, nil
}

// Cashout settles the seat. The guard is the same conditional predicate
// as Rebuy, evaluated atomically with the write: a second cashout finds
// is_cashed_out already true and changes nothing.
func (s *GamePlayerStore) Cashout(ctx context.Context, playerID uuid.UUID, amount decimal.Decimal, actorID uuid.NullUUID) (*models.GamePlayer, error) {
	if amount.IsNegative() {
		return nil, ledger.Invalidf("cashout amount cannot be negative, got %s", amount)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin cashout tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
WITH seat AS (
  SELECT gp.id
  FROM game_players gp
  JOIN games g ON g.id = gp.game_id
  WHERE gp.id = $1
    AND gp.is_cashed_out = false
    AND g.status = 'live'
  FOR UPDATE OF gp
)
UPDATE game_players p
SET cashout_amount = $2, is_cashed_out = true, cashed_out_at = now(), updated_at = now()
FROM seat
WHERE p.id = seat.id
RETURNING ` + prefixedPlayerColumns("p") + `
`

	gp, err := scanPlayer(tx.QueryRow(ctx, query, playerID, amount))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.classifySeatFailure(ctx, tx, playerID, "cashout")
		}
		return nil, fmt.Errorf("failed to apply cashout: %w", err)
	}

	net := amount.Sub(gp.TotalBuyin)
	details := models.CashoutDetails{PlayerName: gp.PlayerName, Buyin: gp.TotalBuyin, Cashout: amount, Net: net}
	if err := s.logs.AppendTx(ctx, tx, gp.GameID, actorID, models.ActionCashout, details); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit cashout tx: %w", err)
	}

	return gp, nil
}

// classifySeatFailure decides why a guarded seat mutation matched zero
// rows: missing seat, settled seat, or ended game.
func (s *GamePlayerStore) classifySeatFailure(ctx context.Context, q Querier, playerID uuid.UUID, op string) error {
	var isCashedOut bool
	var status string
	err := q.QueryRow(ctx, `
		SELECT gp.is_cashed_out, g.status
		FROM game_players gp
		JOIN games g ON g.id = gp.game_id
		WHERE gp.id = $1
	`, playerID).Scan(&isCashedOut, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.NotFoundf("seat %s not found", playerID)
		}
		return fmt.Errorf("failed to classify %s failure: %w", op, err)
	}
	if isCashedOut {
		return ledger.Statef("seat %s is already cashed out, %s rejected", playerID, op)
	}
	return ledger.Statef("game has ended, %s rejected", op)
}

// GetSettledPlayersForWindow returns the cashed-out seats of the table's
// ended games whose creation time falls inside the window. Open seats
// and live games contribute nothing to aggregation. Nil bounds mean all
// time.
func (s *GamePlayerStore) GetSettledPlayersForWindow(ctx context.Context, tableID uuid.UUID, windowStart, windowEnd *time.Time) ([]*models.GamePlayer, error) {
	query := `
		SELECT ` + prefixedPlayerColumns("gp") + `
		FROM game_players gp
		JOIN games g ON g.id = gp.game_id
		WHERE g.table_id = $1
		  AND g.status = $2
		  AND gp.is_cashed_out = true
		  AND ($3::timestamptz IS NULL OR g.created_at >= $3)
		  AND ($4::timestamptz IS NULL OR g.created_at <= $4)
	`

	rows, err := s.db.Query(ctx, query, tableID, models.GameStatusEnded, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to get settled players: %w", err)
	}
	defer rows.Close()

	var players []*models.GamePlayer
	for rows.Next() {
		gp, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settled player: %w", err)
		}
		players = append(players, gp)
	}

	return players, rows.Err()
}

func prefixedPlayerColumns(alias string) string {
	return alias + ".id, " + alias + ".game_id, " + alias + ".user_id, " + alias + ".player_name, " +
		alias + ".total_buyin, " + alias + ".cashout_amount, " + alias + ".is_cashed_out, " +
		alias + ".cashed_out_at, " + alias + ".created_at, " + alias + ".updated_at"
}
