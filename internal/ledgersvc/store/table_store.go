package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tableside/poker-services/internal/ledgersvc/ledger"
	"github.com/tableside/poker-services/internal/ledgersvc/models"
)

type TableStore struct {
	db *pgxpool.Pool
}

func NewTableStore(db *pgxpool.Pool) *TableStore {
	return &TableStore{db: db}
}

func (s *TableStore) GetTableByID(ctx context.Context, tableID uuid.UUID) (*models.PokerTable, error) {
	query := `
		SELECT id, name, location_name, currency, currency_symbol, created_by, created_at, updated_at
		FROM poker_tables
		WHERE id = $1
	`

	t := &models.PokerTable{}
	err := s.db.QueryRow(ctx, query, tableID).Scan(
		&t.ID,
		&t.Name,
		&t.LocationName,
		&t.Currency,
		&t.CurrencySymbol,
		&t.CreatedBy,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.NotFoundf("table %s not found", tableID)
		}
		return nil, fmt.Errorf("failed to get table by ID: %w", err)
	}

	return t, nil
}

// UpsertMember records table membership. Creating, joining or being
// added to a game at a table makes the identity a member; repeat calls
// are no-ops.
func (s *TableStore) UpsertMember(ctx context.Context, tableID, userID uuid.UUID) error {
	query := `
		INSERT INTO table_members (table_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (table_id, user_id) DO NOTHING
	`

	if _, err := s.db.Exec(ctx, query, tableID, userID); err != nil {
		return fmt.Errorf("failed to upsert table member: %w", err)
	}

	return nil
}
