package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GamePlayer is one seat in a game. UserID is null for guests the host
// seated by name only. TotalBuyin only ever grows while the seat is open;
// CashoutAmount is null until the seat settles.
type GamePlayer struct {
	ID            uuid.UUID           `json:"id"`      // Primary key
	GameID        uuid.UUID           `json:"game_id"` // FK to games(id)
	UserID        uuid.NullUUID       `json:"user_id"` // FK to profiles(id), null for guests
	PlayerName    string              `json:"player_name"`
	TotalBuyin    decimal.Decimal     `json:"total_buyin"`
	CashoutAmount decimal.NullDecimal `json:"cashout_amount"`
	IsCashedOut   bool                `json:"is_cashed_out"`
	CashedOutAt   sql.NullTime        `json:"cashed_out_at"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}
