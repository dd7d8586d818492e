package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type PokerTable struct {
	ID             uuid.UUID      `json:"id"` // Primary key
	Name           string         `json:"name"`
	LocationName   sql.NullString `json:"location_name"`
	Currency       string         `json:"currency"`
	CurrencySymbol string         `json:"currency_symbol"`
	CreatedBy      uuid.NullUUID  `json:"created_by"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type TableMember struct {
	ID        uuid.UUID `json:"id"`
	TableID   uuid.UUID `json:"table_id"`
	UserID    uuid.UUID `json:"user_id"`
	IsRemoved bool      `json:"is_removed"`
	JoinedAt  time.Time `json:"joined_at"`
}
