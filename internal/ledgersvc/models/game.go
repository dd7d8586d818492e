package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const (
	GameStatusLive  = "live"
	GameStatusEnded = "ended"
)

type Game struct {
	ID         uuid.UUID     `json:"id"`          // Primary key
	TableID    uuid.UUID     `json:"table_id"`    // FK to poker_tables(id)
	Status     string        `json:"status"`      // 'live', 'ended'
	Passcode   string        `json:"passcode"`    // Short join code, unique among live games only
	GameNumber int64         `json:"game_number"` // Per-table monotonic sequence
	CreatedBy  uuid.NullUUID `json:"created_by"`  // FK to profiles(id), host
	CreatedAt  time.Time     `json:"created_at"`
	EndedAt    sql.NullTime  `json:"ended_at"`
}
