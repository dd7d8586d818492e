package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger event action kinds.
const (
	ActionGameCreated  = "game_created"
	ActionGameEnded    = "game_ended"
	ActionPlayerJoined = "player_joined"
	ActionPlayerAdded  = "player_added"
	ActionRebuy        = "rebuy"
	ActionCashout      = "cashout"
)

// GameLog is one immutable entry in a game's event stream. ID is a
// server-assigned sequence; clients never order by their own clocks.
type GameLog struct {
	ID        int64           `json:"id"` // bigserial, total order within the game
	GameID    uuid.UUID       `json:"game_id"`
	ActorID   uuid.NullUUID   `json:"actor_id"` // who performed the action, null for system
	Action    string          `json:"action"`
	Details   json.RawMessage `json:"details"`
	CreatedAt time.Time       `json:"created_at"`
}

// Structured details payloads, one per action kind.

type GameCreatedDetails struct {
	TableName string `json:"table_name"`
}

type GameEndedDetails struct {
	TotalPot decimal.Decimal `json:"total_pot"`
}

type PlayerJoinedDetails struct {
	PlayerName string          `json:"player_name"`
	Buyin      decimal.Decimal `json:"buyin"`
}

type PlayerAddedDetails struct {
	PlayerName string          `json:"player_name"`
	Buyin      decimal.Decimal `json:"buyin"`
	AddedBy    string          `json:"added_by"`
}

type RebuyDetails struct {
	PlayerName string          `json:"player_name"`
	Amount     decimal.Decimal `json:"amount"`
	NewTotal   decimal.Decimal `json:"new_total"`
}

type CashoutDetails struct {
	PlayerName string          `json:"player_name"`
	Buyin      decimal.Decimal `json:"buyin"`
	Cashout    decimal.Decimal `json:"cashout"`
	Net        decimal.Decimal `json:"net"`
}
