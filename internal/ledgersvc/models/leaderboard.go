package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeaderboardEntry is one ranked row of a table's aggregated results.
// Guests with no profile are grouped by exact player name, which merges
// distinct people sharing a name and splits one person who spells their
// name differently across games. Known limitation of the name fallback.
type LeaderboardEntry struct {
	PlayerName   string          `json:"player_name"`
	UserID       uuid.NullUUID   `json:"user_id"`
	TotalBuyin   decimal.Decimal `json:"total_buyin"`
	TotalCashout decimal.Decimal `json:"total_cashout"`
	Net          decimal.Decimal `json:"net"`
	GamesPlayed  int             `json:"games_played"`
}
