package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Profile is a durable identity. Guests seated by name only have no profile.
type Profile struct {
	ID           uuid.UUID       `json:"id"`
	Username     string          `json:"username"`
	UserTag      string          `json:"user_tag"` // short shareable handle, e.g. #4821
	Nickname     string          `json:"nickname"`
	DefaultBuyin decimal.Decimal `json:"default_buyin"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
