package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tableside/poker-services/internal/ledgersvc/models"
	"github.com/tableside/poker-services/internal/ledgersvc/store"
)

type GameLogService struct {
	store *store.GameLogStore
}

func NewGameLogService(store *store.GameLogStore) *GameLogService {
	return &GameLogService{store: store}
}

func (s *GameLogService) GetLogs(ctx context.Context, gameID uuid.UUID) ([]*models.GameLog, error) {
	return s.store.GetLogsByGameID(ctx, gameID)
}

// FormatLogMessage renders one event as the chronological narrative line
// shown to users, e.g. "Dana rebought +50 (total: 150)".
func FormatLogMessage(l *models.GameLog) string {
	switch l.Action {
	case models.ActionGameCreated:
		var d models.GameCreatedDetails
		if err := json.Unmarshal(l.Details, &d); err != nil || d.TableName == "" {
			return "Game created"
		}
		return fmt.Sprintf("Game created at %s", d.TableName)
	case models.ActionGameEnded:
		var d models.GameEndedDetails
		if err := json.Unmarshal(l.Details, &d); err != nil {
			return "Game ended"
		}
		return fmt.Sprintf("Game ended. Total pot: %s", d.TotalPot)
	case models.ActionPlayerJoined:
		var d models.PlayerJoinedDetails
		if err := json.Unmarshal(l.Details, &d); err != nil {
			return l.Action
		}
		return fmt.Sprintf("%s joined with %s", d.PlayerName, d.Buyin)
	case models.ActionPlayerAdded:
		var d models.PlayerAddedDetails
		if err := json.Unmarshal(l.Details, &d); err != nil {
			return l.Action
		}
		return fmt.Sprintf("%s added by %s with %s", d.PlayerName, d.AddedBy, d.Buyin)
	case models.ActionRebuy:
		var d models.RebuyDetails
		if err := json.Unmarshal(l.Details, &d); err != nil {
			return l.Action
		}
		return fmt.Sprintf("%s rebought +%s (total: %s)", d.PlayerName, d.Amount, d.NewTotal)
	case models.ActionCashout:
		var d models.CashoutDetails
		if err := json.Unmarshal(l.Details, &d); err != nil {
			return l.Action
		}
		sign := ""
		if !d.Net.IsNegative() {
			sign = "+"
		}
		return fmt.Sprintf("%s cashed out %s (%s%s)", d.PlayerName, d.Cashout, sign, d.Net)
	default:
		return l.Action
	}
}

// ReplayedSeat is a seat's totals rebuilt from the event stream alone.
type ReplayedSeat struct {
	TotalBuyin  decimal.Decimal
	Cashout     decimal.Decimal
	IsCashedOut bool
}

// ReplayTotals folds the game's ordered event stream into per-seat
// totals, keyed by player name. The persisted columns on game_players
// are a cache of this fold; replay is the source of truth after a
// dispute or an offline gap. Logs may be passed newest-first (as the
// store returns them) or oldest-first; the fold orders by sequence id.
func ReplayTotals(logs []*models.GameLog) map[string]ReplayedSeat {
	ordered := make([]*models.GameLog, len(logs))
	copy(ordered, logs)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	seats := make(map[string]ReplayedSeat)
	for _, l := range ordered {
		switch l.Action {
		case models.ActionPlayerJoined:
			var d models.PlayerJoinedDetails
			if err := json.Unmarshal(l.Details, &d); err != nil {
				continue
			}
			seats[d.PlayerName] = ReplayedSeat{TotalBuyin: d.Buyin}
		case models.ActionPlayerAdded:
			var d models.PlayerAddedDetails
			if err := json.Unmarshal(l.Details, &d); err != nil {
				continue
			}
			seats[d.PlayerName] = ReplayedSeat{TotalBuyin: d.Buyin}
		case models.ActionRebuy:
			var d models.RebuyDetails
			if err := json.Unmarshal(l.Details, &d); err != nil {
				continue
			}
			seat := seats[d.PlayerName]
			seat.TotalBuyin = seat.TotalBuyin.Add(d.Amount)
			seats[d.PlayerName] = seat
		case models.ActionCashout:
			var d models.CashoutDetails
			if err := json.Unmarshal(l.Details, &d); err != nil {
				continue
			}
			seat := seats[d.PlayerName]
			seat.Cashout = d.Cashout
			seat.IsCashedOut = true
			seats[d.PlayerName] = seat
		}
	}
	return seats
}
