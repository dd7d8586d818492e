package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tableside/poker-services/internal/ledgersvc/ledger"
	"github.com/tableside/poker-services/internal/ledgersvc/models"
	"github.com/tableside/poker-services/internal/ledgersvc/store"
)

// gameLookup is the slice of the game store the read paths need.
type gameLookup interface {
	GetGameByID(ctx context.Context, gameID uuid.UUID) (*models.Game, error)
}

type GamePlayerService struct {
	store *store.GamePlayerStore
	games gameLookup
}

func NewGamePlayerService(store *store.GamePlayerStore, games gameLookup) *GamePlayerService {
	return &GamePlayerService{store: store, games: games}
}

func (s *GamePlayerService) GetGamePlayers(ctx context.Context, gameID uuid.UUID) ([]*models.GamePlayer, error) {
	return s.store.GetPlayersByGameID(ctx, gameID)
}

// Rebuy applies a positive delta to the seat's stored total. The store
// executes it as one guarded increment; a conflict or state failure
// surfaces to the caller and is never retried here, because replaying a
// rebuy double-charges.
func (s *GamePlayerService) Rebuy(ctx context.Context, playerID uuid.UUID, amount decimal.Decimal, actorID uuid.UUID) (*models.GamePlayer, error) {
	if !amount.IsPositive() {
		return nil, ledger.Invalidf("rebuy amount must be positive, got %s", amount)
	}
	return s.store.Rebuy(ctx, playerID, amount, uuid.NullUUID{UUID: actorID, Valid: true})
}

// Cashout settles the seat once; a second call fails with a StateError.
func (s *GamePlayerService) Cashout(ctx context.Context, playerID uuid.UUID, amount decimal.Decimal, actorID uuid.UUID) (*models.GamePlayer, error) {
	if amount.IsNegative() {
		return nil, ledger.Invalidf("cashout amount cannot be negative, got %s", amount)
	}
	return s.store.Cashout(ctx, playerID, amount, uuid.NullUUID{UUID: actorID, Valid: true})
}

// PotSummary folds the game's seats into the live money totals. The
// game is resolved first: an unknown id is a NotFoundError, not an
// empty pot.
func (s *GamePlayerService) PotSummary(ctx context.Context, gameID uuid.UUID) (ledger.Pot, error) {
	if _, err := s.games.GetGameByID(ctx, gameID); err != nil {
		return ledger.Pot{}, err
	}
	players, err := s.store.GetPlayersByGameID(ctx, gameID)
	if err != nil {
		return ledger.Pot{}, err
	}
	return ledger.PotSummary(players), nil
}
