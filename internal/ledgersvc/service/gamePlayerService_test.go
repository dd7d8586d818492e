package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tableside/poker-services/internal/ledgersvc/ledger"
	"github.com/tableside/poker-services/internal/ledgersvc/models"
)

type fakeGameLookup struct {
	game *models.Game
	err  error
}

func (f *fakeGameLookup) GetGameByID(ctx context.Context, gameID uuid.UUID) (*models.Game, error) {
	return f.game, f.err
}

func TestPotSummaryUnknownGameIsNotFound(t *testing.T) {
	gameID := uuid.New()
	svc := NewGamePlayerService(nil, &fakeGameLookup{err: ledger.NotFoundf("game %s not found", gameID)})

	_, err := svc.PotSummary(context.Background(), gameID)
	var nf *ledger.NotFoundError
	require.ErrorAs(t, err, &nf)
}
