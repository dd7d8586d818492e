package archive

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tableside/poker-services/internal/ledgersvc/models"
)

func TestBuildSummary(t *testing.T) {
	endedAt := time.Date(2026, 8, 1, 23, 0, 0, 0, time.UTC)
	game := &models.Game{
		ID:         uuid.New(),
		TableID:    uuid.New(),
		GameNumber: 7,
		Status:     models.GameStatusEnded,
		CreatedAt:  endedAt.Add(-4 * time.Hour),
		EndedAt:    sql.NullTime{Time: endedAt, Valid: true},
	}
	players := []*models.GamePlayer{
		{
			PlayerName:    "Mo",
			TotalBuyin:    decimal.RequireFromString("100"),
			CashoutAmount: decimal.NewNullDecimal(decimal.RequireFromString("40")),
			IsCashedOut:   true,
		},
		{
			PlayerName:    "Dana",
			TotalBuyin:    decimal.RequireFromString("100"),
			CashoutAmount: decimal.NewNullDecimal(decimal.RequireFromString("160")),
			IsCashedOut:   true,
		},
	}

	doc := BuildSummary(game, players)

	assert.Equal(t, game.ID.String(), doc.GameID)
	assert.Equal(t, int64(7), doc.GameNumber)
	assert.Equal(t, "200", doc.TotalPot)
	assert.Equal(t, "0", doc.OnTable)
	assert.Equal(t, endedAt, doc.EndedAt)

	// winners first
	require.Len(t, doc.Results, 2)
	assert.Equal(t, "Dana", doc.Results[0].PlayerName)
	assert.Equal(t, "60", doc.Results[0].Net)
	assert.Equal(t, "Mo", doc.Results[1].PlayerName)
	assert.Equal(t, "-60", doc.Results[1].Net)
}

func TestBuildSummaryOpenSeatHasNoNet(t *testing.T) {
	game := &models.Game{ID: uuid.New(), TableID: uuid.New(), GameNumber: 1}
	players := []*models.GamePlayer{
		{PlayerName: "Open", TotalBuyin: decimal.RequireFromString("50")},
	}

	doc := BuildSummary(game, players)

	require.Len(t, doc.Results, 1)
	assert.False(t, doc.Results[0].Settled)
	assert.Empty(t, doc.Results[0].Net)
	assert.Equal(t, "50", doc.Results[0].TotalBuyin)
}
