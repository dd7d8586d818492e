package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tableside/poker-services/internal/ledgersvc/models"
)

func settledSeat(userID uuid.NullUUID, name, buyin, cashout string) *models.GamePlayer {
	return &models.GamePlayer{
		UserID:        userID,
		PlayerName:    name,
		TotalBuyin:    decimal.RequireFromString(buyin),
		CashoutAmount: decimal.NewNullDecimal(decimal.RequireFromString(cashout)),
		IsCashedOut:   true,
	}
}

func TestAggregateLeaderboardSumsAcrossGames(t *testing.T) {
	dana := uuid.NullUUID{UUID: uuid.New(), Valid: true}

	entries := aggregateLeaderboard([]*models.GamePlayer{
		settledSeat(dana, "Dana", "100", "150"),
		settledSeat(dana, "Dana", "100", "40"),
	})

	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "Dana", e.PlayerName)
	assert.Equal(t, 2, e.GamesPlayed)
	assert.True(t, e.TotalBuyin.Equal(decimal.RequireFromString("200")))
	assert.True(t, e.TotalCashout.Equal(decimal.RequireFromString("190")))
	assert.True(t, e.Net.Equal(decimal.RequireFromString("-10")))
}

func TestAggregateLeaderboardGuestsGroupByName(t *testing.T) {
	entries := aggregateLeaderboard([]*models.GamePlayer{
		settledSeat(uuid.NullUUID{}, "Mo", "50", "100"),
		settledSeat(uuid.NullUUID{}, "Mo", "50", "70"),
		settledSeat(uuid.NullUUID{}, "Maureen", "50", "0"),
	})

	require.Len(t, entries, 2)
	assert.Equal(t, "Mo", entries[0].PlayerName)
	assert.Equal(t, 2, entries[0].GamesPlayed)
	assert.True(t, entries[0].Net.Equal(decimal.RequireFromString("70")))
	assert.Equal(t, "Maureen", entries[1].PlayerName)
}

func TestAggregateLeaderboardSameNameDifferentUsersStaySplit(t *testing.T) {
	a := uuid.NullUUID{UUID: uuid.New(), Valid: true}
	b := uuid.NullUUID{UUID: uuid.New(), Valid: true}

	entries := aggregateLeaderboard([]*models.GamePlayer{
		settledSeat(a, "Sam", "100", "150"),
		settledSeat(b, "Sam", "100", "80"),
	})

	assert.Len(t, entries, 2)
}

func TestAggregateLeaderboardSkipsOpenSeats(t *testing.T) {
	entries := aggregateLeaderboard([]*models.GamePlayer{
		settledSeat(uuid.NullUUID{}, "Mo", "50", "60"),
		{PlayerName: "Open", TotalBuyin: decimal.RequireFromString("50")},
	})

	require.Len(t, entries, 1)
	assert.Equal(t, "Mo", entries[0].PlayerName)
}

func TestAggregateLeaderboardOrdering(t *testing.T) {
	entries := aggregateLeaderboard([]*models.GamePlayer{
		settledSeat(uuid.NullUUID{}, "Loser", "100", "50"),
		settledSeat(uuid.NullUUID{}, "Winner", "100", "200"),
		settledSeat(uuid.NullUUID{}, "Even B", "100", "100"),
		settledSeat(uuid.NullUUID{}, "Even A", "100", "100"),
	})

	require.Len(t, entries, 4)
	assert.Equal(t, "Winner", entries[0].PlayerName)
	// equal net and games resolves alphabetically
	assert.Equal(t, "Even A", entries[1].PlayerName)
	assert.Equal(t, "Even B", entries[2].PlayerName)
	assert.Equal(t, "Loser", entries[3].PlayerName)
}
