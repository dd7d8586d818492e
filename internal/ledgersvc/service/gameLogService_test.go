package service

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tableside/poker-services/internal/ledgersvc/models"
)

func mustDetails(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestFormatLogMessage(t *testing.T) {
	tests := []struct {
		name    string
		action  string
		details any
		want    string
	}{
		{
			name:    "game created",
			action:  models.ActionGameCreated,
			details: models.GameCreatedDetails{TableName: "Tuesday Home Game"},
			want:    "Game created at Tuesday Home Game",
		},
		{
			name:    "game ended",
			action:  models.ActionGameEnded,
			details: models.GameEndedDetails{TotalPot: dec("350")},
			want:    "Game ended. Total pot: 350",
		},
		{
			name:    "player joined",
			action:  models.ActionPlayerJoined,
			details: models.PlayerJoinedDetails{PlayerName: "Dana", Buyin: dec("50")},
			want:    "Dana joined with 50",
		},
		{
			name:    "player added by host",
			action:  models.ActionPlayerAdded,
			details: models.PlayerAddedDetails{PlayerName: "Guest Mo", Buyin: dec("50"), AddedBy: "host"},
			want:    "Guest Mo added by host with 50",
		},
		{
			name:    "rebuy",
			action:  models.ActionRebuy,
			details: models.RebuyDetails{PlayerName: "Dana", Amount: dec("50"), NewTotal: dec("150")},
			want:    "Dana rebought +50 (total: 150)",
		},
		{
			name:    "winning cashout",
			action:  models.ActionCashout,
			details: models.CashoutDetails{PlayerName: "Dana", Buyin: dec("100"), Cashout: dec("120"), Net: dec("20")},
			want:    "Dana cashed out 120 (+20)",
		},
		{
			name:    "losing cashout",
			action:  models.ActionCashout,
			details: models.CashoutDetails{PlayerName: "Mo", Buyin: dec("100"), Cashout: dec("60"), Net: dec("-40")},
			want:    "Mo cashed out 60 (-40)",
		},
		{
			name:    "break-even cashout keeps the plus",
			action:  models.ActionCashout,
			details: models.CashoutDetails{PlayerName: "Mo", Buyin: dec("100"), Cashout: dec("100"), Net: dec("0")},
			want:    "Mo cashed out 100 (+0)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &models.GameLog{Action: tt.action, Details: mustDetails(t, tt.details)}
			assert.Equal(t, tt.want, FormatLogMessage(l))
		})
	}
}

func TestFormatLogMessageUnknownAction(t *testing.T) {
	l := &models.GameLog{Action: "table_renamed", Details: json.RawMessage(`{}`)}
	assert.Equal(t, "table_renamed", FormatLogMessage(l))
}

func TestReplayTotals(t *testing.T) {
	logs := []*models.GameLog{
		{ID: 1, Action: models.ActionGameCreated, Details: json.RawMessage(`{"table_name":"T"}`)},
		{ID: 2, Action: models.ActionPlayerJoined, Details: json.RawMessage(`{"player_name":"Dana","buyin":"100"}`)},
		{ID: 3, Action: models.ActionPlayerAdded, Details: json.RawMessage(`{"player_name":"Mo","buyin":"50","added_by":"host"}`)},
		{ID: 4, Action: models.ActionRebuy, Details: json.RawMessage(`{"player_name":"Dana","amount":"50","new_total":"150"}`)},
		{ID: 5, Action: models.ActionCashout, Details: json.RawMessage(`{"player_name":"Mo","buyin":"50","cashout":"0","net":"-50"}`)},
	}

	seats := ReplayTotals(logs)
	require.Len(t, seats, 2)

	dana := seats["Dana"]
	assert.True(t, dana.TotalBuyin.Equal(dec("150")))
	assert.False(t, dana.IsCashedOut)

	mo := seats["Mo"]
	assert.True(t, mo.TotalBuyin.Equal(dec("50")))
	assert.True(t, mo.IsCashedOut)
	assert.True(t, mo.Cashout.Equal(dec("0")))
}

func TestReplayTotalsOrdersBySequence(t *testing.T) {
	// newest-first, as the store returns them
	logs := []*models.GameLog{
		{ID: 3, Action: models.ActionRebuy, Details: json.RawMessage(`{"player_name":"Dana","amount":"50","new_total":"150"}`)},
		{ID: 2, Action: models.ActionRebuy, Details: json.RawMessage(`{"player_name":"Dana","amount":"25","new_total":"100"}`)},
		{ID: 1, Action: models.ActionPlayerJoined, Details: json.RawMessage(`{"player_name":"Dana","buyin":"75"}`)},
	}

	seats := ReplayTotals(logs)
	assert.True(t, seats["Dana"].TotalBuyin.Equal(dec("150")))
}
