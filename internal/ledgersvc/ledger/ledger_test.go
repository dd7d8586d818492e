package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tableside/poker-services/internal/ledgersvc/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestApplyBuyinAccumulates(t *testing.T) {
	seat := models.GamePlayer{PlayerName: "Dana", TotalBuyin: d("100")}

	seat, err := ApplyBuyin(seat, d("50"))
	require.NoError(t, err)
	assert.True(t, seat.TotalBuyin.Equal(d("150")))

	seat, err = ApplyBuyin(seat, d("25"))
	require.NoError(t, err)
	assert.True(t, seat.TotalBuyin.Equal(d("175")))
}

func TestApplyBuyinRejectsNonPositive(t *testing.T) {
	seat := models.GamePlayer{PlayerName: "Dana", TotalBuyin: d("100")}

	_, err := ApplyBuyin(seat, d("0"))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = ApplyBuyin(seat, d("-20"))
	require.ErrorAs(t, err, &ve)
}

func TestApplyBuyinRejectsSettledSeat(t *testing.T) {
	seat := models.GamePlayer{
		PlayerName:    "Dana",
		TotalBuyin:    d("100"),
		CashoutAmount: decimal.NewNullDecimal(d("120")),
		IsCashedOut:   true,
	}

	_, err := ApplyBuyin(seat, d("50"))
	var se *StateError
	require.ErrorAs(t, err, &se)
	assert.True(t, seat.TotalBuyin.Equal(d("100")))
}

func TestApplyCashoutSettlesOnce(t *testing.T) {
	seat := models.GamePlayer{PlayerName: "Mo", TotalBuyin: d("100")}

	seat, err := ApplyCashout(seat, d("135"))
	require.NoError(t, err)
	assert.True(t, seat.IsCashedOut)
	require.True(t, seat.CashoutAmount.Valid)
	assert.True(t, seat.CashoutAmount.Decimal.Equal(d("135")))

	_, err = ApplyCashout(seat, d("200"))
	var se *StateError
	require.ErrorAs(t, err, &se)
	assert.True(t, seat.CashoutAmount.Decimal.Equal(d("135")))
}

func TestApplyCashoutZeroIsBusted(t *testing.T) {
	seat := models.GamePlayer{PlayerName: "Mo", TotalBuyin: d("100")}

	seat, err := ApplyCashout(seat, d("0"))
	require.NoError(t, err)
	assert.True(t, seat.IsCashedOut)

	net, ok := NetFor(seat)
	require.True(t, ok)
	assert.True(t, net.Equal(d("-100")))
}

func TestApplyCashoutRejectsNegative(t *testing.T) {
	seat := models.GamePlayer{PlayerName: "Mo", TotalBuyin: d("100")}

	_, err := ApplyCashout(seat, d("-5"))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestNetForOpenSeatIsUndefined(t *testing.T) {
	seat := models.GamePlayer{PlayerName: "Mo", TotalBuyin: d("100")}

	_, ok := NetFor(seat)
	assert.False(t, ok)
}

func TestPotSummary(t *testing.T) {
	players := []*models.GamePlayer{
		{PlayerName: "A", TotalBuyin: d("50"), IsCashedOut: true, CashoutAmount: decimal.NewNullDecimal(d("0"))},
		{PlayerName: "B", TotalBuyin: d("50"), IsCashedOut: true, CashoutAmount: decimal.NewNullDecimal(d("120"))},
		{PlayerName: "C", TotalBuyin: d("100")},
	}

	pot := PotSummary(players)
	assert.Equal(t, 3, pot.Players)
	assert.Equal(t, 2, pot.SettledPlayers)
	assert.True(t, pot.TotalBuyin.Equal(d("200")))
	assert.True(t, pot.TotalCashedOut.Equal(d("120")))
	assert.True(t, pot.OnTable.Equal(d("80")))
}

func TestBalanced(t *testing.T) {
	settled := func(name, buyin, cashout string) *models.GamePlayer {
		return &models.GamePlayer{
			PlayerName:    name,
			TotalBuyin:    d(buyin),
			CashoutAmount: decimal.NewNullDecimal(d(cashout)),
			IsCashedOut:   true,
		}
	}

	// 50 + 50 + 100 in, 0 + 120 + 80 out
	even := []*models.GamePlayer{
		settled("A", "50", "0"),
		settled("B", "50", "120"),
		settled("C", "100", "80"),
	}
	assert.True(t, Balanced(even))

	short := []*models.GamePlayer{
		settled("A", "50", "0"),
		settled("B", "50", "90"),
	}
	assert.False(t, Balanced(short))

	// advisory while a seat is still open
	open := []*models.GamePlayer{
		settled("A", "50", "0"),
		{PlayerName: "B", TotalBuyin: d("50")},
	}
	assert.True(t, Balanced(open))
}
