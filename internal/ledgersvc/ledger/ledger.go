package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/tableside/poker-services/internal/ledgersvc/models"
)

// Pure accounting over seats. Nothing here touches storage; the store
// layer executes the same rules as guarded SQL so concurrent devices
// cannot lose or double-count money.

// ApplyBuyin returns a copy of p with amount added to its running total.
// The amount must be positive and the seat must still be open.
func ApplyBuyin(p models.GamePlayer, amount decimal.Decimal) (models.GamePlayer, error) {
	if !amount.IsPositive() {
		return p, Invalidf("buy-in amount must be positive, got %s", amount)
	}
	if p.IsCashedOut {
		return p, Statef("seat %s is cashed out and cannot rebuy", p.PlayerName)
	}
	p.TotalBuyin = p.TotalBuyin.Add(amount)
	return p, nil
}

// ApplyCashout settles the seat with the given amount. Zero is a valid
// cashout (busted). A second cashout fails and leaves the seat as is;
// corrections are an explicit administrative path, not a second call.
func ApplyCashout(p models.GamePlayer, amount decimal.Decimal) (models.GamePlayer, error) {
	if amount.IsNegative() {
		return p, Invalidf("cashout amount cannot be negative, got %s", amount)
	}
	if p.IsCashedOut {
		return p, Statef("seat %s is already cashed out", p.PlayerName)
	}
	p.CashoutAmount = decimal.NewNullDecimal(amount)
	p.IsCashedOut = true
	return p, nil
}

// NetFor is the seat's settled result. The second return is false while
// the seat is still open: an in-progress seat has no net, not a net of zero.
func NetFor(p models.GamePlayer) (decimal.Decimal, bool) {
	if !p.IsCashedOut || !p.CashoutAmount.Valid {
		return decimal.Zero, false
	}
	return p.CashoutAmount.Decimal.Sub(p.TotalBuyin), true
}

type Pot struct {
	TotalBuyin     decimal.Decimal `json:"total_buyin"`
	TotalCashedOut decimal.Decimal `json:"total_cashed_out"`
	OnTable        decimal.Decimal `json:"on_table"`
	Players        int             `json:"players"`
	SettledPlayers int             `json:"settled_players"`
}

// PotSummary totals the game's money: everything bought in, everything
// already returned, and what is still on the table.
func PotSummary(players []*models.GamePlayer) Pot {
	pot := Pot{
		TotalBuyin:     decimal.Zero,
		TotalCashedOut: decimal.Zero,
	}
	for _, p := range players {
		pot.Players++
		pot.TotalBuyin = pot.TotalBuyin.Add(p.TotalBuyin)
		if p.IsCashedOut && p.CashoutAmount.Valid {
			pot.SettledPlayers++
			pot.TotalCashedOut = pot.TotalCashedOut.Add(p.CashoutAmount.Decimal)
		}
	}
	pot.OnTable = pot.TotalBuyin.Sub(pot.TotalCashedOut)
	return pot
}

// Balanced reports whether money is conserved: once every seat has
// settled, total buy-ins must equal total cashouts. With open seats the
// pot need not balance, so the check is advisory until then.
func Balanced(players []*models.GamePlayer) bool {
	pot := PotSummary(players)
	if pot.SettledPlayers < pot.Players {
		return true
	}
	return pot.OnTable.IsZero()
}
