package wallet

import (
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/cryptowallet/internal/market"
)

// Summary field labels. Records are separated by a double space so the
// client can re-split one-line replies for display.
const (
	labelMoney         = "Money: "
	labelActive        = "ActiveInvestments: "
	labelFinished      = "FinishedInvestments: "
	labelID            = "ID:"
	labelName          = "Name:"
	labelBoughtPrice   = "boughtPrice:"
	labelBoughtCount   = "boughtCount:"
	labelCurrentPrice  = "currentPrice:"
	labelCurrentProfit = "currentProfit:"
	labelOverallProfit = "overallProfit:"

	space = " "
)

// QuoteFunc resolves an asset ID to its current quote. The overall summary
// uses it to value open positions against live prices.
type QuoteFunc func(assetID string) (market.Asset, bool)

// Summary renders the cash balance and all open positions as a single
// protocol line.
func (u *User) Summary() string {
	var b strings.Builder

	b.WriteString(labelMoney)
	b.WriteString(fmtAmount(u.Balance))
	b.WriteString(space)
	b.WriteString(labelActive)
	b.WriteString(space)

	for _, pos := range u.openSorted() {
		b.WriteString(labelID)
		b.WriteString(pos.AssetID)
		b.WriteString(space)
		b.WriteString(labelName)
		b.WriteString(pos.AssetName)
		b.WriteString(space)
		b.WriteString(labelBoughtPrice)
		b.WriteString(fmtAmount(pos.Invested))
		b.WriteString(space)
		b.WriteString(labelBoughtCount)
		b.WriteString(fmtAmount(pos.Units))
		b.WriteString(space)
		b.WriteString(space)
	}

	return b.String()
}

// OverallSummary revalues every open position against live quotes and folds
// realized profits from closed positions into one aggregate figure. Open
// positions whose asset is missing from the quote source are skipped, matching
// the fail-soft behavior of the price cache.
func (u *User) OverallSummary(quote QuoteFunc) string {
	var b strings.Builder
	var overallProfit float64

	b.WriteString(labelActive)
	b.WriteString(space)

	for _, pos := range u.openSorted() {
		asset, ok := quote(pos.AssetID)
		if !ok {
			continue
		}

		valuation := asset.Price * pos.Units
		profit := valuation - pos.Invested
		overallProfit += profit

		b.WriteString(labelID)
		b.WriteString(pos.AssetID)
		b.WriteString(space)
		b.WriteString(labelName)
		b.WriteString(asset.Name)
		b.WriteString(space)
		b.WriteString(labelBoughtPrice)
		b.WriteString(fmtAmount(pos.Invested))
		b.WriteString(space)
		b.WriteString(labelCurrentPrice)
		b.WriteString(fmtAmount(valuation))
		b.WriteString(space)
		b.WriteString(labelCurrentProfit)
		b.WriteString(fmtAmount(profit))
		b.WriteString(space)
		b.WriteString(space)
	}

	b.WriteString(labelFinished)
	for _, sale := range u.Closed {
		overallProfit += sale.Profit

		b.WriteString(labelID)
		b.WriteString(sale.AssetID)
		b.WriteString(space)
		b.WriteString(labelName)
		b.WriteString(sale.AssetName)
		b.WriteString(space)
		b.WriteString(labelCurrentProfit)
		b.WriteString(fmtAmount(sale.Profit))
		b.WriteString(space)
		b.WriteString(space)
	}

	b.WriteString(labelOverallProfit)
	b.WriteString(fmtAmount(overallProfit))
	b.WriteString(space)
	b.WriteString(space)

	return b.String()
}

func (u *User) openSorted() []Position {
	out := make([]Position, 0, len(u.Open))
	for _, pos := range u.Open {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssetID < out[j].AssetID })
	return out
}

// fmtAmount renders a money or unit value with full precision and no
// trailing zero padding.
func fmtAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
