// Package wallet implements the per-user cash and position ledger. It is pure
// business logic: no I/O and no locking, since the event loop is the single owner of
// every User.
package wallet

import (
	"crypto/subtle"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/cryptowallet/internal/common"
	"github.com/dmitrijs2005/cryptowallet/internal/market"
)

// Position is an aggregated open stake in one asset. Repeated buys merge into
// the same position by summing invested money and units.
type Position struct {
	AssetID   string  `json:"asset_id"`
	AssetName string  `json:"asset_name"`
	Invested  float64 `json:"invested"`
	Units     float64 `json:"units"`
}

// Sale is a realized, completed sale record.
type Sale struct {
	AssetID   string  `json:"asset_id"`
	AssetName string  `json:"asset_name"`
	Proceeds  float64 `json:"proceeds"`
	Profit    float64 `json:"profit"`
}

// User is one registered account: credential material plus the ledger state.
// Balance never goes below zero; buys are capped by the balance and sells
// require a matching open position.
type User struct {
	ID        string              `json:"id"`
	Username  string              `json:"username"`
	Password  []byte              `json:"password"`
	Balance   float64             `json:"balance"`
	Open      map[string]Position `json:"open_positions"`
	Closed    []Sale              `json:"closed_positions"`
	CreatedAt time.Time           `json:"created_at"`
}

func NewUser(username, password string) *User {
	return &User{
		ID:        uuid.NewString(),
		Username:  username,
		Password:  []byte(password),
		Open:      make(map[string]Position),
		CreatedAt: time.Now(),
	}
}

// CheckPassword compares the stored credential against a candidate in
// constant time.
func (u *User) CheckPassword(candidate string) bool {
	return subtle.ConstantTimeCompare(u.Password, []byte(candidate)) == 1
}

// Deposit adds amount to the cash balance. Zero and negative amounts are
// rejected.
func (u *User) Deposit(amount float64) error {
	if amount <= 0 {
		return common.ErrInvalidAmount
	}
	u.Balance += amount
	return nil
}

// Buy converts invest cash into units of the given asset at its current
// price. An existing open position for the asset is merged by summing, not
// replaced.
func (u *User) Buy(asset market.Asset, invest float64) error {
	if invest > u.Balance {
		return common.ErrInsufficientFunds
	}
	if invest <= 0 {
		return common.ErrInvalidAmount
	}
	if asset.Price <= 0 {
		return common.ErrAssetUntradeable
	}

	u.Balance -= invest
	units := invest / asset.Price

	pos := u.Open[asset.ID]
	pos.AssetID = asset.ID
	pos.AssetName = asset.Name
	pos.Invested += invest
	pos.Units += units
	u.Open[asset.ID] = pos

	return nil
}

// Sell closes the entire open position in the given asset at its current
// price. Selling is all-or-nothing: there is no partial sale.
func (u *User) Sell(asset market.Asset) (Sale, error) {
	pos, ok := u.Open[asset.ID]
	if !ok {
		return Sale{}, common.ErrNothingToSell
	}

	proceeds := pos.Units * asset.Price
	sale := Sale{
		AssetID:   asset.ID,
		AssetName: asset.Name,
		Proceeds:  proceeds,
		Profit:    proceeds - pos.Invested,
	}

	u.Balance += proceeds
	delete(u.Open, asset.ID)
	u.Closed = append(u.Closed, sale)

	return sale, nil
}
