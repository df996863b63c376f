package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/cryptowallet/internal/common"
	"github.com/dmitrijs2005/cryptowallet/internal/market"
)

var btc = market.Asset{ID: "BTC", Name: "Bitcoin", Price: 20000}

func TestNewUser(t *testing.T) {
	u := NewUser("ivan", "pw")

	require.NotEmpty(t, u.ID)
	assert.Equal(t, "ivan", u.Username)
	assert.Equal(t, 0.0, u.Balance)
	assert.Empty(t, u.Open)
	assert.Empty(t, u.Closed)
}

func TestCheckPassword(t *testing.T) {
	u := NewUser("ivan", "pw")

	assert.True(t, u.CheckPassword("pw"))
	assert.False(t, u.CheckPassword("wrong"))
	assert.False(t, u.CheckPassword(""))
}

func TestDeposit(t *testing.T) {
	tests := []struct {
		name    string
		amount  float64
		wantErr error
		balance float64
	}{
		{name: "positive amount", amount: 1500, balance: 1500},
		{name: "zero amount", amount: 0, wantErr: common.ErrInvalidAmount, balance: 0},
		{name: "negative amount", amount: -1500, wantErr: common.ErrInvalidAmount, balance: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := NewUser("ivan", "pw")
			err := u.Deposit(tt.amount)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.balance, u.Balance)
		})
	}
}

func TestBuy(t *testing.T) {
	u := NewUser("ivan", "pw")
	require.NoError(t, u.Deposit(1000))

	err := u.Buy(btc, 500)

	require.NoError(t, err)
	assert.Equal(t, 500.0, u.Balance)
	pos := u.Open["BTC"]
	assert.Equal(t, 500.0, pos.Invested)
	assert.Equal(t, 0.025, pos.Units)
	assert.Equal(t, "Bitcoin", pos.AssetName)
}

func TestBuyInsufficientFunds(t *testing.T) {
	u := NewUser("ivan", "pw")
	require.NoError(t, u.Deposit(500))

	err := u.Buy(btc, 1000)

	assert.ErrorIs(t, err, common.ErrInsufficientFunds)
	assert.Equal(t, 500.0, u.Balance)
	assert.Empty(t, u.Open)
}

func TestBuyNonPositiveAmount(t *testing.T) {
	u := NewUser("ivan", "pw")
	require.NoError(t, u.Deposit(500))

	for _, amount := range []float64{0, -100} {
		err := u.Buy(btc, amount)
		assert.ErrorIs(t, err, common.ErrInvalidAmount)
	}
	assert.Equal(t, 500.0, u.Balance)
	assert.Empty(t, u.Open)
}

func TestBuyUntradeableAsset(t *testing.T) {
	u := NewUser("ivan", "pw")
	require.NoError(t, u.Deposit(1500))

	err := u.Buy(market.Asset{ID: "BTC", Name: "Bitcoin", Price: 0}, 1000)

	assert.ErrorIs(t, err, common.ErrAssetUntradeable)
	assert.Equal(t, 1500.0, u.Balance)
	assert.Empty(t, u.Open)
}

func TestBuyAccumulatesIntoOnePosition(t *testing.T) {
	u := NewUser("ivan", "pw")
	require.NoError(t, u.Deposit(1000))

	require.NoError(t, u.Buy(btc, 300))
	require.NoError(t, u.Buy(btc, 200))

	require.Len(t, u.Open, 1)
	pos := u.Open["BTC"]
	assert.Equal(t, 500.0, pos.Invested)
	assert.InDelta(t, 0.025, pos.Units, 1e-12)
	assert.Equal(t, 500.0, u.Balance)
}

func TestSellRoundTrip(t *testing.T) {
	u := NewUser("ivan", "pw")
	require.NoError(t, u.Deposit(1000))
	require.NoError(t, u.Buy(btc, 500))

	sale, err := u.Sell(btc)

	require.NoError(t, err)
	assert.Equal(t, 1000.0, u.Balance)
	assert.Equal(t, 0.0, sale.Profit)
	assert.Equal(t, 500.0, sale.Proceeds)
	assert.Empty(t, u.Open)
	require.Len(t, u.Closed, 1)
	assert.Equal(t, "BTC", u.Closed[0].AssetID)
}

func TestSellIsAllOrNothing(t *testing.T) {
	u := NewUser("ivan", "pw")
	require.NoError(t, u.Deposit(1000))
	require.NoError(t, u.Buy(btc, 300))
	require.NoError(t, u.Buy(btc, 200))

	_, err := u.Sell(btc)

	require.NoError(t, err)
	assert.Empty(t, u.Open, "the whole position must be closed regardless of how many buys built it")
	assert.InDelta(t, 1000.0, u.Balance, 1e-9)
}

func TestSellAtHigherPrice(t *testing.T) {
	u := NewUser("ivan", "pw")
	require.NoError(t, u.Deposit(1000))
	require.NoError(t, u.Buy(btc, 500))

	sale, err := u.Sell(market.Asset{ID: "BTC", Name: "Bitcoin", Price: 40000})

	require.NoError(t, err)
	assert.Equal(t, 500.0, sale.Profit)
	assert.Equal(t, 1500.0, u.Balance)
}

func TestSellWithoutPosition(t *testing.T) {
	u := NewUser("ivan", "pw")
	require.NoError(t, u.Deposit(1000))

	_, err := u.Sell(btc)

	assert.ErrorIs(t, err, common.ErrNothingToSell)
	assert.Equal(t, 1000.0, u.Balance)
	assert.Empty(t, u.Closed)
}
