// Package market holds the tradable asset universe: the asset snapshot type,
// the staleness-aware price cache, and the CoinAPI provider client.
package market

import "time"

// Asset is one tradable asset quote. A price of zero or below means the asset
// cannot currently be traded.
type Asset struct {
	ID    string  `json:"asset_id"`
	Name  string  `json:"name"`
	Price float64 `json:"price_usd"`
}

// Snapshot is the persistable state of the price cache: the full asset list
// plus the moment it was last refreshed from the provider.
type Snapshot struct {
	Assets        []Asset   `json:"assets"`
	LastRefreshed time.Time `json:"last_refreshed"`
}
