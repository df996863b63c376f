// Package storage persists server snapshots: the registered user set and the
// price-cache contents. Two backends exist, JSON files (the default) and
// PostgreSQL, behind one Manager interface selected by configuration.
package storage

import (
	"context"

	"github.com/dmitrijs2005/cryptowallet/internal/market"
	"github.com/dmitrijs2005/cryptowallet/internal/wallet"
)

// UserStore loads and saves the complete registered-user set. The in-memory
// set is the source of truth during a server run; Save replaces the stored
// snapshot wholesale.
type UserStore interface {
	Load(ctx context.Context) ([]*wallet.User, error)
	Save(ctx context.Context, users []*wallet.User) error
}

// MarketStore loads and saves the price-cache snapshot.
type MarketStore interface {
	Load(ctx context.Context) (market.Snapshot, error)
	Save(ctx context.Context, snapshot market.Snapshot) error
}

// Manager vends the snapshot stores for one backend.
//
// Load implementations return common.ErrorNotFound when no snapshot exists
// yet; callers treat that as an empty starting state, not a failure.
type Manager interface {
	Users() UserStore
	Market() MarketStore
	RunMigrations(ctx context.Context) error
	Close() error
}
