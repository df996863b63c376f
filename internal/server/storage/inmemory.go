package storage

import (
	"context"

	"github.com/dmitrijs2005/cryptowallet/internal/common"
	"github.com/dmitrijs2005/cryptowallet/internal/market"
	"github.com/dmitrijs2005/cryptowallet/internal/wallet"
)

// InMemoryManager keeps snapshots in process memory. Useful for tests and
// ephemeral servers; nothing survives a restart.
type InMemoryManager struct {
	users  inMemoryUserStore
	market inMemoryMarketStore
}

func NewInMemoryManager() *InMemoryManager {
	return &InMemoryManager{}
}

func (m *InMemoryManager) Users() UserStore                       { return &m.users }
func (m *InMemoryManager) Market() MarketStore                    { return &m.market }
func (m *InMemoryManager) RunMigrations(ctx context.Context) error { return nil }
func (m *InMemoryManager) Close() error                           { return nil }

type inMemoryUserStore struct {
	users []*wallet.User
	saved bool
}

func (s *inMemoryUserStore) Load(ctx context.Context) ([]*wallet.User, error) {
	if !s.saved {
		return nil, common.ErrorNotFound
	}
	return s.users, nil
}

func (s *inMemoryUserStore) Save(ctx context.Context, users []*wallet.User) error {
	// Copy so later in-memory mutations do not leak into the saved snapshot,
	// matching the serialization boundary of the file and SQL backends.
	s.users = make([]*wallet.User, len(users))
	for i, u := range users {
		c := *u
		c.Open = make(map[string]wallet.Position, len(u.Open))
		for id, pos := range u.Open {
			c.Open[id] = pos
		}
		c.Closed = append([]wallet.Sale(nil), u.Closed...)
		s.users[i] = &c
	}
	s.saved = true
	return nil
}

type inMemoryMarketStore struct {
	snapshot market.Snapshot
	saved    bool
}

func (s *inMemoryMarketStore) Load(ctx context.Context) (market.Snapshot, error) {
	if !s.saved {
		return market.Snapshot{}, common.ErrorNotFound
	}
	return s.snapshot, nil
}

func (s *inMemoryMarketStore) Save(ctx context.Context, snapshot market.Snapshot) error {
	s.snapshot = snapshot
	s.saved = true
	return nil
}
