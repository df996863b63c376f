package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/cryptowallet/internal/common"
	"github.com/dmitrijs2005/cryptowallet/internal/filex"
	"github.com/dmitrijs2005/cryptowallet/internal/market"
	"github.com/dmitrijs2005/cryptowallet/internal/wallet"
)

const (
	usersFileName  = "users.json"
	marketFileName = "market.json"
)

// FileManager keeps snapshots as JSON files inside one data directory.
// Writes go through a temp file and rename so a crash mid-write never
// truncates the previous snapshot.
type FileManager struct {
	dir string
}

func NewFileManager(dir string) (*FileManager, error) {
	dir, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, fmt.Errorf("preparing data dir: %w", err)
	}
	return &FileManager{dir: dir}, nil
}

func (m *FileManager) Users() UserStore   { return &fileUserStore{path: filepath.Join(m.dir, usersFileName)} }
func (m *FileManager) Market() MarketStore {
	return &fileMarketStore{path: filepath.Join(m.dir, marketFileName)}
}

// RunMigrations is a no-op for the file backend.
func (m *FileManager) RunMigrations(ctx context.Context) error { return nil }

func (m *FileManager) Close() error { return nil }

type fileUserStore struct {
	path string
}

func (s *fileUserStore) Load(ctx context.Context) ([]*wallet.User, error) {
	var users []*wallet.User
	if err := readJSONFile(s.path, &users); err != nil {
		return nil, err
	}
	// Old snapshots may predate the open-positions map.
	for _, u := range users {
		if u.Open == nil {
			u.Open = make(map[string]wallet.Position)
		}
	}
	return users, nil
}

func (s *fileUserStore) Save(ctx context.Context, users []*wallet.User) error {
	return writeJSONFile(s.path, users)
}

type fileMarketStore struct {
	path string
}

func (s *fileMarketStore) Load(ctx context.Context) (market.Snapshot, error) {
	var snapshot market.Snapshot
	if err := readJSONFile(s.path, &snapshot); err != nil {
		return market.Snapshot{}, err
	}
	return snapshot, nil
}

func (s *fileMarketStore) Save(ctx context.Context, snapshot market.Snapshot) error {
	return writeJSONFile(s.path, snapshot)
}

// readJSONFile unmarshals the file into v. A missing or empty file maps to
// common.ErrorNotFound so startup can fall back to defaults.
func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if len(data) == 0 {
		return common.ErrorNotFound
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
