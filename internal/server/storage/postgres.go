package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/cryptowallet/internal/common"
	"github.com/dmitrijs2005/cryptowallet/internal/dbx"
	"github.com/dmitrijs2005/cryptowallet/internal/market"
	"github.com/dmitrijs2005/cryptowallet/internal/server/storage/migrations"
	"github.com/dmitrijs2005/cryptowallet/internal/wallet"
)

// PostgresManager keeps snapshots in PostgreSQL. Saves are whole-set
// replacements inside one transaction, mirroring the file backend's
// snapshot semantics.
type PostgresManager struct {
	db *sql.DB
}

func NewPostgresManager(dsn string) (*PostgresManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return &PostgresManager{db: db}, nil
}

func (m *PostgresManager) Users() UserStore    { return &pgUserStore{db: m.db} }
func (m *PostgresManager) Market() MarketStore { return &pgMarketStore{db: m.db} }

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them.
func (m *PostgresManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, m.db, ".")
}

func (m *PostgresManager) Close() error { return m.db.Close() }

type pgUserStore struct {
	db *sql.DB
}

func (s *pgUserStore) Load(ctx context.Context) ([]*wallet.User, error) {
	query := `SELECT id, username, password, balance, open_positions, closed_positions, created_at
	          FROM users ORDER BY username`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	var users []*wallet.User
	for rows.Next() {
		u := &wallet.User{}
		var open, closed []byte
		if err := rows.Scan(&u.ID, &u.Username, &u.Password, &u.Balance, &open, &closed, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		if err := json.Unmarshal(open, &u.Open); err != nil {
			return nil, fmt.Errorf("error decoding open positions: %w", err)
		}
		if err := json.Unmarshal(closed, &u.Closed); err != nil {
			return nil, fmt.Errorf("error decoding closed positions: %w", err)
		}
		if u.Open == nil {
			u.Open = make(map[string]wallet.Position)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	if len(users) == 0 {
		return nil, common.ErrorNotFound
	}
	return users, nil
}

func (s *pgUserStore) Save(ctx context.Context, users []*wallet.User) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM users`); err != nil {
			return fmt.Errorf("error clearing users: %w", err)
		}

		query := `INSERT INTO users (id, username, password, balance, open_positions, closed_positions, created_at)
		          VALUES ($1, $2, $3, $4, $5, $6, $7)`

		for _, u := range users {
			open, err := json.Marshal(u.Open)
			if err != nil {
				return fmt.Errorf("error encoding open positions: %w", err)
			}
			closed, err := json.Marshal(u.Closed)
			if err != nil {
				return fmt.Errorf("error encoding closed positions: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query,
				u.ID, u.Username, u.Password, u.Balance, open, closed, u.CreatedAt); err != nil {
				return fmt.Errorf("error inserting user %s: %w", u.Username, err)
			}
		}
		return nil
	})
}

type pgMarketStore struct {
	db *sql.DB
}

func (s *pgMarketStore) Load(ctx context.Context) (market.Snapshot, error) {
	var snapshot market.Snapshot

	query := `SELECT last_refreshed FROM market_snapshot WHERE id = 1`
	err := s.db.QueryRowContext(ctx, query).Scan(&snapshot.LastRefreshed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return market.Snapshot{}, common.ErrorNotFound
		}
		return market.Snapshot{}, fmt.Errorf("error performing sql request: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT asset_id, name, price_usd FROM market_assets ORDER BY asset_id`)
	if err != nil {
		return market.Snapshot{}, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a market.Asset
		if err := rows.Scan(&a.ID, &a.Name, &a.Price); err != nil {
			return market.Snapshot{}, fmt.Errorf("error scanning asset row: %w", err)
		}
		snapshot.Assets = append(snapshot.Assets, a)
	}
	if err := rows.Err(); err != nil {
		return market.Snapshot{}, fmt.Errorf("error iterating asset rows: %w", err)
	}

	return snapshot, nil
}

func (s *pgMarketStore) Save(ctx context.Context, snapshot market.Snapshot) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		upsert := `INSERT INTO market_snapshot (id, last_refreshed) VALUES (1, $1)
		           ON CONFLICT (id) DO UPDATE SET last_refreshed = EXCLUDED.last_refreshed`
		if _, err := tx.ExecContext(ctx, upsert, snapshot.LastRefreshed); err != nil {
			return fmt.Errorf("error saving snapshot timestamp: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM market_assets`); err != nil {
			return fmt.Errorf("error clearing assets: %w", err)
		}

		query := `INSERT INTO market_assets (asset_id, name, price_usd) VALUES ($1, $2, $3)`
		for _, a := range snapshot.Assets {
			if _, err := tx.ExecContext(ctx, query, a.ID, a.Name, a.Price); err != nil {
				return fmt.Errorf("error inserting asset %s: %w", a.ID, err)
			}
		}
		return nil
	})
}
