// internal/adapters/out/localstore/cart_store_sqlite.go
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	cartdom "agrimart/internal/domain/cart"
)

// cartKey is the single fixed logical key the guest cart lives under.
const cartKey = "cart"

// SQLiteCartStore implements cart.LocalStore on a device-scoped SQLite file.
//
// Table design:
// - table: kv
// - k: logical key ("cart")
// - v: JSON array of CartItem
//
// This is the Go rendition of browser localStorage: one durable key-value
// scope per device, no network, and failures degrade to "empty / no-op"
// instead of blocking the caller.
type SQLiteCartStore struct {
	DB *sql.DB
}

// Open opens (or creates) the store at path and ensures the schema.
// Use ":memory:" for tests.
func Open(path string) (*SQLiteCartStore, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, errors.New("localstore: path is empty")
	}

	db, err := sql.Open("sqlite3", p)
	if err != nil {
		return nil, err
	}

	s := &SQLiteCartStore{DB: db}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func New(db *sql.DB) (*SQLiteCartStore, error) {
	if db == nil {
		return nil, errors.New("localstore: db is nil")
	}
	s := &SQLiteCartStore{DB: db}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteCartStore) init() error {
	const schema = `
CREATE TABLE IF NOT EXISTS kv (
	k          TEXT PRIMARY KEY,
	v          TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`
	_, err := s.DB.Exec(schema)
	return err
}

// Load returns the saved guest cart, or an empty list.
// Absent row, unreachable storage and unparseable payloads all read as
// empty; a corrupt payload is additionally discarded so it cannot poison
// later loads.
func (s *SQLiteCartStore) Load(ctx context.Context) []cartdom.CartItem {
	if s == nil || s.DB == nil {
		return []cartdom.CartItem{}
	}

	var raw string
	err := s.DB.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = ?`, cartKey).Scan(&raw)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("[localstore] Load: read failed (treated as empty): %v", err)
		}
		return []cartdom.CartItem{}
	}

	var items []cartdom.CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		log.Printf("[localstore] Load: corrupt value discarded: %v", err)
		_, _ = s.DB.ExecContext(ctx, `DELETE FROM kv WHERE k = ?`, cartKey)
		return []cartdom.CartItem{}
	}

	return cartdom.Normalize(items)
}

// Save overwrites the stored list.
func (s *SQLiteCartStore) Save(ctx context.Context, items []cartdom.CartItem) error {
	if s == nil || s.DB == nil {
		return errors.New("localstore: store is not initialized")
	}

	if items == nil {
		items = []cartdom.CartItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}

	_, err = s.DB.ExecContext(ctx, `
INSERT INTO kv (k, v, updated_at) VALUES (?, ?, ?)
ON CONFLICT(k) DO UPDATE SET v = excluded.v, updated_at = excluded.updated_at`,
		cartKey, string(raw), time.Now().UTC())
	return err
}

// Clear removes the stored value entirely. Clearing an absent value is
// a no-op, not an error.
func (s *SQLiteCartStore) Clear(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errors.New("localstore: store is not initialized")
	}
	_, err := s.DB.ExecContext(ctx, `DELETE FROM kv WHERE k = ?`, cartKey)
	return err
}

func (s *SQLiteCartStore) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

var _ cartdom.LocalStore = (*SQLiteCartStore)(nil)
