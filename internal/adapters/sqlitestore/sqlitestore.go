// Package sqlitestore provides the sqlite-backed implementation of the
// "storage" capability. The adapter was renamed from "sqlite" when storage
// backends were split out; the old module path is kept as a legacy resolution
// path so existing configuration keeps working.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/everstacklabs/chassis/internal/actions"
	"github.com/everstacklabs/chassis/internal/adapters"
	"github.com/everstacklabs/chassis/internal/capability"
	"github.com/everstacklabs/chassis/internal/registry"
	"github.com/everstacklabs/chassis/internal/resolve"
)

const (
	// ModulePath is the canonical resolution path for this adapter.
	ModulePath = "chassis/adapters/sqlitestore"
	// LegacyPath is the pre-rename location, still honored by the resolver.
	LegacyPath = "chassis/adapters/sqlite"
)

var dbPath = "chassis.db" // set via Configure before resolution

func init() {
	factory := func(ctx context.Context) (any, error) {
		return Open(dbPath, "records")
	}
	resolve.Provide(ModulePath, factory)
	adapters.Announce(registry.Metadata{
		Identity:     "storage.sqlite",
		Capabilities: []string{capability.Storage},
		Version:      registry.Version{Major: 2, Minor: 0, Patch: 1},
		Compat: registry.CompatRange{
			Min: registry.Version{Major: 1},
			Max: registry.Version{Major: 2, Minor: 99},
		},
		Priority:    10,
		ModulePath:  ModulePath,
		LegacyPaths: []string{LegacyPath},
	})
}

// Configure sets the database file used by instances created after this call.
func Configure(path string) { dbPath = path }

// Store keeps keyed byte records in a single sqlite table. Values are stored
// base64-encoded so dumps stay printable with the stock sqlite3 shell.
type Store struct {
	db    *sql.DB
	table string
}

// Open opens (creating if needed) the store backing file. The table name is
// sanitized before it is interpolated into DDL.
func Open(path, table string) (*Store, error) {
	table = actions.Sanitize(table)
	if table == "" {
		return nil, fmt.Errorf("opening store: empty table name")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`, table)
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table %s: %w", table, err)
	}

	return &Store{db: db, table: table}, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	q := fmt.Sprintf(`INSERT INTO %q (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`, s.table)
	if _, err := s.db.ExecContext(ctx, q, key, actions.Encode(value)); err != nil {
		return fmt.Errorf("storing %q: %w", key, err)
	}
	return nil
}

// ErrNoRecord means the requested key is not stored.
var ErrNoRecord = errors.New("no such record")

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	q := fmt.Sprintf(`SELECT value FROM %q WHERE key = ?`, s.table)

	var encoded string
	err := s.db.QueryRowContext(ctx, q, key).Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrNoRecord, key)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", key, err)
	}
	return actions.Decode(encoded)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	q := fmt.Sprintf(`DELETE FROM %q WHERE key = ?`, s.table)
	if _, err := s.db.ExecContext(ctx, q, key); err != nil {
		return fmt.Errorf("deleting %q: %w", key, err)
	}
	return nil
}

// Keys lists stored keys with the given prefix, sorted.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	q := fmt.Sprintf(`SELECT key FROM %q WHERE key LIKE ? || '%%' ORDER BY key`, s.table)
	rows, err := s.db.QueryContext(ctx, q, prefix)
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Close releases the database handle. The registry calls this on reset.
func (s *Store) Close() error { return s.db.Close() }
