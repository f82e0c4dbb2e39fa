// Copyright (c) 2026 dotandev
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sqlstore is a durable host.Backend on database/sql, with sqlite
// and mysql dialects.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/dotandev/parkledger/internal/host"
	"github.com/dotandev/parkledger/internal/logger"
)

type Dialect string

const (
	SQLite Dialect = "sqlite"
	MySQL  Dialect = "mysql"
)

var schema = map[Dialect][]string{
	SQLite: {
		`CREATE TABLE IF NOT EXISTS ledger_entries (
			tier TEXT NOT NULL,
			entry_key TEXT NOT NULL,
			value BLOB NOT NULL,
			live_until INTEGER NOT NULL,
			PRIMARY KEY (tier, entry_key)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_live_until ON ledger_entries(live_until)`,
	},
	MySQL: {
		`CREATE TABLE IF NOT EXISTS ledger_entries (
			tier VARCHAR(16) NOT NULL,
			entry_key VARCHAR(191) NOT NULL,
			value MEDIUMBLOB NOT NULL,
			live_until BIGINT UNSIGNED NOT NULL,
			PRIMARY KEY (tier, entry_key),
			INDEX idx_ledger_live_until (live_until)
		)`,
	},
}

var upsert = map[Dialect]string{
	SQLite: `INSERT INTO ledger_entries (tier, entry_key, value, live_until) VALUES (?, ?, ?, ?)
		ON CONFLICT(tier, entry_key) DO UPDATE SET value = excluded.value, live_until = excluded.live_until`,
	MySQL: `INSERT INTO ledger_entries (tier, entry_key, value, live_until) VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE value = VALUES(value), live_until = VALUES(live_until)`,
}

// Store keeps every tier in one ledger_entries table.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// OpenSQLite opens or creates the database file at path.
func OpenSQLite(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time keeps sqlite from returning SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	s, err := New(db, SQLite)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := os.Chmod(path, 0600); err != nil {
		logger.Logger.Warn("Failed to set database permissions", "error", err)
	}
	return s, nil
}

// OpenMySQL connects to a MySQL server and verifies the connection.
func OpenMySQL(user, pass, host, port, name string) (*Store, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC", auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach mysql: %w", err)
	}

	s, err := New(db, MySQL)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database and creates the schema if needed.
func New(db *sql.DB, dialect Dialect) (*Store, error) {
	stmts, ok := schema[dialect]
	if !ok {
		return nil, fmt.Errorf("unknown sql dialect %q", dialect)
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return &Store{db: db, dialect: dialect}, nil
}

func (s *Store) Dialect() Dialect { return s.dialect }

func (s *Store) Load(ctx context.Context, tier host.Tier, key string) (host.Entry, bool, error) {
	var e host.Entry
	err := s.db.QueryRowContext(ctx,
		`SELECT value, live_until FROM ledger_entries WHERE tier = ? AND entry_key = ?`,
		tier.String(), key,
	).Scan(&e.Value, &e.LiveUntil)
	if err == sql.ErrNoRows {
		return host.Entry{}, false, nil
	}
	if err != nil {
		return host.Entry{}, false, fmt.Errorf("failed to load entry: %w", err)
	}
	return e, true, nil
}

// Apply writes the batch in one transaction.
func (s *Store) Apply(ctx context.Context, writes []host.Write) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, w := range writes {
		if w.Delete {
			_, err = tx.ExecContext(ctx, `DELETE FROM ledger_entries WHERE tier = ? AND entry_key = ?`, w.Tier.String(), w.Key)
		} else {
			_, err = tx.ExecContext(ctx, upsert[s.dialect], w.Tier.String(), w.Key, w.Entry.Value, w.Entry.LiveUntil)
		}
		if err != nil {
			return fmt.Errorf("failed to write %s/%s: %w", w.Tier, w.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	logger.Logger.Debug("Ledger batch applied", "writes", len(writes), "dialect", s.dialect)
	return nil
}

// Purge deletes temporary entries that expired before now. Durable tiers are
// archived in place.
func (s *Store) Purge(ctx context.Context, now uint64) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM ledger_entries WHERE tier = ? AND live_until <> 0 AND live_until < ?`,
		host.Temporary.String(), now)
	if err != nil {
		return 0, fmt.Errorf("failed to purge entries: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// Count returns the number of stored rows per tier.
func (s *Store) Count(ctx context.Context) (map[host.Tier]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tier, COUNT(*) FROM ledger_entries GROUP BY tier`)
	if err != nil {
		return nil, fmt.Errorf("failed to count entries: %w", err)
	}
	defer rows.Close()

	out := make(map[host.Tier]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		tier, err := host.ParseTier(name)
		if err != nil {
			return nil, err
		}
		out[tier] = n
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
