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

// Package db keeps a queryable journal of contract invocations.
package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	_ "modernc.org/sqlite"
)

const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Record is one journaled invocation.
type Record struct {
	ID        int64     `json:"id"`
	Function  string    `json:"function"`
	Args      []string  `json:"args"`
	Plate     string    `json:"plate,omitempty"`
	Outcome   string    `json:"outcome"`
	ErrorCode uint32    `json:"error_code,omitempty"`
	ErrorMsg  string    `json:"error_msg,omitempty"`
	LedgerTS  uint64    `json:"ledger_timestamp"`
	Timestamp time.Time `json:"timestamp"`
}

// Journal handles database operations
type Journal struct {
	db *sql.DB
}

// Open opens or creates the journal at path. ":memory:" gives a private
// in-memory journal.
func Open(path string) (*Journal, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Journal{db: db}, nil
}

func initSchema(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS invocations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		function TEXT NOT NULL,
		args TEXT,
		plate TEXT,
		outcome TEXT NOT NULL,
		error_code INTEGER,
		error_msg TEXT,
		ledger_ts INTEGER NOT NULL,
		recorded_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_invocations_plate ON invocations(plate);
	CREATE INDEX IF NOT EXISTS idx_invocations_function ON invocations(function);
	`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}
	return nil
}

// Save appends rec and sets its ID. A zero Timestamp is set to now.
func (j *Journal) Save(rec *Record) error {
	argsJSON, _ := json.Marshal(rec.Args)
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	if rec.Outcome == "" {
		rec.Outcome = OutcomeOK
	}

	query := `
	INSERT INTO invocations (function, args, plate, outcome, error_code, error_msg, ledger_ts, recorded_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := j.db.Exec(query, rec.Function, string(argsJSON), rec.Plate, rec.Outcome,
		rec.ErrorCode, rec.ErrorMsg, rec.LedgerTS, rec.Timestamp.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert invocation: %w", err)
	}
	rec.ID, _ = res.LastInsertId()
	return nil
}

// SearchParams defines the criteria for searching the journal
type SearchParams struct {
	Function   string
	Plate      string
	FailedOnly bool
	ErrorRegex string
	Limit      int
}

// Search returns matching records, newest first.
func (j *Journal) Search(params SearchParams) ([]Record, error) {
	query := "SELECT id, function, args, plate, outcome, error_code, error_msg, ledger_ts, recorded_at FROM invocations WHERE 1=1"
	args := []any{}

	if params.Function != "" {
		query += " AND function = ?"
		args = append(args, params.Function)
	}
	if params.Plate != "" {
		query += " AND plate = ?"
		args = append(args, params.Plate)
	}
	if params.FailedOnly {
		query += " AND outcome = ?"
		args = append(args, OutcomeFailed)
	}

	query += " ORDER BY id DESC"

	var errorRe *regexp.Regexp
	if params.ErrorRegex != "" {
		var err error
		errorRe, err = regexp.Compile(params.ErrorRegex)
		if err != nil {
			return nil, fmt.Errorf("invalid error regex: %w", err)
		}
	}

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var results []Record
	for rows.Next() {
		if params.Limit > 0 && len(results) >= params.Limit {
			break
		}

		var rec Record
		var argsRaw, plate, errMsg sql.NullString
		var code sql.NullInt64
		var recorded int64
		if err := rows.Scan(&rec.ID, &rec.Function, &argsRaw, &plate, &rec.Outcome, &code, &errMsg, &rec.LedgerTS, &recorded); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		_ = json.Unmarshal([]byte(argsRaw.String), &rec.Args)
		rec.Plate = plate.String
		rec.ErrorMsg = errMsg.String
		rec.ErrorCode = uint32(code.Int64)
		rec.Timestamp = time.Unix(0, recorded).UTC()

		if errorRe != nil && !errorRe.MatchString(rec.ErrorMsg) {
			continue
		}
		results = append(results, rec)
	}

	return results, rows.Err()
}

func (j *Journal) Close() error {
	return j.db.Close()
}
