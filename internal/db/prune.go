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

package db

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// DestructiveOp represents a type of destructive SQL operation.
type DestructiveOp string

const (
	OpDelete   DestructiveOp = "DELETE"
	OpDrop     DestructiveOp = "DROP"
	OpAlter    DestructiveOp = "ALTER"
	OpTruncate DestructiveOp = "TRUNCATE"
	OpUpdate   DestructiveOp = "UPDATE"
	OpSafe     DestructiveOp = ""
)

// ClassifySQL returns the destructive operation type for a SQL statement.
func ClassifySQL(query string) DestructiveOp {
	normalized := strings.ToUpper(strings.TrimSpace(query))
	for _, op := range []DestructiveOp{OpDelete, OpDrop, OpAlter, OpTruncate, OpUpdate} {
		if strings.HasPrefix(normalized, string(op)) {
			return op
		}
	}
	return OpSafe
}

// PruneResult describes a prune. Rows is what was removed, or with DryRun
// what would have been.
type PruneResult struct {
	Query     string
	Operation DestructiveOp
	Rows      int64
	DryRun    bool
}

// Prune deletes records journaled before cutoff. With dryRun it only counts
// them and logs the statement it would run.
func (j *Journal) Prune(logger *slog.Logger, cutoff time.Time, dryRun bool) (PruneResult, error) {
	const del = "DELETE FROM invocations WHERE recorded_at < ?"
	res := PruneResult{Query: del, Operation: ClassifySQL(del), DryRun: dryRun}

	if dryRun {
		if err := j.db.QueryRow("SELECT COUNT(*) FROM invocations WHERE recorded_at < ?", cutoff.UnixNano()).Scan(&res.Rows); err != nil {
			return res, fmt.Errorf("count failed: %w", err)
		}
		logger.Warn("[DRY-RUN] destructive SQL skipped",
			"operation", string(res.Operation),
			"query", del,
			"rows", res.Rows,
		)
		return res, nil
	}

	out, err := j.db.Exec(del, cutoff.UnixNano())
	if err != nil {
		return res, fmt.Errorf("prune failed: %w", err)
	}
	res.Rows, _ = out.RowsAffected()
	logger.Info("Pruned journal", "rows", res.Rows, "before", cutoff.Format(time.RFC3339))
	return res, nil
}
