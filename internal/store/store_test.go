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

package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotandev/parkledger/internal/config"
	"github.com/dotandev/parkledger/internal/host"
	"github.com/dotandev/parkledger/internal/store/sqlstore"
)

func TestOpen(t *testing.T) {
	clock := host.NewManualClock(0)

	cfg := config.DefaultConfig()
	b, err := Open(cfg, clock)
	require.NoError(t, err)
	assert.IsType(t, &host.MemoryBackend{}, b)

	cfg.Store = config.StoreSQLite
	cfg.SQLitePath = filepath.Join(t.TempDir(), "nested", "ledger.db")
	b, err = Open(cfg, clock)
	require.NoError(t, err)
	assert.IsType(t, &sqlstore.Store{}, b)
	assert.NoError(t, b.Close())

	cfg.Store = "etcd"
	_, err = Open(cfg, clock)
	assert.Error(t, err)
}
