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

package sqlstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotandev/parkledger/internal/host"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestApplyAndLoad(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	err := s.Apply(ctx, []host.Write{
		{Tier: host.Persistent, Key: "pass:ABC", Entry: host.Entry{Value: []byte(`{"plate":"ABC"}`), LiveUntil: 500}},
		{Tier: host.Temporary, Key: "ticket:ABC", Entry: host.Entry{Value: []byte("t1"), LiveUntil: 100}},
		{Tier: host.Instance, Key: "admins", Entry: host.Entry{Value: []byte("[]")}},
	})
	require.NoError(t, err)

	e, ok, err := s.Load(ctx, host.Persistent, "pass:ABC")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"plate":"ABC"}`, string(e.Value))
	assert.Equal(t, uint64(500), e.LiveUntil)

	// Same key in another tier is a different entry.
	_, ok, err = s.Load(ctx, host.Temporary, "pass:ABC")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Apply(ctx, []host.Write{
		{Tier: host.Temporary, Key: "ticket:ABC", Entry: host.Entry{Value: []byte("t2"), LiveUntil: 200}},
		{Tier: host.Instance, Key: "admins", Delete: true},
	}))
	e, _, err = s.Load(ctx, host.Temporary, "ticket:ABC")
	require.NoError(t, err)
	assert.Equal(t, "t2", string(e.Value))
	assert.Equal(t, uint64(200), e.LiveUntil)
	_, ok, err = s.Load(ctx, host.Instance, "admins")
	require.NoError(t, err)
	assert.False(t, ok)

	counts, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[host.Tier]int{host.Persistent: 1, host.Temporary: 1}, counts)
}

func TestPurge(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	require.NoError(t, s.Apply(ctx, []host.Write{
		{Tier: host.Temporary, Key: "old", Entry: host.Entry{Value: []byte("1"), LiveUntil: 10}},
		{Tier: host.Temporary, Key: "edge", Entry: host.Entry{Value: []byte("1"), LiveUntil: 20}},
		{Tier: host.Instance, Key: "forever", Entry: host.Entry{Value: []byte("1")}},
		{Tier: host.Persistent, Key: "archived", Entry: host.Entry{Value: []byte("1"), LiveUntil: 5}},
	}))

	n, err := s.Purge(ctx, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	for key, want := range map[string]bool{"old": false, "edge": true} {
		_, ok, err := s.Load(ctx, host.Temporary, key)
		require.NoError(t, err)
		assert.Equal(t, want, ok, key)
	}
	_, ok, err := s.Load(ctx, host.Instance, "forever")
	require.NoError(t, err)
	assert.True(t, ok)
	_, ok, err = s.Load(ctx, host.Persistent, "archived")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHostStateSurvivesReopen(t *testing.T) {
	s, path := openTemp(t)
	ctx := context.Background()
	clock := host.NewManualClock(1000)

	h := host.New(s, host.WithClock(clock), host.WithAuthorizer(host.NewMockAllAuths()))
	require.NoError(t, h.Invoke(ctx, host.Call{Function: "put"}, func(env *host.Env) error {
		return env.Storage().Put(host.Persistent, "revenue", []byte(`"200"`))
	}))
	require.NoError(t, h.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	h = host.New(reopened, host.WithClock(clock))
	require.NoError(t, h.View(ctx, func(env *host.Env) error {
		v, ok, err := env.Storage().Get(host.Persistent, "revenue")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `"200"`, string(v))
		return nil
	}))
}

func TestUnknownDialect(t *testing.T) {
	_, err := New(nil, Dialect("postgres"))
	assert.Error(t, err)
}

// TestMySQL runs against a live server when PARKLEDGER_TEST_MYSQL_HOST is set.
func TestMySQL(t *testing.T) {
	hostname := os.Getenv("PARKLEDGER_TEST_MYSQL_HOST")
	if hostname == "" {
		t.Skip("PARKLEDGER_TEST_MYSQL_HOST not set")
	}
	s, err := OpenMySQL(os.Getenv("PARKLEDGER_TEST_MYSQL_USER"), os.Getenv("PARKLEDGER_TEST_MYSQL_PASSWORD"),
		hostname, "3306", "parkledger_test")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Apply(ctx, []host.Write{
		{Tier: host.Persistent, Key: "mysql:check", Entry: host.Entry{Value: []byte("1"), LiveUntil: 5}},
	}))
	e, ok, err := s.Load(ctx, host.Persistent, "mysql:check")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(5), e.LiveUntil)
	require.NoError(t, s.Apply(ctx, []host.Write{{Tier: host.Persistent, Key: "mysql:check", Delete: true}}))
}
