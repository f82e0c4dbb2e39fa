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

package tiered

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotandev/parkledger/internal/host"
)

func TestRouting(t *testing.T) {
	temp, durable := host.NewMemoryBackend(), host.NewMemoryBackend()
	r := New(temp, durable)
	ctx := context.Background()

	require.NoError(t, r.Apply(ctx, []host.Write{
		{Tier: host.Temporary, Key: "ticket:A", Entry: host.Entry{Value: []byte("t"), LiveUntil: 10}},
		{Tier: host.Persistent, Key: "fine:A", Entry: host.Entry{Value: []byte("f")}},
		{Tier: host.Instance, Key: "admins", Entry: host.Entry{Value: []byte("a")}},
	}))
	assert.Equal(t, 1, temp.Len())
	assert.Equal(t, 2, durable.Len())

	e, ok, err := r.Load(ctx, host.Temporary, "ticket:A")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "t", string(e.Value))

	_, ok, err = r.Load(ctx, host.Persistent, "ticket:A")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := r.Purge(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 0, temp.Len())
	assert.NoError(t, r.Close())
}

func TestHostOverRouter(t *testing.T) {
	temp, durable := host.NewMemoryBackend(), host.NewMemoryBackend()
	h := host.New(New(temp, durable), host.WithClock(host.NewManualClock(100)))

	require.NoError(t, h.Invoke(context.Background(), host.Call{Function: "mixed"}, func(env *host.Env) error {
		env.Storage().PutTTL(host.Temporary, "guard", []byte("1"), 100)
		return env.Storage().Put(host.Persistent, "revenue", []byte(`"1"`))
	}))
	assert.Equal(t, 1, temp.Len())
	assert.Equal(t, 1, durable.Len())
}
