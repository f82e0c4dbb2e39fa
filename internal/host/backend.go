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

package host

import (
	"context"
	"sync"
)

// Entry is a stored value and the ledger timestamp through which it stays
// live. LiveUntil == 0 never expires.
type Entry struct {
	Value     []byte
	LiveUntil uint64
}

// Live reports whether the entry's TTL covers ledger time now.
func (e Entry) Live(now uint64) bool {
	return e.LiveUntil == 0 || now <= e.LiveUntil
}

// Readable reports whether an entry of tier is visible at now. Only evicting
// tiers hide lapsed entries.
func (e Entry) Readable(tier Tier, now uint64) bool {
	return !tier.Evicts() || e.Live(now)
}

// Write is one buffered mutation. Delete removes the key.
type Write struct {
	Tier   Tier
	Key    string
	Entry  Entry
	Delete bool
}

// Backend persists entries. Load returns raw entries, expired or not; the
// session decides liveness. Apply must apply a batch atomically.
type Backend interface {
	Load(ctx context.Context, tier Tier, key string) (Entry, bool, error)
	Apply(ctx context.Context, writes []Write) error
	Close() error
}

// Purger is implemented by backends that can drop expired entries in bulk.
// Only entries of evicting tiers are dropped.
type Purger interface {
	Purge(ctx context.Context, now uint64) (int64, error)
}

type memKey struct {
	tier Tier
	key  string
}

// MemoryBackend keeps entries in process memory.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[memKey]Entry
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[memKey]Entry)}
}

func (m *MemoryBackend) Load(_ context.Context, tier Tier, key string) (Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[memKey{tier, key}]
	if !ok {
		return Entry{}, false, nil
	}
	e.Value = append([]byte(nil), e.Value...)
	return e, true, nil
}

func (m *MemoryBackend) Apply(_ context.Context, writes []Write) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range writes {
		k := memKey{w.Tier, w.Key}
		if w.Delete {
			delete(m.entries, k)
			continue
		}
		e := w.Entry
		e.Value = append([]byte(nil), e.Value...)
		m.entries[k] = e
	}
	return nil
}

// Len returns the number of stored entries, live or expired.
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *MemoryBackend) Purge(_ context.Context, now uint64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, e := range m.entries {
		if !e.Readable(k.tier, now) {
			delete(m.entries, k)
			n++
		}
	}
	return n, nil
}

func (m *MemoryBackend) Close() error { return nil }
