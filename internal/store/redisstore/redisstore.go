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

// Package redisstore is an expiring host.Backend on Redis. Each entry is one
// string key carrying its LiveUntil header. Entries of evicting tiers get a
// Redis expiry set just past it so lapsed entries are evicted by the server.
package redisstore

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dotandev/parkledger/internal/host"
)

const headerLen = 8

// Store keeps entries under <prefix>:<tier>:<key>.
type Store struct {
	rdb    redis.Cmdable
	prefix string
	clock  host.Clock
}

// Dial connects to addr and pings it with a short timeout.
func Dial(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", addr, err)
	}
	return client, nil
}

// New uses clock to turn ledger expiry timestamps into Redis TTLs.
func New(rdb redis.Cmdable, prefix string, clock host.Clock) *Store {
	return &Store{rdb: rdb, prefix: strings.TrimSuffix(prefix, ":"), clock: clock}
}

func (s *Store) Key(tier host.Tier, key string) string {
	return s.prefix + ":" + tier.String() + ":" + key
}

func encode(e host.Entry) []byte {
	buf := make([]byte, headerLen+len(e.Value))
	binary.BigEndian.PutUint64(buf, e.LiveUntil)
	copy(buf[headerLen:], e.Value)
	return buf
}

func decode(raw []byte) (host.Entry, error) {
	if len(raw) < headerLen {
		return host.Entry{}, fmt.Errorf("short entry of %d bytes", len(raw))
	}
	return host.Entry{
		LiveUntil: binary.BigEndian.Uint64(raw),
		Value:     append([]byte(nil), raw[headerLen:]...),
	}, nil
}

// expiry is the Redis TTL for an entry, zero for entries that must be kept.
// It runs one second past LiveUntil since an entry is live through it.
func (s *Store) expiry(tier host.Tier, e host.Entry) time.Duration {
	if e.LiveUntil == 0 || !tier.Evicts() {
		return 0
	}
	now := s.clock.Now()
	if e.LiveUntil < now {
		return time.Second
	}
	return time.Duration(e.LiveUntil-now+1) * time.Second
}

func (s *Store) Load(ctx context.Context, tier host.Tier, key string) (host.Entry, bool, error) {
	raw, err := s.rdb.Get(ctx, s.Key(tier, key)).Bytes()
	if err == redis.Nil {
		return host.Entry{}, false, nil
	}
	if err != nil {
		return host.Entry{}, false, fmt.Errorf("failed to load entry: %w", err)
	}
	e, err := decode(raw)
	if err != nil {
		return host.Entry{}, false, fmt.Errorf("%s: %w", s.Key(tier, key), err)
	}
	return e, true, nil
}

// Apply sends the batch as one MULTI/EXEC transaction.
func (s *Store) Apply(ctx context.Context, writes []host.Write) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, w := range writes {
			k := s.Key(w.Tier, w.Key)
			if w.Delete {
				pipe.Del(ctx, k)
				continue
			}
			pipe.Set(ctx, k, encode(w.Entry), s.expiry(w.Tier, w.Entry))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to apply batch: %w", err)
	}
	return nil
}

// TTL reports the server-side remaining life of key.
func (s *Store) TTL(ctx context.Context, tier host.Tier, key string) (time.Duration, error) {
	return s.rdb.TTL(ctx, s.Key(tier, key)).Result()
}

func (s *Store) Close() error {
	if c, ok := s.rdb.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
