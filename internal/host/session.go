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
	"maps"
	"slices"

	"github.com/dotandev/parkledger/internal/errors"
)

type slot struct {
	tier Tier
	key  string
}

type pendingWrite struct {
	entry   Entry
	deleted bool
	seq     int
}

// Session buffers the storage writes of one invocation over a Backend.
// Nothing reaches the backend until Checkpoint or commit.
type Session struct {
	ctx     context.Context
	backend Backend
	ttl     TTLConfig
	now     uint64

	pending map[slot]pendingWrite
	seq     int
	// gen counts checkpoints so a nested frame can tell whether one ran
	// since its snapshot.
	gen int
}

func newSession(ctx context.Context, backend Backend, ttl TTLConfig, now uint64) *Session {
	return &Session{
		ctx:     ctx,
		backend: backend,
		ttl:     ttl,
		now:     now,
		pending: make(map[slot]pendingWrite),
	}
}

func (s *Session) lookup(tier Tier, key string) (Entry, bool, error) {
	if w, ok := s.pending[slot{tier, key}]; ok {
		if w.deleted {
			return Entry{}, false, nil
		}
		return w.entry, true, nil
	}
	e, ok, err := s.backend.Load(s.ctx, tier, key)
	if err != nil {
		return Entry{}, false, errors.WrapBackend("load "+tier.String()+"/"+key, err)
	}
	if !ok || !e.Readable(tier, s.now) {
		return Entry{}, false, nil
	}
	return e, true, nil
}

// remaining is the TTL left at now, zero for an archived entry.
func (s *Session) remaining(e Entry) uint64 {
	if e.LiveUntil < s.now {
		return 0
	}
	return e.LiveUntil - s.now
}

func (s *Session) stage(tier Tier, key string, w pendingWrite) {
	s.seq++
	w.seq = s.seq
	s.pending[slot{tier, key}] = w
}

// Get returns the live value stored under key.
func (s *Session) Get(tier Tier, key string) ([]byte, bool, error) {
	e, ok, err := s.lookup(tier, key)
	if err != nil || !ok {
		return nil, false, err
	}
	return e.Value, true, nil
}

func (s *Session) Has(tier Tier, key string) (bool, error) {
	_, ok, err := s.lookup(tier, key)
	return ok, err
}

// Put stores value. A new or archived entry gets the tier's default TTL; an
// existing live entry keeps its current expiry.
func (s *Session) Put(tier Tier, key string, value []byte) error {
	e, ok, err := s.lookup(tier, key)
	if err != nil {
		return err
	}
	liveUntil := s.now + s.ttl.For(tier)
	if ok && e.Live(s.now) {
		liveUntil = e.LiveUntil
	}
	s.stage(tier, key, pendingWrite{entry: Entry{Value: value, LiveUntil: liveUntil}})
	return nil
}

// PutTTL stores value with an exact lifetime of ttl seconds from now.
func (s *Session) PutTTL(tier Tier, key string, value []byte, ttl uint64) {
	s.stage(tier, key, pendingWrite{entry: Entry{Value: value, LiveUntil: s.now + ttl}})
}

func (s *Session) Remove(tier Tier, key string) {
	s.stage(tier, key, pendingWrite{deleted: true})
}

// ExtendTTL raises the entry's lifetime to extendTo seconds from now when
// fewer than threshold seconds remain. Lifetimes never shrink.
func (s *Session) ExtendTTL(tier Tier, key string, threshold, extendTo uint64) error {
	e, ok, err := s.lookup(tier, key)
	if err != nil {
		return err
	}
	if !ok {
		return errors.WrapNotFound(tier.String() + "/" + key)
	}
	if e.LiveUntil == 0 {
		return nil
	}
	target := s.now + extendTo
	if s.remaining(e) >= threshold || target <= e.LiveUntil {
		return nil
	}
	e.LiveUntil = target
	s.stage(tier, key, pendingWrite{entry: e})
	return nil
}

// TTL returns the seconds left before the entry under key expires.
func (s *Session) TTL(tier Tier, key string) (uint64, bool, error) {
	e, ok, err := s.lookup(tier, key)
	if err != nil || !ok {
		return 0, false, err
	}
	if e.LiveUntil == 0 {
		return ^uint64(0), true, nil
	}
	return s.remaining(e), true, nil
}

// Now is the ledger timestamp the session was opened at.
func (s *Session) Now() uint64 { return s.now }

// Pending reports how many keys have unflushed writes.
func (s *Session) Pending() int { return len(s.pending) }

func (s *Session) writes() []Write {
	out := make([]Write, 0, len(s.pending))
	for k, w := range s.pending {
		out = append(out, Write{Tier: k.tier, Key: k.key, Entry: w.entry, Delete: w.deleted})
	}
	// Stage order, so a batch replays the invocation's writes as made.
	slices.SortFunc(out, func(a, b Write) int {
		return s.pending[slot{a.Tier, a.Key}].seq - s.pending[slot{b.Tier, b.Key}].seq
	})
	return out
}

// flush applies every buffered write to the backend.
func (s *Session) flush() error {
	if len(s.pending) == 0 {
		return nil
	}
	if err := s.backend.Apply(s.ctx, s.writes()); err != nil {
		return errors.WrapBackend("apply", err)
	}
	s.pending = make(map[slot]pendingWrite)
	s.gen++
	return nil
}

func (s *Session) discard() {
	s.pending = make(map[slot]pendingWrite)
}

type snapshot struct {
	pending map[slot]pendingWrite
	gen     int
}

func (s *Session) snapshot() snapshot {
	return snapshot{pending: maps.Clone(s.pending), gen: s.gen}
}

// restore rolls unflushed writes back to snap and reports whether a
// checkpoint ran since. Writes that checkpoint flushed stay; nothing was
// pending right after it, so every write still pending is dropped.
func (s *Session) restore(snap snapshot) (checkpointed bool) {
	if snap.gen != s.gen {
		s.pending = make(map[slot]pendingWrite)
		return true
	}
	s.pending = snap.pending
	return false
}
