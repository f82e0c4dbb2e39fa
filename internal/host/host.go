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

// Package host is the ledger runtime contracts execute against: a clock, a
// tiered key-value store with per-entry TTLs, per-call authorization and
// contract events.
//
// Invocations are serialized. Each runs against a buffered Session that is
// committed when the invocation returns nil and discarded otherwise. Writes
// made durable with Env.Checkpoint survive a later failure.
package host

import (
	"context"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/dotandev/parkledger/internal/errors"
	"github.com/dotandev/parkledger/internal/logger"
	"github.com/dotandev/parkledger/internal/telemetry"
)

const (
	DefaultContractID = "CPARKLEDGER"
	DefaultPassphrase = "Standalone Network ; February 2017"
)

// Host owns the backend and runs invocations one at a time.
type Host struct {
	mu         sync.Mutex
	backend    Backend
	clock      Clock
	authorizer Authorizer
	sinks      []Sink
	ttl        TTLConfig
	contractID string
}

type Option func(*Host)

func WithClock(c Clock) Option {
	return func(h *Host) { h.clock = c }
}

func WithAuthorizer(a Authorizer) Option {
	return func(h *Host) { h.authorizer = a }
}

func WithSinks(s ...Sink) Option {
	return func(h *Host) { h.sinks = append(h.sinks, s...) }
}

func WithTTL(t TTLConfig) Option {
	return func(h *Host) { h.ttl = t }
}

func WithContractID(id string) Option {
	return func(h *Host) { h.contractID = id }
}

// New creates a host over backend. Without options it uses the system clock
// and requires signed authorization on the standalone network.
func New(backend Backend, opts ...Option) *Host {
	h := &Host{
		backend:    backend,
		clock:      SystemClock{},
		authorizer: NewSignatureAuthorizer(DefaultPassphrase),
		ttl:        DefaultTTLConfig(),
		contractID: DefaultContractID,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Host) Clock() Clock { return h.clock }

func (h *Host) ContractID() string { return h.contractID }

// AddSink registers another event sink.
func (h *Host) AddSink(s Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sinks = append(h.sinks, s)
}

// Invoke runs fn as one invocation of call.Function. When ctx already carries
// an Env of this host, fn runs as a nested call inside it instead: its writes
// are rolled back if it fails and the outer call decides the final outcome.
func (h *Host) Invoke(ctx context.Context, call Call, fn func(*Env) error) (err error) {
	if env, ok := FromContext(ctx); ok && env.host == h {
		return env.nested(call, fn)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ctx, span := telemetry.GetTracer().Start(ctx, "invoke_"+call.Function)
	span.SetAttributes(
		attribute.String("contract.id", h.contractID),
		attribute.String("contract.function", call.Function),
	)
	defer span.End()

	env := newEnv(ctx, h, call)
	log := logger.Component("host")
	log.Debug("Invoking contract", "function", call.Function, "args", strings.Join(call.Args, ","), "ledger_ts", env.Timestamp())

	defer func() {
		if r := recover(); r != nil {
			env.session.discard()
			err = errors.WrapHostPanic(call.Function, r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			log.Warn("Invocation failed", "function", call.Function, "error", err)
		}
	}()

	if err = fn(env); err != nil {
		env.session.discard()
		env.events = nil
		return err
	}
	if err = env.session.flush(); err != nil {
		return err
	}
	env.deliver()
	return nil
}

// View runs fn against current state and discards any writes.
func (h *Host) View(ctx context.Context, fn func(*Env) error) error {
	if env, ok := FromContext(ctx); ok && env.host == h {
		return fn(env)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	env := newEnv(ctx, h, Call{Function: "view"})
	defer env.session.discard()
	return fn(env)
}

func (e *Env) nested(call Call, fn func(*Env) error) error {
	snap := e.session.snapshot()
	nEvents := len(e.events)
	e.push(call)
	defer e.pop()

	if err := fn(e); err != nil {
		switch {
		case e.session.restore(snap):
			// The checkpoint delivered the earlier events.
			e.events = nil
		case len(e.events) > nEvents:
			e.events = e.events[:nEvents]
		}
		return err
	}
	return nil
}

func (h *Host) deliver(ctx context.Context, events []Event) {
	for _, s := range h.sinks {
		if err := s.Deliver(ctx, events); err != nil {
			logger.Component("host").Error("Event sink failed", "events", len(events), "error", err)
		}
	}
}

// Purge drops entries that are no longer live at the current ledger time.
// Backends that are not Purgers report zero.
func (h *Host) Purge(ctx context.Context) (int64, error) {
	p, ok := h.backend.(Purger)
	if !ok {
		return 0, nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return p.Purge(ctx, h.clock.Now())
}

// Close releases the backend.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.backend.Close()
}
