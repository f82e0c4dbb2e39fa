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

	"github.com/stellar/go/xdr"

	"github.com/dotandev/parkledger/internal/auth"
)

// Call describes one entry point invocation.
type Call struct {
	Function string
	// Args are the rendered arguments, used for logging and the journal.
	Args []string
	Auth []auth.Entry
}

type frame struct {
	call       Call
	authorized map[string]bool
}

type envKey struct{}

// Env is the execution context of one invocation. Nested calls into the same
// host share it, each with its own frame.
type Env struct {
	ctx     context.Context
	host    *Host
	session *Session
	frames  []*frame
	events  []Event
}

func newEnv(ctx context.Context, h *Host, call Call) *Env {
	env := &Env{host: h}
	env.ctx = context.WithValue(ctx, envKey{}, env)
	env.session = newSession(env.ctx, h.backend, h.ttl, h.clock.Now())
	env.push(call)
	return env
}

// FromContext returns the active Env carried by ctx, if any.
func FromContext(ctx context.Context) (*Env, bool) {
	env, ok := ctx.Value(envKey{}).(*Env)
	return env, ok
}

func (e *Env) push(call Call) {
	e.frames = append(e.frames, &frame{call: call, authorized: make(map[string]bool)})
}

func (e *Env) pop() {
	e.frames = e.frames[:len(e.frames)-1]
}

func (e *Env) top() *frame {
	return e.frames[len(e.frames)-1]
}

// Context carries the Env; pass it to anything that may call back into the
// contract.
func (e *Env) Context() context.Context { return e.ctx }

func (e *Env) Timestamp() uint64 { return e.session.now }

func (e *Env) Storage() *Session { return e.session }

func (e *Env) TTL() TTLConfig { return e.host.ttl }

func (e *Env) Contract() string { return e.host.contractID }

func (e *Env) Function() string { return e.top().call.Function }

// Depth is 1 for a top-level call and grows with each nested call.
func (e *Env) Depth() int { return len(e.frames) }

func (e *Env) authEntry(address string) (auth.Entry, bool) {
	for _, a := range e.top().call.Auth {
		if a.Address == address {
			return a, true
		}
	}
	return auth.Entry{}, false
}

// RequireAuth fails unless address approved the current call with args.
// Approval is checked once per address per call frame.
func (e *Env) RequireAuth(address string, args ...string) error {
	f := e.top()
	if f.authorized[address] {
		return nil
	}
	inv := auth.Invocation{
		Contract: e.host.contractID,
		Function: f.call.Function,
		Args:     args,
	}
	if err := e.host.authorizer.Authorize(e, address, inv); err != nil {
		return err
	}
	f.authorized[address] = true
	return nil
}

// Publish queues a contract event. It is delivered with the next checkpoint
// or on commit, and dropped if the invocation fails first.
func (e *Env) Publish(topics []xdr.ScVal, data xdr.ScVal) {
	e.events = append(e.events, Event{
		Contract:  e.host.contractID,
		Function:  e.Function(),
		Timestamp: e.Timestamp(),
		Topics:    topics,
		Data:      data,
	})
}

// Checkpoint makes every write and event so far durable, even if the
// invocation later fails.
func (e *Env) Checkpoint() error {
	if err := e.session.flush(); err != nil {
		return err
	}
	e.deliver()
	return nil
}

func (e *Env) deliver() {
	if len(e.events) == 0 {
		return
	}
	events := e.events
	e.events = nil
	e.host.deliver(e.ctx, events)
}
