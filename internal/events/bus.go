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

// Package events fans contract events out to in-process subscribers and to
// a message broker.
package events

import (
	"context"
	"sync"

	"github.com/dotandev/parkledger/internal/host"
)

// AllEvents subscribes a handler to every event name.
const AllEvents = "*"

// HandlerID identifies a registered handler. It is returned by Subscribe and
// must be passed to Unsubscribe.
type HandlerID uint64

type Handler func(e host.Event)

// Bus is a concurrency-safe publish/subscribe bus keyed by event name. It is
// a host.Sink.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string]map[HandlerID]Handler
	nextID   HandlerID
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[string]map[HandlerID]Handler)}
}

// Subscribe registers handler for events named name, or AllEvents.
func (b *Bus) Subscribe(name string, handler Handler) HandlerID {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	if b.handlers[name] == nil {
		b.handlers[name] = make(map[HandlerID]Handler)
	}
	b.handlers[name][id] = handler
	return id
}

// Unsubscribe is safe to call from inside a handler.
func (b *Bus) Unsubscribe(name string, id HandlerID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if listeners, ok := b.handlers[name]; ok {
		delete(listeners, id)
		if len(listeners) == 0 {
			delete(b.handlers, name)
		}
	}
}

// Emit calls every handler for e's name and every AllEvents handler. The
// lock is released before handlers run.
func (b *Bus) Emit(e host.Event) {
	b.mu.RLock()
	var snapshot []Handler
	for _, name := range []string{e.Name(), AllEvents} {
		for _, h := range b.handlers[name] {
			snapshot = append(snapshot, h)
		}
	}
	b.mu.RUnlock()

	for _, h := range snapshot {
		h(e)
	}
}

func (b *Bus) Deliver(_ context.Context, events []host.Event) error {
	for _, e := range events {
		b.Emit(e)
	}
	return nil
}

// Names returns the event names that have at least one subscriber.
func (b *Bus) Names() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, 0, len(b.handlers))
	for n := range b.handlers {
		names = append(names, n)
	}
	return names
}

func (b *Bus) SubscriberCount(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[name])
}
