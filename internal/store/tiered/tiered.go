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

// Package tiered routes the temporary tier to one backend and the durable
// tiers to another.
package tiered

import (
	"context"
	"errors"

	"github.com/dotandev/parkledger/internal/host"
)

// Router is a host.Backend over two backends. A batch touching both is
// applied durable side first; each side is atomic on its own.
type Router struct {
	temporary host.Backend
	durable   host.Backend
}

func New(temporary, durable host.Backend) *Router {
	return &Router{temporary: temporary, durable: durable}
}

func (r *Router) pick(t host.Tier) host.Backend {
	if t == host.Temporary {
		return r.temporary
	}
	return r.durable
}

func (r *Router) Load(ctx context.Context, tier host.Tier, key string) (host.Entry, bool, error) {
	return r.pick(tier).Load(ctx, tier, key)
}

func (r *Router) Apply(ctx context.Context, writes []host.Write) error {
	var temp, durable []host.Write
	for _, w := range writes {
		if w.Tier == host.Temporary {
			temp = append(temp, w)
		} else {
			durable = append(durable, w)
		}
	}
	if len(durable) > 0 {
		if err := r.durable.Apply(ctx, durable); err != nil {
			return err
		}
	}
	if len(temp) > 0 {
		return r.temporary.Apply(ctx, temp)
	}
	return nil
}

// Purge purges whichever side supports it.
func (r *Router) Purge(ctx context.Context, now uint64) (int64, error) {
	var total int64
	for _, b := range []host.Backend{r.durable, r.temporary} {
		p, ok := b.(host.Purger)
		if !ok {
			continue
		}
		n, err := p.Purge(ctx, now)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (r *Router) Close() error {
	return errors.Join(r.temporary.Close(), r.durable.Close())
}
