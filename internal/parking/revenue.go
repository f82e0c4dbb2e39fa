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

package parking

import (
	"github.com/stellar/go/xdr"

	"github.com/dotandev/parkledger/internal/amount"
	"github.com/dotandev/parkledger/internal/errors"
	"github.com/dotandev/parkledger/internal/host"
)

var guardKey = recordKey{host.Temporary, keyGuard}

// SetReentrancyGuard takes the guard, failing ReentrancyDetected if it is
// already held. The flag expires after the guard TTL if never cleared.
func (c *Contract) SetReentrancyGuard(env *host.Env) error {
	held, err := has(env, guardKey)
	if err != nil {
		return err
	}
	if held {
		return errors.ErrReentrancyDetected
	}
	return setTTL(env, guardKey, true, c.guardTTL)
}

// ClearReentrancyGuard drops the guard unconditionally.
func (c *Contract) ClearReentrancyGuard(env *host.Env) {
	remove(env, guardKey)
}

// guarded runs fn while holding the guard and releases it on every return.
func (c *Contract) guarded(env *host.Env, fn func() error) error {
	if err := c.SetReentrancyGuard(env); err != nil {
		return err
	}
	defer c.ClearReentrancyGuard(env)
	return fn()
}

// GetRevenue returns the collected revenue, zero if none.
func (c *Contract) GetRevenue(env *host.Env) (amount.Amount, error) {
	rev, _, err := get[amount.Amount](env, recordKey{host.Persistent, keyRevenue})
	return rev, err
}

func (c *Contract) addRevenue(env *host.Env, amt amount.Amount) error {
	rev, err := c.GetRevenue(env)
	if err != nil {
		return err
	}
	total, err := rev.Add(amt)
	if err != nil {
		return err
	}
	return set(env, recordKey{host.Persistent, keyRevenue}, total)
}

func (c *Contract) withdrawRevenue(env *host.Env, amt amount.Amount) error {
	rev, err := c.GetRevenue(env)
	if err != nil {
		return err
	}
	if rev.LessThan(amt) {
		return errors.ErrInsufficientRevenue
	}
	left, err := rev.Sub(amt)
	if err != nil {
		return err
	}
	return set(env, recordKey{host.Persistent, keyRevenue}, left)
}

func topics(name string, extra ...xdr.ScVal) []xdr.ScVal {
	return append([]xdr.ScVal{host.Symbol(name)}, extra...)
}
