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
	"context"
	"testing"

	"github.com/stellar/go/keypair"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotandev/parkledger/internal/amount"
	perrors "github.com/dotandev/parkledger/internal/errors"
	"github.com/dotandev/parkledger/internal/host"
)

func TestReentrancyGuardTwice(t *testing.T) {
	f := setup(t)
	c := f.client.Contract()

	err := f.host.Invoke(f.ctx, host.Call{Function: "guard"}, func(env *host.Env) error {
		require.NoError(t, c.SetReentrancyGuard(env))
		assert.ErrorIs(t, c.SetReentrancyGuard(env), perrors.ErrReentrancyDetected)
		c.ClearReentrancyGuard(env)
		require.NoError(t, c.SetReentrancyGuard(env))
		c.ClearReentrancyGuard(env)
		// Clearing an absent guard is harmless.
		c.ClearReentrancyGuard(env)
		return nil
	})
	require.NoError(t, err)
	assert.False(t, f.guardHeld(t))
}

func TestLeakedGuardExpires(t *testing.T) {
	f := setup(t, WithGuardTTL(50))
	c := f.client.Contract()
	f.write(t, c.SetReentrancyGuard)

	assert.ErrorIs(t, f.client.PurchaseHourlyTicket(f.ctx, "ABC123", 1, amt(100)), perrors.ErrReentrancyDetected)
	f.clock.Advance(50)
	assert.ErrorIs(t, f.client.PurchaseHourlyTicket(f.ctx, "ABC123", 1, amt(100)), perrors.ErrReentrancyDetected)
	f.clock.Advance(1)
	require.NoError(t, f.client.PurchaseHourlyTicket(f.ctx, "ABC123", 1, amt(100)))
}

func TestPayoutCallbackCannotReenter(t *testing.T) {
	var client *Client
	var nested []error
	payout := PayoutFunc(func(ctx context.Context, _ string, _ amount.Amount) error {
		nested = append(nested,
			client.PayFine(ctx, "CAR1", amt(200)),
			client.PurchaseHourlyTicket(ctx, "SNEAK", 1, amt(100)),
		)
		return nil
	})
	f := setup(t, WithPayout(payout))
	client = f.client
	f.earn(t)

	require.NoError(t, f.client.ProposeWithdrawal(f.ctx, f.a, amt(300), keypair.MustRandom().Address()))
	require.NoError(t, f.client.ApproveWithdrawal(f.ctx, f.b))

	require.Len(t, nested, 2)
	for _, err := range nested {
		assert.ErrorIs(t, err, perrors.ErrReentrancyDetected)
	}
	_, ok, err := f.client.GetTicket(f.ctx, "SNEAK")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, amt(100), f.revenue(t))
	assert.False(t, f.guardHeld(t))
}

func TestRevenueOverflow(t *testing.T) {
	f := setup(t)
	ceiling := amount.MustParse("170141183460469231731687303715884105727")
	require.NoError(t, f.client.PurchaseHourlyTicket(f.ctx, "RICH", 1, ceiling))

	err := f.client.PurchaseHourlyTicket(f.ctx, "MORE", 1, amt(100))
	assert.ErrorIs(t, err, perrors.ErrAmountOverflow)
	_, ok, err := f.client.GetTicket(f.ctx, "MORE")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, ceiling, f.revenue(t))
}
