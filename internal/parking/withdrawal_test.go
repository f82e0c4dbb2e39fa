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
	"errors"
	"testing"

	"github.com/stellar/go/keypair"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotandev/parkledger/internal/amount"
	perrors "github.com/dotandev/parkledger/internal/errors"
	"github.com/dotandev/parkledger/internal/host"
)

// earn collects 400 in revenue.
func (f *fixture) earn(t *testing.T) {
	t.Helper()
	require.NoError(t, f.client.PurchaseHourlyTicket(f.ctx, "CAR1", 2, amt(200)))
	require.NoError(t, f.client.PurchaseHourlyTicket(f.ctx, "CAR2", 2, amt(200)))
}

func TestWithdrawalTwoOfThree(t *testing.T) {
	f := setup(t)
	f.earn(t)
	recipient := keypair.MustRandom().Address()

	require.NoError(t, f.client.ProposeWithdrawal(f.ctx, f.a, amt(300), recipient))
	prop, ok, err := f.client.GetWithdrawalProposal(f.ctx, f.b)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, WithdrawalProposal{Proposer: f.a, Amount: amt(300), Recipient: recipient, Timestamp: start}, prop)

	assert.ErrorIs(t, f.client.ApproveWithdrawal(f.ctx, f.a), perrors.ErrNotAdmin)
	assert.Equal(t, amt(400), f.revenue(t))

	require.NoError(t, f.client.ApproveWithdrawal(f.ctx, f.b))
	assert.Equal(t, amt(100), f.revenue(t))

	_, ok, err = f.client.GetWithdrawalProposal(f.ctx, f.a)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, f.client.ApproveWithdrawal(f.ctx, f.c), perrors.ErrNotParked)
	assert.Contains(t, f.events.Names(), "withdraw")
}

func TestWithdrawalThreeOfThree(t *testing.T) {
	f := setup(t, WithThreshold(3))
	f.earn(t)
	recipient := keypair.MustRandom().Address()
	require.NoError(t, f.client.ProposeWithdrawal(f.ctx, f.c, amt(400), recipient))

	require.NoError(t, f.client.ApproveWithdrawal(f.ctx, f.b))
	assert.Equal(t, amt(400), f.revenue(t))
	assert.ErrorIs(t, f.client.ApproveWithdrawal(f.ctx, f.b), perrors.ErrAlreadyParked)

	prop, _, err := f.client.GetWithdrawalProposal(f.ctx, f.a)
	require.NoError(t, err)
	assert.Equal(t, []string{f.b}, prop.Approvals)

	require.NoError(t, f.client.ApproveWithdrawal(f.ctx, f.a))
	assert.True(t, f.revenue(t).IsZero())
}

func TestProposeWithdrawalValidation(t *testing.T) {
	f := setup(t)
	f.earn(t)
	recipient := keypair.MustRandom().Address()

	assert.ErrorIs(t, f.client.ProposeWithdrawal(f.ctx, f.a, amt(401), recipient), perrors.ErrInsufficientRevenue)
	assert.ErrorIs(t, f.client.ProposeWithdrawal(f.ctx, keypair.MustRandom().Address(), amt(1), recipient), perrors.ErrNotAdmin)
	assert.ErrorIs(t, f.client.ProposeWithdrawal(f.ctx, f.a, amount.Zero, recipient), perrors.ErrInsufficientPayment)
	assert.ErrorIs(t, f.client.ProposeWithdrawal(f.ctx, f.a, amt(1), "nowhere"), perrors.ErrValidation)

	_, _, err := f.client.GetWithdrawalProposal(f.ctx, recipient)
	assert.ErrorIs(t, err, perrors.ErrNotAdmin)
}

func TestWithdrawalRevenueCheckedAtExecution(t *testing.T) {
	f := setup(t)
	f.earn(t)
	recipient := keypair.MustRandom().Address()

	require.NoError(t, f.client.ProposeWithdrawal(f.ctx, f.a, amt(300), recipient))
	require.NoError(t, f.client.ApproveWithdrawal(f.ctx, f.b))

	// A second proposal may not drain more than what is left.
	assert.ErrorIs(t, f.client.ProposeWithdrawal(f.ctx, f.a, amt(300), recipient), perrors.ErrInsufficientRevenue)
}

func TestCancelWithdrawal(t *testing.T) {
	f := setup(t)
	f.earn(t)
	recipient := keypair.MustRandom().Address()

	assert.ErrorIs(t, f.client.CancelWithdrawal(f.ctx, f.a), perrors.ErrNotParked)
	require.NoError(t, f.client.ProposeWithdrawal(f.ctx, f.a, amt(100), recipient))
	assert.ErrorIs(t, f.client.CancelWithdrawal(f.ctx, f.b), perrors.ErrNotAdmin)
	require.NoError(t, f.client.CancelWithdrawal(f.ctx, f.a))

	assert.ErrorIs(t, f.client.ApproveWithdrawal(f.ctx, f.b), perrors.ErrNotParked)
	assert.Equal(t, amt(400), f.revenue(t))
}

func TestWithdrawalProposalLapses(t *testing.T) {
	f := setup(t)
	f.earn(t)
	require.NoError(t, f.client.ProposeWithdrawal(f.ctx, f.a, amt(100), keypair.MustRandom().Address()))

	f.clock.Advance(host.DefaultTTLConfig().Temporary + 1)
	assert.ErrorIs(t, f.client.ApproveWithdrawal(f.ctx, f.b), perrors.ErrNotParked)
}

func TestPayoutReceivesWithdrawal(t *testing.T) {
	var gotRecipient string
	var gotAmount amount.Amount
	payout := PayoutFunc(func(ctx context.Context, recipient string, amt amount.Amount) error {
		_, inCall := host.FromContext(ctx)
		assert.True(t, inCall)
		gotRecipient, gotAmount = recipient, amt
		return nil
	})
	f := setup(t, WithPayout(payout))
	f.earn(t)
	recipient := keypair.MustRandom().Address()

	require.NoError(t, f.client.ProposeWithdrawal(f.ctx, f.a, amt(250), recipient))
	require.NoError(t, f.client.ApproveWithdrawal(f.ctx, f.b))
	assert.Equal(t, recipient, gotRecipient)
	assert.Equal(t, amt(250), gotAmount)
}

func TestFailedPayoutRollsBack(t *testing.T) {
	payout := PayoutFunc(func(context.Context, string, amount.Amount) error {
		return errors.New("transfer rejected")
	})
	f := setup(t, WithPayout(payout))
	f.earn(t)
	require.NoError(t, f.client.ProposeWithdrawal(f.ctx, f.a, amt(250), keypair.MustRandom().Address()))

	assert.Error(t, f.client.ApproveWithdrawal(f.ctx, f.b))
	assert.Equal(t, amt(400), f.revenue(t))
	_, ok, err := f.client.GetWithdrawalProposal(f.ctx, f.a)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, f.guardHeld(t))
}
