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
	"testing"

	"github.com/stellar/go/keypair"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/dotandev/parkledger/internal/errors"
)

// fine leaves plate with the base fine of 200.
func (f *fixture) fine(t *testing.T, plate string) {
	t.Helper()
	require.NoError(t, f.client.PurchaseHourlyTicket(f.ctx, plate, 1, amt(100)))
	f.clock.Advance(SecondsPerHour + 1)
	require.ErrorIs(t, f.client.ExitHourlyParking(f.ctx, plate), perrors.ErrTicketExpired)
}

func TestPayFineExactAmount(t *testing.T) {
	f := setup(t)
	f.fine(t, "ABC123")

	assert.ErrorIs(t, f.client.PayFine(f.ctx, "ABC123", amt(199)), perrors.ErrInsufficientPayment)
	_, ok, err := f.client.GetFine(f.ctx, "ABC123")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, amt(100), f.revenue(t))

	require.NoError(t, f.client.PayFine(f.ctx, "ABC123", amt(200)))
	_, ok, err = f.client.GetFine(f.ctx, "ABC123")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, amt(300), f.revenue(t))

	assert.ErrorIs(t, f.client.PayFine(f.ctx, "ABC123", amt(200)), perrors.ErrNotParked)
	require.NoError(t, f.client.PurchaseHourlyTicket(f.ctx, "ABC123", 1, amt(100)))
}

func TestOverduePenalty(t *testing.T) {
	f := setup(t)
	f.fine(t, "ABC123")
	issued := f.clock.Now()
	outsider := keypair.MustRandom().Address()

	assert.ErrorIs(t, f.client.ApplyOverduePenalty(f.ctx, outsider, "ABC123"), perrors.ErrNotAdmin)
	assert.ErrorIs(t, f.client.ApplyOverduePenalty(f.ctx, f.a, "ABC123"), perrors.ErrNotParked)
	assert.ErrorIs(t, f.client.ApplyOverduePenalty(f.ctx, f.a, "NOFINE"), perrors.ErrNotParked)

	f.clock.Set(issued + FineOverdueAge)
	overdue, err := f.client.IsFineOverdue(f.ctx, "ABC123")
	require.NoError(t, err)
	assert.False(t, overdue)
	assert.ErrorIs(t, f.client.ApplyOverduePenalty(f.ctx, f.a, "ABC123"), perrors.ErrNotParked)

	f.clock.Set(issued + FineOverdueAge + 1)
	overdue, err = f.client.IsFineOverdue(f.ctx, "ABC123")
	require.NoError(t, err)
	assert.True(t, overdue)
	require.NoError(t, f.client.ApplyOverduePenalty(f.ctx, f.b, "ABC123"))

	fine, _, err := f.client.GetFine(f.ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, amt(400), fine.FineAmount)
	assert.Equal(t, FineOverdue, fine.Reason)
	assert.True(t, fine.Penalized)

	assert.ErrorIs(t, f.client.ApplyOverduePenalty(f.ctx, f.c, "ABC123"), perrors.ErrNotParked)
	assert.ErrorIs(t, f.client.PayFine(f.ctx, "ABC123", amt(399)), perrors.ErrInsufficientPayment)
	require.NoError(t, f.client.PayFine(f.ctx, "ABC123", amt(400)))
}

func TestFineAge(t *testing.T) {
	f := setup(t)
	age, err := f.client.FineAge(f.ctx, "ABC123")
	require.NoError(t, err)
	assert.Zero(t, age)

	f.fine(t, "ABC123")
	f.clock.Advance(500)
	age, err = f.client.FineAge(f.ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, uint64(500), age)

	rec := FineRecord{IssueTime: 1000}
	assert.Zero(t, rec.Age(10))
	assert.False(t, rec.Overdue(10))
}

func TestProcessExpiredTickets(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.client.PurchaseHourlyTicket(f.ctx, "EXPIRED", 1, amt(100)))
	require.NoError(t, f.client.PurchaseHourlyTicket(f.ctx, "ACTIVE", 4, amt(400)))
	f.clock.Advance(2 * SecondsPerHour)

	plates := []string{"EXPIRED", "ACTIVE", "ABSENT"}
	_, err := f.client.ProcessExpiredTickets(f.ctx, keypair.MustRandom().Address(), plates)
	assert.ErrorIs(t, err, perrors.ErrNotAdmin)

	fined, err := f.client.ProcessExpiredTickets(f.ctx, f.a, plates)
	require.NoError(t, err)
	assert.Equal(t, []string{"EXPIRED"}, fined)

	fine, ok, err := f.client.GetFine(f.ctx, "EXPIRED")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, FineSwept, fine.Reason)
	assert.Equal(t, amt(200), fine.FineAmount)
	assert.Equal(t, StatusFined, f.status(t, "EXPIRED"))
	assert.Equal(t, StatusHourly, f.status(t, "ACTIVE"))
	assert.Equal(t, StatusFree, f.status(t, "ABSENT"))

	// A second sweep finds nothing new.
	fined, err = f.client.ProcessExpiredTickets(f.ctx, f.b, plates)
	require.NoError(t, err)
	assert.Empty(t, fined)

	_, err = f.client.ProcessExpiredTickets(f.ctx, f.a, []string{"BAD$"})
	assert.ErrorIs(t, err, perrors.ErrPlateTooLong)
}

func TestCalculateFineAmount(t *testing.T) {
	f := newFixture(t)
	_, err := f.client.CalculateFineAmount(f.ctx, 3)
	assert.ErrorIs(t, err, perrors.ErrNotInitialized)

	require.NoError(t, f.client.Initialize(f.ctx, f.a, f.b, f.c, hourly, annual, 10))
	for hours, want := range map[uint32]int64{0: 200, 1: 300, 3: 500} {
		got, err := f.client.CalculateFineAmount(f.ctx, hours)
		require.NoError(t, err)
		assert.Equal(t, amt(want), got, "hours=%d", hours)
	}
}

func TestTotalOutstandingFines(t *testing.T) {
	f := setup(t)
	f.fine(t, "CAR1")
	f.fine(t, "CAR2")

	_, err := f.client.GetTotalOutstandingFines(f.ctx, keypair.MustRandom().Address())
	assert.ErrorIs(t, err, perrors.ErrNotAdmin)

	total, err := f.client.GetTotalOutstandingFines(f.ctx, f.a)
	require.NoError(t, err)
	assert.Equal(t, amt(400), total)

	require.NoError(t, f.client.PayFine(f.ctx, "CAR1", amt(200)))
	total, err = f.client.GetTotalOutstandingFines(f.ctx, f.a)
	require.NoError(t, err)
	assert.Equal(t, amt(200), total)
}
