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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/dotandev/parkledger/internal/errors"
	"github.com/dotandev/parkledger/internal/host"
)

func TestPurchaseAndImmediateExit(t *testing.T) {
	f := setup(t)

	require.NoError(t, f.client.PurchaseHourlyTicket(f.ctx, "ABC123", 2, amt(200)))
	assert.Equal(t, amt(200), f.revenue(t))
	assert.Equal(t, StatusHourly, f.status(t, "ABC123"))

	ticket, ok, err := f.client.GetTicket(f.ctx, "ABC123")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ParkingTicket{Plate: "ABC123", EntryTime: start, HoursPaid: 2, AmountPaid: amt(200)}, ticket)

	require.NoError(t, f.client.ExitHourlyParking(f.ctx, "ABC123"))
	_, ok, err = f.client.GetTicket(f.ctx, "ABC123")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, amt(200), f.revenue(t))
	assert.Equal(t, StatusFree, f.status(t, "ABC123"))
	assert.False(t, f.guardHeld(t))
	assert.Equal(t, []string{"init", "ticket", "exit"}, f.events.Names())
}

func TestExpiredExitIssuesFine(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.client.PurchaseHourlyTicket(f.ctx, "ABC123", 2, amt(200)))

	f.clock.Advance(3 * SecondsPerHour)
	err := f.client.ExitHourlyParking(f.ctx, "ABC123")
	assert.ErrorIs(t, err, perrors.ErrTicketExpired)

	fine, ok, err := f.client.GetFine(f.ctx, "ABC123")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, amt(200), fine.FineAmount)
	assert.Equal(t, FineExpired, fine.Reason)
	assert.Equal(t, start+3*SecondsPerHour, fine.IssueTime)

	_, ok, err = f.client.GetTicket(f.ctx, "ABC123")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, StatusFined, f.status(t, "ABC123"))
	assert.False(t, f.guardHeld(t))
	assert.Contains(t, f.events.Names(), "fine")

	require.NoError(t, f.client.PayFine(f.ctx, "ABC123", amt(200)))
	_, ok, err = f.client.GetFine(f.ctx, "ABC123")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, amt(400), f.revenue(t))
}

func TestExitBoundary(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.client.PurchaseHourlyTicket(f.ctx, "EARLY", 2, amt(200)))
	require.NoError(t, f.client.PurchaseHourlyTicket(f.ctx, "ONTIME", 2, amt(200)))
	require.NoError(t, f.client.PurchaseHourlyTicket(f.ctx, "LATE", 2, amt(200)))
	window := uint64(2 * SecondsPerHour)

	f.clock.Set(start + window - 1)
	require.NoError(t, f.client.ExitHourlyParking(f.ctx, "EARLY"))

	f.clock.Set(start + window)
	require.NoError(t, f.client.ExitHourlyParking(f.ctx, "ONTIME"))

	f.clock.Set(start + window + 1)
	assert.ErrorIs(t, f.client.ExitHourlyParking(f.ctx, "LATE"), perrors.ErrTicketExpired)

	for plate, fined := range map[string]bool{"EARLY": false, "ONTIME": false, "LATE": true} {
		_, ok, err := f.client.GetFine(f.ctx, plate)
		require.NoError(t, err)
		assert.Equal(t, fined, ok, plate)
	}
}

func TestInvalidHoursLeavesStateUnchanged(t *testing.T) {
	f := setup(t)

	for _, hours := range []uint32{0, 25} {
		err := f.client.PurchaseHourlyTicket(f.ctx, "ABC123", hours, amt(10_000))
		assert.ErrorIs(t, err, perrors.ErrInvalidHours, "hours=%d", hours)
	}
	_, ok, err := f.client.GetTicket(f.ctx, "ABC123")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, f.revenue(t).IsZero())
	assert.False(t, f.guardHeld(t))

	require.NoError(t, f.client.PurchaseHourlyTicket(f.ctx, "ABC123", 24, amt(2400)))
}

func TestPurchaseRejections(t *testing.T) {
	f := setup(t)

	assert.ErrorIs(t, f.client.PurchaseHourlyTicket(f.ctx, "ABC123", 2, amt(199)), perrors.ErrInsufficientPayment)

	require.NoError(t, f.client.PurchaseHourlyTicket(f.ctx, "ABC123", 1, amt(100)))
	assert.ErrorIs(t, f.client.PurchaseHourlyTicket(f.ctx, "ABC123", 1, amt(100)), perrors.ErrAlreadyParked)

	require.NoError(t, f.client.PurchaseAnnualPass(f.ctx, "PASS1", annual))
	assert.ErrorIs(t, f.client.PurchaseHourlyTicket(f.ctx, "PASS1", 1, amt(100)), perrors.ErrAlreadyParked)

	f.clock.Advance(2 * SecondsPerHour)
	// An expired ticket still blocks a new one until the vehicle exits.
	assert.ErrorIs(t, f.client.PurchaseHourlyTicket(f.ctx, "ABC123", 1, amt(100)), perrors.ErrAlreadyParked)
	assert.ErrorIs(t, f.client.ExitHourlyParking(f.ctx, "ABC123"), perrors.ErrTicketExpired)
	assert.ErrorIs(t, f.client.PurchaseHourlyTicket(f.ctx, "ABC123", 1, amt(100)), perrors.ErrFinePaymentRequired)

	assert.Equal(t, amt(100+5000), f.revenue(t))
}

func TestOverpaymentIsKept(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.client.PurchaseHourlyTicket(f.ctx, "ABC123", 1, amt(150)))

	ticket, _, err := f.client.GetTicket(f.ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, amt(150), ticket.AmountPaid)
	assert.Equal(t, amt(150), f.revenue(t))
}

func TestExitWithoutTicket(t *testing.T) {
	f := setup(t)
	assert.ErrorIs(t, f.client.ExitHourlyParking(f.ctx, "NOBODY"), perrors.ErrNotParked)
	assert.False(t, f.guardHeld(t))
}

func TestExtendParking(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.client.PurchaseHourlyTicket(f.ctx, "ABC123", 1, amt(100)))

	assert.ErrorIs(t, f.client.ExtendParking(f.ctx, "ABC123", 0, amt(100)), perrors.ErrInvalidHours)
	assert.ErrorIs(t, f.client.ExtendParking(f.ctx, "ABC123", 2, amt(199)), perrors.ErrInsufficientPayment)
	assert.ErrorIs(t, f.client.ExtendParking(f.ctx, "OTHER", 1, amt(100)), perrors.ErrNotParked)

	f.clock.Advance(30 * 60)
	require.NoError(t, f.client.ExtendParking(f.ctx, "ABC123", 24, amt(2400)))

	ticket, _, err := f.client.GetTicket(f.ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, uint32(25), ticket.HoursPaid)
	assert.Equal(t, amt(2500), ticket.AmountPaid)
	assert.Equal(t, amt(2500), f.revenue(t))

	remaining, err := f.client.TicketRemaining(f.ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, uint64(25*SecondsPerHour-30*60), remaining)

	f.clock.Set(ticket.ExpiresAt() + 1)
	assert.ErrorIs(t, f.client.ExtendParking(f.ctx, "ABC123", 1, amt(100)), perrors.ErrTicketExpired)
	remaining, err = f.client.TicketRemaining(f.ctx, "ABC123")
	require.NoError(t, err)
	assert.Zero(t, remaining)

	// A failed extension issues no fine.
	_, ok, err := f.client.GetFine(f.ctx, "ABC123")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTicketTTLCoversGrace(t *testing.T) {
	f := setup(t, WithTicketGrace(600))
	require.NoError(t, f.client.PurchaseHourlyTicket(f.ctx, "ABC123", 1, amt(100)))

	f.inspect(t, func(env *host.Env) {
		ttl, ok, err := env.Storage().TTL(host.Temporary, prefixTicket+"ABC123")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, uint64(SecondsPerHour+600), ttl)
	})

	// Past the grace the temporary entry is gone but the ticket is still held.
	f.clock.Advance(SecondsPerHour + 601)
	f.inspect(t, func(env *host.Env) {
		ok, err := env.Storage().Has(host.Temporary, prefixTicket+"ABC123")
		require.NoError(t, err)
		assert.False(t, ok)
	})
	_, ok, err := f.client.GetTicket(f.ctx, "ABC123")
	require.NoError(t, err)
	assert.True(t, ok)
	remaining, err := f.client.TicketRemaining(f.ctx, "ABC123")
	require.NoError(t, err)
	assert.Zero(t, remaining)
	assert.Equal(t, StatusHourly, f.status(t, "ABC123"))
}

func TestOverstayBeyondGraceIsFined(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.client.PurchaseHourlyTicket(f.ctx, "ABC123", 1, amt(100)))

	f.clock.Advance(26 * SecondsPerHour)
	assert.ErrorIs(t, f.client.PurchaseHourlyTicket(f.ctx, "ABC123", 1, amt(100)), perrors.ErrAlreadyParked)

	err := f.client.ExitHourlyParking(f.ctx, "ABC123")
	assert.ErrorIs(t, err, perrors.ErrTicketExpired)

	fine, ok, err := f.client.GetFine(f.ctx, "ABC123")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, amt(200), fine.FineAmount)
	_, ok, err = f.client.GetTicket(f.ctx, "ABC123")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, f.client.PurchaseHourlyTicket(f.ctx, "ABC123", 1, amt(100)), perrors.ErrFinePaymentRequired)
}

func TestSweepFinesLongOverstay(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.client.PurchaseHourlyTicket(f.ctx, "ABC123", 1, amt(100)))

	f.clock.Advance(30 * 24 * SecondsPerHour)
	fined, err := f.client.ProcessExpiredTickets(f.ctx, f.a, []string{"ABC123"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ABC123"}, fined)
	assert.Equal(t, StatusFined, f.status(t, "ABC123"))
}

func TestPlateNormalization(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.client.PurchaseHourlyTicket(f.ctx, "abc-123", 1, amt(100)))

	_, ok, err := f.client.GetTicket(f.ctx, "ABC 123")
	require.NoError(t, err)
	assert.True(t, ok)

	for _, plate := range []string{"", " - ", "AB$1", "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456"} {
		err := f.client.PurchaseHourlyTicket(f.ctx, plate, 1, amt(100))
		assert.ErrorIs(t, err, perrors.ErrPlateTooLong, "plate %q", plate)
	}

	p, err := NormalizePlate("ab_12-x")
	require.NoError(t, err)
	assert.Equal(t, "AB_12X", p)
}
