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
	"github.com/dotandev/parkledger/internal/amount"
	"github.com/dotandev/parkledger/internal/errors"
	"github.com/dotandev/parkledger/internal/host"
)

func validHours(hours uint32) bool {
	return hours >= MinHours && hours <= MaxHours
}

// price multiplies the unit price by n. An overflowing total can never be
// paid, so it reports InsufficientPayment.
func price(unit amount.Amount, n uint32) (amount.Amount, error) {
	total, err := unit.MulUint(uint64(n))
	if err != nil {
		return amount.Zero, errors.ErrInsufficientPayment
	}
	return total, nil
}

// requireFree fails AlreadyParked for a plate holding a ticket or a valid
// pass and FinePaymentRequired for a fined one.
func requireFree(env *host.Env, plate string) error {
	parked, err := hasTicket(env, plate)
	if err != nil {
		return err
	}
	if !parked {
		if parked, err = passValid(env, plate); err != nil {
			return err
		}
	}
	if parked {
		return errors.ErrAlreadyParked
	}
	return requireNoFine(env, plate)
}

func requireNoFine(env *host.Env, plate string) error {
	fined, err := has(env, fineKey(plate))
	if err != nil {
		return err
	}
	if fined {
		return errors.ErrFinePaymentRequired
	}
	return nil
}

func (c *Contract) ticketTTL(t ParkingTicket, now uint64) uint64 {
	return t.ExpiresAt() - now + c.ticketGrace
}

// Tickets sit in the temporary tier for their paid window plus the grace.
// Until exit or a sweep converts it, a ticket also has a durable copy under
// parkedKey, so an overstay outliving the temporary entry is still fined.
func loadTicket(env *host.Env, plate string) (ParkingTicket, bool, error) {
	t, ok, err := get[ParkingTicket](env, ticketKey(plate))
	if err != nil || ok {
		return t, ok, err
	}
	return get[ParkingTicket](env, parkedKey(plate))
}

func hasTicket(env *host.Env, plate string) (bool, error) {
	_, ok, err := loadTicket(env, plate)
	return ok, err
}

func (c *Contract) storeTicket(env *host.Env, t ParkingTicket, now uint64) error {
	if err := setTTL(env, ticketKey(t.Plate), t, c.ticketTTL(t, now)); err != nil {
		return err
	}
	return set(env, parkedKey(t.Plate), t)
}

func dropTicket(env *host.Env, plate string) {
	remove(env, ticketKey(plate))
	remove(env, parkedKey(plate))
}

func (c *Contract) PurchaseHourlyTicket(env *host.Env, plate string, hours uint32, payment amount.Amount) error {
	return mutate(env, func() error {
		p, err := NormalizePlate(plate)
		if err != nil {
			return err
		}
		return c.guarded(env, func() error {
			if !validHours(hours) {
				return errors.ErrInvalidHours
			}
			if err := requireFree(env, p); err != nil {
				return err
			}
			unit, err := hourlyPrice(env)
			if err != nil {
				return err
			}
			due, err := price(unit, hours)
			if err != nil {
				return err
			}
			if payment.LessThan(due) {
				return errors.ErrInsufficientPayment
			}

			now := env.Timestamp()
			t := ParkingTicket{Plate: p, EntryTime: now, HoursPaid: hours, AmountPaid: payment}
			if err := c.storeTicket(env, t, now); err != nil {
				return err
			}
			if err := c.addRevenue(env, payment); err != nil {
				return err
			}
			env.Publish(topics("ticket", host.Symbol(p)), host.Map(
				host.Field("hours", host.U32(hours)),
				host.Field("paid", payment.ScVal()),
				host.Field("expires_at", host.U64(t.ExpiresAt())),
			))
			return nil
		})
	})
}

// ExitHourlyParking ends a ticket. Past the paid window the ticket becomes a
// fine; that conversion is committed even though the call fails with
// TicketExpired.
func (c *Contract) ExitHourlyParking(env *host.Env, plate string) error {
	return mutate(env, func() error {
		p, err := NormalizePlate(plate)
		if err != nil {
			return err
		}
		return c.guarded(env, func() error {
			t, ok, err := loadTicket(env, p)
			if err != nil {
				return err
			}
			if !ok {
				return errors.ErrNotParked
			}

			now := env.Timestamp()
			if t.Expired(now) {
				if _, err := c.issueFine(env, p, FineExpired); err != nil {
					return err
				}
				dropTicket(env, p)
				c.ClearReentrancyGuard(env)
				if err := env.Checkpoint(); err != nil {
					return err
				}
				return errors.ErrTicketExpired
			}

			dropTicket(env, p)
			env.Publish(topics("exit", host.Symbol(p)), host.Map(
				host.Field("entry_time", host.U64(t.EntryTime)),
				host.Field("exit_time", host.U64(now)),
			))
			return nil
		})
	})
}

// ExtendParking buys extraHours more for an unexpired ticket.
func (c *Contract) ExtendParking(env *host.Env, plate string, extraHours uint32, payment amount.Amount) error {
	return mutate(env, func() error {
		p, err := NormalizePlate(plate)
		if err != nil {
			return err
		}
		return c.guarded(env, func() error {
			if !validHours(extraHours) {
				return errors.ErrInvalidHours
			}
			t, ok, err := loadTicket(env, p)
			if err != nil {
				return err
			}
			if !ok {
				return errors.ErrNotParked
			}
			now := env.Timestamp()
			if t.Expired(now) {
				return errors.ErrTicketExpired
			}
			unit, err := hourlyPrice(env)
			if err != nil {
				return err
			}
			due, err := price(unit, extraHours)
			if err != nil {
				return err
			}
			if payment.LessThan(due) {
				return errors.ErrInsufficientPayment
			}

			t.HoursPaid += extraHours
			if t.AmountPaid, err = t.AmountPaid.Add(payment); err != nil {
				return err
			}
			if err := c.storeTicket(env, t, now); err != nil {
				return err
			}
			if err := c.addRevenue(env, payment); err != nil {
				return err
			}
			env.Publish(topics("ticket", host.Symbol(p)), host.Map(
				host.Field("hours", host.U32(t.HoursPaid)),
				host.Field("paid", payment.ScVal()),
				host.Field("expires_at", host.U64(t.ExpiresAt())),
			))
			return nil
		})
	})
}

func (c *Contract) GetTicket(env *host.Env, plate string) (ParkingTicket, bool, error) {
	p, err := NormalizePlate(plate)
	if err != nil {
		return ParkingTicket{}, false, err
	}
	return loadTicket(env, p)
}

// TicketRemaining returns the paid seconds left, zero once expired.
func (c *Contract) TicketRemaining(env *host.Env, plate string) (uint64, error) {
	t, ok, err := c.GetTicket(env, plate)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errors.ErrNotParked
	}
	return t.Remaining(env.Timestamp()), nil
}
