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
	"slices"
	"strings"

	"github.com/dotandev/parkledger/internal/amount"
	"github.com/dotandev/parkledger/internal/errors"
	"github.com/dotandev/parkledger/internal/host"
	"github.com/dotandev/parkledger/internal/logger"
)

var fineIndexKey = recordKey{host.Persistent, keyFineIndex}

// issueFine records the base fine of twice the hourly price.
func (c *Contract) issueFine(env *host.Env, plate string, reason FineReason) (FineRecord, error) {
	unit, err := hourlyPrice(env)
	if err != nil {
		return FineRecord{}, err
	}
	due, err := unit.MulUint(2)
	if err != nil {
		return FineRecord{}, err
	}
	fine := FineRecord{Plate: plate, IssueTime: env.Timestamp(), FineAmount: due, Reason: reason}
	if err := set(env, fineKey(plate), fine); err != nil {
		return FineRecord{}, err
	}
	if err := indexFine(env, plate, true); err != nil {
		return FineRecord{}, err
	}
	env.Publish(topics("fine", host.Symbol(plate)), host.Map(
		host.Field("amount", due.ScVal()),
		host.Field("reason", host.Symbol(string(reason))),
	))
	logger.Component("parking").Info("Fine issued", "plate", plate, "amount", due.String(), "reason", reason)
	return fine, nil
}

func indexFine(env *host.Env, plate string, add bool) error {
	index, _, err := get[[]string](env, fineIndexKey)
	if err != nil {
		return err
	}
	i, found := slices.BinarySearch(index, plate)
	switch {
	case add && !found:
		index = slices.Insert(index, i, plate)
	case !add && found:
		index = slices.Delete(index, i, i+1)
	default:
		return nil
	}
	return set(env, fineIndexKey, index)
}

func (c *Contract) PayFine(env *host.Env, plate string, payment amount.Amount) error {
	return mutate(env, func() error {
		p, err := NormalizePlate(plate)
		if err != nil {
			return err
		}
		return c.guarded(env, func() error {
			fine, ok, err := get[FineRecord](env, fineKey(p))
			if err != nil {
				return err
			}
			if !ok {
				return errors.ErrNotParked
			}
			if payment.LessThan(fine.FineAmount) {
				return errors.ErrInsufficientPayment
			}
			remove(env, fineKey(p))
			if err := indexFine(env, p, false); err != nil {
				return err
			}
			if err := c.addRevenue(env, payment); err != nil {
				return err
			}
			env.Publish(topics("fine_paid", host.Symbol(p)), payment.ScVal())
			return nil
		})
	})
}

// ApplyOverduePenalty doubles a fine left unpaid for more than 30 days. Each
// fine can be penalised once.
func (c *Contract) ApplyOverduePenalty(env *host.Env, admin, plate string) error {
	return mutate(env, func() error {
		if err := c.requireAdmin(env, admin, admin, plate); err != nil {
			return err
		}
		p, err := NormalizePlate(plate)
		if err != nil {
			return err
		}
		return c.guarded(env, func() error {
			fine, ok, err := get[FineRecord](env, fineKey(p))
			if err != nil {
				return err
			}
			if !ok || fine.Penalized || !fine.Overdue(env.Timestamp()) {
				return errors.ErrNotParked
			}
			if fine.FineAmount, err = fine.FineAmount.MulUint(2); err != nil {
				return err
			}
			fine.Penalized = true
			fine.Reason = FineOverdue
			if err := set(env, fineKey(p), fine); err != nil {
				return err
			}
			env.Publish(topics("penalty", host.Symbol(p)), fine.FineAmount.ScVal())
			return nil
		})
	})
}

// SweepArgs renders the plate list ProcessExpiredTickets signs.
func SweepArgs(admin string, plates []string) []string {
	return []string{admin, strings.Join(plates, ",")}
}

// ProcessExpiredTickets fines every listed plate whose ticket has run out
// and returns the plates it fined. Plates without an expired ticket are
// skipped.
func (c *Contract) ProcessExpiredTickets(env *host.Env, admin string, plates []string) ([]string, error) {
	var fined []string
	err := mutate(env, func() error {
		if err := c.requireAdmin(env, admin, SweepArgs(admin, plates)...); err != nil {
			return err
		}
		return c.guarded(env, func() error {
			now := env.Timestamp()
			for _, plate := range plates {
				p, err := NormalizePlate(plate)
				if err != nil {
					return err
				}
				t, ok, err := loadTicket(env, p)
				if err != nil {
					return err
				}
				if !ok || !t.Expired(now) {
					continue
				}
				owes, err := has(env, fineKey(p))
				if err != nil {
					return err
				}
				if owes {
					continue
				}
				if _, err := c.issueFine(env, p, FineSwept); err != nil {
					return err
				}
				dropTicket(env, p)
				fined = append(fined, p)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return fined, nil
}

func (c *Contract) GetFine(env *host.Env, plate string) (FineRecord, bool, error) {
	p, err := NormalizePlate(plate)
	if err != nil {
		return FineRecord{}, false, err
	}
	return get[FineRecord](env, fineKey(p))
}

// CalculateFineAmount quotes the fine for a stay hoursOverdue past its
// ticket.
func (c *Contract) CalculateFineAmount(env *host.Env, hoursOverdue uint32) (amount.Amount, error) {
	if err := requireInitialized(env); err != nil {
		return amount.Zero, err
	}
	unit, err := hourlyPrice(env)
	if err != nil {
		return amount.Zero, err
	}
	base, err := unit.MulUint(2)
	if err != nil {
		return amount.Zero, err
	}
	extra, err := unit.MulUint(uint64(hoursOverdue))
	if err != nil {
		return amount.Zero, err
	}
	return base.Add(extra)
}

// FineAge returns the seconds since the plate was fined, zero without a fine.
func (c *Contract) FineAge(env *host.Env, plate string) (uint64, error) {
	fine, ok, err := c.GetFine(env, plate)
	if err != nil || !ok {
		return 0, err
	}
	return fine.Age(env.Timestamp()), nil
}

func (c *Contract) IsFineOverdue(env *host.Env, plate string) (bool, error) {
	fine, ok, err := c.GetFine(env, plate)
	if err != nil || !ok {
		return false, err
	}
	return fine.Overdue(env.Timestamp()), nil
}

// GetTotalOutstandingFines sums every unpaid fine.
func (c *Contract) GetTotalOutstandingFines(env *host.Env, admin string) (amount.Amount, error) {
	ok, err := c.IsAdmin(env, admin)
	if err != nil {
		return amount.Zero, err
	}
	if !ok {
		return amount.Zero, errors.ErrNotAdmin
	}
	index, _, err := get[[]string](env, fineIndexKey)
	if err != nil {
		return amount.Zero, err
	}
	total := amount.Zero
	for _, plate := range index {
		fine, ok, err := get[FineRecord](env, fineKey(plate))
		if err != nil {
			return amount.Zero, err
		}
		if !ok {
			continue
		}
		if total, err = total.Add(fine.FineAmount); err != nil {
			return amount.Zero, err
		}
	}
	return total, nil
}
