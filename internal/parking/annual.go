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

func passValid(env *host.Env, plate string) (bool, error) {
	pass, ok, err := get[AnnualPass](env, passKey(plate))
	if err != nil || !ok {
		return false, err
	}
	return pass.Valid(env.Timestamp()), nil
}

func (c *Contract) PurchaseAnnualPass(env *host.Env, plate string, payment amount.Amount) error {
	return mutate(env, func() error {
		p, err := NormalizePlate(plate)
		if err != nil {
			return err
		}
		return c.guarded(env, func() error {
			if err := requireFree(env, p); err != nil {
				return err
			}
			return c.storePass(env, p, payment, "pass")
		})
	})
}

// RenewAnnualPass starts a new year from now, replacing any pass the plate
// holds. A plate on an hourly ticket cannot renew until it exits.
func (c *Contract) RenewAnnualPass(env *host.Env, plate string, payment amount.Amount) error {
	return mutate(env, func() error {
		p, err := NormalizePlate(plate)
		if err != nil {
			return err
		}
		return c.guarded(env, func() error {
			if err := requireNoFine(env, p); err != nil {
				return err
			}
			parked, err := hasTicket(env, p)
			if err != nil {
				return err
			}
			if parked {
				return errors.ErrAlreadyParked
			}
			return c.storePass(env, p, payment, "renew")
		})
	})
}

func (c *Contract) storePass(env *host.Env, plate string, payment amount.Amount, event string) error {
	due, err := annualPrice(env)
	if err != nil {
		return err
	}
	if payment.LessThan(due) {
		return errors.ErrInsufficientPayment
	}
	pass := AnnualPass{Plate: plate, PurchaseTime: env.Timestamp(), AmountPaid: payment}
	if err := set(env, passKey(plate), pass); err != nil {
		return err
	}
	if err := c.addRevenue(env, payment); err != nil {
		return err
	}
	env.Publish(topics(event, host.Symbol(plate)), host.Map(
		host.Field("paid", payment.ScVal()),
		host.Field("valid_until", host.U64(pass.ValidUntil())),
	))
	return nil
}

// ExitAnnualParking checks that the pass is still valid. The pass stays for
// the next entry.
func (c *Contract) ExitAnnualParking(env *host.Env, plate string) error {
	if err := requireInitialized(env); err != nil {
		return err
	}
	p, err := NormalizePlate(plate)
	if err != nil {
		return err
	}
	valid, err := passValid(env, p)
	if err != nil {
		return err
	}
	if !valid {
		return errors.ErrNotParked
	}
	return nil
}

// ParkWithAnnualPass checks that a plate may enter on its pass.
func (c *Contract) ParkWithAnnualPass(env *host.Env, plate string) error {
	if err := c.ExitAnnualParking(env, plate); err != nil {
		return err
	}
	p, _ := NormalizePlate(plate)
	return requireNoFine(env, p)
}

func (c *Contract) GetAnnualPass(env *host.Env, plate string) (AnnualPass, bool, error) {
	p, err := NormalizePlate(plate)
	if err != nil {
		return AnnualPass{}, false, err
	}
	return get[AnnualPass](env, passKey(p))
}

func (c *Contract) IsAnnualValid(env *host.Env, plate string) (bool, error) {
	p, err := NormalizePlate(plate)
	if err != nil {
		return false, err
	}
	return passValid(env, p)
}

// PassExpiry returns when the plate's pass stops being valid.
func (c *Contract) PassExpiry(env *host.Env, plate string) (uint64, error) {
	pass, ok, err := c.GetAnnualPass(env, plate)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errors.ErrNotParked
	}
	return pass.ValidUntil(), nil
}
