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
	"strconv"

	"github.com/dotandev/parkledger/internal/amount"
	"github.com/dotandev/parkledger/internal/auth"
	"github.com/dotandev/parkledger/internal/errors"
	"github.com/dotandev/parkledger/internal/host"
)

// InitArgs renders Initialize's arguments in the order admin1 signs them.
func InitArgs(admin1, admin2, admin3 string, hourly, annual amount.Amount, totalSpots uint32) []string {
	return []string{admin1, admin2, admin3, hourly.String(), annual.String(), strconv.FormatUint(uint64(totalSpots), 10)}
}

// Initialize registers one to three admins and the prices. admin2 and admin3
// may be empty. admin1 must authorize the call.
func (c *Contract) Initialize(env *host.Env, admin1, admin2, admin3 string, hourly, annual amount.Amount, totalSpots uint32) error {
	ok, err := has(env, recordKey{host.Instance, keyInitialized})
	if err != nil {
		return err
	}
	if ok {
		return errors.ErrAlreadyInitialized
	}

	admins, err := collectAdmins(admin1, admin2, admin3)
	if err != nil {
		return err
	}
	// Fewer admins than the threshold could never approve a withdrawal.
	if len(admins) < c.threshold {
		return errors.ErrInvalidAdmin
	}
	if hourly.Sign() <= 0 || annual.Sign() <= 0 {
		return errors.ErrInsufficientPayment
	}
	if err := env.RequireAuth(admin1, InitArgs(admin1, admin2, admin3, hourly, annual, totalSpots)...); err != nil {
		return err
	}

	writes := []struct {
		k recordKey
		v any
	}{
		{recordKey{host.Instance, keyLayout}, LayoutVersion},
		{recordKey{host.Instance, keyAdmins}, admins},
		{recordKey{host.Instance, keyHourlyPrice}, hourly},
		{recordKey{host.Instance, keyAnnualPrice}, annual},
		{recordKey{host.Instance, keyTotalSpots}, totalSpots},
		{recordKey{host.Persistent, keyRevenue}, amount.Zero},
		{recordKey{host.Instance, keyInitialized}, true},
	}
	for _, w := range writes {
		if err := set(env, w.k, w.v); err != nil {
			return err
		}
	}

	env.Publish(topics("init"), host.Map(
		host.Field("admins", host.U32(uint32(len(admins)))),
		host.Field("hourly_price", hourly.ScVal()),
		host.Field("annual_price", annual.ScVal()),
		host.Field("total_spots", host.U32(totalSpots)),
	))
	return nil
}

func collectAdmins(candidates ...string) ([]string, error) {
	if candidates[0] == "" {
		return nil, errors.ErrInvalidAdmin
	}
	var admins []string
	seen := make(map[string]bool)
	for _, a := range candidates {
		if a == "" {
			continue
		}
		if auth.ValidateAddress(a) != nil || seen[a] {
			return nil, errors.ErrInvalidAdmin
		}
		seen[a] = true
		admins = append(admins, a)
	}
	return admins, nil
}

// Admins returns the registered admin set, empty before initialisation.
func (c *Contract) Admins(env *host.Env) ([]string, error) {
	admins, _, err := get[[]string](env, recordKey{host.Instance, keyAdmins})
	return admins, err
}

func (c *Contract) IsAdmin(env *host.Env, address string) (bool, error) {
	admins, err := c.Admins(env)
	if err != nil {
		return false, err
	}
	for _, a := range admins {
		if a == address {
			return true, nil
		}
	}
	return false, nil
}

// requireAdmin checks membership, then that caller signed args.
func (c *Contract) requireAdmin(env *host.Env, caller string, args ...string) error {
	ok, err := c.IsAdmin(env, caller)
	if err != nil {
		return err
	}
	if !ok {
		return errors.ErrNotAdmin
	}
	return env.RequireAuth(caller, args...)
}

func (c *Contract) SetHourlyPrice(env *host.Env, admin string, price amount.Amount) error {
	return c.setPrice(env, admin, keyHourlyPrice, price)
}

func (c *Contract) SetAnnualPrice(env *host.Env, admin string, price amount.Amount) error {
	return c.setPrice(env, admin, keyAnnualPrice, price)
}

func (c *Contract) setPrice(env *host.Env, admin, key string, price amount.Amount) error {
	return mutate(env, func() error {
		if err := c.requireAdmin(env, admin, admin, price.String()); err != nil {
			return err
		}
		if price.Sign() <= 0 {
			return errors.ErrInsufficientPayment
		}
		if err := set(env, recordKey{host.Instance, key}, price); err != nil {
			return err
		}
		env.Publish(topics("price", host.Symbol(key)), price.ScVal())
		return nil
	})
}

func hourlyPrice(env *host.Env) (amount.Amount, error) {
	return mustGet[amount.Amount](env, recordKey{host.Instance, keyHourlyPrice})
}

func annualPrice(env *host.Env) (amount.Amount, error) {
	return mustGet[amount.Amount](env, recordKey{host.Instance, keyAnnualPrice})
}

// GetConfig returns prices, spots and revenue. Before initialisation every
// field is zero.
func (c *Contract) GetConfig(env *host.Env) (ParkingConfig, error) {
	var cfg ParkingConfig
	var err error
	if cfg.HourlyPrice, _, err = get[amount.Amount](env, recordKey{host.Instance, keyHourlyPrice}); err != nil {
		return cfg, err
	}
	if cfg.AnnualPrice, _, err = get[amount.Amount](env, recordKey{host.Instance, keyAnnualPrice}); err != nil {
		return cfg, err
	}
	if cfg.TotalSpots, _, err = get[uint32](env, recordKey{host.Instance, keyTotalSpots}); err != nil {
		return cfg, err
	}
	cfg.TotalRevenue, err = c.GetRevenue(env)
	return cfg, err
}
