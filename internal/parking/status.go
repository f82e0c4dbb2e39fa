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

import "github.com/dotandev/parkledger/internal/host"

// CheckParkingStatus reports the plate's state. A fine wins over a ticket,
// and a ticket over a valid pass.
func (c *Contract) CheckParkingStatus(env *host.Env, plate string) (Status, error) {
	p, err := NormalizePlate(plate)
	if err != nil {
		return "", err
	}
	checks := []struct {
		status Status
		held   func() (bool, error)
	}{
		{StatusFined, func() (bool, error) { return has(env, fineKey(p)) }},
		{StatusHourly, func() (bool, error) { return hasTicket(env, p) }},
		{StatusAnnual, func() (bool, error) { return passValid(env, p) }},
	}
	for _, chk := range checks {
		held, err := chk.held()
		if err != nil {
			return "", err
		}
		if held {
			return chk.status, nil
		}
	}
	return StatusFree, nil
}

// PlateReport is everything stored for one plate.
type PlateReport struct {
	Plate     string         `json:"plate"`
	Status    Status         `json:"status"`
	Ticket    *ParkingTicket `json:"ticket,omitempty"`
	Pass      *AnnualPass    `json:"pass,omitempty"`
	PassValid bool           `json:"pass_valid"`
	Fine      *FineRecord    `json:"fine,omitempty"`
	Timestamp uint64         `json:"ledger_timestamp"`
}

func (c *Contract) Report(env *host.Env, plate string) (PlateReport, error) {
	p, err := NormalizePlate(plate)
	if err != nil {
		return PlateReport{}, err
	}
	r := PlateReport{Plate: p, Timestamp: env.Timestamp()}
	if r.Status, err = c.CheckParkingStatus(env, p); err != nil {
		return PlateReport{}, err
	}
	if t, ok, err := loadTicket(env, p); err != nil {
		return PlateReport{}, err
	} else if ok {
		r.Ticket = &t
	}
	if pass, ok, err := get[AnnualPass](env, passKey(p)); err != nil {
		return PlateReport{}, err
	} else if ok {
		r.Pass = &pass
		r.PassValid = pass.Valid(env.Timestamp())
	}
	if f, ok, err := get[FineRecord](env, fineKey(p)); err != nil {
		return PlateReport{}, err
	} else if ok {
		r.Fine = &f
	}
	return r, nil
}
