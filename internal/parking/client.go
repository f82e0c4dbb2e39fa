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
	"strconv"

	"github.com/dotandev/parkledger/internal/amount"
	"github.com/dotandev/parkledger/internal/auth"
	"github.com/dotandev/parkledger/internal/host"
)

// Entry point names, as signed in authorization entries.
const (
	FnInitialize            = "initialize"
	FnPurchaseHourlyTicket  = "purchase_hourly_ticket"
	FnExitHourlyParking     = "exit_hourly_parking"
	FnExtendParking         = "extend_parking"
	FnPurchaseAnnualPass    = "purchase_annual_pass"
	FnRenewAnnualPass       = "renew_annual_pass"
	FnExitAnnualParking     = "exit_annual_parking"
	FnParkWithAnnualPass    = "park_with_annual_pass"
	FnPayFine               = "pay_fine"
	FnSetHourlyPrice        = "set_hourly_price"
	FnSetAnnualPrice        = "set_annual_price"
	FnProposeWithdrawal     = "propose_withdrawal"
	FnApproveWithdrawal     = "approve_withdrawal"
	FnCancelWithdrawal      = "cancel_withdrawal"
	FnProcessExpiredTickets = "process_expired_tickets"
	FnApplyOverduePenalty   = "apply_overdue_penalty"
)

// Client invokes the contract on a host, one host invocation per call.
// Calls made with a context carrying an active Env run nested in it.
type Client struct {
	host     *host.Host
	contract *Contract
}

func NewClient(h *host.Host, c *Contract) *Client {
	return &Client{host: h, contract: c}
}

func (c *Client) Host() *host.Host { return c.host }

func (c *Client) Contract() *Contract { return c.contract }

func (c *Client) invoke(ctx context.Context, fn string, args []string, auths []auth.Entry, body func(*host.Env) error) error {
	return c.host.Invoke(ctx, host.Call{Function: fn, Args: args, Auth: auths}, body)
}

func read[T any](ctx context.Context, c *Client, fn func(*host.Env) (T, error)) (T, error) {
	var out T
	err := c.host.View(ctx, func(env *host.Env) error {
		var err error
		out, err = fn(env)
		return err
	})
	return out, err
}

// found carries a record with its presence flag through read.
type found[T any] struct {
	v  T
	ok bool
}

func readRecord[T any](ctx context.Context, c *Client, fn func(*host.Env) (T, bool, error)) (T, bool, error) {
	r, err := read(ctx, c, func(env *host.Env) (found[T], error) {
		v, ok, err := fn(env)
		return found[T]{v, ok}, err
	})
	return r.v, r.ok, err
}

func u32(n uint32) string { return strconv.FormatUint(uint64(n), 10) }

func (c *Client) Initialize(ctx context.Context, admin1, admin2, admin3 string, hourly, annual amount.Amount, totalSpots uint32, auths ...auth.Entry) error {
	args := InitArgs(admin1, admin2, admin3, hourly, annual, totalSpots)
	return c.invoke(ctx, FnInitialize, args, auths, func(env *host.Env) error {
		return c.contract.Initialize(env, admin1, admin2, admin3, hourly, annual, totalSpots)
	})
}

func (c *Client) PurchaseHourlyTicket(ctx context.Context, plate string, hours uint32, payment amount.Amount) error {
	return c.invoke(ctx, FnPurchaseHourlyTicket, []string{plate, u32(hours), payment.String()}, nil, func(env *host.Env) error {
		return c.contract.PurchaseHourlyTicket(env, plate, hours, payment)
	})
}

func (c *Client) ExitHourlyParking(ctx context.Context, plate string) error {
	return c.invoke(ctx, FnExitHourlyParking, []string{plate}, nil, func(env *host.Env) error {
		return c.contract.ExitHourlyParking(env, plate)
	})
}

func (c *Client) ExtendParking(ctx context.Context, plate string, extraHours uint32, payment amount.Amount) error {
	return c.invoke(ctx, FnExtendParking, []string{plate, u32(extraHours), payment.String()}, nil, func(env *host.Env) error {
		return c.contract.ExtendParking(env, plate, extraHours, payment)
	})
}

func (c *Client) PurchaseAnnualPass(ctx context.Context, plate string, payment amount.Amount) error {
	return c.invoke(ctx, FnPurchaseAnnualPass, []string{plate, payment.String()}, nil, func(env *host.Env) error {
		return c.contract.PurchaseAnnualPass(env, plate, payment)
	})
}

func (c *Client) RenewAnnualPass(ctx context.Context, plate string, payment amount.Amount) error {
	return c.invoke(ctx, FnRenewAnnualPass, []string{plate, payment.String()}, nil, func(env *host.Env) error {
		return c.contract.RenewAnnualPass(env, plate, payment)
	})
}

func (c *Client) ExitAnnualParking(ctx context.Context, plate string) error {
	return c.invoke(ctx, FnExitAnnualParking, []string{plate}, nil, func(env *host.Env) error {
		return c.contract.ExitAnnualParking(env, plate)
	})
}

func (c *Client) ParkWithAnnualPass(ctx context.Context, plate string) error {
	return c.invoke(ctx, FnParkWithAnnualPass, []string{plate}, nil, func(env *host.Env) error {
		return c.contract.ParkWithAnnualPass(env, plate)
	})
}

func (c *Client) PayFine(ctx context.Context, plate string, payment amount.Amount) error {
	return c.invoke(ctx, FnPayFine, []string{plate, payment.String()}, nil, func(env *host.Env) error {
		return c.contract.PayFine(env, plate, payment)
	})
}

func (c *Client) SetHourlyPrice(ctx context.Context, admin string, price amount.Amount, auths ...auth.Entry) error {
	return c.invoke(ctx, FnSetHourlyPrice, []string{admin, price.String()}, auths, func(env *host.Env) error {
		return c.contract.SetHourlyPrice(env, admin, price)
	})
}

func (c *Client) SetAnnualPrice(ctx context.Context, admin string, price amount.Amount, auths ...auth.Entry) error {
	return c.invoke(ctx, FnSetAnnualPrice, []string{admin, price.String()}, auths, func(env *host.Env) error {
		return c.contract.SetAnnualPrice(env, admin, price)
	})
}

func (c *Client) ProposeWithdrawal(ctx context.Context, admin string, amt amount.Amount, recipient string, auths ...auth.Entry) error {
	return c.invoke(ctx, FnProposeWithdrawal, []string{admin, amt.String(), recipient}, auths, func(env *host.Env) error {
		return c.contract.ProposeWithdrawal(env, admin, amt, recipient)
	})
}

func (c *Client) ApproveWithdrawal(ctx context.Context, admin string, auths ...auth.Entry) error {
	return c.invoke(ctx, FnApproveWithdrawal, []string{admin}, auths, func(env *host.Env) error {
		return c.contract.ApproveWithdrawal(env, admin)
	})
}

func (c *Client) CancelWithdrawal(ctx context.Context, admin string, auths ...auth.Entry) error {
	return c.invoke(ctx, FnCancelWithdrawal, []string{admin}, auths, func(env *host.Env) error {
		return c.contract.CancelWithdrawal(env, admin)
	})
}

func (c *Client) ProcessExpiredTickets(ctx context.Context, admin string, plates []string, auths ...auth.Entry) ([]string, error) {
	var fined []string
	err := c.invoke(ctx, FnProcessExpiredTickets, SweepArgs(admin, plates), auths, func(env *host.Env) error {
		var err error
		fined, err = c.contract.ProcessExpiredTickets(env, admin, plates)
		return err
	})
	return fined, err
}

func (c *Client) ApplyOverduePenalty(ctx context.Context, admin, plate string, auths ...auth.Entry) error {
	return c.invoke(ctx, FnApplyOverduePenalty, []string{admin, plate}, auths, func(env *host.Env) error {
		return c.contract.ApplyOverduePenalty(env, admin, plate)
	})
}

func (c *Client) GetTicket(ctx context.Context, plate string) (ParkingTicket, bool, error) {
	return readRecord(ctx, c, func(env *host.Env) (ParkingTicket, bool, error) {
		return c.contract.GetTicket(env, plate)
	})
}

func (c *Client) GetAnnualPass(ctx context.Context, plate string) (AnnualPass, bool, error) {
	return readRecord(ctx, c, func(env *host.Env) (AnnualPass, bool, error) {
		return c.contract.GetAnnualPass(env, plate)
	})
}

func (c *Client) GetFine(ctx context.Context, plate string) (FineRecord, bool, error) {
	return readRecord(ctx, c, func(env *host.Env) (FineRecord, bool, error) {
		return c.contract.GetFine(env, plate)
	})
}

func (c *Client) GetWithdrawalProposal(ctx context.Context, admin string) (WithdrawalProposal, bool, error) {
	return readRecord(ctx, c, func(env *host.Env) (WithdrawalProposal, bool, error) {
		return c.contract.GetWithdrawalProposal(env, admin)
	})
}

func (c *Client) IsAnnualValid(ctx context.Context, plate string) (bool, error) {
	return read(ctx, c, func(env *host.Env) (bool, error) { return c.contract.IsAnnualValid(env, plate) })
}

func (c *Client) GetConfig(ctx context.Context) (ParkingConfig, error) {
	return read(ctx, c, c.contract.GetConfig)
}

func (c *Client) IsAdmin(ctx context.Context, address string) (bool, error) {
	return read(ctx, c, func(env *host.Env) (bool, error) { return c.contract.IsAdmin(env, address) })
}

func (c *Client) GetRevenue(ctx context.Context) (amount.Amount, error) {
	return read(ctx, c, c.contract.GetRevenue)
}

func (c *Client) CheckParkingStatus(ctx context.Context, plate string) (Status, error) {
	return read(ctx, c, func(env *host.Env) (Status, error) { return c.contract.CheckParkingStatus(env, plate) })
}

func (c *Client) CalculateFineAmount(ctx context.Context, hoursOverdue uint32) (amount.Amount, error) {
	return read(ctx, c, func(env *host.Env) (amount.Amount, error) {
		return c.contract.CalculateFineAmount(env, hoursOverdue)
	})
}

func (c *Client) FineAge(ctx context.Context, plate string) (uint64, error) {
	return read(ctx, c, func(env *host.Env) (uint64, error) { return c.contract.FineAge(env, plate) })
}

func (c *Client) IsFineOverdue(ctx context.Context, plate string) (bool, error) {
	return read(ctx, c, func(env *host.Env) (bool, error) { return c.contract.IsFineOverdue(env, plate) })
}

func (c *Client) TicketRemaining(ctx context.Context, plate string) (uint64, error) {
	return read(ctx, c, func(env *host.Env) (uint64, error) { return c.contract.TicketRemaining(env, plate) })
}

func (c *Client) PassExpiry(ctx context.Context, plate string) (uint64, error) {
	return read(ctx, c, func(env *host.Env) (uint64, error) { return c.contract.PassExpiry(env, plate) })
}

func (c *Client) GetTotalOutstandingFines(ctx context.Context, admin string) (amount.Amount, error) {
	return read(ctx, c, func(env *host.Env) (amount.Amount, error) {
		return c.contract.GetTotalOutstandingFines(env, admin)
	})
}

func (c *Client) Report(ctx context.Context, plate string) (PlateReport, error) {
	return read(ctx, c, func(env *host.Env) (PlateReport, error) { return c.contract.Report(env, plate) })
}
