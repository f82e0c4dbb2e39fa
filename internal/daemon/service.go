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

package daemon

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/gorilla/rpc/v2/json2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dotandev/parkledger/internal/amount"
	"github.com/dotandev/parkledger/internal/auth"
	"github.com/dotandev/parkledger/internal/db"
	"github.com/dotandev/parkledger/internal/errors"
	"github.com/dotandev/parkledger/internal/logger"
	"github.com/dotandev/parkledger/internal/parking"
	"github.com/dotandev/parkledger/internal/telemetry"
)

// ServiceName is the JSON-RPC service prefix, as in "Ledger.PayFine".
const ServiceName = "Ledger"

// Ledger exposes every contract entry point over JSON-RPC 2.0.
type Ledger struct {
	client  *parking.Client
	journal *db.Journal
}

// ErrorData is attached to JSON-RPC errors raised by the contract.
type ErrorData struct {
	Code uint32 `json:"code"`
	Name string `json:"name"`
}

func rpcError(err error) error {
	if err == nil {
		return nil
	}
	if code, name, ok := errors.CodeOf(err); ok {
		return &json2.Error{Code: json2.E_SERVER, Message: name, Data: ErrorData{Code: code, Name: name}}
	}
	switch {
	case stderrors.Is(err, errors.ErrValidation):
		return &json2.Error{Code: json2.E_BAD_PARAMS, Message: err.Error()}
	case stderrors.Is(err, errors.ErrAuthFailed):
		return &json2.Error{Code: json2.E_INVALID_REQ, Message: err.Error()}
	}
	return &json2.Error{Code: json2.E_INTERNAL, Message: err.Error()}
}

// call runs one mutating entry point, journals it and converts its error.
func (l *Ledger) call(r *http.Request, fn, plate string, args []string, run func(ctx context.Context) error) error {
	ctx, span := telemetry.GetTracer().Start(r.Context(), "rpc_"+fn)
	span.SetAttributes(attribute.String("contract.function", fn))
	defer span.End()

	err := run(ctx)
	if err != nil {
		span.RecordError(err)
	}

	if l.journal != nil {
		rec := &db.Record{
			Function: fn,
			Args:     args,
			Outcome:  db.OutcomeOK,
			LedgerTS: l.client.Host().Clock().Now(),
		}
		if p, perr := parking.NormalizePlate(plate); plate != "" && perr == nil {
			rec.Plate = p
		}
		if err != nil {
			rec.Outcome = db.OutcomeFailed
			rec.ErrorMsg = err.Error()
			if code, name, ok := errors.CodeOf(err); ok {
				rec.ErrorCode, rec.ErrorMsg = code, name
			}
		}
		if jerr := l.journal.Save(rec); jerr != nil {
			logger.Component("daemon").Error("Journal write failed", "function", fn, "error", jerr)
		}
	}
	return rpcError(err)
}

type Empty struct{}

type Ack struct {
	OK bool `json:"ok"`
}

type InitializeArgs struct {
	Admin1      string        `json:"admin1"`
	Admin2      string        `json:"admin2,omitempty"`
	Admin3      string        `json:"admin3,omitempty"`
	HourlyPrice amount.Amount `json:"hourly_price"`
	AnnualPrice amount.Amount `json:"annual_price"`
	TotalSpots  uint32        `json:"total_spots"`
	Auth        []auth.Entry  `json:"auth,omitempty"`
}

func (l *Ledger) Initialize(r *http.Request, args *InitializeArgs, reply *Ack) error {
	call := parking.InitArgs(args.Admin1, args.Admin2, args.Admin3, args.HourlyPrice, args.AnnualPrice, args.TotalSpots)
	err := l.call(r, parking.FnInitialize, "", call, func(ctx context.Context) error {
		return l.client.Initialize(ctx, args.Admin1, args.Admin2, args.Admin3,
			args.HourlyPrice, args.AnnualPrice, args.TotalSpots, args.Auth...)
	})
	reply.OK = err == nil
	return err
}

type PlateArgs struct {
	Plate string `json:"plate"`
}

type PaymentArgs struct {
	Plate   string        `json:"plate"`
	Hours   uint32        `json:"hours,omitempty"`
	Payment amount.Amount `json:"payment"`
}

func paid(a *PaymentArgs, withHours bool) []string {
	if withHours {
		return []string{a.Plate, u32(a.Hours), a.Payment.String()}
	}
	return []string{a.Plate, a.Payment.String()}
}

func (l *Ledger) PurchaseHourlyTicket(r *http.Request, args *PaymentArgs, reply *Ack) error {
	err := l.call(r, parking.FnPurchaseHourlyTicket, args.Plate, paid(args, true), func(ctx context.Context) error {
		return l.client.PurchaseHourlyTicket(ctx, args.Plate, args.Hours, args.Payment)
	})
	reply.OK = err == nil
	return err
}

func (l *Ledger) ExitHourlyParking(r *http.Request, args *PlateArgs, reply *Ack) error {
	err := l.call(r, parking.FnExitHourlyParking, args.Plate, []string{args.Plate}, func(ctx context.Context) error {
		return l.client.ExitHourlyParking(ctx, args.Plate)
	})
	reply.OK = err == nil
	return err
}

func (l *Ledger) ExtendParking(r *http.Request, args *PaymentArgs, reply *Ack) error {
	err := l.call(r, parking.FnExtendParking, args.Plate, paid(args, true), func(ctx context.Context) error {
		return l.client.ExtendParking(ctx, args.Plate, args.Hours, args.Payment)
	})
	reply.OK = err == nil
	return err
}

func (l *Ledger) PurchaseAnnualPass(r *http.Request, args *PaymentArgs, reply *Ack) error {
	err := l.call(r, parking.FnPurchaseAnnualPass, args.Plate, paid(args, false), func(ctx context.Context) error {
		return l.client.PurchaseAnnualPass(ctx, args.Plate, args.Payment)
	})
	reply.OK = err == nil
	return err
}

func (l *Ledger) RenewAnnualPass(r *http.Request, args *PaymentArgs, reply *Ack) error {
	err := l.call(r, parking.FnRenewAnnualPass, args.Plate, paid(args, false), func(ctx context.Context) error {
		return l.client.RenewAnnualPass(ctx, args.Plate, args.Payment)
	})
	reply.OK = err == nil
	return err
}

func (l *Ledger) ExitAnnualParking(r *http.Request, args *PlateArgs, reply *Ack) error {
	err := l.call(r, parking.FnExitAnnualParking, args.Plate, []string{args.Plate}, func(ctx context.Context) error {
		return l.client.ExitAnnualParking(ctx, args.Plate)
	})
	reply.OK = err == nil
	return err
}

func (l *Ledger) ParkWithAnnualPass(r *http.Request, args *PlateArgs, reply *Ack) error {
	err := l.call(r, parking.FnParkWithAnnualPass, args.Plate, []string{args.Plate}, func(ctx context.Context) error {
		return l.client.ParkWithAnnualPass(ctx, args.Plate)
	})
	reply.OK = err == nil
	return err
}

func (l *Ledger) PayFine(r *http.Request, args *PaymentArgs, reply *Ack) error {
	err := l.call(r, parking.FnPayFine, args.Plate, paid(args, false), func(ctx context.Context) error {
		return l.client.PayFine(ctx, args.Plate, args.Payment)
	})
	reply.OK = err == nil
	return err
}

type PriceArgs struct {
	Admin string        `json:"admin"`
	Price amount.Amount `json:"price"`
	Auth  []auth.Entry  `json:"auth,omitempty"`
}

func (l *Ledger) SetHourlyPrice(r *http.Request, args *PriceArgs, reply *Ack) error {
	err := l.call(r, parking.FnSetHourlyPrice, "", []string{args.Admin, args.Price.String()}, func(ctx context.Context) error {
		return l.client.SetHourlyPrice(ctx, args.Admin, args.Price, args.Auth...)
	})
	reply.OK = err == nil
	return err
}

func (l *Ledger) SetAnnualPrice(r *http.Request, args *PriceArgs, reply *Ack) error {
	err := l.call(r, parking.FnSetAnnualPrice, "", []string{args.Admin, args.Price.String()}, func(ctx context.Context) error {
		return l.client.SetAnnualPrice(ctx, args.Admin, args.Price, args.Auth...)
	})
	reply.OK = err == nil
	return err
}

type ProposeArgs struct {
	Admin     string        `json:"admin"`
	Amount    amount.Amount `json:"amount"`
	Recipient string        `json:"recipient"`
	Auth      []auth.Entry  `json:"auth,omitempty"`
}

func (l *Ledger) ProposeWithdrawal(r *http.Request, args *ProposeArgs, reply *Ack) error {
	call := []string{args.Admin, args.Amount.String(), args.Recipient}
	err := l.call(r, parking.FnProposeWithdrawal, "", call, func(ctx context.Context) error {
		return l.client.ProposeWithdrawal(ctx, args.Admin, args.Amount, args.Recipient, args.Auth...)
	})
	reply.OK = err == nil
	return err
}

type AdminArgs struct {
	Admin string       `json:"admin"`
	Auth  []auth.Entry `json:"auth,omitempty"`
}

func (l *Ledger) ApproveWithdrawal(r *http.Request, args *AdminArgs, reply *Ack) error {
	err := l.call(r, parking.FnApproveWithdrawal, "", []string{args.Admin}, func(ctx context.Context) error {
		return l.client.ApproveWithdrawal(ctx, args.Admin, args.Auth...)
	})
	reply.OK = err == nil
	return err
}

func (l *Ledger) CancelWithdrawal(r *http.Request, args *AdminArgs, reply *Ack) error {
	err := l.call(r, parking.FnCancelWithdrawal, "", []string{args.Admin}, func(ctx context.Context) error {
		return l.client.CancelWithdrawal(ctx, args.Admin, args.Auth...)
	})
	reply.OK = err == nil
	return err
}

type SweepArgs struct {
	Admin  string       `json:"admin"`
	Plates []string     `json:"plates"`
	Auth   []auth.Entry `json:"auth,omitempty"`
}

type SweepReply struct {
	Fined []string `json:"fined"`
}

func (l *Ledger) ProcessExpiredTickets(r *http.Request, args *SweepArgs, reply *SweepReply) error {
	return l.call(r, parking.FnProcessExpiredTickets, "", parking.SweepArgs(args.Admin, args.Plates), func(ctx context.Context) error {
		fined, err := l.client.ProcessExpiredTickets(ctx, args.Admin, args.Plates, args.Auth...)
		reply.Fined = fined
		return err
	})
}

type PenaltyArgs struct {
	Admin string       `json:"admin"`
	Plate string       `json:"plate"`
	Auth  []auth.Entry `json:"auth,omitempty"`
}

func (l *Ledger) ApplyOverduePenalty(r *http.Request, args *PenaltyArgs, reply *Ack) error {
	err := l.call(r, parking.FnApplyOverduePenalty, args.Plate, []string{args.Admin, args.Plate}, func(ctx context.Context) error {
		return l.client.ApplyOverduePenalty(ctx, args.Admin, args.Plate, args.Auth...)
	})
	reply.OK = err == nil
	return err
}
