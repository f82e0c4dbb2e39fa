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
	"net/http"
	"strconv"

	"github.com/dotandev/parkledger/internal/amount"
	"github.com/dotandev/parkledger/internal/db"
	"github.com/dotandev/parkledger/internal/parking"
)

func u32(n uint32) string { return strconv.FormatUint(uint64(n), 10) }

type AmountReply struct {
	Amount amount.Amount `json:"amount"`
}

type BoolReply struct {
	Value bool `json:"value"`
}

type SecondsReply struct {
	Seconds uint64 `json:"seconds"`
}

func (l *Ledger) GetConfig(r *http.Request, _ *Empty, reply *parking.ParkingConfig) error {
	cfg, err := l.client.GetConfig(r.Context())
	*reply = cfg
	return rpcError(err)
}

func (l *Ledger) GetRevenue(r *http.Request, _ *Empty, reply *AmountReply) error {
	rev, err := l.client.GetRevenue(r.Context())
	reply.Amount = rev
	return rpcError(err)
}

func (l *Ledger) CheckParkingStatus(r *http.Request, args *PlateArgs, reply *parking.PlateReport) error {
	rep, err := l.client.Report(r.Context(), args.Plate)
	*reply = rep
	return rpcError(err)
}

// Record replies leave the record nil when the plate has none.
type TicketReply struct {
	Ticket *parking.ParkingTicket `json:"ticket"`
}

type PassReply struct {
	Pass *parking.AnnualPass `json:"pass"`
}

type FineReply struct {
	Fine *parking.FineRecord `json:"fine"`
}

func (l *Ledger) GetTicket(r *http.Request, args *PlateArgs, reply *TicketReply) error {
	t, ok, err := l.client.GetTicket(r.Context(), args.Plate)
	if ok {
		reply.Ticket = &t
	}
	return rpcError(err)
}

func (l *Ledger) GetAnnualPass(r *http.Request, args *PlateArgs, reply *PassReply) error {
	p, ok, err := l.client.GetAnnualPass(r.Context(), args.Plate)
	if ok {
		reply.Pass = &p
	}
	return rpcError(err)
}

func (l *Ledger) GetFine(r *http.Request, args *PlateArgs, reply *FineReply) error {
	f, ok, err := l.client.GetFine(r.Context(), args.Plate)
	if ok {
		reply.Fine = &f
	}
	return rpcError(err)
}

func (l *Ledger) IsAnnualValid(r *http.Request, args *PlateArgs, reply *BoolReply) error {
	ok, err := l.client.IsAnnualValid(r.Context(), args.Plate)
	reply.Value = ok
	return rpcError(err)
}

func (l *Ledger) TicketRemaining(r *http.Request, args *PlateArgs, reply *SecondsReply) error {
	s, err := l.client.TicketRemaining(r.Context(), args.Plate)
	reply.Seconds = s
	return rpcError(err)
}

func (l *Ledger) PassExpiry(r *http.Request, args *PlateArgs, reply *SecondsReply) error {
	s, err := l.client.PassExpiry(r.Context(), args.Plate)
	reply.Seconds = s
	return rpcError(err)
}

func (l *Ledger) FineAge(r *http.Request, args *PlateArgs, reply *SecondsReply) error {
	s, err := l.client.FineAge(r.Context(), args.Plate)
	reply.Seconds = s
	return rpcError(err)
}

func (l *Ledger) IsFineOverdue(r *http.Request, args *PlateArgs, reply *BoolReply) error {
	ok, err := l.client.IsFineOverdue(r.Context(), args.Plate)
	reply.Value = ok
	return rpcError(err)
}

type FineQuoteArgs struct {
	HoursOverdue uint32 `json:"hours_overdue"`
}

func (l *Ledger) CalculateFineAmount(r *http.Request, args *FineQuoteArgs, reply *AmountReply) error {
	a, err := l.client.CalculateFineAmount(r.Context(), args.HoursOverdue)
	reply.Amount = a
	return rpcError(err)
}

type AddressArgs struct {
	Address string `json:"address"`
}

func (l *Ledger) IsAdmin(r *http.Request, args *AddressArgs, reply *BoolReply) error {
	ok, err := l.client.IsAdmin(r.Context(), args.Address)
	reply.Value = ok
	return rpcError(err)
}

func (l *Ledger) GetTotalOutstandingFines(r *http.Request, args *AdminArgs, reply *AmountReply) error {
	a, err := l.client.GetTotalOutstandingFines(r.Context(), args.Admin)
	reply.Amount = a
	return rpcError(err)
}

type ProposalReply struct {
	Found    bool                        `json:"found"`
	Proposal *parking.WithdrawalProposal `json:"proposal,omitempty"`
}

func (l *Ledger) GetWithdrawalProposal(r *http.Request, args *AdminArgs, reply *ProposalReply) error {
	p, ok, err := l.client.GetWithdrawalProposal(r.Context(), args.Admin)
	if ok {
		reply.Found, reply.Proposal = true, &p
	}
	return rpcError(err)
}

type HistoryArgs struct {
	Function   string `json:"function,omitempty"`
	Plate      string `json:"plate,omitempty"`
	FailedOnly bool   `json:"failed_only,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

type HistoryReply struct {
	Records []db.Record `json:"records"`
}

// History searches the invocation journal. It is empty when the daemon runs
// without one.
func (l *Ledger) History(_ *http.Request, args *HistoryArgs, reply *HistoryReply) error {
	if l.journal == nil {
		return nil
	}
	plate := args.Plate
	if plate != "" {
		if p, err := parking.NormalizePlate(plate); err == nil {
			plate = p
		}
	}
	recs, err := l.journal.Search(db.SearchParams{
		Function:   args.Function,
		Plate:      plate,
		FailedOnly: args.FailedOnly,
		Limit:      args.Limit,
	})
	reply.Records = recs
	return rpcError(err)
}
