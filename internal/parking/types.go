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
	"strings"

	"github.com/dotandev/parkledger/internal/amount"
	"github.com/dotandev/parkledger/internal/errors"
)

const (
	SecondsPerHour     = 3600
	AnnualPassDuration = 365 * 24 * SecondsPerHour
	// FineOverdueAge is how long a fine may stay unpaid before the overdue
	// penalty can be applied.
	FineOverdueAge = 30 * 24 * SecondsPerHour

	MinHours       = 1
	MaxHours       = 24
	MaxPlateLength = 32
)

// ParkingTicket is one paid hourly session.
type ParkingTicket struct {
	Plate      string        `json:"plate"`
	EntryTime  uint64        `json:"entry_time"`
	HoursPaid  uint32        `json:"hours_paid"`
	AmountPaid amount.Amount `json:"amount_paid"`
	HasExited  bool          `json:"has_exited"`
}

// ExpiresAt is the last second covered by the ticket.
func (t ParkingTicket) ExpiresAt() uint64 {
	return t.EntryTime + uint64(t.HoursPaid)*SecondsPerHour
}

func (t ParkingTicket) Expired(now uint64) bool {
	return now > t.ExpiresAt()
}

// Remaining returns the paid seconds left at now.
func (t ParkingTicket) Remaining(now uint64) uint64 {
	if t.Expired(now) {
		return 0
	}
	return t.ExpiresAt() - now
}

type AnnualPass struct {
	Plate        string        `json:"plate"`
	PurchaseTime uint64        `json:"purchase_time"`
	AmountPaid   amount.Amount `json:"amount_paid"`
}

func (p AnnualPass) ValidUntil() uint64 {
	return p.PurchaseTime + AnnualPassDuration
}

func (p AnnualPass) Valid(now uint64) bool {
	return now < p.ValidUntil()
}

// FineReason records how a fine came about.
type FineReason string

const (
	FineExpired FineReason = "expired"
	FineSwept   FineReason = "swept"
	FineOverdue FineReason = "overdue"
)

type FineRecord struct {
	Plate      string        `json:"plate"`
	IssueTime  uint64        `json:"issue_time"`
	FineAmount amount.Amount `json:"fine_amount"`
	IsPaid     bool          `json:"is_paid"`
	Reason     FineReason    `json:"reason"`
	// Penalized is set once the overdue penalty has doubled the amount.
	Penalized bool `json:"penalized,omitempty"`
}

// Age is the number of seconds since the fine was issued, zero if the clock
// reads earlier than the issue time.
func (f FineRecord) Age(now uint64) uint64 {
	if now < f.IssueTime {
		return 0
	}
	return now - f.IssueTime
}

func (f FineRecord) Overdue(now uint64) bool {
	return f.Age(now) > FineOverdueAge
}

type ParkingConfig struct {
	HourlyPrice  amount.Amount `json:"hourly_price"`
	AnnualPrice  amount.Amount `json:"annual_price"`
	TotalSpots   uint32        `json:"total_spots"`
	TotalRevenue amount.Amount `json:"total_revenue"`
}

// WithdrawalProposal is the pending revenue withdrawal. Approvals never
// include the proposer.
type WithdrawalProposal struct {
	Proposer  string        `json:"proposer"`
	Amount    amount.Amount `json:"amount"`
	Recipient string        `json:"recipient"`
	Timestamp uint64        `json:"timestamp"`
	Approvals []string      `json:"approvals"`
}

// Signers counts the proposer and every approver.
func (p WithdrawalProposal) Signers() int {
	return 1 + len(p.Approvals)
}

func (p WithdrawalProposal) ApprovedBy(addr string) bool {
	for _, a := range p.Approvals {
		if a == addr {
			return true
		}
	}
	return false
}

// Status is the state a plate is in.
type Status string

const (
	StatusFree   Status = "free"
	StatusHourly Status = "hourly"
	StatusAnnual Status = "annual"
	StatusFined  Status = "fined"
)

// NormalizePlate strips spaces and dashes, upper-cases the rest and checks
// that the result is a short symbol of [A-Z0-9_].
func NormalizePlate(plate string) (string, error) {
	var b strings.Builder
	for _, r := range strings.ToUpper(plate) {
		switch {
		case r == ' ' || r == '-':
			continue
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			return "", errors.ErrPlateTooLong
		}
	}
	out := b.String()
	if out == "" || len(out) > MaxPlateLength {
		return "", errors.ErrPlateTooLong
	}
	return out, nil
}
