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

// Package parking implements the parking ledger contract: hourly tickets,
// annual passes, fines, revenue and the multi-admin withdrawal protocol.
//
// Every exported method runs inside a host invocation and takes its Env.
// Mutating methods hold the reentrancy guard for their whole body.
//
// Events
//
//	init      ledger initialised
//	ticket    hourly ticket purchased or extended
//	exit      vehicle left within its paid window
//	fine      fine issued on an expired exit or by the sweep
//	fine_paid fine settled
//	pass      annual pass purchased
//	renew     annual pass renewed
//	price     hourly or annual price changed
//	w_prop    withdrawal proposed
//	w_appr    withdrawal approved, threshold not yet reached
//	withdraw  withdrawal executed
//	w_cancel  withdrawal cancelled
//	penalty   overdue penalty applied
package parking

import (
	"context"

	"github.com/hashicorp/go-version"

	"github.com/dotandev/parkledger/internal/amount"
	"github.com/dotandev/parkledger/internal/errors"
	"github.com/dotandev/parkledger/internal/host"
)

const (
	// LayoutVersion is written by Initialize.
	LayoutVersion = "1.0.0"

	DefaultThreshold   = 2
	DefaultGuardTTL    = 100
	DefaultTicketGrace = 24 * SecondsPerHour
)

var supportedLayouts = version.MustConstraints(version.NewConstraint(">= 1.0.0, < 2.0.0"))

// Payout moves withdrawn revenue to its recipient. It runs inside the
// approving invocation; ctx carries that invocation's Env.
type Payout interface {
	Transfer(ctx context.Context, recipient string, amt amount.Amount) error
}

// PayoutFunc adapts a function to Payout.
type PayoutFunc func(ctx context.Context, recipient string, amt amount.Amount) error

func (f PayoutFunc) Transfer(ctx context.Context, recipient string, amt amount.Amount) error {
	return f(ctx, recipient, amt)
}

type noPayout struct{}

func (noPayout) Transfer(context.Context, string, amount.Amount) error { return nil }

// Contract holds the contract's tunables. All state lives in host storage.
type Contract struct {
	threshold   int
	guardTTL    uint64
	ticketGrace uint64
	payout      Payout
}

type Option func(*Contract)

// WithThreshold sets how many admins, proposer included, must sign a
// withdrawal.
func WithThreshold(n int) Option {
	return func(c *Contract) { c.threshold = n }
}

func WithGuardTTL(ttl uint64) Option {
	return func(c *Contract) { c.guardTTL = ttl }
}

// WithTicketGrace sets how long an expired ticket stays stored past its paid
// window, so an exit or sweep can still find it.
func WithTicketGrace(seconds uint64) Option {
	return func(c *Contract) { c.ticketGrace = seconds }
}

func WithPayout(p Payout) Option {
	return func(c *Contract) { c.payout = p }
}

func New(opts ...Option) *Contract {
	c := &Contract{
		threshold:   DefaultThreshold,
		guardTTL:    DefaultGuardTTL,
		ticketGrace: DefaultTicketGrace,
		payout:      noPayout{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Contract) Threshold() int { return c.threshold }

// requireInitialized fails NotInitialized before Initialize has run and
// rejects storage written by an unsupported layout.
func requireInitialized(env *host.Env) error {
	ok, err := has(env, recordKey{host.Instance, keyInitialized})
	if err != nil {
		return err
	}
	if !ok {
		return errors.ErrNotInitialized
	}
	return checkLayout(env)
}

func checkLayout(env *host.Env) error {
	stored, err := mustGet[string](env, recordKey{host.Instance, keyLayout})
	if err != nil {
		return err
	}
	v, err := version.NewVersion(stored)
	if err != nil || !supportedLayouts.Check(v) {
		return errors.WrapLayoutMismatch(stored, supportedLayouts.String())
	}
	return nil
}

// mutate runs fn for an initialised contract and keeps the instance alive on
// success.
func mutate(env *host.Env, fn func() error) error {
	if err := requireInitialized(env); err != nil {
		return err
	}
	if err := fn(); err != nil {
		return err
	}
	return bumpInstance(env)
}
