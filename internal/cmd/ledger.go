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

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/stellar/go/keypair"

	"github.com/dotandev/parkledger/internal/amount"
	"github.com/dotandev/parkledger/internal/auth"
	"github.com/dotandev/parkledger/internal/events"
	"github.com/dotandev/parkledger/internal/host"
	"github.com/dotandev/parkledger/internal/logger"
	"github.com/dotandev/parkledger/internal/parking"
	"github.com/dotandev/parkledger/internal/store"
)

// authWindow is how long a locally signed authorization stays valid.
const authWindow = 300

type ledger struct {
	host   *host.Host
	client *parking.Client
	bus    *events.Bus
}

func ledgerClock() host.Clock {
	if TimestampFlag > 0 {
		return host.NewManualClock(uint64(TimestampFlag))
	}
	return host.SystemClock{}
}

// openLedger builds the host and contract from cfg. Resources are closed by
// the shutdown hooks.
func openLedger() (*ledger, error) {
	clock := ledgerClock()
	backend, err := store.Open(cfg, clock)
	if err != nil {
		return nil, err
	}

	bus := events.NewBus()
	bus.Subscribe(events.AllEvents, func(e host.Event) {
		logger.Component("events").Info("Contract event", "name", e.Name(), "function", e.Function, "ledger_ts", e.Timestamp)
	})
	sinks := []host.Sink{bus}

	if cfg.AMQPURL != "" {
		pub, err := events.DialPublisher(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			backend.Close()
			return nil, err
		}
		registerCloser("amqp-publisher", pub)
		sinks = append(sinks, pub)
	}

	h := host.New(backend,
		host.WithClock(clock),
		host.WithAuthorizer(host.NewSignatureAuthorizer(cfg.NetworkPassphrase)),
		host.WithContractID(cfg.ContractID),
		host.WithTTL(host.TTLConfig{
			Instance:   cfg.InstanceTTL,
			Persistent: cfg.PersistentTTL,
			Temporary:  cfg.TemporaryTTL,
		}),
		host.WithSinks(sinks...),
	)
	registerCloser("ledger-store", h)

	contract := parking.New(
		parking.WithThreshold(cfg.WithdrawalThreshold),
		parking.WithGuardTTL(cfg.GuardTTL),
		parking.WithTicketGrace(cfg.TicketGrace),
		parking.WithPayout(parking.PayoutFunc(logPayout)),
	)
	return &ledger{host: h, client: parking.NewClient(h, contract), bus: bus}, nil
}

// logPayout records withdrawals; moving funds off-ledger is left to the
// operator.
func logPayout(_ context.Context, recipient string, amt amount.Amount) error {
	logger.Component("payout").Info("Withdrawal executed", "recipient", recipient, "amount", amt.String())
	return nil
}

// adminSeed returns the seed from the flag or PARKLEDGER_ADMIN_SEED.
func adminSeed(flag string) (*keypair.Full, error) {
	seed := flag
	if seed == "" {
		seed = os.Getenv("PARKLEDGER_ADMIN_SEED")
	}
	if seed == "" {
		return nil, fmt.Errorf("admin seed required: pass --seed or set PARKLEDGER_ADMIN_SEED")
	}
	kp, err := keypair.ParseFull(seed)
	if err != nil {
		return nil, fmt.Errorf("invalid admin seed: %w", err)
	}
	return kp, nil
}

// signLocal authorizes fn with args for kp on this ledger's network.
func (l *ledger) signLocal(kp *keypair.Full, fn string, args []string) (auth.Entry, error) {
	return auth.Sign(kp, cfg.NetworkPassphrase, auth.Invocation{
		Contract:   cfg.ContractID,
		Function:   fn,
		Args:       args,
		Nonce:      uint64(time.Now().UnixNano()),
		Expiration: l.host.Clock().Now() + authWindow,
	})
}
