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
	"github.com/dotandev/parkledger/internal/auth"
	"github.com/dotandev/parkledger/internal/errors"
	"github.com/dotandev/parkledger/internal/host"
	"github.com/dotandev/parkledger/internal/logger"
)

var proposalKey = recordKey{host.Temporary, keyProposal}

// ProposeWithdrawal replaces any pending proposal with a new one. The
// proposal lapses with the temporary tier TTL.
func (c *Contract) ProposeWithdrawal(env *host.Env, admin string, amt amount.Amount, recipient string) error {
	return mutate(env, func() error {
		if err := c.requireAdmin(env, admin, admin, amt.String(), recipient); err != nil {
			return err
		}
		if err := auth.ValidateAddress(recipient); err != nil {
			return err
		}
		if amt.Sign() <= 0 {
			return errors.ErrInsufficientPayment
		}
		rev, err := c.GetRevenue(env)
		if err != nil {
			return err
		}
		if rev.LessThan(amt) {
			return errors.ErrInsufficientRevenue
		}
		prop := WithdrawalProposal{
			Proposer:  admin,
			Amount:    amt,
			Recipient: recipient,
			Timestamp: env.Timestamp(),
		}
		if err := setTTL(env, proposalKey, prop, env.TTL().Temporary); err != nil {
			return err
		}
		env.Publish(topics("w_prop", host.Address(admin)), host.Map(
			host.Field("amount", amt.ScVal()),
			host.Field("recipient", host.Address(recipient)),
		))
		return nil
	})
}

// ApproveWithdrawal adds admin's approval. Once the proposer and approvers
// reach the threshold the revenue is withdrawn and paid out.
func (c *Contract) ApproveWithdrawal(env *host.Env, admin string) error {
	return mutate(env, func() error {
		if err := c.requireAdmin(env, admin, admin); err != nil {
			return err
		}
		return c.guarded(env, func() error {
			prop, ok, err := get[WithdrawalProposal](env, proposalKey)
			if err != nil {
				return err
			}
			if !ok {
				return errors.ErrNotParked
			}
			if prop.Proposer == admin {
				return errors.ErrNotAdmin
			}
			if prop.ApprovedBy(admin) {
				return errors.ErrAlreadyParked
			}
			prop.Approvals = append(prop.Approvals, admin)

			if prop.Signers() < c.threshold {
				if err := set(env, proposalKey, prop); err != nil {
					return err
				}
				env.Publish(topics("w_appr", host.Address(admin)), host.U32(uint32(prop.Signers())))
				return nil
			}

			if err := c.withdrawRevenue(env, prop.Amount); err != nil {
				return err
			}
			remove(env, proposalKey)
			env.Publish(topics("withdraw", host.Address(prop.Recipient)), prop.Amount.ScVal())
			logger.Component("parking").Info("Withdrawal executed",
				"amount", prop.Amount.String(), "recipient", prop.Recipient, "signers", prop.Signers())
			return c.payout.Transfer(env.Context(), prop.Recipient, prop.Amount)
		})
	})
}

// CancelWithdrawal drops the pending proposal. Only its proposer may.
func (c *Contract) CancelWithdrawal(env *host.Env, admin string) error {
	return mutate(env, func() error {
		if err := c.requireAdmin(env, admin, admin); err != nil {
			return err
		}
		prop, ok, err := get[WithdrawalProposal](env, proposalKey)
		if err != nil {
			return err
		}
		if !ok {
			return errors.ErrNotParked
		}
		if prop.Proposer != admin {
			return errors.ErrNotAdmin
		}
		remove(env, proposalKey)
		env.Publish(topics("w_cancel", host.Address(admin)), prop.Amount.ScVal())
		return nil
	})
}

func (c *Contract) GetWithdrawalProposal(env *host.Env, admin string) (WithdrawalProposal, bool, error) {
	ok, err := c.IsAdmin(env, admin)
	if err != nil {
		return WithdrawalProposal{}, false, err
	}
	if !ok {
		return WithdrawalProposal{}, false, errors.ErrNotAdmin
	}
	return get[WithdrawalProposal](env, proposalKey)
}
