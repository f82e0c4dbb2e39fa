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
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotandev/parkledger/internal/amount"
	perrors "github.com/dotandev/parkledger/internal/errors"
	"github.com/dotandev/parkledger/internal/host"
)

// TestRandomOperations drives random operations over a few plates and checks
// after each step that no plate holds more than one of ticket, valid pass
// and fine, and that revenue equals the payments accepted.
func TestRandomOperations(t *testing.T) {
	f := setup(t)
	rng := rand.New(rand.NewPCG(7, 11))
	plates := []string{"CAR1", "CAR2", "CAR3"}
	accepted := amount.Zero

	credit := func(err error, paid amount.Amount) {
		if err != nil {
			_, _, isContract := perrors.CodeOf(err)
			require.True(t, isContract, "unexpected host error: %v", err)
			return
		}
		var addErr error
		accepted, addErr = accepted.Add(paid)
		require.NoError(t, addErr)
	}

	for step := 0; step < 400; step++ {
		plate := plates[rng.IntN(len(plates))]
		pay := amt(rng.Int64N(6000))
		switch rng.IntN(8) {
		case 0:
			credit(f.client.PurchaseHourlyTicket(f.ctx, plate, uint32(rng.IntN(26)), pay), pay)
		case 1:
			credit(f.client.ExitHourlyParking(f.ctx, plate), amount.Zero)
		case 2:
			credit(f.client.PurchaseAnnualPass(f.ctx, plate, pay), pay)
		case 3:
			credit(f.client.RenewAnnualPass(f.ctx, plate, pay), pay)
		case 4:
			credit(f.client.PayFine(f.ctx, plate, pay), pay)
		case 5:
			credit(f.client.ExtendParking(f.ctx, plate, uint32(rng.IntN(3)), pay), pay)
		case 6:
			_, err := f.client.ProcessExpiredTickets(f.ctx, f.a, plates)
			credit(err, amount.Zero)
		case 7:
			f.clock.Advance(uint64(rng.IntN(5 * 24 * SecondsPerHour)))
		}

		for _, p := range plates {
			f.inspect(t, func(env *host.Env) {
				ticket, err := hasTicket(env, p)
				require.NoError(t, err)
				pass, err := passValid(env, p)
				require.NoError(t, err)
				fine, err := has(env, fineKey(p))
				require.NoError(t, err)

				held := 0
				for _, b := range []bool{ticket, pass, fine} {
					if b {
						held++
					}
				}
				assert.LessOrEqual(t, held, 1, "step %d plate %s: ticket=%v pass=%v fine=%v", step, p, ticket, pass, fine)
			})
		}
		require.Equal(t, accepted, f.revenue(t), "step %d", step)
	}
}
