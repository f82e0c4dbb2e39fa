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

package auth

import (
	"errors"
	"testing"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/dotandev/parkledger/internal/errors"
)

func testInvocation() Invocation {
	return Invocation{
		Contract:   "CPARKLEDGER",
		Function:   "set_hourly_price",
		Args:       []string{"GADMIN", "150"},
		Nonce:      7,
		Expiration: 1_700_000_600,
	}
}

func TestSignAndVerify(t *testing.T) {
	kp := keypair.MustRandom()
	inv := testInvocation()

	entry, err := Sign(kp, network.TestNetworkPassphrase, inv)
	require.NoError(t, err)
	assert.Equal(t, kp.Address(), entry.Address)
	assert.Equal(t, uint64(7), entry.Nonce)
	assert.Len(t, entry.Signature, 64)

	require.NoError(t, Verify(network.TestNetworkPassphrase, inv, entry))
}

func TestVerifyRejectsTampering(t *testing.T) {
	kp := keypair.MustRandom()
	inv := testInvocation()
	entry, err := Sign(kp, network.TestNetworkPassphrase, inv)
	require.NoError(t, err)

	t.Run("different argument", func(t *testing.T) {
		other := inv
		other.Args = []string{"GADMIN", "1"}
		err := Verify(network.TestNetworkPassphrase, other, entry)
		assert.True(t, errors.Is(err, perrors.ErrAuthFailed))
	})

	t.Run("different function", func(t *testing.T) {
		other := inv
		other.Function = "set_annual_price"
		assert.Error(t, Verify(network.TestNetworkPassphrase, other, entry))
	})

	t.Run("different network", func(t *testing.T) {
		assert.Error(t, Verify(network.PublicNetworkPassphrase, inv, entry))
	})

	t.Run("replaced nonce", func(t *testing.T) {
		forged := entry
		forged.Nonce = 8
		assert.Error(t, Verify(network.TestNetworkPassphrase, inv, forged))
	})

	t.Run("wrong signer", func(t *testing.T) {
		forged := entry
		forged.Address = keypair.MustRandom().Address()
		assert.Error(t, Verify(network.TestNetworkPassphrase, inv, forged))
	})

	t.Run("malformed address", func(t *testing.T) {
		forged := entry
		forged.Address = "not-an-address"
		err := Verify(network.TestNetworkPassphrase, inv, forged)
		assert.True(t, errors.Is(err, perrors.ErrAuthFailed))
	})
}

func TestPayloadIsDeterministic(t *testing.T) {
	a, err := testInvocation().Payload(network.TestNetworkPassphrase)
	require.NoError(t, err)
	b, err := testInvocation().Payload(network.TestNetworkPassphrase)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// Argument boundaries are part of the payload.
	split := testInvocation()
	split.Args = []string{"GADMIN1", "50"}
	c, err := split.Payload(network.TestNetworkPassphrase)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestValidateAddress(t *testing.T) {
	require.NoError(t, ValidateAddress(keypair.MustRandom().Address()))

	seed := keypair.MustRandom().Seed()
	for _, bad := range []string{"", "GABC", seed, "CPARKLEDGER"} {
		err := ValidateAddress(bad)
		assert.True(t, errors.Is(err, perrors.ErrValidation), bad)
	}
}
