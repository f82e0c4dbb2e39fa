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

// Package auth signs and verifies per-invocation authorization entries.
//
// An entry proves that the holder of a Stellar account key approved one
// specific call: the contract, the function, its arguments rendered as
// strings, a nonce and an expiration ledger timestamp. The signed payload is
// bound to the network passphrase so entries cannot be replayed across
// networks.
package auth

import (
	"crypto/sha256"
	"fmt"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"

	"github.com/dotandev/parkledger/internal/errors"
)

// Invocation is the call an address is asked to approve.
type Invocation struct {
	Contract   string
	Function   string
	Args       []string
	Nonce      uint64
	Expiration uint64
}

// Entry is a signed approval of one Invocation.
type Entry struct {
	Address    string `json:"address"`
	Nonce      uint64 `json:"nonce"`
	Expiration uint64 `json:"expiration"`
	Signature  []byte `json:"signature"`
}

// ValidateAddress checks that s is an ed25519 account strkey (G...).
func ValidateAddress(s string) error {
	if !strkey.IsValidEd25519PublicKey(s) {
		return errors.WrapValidationError(fmt.Sprintf("%q is not a valid account address", s))
	}
	return nil
}

func str(s string) xdr.ScVal {
	v := xdr.ScString(s)
	return xdr.ScVal{Type: xdr.ScValTypeScvString, Str: &v}
}

func u64(n uint64) xdr.ScVal {
	v := xdr.Uint64(n)
	return xdr.ScVal{Type: xdr.ScValTypeScvU64, U64: &v}
}

// Payload is the 32 byte digest an address signs.
func (inv Invocation) Payload(passphrase string) ([32]byte, error) {
	vec := xdr.ScVec{str(inv.Contract), str(inv.Function)}
	for _, a := range inv.Args {
		vec = append(vec, str(a))
	}
	vec = append(vec, u64(inv.Nonce), u64(inv.Expiration))
	pv := &vec
	val := xdr.ScVal{Type: xdr.ScValTypeScvVec, Vec: &pv}
	body, err := val.MarshalBinary()
	if err != nil {
		return [32]byte{}, fmt.Errorf("encode invocation: %w", err)
	}

	id := network.ID(passphrase)
	h := sha256.New()
	h.Write(id[:])
	h.Write(body)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out, nil
}

// Sign approves inv with kp. The nonce and expiration are taken from inv.
func Sign(kp *keypair.Full, passphrase string, inv Invocation) (Entry, error) {
	payload, err := inv.Payload(passphrase)
	if err != nil {
		return Entry{}, err
	}
	sig, err := kp.Sign(payload[:])
	if err != nil {
		return Entry{}, fmt.Errorf("sign invocation: %w", err)
	}
	return Entry{
		Address:    kp.Address(),
		Nonce:      inv.Nonce,
		Expiration: inv.Expiration,
		Signature:  sig,
	}, nil
}

// Verify checks that e is a valid signature by e.Address over inv, using the
// nonce and expiration carried by the entry.
func Verify(passphrase string, inv Invocation, e Entry) error {
	kp, err := keypair.ParseAddress(e.Address)
	if err != nil {
		return errors.WrapAuthFailed(e.Address, "malformed address")
	}
	inv.Nonce = e.Nonce
	inv.Expiration = e.Expiration
	payload, err := inv.Payload(passphrase)
	if err != nil {
		return errors.WrapAuthFailed(e.Address, err.Error())
	}
	if err := kp.Verify(payload[:], e.Signature); err != nil {
		return errors.WrapAuthFailed(e.Address, "bad signature")
	}
	return nil
}
