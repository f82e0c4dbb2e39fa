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

// Package amount implements the signed 128-bit monetary quantity used for
// prices, payments and revenue. Values are denominated in stroops.
package amount

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/stellar/go/xdr"

	"github.com/dotandev/parkledger/internal/errors"
)

// Amount is an i128 stored as its two 64-bit halves, the same layout as
// xdr.Int128Parts.
type Amount struct {
	Hi int64
	Lo uint64
}

var (
	Zero = Amount{}

	minI128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	maxI128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	two64   = new(big.Int).Lsh(big.NewInt(1), 64)
)

func FromInt64(v int64) Amount {
	if v < 0 {
		return Amount{Hi: -1, Lo: uint64(v)}
	}
	return Amount{Lo: uint64(v)}
}

// FromBig converts b, failing if it does not fit in 128 bits.
func FromBig(b *big.Int) (Amount, error) {
	if b.Cmp(minI128) < 0 || b.Cmp(maxI128) > 0 {
		return Amount{}, errors.WrapAmountOverflow(b.String())
	}
	// Two's complement: b = hi*2^64 + lo with lo in [0, 2^64).
	hi, lo := new(big.Int).DivMod(b, two64, new(big.Int))
	return Amount{Hi: hi.Int64(), Lo: lo.Uint64()}, nil
}

// Parse reads a base-10 integer.
func Parse(s string) (Amount, error) {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, errors.WrapValidationError(fmt.Sprintf("invalid amount %q", s))
	}
	return FromBig(b)
}

// MustParse is Parse for constants and tests.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

func FromXDR(p xdr.Int128Parts) Amount {
	return Amount{Hi: int64(p.Hi), Lo: uint64(p.Lo)}
}

func (a Amount) XDR() xdr.Int128Parts {
	return xdr.Int128Parts{Hi: xdr.Int64(a.Hi), Lo: xdr.Uint64(a.Lo)}
}

// ScVal wraps the amount as a contract value.
func (a Amount) ScVal() xdr.ScVal {
	parts := a.XDR()
	return xdr.ScVal{Type: xdr.ScValTypeScvI128, I128: &parts}
}

func (a Amount) Big() *big.Int {
	hi := new(big.Int).SetInt64(a.Hi)
	hi.Mul(hi, two64)
	return hi.Add(hi, new(big.Int).SetUint64(a.Lo))
}

func (a Amount) String() string {
	return a.Big().String()
}

func (a Amount) Sign() int {
	switch {
	case a.Hi < 0:
		return -1
	case a.Hi == 0 && a.Lo == 0:
		return 0
	default:
		return 1
	}
}

func (a Amount) IsZero() bool { return a.Hi == 0 && a.Lo == 0 }

func (a Amount) Cmp(b Amount) int {
	switch {
	case a.Hi < b.Hi:
		return -1
	case a.Hi > b.Hi:
		return 1
	case a.Lo < b.Lo:
		return -1
	case a.Lo > b.Lo:
		return 1
	}
	return 0
}

func (a Amount) LessThan(b Amount) bool { return a.Cmp(b) < 0 }

func (a Amount) Add(b Amount) (Amount, error) {
	return FromBig(new(big.Int).Add(a.Big(), b.Big()))
}

func (a Amount) Sub(b Amount) (Amount, error) {
	return FromBig(new(big.Int).Sub(a.Big(), b.Big()))
}

func (a Amount) Mul(b Amount) (Amount, error) {
	return FromBig(new(big.Int).Mul(a.Big(), b.Big()))
}

// MulUint multiplies by a count such as hours.
func (a Amount) MulUint(n uint64) (Amount, error) {
	return FromBig(new(big.Int).Mul(a.Big(), new(big.Int).SetUint64(n)))
}

// MarshalJSON encodes the amount as a decimal string; i128 does not survive a
// float64 round trip.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Bare integers are accepted from hand-written requests.
		var n json.Number
		if err2 := json.Unmarshal(data, &n); err2 != nil {
			return err
		}
		s = n.String()
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}
