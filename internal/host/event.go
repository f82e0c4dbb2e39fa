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

package host

import (
	"context"

	"github.com/stellar/go/xdr"
)

// Event is a contract event. Topics and Data are contract values so sinks can
// forward them as XDR.
type Event struct {
	Contract  string
	Function  string
	Timestamp uint64
	Topics    []xdr.ScVal
	Data      xdr.ScVal
}

// Name returns the first topic when it is a symbol.
func (e Event) Name() string {
	if len(e.Topics) == 0 {
		return ""
	}
	if t := e.Topics[0]; t.Type == xdr.ScValTypeScvSymbol && t.Sym != nil {
		return string(*t.Sym)
	}
	return ""
}

// Sink receives the events of a committed invocation, or of a checkpoint.
type Sink interface {
	Deliver(ctx context.Context, events []Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, events []Event) error

func (f SinkFunc) Deliver(ctx context.Context, events []Event) error {
	return f(ctx, events)
}

func Symbol(s string) xdr.ScVal {
	sym := xdr.ScSymbol(s)
	return xdr.ScVal{Type: xdr.ScValTypeScvSymbol, Sym: &sym}
}

func String(s string) xdr.ScVal {
	v := xdr.ScString(s)
	return xdr.ScVal{Type: xdr.ScValTypeScvString, Str: &v}
}

func U32(n uint32) xdr.ScVal {
	v := xdr.Uint32(n)
	return xdr.ScVal{Type: xdr.ScValTypeScvU32, U32: &v}
}

func U64(n uint64) xdr.ScVal {
	v := xdr.Uint64(n)
	return xdr.ScVal{Type: xdr.ScValTypeScvU64, U64: &v}
}

func Bool(b bool) xdr.ScVal {
	return xdr.ScVal{Type: xdr.ScValTypeScvBool, B: &b}
}

// Address encodes a G... account as an address value, falling back to a
// string for anything that is not an account strkey.
func Address(addr string) xdr.ScVal {
	aid, err := xdr.AddressToAccountId(addr)
	if err != nil {
		return String(addr)
	}
	a := xdr.ScAddress{Type: xdr.ScAddressTypeScAddressTypeAccount, AccountId: &aid}
	return xdr.ScVal{Type: xdr.ScValTypeScvAddress, Address: &a}
}

// Field is one named member of a Map value.
func Field(name string, v xdr.ScVal) xdr.ScMapEntry {
	return xdr.ScMapEntry{Key: Symbol(name), Val: v}
}

func Map(fields ...xdr.ScMapEntry) xdr.ScVal {
	m := xdr.ScMap(fields)
	pm := &m
	return xdr.ScVal{Type: xdr.ScValTypeScvMap, Map: &pm}
}
