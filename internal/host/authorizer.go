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
	"strconv"
	"sync"

	"github.com/dotandev/parkledger/internal/auth"
	"github.com/dotandev/parkledger/internal/errors"
)

// Authorizer decides whether address approved inv. It runs inside the
// invocation and may use env's storage.
type Authorizer interface {
	Authorize(env *Env, address string, inv auth.Invocation) error
}

// SignatureAuthorizer requires a signed auth.Entry for the address in the
// call. Each nonce is accepted once while the entry is unexpired.
type SignatureAuthorizer struct {
	Passphrase string
}

func NewSignatureAuthorizer(passphrase string) *SignatureAuthorizer {
	return &SignatureAuthorizer{Passphrase: passphrase}
}

func nonceKey(address string, nonce uint64) string {
	return "nonce:" + address + ":" + strconv.FormatUint(nonce, 10)
}

func (a *SignatureAuthorizer) Authorize(env *Env, address string, inv auth.Invocation) error {
	entry, ok := env.authEntry(address)
	if !ok {
		return errors.WrapAuthFailed(address, "no authorization entry for "+inv.Function)
	}
	now := env.Timestamp()
	if entry.Expiration < now {
		return errors.WrapAuthFailed(address, "authorization expired")
	}

	key := nonceKey(address, entry.Nonce)
	used, err := env.Storage().Has(Temporary, key)
	if err != nil {
		return err
	}
	if used {
		return errors.WrapAuthFailed(address, "nonce already used")
	}

	if err := auth.Verify(a.Passphrase, inv, entry); err != nil {
		return err
	}

	env.Storage().PutTTL(Temporary, key, []byte{1}, entry.Expiration-now+1)
	return nil
}

// AuthCall records one authorization request seen by MockAllAuths.
type AuthCall struct {
	Address  string
	Function string
	Args     []string
}

// MockAllAuths approves every request and records it.
type MockAllAuths struct {
	mu    sync.Mutex
	calls []AuthCall
}

func NewMockAllAuths() *MockAllAuths {
	return &MockAllAuths{}
}

func (m *MockAllAuths) Authorize(_ *Env, address string, inv auth.Invocation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, AuthCall{Address: address, Function: inv.Function, Args: inv.Args})
	return nil
}

func (m *MockAllAuths) Calls() []AuthCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]AuthCall(nil), m.calls...)
}
