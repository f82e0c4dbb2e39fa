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

package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContractErrorCodesAreUnique(t *testing.T) {
	seen := map[uint32]string{}
	for _, e := range contractErrors {
		prev, dup := seen[e.Code]
		assert.False(t, dup, "code %d shared by %s and %s", e.Code, prev, e.Name)
		seen[e.Code] = e.Name
	}
	assert.Len(t, seen, 14)
}

func TestContractErrorLookup(t *testing.T) {
	e, ok := ContractErrorByCode(4)
	assert.True(t, ok)
	assert.Same(t, ErrTicketExpired, e)

	_, ok = ContractErrorByCode(99)
	assert.False(t, ok)
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("exit_hourly_parking: %w", ErrTicketExpired)
	code, name, ok := CodeOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, uint32(4), code)
	assert.Equal(t, "TicketExpired", name)
	assert.True(t, errors.Is(wrapped, ErrTicketExpired))

	_, _, ok = CodeOf(WrapAuthFailed("GABC", "missing signature"))
	assert.False(t, ok)
}

func TestErrorWrapping(t *testing.T) {
	baseErr := fmt.Errorf("base error")

	wrappedErr := WrapBackend("load", baseErr)
	assert.True(t, errors.Is(wrappedErr, ErrBackend))
	assert.True(t, errors.Is(wrappedErr, baseErr))

	wrappedErr = WrapConfigError("bad port", baseErr)
	assert.True(t, errors.Is(wrappedErr, ErrConfig))
	assert.True(t, errors.Is(wrappedErr, baseErr))

	wrappedErr = WrapConfigError("bad port", nil)
	assert.True(t, errors.Is(wrappedErr, ErrConfig))
	assert.Contains(t, wrappedErr.Error(), "bad port")

	wrappedErr = WrapUnmarshalFailed("ticket:ABC", baseErr)
	assert.True(t, errors.Is(wrappedErr, ErrUnmarshalFailed))

	assert.True(t, errors.Is(WrapNotFound("config"), ErrNotFound))
	assert.True(t, errors.Is(WrapAmountOverflow("add"), ErrAmountOverflow))
	assert.True(t, errors.Is(WrapLayoutMismatch("2.0.0", "~> 1.0"), ErrLayoutMismatch))
	assert.True(t, errors.Is(WrapHostPanic("pay_fine", "boom"), ErrHostPanic))
	assert.True(t, errors.Is(WrapValidationError("port"), ErrValidation))
}

func TestContractErrorMessage(t *testing.T) {
	assert.Equal(t, "contract error #8 (ReentrancyDetected)", ErrReentrancyDetected.Error())
}
