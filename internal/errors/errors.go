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
)

// ContractError is a failure reported by the parking contract itself. The
// numeric code is stable and travels over the wire.
type ContractError struct {
	Code uint32
	Name string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("contract error #%d (%s)", e.Code, e.Name)
}

// Contract error codes. Values match the deployed contract's error enum.
var (
	ErrNotAdmin            = &ContractError{Code: 1, Name: "NotAdmin"}
	ErrAlreadyParked       = &ContractError{Code: 2, Name: "AlreadyParked"}
	ErrNotParked           = &ContractError{Code: 3, Name: "NotParked"}
	ErrTicketExpired       = &ContractError{Code: 4, Name: "TicketExpired"}
	ErrInsufficientPayment = &ContractError{Code: 5, Name: "InsufficientPayment"}
	ErrInvalidHours        = &ContractError{Code: 6, Name: "InvalidHours"}
	ErrPlateTooLong        = &ContractError{Code: 7, Name: "PlateTooLong"}
	ErrReentrancyDetected  = &ContractError{Code: 8, Name: "ReentrancyDetected"}
	ErrMultiAuthRequired   = &ContractError{Code: 9, Name: "MultiAuthRequired"}
	ErrNotInitialized      = &ContractError{Code: 10, Name: "NotInitialized"}
	ErrAlreadyInitialized  = &ContractError{Code: 11, Name: "AlreadyInitialized"}
	ErrInvalidAdmin        = &ContractError{Code: 12, Name: "InvalidAdmin"}
	ErrInsufficientRevenue = &ContractError{Code: 13, Name: "InsufficientRevenue"}
	ErrFinePaymentRequired = &ContractError{Code: 14, Name: "FinePaymentRequired"}
)

var contractErrors = []*ContractError{
	ErrNotAdmin, ErrAlreadyParked, ErrNotParked, ErrTicketExpired,
	ErrInsufficientPayment, ErrInvalidHours, ErrPlateTooLong, ErrReentrancyDetected,
	ErrMultiAuthRequired, ErrNotInitialized, ErrAlreadyInitialized, ErrInvalidAdmin,
	ErrInsufficientRevenue, ErrFinePaymentRequired,
}

// Sentinel errors for comparison with errors.Is
var (
	ErrNotFound        = errors.New("entry not found")
	ErrAuthFailed      = errors.New("authorization failed")
	ErrAmountOverflow  = errors.New("amount overflows i128")
	ErrLayoutMismatch  = errors.New("unsupported storage layout")
	ErrHostPanic       = errors.New("host invocation panicked")
	ErrConfig          = errors.New("configuration error")
	ErrValidation      = errors.New("validation error")
	ErrBackend         = errors.New("storage backend failure")
	ErrUnmarshalFailed = errors.New("failed to decode stored value")
)

// ContractErrorByCode returns the contract error with the given code.
func ContractErrorByCode(code uint32) (*ContractError, bool) {
	for _, e := range contractErrors {
		if e.Code == code {
			return e, true
		}
	}
	return nil, false
}

// CodeOf extracts the contract error code from err. Host level failures
// report ok == false.
func CodeOf(err error) (code uint32, name string, ok bool) {
	var ce *ContractError
	if errors.As(err, &ce) {
		return ce.Code, ce.Name, true
	}
	return 0, "", false
}

// Wrap functions for consistent error wrapping
func WrapNotFound(key string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, key)
}

func WrapAuthFailed(address, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrAuthFailed, address, reason)
}

func WrapAmountOverflow(op string) error {
	return fmt.Errorf("%w: %s", ErrAmountOverflow, op)
}

func WrapLayoutMismatch(stored, supported string) error {
	return fmt.Errorf("%w: stored %s, supported %s", ErrLayoutMismatch, stored, supported)
}

func WrapHostPanic(function string, recovered any) error {
	return fmt.Errorf("%w: %s: %v", ErrHostPanic, function, recovered)
}

func WrapConfigError(msg string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrConfig, msg)
	}
	return fmt.Errorf("%w: %s: %w", ErrConfig, msg, err)
}

func WrapValidationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

func WrapBackend(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrBackend, op, err)
}

func WrapUnmarshalFailed(key string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnmarshalFailed, key, err)
}

// Is reports whether err matches target, as errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
