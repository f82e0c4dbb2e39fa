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

package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dotandev/parkledger/internal/errors"
)

type Validator interface {
	Validate(cfg *Config) error
}

// StoreValidator checks the backend selection and the settings it needs.
type StoreValidator struct{}

func (v StoreValidator) Validate(cfg *Config) error {
	if !validStores[string(cfg.Store)] {
		return errors.WrapValidationError(fmt.Sprintf("store %q must be one of: memory, sqlite, mysql, redis+sqlite, redis+mysql", cfg.Store))
	}
	if cfg.UsesSQLite() && cfg.SQLitePath == "" {
		return errors.WrapValidationError("sqlite_path cannot be empty")
	}
	if cfg.UsesMySQL() && (cfg.MySQLHost == "" || cfg.MySQLDatabase == "") {
		return errors.WrapValidationError("mysql_host and mysql_database are required")
	}
	if cfg.UsesRedis() && cfg.RedisAddr == "" {
		return errors.WrapValidationError("redis_addr cannot be empty")
	}
	return nil
}

// NetworkValidator checks the network name and contract identity.
type NetworkValidator struct{}

func (v NetworkValidator) Validate(cfg *Config) error {
	if _, ok := PassphraseFor(cfg.Network); !ok && cfg.NetworkPassphrase == "" {
		return errors.WrapValidationError("network must be one of: public, testnet, futurenet, standalone")
	}
	if cfg.NetworkPassphrase == "" {
		return errors.WrapValidationError("network_passphrase cannot be empty")
	}
	if cfg.ContractID == "" {
		return errors.WrapValidationError("contract_id cannot be empty")
	}
	return nil
}

// LedgerValidator checks withdrawal and lifetime settings.
type LedgerValidator struct{}

func (v LedgerValidator) Validate(cfg *Config) error {
	if cfg.WithdrawalThreshold < 2 || cfg.WithdrawalThreshold > 3 {
		return errors.WrapValidationError("withdrawal_threshold must be 2 or 3, got " + strconv.Itoa(cfg.WithdrawalThreshold))
	}
	if cfg.GuardTTL == 0 {
		return errors.WrapValidationError("guard_ttl must be positive")
	}
	if cfg.TemporaryTTL == 0 || cfg.PersistentTTL == 0 || cfg.InstanceTTL == 0 {
		return errors.WrapValidationError("storage TTLs must be positive")
	}
	return nil
}

// ServerValidator checks the RPC listener settings.
type ServerValidator struct{}

func (v ServerValidator) Validate(cfg *Config) error {
	port, err := strconv.Atoi(cfg.RPCPort)
	if err != nil || port <= 0 || port > 65535 {
		return errors.WrapValidationError("rpc_port must be a port number")
	}
	return nil
}

// LogLevelValidator checks that the log level is a known value.
type LogLevelValidator struct{}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

func (v LogLevelValidator) Validate(cfg *Config) error {
	if cfg.LogLevel == "" {
		return nil
	}
	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return errors.WrapValidationError("log_level must be one of: debug, info, warn, error")
	}
	return nil
}

// DefaultValidators returns the standard set of validators.
func DefaultValidators() []Validator {
	return []Validator{
		StoreValidator{},
		NetworkValidator{},
		LedgerValidator{},
		ServerValidator{},
		LogLevelValidator{},
	}
}

// RunValidators executes each validator against the config, returning the
// first error encountered.
func RunValidators(cfg *Config, validators []Validator) error {
	for _, v := range validators {
		if err := v.Validate(cfg); err != nil {
			return err
		}
	}
	return nil
}
