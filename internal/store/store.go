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

// Package store opens the ledger backend selected by configuration.
package store

import (
	"fmt"

	"github.com/dotandev/parkledger/internal/config"
	"github.com/dotandev/parkledger/internal/host"
	"github.com/dotandev/parkledger/internal/logger"
	"github.com/dotandev/parkledger/internal/store/redisstore"
	"github.com/dotandev/parkledger/internal/store/sqlstore"
	"github.com/dotandev/parkledger/internal/store/tiered"
)

// Open builds the backend for cfg.Store. clock converts ledger expiry times
// into Redis TTLs.
func Open(cfg *config.Config, clock host.Clock) (host.Backend, error) {
	log := logger.Component("store")

	var durable host.Backend
	var err error
	switch {
	case cfg.Store == config.StoreMemory:
		log.Info("Using in-memory ledger store")
		return host.NewMemoryBackend(), nil
	case cfg.UsesSQLite():
		durable, err = sqlstore.OpenSQLite(cfg.SQLitePath)
	case cfg.UsesMySQL():
		durable, err = sqlstore.OpenMySQL(cfg.MySQLUser, cfg.MySQLPassword, cfg.MySQLHost, cfg.MySQLPort, cfg.MySQLDatabase)
	default:
		return nil, fmt.Errorf("unsupported store %q", cfg.Store)
	}
	if err != nil {
		return nil, err
	}
	log.Info("Opened ledger store", "store", cfg.Store)
	if !cfg.UsesRedis() {
		return durable, nil
	}

	client, err := redisstore.Dial(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		durable.Close()
		return nil, err
	}
	log.Info("Routing temporary tier to redis", "addr", cfg.RedisAddr, "prefix", cfg.RedisPrefix)
	return tiered.New(redisstore.New(client, cfg.RedisPrefix, clock), durable), nil
}
