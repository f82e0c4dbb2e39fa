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
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/dotandev/parkledger/internal/errors"
)

type StoreKind string

const (
	StoreMemory      StoreKind = "memory"
	StoreSQLite      StoreKind = "sqlite"
	StoreMySQL       StoreKind = "mysql"
	StoreRedisSQLite StoreKind = "redis+sqlite"
	StoreRedisMySQL  StoreKind = "redis+mysql"
)

var validStores = map[string]bool{
	string(StoreMemory):      true,
	string(StoreSQLite):      true,
	string(StoreMySQL):       true,
	string(StoreRedisSQLite): true,
	string(StoreRedisMySQL):  true,
}

// Config represents the runtime configuration for the parking ledger
type Config struct {
	Store      StoreKind `json:"store"`
	SQLitePath string    `json:"sqlite_path"`

	MySQLUser     string `json:"mysql_user"`
	MySQLPassword string `json:"-"`
	MySQLHost     string `json:"mysql_host"`
	MySQLPort     string `json:"mysql_port"`
	MySQLDatabase string `json:"mysql_database"`

	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"-"`
	RedisDB       int    `json:"redis_db"`
	RedisPrefix   string `json:"redis_prefix"`

	// AMQPURL enables the event publisher when set.
	AMQPURL   string `json:"amqp_url,omitempty"`
	AMQPQueue string `json:"amqp_queue"`

	RPCPort   string `json:"rpc_port"`
	JWTSecret string `json:"-"`

	Network           string `json:"network"`
	NetworkPassphrase string `json:"network_passphrase"`
	ContractID        string `json:"contract_id"`

	WithdrawalThreshold int `json:"withdrawal_threshold"`

	// Lifetimes in seconds.
	GuardTTL      uint64 `json:"guard_ttl"`
	TicketGrace   uint64 `json:"ticket_grace"`
	TemporaryTTL  uint64 `json:"temporary_ttl"`
	PersistentTTL uint64 `json:"persistent_ttl"`
	InstanceTTL   uint64 `json:"instance_ttl"`

	JournalPath string `json:"journal_path"`
	LogLevel    string `json:"log_level"`
	LogJSON     bool   `json:"log_json"`
	Tracing     bool   `json:"tracing"`
	OTLPURL     string `json:"otlp_url"`
}

const day = 24 * 60 * 60

func dataDir() string {
	return filepath.Join(os.ExpandEnv("$HOME"), ".parkledger")
}

var defaultConfig = &Config{
	Store:               StoreMemory,
	SQLitePath:          filepath.Join(dataDir(), "ledger.db"),
	MySQLUser:           "root",
	MySQLHost:           "localhost",
	MySQLPort:           "3306",
	MySQLDatabase:       "parkledger",
	RedisAddr:           "localhost:6379",
	RedisPrefix:         "parkledger",
	AMQPQueue:           "parkledger.events",
	RPCPort:             "8080",
	Network:             NetworkStandalone,
	ContractID:          "CPARKLEDGER",
	WithdrawalThreshold: 2,
	GuardTTL:            100,
	TicketGrace:         day,
	TemporaryTTL:        day,
	PersistentTTL:       400 * day,
	InstanceTTL:         400 * day,
	JournalPath:         filepath.Join(dataDir(), "journal.db"),
	LogLevel:            "info",
	OTLPURL:             "localhost:4318",
}

// DefaultConfig returns a copy of the built-in defaults.
func DefaultConfig() *Config {
	c := *defaultConfig
	c.NetworkPassphrase, _ = PassphraseFor(c.Network)
	return &c
}

// Load reads .env, then PARKLEDGER_* variables, then the first config file
// found in the standard locations.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is Load with an explicit config file. An empty path searches the
// standard locations.
func LoadFrom(path string) (*Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	cfg := DefaultConfig()
	// Derived from Network once all overrides are applied.
	cfg.NetworkPassphrase = ""
	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}

	if path != "" {
		if err := cfg.loadTOML(path); err != nil {
			return nil, errors.WrapConfigError("failed to read config file "+path, err)
		}
	} else if err := cfg.loadFromFile(); err != nil {
		return nil, err
	}

	if cfg.NetworkPassphrase == "" {
		cfg.NetworkPassphrase, _ = PassphraseFor(cfg.Network)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFromEnv() error {
	c.Store = StoreKind(getEnv("PARKLEDGER_STORE", string(c.Store)))
	c.SQLitePath = getEnv("PARKLEDGER_SQLITE_PATH", c.SQLitePath)
	c.MySQLUser = getEnv("PARKLEDGER_MYSQL_USER", c.MySQLUser)
	c.MySQLPassword = getEnv("PARKLEDGER_MYSQL_PASSWORD", c.MySQLPassword)
	c.MySQLHost = getEnv("PARKLEDGER_MYSQL_HOST", c.MySQLHost)
	c.MySQLPort = getEnv("PARKLEDGER_MYSQL_PORT", c.MySQLPort)
	c.MySQLDatabase = getEnv("PARKLEDGER_MYSQL_DATABASE", c.MySQLDatabase)
	c.RedisAddr = getEnv("PARKLEDGER_REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("PARKLEDGER_REDIS_PASSWORD", c.RedisPassword)
	c.RedisPrefix = getEnv("PARKLEDGER_REDIS_PREFIX", c.RedisPrefix)
	c.AMQPURL = getEnv("PARKLEDGER_AMQP_URL", c.AMQPURL)
	c.AMQPQueue = getEnv("PARKLEDGER_AMQP_QUEUE", c.AMQPQueue)
	c.RPCPort = getEnv("PARKLEDGER_RPC_PORT", c.RPCPort)
	c.JWTSecret = getEnv("PARKLEDGER_JWT_SECRET", c.JWTSecret)
	c.Network = getEnv("PARKLEDGER_NETWORK", c.Network)
	c.NetworkPassphrase = getEnv("PARKLEDGER_NETWORK_PASSPHRASE", c.NetworkPassphrase)
	c.ContractID = getEnv("PARKLEDGER_CONTRACT_ID", c.ContractID)
	c.JournalPath = getEnv("PARKLEDGER_JOURNAL_PATH", c.JournalPath)
	c.LogLevel = getEnv("PARKLEDGER_LOG_LEVEL", c.LogLevel)
	c.OTLPURL = getEnv("PARKLEDGER_OTLP_URL", c.OTLPURL)
	c.LogJSON = parseBool(getEnv("PARKLEDGER_LOG_JSON", strconv.FormatBool(c.LogJSON)))
	c.Tracing = parseBool(getEnv("PARKLEDGER_TRACING", strconv.FormatBool(c.Tracing)))

	ints := []struct {
		env string
		dst *int
	}{
		{"PARKLEDGER_REDIS_DB", &c.RedisDB},
		{"PARKLEDGER_WITHDRAWAL_THRESHOLD", &c.WithdrawalThreshold},
	}
	for _, f := range ints {
		if v := os.Getenv(f.env); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return errors.WrapConfigError(f.env+" must be an integer", err)
			}
			*f.dst = n
		}
	}

	secs := []struct {
		env string
		dst *uint64
	}{
		{"PARKLEDGER_GUARD_TTL", &c.GuardTTL},
		{"PARKLEDGER_TICKET_GRACE", &c.TicketGrace},
		{"PARKLEDGER_TEMPORARY_TTL", &c.TemporaryTTL},
		{"PARKLEDGER_PERSISTENT_TTL", &c.PersistentTTL},
		{"PARKLEDGER_INSTANCE_TTL", &c.InstanceTTL},
	}
	for _, f := range secs {
		if v := os.Getenv(f.env); v != "" {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return errors.WrapConfigError(f.env+" must be a number of seconds", err)
			}
			*f.dst = n
		}
	}
	return nil
}

func (c *Config) loadFromFile() error {
	paths := []string{
		".parkledger.toml",
		filepath.Join(os.ExpandEnv("$HOME"), ".parkledger.toml"),
		"/etc/parkledger/config.toml",
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := c.loadTOML(path); err != nil {
			return errors.WrapConfigError("failed to parse "+path, err)
		}
		return nil
	}

	return nil
}

func (c *Config) loadTOML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return c.parseTOML(string(data))
}

func (c *Config) parseTOML(content string) error {
	for n, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)

		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "[") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), "\"'")

		var err error
		switch key {
		case "store":
			c.Store = StoreKind(value)
		case "sqlite_path":
			c.SQLitePath = value
		case "mysql_user":
			c.MySQLUser = value
		case "mysql_password":
			c.MySQLPassword = value
		case "mysql_host":
			c.MySQLHost = value
		case "mysql_port":
			c.MySQLPort = value
		case "mysql_database":
			c.MySQLDatabase = value
		case "redis_addr":
			c.RedisAddr = value
		case "redis_password":
			c.RedisPassword = value
		case "redis_db":
			c.RedisDB, err = strconv.Atoi(value)
		case "redis_prefix":
			c.RedisPrefix = value
		case "amqp_url":
			c.AMQPURL = value
		case "amqp_queue":
			c.AMQPQueue = value
		case "rpc_port":
			c.RPCPort = value
		case "jwt_secret":
			c.JWTSecret = value
		case "network":
			c.Network = value
		case "network_passphrase":
			c.NetworkPassphrase = value
		case "contract_id":
			c.ContractID = value
		case "withdrawal_threshold":
			c.WithdrawalThreshold, err = strconv.Atoi(value)
		case "guard_ttl":
			c.GuardTTL, err = strconv.ParseUint(value, 10, 64)
		case "ticket_grace":
			c.TicketGrace, err = strconv.ParseUint(value, 10, 64)
		case "temporary_ttl":
			c.TemporaryTTL, err = strconv.ParseUint(value, 10, 64)
		case "persistent_ttl":
			c.PersistentTTL, err = strconv.ParseUint(value, 10, 64)
		case "instance_ttl":
			c.InstanceTTL, err = strconv.ParseUint(value, 10, 64)
		case "journal_path":
			c.JournalPath = value
		case "log_level":
			c.LogLevel = value
		case "log_json":
			c.LogJSON = parseBool(value)
		case "tracing":
			c.Tracing = parseBool(value)
		case "otlp_url":
			c.OTLPURL = value
		}
		if err != nil {
			return fmt.Errorf("line %d: %s: %w", n+1, key, err)
		}
	}

	return nil
}

// Validate runs the default validator chain.
func (c *Config) Validate() error {
	return RunValidators(c, DefaultValidators())
}

func (c *Config) UsesSQLite() bool {
	return c.Store == StoreSQLite || c.Store == StoreRedisSQLite
}

func (c *Config) UsesMySQL() bool {
	return c.Store == StoreMySQL || c.Store == StoreRedisMySQL
}

func (c *Config) UsesRedis() bool {
	return c.Store == StoreRedisSQLite || c.Store == StoreRedisMySQL
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Store: %s, Contract: %s, Threshold: %d, RPCPort: %s, LogLevel: %s}",
		c.Store, c.ContractID, c.WithdrawalThreshold, c.RPCPort, c.LogLevel,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
