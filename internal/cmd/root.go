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

// Package cmd is the parkledger command line.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dotandev/parkledger/internal/config"
	"github.com/dotandev/parkledger/internal/logger"
	"github.com/dotandev/parkledger/internal/shutdown"
)

// Global flag variables
var (
	ConfigFlag    string
	StoreFlag     string
	TimestampFlag int64
	LogLevelFlag  string
)

// cfg is loaded once per command by the root pre-run hook.
var cfg *config.Config

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "parkledger",
	Short: "Parking ledger contract host",
	Long: `parkledger runs the parking ledger contract: hourly tickets, annual passes,
fines and multi-admin revenue withdrawal, on a local host with tiered storage.

Examples:
  parkledger keygen                              Create an admin keypair
  parkledger init --hourly 100 --annual 5000     Initialise the ledger
  parkledger serve --port 8080                   Serve JSON-RPC and REST
  parkledger status ABC-123                      Show a plate's state
  parkledger history --plate ABC123              Search the invocation journal`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadFrom(ConfigFlag)
		if err != nil {
			return err
		}
		if StoreFlag != "" {
			loaded.Store = config.StoreKind(StoreFlag)
		}
		if LogLevelFlag != "" {
			loaded.LogLevel = LogLevelFlag
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		logger.SetOutput(os.Stderr, loaded.LogJSON)
		logger.SetLevel(logger.ParseLevel(loaded.LogLevel))
		cfg = loaded
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. An interrupt cancels the command's context,
// runs the shutdown hooks and yields ErrInterrupted.
func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	return executeWithSignals(ctx, cancel, sigCh, shutdown.NewCoordinator(), func(ctx context.Context) error {
		return rootCmd.ExecuteContext(ctx)
	})
}

func init() {
	rootCmd.PersistentFlags().StringVar(&ConfigFlag, "config", "", "Config file (default: .parkledger.toml, ~/.parkledger.toml)")
	rootCmd.PersistentFlags().StringVar(&StoreFlag, "store", "", "Ledger store: memory, sqlite, mysql, redis+sqlite, redis+mysql")
	rootCmd.PersistentFlags().Int64Var(
		&TimestampFlag,
		"timestamp",
		0,
		"Pin the ledger clock to this Unix timestamp",
	)
	rootCmd.PersistentFlags().StringVar(&LogLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
}
