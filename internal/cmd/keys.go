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

package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stellar/go/keypair"

	"github.com/dotandev/parkledger/internal/auth"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an admin keypair",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kp, err := keypair.Random()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", color.New(color.Bold).Sprint("Address:"), kp.Address())
		fmt.Fprintf(out, "%s %s\n", color.New(color.Bold).Sprint("Seed:   "), color.YellowString(kp.Seed()))
		fmt.Fprintln(out, color.New(color.Faint).Sprint("Keep the seed secret. Export it as PARKLEDGER_ADMIN_SEED to use admin commands."))
		return nil
	},
}

var (
	signSeed     string
	signFunction string
	signNonce    uint64
	signTTL      uint64
)

var signCmd = &cobra.Command{
	Use:   "sign [args...]",
	Short: "Sign an authorization entry for an admin call",
	Long: `Sign an invocation of --function with the given arguments and print the
authorization entry as JSON, ready for the "auth" field of an RPC request.

Arguments must be rendered exactly as the contract signs them: addresses as
strkeys, amounts as decimal strings, plate lists joined by commas.`,
	Example: `  parkledger sign --function set_hourly_price GABC... 150
  parkledger sign --function approve_withdrawal --nonce 7 GABC...`,
	RunE: func(cmd *cobra.Command, args []string) error {
		kp, err := adminSeed(signSeed)
		if err != nil {
			return err
		}
		if signFunction == "" {
			return fmt.Errorf("--function is required")
		}
		clock := ledgerClock()
		entry, err := auth.Sign(kp, cfg.NetworkPassphrase, auth.Invocation{
			Contract:   cfg.ContractID,
			Function:   strings.TrimSpace(signFunction),
			Args:       args,
			Nonce:      signNonce,
			Expiration: clock.Now() + signTTL,
		})
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entry)
	},
}

func init() {
	signCmd.Flags().StringVar(&signSeed, "seed", "", "Admin secret seed (default $PARKLEDGER_ADMIN_SEED)")
	signCmd.Flags().StringVar(&signFunction, "function", "", "Entry point to authorize, e.g. approve_withdrawal")
	signCmd.Flags().Uint64Var(&signNonce, "nonce", 1, "Nonce; each is accepted once per address")
	signCmd.Flags().Uint64Var(&signTTL, "ttl", authWindow, "Seconds until the entry expires")

	rootCmd.AddCommand(keygenCmd, signCmd)
}
