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
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dotandev/parkledger/internal/amount"
	"github.com/dotandev/parkledger/internal/auth"
	"github.com/dotandev/parkledger/internal/parking"
)

var (
	adminSeedFlag string
	initAdmin2    string
	initAdmin3    string
	initHourly    string
	initAnnual    string
	initSpots     uint32
	priceHourly   string
	priceAnnual   string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialise the ledger",
	Long: `Initialise the ledger in the configured store. The seed's address becomes the
first admin and signs the call; up to two more admins may be named.`,
	Example: `  parkledger init --store sqlite --hourly 100 --annual 5000 --spots 50 --admin2 GB...`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kp, err := adminSeed(adminSeedFlag)
		if err != nil {
			return err
		}
		hourly, err := amount.Parse(initHourly)
		if err != nil {
			return fmt.Errorf("invalid --hourly: %w", err)
		}
		annual, err := amount.Parse(initAnnual)
		if err != nil {
			return fmt.Errorf("invalid --annual: %w", err)
		}

		l, err := openLedger()
		if err != nil {
			return err
		}
		entry, err := l.signLocal(kp, parking.FnInitialize, parking.InitArgs(kp.Address(), initAdmin2, initAdmin3, hourly, annual, initSpots))
		if err != nil {
			return err
		}
		if err := l.client.Initialize(cmd.Context(), kp.Address(), initAdmin2, initAdmin3, hourly, annual, initSpots, entry); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s ledger initialised (hourly %s, annual %s, %d spots)\n",
			color.GreenString("✓"), hourly, annual, initSpots)
		return nil
	},
}

var priceCmd = &cobra.Command{
	Use:     "price",
	Short:   "Change the hourly or annual price",
	Example: `  parkledger price --hourly 150`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if priceHourly == "" && priceAnnual == "" {
			return fmt.Errorf("pass --hourly and/or --annual")
		}
		kp, err := adminSeed(adminSeedFlag)
		if err != nil {
			return err
		}
		l, err := openLedger()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		setters := []struct {
			raw string
			fn  string
			set func(price amount.Amount, e auth.Entry) error
		}{
			{priceHourly, parking.FnSetHourlyPrice, func(price amount.Amount, e auth.Entry) error {
				return l.client.SetHourlyPrice(ctx, kp.Address(), price, e)
			}},
			{priceAnnual, parking.FnSetAnnualPrice, func(price amount.Amount, e auth.Entry) error {
				return l.client.SetAnnualPrice(ctx, kp.Address(), price, e)
			}},
		}
		for _, p := range setters {
			if p.raw == "" {
				continue
			}
			price, err := amount.Parse(p.raw)
			if err != nil {
				return fmt.Errorf("invalid price %q: %w", p.raw, err)
			}
			entry, err := l.signLocal(kp, p.fn, []string{kp.Address(), price.String()})
			if err != nil {
				return err
			}
			if err := p.set(price, entry); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s\n", color.GreenString("✓"), p.fn, price)
		}
		return nil
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep <plate>...",
	Short: "Fine every listed plate whose ticket has expired",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kp, err := adminSeed(adminSeedFlag)
		if err != nil {
			return err
		}
		l, err := openLedger()
		if err != nil {
			return err
		}
		entry, err := l.signLocal(kp, parking.FnProcessExpiredTickets, parking.SweepArgs(kp.Address(), args))
		if err != nil {
			return err
		}
		fined, err := l.client.ProcessExpiredTickets(cmd.Context(), kp.Address(), args, entry)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(fined) == 0 {
			fmt.Fprintln(out, "No expired tickets.")
			return nil
		}
		fmt.Fprintf(out, "Fined %d plate(s): %s\n", len(fined), color.RedString(strings.Join(fined, ", ")))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{initCmd, priceCmd, sweepCmd} {
		c.Flags().StringVar(&adminSeedFlag, "seed", "", "Admin secret seed (default $PARKLEDGER_ADMIN_SEED)")
	}
	initCmd.Flags().StringVar(&initAdmin2, "admin2", "", "Second admin address")
	initCmd.Flags().StringVar(&initAdmin3, "admin3", "", "Third admin address")
	initCmd.Flags().StringVar(&initHourly, "hourly", "100", "Hourly price")
	initCmd.Flags().StringVar(&initAnnual, "annual", "5000", "Annual pass price")
	initCmd.Flags().Uint32Var(&initSpots, "spots", 100, "Total parking spots")
	priceCmd.Flags().StringVar(&priceHourly, "hourly", "", "New hourly price")
	priceCmd.Flags().StringVar(&priceAnnual, "annual", "", "New annual price")

	rootCmd.AddCommand(initCmd, priceCmd, sweepCmd)
}
