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
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dotandev/parkledger/internal/db"
	"github.com/dotandev/parkledger/internal/logger"
	"github.com/dotandev/parkledger/internal/parking"
)

var (
	historyFunction string
	historyPlate    string
	historyFailed   bool
	historyError    string
	historyLimit    int
	historyPrune    time.Duration
	historyDryRun   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Search the invocation journal",
	Long: `Search the journal of invocations served by 'parkledger serve'. Results are
ordered newest first and limited by --limit.`,
	Example: `  parkledger history --plate ABC123
  parkledger history --failed --error "Ticket"
  parkledger history --prune 720h --dry-run`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		journal, err := db.Open(cfg.JournalPath)
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer journal.Close()

		out := cmd.OutOrStdout()
		if historyPrune > 0 {
			res, err := journal.Prune(logger.Component("journal"), time.Now().Add(-historyPrune), historyDryRun)
			if err != nil {
				return err
			}
			verb := "Removed"
			if res.DryRun {
				verb = "Would remove"
			}
			fmt.Fprintf(out, "%s %d record(s)\n", verb, res.Rows)
			return nil
		}

		plate := historyPlate
		if plate != "" {
			if plate, err = parking.NormalizePlate(plate); err != nil {
				return err
			}
		}
		recs, err := journal.Search(db.SearchParams{
			Function:   historyFunction,
			Plate:      plate,
			FailedOnly: historyFailed,
			ErrorRegex: historyError,
			Limit:      historyLimit,
		})
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		if len(recs) == 0 {
			fmt.Fprintln(out, "No matching invocations found.")
			return nil
		}

		fmt.Fprintf(out, "Found %d matching invocations:\n", len(recs))
		for _, r := range recs {
			outcome := color.GreenString(r.Outcome)
			if r.Outcome == db.OutcomeFailed {
				outcome = color.RedString("%s #%d %s", r.Outcome, r.ErrorCode, r.ErrorMsg)
			}
			fmt.Fprintf(out, "%5d  %s  %-24s %-40s %s\n",
				r.ID, r.Timestamp.Format("2006-01-02 15:04:05"), r.Function, strings.Join(r.Args, " "), outcome)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyFunction, "function", "", "Entry point name, e.g. pay_fine")
	historyCmd.Flags().StringVar(&historyPlate, "plate", "", "Plate to search for")
	historyCmd.Flags().BoolVar(&historyFailed, "failed", false, "Only failed invocations")
	historyCmd.Flags().StringVar(&historyError, "error", "", "Regex pattern to match error messages")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of results to return")
	historyCmd.Flags().DurationVar(&historyPrune, "prune", 0, "Delete records older than this instead of searching")
	historyCmd.Flags().BoolVar(&historyDryRun, "dry-run", false, "With --prune, only report what would be deleted")

	rootCmd.AddCommand(historyCmd)
}
