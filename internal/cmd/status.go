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
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dotandev/parkledger/internal/parking"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status <plate>",
	Short: "Show a plate's parking state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := openLedger()
		if err != nil {
			return err
		}
		rep, err := l.client.Report(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if statusJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}
		printReport(cmd.OutOrStdout(), rep)
		return nil
	},
}

func statusColor(s parking.Status) func(format string, a ...any) string {
	switch s {
	case parking.StatusFined:
		return color.RedString
	case parking.StatusHourly:
		return color.CyanString
	case parking.StatusAnnual:
		return color.BlueString
	}
	return color.GreenString
}

func at(ts uint64) string {
	return time.Unix(int64(ts), 0).UTC().Format(time.RFC3339)
}

func printReport(w io.Writer, r parking.PlateReport) {
	fmt.Fprintf(w, "Plate:  %s\n", r.Plate)
	fmt.Fprintf(w, "Status: %s\n", statusColor(r.Status)("%s", r.Status))
	if t := r.Ticket; t != nil {
		state := "valid"
		if t.Expired(r.Timestamp) {
			state = color.YellowString("expired")
		}
		fmt.Fprintf(w, "Ticket: %d h paid %s, entered %s, until %s (%s)\n",
			t.HoursPaid, t.AmountPaid, at(t.EntryTime), at(t.ExpiresAt()), state)
	}
	if p := r.Pass; p != nil {
		state := "valid"
		if !r.PassValid {
			state = color.YellowString("expired")
		}
		fmt.Fprintf(w, "Pass:   bought %s, until %s (%s)\n", at(p.PurchaseTime), at(p.ValidUntil()), state)
	}
	if f := r.Fine; f != nil {
		fmt.Fprintf(w, "Fine:   %s (%s), issued %s\n", color.RedString(f.FineAmount.String()), f.Reason, at(f.IssueTime))
		if f.Overdue(r.Timestamp) {
			fmt.Fprintln(w, color.RedString("        overdue"))
		}
	}
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print the report as JSON")
	rootCmd.AddCommand(statusCmd)
}
