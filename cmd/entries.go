package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/paymo-paybot/internal/model"
	"github.com/Tiliavir/paymo-paybot/internal/timecalc"
)

var (
	entriesPrevious bool
	entriesTZ       string
	entriesFormat   string
	entriesAll      bool
)

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "List the Paymo time entries counted for a pay period",
	Args:  cobra.NoArgs,
	RunE:  runEntries,
}

func init() {
	entriesCmd.Flags().BoolVar(&entriesPrevious, "previous", false, "List the period before the current one")
	entriesCmd.Flags().StringVar(&entriesTZ, "tz", "", "Pay-period offset: cst, est, utc or ±HH:MM (default PAY_TIMEZONE)")
	entriesCmd.Flags().StringVar(&entriesFormat, "format", "md", "Output format: md, csv, json")
	entriesCmd.Flags().BoolVar(&entriesAll, "all", false, "Include entries of other users")
}

func runEntries(cmd *cobra.Command, args []string) error {
	loc, err := zone(entriesTZ)
	if err != nil {
		return err
	}
	now := time.Now()
	period := timecalc.CurrentPeriod(loc, now)
	if entriesPrevious {
		period = timecalc.PreviousPeriod(loc, now)
	}

	client, closeFn, err := newPaymoClient(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	entries, err := client.FetchEntries(cmd.Context(), period.Start, period.End)
	if err != nil {
		return err
	}
	if !entriesAll {
		me, err := client.CurrentUserID(cmd.Context())
		if err != nil {
			return err
		}
		entries = filterUser(entries, me)
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Start.Before(entries[j].Start) })

	out := cmd.OutOrStdout()
	switch entriesFormat {
	case "json":
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case "csv":
		return printCSV(out, entries)
	default: // md
		fmt.Fprintf(out, "Pay period %s\n", timecalc.WeekLabel(period))
		printList(out, entries)
	}
	return nil
}

func filterUser(entries []model.TimeEntry, userID int64) []model.TimeEntry {
	var mine []model.TimeEntry
	for _, e := range entries {
		if e.UserID == userID {
			mine = append(mine, e)
		}
	}
	return mine
}

// printList groups entries by date and prints them.
func printList(out io.Writer, entries []model.TimeEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No entries found.")
		return
	}

	var currentDay string
	var total int64
	for _, e := range entries {
		day := e.Start.Format("2006-01-02 (Mon)")
		if day != currentDay {
			fmt.Fprintln(out, day)
			currentDay = day
		}
		fmt.Fprintf(out, "  %s  %s  #%d\n", e.Start.Format("15:04"), timecalc.FormatDurationHHMMSS(e.DurationSeconds), e.ID)
		total += e.DurationSeconds
	}
	fmt.Fprintln(out, "--------------------------------")
	fmt.Fprintf(out, "%-20s%s\n", "Total", timecalc.FormatDurationHHMMSS(total))
}

func printCSV(out io.Writer, entries []model.TimeEntry) error {
	w := csv.NewWriter(out)
	_ = w.Write([]string{"id", "user_id", "date", "start", "duration_seconds"})
	for _, e := range entries {
		_ = w.Write([]string{
			strconv.FormatInt(e.ID, 10),
			strconv.FormatInt(e.UserID, 10),
			e.Start.Format("2006-01-02"),
			e.Start.Format(time.RFC3339),
			strconv.FormatInt(e.DurationSeconds, 10),
		})
	}
	w.Flush()
	return w.Error()
}
