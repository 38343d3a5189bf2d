package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var averageTZ string

var averageCmd = &cobra.Command{
	Use:   "average [year]",
	Short: "Show average weekly hours for a year (default: this year)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAverage,
}

func init() {
	averageCmd.Flags().StringVar(&averageTZ, "tz", "", "Pay-period offset: cst, est, utc or ±HH:MM (default PAY_TIMEZONE)")
}

func runAverage(cmd *cobra.Command, args []string) error {
	year := 0
	if len(args) == 1 {
		y, err := parseYear(args[0])
		if err != nil {
			return err
		}
		year = y
	}

	loc, err := zone(averageTZ)
	if err != nil {
		return err
	}

	client, closeFn, err := newPaymoClient(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	out, err := newReporter(client).ReportYearlyAverage(cmd.Context(), year, loc)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func parseYear(s string) (int, error) {
	y, err := strconv.Atoi(s)
	if err != nil || y < 1970 || y > 9999 {
		return 0, fmt.Errorf("invalid year %q: want a four-digit year", s)
	}
	return y, nil
}
