package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	periodPrevious bool
	periodTZ       string
)

var periodCmd = &cobra.Command{
	Use:   "period",
	Short: "Show pay for the current (or previous) Saturday–Friday period",
	Args:  cobra.NoArgs,
	RunE:  runPeriod,
}

func init() {
	periodCmd.Flags().BoolVar(&periodPrevious, "previous", false, "Report the period before the current one")
	periodCmd.Flags().StringVar(&periodTZ, "tz", "", "Pay-period offset: cst, est, utc or ±HH:MM (default PAY_TIMEZONE)")
}

func runPeriod(cmd *cobra.Command, args []string) error {
	loc, err := zone(periodTZ)
	if err != nil {
		return err
	}

	client, closeFn, err := newPaymoClient(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	out, err := newReporter(client).ReportPeriod(cmd.Context(), periodPrevious, loc)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
