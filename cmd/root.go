package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/paymo-paybot/internal/config"
	"github.com/Tiliavir/paymo-paybot/internal/logger"
	"github.com/Tiliavir/paymo-paybot/internal/model"
	"github.com/Tiliavir/paymo-paybot/internal/timecalc"
)

var (
	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "paybot",
	Short: "paybot – weekly pay figures from Paymo time entries",
	Long: `paybot computes Saturday–Friday pay periods, sums your Paymo time
entries into them and estimates overtime, tax and net pay.
Configuration is read from the environment (PAYMO_API_KEY, BASE_WEEKLY_PAY,
OVERTIME_RATE, TAX_RATE, TELEGRAM_BOT_TOKEN, ...).`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute is the entry point called from main.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.AddCommand(periodCmd)
	rootCmd.AddCommand(averageCmd)
	rootCmd.AddCommand(entriesCmd)
	rootCmd.AddCommand(meCmd)
	rootCmd.AddCommand(botCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}
	cfg = c
	log = logger.New(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	return nil
}

// zone returns the location named by flag, falling back to PAY_TIMEZONE.
func zone(flag string) (*time.Location, error) {
	if strings.TrimSpace(flag) == "" {
		return cfg.Location(), nil
	}
	return timecalc.ParseZone(flag)
}

// exitCode is 2 for failures of Paymo or its data and 1 otherwise.
func exitCode(err error) int {
	var (
		dataErr  *model.DataError
		fetchErr *model.FetchError
	)
	if errors.As(err, &dataErr) || errors.As(err, &fetchErr) {
		return 2
	}
	return 1
}
