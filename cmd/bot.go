package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/paymo-paybot/internal/bot"
	"github.com/Tiliavir/paymo-paybot/internal/model"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot (/paymo, /average)",
	Args:  cobra.NoArgs,
	RunE:  runBot,
}

func runBot(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if cfg.Telegram.Token == "" {
		return &model.ConfigurationError{Field: "TELEGRAM_BOT_TOKEN", Err: errors.New("not set")}
	}

	client, closeFn, err := newPaymoClient(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	handler := bot.NewHandler(newReporter(client), cfg.Location(), log)
	b, err := bot.New(cfg.Telegram.Token, handler, cfg.Telegram.AllowedChats, log)
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	log.Info().Msg("bot polling for commands")
	err = b.Run(ctx)
	log.Info().Msg("bot stopped")
	return err
}

func serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("metrics listener failed")
		}
	}()
	log.Info().Str("addr", addr).Msg("serving metrics")
	return srv
}
