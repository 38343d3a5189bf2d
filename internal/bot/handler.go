package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Tiliavir/paymo-paybot/internal/metrics"
	"github.com/Tiliavir/paymo-paybot/internal/model"
)

const greeting = "I am finally awake... 1000 years I slumbered... What is your bidding, my liege?"

const helpText = `Commands:
/paymo [current|previous] [cst|est|utc|±HH:MM] – pay for a Saturday–Friday period
/average [year] [zone] – average weekly hours over a year
/help – this message`

// Reports is the reporting surface the bot delegates to.
type Reports interface {
	ReportPeriod(ctx context.Context, previous bool, loc *time.Location) (string, error)
	ReportYearlyAverage(ctx context.Context, year int, loc *time.Location) (string, error)
}

// Handler maps chat commands to reports and report failures to replies.
type Handler struct {
	reports Reports
	zone    *time.Location
	log     zerolog.Logger
}

// NewHandler returns a Handler using zone when a command names none.
func NewHandler(reports Reports, zone *time.Location, log zerolog.Logger) *Handler {
	return &Handler{reports: reports, zone: zone, log: log}
}

// Reply returns the text to send back for one command.
func (h *Handler) Reply(ctx context.Context, command, args string) string {
	req, err := Parse(command, args, h.zone)
	if err != nil {
		metrics.CommandsTotal.WithLabelValues("unknown", "rejected").Inc()
		h.log.Info().Str("command", command).Str("args", args).Err(err).Msg("rejected command")
		return fmt.Sprintf("%v\n\n%s", err, helpText)
	}

	text, err := h.dispatch(ctx, req)
	outcome := outcomeOf(err)
	metrics.CommandsTotal.WithLabelValues(req.Name(), outcome).Inc()
	if err != nil {
		h.log.Error().Err(err).Str("command", req.Name()).Str("outcome", outcome).Msg("command failed")
		return failureText(err)
	}
	h.log.Info().Str("command", req.Name()).Msg("command handled")
	return text
}

func (h *Handler) dispatch(ctx context.Context, req Request) (string, error) {
	switch r := req.(type) {
	case Greeting:
		return greeting, nil
	case Help:
		return helpText, nil
	case ShowPeriod:
		return h.reports.ReportPeriod(ctx, r.Previous, r.Zone)
	case ShowYearlyAverage:
		return h.reports.ReportYearlyAverage(ctx, r.Year, r.Zone)
	default:
		return "", fmt.Errorf("unhandled request %T", req)
	}
}

func outcomeOf(err error) string {
	var (
		cfgErr   *model.ConfigurationError
		dataErr  *model.DataError
		fetchErr *model.FetchError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &cfgErr):
		return "config_error"
	case errors.As(err, &dataErr):
		return "data_error"
	case errors.As(err, &fetchErr):
		return "fetch_error"
	default:
		return "error"
	}
}

func failureText(err error) string {
	var (
		cfgErr   *model.ConfigurationError
		dataErr  *model.DataError
		fetchErr *model.FetchError
	)
	switch {
	case errors.As(err, &cfgErr):
		return fmt.Sprintf("Pay settings are missing or invalid: %v. No figures were computed.", cfgErr)
	case errors.As(err, &dataErr):
		return fmt.Sprintf("Paymo returned data I can't use (%v). No figures were computed.", dataErr)
	case errors.As(err, &fetchErr):
		return "Couldn't get time entries from Paymo right now. Please try again later."
	default:
		return "Something went wrong while computing your pay."
	}
}
