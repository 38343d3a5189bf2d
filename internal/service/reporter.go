// Package service runs the pay-period reports end to end: resolve periods,
// fetch entries, aggregate, compute and render.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/Tiliavir/paymo-paybot/internal/aggregate"
	"github.com/Tiliavir/paymo-paybot/internal/model"
	"github.com/Tiliavir/paymo-paybot/internal/payroll"
	"github.com/Tiliavir/paymo-paybot/internal/report"
	"github.com/Tiliavir/paymo-paybot/internal/timecalc"
)

// EntrySource fetches time entries in an inclusive interval.
type EntrySource interface {
	FetchEntries(ctx context.Context, from, to time.Time) ([]model.TimeEntry, error)
}

// UserResolver identifies whose entries are counted.
type UserResolver interface {
	CurrentUserID(ctx context.Context) (int64, error)
}

// PayConfigLoader supplies the pay parameters for one computation.
type PayConfigLoader interface {
	LoadPayConfig(ctx context.Context) (payroll.PayConfig, error)
}

// Reporter produces the text reports offered to users.
type Reporter struct {
	entries EntrySource
	users   UserResolver
	pay     PayConfigLoader
	now     func() time.Time
	log     zerolog.Logger
}

// NewReporter wires a Reporter. now is called once per report; pass nil for time.Now.
func NewReporter(entries EntrySource, users UserResolver, pay PayConfigLoader, now func() time.Time, log zerolog.Logger) *Reporter {
	if now == nil {
		now = time.Now
	}
	return &Reporter{entries: entries, users: users, pay: pay, now: now, log: log}
}

// ReportPeriod renders the pay breakdown for the current period, or the one
// before it when previous is set.
func (r *Reporter) ReportPeriod(ctx context.Context, previous bool, loc *time.Location) (string, error) {
	cfg, err := r.pay.LoadPayConfig(ctx)
	if err != nil {
		return "", err
	}

	now := r.now()
	period := timecalc.CurrentPeriod(loc, now)
	if previous {
		period = timecalc.PreviousPeriod(loc, now)
	}

	entries, userID, err := r.fetch(ctx, period.Start, period.End)
	if err != nil {
		return "", err
	}

	total := aggregate.SumForUser(entries, userID)
	result, err := payroll.Compute(total, cfg)
	if err != nil {
		return "", err
	}

	r.log.Debug().
		Time("period_start", period.Start).
		Bool("previous", previous).
		Int("entries", len(entries)).
		Int64("total_seconds", total).
		Msg("computed period pay")
	return report.Payroll(period, result), nil
}

// ReportYearlyAverage renders the average hours worked per pay period in
// year, counting only periods with tracked time. year 0 means the current year.
func (r *Reporter) ReportYearlyAverage(ctx context.Context, year int, loc *time.Location) (string, error) {
	now := r.now()
	if year == 0 {
		year = now.In(loc).Year()
	}

	periods := timecalc.PeriodsInYear(year, loc, now)
	avg := report.Average{Year: year, PeriodsTotal: len(periods)}
	if len(periods) == 0 {
		return report.YearlyAverage(avg), nil
	}

	entries, userID, err := r.fetch(ctx, periods[0].Start, periods[len(periods)-1].End)
	if err != nil {
		return "", err
	}

	totals := aggregate.BucketByPeriod(entries, userID, periods)
	avg.Hours = aggregate.AverageNonZero(totals)
	avg.PeriodsWorked = aggregate.NonZero(totals)

	r.log.Debug().
		Int("year", year).
		Int("periods", len(periods)).
		Int("periods_worked", avg.PeriodsWorked).
		Msg("computed yearly average")
	return report.YearlyAverage(avg), nil
}

// fetch retrieves and validates the entries of [from, to] and the user they
// are filtered by. Untyped failures become *model.FetchError.
func (r *Reporter) fetch(ctx context.Context, from, to time.Time) ([]model.TimeEntry, int64, error) {
	entries, err := r.entries.FetchEntries(ctx, from, to)
	if err != nil {
		return nil, 0, asFetchError("fetch entries", err)
	}
	if err := aggregate.Validate(entries); err != nil {
		return nil, 0, err
	}

	userID, err := r.users.CurrentUserID(ctx)
	if err != nil {
		return nil, 0, asFetchError("resolve user", err)
	}
	return entries, userID, nil
}

func asFetchError(op string, err error) error {
	var (
		fetchErr *model.FetchError
		dataErr  *model.DataError
		cfgErr   *model.ConfigurationError
	)
	if errors.As(err, &fetchErr) || errors.As(err, &dataErr) || errors.As(err, &cfgErr) {
		return err
	}
	return &model.FetchError{Op: op, Err: err}
}
