package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/paymo-paybot/internal/model"
	"github.com/Tiliavir/paymo-paybot/internal/payroll"
	"github.com/Tiliavir/paymo-paybot/internal/service"
	"github.com/Tiliavir/paymo-paybot/internal/timecalc"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubEntries struct {
	entries []model.TimeEntry
	err     error
	calls   int
	from    time.Time
	to      time.Time
}

func (s *stubEntries) FetchEntries(_ context.Context, from, to time.Time) ([]model.TimeEntry, error) {
	s.calls++
	s.from, s.to = from, to
	if s.err != nil {
		return nil, s.err
	}
	// Mirror the API: only entries starting inside the interval.
	var out []model.TimeEntry
	for _, e := range s.entries {
		if !e.Start.Before(from) && !e.Start.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

type stubUser struct {
	id  int64
	err error
}

func (s stubUser) CurrentUserID(context.Context) (int64, error) { return s.id, s.err }

type stubPay struct {
	cfg payroll.PayConfig
	err error
}

func (s stubPay) LoadPayConfig(context.Context) (payroll.PayConfig, error) { return s.cfg, s.err }

var pay = stubPay{cfg: payroll.PayConfig{BaseWeeklyPay: 1000, OvertimeRate: 50, TaxRate: 0.2}}

func fixedNow(t time.Time) func() time.Time { return func() time.Time { return t } }

func cst(month time.Month, day, hour int) time.Time {
	return time.Date(2024, month, day, hour, 0, 0, 0, timecalc.CST)
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestReportPeriodCurrent(t *testing.T) {
	src := &stubEntries{entries: []model.TimeEntry{
		{ID: 1, UserID: 42, Start: cst(6, 10, 8), DurationSeconds: 30 * 3600},
		{ID: 2, UserID: 42, Start: cst(6, 11, 8), DurationSeconds: 16 * 3600},
		{ID: 3, UserID: 9, Start: cst(6, 11, 8), DurationSeconds: 99 * 3600},
	}}
	r := service.NewReporter(src, stubUser{id: 42}, pay, fixedNow(cst(6, 12, 10)), zerolog.Nop())

	out, err := r.ReportPeriod(context.Background(), false, timecalc.CST)
	require.NoError(t, err)

	assert.True(t, src.from.Equal(cst(6, 8, 0)))
	assert.True(t, src.to.Equal(time.Date(2024, 6, 14, 23, 59, 59, 999999000, timecalc.CST)))
	assert.Contains(t, out, "Pay period: 2024-06-08 – 2024-06-14")
	assert.Contains(t, out, "Total Duration: 46:00:00")
	assert.Contains(t, out, "Estimated Net Pay (After Tax): $1040.00")
}

func TestReportPeriodPrevious(t *testing.T) {
	src := &stubEntries{}
	r := service.NewReporter(src, stubUser{id: 42}, pay, fixedNow(cst(6, 12, 10)), zerolog.Nop())

	out, err := r.ReportPeriod(context.Background(), true, timecalc.CST)
	require.NoError(t, err)
	assert.True(t, src.from.Equal(cst(6, 1, 0)))
	assert.Contains(t, out, "Total Duration: 00:00:00")
	assert.Contains(t, out, "Estimated Net Pay (After Tax): $800.00")
}

func TestReportPeriodRecomputesNow(t *testing.T) {
	src := &stubEntries{}
	clock := cst(6, 12, 10)
	r := service.NewReporter(src, stubUser{id: 42}, pay, func() time.Time { return clock }, zerolog.Nop())

	_, err := r.ReportPeriod(context.Background(), false, timecalc.CST)
	require.NoError(t, err)
	assert.True(t, src.from.Equal(cst(6, 8, 0)))

	clock = cst(6, 20, 10)
	_, err = r.ReportPeriod(context.Background(), false, timecalc.CST)
	require.NoError(t, err)
	assert.True(t, src.from.Equal(cst(6, 15, 0)))
}

func TestReportPeriodErrors(t *testing.T) {
	now := fixedNow(cst(6, 12, 10))

	t.Run("configuration", func(t *testing.T) {
		src := &stubEntries{}
		bad := stubPay{err: &model.ConfigurationError{Field: "TAX_RATE", Err: errors.New("missing")}}
		_, err := service.NewReporter(src, stubUser{id: 42}, bad, now, zerolog.Nop()).ReportPeriod(context.Background(), false, timecalc.CST)
		var cfgErr *model.ConfigurationError
		assert.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, 0, src.calls, "nothing fetched with invalid configuration")
	})

	t.Run("fetch", func(t *testing.T) {
		src := &stubEntries{err: errors.New("dial tcp: timeout")}
		out, err := service.NewReporter(src, stubUser{id: 42}, pay, now, zerolog.Nop()).ReportPeriod(context.Background(), false, timecalc.CST)
		var fetchErr *model.FetchError
		assert.ErrorAs(t, err, &fetchErr)
		assert.Empty(t, out)
	})

	t.Run("user", func(t *testing.T) {
		src := &stubEntries{}
		_, err := service.NewReporter(src, stubUser{err: errors.New("401")}, pay, now, zerolog.Nop()).ReportPeriod(context.Background(), false, timecalc.CST)
		var fetchErr *model.FetchError
		assert.ErrorAs(t, err, &fetchErr)
	})

	t.Run("data", func(t *testing.T) {
		src := &stubEntries{entries: []model.TimeEntry{{ID: 5, UserID: 42, Start: cst(6, 10, 8), DurationSeconds: -60}}}
		_, err := service.NewReporter(src, stubUser{id: 42}, pay, now, zerolog.Nop()).ReportPeriod(context.Background(), false, timecalc.CST)
		var dataErr *model.DataError
		require.ErrorAs(t, err, &dataErr)
		assert.Equal(t, int64(5), dataErr.EntryID)
	})
}

func TestReportYearlyAverage(t *testing.T) {
	src := &stubEntries{entries: []model.TimeEntry{
		{ID: 1, UserID: 42, Start: cst(1, 8, 9), DurationSeconds: 40 * 3600},  // period starting Jan 6
		{ID: 2, UserID: 42, Start: cst(1, 16, 9), DurationSeconds: 30 * 3600}, // period starting Jan 13
		{ID: 3, UserID: 42, Start: cst(1, 17, 9), DurationSeconds: 20 * 3600}, // same period
		{ID: 4, UserID: 9, Start: cst(2, 1, 9), DurationSeconds: 80 * 3600},   // someone else
	}}
	r := service.NewReporter(src, stubUser{id: 42}, pay, fixedNow(cst(6, 12, 10)), zerolog.Nop())

	out, err := r.ReportYearlyAverage(context.Background(), 0, timecalc.CST)
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls, "one fetch spans the whole year")
	assert.True(t, src.from.Equal(cst(1, 6, 0)))
	assert.Equal(t, "Average Weekly Hours (2024): 45.00 hours\nBased on 2 of 23 pay periods with tracked time.", out)
}

func TestReportYearlyAverageNoData(t *testing.T) {
	src := &stubEntries{}
	r := service.NewReporter(src, stubUser{id: 42}, pay, fixedNow(time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)), zerolog.Nop())

	out, err := r.ReportYearlyAverage(context.Background(), 2023, timecalc.EST)
	require.NoError(t, err)
	assert.Contains(t, out, "Average Weekly Hours (2023): 0.00 hours")
	assert.NotContains(t, out, "NaN")
}

func TestReportYearlyAverageNoPeriodsYet(t *testing.T) {
	src := &stubEntries{}
	r := service.NewReporter(src, stubUser{id: 42}, pay, fixedNow(time.Date(2025, 1, 3, 9, 0, 0, 0, timecalc.CST)), zerolog.Nop())

	out, err := r.ReportYearlyAverage(context.Background(), 0, timecalc.CST)
	require.NoError(t, err)
	assert.Equal(t, 0, src.calls)
	assert.Contains(t, out, "Average Weekly Hours (2025): 0.00 hours")
}
