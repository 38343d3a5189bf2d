// Package payroll turns worked seconds into weekly pay figures.
package payroll

import (
	"errors"
	"math"

	"github.com/Tiliavir/paymo-paybot/internal/model"
	"github.com/Tiliavir/paymo-paybot/internal/timecalc"
)

// OvertimeThresholdSeconds is 40 hours. Only time strictly beyond it is overtime.
const OvertimeThresholdSeconds = 40 * 3600

// PayConfig holds the pay parameters for one computation.
type PayConfig struct {
	BaseWeeklyPay float64
	OvertimeRate  float64
	TaxRate       float64
}

// Validate reports a ConfigurationError for non-finite or out-of-range values.
func (c PayConfig) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"BASE_WEEKLY_PAY", c.BaseWeeklyPay},
		{"OVERTIME_RATE", c.OvertimeRate},
		{"TAX_RATE", c.TaxRate},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &model.ConfigurationError{Field: f.name, Err: errors.New("not a finite number")}
		}
		if f.v < 0 {
			return &model.ConfigurationError{Field: f.name, Err: errors.New("must not be negative")}
		}
	}
	if c.TaxRate > 1 {
		return &model.ConfigurationError{Field: "TAX_RATE", Err: errors.New("must be a fraction between 0 and 1")}
	}
	return nil
}

// Result is the pay breakdown for one period. Amounts are unrounded.
type Result struct {
	TotalSeconds      int64
	OvertimeHours     float64
	BaseWeeklyPay     float64
	TaxRate           float64
	GrossOvertimePay  float64
	TotalGrossPay     float64
	TotalTaxDeduction float64
	NetPay            float64
}

// FormattedDuration returns the worked time as HH:MM:SS.
func (r Result) FormattedDuration() string {
	return timecalc.FormatDurationHHMMSS(r.TotalSeconds)
}

// Compute derives overtime, gross, tax and net pay from totalSeconds.
func Compute(totalSeconds int64, cfg PayConfig) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if totalSeconds < 0 {
		return Result{}, &model.DataError{Reason: "total worked seconds is negative"}
	}

	overtimeSeconds := max(totalSeconds-OvertimeThresholdSeconds, 0)
	overtimeHours := float64(overtimeSeconds) / 3600
	grossOvertime := overtimeHours * cfg.OvertimeRate
	gross := cfg.BaseWeeklyPay + grossOvertime
	tax := gross * cfg.TaxRate
	if math.IsInf(gross, 0) || math.IsInf(tax, 0) {
		field := "BASE_WEEKLY_PAY"
		if math.IsInf(grossOvertime, 0) {
			field = "OVERTIME_RATE"
		}
		return Result{}, &model.ConfigurationError{Field: field, Err: errors.New("pay amounts overflow")}
	}

	return Result{
		TotalSeconds:      totalSeconds,
		OvertimeHours:     overtimeHours,
		BaseWeeklyPay:     cfg.BaseWeeklyPay,
		TaxRate:           cfg.TaxRate,
		GrossOvertimePay:  grossOvertime,
		TotalGrossPay:     gross,
		TotalTaxDeduction: tax,
		NetPay:            gross - tax,
	}, nil
}
