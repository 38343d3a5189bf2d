// Package report renders pay figures as plain text for chat and terminal output.
package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Tiliavir/paymo-paybot/internal/model"
	"github.com/Tiliavir/paymo-paybot/internal/payroll"
	"github.com/Tiliavir/paymo-paybot/internal/timecalc"
)

// Average is the yearly average of weekly hours.
type Average struct {
	Year          int
	Hours         float64
	PeriodsWorked int
	PeriodsTotal  int
}

// money rounds only here, at render time.
func money(v float64) string {
	return "$" + decimal.NewFromFloat(v).StringFixed(2)
}

func fixed(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Payroll renders the pay breakdown for one period.
func Payroll(p model.Period, r payroll.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pay period: %s\n", timecalc.WeekLabel(p))
	fmt.Fprintf(&b, "Base Weekly Pay (Gross): %s\n", money(r.BaseWeeklyPay))
	fmt.Fprintf(&b, "Total Duration: %s\n", r.FormattedDuration())
	fmt.Fprintf(&b, "Overtime Hours: %s hours\n", fixed(r.OvertimeHours))
	fmt.Fprintf(&b, "Gross Overtime Pay: %s\n", money(r.GrossOvertimePay))
	fmt.Fprintf(&b, "Total Gross Pay (Base + Overtime): %s\n", money(r.TotalGrossPay))
	fmt.Fprintf(&b, "Total Tax Deduction (@ %s%% for Base + Overtime): %s\n",
		decimal.NewFromFloat(r.TaxRate).Shift(2).String(), money(r.TotalTaxDeduction))
	fmt.Fprintf(&b, "Estimated Net Pay (After Tax): %s", money(r.NetPay))
	return b.String()
}

// YearlyAverage renders the average weekly hours for a year.
func YearlyAverage(a Average) string {
	if a.PeriodsWorked == 0 {
		return fmt.Sprintf("Average Weekly Hours (%d): %s hours\nNo tracked time in any of %d pay periods yet.",
			a.Year, fixed(0), a.PeriodsTotal)
	}
	return fmt.Sprintf("Average Weekly Hours (%d): %s hours\nBased on %d of %d pay periods with tracked time.",
		a.Year, fixed(a.Hours), a.PeriodsWorked, a.PeriodsTotal)
}
