package timecalc

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Tiliavir/paymo-paybot/internal/model"
)

// Fixed offsets used for payroll. No daylight saving is modelled.
var (
	CST = time.FixedZone("CST", -6*60*60)
	EST = time.FixedZone("EST", -5*60*60)
)

// ParseZone resolves a zone name ("cst", "est", "utc") or a "±HH:MM" offset
// to a fixed-offset location.
func ParseZone(s string) (*time.Location, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cst":
		return CST, nil
	case "est":
		return EST, nil
	case "utc", "z":
		return time.UTC, nil
	}

	raw := strings.TrimSpace(s)
	if len(raw) != 6 || (raw[0] != '+' && raw[0] != '-') || raw[3] != ':' {
		return nil, fmt.Errorf("invalid timezone %q: want cst, est, utc or ±HH:MM", s)
	}
	h, err := strconv.Atoi(raw[1:3])
	if err != nil || h > 14 {
		return nil, fmt.Errorf("invalid timezone hours in %q", s)
	}
	m, err := strconv.Atoi(raw[4:6])
	if err != nil || m > 59 {
		return nil, fmt.Errorf("invalid timezone minutes in %q", s)
	}
	offset := h*3600 + m*60
	if raw[0] == '-' {
		offset = -offset
	}
	return time.FixedZone("UTC"+raw, offset), nil
}

// FormatDurationHHMMSS formats seconds as HH:MM:SS. Hours do not roll over into days.
func FormatDurationHHMMSS(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// LastPeriodStart returns the Saturday 00:00 in loc on or before ref.
func LastPeriodStart(ref time.Time, loc *time.Location) time.Time {
	t := ref.In(loc)
	// Go's weekday: Sunday=0, …, Saturday=6
	daysSinceSaturday := (int(t.Weekday()) - int(time.Saturday) + 7) % 7
	sat := t.AddDate(0, 0, -daysSinceSaturday)
	return time.Date(sat.Year(), sat.Month(), sat.Day(), 0, 0, 0, 0, loc)
}

// PeriodEnd returns the Friday 23:59:59.999999 six days after start.
func PeriodEnd(start time.Time) time.Time {
	fri := start.AddDate(0, 0, 6)
	return time.Date(fri.Year(), fri.Month(), fri.Day(), 23, 59, 59, 999999000, start.Location())
}

// CurrentPeriod returns the pay period containing now.
func CurrentPeriod(loc *time.Location, now time.Time) model.Period {
	start := LastPeriodStart(now, loc)
	return model.Period{Start: start, End: PeriodEnd(start)}
}

// PreviousPeriod returns the pay period immediately before the one containing now.
func PreviousPeriod(loc *time.Location, now time.Time) model.Period {
	start := LastPeriodStart(now, loc).AddDate(0, 0, -7)
	return model.Period{Start: start, End: PeriodEnd(start)}
}

// PeriodsInYear lists, earliest first, every pay period fully contained in
// year. For the year of now the enumeration starts at the current period,
// so periods in the future are never returned.
func PeriodsInYear(year int, loc *time.Location, now time.Time) []model.Period {
	var seed time.Time
	if now.In(loc).Year() == year {
		seed = LastPeriodStart(now, loc)
	} else {
		seed = LastPeriodStart(time.Date(year, time.December, 31, 23, 59, 59, 0, loc), loc)
	}

	var periods []model.Period
	for start := seed; start.Year() == year; start = start.AddDate(0, 0, -7) {
		end := PeriodEnd(start)
		if end.Year() != year {
			continue
		}
		periods = append(periods, model.Period{Start: start, End: end})
	}

	for i, j := 0, len(periods)-1; i < j; i, j = i+1, j-1 {
		periods[i], periods[j] = periods[j], periods[i]
	}
	return periods
}

// WeekLabel returns a label like "2024-06-08 – 2024-06-14".
func WeekLabel(p model.Period) string {
	return fmt.Sprintf("%s – %s", p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"))
}
