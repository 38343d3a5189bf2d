package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Tiliavir/paymo-paybot/internal/timecalc"
)

// Request is a parsed and validated chat command.
type Request interface {
	Name() string
}

// Greeting answers /start.
type Greeting struct{}

// Help answers /help.
type Help struct{}

// ShowPeriod asks for the pay breakdown of the current or previous period.
type ShowPeriod struct {
	Previous bool
	Zone     *time.Location `validate:"required"`
}

// ShowYearlyAverage asks for the average weekly hours of Year; 0 means the current year.
type ShowYearlyAverage struct {
	Year int            `validate:"omitempty,gte=1970,lte=9999"`
	Zone *time.Location `validate:"required"`
}

func (Greeting) Name() string          { return "start" }
func (Help) Name() string              { return "help" }
func (ShowPeriod) Name() string        { return "paymo" }
func (ShowYearlyAverage) Name() string { return "average" }

// UsageError reports a command the bot cannot act on.
type UsageError struct {
	Command string
	Reason  string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("/%s: %s", e.Command, e.Reason)
}

var validate = validator.New()

// Parse turns a command name (without the leading slash or @bot suffix) and
// its argument text into a Request. Zones default to defaultZone.
func Parse(command, args string, defaultZone *time.Location) (Request, error) {
	fields := strings.Fields(strings.ToLower(args))

	var req Request
	switch strings.ToLower(command) {
	case "start":
		return Greeting{}, nil
	case "help":
		return Help{}, nil
	case "paymo", "period":
		r := ShowPeriod{Zone: defaultZone}
		for _, f := range fields {
			switch f {
			case "current":
				r.Previous = false
			case "previous", "prev", "last":
				r.Previous = true
			default:
				loc, err := timecalc.ParseZone(f)
				if err != nil {
					return nil, &UsageError{Command: command, Reason: fmt.Sprintf("unknown argument %q", f)}
				}
				r.Zone = loc
			}
		}
		req = r
	case "average", "avg":
		r := ShowYearlyAverage{Zone: defaultZone}
		for _, f := range fields {
			if year, err := strconv.Atoi(f); err == nil {
				r.Year = year
				continue
			}
			loc, err := timecalc.ParseZone(f)
			if err != nil {
				return nil, &UsageError{Command: command, Reason: fmt.Sprintf("unknown argument %q", f)}
			}
			r.Zone = loc
		}
		req = r
	default:
		return nil, &UsageError{Command: command, Reason: "unknown command"}
	}

	if err := validate.Struct(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return nil, &UsageError{Command: command, Reason: describe(ve[0])}
		}
		return nil, &UsageError{Command: command, Reason: err.Error()}
	}
	return req, nil
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
