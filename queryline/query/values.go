package query

import (
	"regexp"
	"strconv"
	"time"

	qlerrors "github.com/queryline/queryline/queryline/errors"
	"github.com/queryline/queryline/queryline/field"
)

// DateLayout is the only accepted absolute date form.
const DateLayout = "2006-01-02"

var (
	intRe   = regexp.MustCompile(`^[+-]?\d+$`)
	floatRe = regexp.MustCompile(`^[+-]?\d+(\.\d*)?$`)
	dateRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// ParseDate parses an absolute YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	if !dateRe.MatchString(s) {
		return time.Time{}, qlerrors.New(qlerrors.KindValidation, "invalid date: "+s)
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, qlerrors.Wrap(qlerrors.KindValidation, "invalid date: "+s, err)
	}
	return t, nil
}

// ParseInt parses an integer filter value.
func ParseInt(s string) (int64, error) {
	if !intRe.MatchString(s) {
		return 0, qlerrors.New(qlerrors.KindValidation, "invalid integer: "+s)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, qlerrors.Wrap(qlerrors.KindValidation, "invalid integer: "+s, err)
	}
	return n, nil
}

// ParseFloat parses a float filter value. The decimal point is always "."
// regardless of locale; locale formatting is a presentation concern.
func ParseFloat(s string) (float64, error) {
	if !floatRe.MatchString(s) {
		return 0, qlerrors.New(qlerrors.KindValidation, "invalid number: "+s)
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, qlerrors.Wrap(qlerrors.KindValidation, "invalid number: "+s, err)
	}
	return n, nil
}

// DateContext anchors relative-date operators. Today must be computed once per
// evaluation in the caller's time zone so every row sees the same window.
type DateContext struct {
	Today     time.Time
	WeekStart time.Weekday
}

// NewDateContext truncates now to a date in its own location.
func NewDateContext(now time.Time, weekStart time.Weekday) DateContext {
	y, m, d := now.Date()
	return DateContext{
		Today:     time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		WeekStart: weekStart,
	}
}

func (c DateContext) day(offset int) time.Time {
	return c.Today.AddDate(0, 0, offset)
}

// Window resolves a date operator and its raw values into an inclusive
// [From, To] day window. A nil bound is open-ended.
func (c DateContext) Window(op field.Operator, values []string) (from, to *time.Time, err error) {
	first := func() (int, error) {
		if len(values) == 0 || values[0] == "" {
			return 0, qlerrors.New(qlerrors.KindValidation, "missing value for operator "+string(op))
		}
		n, err := ParseInt(values[0])
		return int(n), err
	}

	if len(values) == 0 {
		values = []string{""}
	}

	switch op {
	case field.OpEquals:
		d, perr := ParseDate(values[0])
		if perr != nil {
			return nil, nil, perr
		}
		return &d, &d, nil
	case field.OpGte:
		d, perr := ParseDate(values[0])
		if perr != nil {
			return nil, nil, perr
		}
		return &d, nil, nil
	case field.OpLte:
		d, perr := ParseDate(values[0])
		if perr != nil {
			return nil, nil, perr
		}
		return nil, &d, nil
	case field.OpBetween:
		if len(values) < 2 {
			return nil, nil, qlerrors.New(qlerrors.KindValidation, "between requires two values")
		}
		lo, perr := ParseDate(values[0])
		if perr != nil {
			return nil, nil, perr
		}
		hi, perr := ParseDate(values[1])
		if perr != nil {
			return nil, nil, perr
		}
		return &lo, &hi, nil
	case field.OpToday:
		d := c.day(0)
		return &d, &d, nil
	case field.OpThisWeek:
		lo, hi := c.weekSpan()
		return &lo, &hi, nil
	case field.OpAgoDays: // exactly N days ago
		n, perr := first()
		if perr != nil {
			return nil, nil, perr
		}
		d := c.day(-n)
		return &d, &d, nil
	case field.OpAgoLessThan: // on or after N days ago, up to today
		n, perr := first()
		if perr != nil {
			return nil, nil, perr
		}
		lo, hi := c.day(-n), c.day(0)
		return &lo, &hi, nil
	case field.OpAgoMoreThan: // on or before N days ago
		n, perr := first()
		if perr != nil {
			return nil, nil, perr
		}
		hi := c.day(-n)
		return nil, &hi, nil
	case field.OpInDays: // exactly N days from now
		n, perr := first()
		if perr != nil {
			return nil, nil, perr
		}
		d := c.day(n)
		return &d, &d, nil
	case field.OpInLessThan: // between today and N days from now
		n, perr := first()
		if perr != nil {
			return nil, nil, perr
		}
		lo, hi := c.day(0), c.day(n)
		return &lo, &hi, nil
	case field.OpInMoreThan: // on or after N days from now
		n, perr := first()
		if perr != nil {
			return nil, nil, perr
		}
		lo := c.day(n)
		return &lo, nil, nil
	}
	return nil, nil, qlerrors.New(qlerrors.KindOperator, "operator "+string(op)+" has no date window")
}

// weekSpan returns the inclusive 7-day span of the current week, starting on
// the configured first day of week.
func (c DateContext) weekSpan() (time.Time, time.Time) {
	daysAgo := int(c.Today.Weekday()) - int(c.WeekStart)
	if daysAgo < 0 {
		daysAgo += 7
	}
	lo := c.day(-daysAgo)
	return lo, lo.AddDate(0, 0, 6)
}

// ValidateFilterValues checks raw values against the field type and operator.
// It reports the first problem as a validation error naming the field.
func ValidateFilterValues(def FilterDef, f Filter) error {
	invalid := func(msg string) error {
		return qlerrors.Validation(f.Field, msg)
	}

	if f.Operator.RequiresValues() {
		blank := true
		for _, v := range f.Values {
			if v != "" {
				blank = false
				break
			}
		}
		if blank {
			return invalid("at least one value is required")
		}
	}

	switch def.Type {
	case field.Integer:
		for _, v := range f.Values {
			if v == "" {
				continue
			}
			if _, err := ParseInt(v); err != nil {
				return invalid("invalid integer value: " + v)
			}
		}
	case field.Float:
		for _, v := range f.Values {
			if v == "" {
				continue
			}
			if _, err := ParseFloat(v); err != nil {
				return invalid("invalid number value: " + v)
			}
		}
	case field.Date, field.DateTime:
		switch f.Operator {
		case field.OpEquals, field.OpGte, field.OpLte, field.OpBetween:
			for _, v := range f.Values {
				if v == "" {
					continue
				}
				if _, err := ParseDate(v); err != nil {
					return invalid("invalid date value: " + v)
				}
			}
		default:
			if f.Operator.RelativeDate() {
				for _, v := range f.Values {
					if v == "" {
						continue
					}
					if _, err := ParseInt(v); err != nil {
						return invalid("invalid day offset: " + v)
					}
				}
			}
		}
	}
	return nil
}
