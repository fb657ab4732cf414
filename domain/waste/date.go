package waste

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical textual date form, e.g. "06-Jan-2025".
const DateLayout = "02-Jan-2006"

var ErrBadDate = errors.New("unparseable date")

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// ParseDate parses "06-Jan-2025" (month name or abbreviation) and the
// numeric "06-01-2025" form. Numeric dates are always day-month-year,
// so "01-02-2025" is the 1st of February. "/" and "." separators and
// ISO "2025-01-06" are accepted too. The result is midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrBadDate)
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '/' || r == '.' || r == ' ' })
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
	}
	// ISO year-first form.
	if len(parts[0]) == 4 {
		parts[0], parts[2] = parts[2], parts[0]
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
	}
	month, ok := parseMonth(parts[1])
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
	}
	if len(parts[2]) <= 2 {
		year += 2000
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow ("31-Feb"); reject it instead.
	if t.Day() != day || t.Month() != month {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
	}
	return t, nil
}

func parseMonth(s string) (time.Month, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, false
		}
		return time.Month(n), true
	}
	lower := strings.ToLower(s)
	if len(lower) < 3 {
		return 0, false
	}
	m, ok := monthsByPrefix[lower[:3]]
	if !ok {
		return 0, false
	}
	// Full names must be spelled correctly ("Janx" is not January).
	if len(lower) > 3 && !strings.HasPrefix(strings.ToLower(m.String()), lower) {
		return 0, false
	}
	return m, true
}

// FormatDate renders t in DateLayout.
func FormatDate(t time.Time) string { return t.Format(DateLayout) }

// Day parses the record date; ok is false when it cannot be parsed.
func (r Record) Day() (time.Time, bool) {
	t, err := ParseDate(r.Date)
	return t, err == nil
}

// CalendarDay maps t to midnight UTC of the calendar date t has in its
// own location, the same normalization ParseDate applies.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
