package waste

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	lo "github.com/samber/lo"
)

// Period is a named window anchored at the latest date present in the data.
type Period string

const (
	PeriodDay     Period = "day"
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

var Periods = []Period{PeriodDay, PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear}

var ErrUnknownPeriod = errors.New("unknown period")

// windowDays is the inclusive window length ending at the latest date.
var windowDays = map[Period]int{
	PeriodWeek:    7,
	PeriodMonth:   30,
	PeriodQuarter: 90,
}

func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if lo.Contains(Periods, p) {
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
}

func (p Period) Label() string {
	switch p {
	case PeriodDay:
		return "Latest Day"
	case PeriodWeek:
		return "Last 7 Days"
	case PeriodMonth:
		return "Last 30 Days"
	case PeriodQuarter:
		return "Last 90 Days"
	case PeriodYear:
		return "Full Year"
	}
	return string(p)
}

// DateRange is an explicit, inclusive calendar-day window.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// String renders the range as "06-Jan-2025_to_12-Jan-2025".
func (dr DateRange) String() string {
	return FormatDate(dr.Start) + "_to_" + FormatDate(dr.End)
}

// SortByDateDesc returns a copy of records sorted newest first. Records
// sharing a date keep their input order; unparseable dates sort last.
func SortByDateDesc(records []Record) []Record {
	out := append([]Record(nil), records...)
	days := make(map[string]time.Time, len(out))
	for _, r := range out {
		if t, ok := r.Day(); ok {
			days[r.Date] = t
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return days[out[i].Date].After(days[out[j].Date])
	})
	return out
}

// FilterByPeriod selects records relative to the most recent date in the
// data, never the wall clock. The result is sorted newest first.
func FilterByPeriod(records []Record, period Period) []Record {
	if len(records) == 0 {
		return []Record{}
	}
	sorted := SortByDateDesc(records)
	switch period {
	case PeriodDay:
		return sorted[:1]
	case PeriodWeek, PeriodMonth, PeriodQuarter:
		latest, ok := sorted[0].Day()
		if !ok {
			return []Record{}
		}
		from := latest.AddDate(0, 0, -(windowDays[period] - 1))
		return lo.Filter(sorted, func(r Record, _ int) bool {
			t, ok := r.Day()
			return ok && !t.Before(from)
		})
	default:
		return sorted
	}
}

// FilterByDateRange keeps records whose date falls within
// [start of start's day, end of end's day], preserving input order.
func FilterByDateRange(records []Record, start, end time.Time) []Record {
	from, to := CalendarDay(start), CalendarDay(end)
	return lo.Filter(records, func(r Record, _ int) bool {
		t, ok := r.Day()
		return ok && !t.Before(from) && !t.After(to)
	})
}
