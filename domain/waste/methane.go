package waste

import (
	"fmt"
	"strconv"
	"time"

	lo "github.com/samber/lo"
)

// MethanePoint is one bucket of the methane-reduction trend chart.
type MethanePoint struct {
	Label            string  `json:"date"`
	MethaneReduction float64 `json:"methaneReduction"`
	Days             int     `json:"days"`
}

// MethaneTrend buckets records oldest first by the granularity of period:
// one point per record for day, then "W2 Jan" (week of the month),
// "Jan 2025", "Q1 2025" and "2025". Each bucket sums the per-record
// (rounded) methane reduction. Records with unparseable dates are skipped.
func MethaneTrend(records []Record, period Period) []MethanePoint {
	sorted := lo.Filter(lo.Reverse(SortByDateDesc(records)), func(r Record, _ int) bool {
		_, ok := r.Day()
		return ok
	})
	if period == PeriodDay {
		return lo.Map(sorted, func(r Record, _ int) MethanePoint {
			return MethanePoint{Label: shortLabel(r.Date), MethaneReduction: r.MethaneReduction, Days: 1}
		})
	}

	points := []MethanePoint{}
	index := map[string]int{}
	for _, r := range sorted {
		t, _ := r.Day()
		label := methaneBucket(t, period)
		key := strconv.Itoa(t.Year()) + " " + label
		i, ok := index[key]
		if !ok {
			i = len(points)
			index[key] = i
			points = append(points, MethanePoint{Label: label})
		}
		points[i].MethaneReduction += r.MethaneReduction
		points[i].Days++
	}
	return points
}

func methaneBucket(t time.Time, period Period) string {
	month := t.Format("Jan")
	year := strconv.Itoa(t.Year())
	switch period {
	case PeriodWeek:
		return fmt.Sprintf("W%d %s", (t.Day()+6)/7, month)
	case PeriodMonth:
		return month + " " + year
	case PeriodQuarter:
		return fmt.Sprintf("Q%d %s", (int(t.Month())-1)/3+1, year)
	default:
		return year
	}
}
