package waste

import (
	"math/rand"
	"testing"
	"time"

	lo "github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func consecutiveDays(start time.Time, n int) []Record {
	out := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, record(FormatDate(start.AddDate(0, 0, i)), float64(100+i), 10, 10))
	}
	return out
}

func dates(records []Record) []string {
	return lo.Map(records, func(r Record, _ int) string { return r.Date })
}

func TestFilterByPeriodEmpty(t *testing.T) {
	for _, p := range Periods {
		got := FilterByPeriod(nil, p)
		require.NotNil(t, got)
		assert.Empty(t, got, "period %s", p)
	}
}

func TestFilterByPeriodDayReturnsLatest(t *testing.T) {
	records := []Record{
		record("03-Jan-2025", 1, 0, 0),
		record("10-Jan-2025", 2, 0, 0),
		record("05-Jan-2025", 3, 0, 0),
	}
	got := FilterByPeriod(records, PeriodDay)
	require.Len(t, got, 1)
	assert.Equal(t, "10-Jan-2025", got[0].Date)
}

func TestFilterByPeriodWeekIsAnchoredToData(t *testing.T) {
	// Far in the past: wall-clock time must not matter.
	records := consecutiveDays(time.Date(2019, 2, 20, 0, 0, 0, 0, time.UTC), 20)
	got := FilterByPeriod(records, PeriodWeek)
	require.Len(t, got, 7)
	assert.Equal(t, "11-Mar-2019", got[0].Date)
	assert.Equal(t, "05-Mar-2019", got[6].Date)
}

func TestFilterByPeriodWeekSkipsGaps(t *testing.T) {
	records := []Record{
		record("01-Mar-2025", 1, 0, 0),
		record("02-Mar-2025", 1, 0, 0),
		record("09-Mar-2025", 1, 0, 0),
		record("03-Mar-2025", 1, 0, 0),
	}
	got := FilterByPeriod(records, PeriodWeek)
	assert.Equal(t, []string{"09-Mar-2025", "03-Mar-2025"}, dates(got))
}

func TestFilterByPeriodMonthOnShuffledInput(t *testing.T) {
	records := consecutiveDays(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 40)
	shuffled := append([]Record(nil), records...)
	rand.New(rand.NewSource(7)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	before := dates(shuffled)

	got := FilterByPeriod(shuffled, PeriodMonth)
	require.Len(t, got, 30)
	want := lo.Reverse(dates(records[10:]))
	assert.Equal(t, want, dates(got))
	assert.Equal(t, before, dates(shuffled), "input order is left untouched")
}

func TestFilterByPeriodQuarterAndYear(t *testing.T) {
	records := consecutiveDays(time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC), 120)
	assert.Len(t, FilterByPeriod(records, PeriodQuarter), 90)
	year := FilterByPeriod(records, PeriodYear)
	assert.Len(t, year, 120)
	assert.Equal(t, "28-Feb-2025", year[0].Date)
}

func TestFilterByPeriodDoesNotMutateInput(t *testing.T) {
	records := []Record{record("01-Jan-2025", 1, 0, 0), record("05-Jan-2025", 2, 0, 0)}
	_ = FilterByPeriod(records, PeriodYear)
	assert.Equal(t, []string{"01-Jan-2025", "05-Jan-2025"}, dates(records))
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod(" Week ")
	require.NoError(t, err)
	assert.Equal(t, PeriodWeek, p)

	_, err = ParsePeriod("fortnight")
	assert.ErrorIs(t, err, ErrUnknownPeriod)
}

func TestFilterByDateRangeInclusiveBounds(t *testing.T) {
	records := consecutiveDays(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 10)
	start := time.Date(2025, 1, 3, 15, 30, 0, 0, time.UTC)
	end := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)

	got := FilterByDateRange(records, start, end)
	assert.Equal(t, []string{"03-Jan-2025", "04-Jan-2025", "05-Jan-2025"}, dates(got))
}

func TestFilterByDateRangeSameDay(t *testing.T) {
	records := []Record{
		record("04-Jan-2025", 1, 0, 0),
		record("05-Jan-2025", 2, 0, 0),
		record("05-Jan-2025", 3, 0, 0),
		record("06-Jan-2025", 4, 0, 0),
	}
	day := time.Date(2025, 1, 5, 23, 59, 0, 0, time.UTC)
	got := FilterByDateRange(records, day, day)
	require.Len(t, got, 2)
	assert.Equal(t, 2.0, got[0].TotalWaste)
	assert.Equal(t, 3.0, got[1].TotalWaste)
}

func TestFilterByDateRangeUsesCallerCalendarDay(t *testing.T) {
	records := []Record{record("05-Jan-2025", 1, 0, 0)}
	ist := time.FixedZone("IST", 5*3600+1800)
	// 00:30 on the 5th in IST is still the 4th in UTC.
	day := time.Date(2025, 1, 5, 0, 30, 0, 0, ist)
	assert.Len(t, FilterByDateRange(records, day, day), 1)
}

func TestFilterByDateRangeNoMatch(t *testing.T) {
	records := consecutiveDays(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 3)
	got := FilterByDateRange(records, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NotNil(t, got)
	assert.Empty(t, got)

	reversed := FilterByDateRange(records, time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Empty(t, reversed)
}

func TestDateRangeString(t *testing.T) {
	dr := DateRange{Start: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), End: time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, "06-Jan-2025_to_12-Jan-2025", dr.String())
}
