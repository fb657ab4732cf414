package calculate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ccsv "waste-stats/connectors/csv"
	"waste-stats/domain/waste"
)

func records(days int) []waste.Record {
	var out []waste.Record
	for i := 0; i < days; i++ {
		d := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
		out = append(out, waste.Record{Date: waste.FormatDate(d), TotalWaste: 100, Recycling: 40, Composted: 10}.WithDerived())
	}
	return out
}

func TestViewsNarrowestFirst(t *testing.T) {
	views := Views(records(40))
	require.Len(t, views, len(waste.Periods))
	counts := map[waste.Period]int{}
	for _, v := range views {
		counts[v.Period] = len(v.Records)
	}
	assert.Equal(t, map[waste.Period]int{
		waste.PeriodDay: 1, waste.PeriodWeek: 7, waste.PeriodMonth: 30, waste.PeriodQuarter: 40, waste.PeriodYear: 40,
	}, counts)
}

func TestRunWritesOutputs(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	dir := t.TempDir()
	snap := filepath.Join(dir, "waste.csv")
	require.NoError(t, ccsv.WriteSnapshot(snap, records(10)))

	require.NoError(t, Run([]string{"-data", dir, "-snapshot", snap}))
	for _, name := range []string{ccsv.SummaryFile, ccsv.BreakdownFile, ccsv.OverviewFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestRunWithoutSnapshot(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	dir := t.TempDir()
	err := Run([]string{"-data", dir, "-snapshot", filepath.Join(dir, "missing.csv")})
	assert.ErrorContains(t, err, "run import first")
}
