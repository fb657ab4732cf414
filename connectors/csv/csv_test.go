package csv

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waste-stats/domain/waste"
)

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteAllCSVs(t *testing.T) {
	records, _ := ParseWaste(sheet(
		sheetRow("06-Jan-2025", 1000, 600, 400, 10, 300, 200, ""),
		sheetRow("05-Jan-2025", 500, 300, 200, 5, 100, 100, ""),
	))
	views := []PeriodView{
		{Period: waste.PeriodDay, Records: waste.FilterByPeriod(records, waste.PeriodDay)},
		{Period: waste.PeriodYear, Records: waste.FilterByPeriod(records, waste.PeriodYear)},
	}
	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, WriteAllCSVs(dir, views))

	summary := readAll(t, filepath.Join(dir, SummaryFile))
	require.Len(t, summary, 3)
	assert.Equal(t, []string{"day", "1", "1000"}, summary[1][:3])
	assert.Equal(t, []string{"year", "2", "1500"}, summary[2][:3])
	// 950 + 475 diverted out of 1500.
	assert.Equal(t, "1425", summary[2][7])

	breakdown := readAll(t, filepath.Join(dir, BreakdownFile))
	perView := 0
	for _, m := range waste.Materials {
		perView += len(m.Subcategories())
	}
	assert.Len(t, breakdown, 1+2*perView)
	assert.Equal(t, []string{"day", "plastic", "Bags/Sacks", "10"}, breakdown[1][:4])

	overview := readAll(t, filepath.Join(dir, OverviewFile))
	require.Len(t, overview, 3)
	assert.Equal(t, "05-Jan-2025", overview[1][0])
	assert.Equal(t, "25", overview[1][2])
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteRowsReportsFlushErrors(t *testing.T) {
	err := writeRows(failingWriter{}, func(w *csv.Writer) error {
		return w.Write([]string{"period", "days"})
	})
	assert.EqualError(t, err, "disk full")
}

func TestWriteSummaryCSVMissingDir(t *testing.T) {
	err := WriteSummaryCSV(filepath.Join(t.TempDir(), "missing", SummaryFile), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
