package csv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waste-stats/domain/waste"
)

// sheetRow builds a full-width row: date, total, dry, wet, the 24 material
// slots set to fill, then recycling, composted and remarks.
func sheetRow(date string, total, dry, wet, fill, recycling, composted float64, remarks string) string {
	cells := []string{date, fmt.Sprint(total), fmt.Sprint(dry), fmt.Sprint(wet)}
	for i := 0; i < 24; i++ {
		cells = append(cells, fmt.Sprint(fill))
	}
	cells = append(cells, fmt.Sprint(recycling), fmt.Sprint(composted), remarks)
	return strings.Join(cells, ",")
}

func sheet(rows ...string) string {
	return strings.Join(append([]string{strings.Join(header, ",")}, rows...), "\n")
}

func TestSplitLineQuoteToggle(t *testing.T) {
	got := splitLine(` 06-Jan-2025 ,"1,000", 2 ,"rain, heavy"`)
	assert.Equal(t, []string{"06-Jan-2025", "1,000", "2", "rain, heavy"}, got)
	assert.Equal(t, []string{"a", "", "b"}, splitLine("a,,b"))
	assert.Equal(t, []string{""}, splitLine(""))
}

func TestParseWasteReferenceRow(t *testing.T) {
	records, stats := ParseWaste(sheet(sheetRow("06-Jan-2025", 1000, 600, 400, 10, 300, 200, "")))
	require.Len(t, records, 1)
	assert.Equal(t, 1, stats.Accepted)

	r := records[0]
	assert.Equal(t, "06-Jan-2025", r.Date)
	assert.Equal(t, 1000.0, r.TotalWaste)
	assert.Equal(t, 950.0, r.DivertedFromLandfill)
	assert.Equal(t, 50.0, r.ResidualToLandfill)
	assert.Equal(t, 95.0, r.LandfillDiversionRate)
	assert.Equal(t, 40.0, r.CompostProduced)
	assert.Equal(t, 8.0, r.MethaneReduction)
	assert.Equal(t, 50.0, r.MaterialTotal(waste.MaterialPlastic))
	assert.Zero(t, r.Textiles)
}

func TestParseWasteDropsShortRows(t *testing.T) {
	short := strings.Join(strings.Split(sheetRow("01-Jan-2025", 1, 1, 1, 1, 1, 1, ""), ",")[:25], ",")
	var rows []string
	for i := 0; i < 40; i++ {
		if i%13 == 5 {
			rows = append(rows, short)
			continue
		}
		rows = append(rows, sheetRow(fmt.Sprintf("%02d-Jan-2025", i%28+1), float64(i), 0, 0, 0, 0, 0, ""))
	}
	records, stats := ParseWaste(sheet(rows...))
	assert.Len(t, records, 37)
	assert.Equal(t, ParseStats{Lines: 40, Accepted: 37, Short: 3}, stats)
}

func TestParseWastePreservesSourceOrder(t *testing.T) {
	text := sheet(
		sheetRow("03-Jan-2025", 3, 0, 0, 0, 0, 0, ""),
		sheetRow("01-Jan-2025", 1, 0, 0, 0, 0, 0, ""),
		sheetRow("02-Jan-2025", 2, 0, 0, 0, 0, 0, ""),
	)
	records, _ := ParseWaste(strings.ReplaceAll(text, "\n", "\r\n"))
	require.Len(t, records, 3)
	assert.Equal(t, []float64{3, 1, 2}, []float64{records[0].TotalWaste, records[1].TotalWaste, records[2].TotalWaste})
}

func TestParseWasteRemarksAndBadCells(t *testing.T) {
	row := sheetRow("06-Jan-2025", 0, 0, 0, 0, 0, 0, `"rain, then sun"`)
	row = strings.Replace(row, "06-Jan-2025,0", "06-Jan-2025,abc", 1)
	records, _ := ParseWaste(sheet(row, "06-Jan-2025,5"))
	require.Len(t, records, 1)
	assert.Equal(t, "rain, then sun", records[0].Remarks)
	assert.Zero(t, records[0].TotalWaste)
	assert.Zero(t, records[0].LandfillDiversionRate)
}

func TestParseWasteReadsLeadingNumber(t *testing.T) {
	row := sheetRow("06-Jan-2025", 0, 0, 0, 0, 0, 0, "")
	row = strings.Replace(row, "06-Jan-2025,0", "06-Jan-2025,12 kg", 1)
	records, _ := ParseWaste(sheet(row))
	require.Len(t, records, 1)
	assert.Equal(t, 12.0, records[0].TotalWaste)
	assert.Equal(t, 11.0, records[0].DivertedFromLandfill)
}

func TestParseWasteRemarksSlotIsOptional(t *testing.T) {
	row := sheetRow("06-Jan-2025", 10, 0, 0, 0, 0, 0, "")
	row = strings.TrimSuffix(row, ",")
	records, stats := ParseWaste(sheet(row))
	require.Len(t, records, 1, "30 columns are enough")
	assert.Equal(t, 1, stats.Accepted)
	assert.Empty(t, records[0].Remarks)
}

func TestParseWasteSkipsInvalidDates(t *testing.T) {
	records, stats := ParseWaste(sheet(
		sheetRow("", 1, 0, 0, 0, 0, 0, ""),
		sheetRow("31-Feb-2025", 1, 0, 0, 0, 0, 0, ""),
		sheetRow("01-Mar-2025", 1, 0, 0, 0, 0, 0, ""),
	))
	assert.Len(t, records, 1)
	assert.Equal(t, 2, stats.Failed)
}

func TestParseWasteEmpty(t *testing.T) {
	records, stats := ParseWaste(strings.Join(header, ","))
	assert.Empty(t, records)
	assert.True(t, stats.Empty())

	_, stats = ParseWaste("")
	assert.True(t, stats.Empty())
}

func TestSnapshotRoundTrip(t *testing.T) {
	in, _ := ParseWaste(sheet(
		sheetRow("06-Jan-2025", 1000, 600, 400, 1.5, 300, 200, `"quoted, remark"`),
		sheetRow("07-01-2025", 12, 2, 10, 0.25, 0, 3, "plain"),
	))
	require.Len(t, in, 2)

	path := filepath.Join(t.TempDir(), "nested", "waste.csv")
	require.NoError(t, WriteSnapshot(path, in))

	out, stats, err := ReadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Accepted)
	assert.Equal(t, in, out)
}

func TestSnapshotKeepsMultiLineRemarks(t *testing.T) {
	a := waste.Record{Date: "06-Jan-2025", TotalWaste: 100, Remarks: "truck late\nbins overflowing"}.WithDerived()
	b := waste.Record{Date: "07-Jan-2025", TotalWaste: 80, Remarks: "driver said \"no pickup\",\nreturned at 5"}.WithDerived()
	c := waste.Record{Date: "08-Jan-2025", TotalWaste: 60}.WithDerived()
	in := []waste.Record{a, b, c}

	path := filepath.Join(t.TempDir(), "waste.csv")
	require.NoError(t, WriteSnapshot(path, in))

	out, stats, err := ReadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, ParseStats{Lines: 3, Accepted: 3}, stats)
	assert.Equal(t, in, out)
}

func TestReadSnapshotCountsBadRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "waste.csv")
	body := sheet(
		sheetRow("06-Jan-2025", 100, 60, 40, 1, 30, 20, "ok"),
		"07-Jan-2025,1,2",
		sheetRow("not a date", 100, 60, 40, 1, 30, 20, ""),
	)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	out, stats, err := ReadSnapshot(path)
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, ParseStats{Lines: 3, Accepted: 1, Short: 1, Failed: 1}, stats)
}

func TestReadSnapshotErrors(t *testing.T) {
	_, _, err := ReadSnapshot(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(header, ",")), 0o644))
	_, _, err = ReadSnapshot(path)
	assert.Error(t, err)
}

func TestSnapshotSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "waste.csv")
	in, _ := ParseWaste(sheet(sheetRow("06-Jan-2025", 100, 60, 40, 1, 30, 20, "")))
	require.NoError(t, WriteSnapshot(path, in))

	src := Snapshot{Path: path}
	assert.Equal(t, "snapshot:"+path, src.Name())
	got, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, in, got)
}
