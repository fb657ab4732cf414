package xlsx

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"waste-stats/domain/waste"
)

var fixedNow = time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC)

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", name, v))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func importer(t *testing.T, overrides map[string][]string) *Importer {
	t.Helper()
	im, err := New(overrides)
	require.NoError(t, err)
	im.Now = func() time.Time { return fixedNow }
	return im
}

func TestReadSingleHeaderRow(t *testing.T) {
	buf := workbook(t, [][]any{
		{"Date", "Total Waste (kg)", "Wet Waste", "Bags/Sacks", "PET Bottles", "Glass", "Glass Others", "Waste sent for Recycling (kg)", "Composted (kg)", "Remarks / Observations"},
		{45663, 1000, 400, 30, 20, 5, 1, 300, 200, " rainy day "},
		{"07-Jan-2025", nil, nil, 10, nil, nil, nil, 60, 40, nil},
		{nil, nil, nil, 5, 5, nil, nil, nil, nil, nil},
		{"not a date", 10, nil, nil, nil, nil, nil, nil, nil, nil},
	})

	records, err := importer(t, nil).Read(buf)
	require.NoError(t, err)
	require.Len(t, records, 3)

	a := records[0]
	assert.Equal(t, "06-Jan-2025", a.Date)
	assert.Equal(t, 1000.0, a.TotalWaste)
	assert.Equal(t, 600.0, a.DryWaste, "dry falls back to total minus wet")
	assert.Equal(t, 400.0, a.WetWaste)
	assert.Equal(t, waste.Plastic{Bags: 30, PetBottles: 20}, a.Plastic)
	assert.Equal(t, waste.Glass{WhiteGrades: 5, Others: 1}, a.Glass)
	assert.Equal(t, "rainy day", a.Remarks)
	assert.Equal(t, waste.Derive(1000, 300, 200), a.Derived)

	b := records[1]
	assert.Equal(t, 100.0, b.TotalWaste, "total falls back to recycling plus composted")
	assert.Equal(t, 100.0, b.DryWaste)
	assert.Equal(t, 30.0, b.WetWaste, "wet falls back to 30% of total")

	c := records[2]
	assert.Equal(t, "09-Mar-2025", c.Date, "empty date uses today")
	assert.Equal(t, 10.0, c.TotalWaste, "total falls back to the material sum")
}

func TestReadCategoryHeaderRow(t *testing.T) {
	buf := workbook(t, [][]any{
		{"Day", "Total Waste", "Plastic", nil, "Glass", nil, "Recycling", "Composted"},
		{nil, nil, "Bags/Sacks", "Others", "White Grades", "Others", nil, nil},
		{"06-Jan-2025", 500, 7, 3, 11, 2, 100, 50},
	})

	records, err := importer(t, map[string][]string{FieldDate: {"Day"}}).Read(buf)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "06-Jan-2025", r.Date)
	assert.Equal(t, 500.0, r.TotalWaste)
	assert.Equal(t, waste.Plastic{Bags: 7, Others: 3}, r.Plastic)
	assert.Equal(t, waste.Glass{WhiteGrades: 11, Others: 2}, r.Glass)
	assert.Equal(t, 100.0, r.Recycling)
	assert.Equal(t, 50.0, r.Composted)
}

func TestResolvePrefersExactMatches(t *testing.T) {
	names := [][]string{{"Glass Others"}, {"Glass"}, {"Thermocol"}, {"Paper Others (kg)"}}
	cols := resolve(defaultAliases, names)
	assert.Equal(t, 1, cols["glass.whiteGrades"])
	assert.Equal(t, 0, cols["glass.others"])
	assert.Equal(t, 2, cols["paper.thermocol"])
	assert.Equal(t, 3, cols["paper.others"], "substring match")
	_, ok := cols["plastic.others"]
	assert.False(t, ok)
}

func TestReadEmptyWorkbook(t *testing.T) {
	_, err := importer(t, nil).Read(workbook(t, [][]any{{"Date", "Total Waste"}}))
	assert.ErrorIs(t, err, ErrNoData)
}

func TestReadNotAWorkbook(t *testing.T) {
	_, err := importer(t, nil).Read(bytes.NewBufferString("Date,Total\n"))
	assert.Error(t, err)
}

func TestNewRejectsUnknownOverride(t *testing.T) {
	_, err := New(map[string][]string{"weight": {"Weight"}})
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestReadTextAmountsWithUnits(t *testing.T) {
	buf := workbook(t, [][]any{
		{"Date", "Total Waste", "Wet Waste", "Recycling", "Composted"},
		{"10-Mar-2025", "250 kg", "100kg", "n/a", "40 (approx)"},
	})
	records, err := importer(t, nil).Read(buf)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 250.0, records[0].TotalWaste)
	assert.Equal(t, 100.0, records[0].WetWaste)
	assert.Equal(t, 150.0, records[0].DryWaste)
	assert.Zero(t, records[0].Recycling)
	assert.Equal(t, 40.0, records[0].Composted)
}
