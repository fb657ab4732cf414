package csv

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"waste-stats/domain/waste"
)

// Output file names written by WriteAllCSVs.
const (
	SummaryFile   = "summary.csv"
	BreakdownFile = "breakdown.csv"
	OverviewFile  = "overview.csv"
)

// PeriodView is one period selection with the records it keeps.
type PeriodView struct {
	Period  waste.Period
	Records []waste.Record
}

// WriteAllCSVs writes the summary, breakdown and overview outputs into dir.
// The overview is written for the widest view (the last one).
func WriteAllCSVs(dir string, views []PeriodView) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := WriteSummaryCSV(filepath.Join(dir, SummaryFile), views); err != nil {
		return err
	}
	if err := WriteBreakdownCSV(filepath.Join(dir, BreakdownFile), views); err != nil {
		return err
	}
	var widest []waste.Record
	if len(views) > 0 {
		widest = views[len(views)-1].Records
	}
	return WriteOverviewCSV(filepath.Join(dir, OverviewFile), waste.Overview(widest))
}

func WriteSummaryCSV(path string, views []PeriodView) error {
	return writeFile(path, func(w *csv.Writer) error {
		headers := []string{
			"period", "days", "total_waste", "dry_waste", "wet_waste", "recycling", "composted",
			"diverted_from_landfill", "residual_to_landfill", "landfill_diversion_rate",
			"segregation_efficiency", "recycling_efficiency", "compost_produced", "methane_reduction",
		}
		if err := w.Write(headers); err != nil {
			return err
		}
		for _, v := range views {
			t := waste.Summarize(v.Records)
			row := []string{
				string(v.Period),
				strconv.Itoa(t.Count),
				formatNumber(t.TotalWaste),
				formatNumber(t.DryWaste),
				formatNumber(t.WetWaste),
				formatNumber(t.Recycling),
				formatNumber(t.Composted),
				formatNumber(t.DivertedFromLandfill),
				formatNumber(t.ResidualToLandfill),
				formatNumber(t.LandfillDiversionRate),
				formatNumber(t.SegregationEfficiency),
				formatNumber(t.RecyclingEfficiency),
				formatNumber(t.CompostProduced),
				formatNumber(t.MethaneReduction),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func WriteBreakdownCSV(path string, views []PeriodView) error {
	return writeFile(path, func(w *csv.Writer) error {
		if err := w.Write([]string{"period", "material", "subcategory", "value", "percent", "color"}); err != nil {
			return err
		}
		for _, v := range views {
			for _, m := range waste.Materials {
				for _, s := range waste.Breakdown(v.Records, m) {
					row := []string{string(v.Period), string(m), s.Name, formatNumber(s.Value), formatNumber(s.Percent), s.Color}
					if err := w.Write(row); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
}

func WriteOverviewCSV(path string, points []waste.OverviewPoint) error {
	return writeFile(path, func(w *csv.Writer) error {
		if err := w.Write([]string{"date", "label", "plastic", "paper", "glass", "metal", "ewaste", "others"}); err != nil {
			return err
		}
		for _, p := range points {
			row := []string{
				p.Date,
				p.Label,
				formatNumber(p.Plastic),
				formatNumber(p.Paper),
				formatNumber(p.Glass),
				formatNumber(p.Metal),
				formatNumber(p.EWaste),
				formatNumber(p.Others),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeFile creates path and fills it through a csv.Writer. Flush and
// close errors are reported.
func writeFile(path string, fill func(w *csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeRows(f, fill); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeRows(dst io.Writer, fill func(w *csv.Writer) error) error {
	w := csv.NewWriter(dst)
	if err := fill(w); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
