package report

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	lo "github.com/samber/lo"

	"waste-stats/domain/waste"
)

// Section names, in default report order.
const (
	SectionHeader     = "header"
	SectionSummary    = "summary-stats"
	SectionMethane    = "dry-waste-methane"
	SectionOverview   = "overview"
	SectionBreakdown  = "breakdown"
	SectionLandfill   = "landfill"
	SectionCollection = "collection"
	SectionTable      = "table"
)

var DefaultSections = []string{
	SectionHeader, SectionSummary, SectionMethane, SectionOverview, SectionBreakdown,
	SectionLandfill, SectionCollection, SectionTable,
}

var ErrUnknownSection = errors.New("unknown report section")

// Section is the renderer-independent content of one report block.
type Section struct {
	Name  string
	Title string
	Rows  []Row
}

// Row is a label/value line. With a Color it also carries a bar whose
// length is Fraction (0..1) of the full bar width.
type Row struct {
	Label    string
	Value    string
	Color    string
	Fraction float64
	Heading  bool
}

// Context is what every section builder sees. Period sets the
// granularity of trend sections.
type Context struct {
	Records   []waste.Record
	Label     string
	Period    waste.Period
	Generated time.Time
}

type builder func(Context) Section

var builders = map[string]builder{
	SectionHeader:     headerSection,
	SectionSummary:    summarySection,
	SectionMethane:    methaneSection,
	SectionOverview:   overviewSection,
	SectionBreakdown:  breakdownSection,
	SectionLandfill:   landfillSection,
	SectionCollection: collectionSection,
	SectionTable:      tableSection,
}

// BuildSections builds the named sections in order.
func BuildSections(names []string, c Context) ([]Section, error) {
	out := make([]Section, 0, len(names))
	for _, name := range names {
		b, ok := builders[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSection, name)
		}
		out = append(out, b(c))
	}
	return out, nil
}

func kg(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) + " kg" }

func co2e(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) + " kg CO2e" }

func pct(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) + "%" }

func share(v, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return v / total
}

func headerSection(c Context) Section {
	return Section{
		Name:  SectionHeader,
		Title: "Waste Management Report",
		Rows: []Row{
			{Label: "Report period", Value: c.Label},
			{Label: "Days covered", Value: strconv.Itoa(len(c.Records))},
			{Label: "Generated", Value: waste.FormatDate(c.Generated)},
		},
	}
}

func summarySection(c Context) Section {
	t := waste.Summarize(c.Records)
	return Section{
		Name:  SectionSummary,
		Title: "Summary",
		Rows: []Row{
			{Label: "Total waste collected", Value: kg(t.TotalWaste)},
			{Label: "Dry waste", Value: kg(t.DryWaste)},
			{Label: "Wet waste", Value: kg(t.WetWaste)},
			{Label: "Sent for recycling", Value: kg(t.Recycling)},
			{Label: "Composted", Value: kg(t.Composted)},
			{Label: "Compost produced", Value: kg(t.CompostProduced)},
			{Label: "Diverted from landfill", Value: kg(t.DivertedFromLandfill)},
			{Label: "Residual to landfill", Value: kg(t.ResidualToLandfill)},
			{Label: "Landfill diversion rate", Value: pct(t.LandfillDiversionRate)},
			{Label: "Segregation efficiency", Value: pct(t.SegregationEfficiency)},
			{Label: "Recycling efficiency", Value: pct(t.RecyclingEfficiency)},
			{Label: "Methane reduction", Value: co2e(t.MethaneReduction)},
		},
	}
}

func methaneSection(c Context) Section {
	points := waste.MethaneTrend(c.Records, c.Period)
	peak := lo.Max(lo.Map(points, func(p waste.MethanePoint, _ int) float64 { return p.MethaneReduction }))
	t := waste.Summarize(c.Records)
	rows := []Row{
		{Label: "Dry waste", Value: kg(t.DryWaste)},
		{Label: "Methane reduction", Value: co2e(t.MethaneReduction), Heading: true},
	}
	for _, p := range points {
		rows = append(rows, Row{Label: p.Label, Value: co2e(p.MethaneReduction), Color: "hsl(160, 84%, 39%)", Fraction: share(p.MethaneReduction, peak)})
	}
	return Section{Name: SectionMethane, Title: "Dry Waste & Methane Reduction", Rows: rows}
}

func overviewSection(c Context) Section {
	points := waste.Overview(c.Records)
	sums := lo.Map(points, func(p waste.OverviewPoint, _ int) float64 {
		return p.Plastic + p.Paper + p.Glass + p.Metal + p.EWaste + p.Others
	})
	peak := lo.Max(sums)
	rows := make([]Row, 0, len(points)+len(waste.Materials)+1)
	for _, s := range waste.CategoryTotals(c.Records) {
		rows = append(rows, Row{Label: s.Name, Value: kg(s.Value), Color: s.Color, Fraction: s.Percent / 100})
	}
	rows = append(rows, Row{Label: "Dry waste per day", Heading: true})
	for i, p := range points {
		rows = append(rows, Row{Label: p.Label, Value: kg(sums[i]), Color: waste.MaterialPlastic.Color(), Fraction: share(sums[i], peak)})
	}
	return Section{Name: SectionOverview, Title: "Waste Overview", Rows: rows}
}

func breakdownSection(c Context) Section {
	var rows []Row
	for _, m := range waste.Materials {
		rows = append(rows, Row{Label: m.Label(), Value: kg(lo.SumBy(c.Records, func(r waste.Record) float64 { return r.MaterialTotal(m) })), Heading: true})
		for _, s := range waste.Breakdown(c.Records, m) {
			rows = append(rows, Row{Label: s.Name, Value: kg(s.Value), Color: s.Color, Fraction: s.Percent / 100})
		}
	}
	return Section{Name: SectionBreakdown, Title: "Category Breakdown", Rows: rows}
}

func landfillSection(c Context) Section {
	t := waste.Summarize(c.Records)
	total := t.ResidualToLandfill + t.DivertedFromLandfill
	return Section{
		Name:  SectionLandfill,
		Title: "Landfill Metrics",
		Rows: []Row{
			{Label: "To Landfill", Value: kg(t.ResidualToLandfill), Color: "hsl(0, 65%, 50%)", Fraction: share(t.ResidualToLandfill, total)},
			{Label: "Diverted", Value: kg(t.DivertedFromLandfill), Color: "hsl(220, 70%, 55%)", Fraction: share(t.DivertedFromLandfill, total)},
		},
	}
}

func collectionSection(c Context) Section {
	t := waste.Summarize(c.Records)
	total := t.TotalWaste + t.Recycling + t.Composted
	return Section{
		Name:  SectionCollection,
		Title: "Waste Collection",
		Rows: []Row{
			{Label: "Total Waste", Value: kg(t.TotalWaste), Color: "hsl(199, 89%, 48%)", Fraction: share(t.TotalWaste, total)},
			{Label: "Recycled", Value: kg(t.Recycling), Color: "hsl(160, 84%, 39%)", Fraction: share(t.Recycling, total)},
			{Label: "Composted", Value: kg(t.Composted), Color: "hsl(45, 93%, 58%)", Fraction: share(t.Composted, total)},
		},
	}
}

func tableSection(c Context) Section {
	rows := []Row{{Label: "Date", Value: "Total / Remarks", Heading: true}}
	for _, r := range waste.SortByDateDesc(c.Records) {
		value := kg(r.TotalWaste)
		if r.Remarks != "" {
			value += "  " + r.Remarks
		}
		rows = append(rows, Row{Label: r.Date, Value: value})
	}
	return Section{Name: SectionTable, Title: "Daily Records", Rows: rows}
}
