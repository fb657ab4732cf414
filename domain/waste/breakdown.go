package waste

import (
	lo "github.com/samber/lo"
)

// Slice is one display-ready entry of a breakdown chart.
type Slice struct {
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Color   string  `json:"color"`
	Percent float64 `json:"percent"`
}

// Breakdown sums each subcategory of m across records. Entries follow the
// catalog order of m, one per subcategory, whatever their values.
func Breakdown(records []Record, m Material) []Slice {
	subs := m.Subcategories()
	sums := make([]float64, len(subs))
	for _, r := range records {
		for i, v := range r.Amounts(m) {
			sums[i] += v
		}
	}
	entries := lo.Map(subs, func(s Subcategory, i int) Slice {
		return Slice{Name: s.Label, Value: sums[i], Color: s.Color}
	})
	return withPercent(lo.UniqBy(entries, func(s Slice) string { return s.Name }))
}

// CategoryTotals is the material-level pie: one entry per material.
func CategoryTotals(records []Record) []Slice {
	entries := lo.Map(Materials, func(m Material, _ int) Slice {
		return Slice{
			Name:  m.Label(),
			Value: lo.SumBy(records, func(r Record) float64 { return r.MaterialTotal(m) }),
			Color: m.Color(),
		}
	})
	return withPercent(entries)
}

func withPercent(entries []Slice) []Slice {
	total := lo.SumBy(entries, func(s Slice) float64 { return s.Value })
	if total <= 0 {
		return entries
	}
	for i := range entries {
		entries[i].Percent = entries[i].Value / total * percent
	}
	return entries
}
