package waste

import (
	"math"

	lo "github.com/samber/lo"
)

// Emission-factor model and fixed rates used by every derived metric.
const (
	ResidualRate    = 0.05 // contamination share always sent to landfill
	CompostYield    = 0.20
	OrganicFraction = 0.6
	MethaneFactor   = 0.5
	MethaneCO2Equiv = 28.0 // 100-year GWP of methane

	kgPerTonne      = 1000.0
	percent         = 100.0
	diversionFactor = 1 - ResidualRate
)

// Derived holds the metrics computed from a record's base quantities.
type Derived struct {
	CompostProduced       float64 `json:"compostProduced"`
	MethaneReduction      float64 `json:"methaneReduction"`
	DivertedFromLandfill  float64 `json:"divertedFromLandfill"`
	ResidualToLandfill    float64 `json:"residualToLandfill"`
	RecyclingEfficiency   float64 `json:"recyclingEfficiency"`
	LandfillDiversionRate float64 `json:"landfillDiversionRate"`
	SegregationEfficiency float64 `json:"segregationEfficiency"`
}

// Round rounds half up to the nearest integer.
func Round(x float64) float64 { return math.Floor(x + 0.5) }

// Derive computes the per-row metrics from total, recycled and composted mass.
//
// RecyclingEfficiency is recycling/recycling and therefore only ever 0 or
// 100; the source data has no separate usable-output figure. It is kept
// as is so historical reports stay comparable.
func Derive(totalWaste, recycling, composted float64) Derived {
	diverted := Round(totalWaste * diversionFactor)
	return derive(totalWaste, recycling, composted, diverted)
}

// derive applies the ratio formulas to an already known diverted mass.
func derive(totalWaste, recycling, composted, diverted float64) Derived {
	d := Derived{
		DivertedFromLandfill: diverted,
		ResidualToLandfill:   totalWaste - diverted,
		CompostProduced:      Round(composted * CompostYield),
		MethaneReduction:     Round(totalWaste / kgPerTonne * (OrganicFraction * MethaneFactor) * MethaneCO2Equiv),
	}
	if recycling > 0 {
		d.RecyclingEfficiency = Round(recycling / recycling * percent)
	}
	if totalWaste > 0 {
		d.LandfillDiversionRate = Round(diverted / totalWaste * percent)
		d.SegregationEfficiency = Round((recycling + composted) / totalWaste * percent)
	}
	return d
}

// WithDerived returns r with its Derived block recomputed from base quantities.
func (r Record) WithDerived() Record {
	r.Derived = Derive(r.TotalWaste, r.Recycling, r.Composted)
	return r
}

// Totals aggregates a record set. Ratios are re-derived from the summed
// base quantities, never averaged from per-row percentages.
type Totals struct {
	Count      int                  `json:"count"`
	TotalWaste float64              `json:"totalWaste"`
	DryWaste   float64              `json:"dryWaste"`
	WetWaste   float64              `json:"wetWaste"`
	Recycling  float64              `json:"recycling"`
	Composted  float64              `json:"composted"`
	Materials  map[Material]float64 `json:"materials"`

	Derived
}

// Summarize sums base quantities across records and derives the metrics.
func Summarize(records []Record) Totals {
	t := Totals{
		Count:      len(records),
		TotalWaste: lo.SumBy(records, func(r Record) float64 { return r.TotalWaste }),
		DryWaste:   lo.SumBy(records, func(r Record) float64 { return r.DryWaste }),
		WetWaste:   lo.SumBy(records, func(r Record) float64 { return r.WetWaste }),
		Recycling:  lo.SumBy(records, func(r Record) float64 { return r.Recycling }),
		Composted:  lo.SumBy(records, func(r Record) float64 { return r.Composted }),
		Materials:  make(map[Material]float64, len(Materials)),
	}
	for _, m := range Materials {
		t.Materials[m] = lo.SumBy(records, func(r Record) float64 { return r.MaterialTotal(m) })
	}
	diverted := lo.SumBy(records, func(r Record) float64 { return r.DivertedFromLandfill })
	t.Derived = derive(t.TotalWaste, t.Recycling, t.Composted, diverted)
	return t
}
