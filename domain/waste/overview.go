package waste

import (
	"strings"

	lo "github.com/samber/lo"
)

// OverviewPoint is one day of the stacked material overview chart.
type OverviewPoint struct {
	Date    string  `json:"fullDate"`
	Label   string  `json:"date"`
	Plastic float64 `json:"plastic"`
	Paper   float64 `json:"paper"`
	Glass   float64 `json:"glass"`
	Metal   float64 `json:"metal"`
	EWaste  float64 `json:"ewaste"`
	Others  float64 `json:"others"`
}

// Overview returns one point per record, oldest first.
func Overview(records []Record) []OverviewPoint {
	sorted := lo.Reverse(SortByDateDesc(records))
	return lo.Map(sorted, func(r Record, _ int) OverviewPoint {
		return OverviewPoint{
			Date:    r.Date,
			Label:   shortLabel(r.Date),
			Plastic: r.MaterialTotal(MaterialPlastic),
			Paper:   r.MaterialTotal(MaterialPaper),
			Glass:   r.MaterialTotal(MaterialGlass),
			Metal:   r.MaterialTotal(MaterialMetal),
			EWaste:  r.MaterialTotal(MaterialEWaste),
			Others:  r.MaterialTotal(MaterialOthers),
		}
	})
}

// shortLabel turns "06-Jan-2025" into "06 Jan".
func shortLabel(date string) string {
	parts := strings.Split(date, "-")
	if len(parts) < 2 {
		return date
	}
	return parts[0] + " " + parts[1]
}
