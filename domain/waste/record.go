package waste

import (
	"errors"
	"fmt"
	"strings"

	lo "github.com/samber/lo"
)

// Record is one calendar day of waste-collection observations plus the
// metrics derived from it. Records are built once per source row and
// treated as values afterwards.
type Record struct {
	Date       string     `json:"date"`
	TotalWaste float64    `json:"totalWaste"`
	DryWaste   float64    `json:"dryWaste"`
	WetWaste   float64    `json:"wetWaste"`
	Plastic    Plastic    `json:"plastic"`
	Paper      Paper      `json:"paper"`
	Glass      Glass      `json:"glass"`
	Metal      Metal      `json:"metal"`
	Textiles   float64    `json:"textiles"`
	EWaste     EWaste     `json:"ewaste"`
	Others     OtherWaste `json:"others"`
	Recycling  float64    `json:"recycling"`
	Composted  float64    `json:"composted"`

	Derived

	Remarks string `json:"remarks"`
}

type Plastic struct {
	Bags        float64 `json:"bags"`
	PetBottles  float64 `json:"petBottles"`
	HDPEBottles float64 `json:"hdpeBottles"`
	Polythene   float64 `json:"polythene"`
	Others      float64 `json:"others"`
}

type Paper struct {
	Thermocol   float64 `json:"thermocol"`
	Newspaper   float64 `json:"newspaper"`
	Carton      float64 `json:"cartoon"`
	NormalPaper float64 `json:"normalPaper"`
	Cardboard   float64 `json:"cardboard"`
	Others      float64 `json:"others"`
}

type Glass struct {
	WhiteGrades float64 `json:"whiteGrades"`
	Others      float64 `json:"others"`
}

type Metal struct {
	AluminumCans         float64 `json:"aluminumCans"`
	FoodPackingContainer float64 `json:"foodPackingContainer"`
	Others               float64 `json:"others"`
}

type EWaste struct {
	Batteries float64 `json:"batteries"`
	Charger   float64 `json:"charger"`
	Lighting  float64 `json:"lighting"`
	Others    float64 `json:"others"`
}

// OtherWaste is the "others" material group (medical and miscellaneous).
type OtherWaste struct {
	ExpiredMedicines   float64 `json:"expiredMedicines"`
	MedicinesPackaging float64 `json:"medicinesPackaging"`
	Thermometers       float64 `json:"thermometers"`
	Others             float64 `json:"others"`
}

// Material identifies one of the six dry-waste material groups.
type Material string

const (
	MaterialPlastic Material = "plastic"
	MaterialPaper   Material = "paper"
	MaterialGlass   Material = "glass"
	MaterialMetal   Material = "metal"
	MaterialEWaste  Material = "ewaste"
	MaterialOthers  Material = "others"
)

// Materials lists every material in display order.
var Materials = []Material{MaterialPlastic, MaterialPaper, MaterialGlass, MaterialMetal, MaterialEWaste, MaterialOthers}

var ErrUnknownMaterial = errors.New("unknown material")

// Subcategory describes one fixed slot of a material group.
type Subcategory struct {
	Key   string
	Label string
	Color string
}

const othersColor = "hsl(25, 95%, 53%)"

var catalog = map[Material][]Subcategory{
	MaterialPlastic: {
		{Key: "bags", Label: "Bags/Sacks", Color: "hsl(160, 84%, 39%)"},
		{Key: "petBottles", Label: "Pet Bottles", Color: "hsl(199, 89%, 48%)"},
		{Key: "hdpeBottles", Label: "HDPE Bottles", Color: "hsl(45, 93%, 58%)"},
		{Key: "polythene", Label: "Polythene", Color: "hsl(340, 82%, 52%)"},
		{Key: "others", Label: "Others", Color: othersColor},
	},
	MaterialPaper: {
		{Key: "thermocol", Label: "Thermocol", Color: "hsl(160, 84%, 39%)"},
		{Key: "newspaper", Label: "Newspaper", Color: "hsl(45, 93%, 58%)"},
		{Key: "cartoon", Label: "Carton", Color: "hsl(35, 90%, 55%)"},
		{Key: "normalPaper", Label: "Normal Paper", Color: "hsl(55, 88%, 55%)"},
		{Key: "cardboard", Label: "Cardboard", Color: "hsl(40, 80%, 50%)"},
		{Key: "others", Label: "Others", Color: othersColor},
	},
	MaterialGlass: {
		{Key: "whiteGrades", Label: "White Grades", Color: "hsl(199, 89%, 48%)"},
		{Key: "others", Label: "Others", Color: othersColor},
	},
	MaterialMetal: {
		{Key: "aluminumCans", Label: "Aluminum Cans", Color: "hsl(220, 70%, 55%)"},
		{Key: "foodPackingContainer", Label: "Food Packing Container", Color: "hsl(210, 60%, 50%)"},
		{Key: "others", Label: "Others", Color: othersColor},
	},
	MaterialEWaste: {
		{Key: "batteries", Label: "Batteries", Color: "hsl(280, 65%, 60%)"},
		{Key: "charger", Label: "Charger", Color: "hsl(270, 60%, 55%)"},
		{Key: "lighting", Label: "Lighting", Color: "hsl(290, 55%, 50%)"},
		{Key: "others", Label: "Others", Color: othersColor},
	},
	MaterialOthers: {
		{Key: "expiredMedicines", Label: "Expired Medicines", Color: "hsl(160, 60%, 45%)"},
		{Key: "medicinesPackaging", Label: "Medicines Packaging", Color: "hsl(150, 55%, 40%)"},
		{Key: "thermometers", Label: "Thermometers", Color: "hsl(170, 50%, 50%)"},
		{Key: "others", Label: "Others", Color: othersColor},
	},
}

var materialLabels = map[Material]string{
	MaterialPlastic: "Plastic",
	MaterialPaper:   "Paper",
	MaterialGlass:   "Glass",
	MaterialMetal:   "Metal",
	MaterialEWaste:  "E-Waste",
	MaterialOthers:  "Others",
}

var materialColors = map[Material]string{
	MaterialPlastic: "hsl(160, 84%, 39%)",
	MaterialPaper:   "hsl(45, 93%, 58%)",
	MaterialGlass:   "hsl(199, 89%, 48%)",
	MaterialMetal:   "hsl(220, 70%, 55%)",
	MaterialEWaste:  "hsl(280, 65%, 60%)",
	MaterialOthers:  othersColor,
}

// Subcategories returns the fixed subcategory catalog of m in declaration order.
func (m Material) Subcategories() []Subcategory {
	return append([]Subcategory(nil), catalog[m]...)
}

func (m Material) Label() string { return materialLabels[m] }

func (m Material) Color() string { return materialColors[m] }

// ParseMaterial accepts keys and display names ("Plastic", "E-Waste", "ewaste").
func ParseMaterial(s string) (Material, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "", "_", "", " ", "").Replace(norm)
	if m, ok := lo.Find(Materials, func(m Material) bool { return string(m) == norm }); ok {
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMaterial, s)
}

// Amounts returns the subcategory masses of m in catalog order.
func (r Record) Amounts(m Material) []float64 {
	switch m {
	case MaterialPlastic:
		p := r.Plastic
		return []float64{p.Bags, p.PetBottles, p.HDPEBottles, p.Polythene, p.Others}
	case MaterialPaper:
		p := r.Paper
		return []float64{p.Thermocol, p.Newspaper, p.Carton, p.NormalPaper, p.Cardboard, p.Others}
	case MaterialGlass:
		return []float64{r.Glass.WhiteGrades, r.Glass.Others}
	case MaterialMetal:
		mt := r.Metal
		return []float64{mt.AluminumCans, mt.FoodPackingContainer, mt.Others}
	case MaterialEWaste:
		e := r.EWaste
		return []float64{e.Batteries, e.Charger, e.Lighting, e.Others}
	case MaterialOthers:
		o := r.Others
		return []float64{o.ExpiredMedicines, o.MedicinesPackaging, o.Thermometers, o.Others}
	}
	return nil
}

// MaterialTotal is the sum of the subcategories of m.
func (r Record) MaterialTotal(m Material) float64 {
	return lo.Sum(r.Amounts(m))
}
