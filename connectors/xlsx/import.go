package xlsx

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	lo "github.com/samber/lo"
	"github.com/xuri/excelize/v2"

	"waste-stats/domain/waste"
)

var (
	ErrNoData       = errors.New("no data found in the workbook")
	ErrUnknownField = errors.New("unknown workbook field")
)

// wetShare is the wet fraction assumed when a row has neither wet nor dry mass.
const wetShare = 0.3

// Importer reads collection workbooks. Header aliases are resolved once
// per workbook into a column index per field.
type Importer struct {
	aliases []alias
	// Now dates rows that have an empty date cell.
	Now func() time.Time
}

// New returns an importer using the built-in aliases, with overrides
// replacing the alias list of the fields they name.
func New(overrides map[string][]string) (*Importer, error) {
	known := lo.SliceToMap(defaultAliases, func(a alias) (string, bool) { return a.field, true })
	for field := range overrides {
		if !known[field] {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
		}
	}
	aliases := lo.Map(defaultAliases, func(a alias, _ int) alias {
		if h, ok := overrides[a.field]; ok && len(h) > 0 {
			return alias{field: a.field, headers: h}
		}
		return a
	})
	return &Importer{aliases: aliases, Now: time.Now}, nil
}

// Read parses the first sheet of the workbook in r.
func (im *Importer) Read(r io.Reader) ([]waste.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoData
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return im.parseRows(rows)
}

func (im *Importer) parseRows(rows [][]string) ([]waste.Record, error) {
	if len(rows) < 2 {
		return nil, ErrNoData
	}
	names, body := headerNames(rows)
	cols := resolve(im.aliases, names)
	slog.Info("xlsx.columns", "resolved", len(cols), "fields", len(im.aliases))

	var out []waste.Record
	for i, row := range body {
		if lo.EveryBy(row, func(c string) bool { return strings.TrimSpace(c) == "" }) {
			continue
		}
		rec, err := im.buildRecord(row, cols)
		if err != nil {
			slog.Warn("xlsx.row.failed", "row", i+1, "err", err)
			continue
		}
		out = append(out, rec)
	}
	if len(out) == 0 {
		return nil, ErrNoData
	}
	return out, nil
}

// headerNames returns the candidate names of every column and the data
// rows. With a category row on top, a column is known by its sub header
// and by "<category> <sub header>", the category carried across merged cells.
func headerNames(rows [][]string) ([][]string, [][]string) {
	first := rows[0]
	hasSubHeaders := lo.SomeBy(first, func(h string) bool {
		return lo.SomeBy(subHeaderMarkers, func(m string) bool { return strings.Contains(h, m) })
	})
	twoRow := !hasSubHeaders && len(rows) > 2

	if !twoRow {
		return lo.Map(first, func(h string, _ int) []string { return []string{h} }), rows[1:]
	}
	sub := rows[1]
	width := max(len(first), len(sub))
	names := make([][]string, width)
	category := ""
	for i := 0; i < width; i++ {
		top, below := cell(first, i), cell(sub, i)
		if top != "" {
			category = top
		}
		switch {
		case below == "":
			names[i] = []string{top}
		case category != "":
			names[i] = []string{below, category + " " + below}
		default:
			names[i] = []string{below}
		}
	}
	return names, rows[2:]
}

// resolve maps each field to a column: an exact (case-insensitive) header
// match first for all fields, then a substring match for the rest. A
// column is claimed by at most one field.
func resolve(aliases []alias, names [][]string) map[string]int {
	cols := map[string]int{}
	claimed := map[int]bool{}
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

	find := func(headers []string, match func(key, name string) bool) (int, bool) {
		for _, h := range headers {
			name := norm(h)
			for i, candidates := range names {
				if claimed[i] {
					continue
				}
				for _, c := range candidates {
					if key := norm(c); key != "" && match(key, name) {
						return i, true
					}
				}
			}
		}
		return 0, false
	}
	passes := []func(key, name string) bool{
		func(key, name string) bool { return key == name },
		func(key, name string) bool { return strings.Contains(key, name) || strings.Contains(name, key) },
	}
	for _, match := range passes {
		for _, a := range aliases {
			if _, done := cols[a.field]; done {
				continue
			}
			if i, ok := find(a.headers, match); ok {
				cols[a.field] = i
				claimed[i] = true
			}
		}
	}
	return cols
}

func (im *Importer) buildRecord(row []string, cols map[string]int) (waste.Record, error) {
	get := func(field string) string {
		if i, ok := cols[field]; ok {
			return cell(row, i)
		}
		return ""
	}
	num := func(field string) float64 { return waste.ParseAmount(get(field)) }

	date, err := im.date(get(FieldDate))
	if err != nil {
		return waste.Record{}, err
	}
	var r waste.Record
	r.Date = date
	for field, slot := range materialSlots {
		*slot(&r) = num(field)
	}
	r.Textiles = num(FieldTextiles)
	r.Recycling = num(FieldRecycling)
	r.Composted = num(FieldComposted)
	r.Remarks = get(FieldRemarks)

	r.TotalWaste = num(FieldTotal)
	if r.TotalWaste == 0 {
		r.TotalWaste = r.Recycling + r.Composted
	}
	if r.TotalWaste == 0 {
		r.TotalWaste = lo.SumBy(waste.Materials, r.MaterialTotal)
	}
	wet := num(FieldWet)
	r.DryWaste = num(FieldDry)
	if r.DryWaste == 0 {
		r.DryWaste = r.TotalWaste - wet
	}
	r.WetWaste = wet
	if r.WetWaste == 0 {
		r.WetWaste = r.TotalWaste * wetShare
	}
	return r.WithDerived(), nil
}

// date accepts Excel serial dates and the textual formats of waste.ParseDate.
func (im *Importer) date(raw string) (string, error) {
	if raw == "" {
		return waste.FormatDate(im.Now()), nil
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return "", fmt.Errorf("date serial %v: %w", serial, err)
		}
		return waste.FormatDate(t), nil
	}
	if _, err := waste.ParseDate(raw); err != nil {
		return "", err
	}
	return raw, nil
}

var materialSlots = map[string]func(*waste.Record) *float64{
	"plastic.bags":               func(r *waste.Record) *float64 { return &r.Plastic.Bags },
	"plastic.petBottles":         func(r *waste.Record) *float64 { return &r.Plastic.PetBottles },
	"plastic.hdpeBottles":        func(r *waste.Record) *float64 { return &r.Plastic.HDPEBottles },
	"plastic.polythene":          func(r *waste.Record) *float64 { return &r.Plastic.Polythene },
	"plastic.others":             func(r *waste.Record) *float64 { return &r.Plastic.Others },
	"paper.thermocol":            func(r *waste.Record) *float64 { return &r.Paper.Thermocol },
	"paper.newspaper":            func(r *waste.Record) *float64 { return &r.Paper.Newspaper },
	"paper.cartoon":              func(r *waste.Record) *float64 { return &r.Paper.Carton },
	"paper.normalPaper":          func(r *waste.Record) *float64 { return &r.Paper.NormalPaper },
	"paper.cardboard":            func(r *waste.Record) *float64 { return &r.Paper.Cardboard },
	"paper.others":               func(r *waste.Record) *float64 { return &r.Paper.Others },
	"glass.whiteGrades":          func(r *waste.Record) *float64 { return &r.Glass.WhiteGrades },
	"glass.others":               func(r *waste.Record) *float64 { return &r.Glass.Others },
	"metal.aluminumCans":         func(r *waste.Record) *float64 { return &r.Metal.AluminumCans },
	"metal.foodPackingContainer": func(r *waste.Record) *float64 { return &r.Metal.FoodPackingContainer },
	"metal.others":               func(r *waste.Record) *float64 { return &r.Metal.Others },
	"ewaste.batteries":           func(r *waste.Record) *float64 { return &r.EWaste.Batteries },
	"ewaste.charger":             func(r *waste.Record) *float64 { return &r.EWaste.Charger },
	"ewaste.lighting":            func(r *waste.Record) *float64 { return &r.EWaste.Lighting },
	"ewaste.others":              func(r *waste.Record) *float64 { return &r.EWaste.Others },
	"others.expiredMedicines":    func(r *waste.Record) *float64 { return &r.Others.ExpiredMedicines },
	"others.medicinesPackaging":  func(r *waste.Record) *float64 { return &r.Others.MedicinesPackaging },
	"others.thermometers":        func(r *waste.Record) *float64 { return &r.Others.Thermometers },
	"others.others":              func(r *waste.Record) *float64 { return &r.Others.Others },
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

