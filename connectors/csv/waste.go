package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"waste-stats/domain/waste"
)

// MinColumns is the number of columns a sheet row needs to be accepted.
// The remarks slot (index 30) is optional.
const MinColumns = 30

// Slot positions of the published sheet.
const (
	colDate = iota
	colTotal
	colDry
	colWet
	colPlasticBags
	colPlasticPet
	colPlasticHDPE
	colPlasticPolythene
	colPlasticOthers
	colPaperThermocol
	colPaperNewspaper
	colPaperCarton
	colPaperNormal
	colPaperCardboard
	colPaperOthers
	colGlassWhite
	colGlassOthers
	colMetalCans
	colMetalFood
	colMetalOthers
	colEWasteBatteries
	colEWasteCharger
	colEWasteLighting
	colEWasteOthers
	colOthersMedicines
	colOthersPackaging
	colOthersThermometers
	colOthersOthers
	colRecycling
	colComposted
	colRemarks

	numColumns
)

var header = []string{
	"Date", "Total Waste", "Dry Waste", "Wet Waste",
	"Plastic Bags/Sacks", "Pet Bottles", "HDPE Bottles", "Polythene", "Plastic Others",
	"Thermocol", "Newspaper", "Carton", "Normal Paper", "Cardboard", "Paper Others",
	"White Grades Glass", "Glass Others",
	"Aluminum Cans", "Food Packing Container", "Metal Others",
	"Batteries", "Charger", "Lighting", "E-Waste Others",
	"Expired Medicines", "Medicines Packaging", "Thermometers", "Others",
	"Sent for Recycling", "Composted", "Remarks",
}

// ParseStats counts what happened to the lines of one parse.
type ParseStats struct {
	Lines    int `json:"lines"`
	Accepted int `json:"accepted"`
	Short    int `json:"short"`
	Failed   int `json:"failed"`
}

// Empty reports whether no row was accepted; callers fall back to the
// default dataset in that case.
func (s ParseStats) Empty() bool { return s.Accepted == 0 }

// ParseWaste parses the published sheet CSV. The first line is a header.
// Records come back in source order with derived metrics filled in.
func ParseWaste(text string) ([]waste.Record, ParseStats) {
	var stats ParseStats
	lines := strings.Split(strings.TrimSpace(text), "\n")
	records := make([]waste.Record, 0, len(lines))
	for i, line := range lines {
		if i == 0 {
			continue
		}
		stats.Lines++
		values := splitLine(strings.TrimRight(line, "\r"))
		if len(values) < MinColumns {
			stats.Short++
			slog.Debug("parse.row.short", "line", i+1, "columns", len(values))
			continue
		}
		rec, err := buildRecord(values)
		if err != nil {
			stats.Failed++
			slog.Warn("parse.row.failed", "line", i+1, "err", err)
			continue
		}
		records = append(records, rec)
		stats.Accepted++
	}
	slog.Info("parse.done", "lines", stats.Lines, "accepted", stats.Accepted, "short", stats.Short, "failed", stats.Failed)
	return records, stats
}

func buildRecord(v []string) (waste.Record, error) {
	date := v[colDate]
	if _, err := waste.ParseDate(date); err != nil {
		return waste.Record{}, err
	}
	num := func(i int) float64 { return waste.ParseAmount(v[i]) }
	r := waste.Record{
		Date:       date,
		TotalWaste: num(colTotal),
		DryWaste:   num(colDry),
		WetWaste:   num(colWet),
		Plastic: waste.Plastic{
			Bags:        num(colPlasticBags),
			PetBottles:  num(colPlasticPet),
			HDPEBottles: num(colPlasticHDPE),
			Polythene:   num(colPlasticPolythene),
			Others:      num(colPlasticOthers),
		},
		Paper: waste.Paper{
			Thermocol:   num(colPaperThermocol),
			Newspaper:   num(colPaperNewspaper),
			Carton:      num(colPaperCarton),
			NormalPaper: num(colPaperNormal),
			Cardboard:   num(colPaperCardboard),
			Others:      num(colPaperOthers),
		},
		Glass: waste.Glass{
			WhiteGrades: num(colGlassWhite),
			Others:      num(colGlassOthers),
		},
		Metal: waste.Metal{
			AluminumCans:         num(colMetalCans),
			FoodPackingContainer: num(colMetalFood),
			Others:               num(colMetalOthers),
		},
		EWaste: waste.EWaste{
			Batteries: num(colEWasteBatteries),
			Charger:   num(colEWasteCharger),
			Lighting:  num(colEWasteLighting),
			Others:    num(colEWasteOthers),
		},
		Others: waste.OtherWaste{
			ExpiredMedicines:   num(colOthersMedicines),
			MedicinesPackaging: num(colOthersPackaging),
			Thermometers:       num(colOthersThermometers),
			Others:             num(colOthersOthers),
		},
		Recycling: num(colRecycling),
		Composted: num(colComposted),
	}
	if len(v) > colRemarks {
		r.Remarks = v[colRemarks]
	}
	return r.WithDerived(), nil
}


func formatNumber(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// WriteSnapshot writes records in the sheet layout so ReadSnapshot (and
// ParseWaste) can load them back as the default dataset.
func WriteSnapshot(path string, records []waste.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := writeSnapshotRows(w, records); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func writeSnapshotRows(w *csv.Writer, records []waste.Record) error {
	if err := w.Write(header); err != nil {
		return err
	}
	row := make([]string, numColumns)
	for _, r := range records {
		row[colDate] = r.Date
		row[colTotal] = formatNumber(r.TotalWaste)
		row[colDry] = formatNumber(r.DryWaste)
		row[colWet] = formatNumber(r.WetWaste)
		col := colPlasticBags
		for _, m := range waste.Materials {
			for _, amount := range r.Amounts(m) {
				row[col] = formatNumber(amount)
				col++
			}
		}
		row[colRecycling] = formatNumber(r.Recycling)
		row[colComposted] = formatNumber(r.Composted)
		row[colRemarks] = r.Remarks
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadSnapshot loads a snapshot written by WriteSnapshot. Unlike the
// sheet text, the snapshot is proper CSV: quoted remarks may hold commas,
// quotes and line breaks.
func ReadSnapshot(path string) ([]waste.Record, ParseStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ParseStats{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, ParseStats{}, fmt.Errorf("snapshot %s: %w", path, err)
	}

	var stats ParseStats
	records := make([]waste.Record, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue
		}
		stats.Lines++
		if len(row) < MinColumns {
			stats.Short++
			slog.Debug("snapshot.row.short", "row", i+1, "columns", len(row))
			continue
		}
		rec, err := buildRecord(row)
		if err != nil {
			stats.Failed++
			slog.Warn("snapshot.row.failed", "row", i+1, "err", err)
			continue
		}
		records = append(records, rec)
		stats.Accepted++
	}
	if stats.Empty() {
		return nil, stats, fmt.Errorf("snapshot %s: no rows", path)
	}
	return records, stats, nil
}

// Snapshot serves a snapshot file as a dataset source.
type Snapshot struct {
	Path string
}

func (s Snapshot) Name() string { return "snapshot:" + s.Path }

func (s Snapshot) Load(_ context.Context) ([]waste.Record, error) {
	records, _, err := ReadSnapshot(s.Path)
	return records, err
}
