package calculate

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	lo "github.com/samber/lo"

	cmdimport "waste-stats/command/import"
	"waste-stats/connectors/config"
	ccsv "waste-stats/connectors/csv"
	"waste-stats/domain/waste"
)

// Run reads the imported snapshot and writes the per-period summary,
// breakdown and overview CSVs next to it.
func Run(args []string) error {
	fs := flag.NewFlagSet("calculate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	dataDir := fs.String("data", "", "Output directory (default data.dir from config)")
	snapshot := fs.String("snapshot", "", "Snapshot to read (default <data.dir>/<data.snapshot>)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return fmt.Errorf("calculate: unexpected arguments %v", fs.Args())
	}

	cfg, err := config.LoadDefault()
	if err != nil {
		return err
	}
	if *snapshot == "" {
		*snapshot = cmdimport.SnapshotPath(cfg)
	}
	if *dataDir == "" {
		*dataDir = cfg.Data.Dir
	}

	records, stats, err := ccsv.ReadSnapshot(*snapshot)
	if err != nil {
		return fmt.Errorf("calculate: %w (run import first)", err)
	}
	slog.Info("calculate.start", "rows", stats.Accepted, "snapshot", *snapshot)

	views := Views(records)
	if err := ccsv.WriteAllCSVs(*dataDir, views); err != nil {
		return err
	}
	slog.Info("calculate.done", "dir", *dataDir, "periods", len(views))
	return nil
}

// Views filters records once per period, narrowest first.
func Views(records []waste.Record) []ccsv.PeriodView {
	return lo.Map(waste.Periods, func(p waste.Period, _ int) ccsv.PeriodView {
		return ccsv.PeriodView{Period: p, Records: waste.FilterByPeriod(records, p)}
	})
}
