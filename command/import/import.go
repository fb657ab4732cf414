package cmdimport

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"waste-stats/connectors/config"
	ccsv "waste-stats/connectors/csv"
	"waste-stats/connectors/sheets"
	"waste-stats/connectors/xlsx"
	dc "waste-stats/domain/config"
	"waste-stats/domain/waste"
)

// Run executes the import subcommand: it downloads the collection sheet
// (or reads a local workbook with -xlsx) and writes the snapshot that the
// other subcommands read.
func Run(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	xlsxPath := fs.String("xlsx", "", "Import a local .xlsx workbook instead of the remote sheet (optional)")
	url := fs.String("url", "", "Sheet CSV export URL (default from config, SHEET_URL or the built-in sheet)")
	out := fs.String("out", "", "Snapshot path (default <data.dir>/<data.snapshot>)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadDefault()
	if err != nil {
		return err
	}
	if *url != "" {
		cfg.Sheet.URL = *url
	}
	path := *out
	if path == "" {
		path = SnapshotPath(cfg)
	}

	ctx := context.Background()
	var records []waste.Record
	if *xlsxPath != "" {
		records, err = readWorkbook(cfg, *xlsxPath)
	} else {
		client := sheets.New(ctx, cfg.Sheet.URL, cfg.Sheet.Token, cfg.Sheet.Timeout.Std(), *cfg.Sheet.Retries)
		records, err = client.Load(ctx)
	}
	if err != nil {
		return err
	}
	if len(records) == 0 {
		// Keep whatever snapshot is already on disk.
		slog.Warn("import.empty", "snapshot", path)
		return errors.New("import: source yielded no usable rows, snapshot left unchanged")
	}

	if err := ccsv.WriteSnapshot(path, records); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	slog.Info("import.done", "rows", len(records), "snapshot", path)
	return nil
}

// SnapshotPath is where the imported dataset lives for cfg.
func SnapshotPath(cfg *dc.Config) string {
	if filepath.IsAbs(cfg.Data.Snapshot) {
		return cfg.Data.Snapshot
	}
	return filepath.Join(cfg.Data.Dir, cfg.Data.Snapshot)
}

func readWorkbook(cfg *dc.Config, path string) ([]waste.Record, error) {
	slog.Info("import.start", "xlsx", path)
	im, err := xlsx.New(cfg.Import.Aliases)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return im.Read(f)
}
