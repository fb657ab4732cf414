package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	cmdcalculate "waste-stats/command/calculate"
	cmdimport "waste-stats/command/import"
	cmdreport "waste-stats/command/report"
	cmdweb "waste-stats/command/web"
)

// Waste-collection analytics: imports the daily collection sheet, derives
// diversion and emission metrics, and serves or exports them.
// Usage:
//   waste-stats import [-xlsx workbook.xlsx] [-url <csv export>] [-out data/waste.csv]
//   waste-stats calculate [-data ./data]
//   waste-stats report [-period week | -from 06-Jan-2025 -to 12-Jan-2025] [-out ./reports]
//   waste-stats web [-addr :8080] [-data ./data] [-ui ./ui/dist]
// Notes:
// - A .env file in the working directory is loaded first when present.
// - LOG_LEVEL=debug enables per-row and per-request logs.

var commands = map[string]func([]string) error{
	"import":    cmdimport.Run,
	"calculate": cmdcalculate.Run,
	"report":    cmdreport.Run,
	"web":       cmdweb.Run,
}

func main() {
	// Environment first so LOG_LEVEL from .env applies.
	_ = godotenv.Load()

	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h))

	if len(os.Args) > 1 {
		if run, ok := commands[os.Args[1]]; ok {
			if err := run(append([]string{}, os.Args[2:]...)); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		}
	}
	fmt.Fprintln(os.Stderr, "usage: waste-stats import [-xlsx <file>] [-out <snapshot>] | calculate [-data ./data] | report [-period <p> | -from <date> -to <date>] [-out ./reports] | web [-addr :8080] [-data ./data] [-ui ./ui/dist]\nENV: set CONFIG_PATH to point to a YAML config file (default ./config.yml); SHEET_URL, SHEET_TOKEN and DATA_DIR override it")
	os.Exit(2)
}
