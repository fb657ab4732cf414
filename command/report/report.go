package cmdreport

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	cmdimport "waste-stats/command/import"
	"waste-stats/connectors/config"
	ccsv "waste-stats/connectors/csv"
	"waste-stats/connectors/pdf"
	"waste-stats/connectors/raster"
	"waste-stats/connectors/sheets"
	dc "waste-stats/domain/config"
	"waste-stats/domain/dashboard"
	"waste-stats/domain/report"
	"waste-stats/domain/waste"
)

// Run exports a single-page PDF report for a period or a date range.
//
// Usage:
//
//	waste-stats report [-period week | -from 06-Jan-2025 -to 12-Jan-2025] [-out ./reports] [-refresh]
func Run(args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	period := fs.String("period", "", "Period to report on: day, week, month, quarter or year (default year)")
	from := fs.String("from", "", "Range start date, e.g. 06-Jan-2025 or 2025-01-06 (requires -to)")
	to := fs.String("to", "", "Range end date (requires -from)")
	out := fs.String("out", "", "Output directory (default report.dir from config)")
	refresh := fs.Bool("refresh", false, "Fetch the remote sheet first instead of reading the snapshot only")
	if err := fs.Parse(args); err != nil {
		return err
	}
	req, err := ParseRequest(*period, *from, *to)
	if err != nil {
		return err
	}

	cfg, err := config.LoadDefault()
	if err != nil {
		return err
	}
	if *out != "" {
		cfg.Report.Dir = *out
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	snapshot := ccsv.Snapshot{Path: cmdimport.SnapshotPath(cfg)}
	var remote dashboard.Source = snapshot
	if *refresh {
		remote = sheets.New(ctx, cfg.Sheet.URL, cfg.Sheet.Token, cfg.Sheet.Timeout.Std(), *cfg.Sheet.Retries)
	}
	store := dashboard.NewStore(remote, snapshot)
	if err := store.Refresh(ctx); err != nil && store.Status().Rows == 0 {
		return err
	}

	events := dashboard.NewEvents()
	view := dashboard.NewView(store, events, dashboard.PeriodSelection(waste.PeriodYear))
	defer view.Close()

	res, err := NewPipeline(cfg, events, view).Export(ctx, req)
	if err != nil {
		return err
	}
	fmt.Println(res.Path)
	return nil
}

// NewPipeline wires the section renderer and PDF stitcher from cfg.
func NewPipeline(cfg *dc.Config, events *dashboard.Events, view *dashboard.View) *report.Pipeline {
	return &report.Pipeline{
		Events:      events,
		View:        view,
		Rasterizer:  raster.New(0),
		Stitcher:    pdf.New(),
		Dir:         cfg.Report.Dir,
		Sections:    cfg.Report.Sections,
		Gap:         cfg.Report.Gap,
		Padding:     cfg.Report.Padding,
		SettleDelay: cfg.Report.SettleDelay.Std(),
	}
}

// ParseRequest builds a report request from a period name or a pair of
// dates. With neither, the report covers the year.
func ParseRequest(period, from, to string) (report.Request, error) {
	if from == "" && to == "" {
		if period == "" {
			period = string(waste.PeriodYear)
		}
		p, err := waste.ParsePeriod(period)
		if err != nil {
			return report.Request{}, fmt.Errorf("%w: %v", report.ErrBadRequest, err)
		}
		return report.Request{Period: p}, nil
	}
	if period != "" {
		return report.Request{}, fmt.Errorf("%w: period and range are exclusive", report.ErrBadRequest)
	}
	if from == "" || to == "" {
		return report.Request{}, fmt.Errorf("%w: range needs both from and to", report.ErrBadRequest)
	}
	start, err := waste.ParseDate(from)
	if err != nil {
		return report.Request{}, fmt.Errorf("%w: from: %v", report.ErrBadRequest, err)
	}
	end, err := waste.ParseDate(to)
	if err != nil {
		return report.Request{}, fmt.Errorf("%w: to: %v", report.ErrBadRequest, err)
	}
	if end.Before(start) {
		return report.Request{}, fmt.Errorf("%w: range ends before it starts", report.ErrBadRequest)
	}
	slog.Debug("report.range", "from", waste.FormatDate(start), "to", waste.FormatDate(end))
	return report.Request{Range: &waste.DateRange{Start: start, End: end}}, nil
}

// IsClientError reports whether err came from a malformed request.
func IsClientError(err error) bool {
	return errors.Is(err, report.ErrBadRequest) || errors.Is(err, waste.ErrUnknownPeriod)
}
