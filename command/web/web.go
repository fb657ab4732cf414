package web

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	cmdimport "waste-stats/command/import"
	cmdreport "waste-stats/command/report"
	"waste-stats/connectors/config"
	ccsv "waste-stats/connectors/csv"
	"waste-stats/connectors/sheets"
	"waste-stats/connectors/xlsx"
	"waste-stats/domain/dashboard"
	"waste-stats/domain/waste"
)

// Run starts the Echo web server exposing the dashboard APIs and an optional SPA.
//
// Usage:
//
//	waste-stats web [-addr :8080] [-data ./data] [-ui ./ui/dist]
//
// Endpoints:
//
//	GET  /api/records              -> records for the current selection (or ?period= / ?from=&to=)
//	GET  /api/summary              -> totals and derived metrics
//	GET  /api/breakdown/:material  -> subcategory breakdown of one material
//	GET  /api/categories           -> totals per material
//	GET  /api/overview             -> per-day material series
//	GET  /api/methane              -> methane-reduction trend (?granularity=week)
//	GET  /api/table                -> searchable, sortable, paginated records
//	GET  /api/status               -> dataset status, selection and report flag
//	GET  /api/csv/:name            -> <data>/<name>.csv written by calculate
//	POST /api/refresh              -> refetch the remote sheet
//	POST /api/import               -> replace the dataset with an uploaded workbook
//	POST /api/selection/period     -> {"period": "week"}
//	POST /api/selection/range      -> {"start": "06-Jan-2025", "end": "12-Jan-2025"}
//	POST /api/report               -> PDF attachment; 409 while another export runs
//	POST /api/report/dialog        -> {"open": true} opens the report dialog
//
// When -ui points to a built Vite app (index.html exists), static files are served at / and
// unknown routes fall back to index.html for SPA routing.
func Run(args []string) error {
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	addr := fs.String("addr", "", "http listen address (default web.addr from config, :8080)")
	dataDir := fs.String("data", "", "directory holding the snapshot and calculated CSVs (default data.dir)")
	uiDir := fs.String("ui", "./ui/dist", "directory containing built UI (Vite dist)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadDefault()
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Web.Addr = *addr
	}
	if *dataDir != "" {
		cfg.Data.Dir = *dataDir
	}
	if cfg.Web.UI != "" && !isFlagSet(fs, "ui") {
		*uiDir = cfg.Web.UI
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	importer, err := xlsx.New(cfg.Import.Aliases)
	if err != nil {
		return err
	}
	remote := sheets.New(ctx, cfg.Sheet.URL, cfg.Sheet.Token, cfg.Sheet.Timeout.Std(), *cfg.Sheet.Retries)
	store := dashboard.NewStore(remote, ccsv.Snapshot{Path: cmdimport.SnapshotPath(cfg)})
	events := dashboard.NewEvents()
	view := dashboard.NewView(store, events, dashboard.PeriodSelection(waste.PeriodYear))
	defer view.Close()

	srv := &Server{
		Store:    store,
		Events:   events,
		View:     view,
		Pipeline: cmdreport.NewPipeline(cfg, events, view),
		Importer: importer,
		DataDir:  cfg.Data.Dir,
	}

	// The first load runs in the background; /api/status reports progress.
	go func() { _ = store.Refresh(ctx) }()
	if !cfg.Refresh.Disabled {
		sched, err := dashboard.NewScheduler(store, cfg.Refresh.Schedule, cfg.Sheet.Timeout.Std()*time.Duration(*cfg.Sheet.Retries+1))
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	e := NewEcho(srv, *uiDir)
	defer srv.Close()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)
	}()

	slog.Info("web.start", "addr", cfg.Web.Addr, "ui", *uiDir)
	if err := e.Start(cfg.Web.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	slog.Info("web.stop")
	return nil
}

// NewEcho builds the router for srv. uiDir may be empty.
func NewEcho(srv *Server, uiDir string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(logRequests)

	srv.Register(e)

	// Static UI (optional)
	if uiDir == "" {
		return e
	}
	indexPath := filepath.Join(uiDir, "index.html")
	if fi, err := os.Stat(indexPath); err == nil && !fi.IsDir() {
		e.Static("/", uiDir)
		e.GET("/", func(c echo.Context) error { return c.File(indexPath) })

		// Fallback to index.html for non-API 404s (SPA routing) while keeping static assets working
		e.HTTPErrorHandler = func(err error, c echo.Context) {
			if he, ok := err.(*echo.HTTPError); ok && he.Code == http.StatusNotFound {
				if !strings.HasPrefix(c.Request().URL.Path, "/api") {
					_ = c.File(indexPath)
					return
				}
			}
			e.DefaultHTTPErrorHandler(err, c)
		}
	}
	return e
}

func logRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		req := c.Request()
		slog.Debug("http.request", "method", req.Method, "path", req.URL.Path, "status", c.Response().Status, "took", time.Since(start))
		return nil
	}
}

func isFlagSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
