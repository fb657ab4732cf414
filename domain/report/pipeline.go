package report

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"waste-stats/domain/dashboard"
	"waste-stats/domain/waste"
)

var (
	ErrNoSections = errors.New("no report sections")
	ErrBusy       = errors.New("a report is already being generated")
	ErrBadRequest = errors.New("bad report request")
)

// Rasterizer renders one section to an image whose bounds are its size in points.
type Rasterizer interface {
	Rasterize(s Section) (image.Image, error)
}

// Stitcher writes the rasters onto one page laid out by l.
type Stitcher interface {
	Stitch(w io.Writer, l Layout, images []image.Image) error
}

// Request selects the records to report on: a period, or a date range
// when Range is set.
type Request struct {
	Period waste.Period     `json:"period,omitempty"`
	Range  *waste.DateRange `json:"range,omitempty"`
}

func (r Request) selection() (dashboard.Selection, error) {
	switch {
	case r.Range != nil && r.Period != "":
		return dashboard.Selection{}, fmt.Errorf("%w: period and range are exclusive", ErrBadRequest)
	case r.Range != nil:
		if r.Range.Start.IsZero() || r.Range.End.IsZero() {
			return dashboard.Selection{}, fmt.Errorf("%w: range needs start and end", ErrBadRequest)
		}
		return dashboard.RangeSelection(*r.Range), nil
	default:
		p, err := waste.ParsePeriod(string(r.Period))
		if err != nil {
			return dashboard.Selection{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		return dashboard.PeriodSelection(p), nil
	}
}

type Result struct {
	RunID    string  `json:"runId"`
	Path     string  `json:"path"`
	Filename string  `json:"filename"`
	Records  int     `json:"records"`
	Sections int     `json:"sections"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

// Pipeline exports the dashboard as a single-page PDF.
type Pipeline struct {
	Events     *dashboard.Events
	View       *dashboard.View
	Rasterizer Rasterizer
	Stitcher   Stitcher

	Dir         string
	Sections    []string
	Gap         *float64 // nil means DefaultGap
	Padding     *float64 // nil means DefaultPadding
	SettleDelay time.Duration
	Now         func() time.Time

	running atomic.Bool
}

// Running reports whether an export is in progress.
func (p *Pipeline) Running() bool { return p.running.Load() }

// Filename is the report file name for sel generated at now.
func Filename(sel dashboard.Selection, now time.Time) string {
	return fmt.Sprintf("waste-management-report-%s-%s.pdf", sel.String(), waste.FormatDate(now))
}

// Export switches the view to the requested selection, renders every
// section, stitches them into one page and writes the PDF. Whatever the
// outcome, the generating flag and the dialog are cleared and the view
// goes back to the selection it had before.
func (p *Pipeline) Export(ctx context.Context, req Request) (res Result, err error) {
	sel, err := req.selection()
	if err != nil {
		return Result{}, err
	}
	if !p.running.CompareAndSwap(false, true) {
		return Result{}, ErrBusy
	}
	defer p.running.Store(false)

	res.RunID = uuid.NewString()
	log := slog.With("run", res.RunID, "selection", sel.String())
	log.Info("report.start")

	previous := p.View.Selection()
	defer func() {
		p.Events.ReportGenerating.Publish(false)
		p.Events.ReportDialogToggle.Publish(false)
		p.publish(previous)
		if err != nil {
			log.Error("report.failed", "err", err)
		}
	}()

	p.Events.ReportDialogToggle.Publish(false)
	p.Events.ReportGenerating.Publish(true)
	p.publish(sel)
	if err := p.View.Await(ctx, sel); err != nil {
		return res, fmt.Errorf("await selection: %w", err)
	}
	if err := sleep(ctx, p.SettleDelay); err != nil {
		return res, err
	}

	records := p.View.Records()
	now := p.now()
	trend := sel.Period
	if sel.Custom {
		trend = waste.PeriodDay
	}
	sections, err := BuildSections(p.sectionNames(), Context{Records: records, Label: sel.String(), Period: trend, Generated: now})
	if err != nil {
		return res, err
	}
	if len(sections) == 0 {
		return res, ErrNoSections
	}

	images := make([]image.Image, 0, len(sections))
	sizes := make([]Size, 0, len(sections))
	for _, s := range sections {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		img, err := p.Rasterizer.Rasterize(s)
		if err != nil {
			return res, fmt.Errorf("rasterize %s: %w", s.Name, err)
		}
		b := img.Bounds()
		images = append(images, img)
		sizes = append(sizes, Size{W: float64(b.Dx()), H: float64(b.Dy())})
	}
	layout := ComputeLayout(sizes, p.gap(), p.padding())

	res.Filename = Filename(sel, now)
	res.Path = filepath.Join(p.Dir, res.Filename)
	if err := p.write(res.Path, layout, images); err != nil {
		return res, err
	}
	res.Records = len(records)
	res.Sections = len(sections)
	res.Width, res.Height = layout.Width, layout.Height
	log.Info("report.done", "path", res.Path, "records", res.Records, "sections", res.Sections, "width", layout.Width, "height", layout.Height)
	return res, nil
}

func (p *Pipeline) publish(sel dashboard.Selection) {
	if sel.Custom {
		p.Events.DateRangeSelected.Publish(sel.Range)
		return
	}
	p.Events.PeriodSelected.Publish(sel.Period)
}

func (p *Pipeline) write(path string, l Layout, images []image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := p.Stitcher.Stitch(f, l, images); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("stitch: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func (p *Pipeline) sectionNames() []string {
	if p.Sections == nil {
		return DefaultSections
	}
	return p.Sections
}

func (p *Pipeline) gap() float64 {
	if p.Gap != nil {
		return max(*p.Gap, 0)
	}
	return DefaultGap
}

func (p *Pipeline) padding() float64 {
	if p.Padding != nil {
		return max(*p.Padding, 0)
	}
	return DefaultPadding
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
