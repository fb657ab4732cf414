package dashboard

import (
	"context"
	"log/slog"
	"sync"

	"waste-stats/domain/waste"
)

// Selection is what the dashboard currently shows: a named period, or a
// custom date range when Custom is set.
type Selection struct {
	Period waste.Period    `json:"period,omitempty"`
	Custom bool            `json:"custom"`
	Range  waste.DateRange `json:"range"`
}

func PeriodSelection(p waste.Period) Selection { return Selection{Period: p} }

func RangeSelection(r waste.DateRange) Selection { return Selection{Custom: true, Range: r} }

func (s Selection) Equal(o Selection) bool {
	if s.Custom != o.Custom {
		return false
	}
	if s.Custom {
		return s.Range.Start.Equal(o.Range.Start) && s.Range.End.Equal(o.Range.End)
	}
	return s.Period == o.Period
}

// String is the label used in report file names.
func (s Selection) String() string {
	if s.Custom {
		return s.Range.String()
	}
	return string(s.Period)
}

// View follows the selection events and filters the store on demand.
type View struct {
	store *Store

	mu      sync.Mutex
	sel     Selection
	changed chan struct{}

	unsubscribe []func()
}

// NewView subscribes to the selection topics of events.
func NewView(store *Store, events *Events, initial Selection) *View {
	v := &View{store: store, sel: initial, changed: make(chan struct{})}
	v.unsubscribe = []func(){
		events.PeriodSelected.Subscribe(func(p waste.Period) { v.set(PeriodSelection(p)) }),
		events.DateRangeSelected.Subscribe(func(r waste.DateRange) { v.set(RangeSelection(r)) }),
	}
	return v
}

func (v *View) set(sel Selection) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.sel.Equal(sel) {
		return
	}
	v.sel = sel
	close(v.changed)
	v.changed = make(chan struct{})
	slog.Debug("view.selection", "selection", sel.String())
}

func (v *View) Selection() Selection {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sel
}

// Records returns the store's dataset filtered by the current selection.
func (v *View) Records() []waste.Record {
	sel := v.Selection()
	records := v.store.Records()
	if sel.Custom {
		return waste.FilterByDateRange(records, sel.Range.Start, sel.Range.End)
	}
	return waste.FilterByPeriod(records, sel.Period)
}

// Await blocks until the view has committed want or ctx is done.
func (v *View) Await(ctx context.Context, want Selection) error {
	for {
		v.mu.Lock()
		if v.sel.Equal(want) {
			v.mu.Unlock()
			return nil
		}
		ch := v.changed
		v.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
	}
}

// Close detaches the view from its topics.
func (v *View) Close() {
	for _, u := range v.unsubscribe {
		u()
	}
}
