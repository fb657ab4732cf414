// Package dashboard holds the shared application state: the canonical
// dataset, the current view selection and the typed events that connect
// the HTTP surface, the view and the report pipeline.
package dashboard

import (
	"sync"

	"waste-stats/domain/waste"
)

// Topic is a typed synchronous publish/subscribe channel. The zero value
// is ready to use. Handlers run on the publisher's goroutine in
// subscription order; Publish returns once every handler has returned.
type Topic[T any] struct {
	mu   sync.RWMutex
	next int
	subs []subscription[T]
}

type subscription[T any] struct {
	id int
	fn func(T)
}

// Subscribe registers fn and returns a function that removes it.
func (t *Topic[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	t.mu.Lock()
	t.next++
	id := t.next
	t.subs = append(t.subs, subscription[T]{id: id, fn: fn})
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			for i, s := range t.subs {
				if s.id == id {
					t.subs = append(t.subs[:i:i], t.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish delivers v to every current subscriber.
func (t *Topic[T]) Publish(v T) {
	t.mu.RLock()
	subs := append([]subscription[T](nil), t.subs...)
	t.mu.RUnlock()
	for _, s := range subs {
		s.fn(v)
	}
}

// Len returns the number of subscribers.
func (t *Topic[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subs)
}

// Events groups the application topics.
type Events struct {
	PeriodSelected     Topic[waste.Period]
	DateRangeSelected  Topic[waste.DateRange]
	ReportGenerating   Topic[bool]
	ReportDialogToggle Topic[bool]
}

func NewEvents() *Events { return &Events{} }
