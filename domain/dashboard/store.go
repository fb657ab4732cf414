package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"waste-stats/domain/waste"
)

var (
	// ErrNoRows means a source answered but yielded no usable record.
	ErrNoRows = errors.New("no rows")
	// ErrRefreshRunning is returned when a refresh is already in flight.
	ErrRefreshRunning = errors.New("refresh already running")
)

// Source loads a complete dataset.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]waste.Record, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc struct {
	Label string
	Fn    func(ctx context.Context) ([]waste.Record, error)
}

func (s SourceFunc) Name() string { return s.Label }

func (s SourceFunc) Load(ctx context.Context) ([]waste.Record, error) { return s.Fn(ctx) }

// Status describes the dataset currently held by a Store.
type Status struct {
	Loading   bool      `json:"loading"`
	Source    string    `json:"source"`
	Rows      int       `json:"rows"`
	UpdatedAt time.Time `json:"updatedAt"`
	LastError string    `json:"lastError,omitempty"`
}

// Store owns the canonical dataset. The slice is replaced wholesale and
// never handed out; readers get copies.
type Store struct {
	remote   Source
	fallback Source

	mu      sync.RWMutex
	records []waste.Record
	status  Status

	refreshing atomic.Bool
}

// NewStore returns an empty store. fallback (the default dataset) may be nil.
func NewStore(remote, fallback Source) *Store {
	return &Store{remote: remote, fallback: fallback}
}

// Replace installs records as the canonical dataset.
func (s *Store) Replace(records []waste.Record, source string) {
	cp := append([]waste.Record(nil), records...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = cp
	s.status.Source = source
	s.status.Rows = len(cp)
	s.status.UpdatedAt = time.Now()
}

// Records returns a copy of the canonical dataset.
func (s *Store) Records() []waste.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]waste.Record(nil), s.records...)
}

func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.status
	st.Loading = s.refreshing.Load()
	return st
}

// Refresh loads the remote source. On failure, or when it yields no
// rows, the held dataset is kept; an empty store loads the fallback
// instead. The remote error is returned either way.
func (s *Store) Refresh(ctx context.Context) error {
	if !s.refreshing.CompareAndSwap(false, true) {
		return ErrRefreshRunning
	}
	defer s.refreshing.Store(false)

	start := time.Now()
	err := s.load(ctx, s.remote)
	if err == nil {
		s.setError("")
		slog.Info("refresh.done", "source", s.remote.Name(), "rows", s.Status().Rows, "took", time.Since(start))
		return nil
	}
	err = fmt.Errorf("refresh: %w", err)
	s.setError(err.Error())
	slog.Warn("refresh.failed", "err", err)

	if s.empty() && s.fallback != nil {
		if ferr := s.load(ctx, s.fallback); ferr != nil {
			slog.Error("refresh.fallback.failed", "source", s.fallback.Name(), "err", ferr)
		} else {
			slog.Info("refresh.fallback", "source", s.fallback.Name(), "rows", s.Status().Rows)
		}
	}
	return err
}

func (s *Store) load(ctx context.Context, src Source) error {
	if src == nil {
		return errors.New("no source configured")
	}
	records, err := src.Load(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return ErrNoRows
	}
	s.Replace(records, src.Name())
	return nil
}

func (s *Store) empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records) == 0
}

func (s *Store) setError(msg string) {
	s.mu.Lock()
	s.status.LastError = msg
	s.mu.Unlock()
}
