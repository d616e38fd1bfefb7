// Package pager accumulates successive pages of a listing behind a "load more" trigger.
package pager

import (
	"context"
	"sync"

	"tourkorea/explorer/internal/domain"

	log "github.com/sirupsen/logrus"
)

// FetchFunc loads one page by number.
type FetchFunc[T any] func(ctx context.Context, pageNo int) (*domain.Page[T], error)

type State int

const (
	StateIdle State = iota
	StateFetching
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Snapshot is the view handed to rendering code.
type Snapshot[T any] struct {
	Items      []T    `json:"items"`
	IsLoading  bool   `json:"isLoading"`
	Error      string `json:"error,omitempty"`
	HasMore    bool   `json:"hasMore"`
	PageNo     int    `json:"pageNo"`
	TotalCount int    `json:"totalCount"`
}

// Aggregator accumulates pages in arrival order. At most one LoadMore runs at a time;
// a second call while one is in flight, or after exhaustion, is a no-op.
//
// Reset bumps a generation counter, so a response that was in flight during Reset is
// dropped instead of being appended to the fresh state.
type Aggregator[T any] struct {
	fetch FetchFunc[T]

	mu           sync.Mutex
	initialItems []T
	initialTotal int
	items        []T
	pageNo       int
	totalCount   int
	exhausted    bool
	loading      bool
	lastErr      string
	generation   uint64
}

// New seeds an aggregator with the first page (page 1) and the server's total count.
func New[T any](initial []T, totalCount int, fetch FetchFunc[T]) *Aggregator[T] {
	a := &Aggregator[T]{fetch: fetch}
	a.seed(initial, totalCount)
	return a
}

func (a *Aggregator[T]) seed(initial []T, totalCount int) {
	a.initialItems = append([]T(nil), initial...)
	a.initialTotal = totalCount
	a.restore()
}

func (a *Aggregator[T]) restore() {
	a.items = append(make([]T, 0, len(a.initialItems)), a.initialItems...)
	a.pageNo = 1
	a.totalCount = a.initialTotal
	a.exhausted = len(a.items) >= a.totalCount
	a.lastErr = ""
	a.generation++
}

// LoadMore fetches the next page. It reports whether a fetch was actually issued.
func (a *Aggregator[T]) LoadMore(ctx context.Context) bool {
	a.mu.Lock()
	if a.loading || a.exhausted {
		a.mu.Unlock()
		return false
	}
	a.loading = true
	generation := a.generation
	next := a.pageNo + 1
	a.mu.Unlock()

	page, err := a.fetch(ctx, next)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.loading = false

	if generation != a.generation {
		log.Debugf("Discarding stale page %d after reset", next)
		return true
	}

	if err != nil {
		a.lastErr = err.Error()
		log.Warnf("⚠️ Failed to load page %d: %v", next, err)
		return true
	}

	a.lastErr = ""
	a.pageNo = next
	if page != nil {
		a.items = append(a.items, page.Items...)
		if page.TotalCount > 0 {
			a.totalCount = page.TotalCount
		}
	}
	// An empty page also ends pagination, otherwise a shrinking upstream total would spin forever.
	a.exhausted = len(a.items) >= a.totalCount || page == nil || len(page.Items) == 0
	return true
}

// Reset discards accumulated pages and restores the initial page.
func (a *Aggregator[T]) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.restore()
}

func (a *Aggregator[T]) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case a.loading:
		return StateFetching
	case a.exhausted:
		return StateExhausted
	default:
		return StateIdle
	}
}

func (a *Aggregator[T]) HasMore() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.exhausted
}

func (a *Aggregator[T]) Snapshot() Snapshot[T] {
	a.mu.Lock()
	defer a.mu.Unlock()

	return Snapshot[T]{
		Items:      append([]T(nil), a.items...),
		IsLoading:  a.loading,
		Error:      a.lastErr,
		HasMore:    !a.exhausted,
		PageNo:     a.pageNo,
		TotalCount: a.totalCount,
	}
}

// Watch consumes boundary-crossing signals (a sentinel scrolled into view) and calls
// LoadMore for each one until ctx is done or signals is closed. Being the single consumer,
// it never overlaps two loads.
func (a *Aggregator[T]) Watch(ctx context.Context, signals <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-signals:
			if !ok {
				return
			}
			if a.State() == StateIdle {
				a.LoadMore(ctx)
			}
		}
	}
}
