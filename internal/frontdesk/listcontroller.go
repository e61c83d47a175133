// Package frontdesk holds the client-side view logic: a generic paginated
// list controller and the patient balance ledger accessor. It is
// UI-agnostic; clinicctl renders its state as plain terminal output.
package frontdesk

import (
	"context"
	"sync"
	"time"

	"github.com/clinicdesk/clinicdesk/pkg/daterange"
	"github.com/clinicdesk/clinicdesk/pkg/pagination"
)

// DebounceDelay is the quiet period for free-text search. Page, page-size,
// and preset changes fire immediately.
const DebounceDelay = 300 * time.Millisecond

// Query is the tuple a fetch is a pure function of.
type Query struct {
	Page     int
	PageSize int
	Search   string
	Range    daterange.Range
}

// Page is one fetched page of results.
type Page[T any] struct {
	Items      []T
	TotalPages int
	TotalItems int
}

// FetchFunc loads one page for a query. It runs on the controller's
// goroutine pool; responses arriving out of order are discarded by the
// controller, so implementations need no ordering guarantees.
type FetchFunc[T any] func(ctx context.Context, q Query) (Page[T], error)

// State is a consistent snapshot of the controller for rendering.
type State[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	TotalPages int
	TotalItems int
	Search     string
	Range      daterange.Range
	Loading    bool
	Err        error
}

// ListController drives any remote-paged list. Exactly one in-flight
// fetch is authoritative: each request carries a monotonic sequence
// number and a response is applied only if its number is still the
// latest issued.
type ListController[T any] struct {
	fetch    FetchFunc[T]
	debounce time.Duration
	notify   func()

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	page       int
	pageSize   int
	totalPages int
	totalItems int
	search     string
	rng        daterange.Range
	items      []T
	loading    bool
	err        error
	seq        uint64
	timer      *time.Timer
	closed     bool
}

type ControllerOption func(*controllerConfig)

type controllerConfig struct {
	debounce time.Duration
	pageSize int
	notify   func()
}

// WithDebounce overrides the search debounce, mainly for tests.
func WithDebounce(d time.Duration) ControllerOption {
	return func(c *controllerConfig) { c.debounce = d }
}

// WithPageSize sets the initial page size; it must be one of
// pagination.PageSizes.
func WithPageSize(n int) ControllerOption {
	return func(c *controllerConfig) { c.pageSize = n }
}

// WithNotify registers a callback invoked after every completed fetch,
// applied or discarded, and after debounce scheduling state changes.
func WithNotify(fn func()) ControllerOption {
	return func(c *controllerConfig) { c.notify = fn }
}

func NewListController[T any](fetch FetchFunc[T], opts ...ControllerOption) *ListController[T] {
	cfg := controllerConfig{debounce: DebounceDelay, pageSize: pagination.DefaultLimit}
	for _, opt := range opts {
		opt(&cfg)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ListController[T]{
		fetch:      fetch,
		debounce:   cfg.debounce,
		notify:     cfg.notify,
		ctx:        ctx,
		cancel:     cancel,
		page:       1,
		pageSize:   cfg.pageSize,
		totalPages: 1,
	}
}

// Snapshot returns the current state under one lock acquisition.
func (c *ListController[T]) Snapshot() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]T, len(c.items))
	copy(items, c.items)
	return State[T]{
		Items: items, Page: c.page, PageSize: c.pageSize,
		TotalPages: c.totalPages, TotalItems: c.totalItems,
		Search: c.search, Range: c.rng, Loading: c.loading, Err: c.err,
	}
}

// VisiblePages returns the bounded page-number window for the current
// state, with pagination.Ellipsis marking collapsed gaps.
func (c *ListController[T]) VisiblePages() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return pagination.VisiblePages(c.page, c.totalPages)
}

// Refresh refetches the current query.
func (c *ListController[T]) Refresh() {
	c.mu.Lock()
	c.refetchLocked()
	c.mu.Unlock()
}

// SetPage moves to page n. Out-of-bounds values are a no-op, leaving
// state untouched and issuing no fetch.
func (c *ListController[T]) SetPage(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n < 1 || n > c.totalPages {
		return
	}
	c.page = n
	c.refetchLocked()
}

// SetItemsPerPage changes the page size and resets to page 1, since the
// old page offset no longer means anything. Sizes outside the allowed set
// are ignored.
func (c *ListController[T]) SetItemsPerPage(n int) {
	allowed := false
	for _, s := range pagination.PageSizes {
		if s == n {
			allowed = true
			break
		}
	}
	if !allowed {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pageSize = n
	c.page = 1
	c.refetchLocked()
}

// SetFilter applies a date range immediately and resets to page 1.
func (c *ListController[T]) SetFilter(r daterange.Range) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rng = r
	c.page = 1
	c.refetchLocked()
}

// SetSearchTerm schedules a debounced refetch. Each keystroke supersedes
// the previous pending timer, so only the final term after a quiet period
// fires a request.
func (c *ListController[T]) SetSearchTerm(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, func() {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		c.search = s
		c.page = 1
		c.refetchLocked()
		c.mu.Unlock()
	})
}

// Close cancels any pending debounce and in-flight fetches. Late
// responses after Close never mutate state.
func (c *ListController[T]) Close() {
	c.mu.Lock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
	c.cancel()
}

// refetchLocked issues the fetch for the current query. Caller holds mu.
func (c *ListController[T]) refetchLocked() {
	c.seq++
	seq := c.seq
	q := Query{Page: c.page, PageSize: c.pageSize, Search: c.search, Range: c.rng}
	c.loading = true

	go func() {
		res, err := c.fetch(c.ctx, q)
		c.apply(seq, res, err)
	}()
}

func (c *ListController[T]) apply(seq uint64, res Page[T], err error) {
	c.mu.Lock()
	if c.closed || seq != c.seq {
		// A newer fetch was issued while this one was in flight; its
		// response owns the list now.
		c.mu.Unlock()
		c.fireNotify()
		return
	}
	c.loading = false
	if err != nil {
		c.items = nil
		c.page = 1
		c.totalPages = 1
		c.totalItems = 0
		c.err = err
	} else {
		c.items = res.Items
		c.totalItems = res.TotalItems
		c.totalPages = res.TotalPages
		if c.totalPages < 1 {
			c.totalPages = 1
		}
		c.err = nil
	}
	c.mu.Unlock()
	c.fireNotify()
}

func (c *ListController[T]) fireNotify() {
	if c.notify != nil {
		c.notify()
	}
}
