// Package controller holds the page-level logic of the client: list views, forms, the review
// workflow and the dashboard.
package controller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/parking-service/internal/client"
	"github.com/spec-kit/parking-service/internal/domain"
	"github.com/spec-kit/parking-service/internal/query"
)

// DefaultDebounce delays search fetches while the user is typing.
const DefaultDebounce = 500 * time.Millisecond

// Fetch loads one page of a resource.
type Fetch[T any] func(ctx context.Context, params client.ListParams) (domain.Page[T], error)

// ListOptions configures a ListController.
type ListOptions struct {
	Resource    string
	PageSize    int
	Debounce    time.Duration
	Search      string
	Status      string
	VehicleType string
	Notifier    Notifier
	Logger      *zap.Logger
	OnLoad      func() // runs after every delivered fetch, successful or not
}

// ListState is what a list view renders.
type ListState[T any] struct {
	Items      []T
	Total      int
	Page       int
	PageSize   int
	TotalPages int
	Search     string
	Status     string
	Loading    bool
	Error      string
}

// Mutation is one create, update, delete or review action of a list view.
type Mutation struct {
	Success     string
	Description string
	Failure     string
	Fallback    string
	Run         func(ctx context.Context) error
}

// ListController keeps the parameters of one list view and re-fetches after every mutation.
type ListController[T any] struct {
	mu       sync.Mutex
	params   client.ListParams
	q        *query.Query[client.ListParams, domain.Page[T]]
	resource string
	notifier Notifier
	logger   *zap.Logger
	onLoad   func()
}

// NewListController builds a controller. Nothing is fetched until Load.
func NewListController[T any](ctx context.Context, fetch Fetch[T], opts ListOptions) *ListController[T] {
	if opts.PageSize <= 0 {
		opts.PageSize = domain.DefaultPageSize
	}
	if opts.Notifier == nil {
		opts.Notifier = NopNotifier{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Resource == "" {
		opts.Resource = "data"
	}
	c := &ListController[T]{
		params: client.ListParams{
			Page:        1,
			Limit:       opts.PageSize,
			Search:      opts.Search,
			Status:      opts.Status,
			VehicleType: opts.VehicleType,
		},
		resource: opts.Resource,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		onLoad:   opts.OnLoad,
	}
	c.q = query.New(ctx, query.Fetcher[client.ListParams, domain.Page[T]](fetch), opts.Debounce, c.onResult)
	return c
}

// Load fetches the current page immediately.
func (c *ListController[T]) Load() {
	c.mu.Lock()
	params := c.params
	c.mu.Unlock()
	c.q.SetNow(params)
}

// SetSearch changes the search term, resets to page 1 and fetches after the debounce delay.
func (c *ListController[T]) SetSearch(term string) {
	c.mu.Lock()
	if term == c.params.Search {
		c.mu.Unlock()
		return
	}
	c.params.Search = term
	c.params.Page = 1
	params := c.params
	c.mu.Unlock()
	c.q.Set(params)
}

// SetStatus changes the status filter, resets to page 1 and fetches immediately.
func (c *ListController[T]) SetStatus(status string) {
	c.mu.Lock()
	c.params.Status = strings.ToUpper(strings.TrimSpace(status))
	c.params.Page = 1
	params := c.params
	c.mu.Unlock()
	c.q.SetNow(params)
}

// SetVehicleType changes the vehicle type filter, resets to page 1 and fetches immediately.
func (c *ListController[T]) SetVehicleType(vehicleType string) {
	c.mu.Lock()
	c.params.VehicleType = strings.ToUpper(strings.TrimSpace(vehicleType))
	c.params.Page = 1
	params := c.params
	c.mu.Unlock()
	c.q.SetNow(params)
}

// SetPage moves to page n and fetches immediately.
func (c *ListController[T]) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	c.mu.Lock()
	c.params.Page = n
	params := c.params
	c.mu.Unlock()
	c.q.SetNow(params)
}

// Refresh re-fetches the current page once.
func (c *ListController[T]) Refresh() {
	c.Load()
}

// Wait blocks until the latest fetch has been delivered.
func (c *ListController[T]) Wait() {
	c.q.Wait()
}

// Close cancels any pending fetch.
func (c *ListController[T]) Close() {
	c.q.Close()
}

// Params returns the current list parameters.
func (c *ListController[T]) Params() client.ListParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}

// State returns what the view should render. A failed fetch exposes an empty list.
func (c *ListController[T]) State() ListState[T] {
	snap := c.q.Snapshot()
	params := c.Params()
	st := ListState[T]{
		Items:    snap.Value.Items,
		Total:    snap.Value.Total,
		Page:     params.Page,
		PageSize: params.Limit,
		Search:   params.Search,
		Status:   params.Status,
		Loading:  snap.Loading,
	}
	if st.Items == nil {
		st.Items = []T{}
	}
	if snap.Err != nil {
		st.Error = client.MessageOf(snap.Err, "Failed to load "+c.resource+".")
	}
	st.TotalPages = domain.Page[T]{Total: st.Total, Limit: st.PageSize}.TotalPages()
	return st
}

// Mutate runs m. On success it notifies and re-fetches the current page exactly once; on failure
// it notifies and leaves the list untouched.
func (c *ListController[T]) Mutate(ctx context.Context, m Mutation) error {
	if err := m.Run(ctx); err != nil {
		var invalid *ValidationError
		switch {
		case errors.As(err, &invalid):
			c.notifier.Error("Validation Error", invalid.Message)
		default:
			fallback := m.Fallback
			if fallback == "" {
				fallback = "Something went wrong. Please try again."
			}
			c.notifier.Error(m.Failure, client.MessageOf(err, fallback))
		}
		return err
	}
	c.notifier.Success(m.Success, m.Description)
	c.Refresh()
	return nil
}

func (c *ListController[T]) onResult(res query.Result[client.ListParams, domain.Page[T]]) {
	if res.Err != nil && !errors.Is(res.Err, context.Canceled) {
		c.logger.Debug("list fetch failed", zap.String("resource", c.resource), zap.Error(res.Err))
		c.notifier.Error("Failed to load "+c.resource, client.MessageOf(res.Err, "Please try again."))
	}
	if c.onLoad != nil {
		c.onLoad()
	}
}
