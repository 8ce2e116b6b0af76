package ordersync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"athani_mart/internal/models"
	"athani_mart/internal/redis"
	"athani_mart/pkg/orderapi"

	"golang.org/x/sync/singleflight"
)

// StalenessBudget is the maximum age after which a fetched order list is
// considered invalid and must be refreshed before being trusted.
const StalenessBudget = 60 * time.Second

type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseError   Phase = "error"
)

type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
)

// Gateway is the order access collaborator, bound to the HTTP client in
// production and to mocks in tests.
type Gateway interface {
	ListOrdersForRole(ctx context.Context, viewer models.Viewer, filters orderapi.ListFilters) ([]models.OrderSummary, error)
	ListOrdersForAgent(ctx context.Context, filters orderapi.ListFilters) ([]models.OrderSummary, error)
	GetOrderByID(ctx context.Context, orderID string) (*models.OrderSummary, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.OrderSummary, error)
}

// Cache holds per-viewer list snapshots and single-order snapshots.
type Cache interface {
	SetOrderList(viewerID string, orders []models.OrderSummary, ttl time.Duration) error
	GetOrderList(viewerID string) ([]models.OrderSummary, error)
	InvalidateOrderList(viewerID string) error
	SetOrderSnapshot(order *models.OrderSummary, ttl time.Duration) error
	InvalidateOrder(orderID string) error
}

// Subscriber opens the push channel that signals "an order changed".
type Subscriber interface {
	SubscribeOrderEvents(ctx context.Context, viewerID string) (<-chan redis.OrderEvent, func(), error)
}

// NotificationSink surfaces success and error messages to the user.
type NotificationSink interface {
	Notify(kind NotificationKind, message string)
}

// Controller keeps one viewer's order list fresh. Phases move
// idle -> loading -> ready, with error reachable from loading and
// ready <-> loading on refetch. All commits funnel through one mutex and a
// monotonic request token, so a stale response can never overwrite a
// fresher one.
type Controller struct {
	gateway    Gateway
	cache      Cache
	subscriber Subscriber
	sink       NotificationSink

	mu          sync.Mutex
	phase       Phase
	viewer      models.Viewer
	filters     orderapi.ListFilters
	orders      []models.OrderSummary
	fetchedAt   time.Time
	token       uint64
	unsubscribe func()
	closed      bool

	sfg singleflight.Group
}

func NewController(gateway Gateway, cache Cache, subscriber Subscriber, sink NotificationSink) *Controller {
	return &Controller{
		gateway:    gateway,
		cache:      cache,
		subscriber: subscriber,
		sink:       sink,
		phase:      PhaseIdle,
	}
}

func admitted(viewer models.Viewer) bool {
	if viewer.ID == "" {
		return false
	}
	// Agents are only eligible while online and verified; stay idle and
	// issue no network calls otherwise.
	if viewer.Role == models.RoleAgent {
		return viewer.IsOnline && viewer.IsVerified
	}
	return true
}

// Configure declares who is asking and the active filters. It invalidates
// any in-flight fetch for the previous viewer, tears down the previous
// subscription and opens a new one when the viewer is admitted.
func (c *Controller) Configure(viewer models.Viewer, filters orderapi.ListFilters) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	unsub := c.unsubscribe
	c.unsubscribe = nil
	sameViewer := c.viewer.ID == viewer.ID
	c.viewer = viewer
	c.filters = filters
	c.token++ // in-flight fetches for the old configuration are now stale
	if !sameViewer {
		c.orders = nil
	}
	c.fetchedAt = time.Time{}
	ok := admitted(viewer)
	if !ok {
		c.phase = PhaseIdle
	}
	c.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	if !ok {
		return
	}

	// Warm start from the cached list; counts as stale until the first fetch.
	if c.cache != nil {
		if cached, err := c.cache.GetOrderList(viewer.ID); err == nil && len(cached) > 0 {
			c.mu.Lock()
			if !c.closed && c.viewer.ID == viewer.ID && c.orders == nil {
				c.orders = cached
				c.phase = PhaseReady
			}
			c.mu.Unlock()
		}
	}

	c.openSubscription(viewer.ID)
}

// Fetch issues the role-appropriate list query and commits the result only
// if no newer fetch or reconfiguration happened meanwhile.
func (c *Controller) Fetch(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	viewer := c.viewer
	filters := c.filters
	if !admitted(viewer) {
		c.phase = PhaseIdle
		c.mu.Unlock()
		return nil
	}
	c.token++
	token := c.token
	c.phase = PhaseLoading
	c.mu.Unlock()

	orders, err := c.list(ctx, viewer, filters)

	c.mu.Lock()
	if c.closed || token != c.token {
		// A newer fetch or configuration owns the visible state; discard.
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		// Keep the last-known-good list for stale-but-available display.
		c.phase = PhaseError
		c.mu.Unlock()
		c.notify(NotifyError, fetchErrorMessage(err))
		return err
	}
	c.orders = orders
	c.fetchedAt = time.Now()
	c.phase = PhaseReady
	c.mu.Unlock()

	if c.cache != nil {
		if cacheErr := c.cache.SetOrderList(viewer.ID, orders, StalenessBudget); cacheErr != nil {
			log.Printf("Failed to cache order list for viewer %s: %v", viewer.ID, cacheErr)
		}
	}
	return nil
}

func (c *Controller) list(ctx context.Context, viewer models.Viewer, filters orderapi.ListFilters) ([]models.OrderSummary, error) {
	key := viewer.ID + "|" + string(viewer.Role) + "|" + string(filters.Status) + "|" + filters.Search
	v, err, _ := c.sfg.Do(key, func() (interface{}, error) {
		if viewer.Role == models.RoleAgent {
			return c.gateway.ListOrdersForAgent(ctx, filters)
		}
		return c.gateway.ListOrdersForRole(ctx, viewer, filters)
	})
	if err != nil {
		return nil, err
	}
	return filterOrders(v.([]models.OrderSummary), filters.Search), nil
}

// filterOrders applies the client-side text filter as a fallback for
// gateways without server-side search.
func filterOrders(orders []models.OrderSummary, search string) []models.OrderSummary {
	q := strings.ToLower(strings.TrimSpace(search))
	if q == "" {
		return orders
	}
	matched := make([]models.OrderSummary, 0, len(orders))
	for _, o := range orders {
		if strings.Contains(strings.ToLower(o.ID), q) ||
			strings.Contains(strings.ToLower(o.ShortID), q) ||
			strings.Contains(strings.ToLower(o.CounterpartName), q) ||
			strings.Contains(strings.ToLower(o.CounterpartID), q) {
			matched = append(matched, o)
		}
	}
	return matched
}

// UpdateStatus calls the gateway and on success invalidates both the list
// and the single-order cache entry, so the next read refetches. On failure
// the cached state is left untouched.
func (c *Controller) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.OrderSummary, error) {
	c.mu.Lock()
	viewerID := c.viewer.ID
	c.mu.Unlock()

	updated, err := c.gateway.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		c.notify(NotifyError, statusErrorMessage(orderID, err))
		return nil, err
	}

	if c.cache != nil {
		if cacheErr := c.cache.InvalidateOrder(orderID); cacheErr != nil {
			log.Printf("Failed to invalidate order %s: %v", orderID, cacheErr)
		}
		if cacheErr := c.cache.InvalidateOrderList(viewerID); cacheErr != nil {
			log.Printf("Failed to invalidate order list for viewer %s: %v", viewerID, cacheErr)
		}
	}

	c.Invalidate()
	c.notify(NotifySuccess, fmt.Sprintf("Order %s is now %s", orderID, updated.Status))
	return updated, nil
}

// Invalidate marks the current list stale, forcing the next read to refetch.
func (c *Controller) Invalidate() {
	c.mu.Lock()
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Controller) Viewer() models.Viewer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewer
}

func (c *Controller) Filters() orderapi.ListFilters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// Orders returns a copy of the last committed list. On a failed refresh this
// is the previous good list, never cleared by the error.
func (c *Controller) Orders() []models.OrderSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	orders := make([]models.OrderSummary, len(c.orders))
	copy(orders, c.orders)
	return orders
}

// IsStale reports whether the list has outlived the staleness budget.
func (c *Controller) IsStale() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetchedAt.IsZero() || time.Since(c.fetchedAt) > StalenessBudget
}

// Close tears down the subscription and disposes the controller. In-flight
// fetches may complete but their results are discarded. Idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	unsub := c.unsubscribe
	c.unsubscribe = nil
	c.phase = PhaseIdle
	c.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

func (c *Controller) openSubscription(viewerID string) {
	if c.subscriber == nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	events, unsub, err := c.subscriber.SubscribeOrderEvents(ctx, viewerID)
	if err != nil {
		cancel()
		log.Printf("Failed to subscribe to order events for viewer %s: %v", viewerID, err)
		return
	}

	teardown := func() {
		cancel()
		unsub()
	}

	c.mu.Lock()
	if c.closed || c.viewer.ID != viewerID || c.unsubscribe != nil {
		// Lost the race against Close or a newer Configure.
		c.mu.Unlock()
		teardown()
		return
	}
	c.unsubscribe = teardown
	c.mu.Unlock()

	go c.consume(ctx, events)
}

// consume drains the push channel. Events carry no payload the controller
// trusts; each one is an unconditional refetch trigger. A ticker backstops
// the staleness budget for viewers that receive no events.
func (c *Controller) consume(ctx context.Context, events <-chan redis.OrderEvent) {
	ticker := time.NewTicker(StalenessBudget)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			if err := c.Fetch(ctx); err != nil {
				log.Printf("Refetch after order event failed: %v", err)
			}
		case <-ticker.C:
			if !c.IsStale() {
				continue
			}
			if err := c.Fetch(ctx); err != nil {
				log.Printf("Staleness refetch failed: %v", err)
			}
		}
	}
}

func (c *Controller) notify(kind NotificationKind, message string) {
	if c.sink != nil {
		c.sink.Notify(kind, message)
	}
}

func fetchErrorMessage(err error) string {
	var netErr *orderapi.NetworkError
	if errors.As(err, &netErr) {
		return "Could not reach the order service. Showing the last loaded orders."
	}
	return fmt.Sprintf("Failed to refresh orders: %v", err)
}

func statusErrorMessage(orderID string, err error) string {
	var conflictErr *orderapi.ConflictError
	if errors.As(err, &conflictErr) {
		// Server's message verbatim, no client-side correction.
		return conflictErr.Message
	}
	var notFoundErr *orderapi.NotFoundError
	if errors.As(err, &notFoundErr) {
		return fmt.Sprintf("Order %s no longer exists", orderID)
	}
	var netErr *orderapi.NetworkError
	if errors.As(err, &netErr) {
		return "Could not reach the order service. Please try again."
	}
	return fmt.Sprintf("Failed to update order %s: %v", orderID, err)
}
