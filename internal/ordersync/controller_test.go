package ordersync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"athani_mart/internal/models"
	"athani_mart/internal/redis"
	"athani_mart/pkg/orderapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockGateway struct {
	mu         sync.Mutex
	roleCalls  int
	agentCalls int
	orders     []models.OrderSummary
	listErr    error
	updateRes  *models.OrderSummary
	updateErr  error

	// When set, the first list call signals gateStarted and then blocks on
	// gate, returning gateOrders. Used to stage overlapping fetches.
	gate        chan struct{}
	gateStarted chan struct{}
	gateOrders  []models.OrderSummary
}

func (m *mockGateway) ListOrdersForRole(context.Context, models.Viewer, orderapi.ListFilters) ([]models.OrderSummary, error) {
	m.mu.Lock()
	m.roleCalls++
	call := m.roleCalls
	err := m.listErr
	orders := append([]models.OrderSummary(nil), m.orders...)
	gate := m.gate
	m.mu.Unlock()

	if call == 1 && gate != nil {
		close(m.gateStarted)
		<-gate
		return m.gateOrders, nil
	}
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (m *mockGateway) ListOrdersForAgent(context.Context, orderapi.ListFilters) ([]models.OrderSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.agentCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]models.OrderSummary(nil), m.orders...), nil
}

func (m *mockGateway) GetOrderByID(context.Context, string) (*models.OrderSummary, error) {
	return nil, errors.New("not used")
}

func (m *mockGateway) UpdateOrderStatus(context.Context, string, models.OrderStatus) (*models.OrderSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return m.updateRes, nil
}

func (m *mockGateway) listCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roleCalls + m.agentCalls
}

type mockCache struct {
	mu                sync.Mutex
	lists             map[string][]models.OrderSummary
	setListCalls      int
	invalidatedOrders []string
	invalidatedLists  []string
}

func newMockCache() *mockCache {
	return &mockCache{lists: make(map[string][]models.OrderSummary)}
}

func (m *mockCache) SetOrderList(viewerID string, orders []models.OrderSummary, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setListCalls++
	m.lists[viewerID] = append([]models.OrderSummary(nil), orders...)
	return nil
}

func (m *mockCache) GetOrderList(viewerID string) ([]models.OrderSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	orders, ok := m.lists[viewerID]
	if !ok {
		return nil, redis.ErrCacheMiss
	}
	return append([]models.OrderSummary(nil), orders...), nil
}

func (m *mockCache) InvalidateOrderList(viewerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidatedLists = append(m.invalidatedLists, viewerID)
	delete(m.lists, viewerID)
	return nil
}

func (m *mockCache) SetOrderSnapshot(*models.OrderSummary, time.Duration) error {
	return nil
}

func (m *mockCache) InvalidateOrder(orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidatedOrders = append(m.invalidatedOrders, orderID)
	return nil
}

type mockSubscriber struct {
	mu         sync.Mutex
	subscribed int
	cancelled  int
	events     chan redis.OrderEvent
}

func (m *mockSubscriber) SubscribeOrderEvents(_ context.Context, _ string) (<-chan redis.OrderEvent, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribed++
	ch := make(chan redis.OrderEvent, 4)
	m.events = ch
	return ch, func() {
		m.mu.Lock()
		m.cancelled++
		m.mu.Unlock()
	}, nil
}

func (m *mockSubscriber) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subscribed, m.cancelled
}

type mockSink struct {
	mu       sync.Mutex
	kinds    []NotificationKind
	messages []string
}

func (m *mockSink) Notify(kind NotificationKind, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kinds = append(m.kinds, kind)
	m.messages = append(m.messages, message)
}

func (m *mockSink) last() (NotificationKind, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.kinds) == 0 {
		return "", ""
	}
	return m.kinds[len(m.kinds)-1], m.messages[len(m.messages)-1]
}

func customer(id string) models.Viewer {
	return models.Viewer{ID: id, Role: models.RoleCustomer}
}

func TestInitialPhaseIsIdle(t *testing.T) {
	ctrl := NewController(&mockGateway{}, nil, nil, nil)
	defer ctrl.Close()

	assert.Equal(t, PhaseIdle, ctrl.Phase())
	assert.True(t, ctrl.IsStale())
}

func TestOfflineAgentStaysIdle(t *testing.T) {
	gw := &mockGateway{}
	sub := &mockSubscriber{}
	ctrl := NewController(gw, nil, sub, nil)
	defer ctrl.Close()

	agent := models.Viewer{ID: "7", Role: models.RoleAgent, IsOnline: false, IsVerified: true}
	ctrl.Configure(agent, orderapi.ListFilters{})

	require.NoError(t, ctrl.Fetch(context.Background()))

	assert.Equal(t, PhaseIdle, ctrl.Phase())
	assert.Equal(t, 0, gw.listCalls())
	subscribed, _ := sub.counts()
	assert.Equal(t, 0, subscribed)
}

func TestUnverifiedAgentStaysIdle(t *testing.T) {
	gw := &mockGateway{}
	ctrl := NewController(gw, nil, nil, nil)
	defer ctrl.Close()

	agent := models.Viewer{ID: "7", Role: models.RoleAgent, IsOnline: true, IsVerified: false}
	ctrl.Configure(agent, orderapi.ListFilters{})
	require.NoError(t, ctrl.Fetch(context.Background()))

	assert.Equal(t, PhaseIdle, ctrl.Phase())
	assert.Equal(t, 0, gw.listCalls())
}

func TestEligibleAgentFetchesAvailableOrders(t *testing.T) {
	gw := &mockGateway{orders: []models.OrderSummary{{ID: "ORD1", Status: models.OrderReadyForPickup}}}
	ctrl := NewController(gw, nil, nil, nil)
	defer ctrl.Close()

	agent := models.Viewer{ID: "7", Role: models.RoleAgent, IsOnline: true, IsVerified: true}
	ctrl.Configure(agent, orderapi.ListFilters{})
	require.NoError(t, ctrl.Fetch(context.Background()))

	assert.Equal(t, PhaseReady, ctrl.Phase())
	assert.Equal(t, 1, gw.agentCalls)
	assert.Equal(t, 0, gw.roleCalls)
	require.Len(t, ctrl.Orders(), 1)
}

func TestFetchCommitsAndCachesList(t *testing.T) {
	gw := &mockGateway{orders: []models.OrderSummary{{ID: "ORD1"}, {ID: "ORD2"}}}
	cache := newMockCache()
	ctrl := NewController(gw, cache, nil, nil)
	defer ctrl.Close()

	ctrl.Configure(customer("u1"), orderapi.ListFilters{})
	require.NoError(t, ctrl.Fetch(context.Background()))

	assert.Equal(t, PhaseReady, ctrl.Phase())
	assert.False(t, ctrl.IsStale())
	assert.Len(t, ctrl.Orders(), 2)
	assert.Equal(t, 1, cache.setListCalls)
}

func TestFetchErrorPreservesLastGoodList(t *testing.T) {
	gw := &mockGateway{orders: []models.OrderSummary{{ID: "ORD1"}}}
	sink := &mockSink{}
	ctrl := NewController(gw, nil, nil, sink)
	defer ctrl.Close()

	ctrl.Configure(customer("u1"), orderapi.ListFilters{})
	require.NoError(t, ctrl.Fetch(context.Background()))
	require.Len(t, ctrl.Orders(), 1)

	gw.mu.Lock()
	gw.listErr = &orderapi.NetworkError{Err: errors.New("connection refused")}
	gw.mu.Unlock()

	err := ctrl.Fetch(context.Background())
	require.Error(t, err)

	assert.Equal(t, PhaseError, ctrl.Phase())
	// Stale-but-available: the failed refresh never discards good data
	require.Len(t, ctrl.Orders(), 1)
	assert.Equal(t, "ORD1", ctrl.Orders()[0].ID)

	kind, _ := sink.last()
	assert.Equal(t, NotifyError, kind)
}

func TestLatestIssuedFetchWins(t *testing.T) {
	gw := &mockGateway{
		orders:      []models.OrderSummary{{ID: "ORD2"}},
		gate:        make(chan struct{}),
		gateStarted: make(chan struct{}),
		gateOrders:  []models.OrderSummary{{ID: "ORD1"}},
	}
	ctrl := NewController(gw, nil, nil, nil)
	defer ctrl.Close()

	ctrl.Configure(customer("u1"), orderapi.ListFilters{})

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		ctrl.Fetch(context.Background())
	}()
	<-gw.gateStarted

	// Reconfigure and fetch again while the first call is still in flight;
	// the second resolves first.
	ctrl.Configure(customer("u1"), orderapi.ListFilters{Search: "ord2"})
	require.NoError(t, ctrl.Fetch(context.Background()))

	// Let the first (stale) response arrive; it must be discarded.
	close(gw.gate)
	<-firstDone

	orders := ctrl.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, "ORD2", orders[0].ID)
	assert.Equal(t, PhaseReady, ctrl.Phase())
}

func TestClientSideSearchFilter(t *testing.T) {
	gw := &mockGateway{orders: []models.OrderSummary{
		{ID: "ORD1", ShortID: "A1", CounterpartID: "u9", CounterpartName: "Alice"},
		{ID: "ORD2", ShortID: "B2", CounterpartID: "u8", CounterpartName: "Bob"},
		{ID: "ORD3", ShortID: "C3", CounterpartID: "alice-2", CounterpartName: "Carol"},
	}}
	ctrl := NewController(gw, nil, nil, nil)
	defer ctrl.Close()

	ctrl.Configure(customer("u1"), orderapi.ListFilters{Search: "alice"})
	require.NoError(t, ctrl.Fetch(context.Background()))

	orders := ctrl.Orders()
	require.Len(t, orders, 2)
	assert.Equal(t, "ORD1", orders[0].ID)
	assert.Equal(t, "ORD3", orders[1].ID)
}

func TestUpdateStatusInvalidatesBothCaches(t *testing.T) {
	gw := &mockGateway{
		orders:    []models.OrderSummary{{ID: "ORD1", Status: models.OrderPickedUp}},
		updateRes: &models.OrderSummary{ID: "ORD1", Status: models.OrderDelivered, CounterpartID: "u9"},
	}
	cache := newMockCache()
	sink := &mockSink{}
	ctrl := NewController(gw, cache, nil, sink)
	defer ctrl.Close()

	ctrl.Configure(customer("u1"), orderapi.ListFilters{})
	require.NoError(t, ctrl.Fetch(context.Background()))
	require.False(t, ctrl.IsStale())

	updated, err := ctrl.UpdateStatus(context.Background(), "ORD1", models.OrderDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, updated.Status)

	assert.Contains(t, cache.invalidatedOrders, "ORD1")
	assert.Contains(t, cache.invalidatedLists, "u1")
	// Next read must refetch rather than serve the pre-update snapshot
	assert.True(t, ctrl.IsStale())

	kind, _ := sink.last()
	assert.Equal(t, NotifySuccess, kind)
}

func TestUpdateStatusConflictSurfacesServerMessageVerbatim(t *testing.T) {
	serverMsg := "cannot move a DELIVERED order back to PLACED"
	gw := &mockGateway{updateErr: &orderapi.ConflictError{Message: serverMsg}}
	cache := newMockCache()
	sink := &mockSink{}
	ctrl := NewController(gw, cache, nil, sink)
	defer ctrl.Close()

	ctrl.Configure(customer("u1"), orderapi.ListFilters{})

	_, err := ctrl.UpdateStatus(context.Background(), "ORD1", models.OrderPlaced)
	require.Error(t, err)

	kind, message := sink.last()
	assert.Equal(t, NotifyError, kind)
	assert.Equal(t, serverMsg, message)

	// Failed update leaves cached state untouched
	assert.Empty(t, cache.invalidatedOrders)
	assert.Empty(t, cache.invalidatedLists)
}

func TestOrderEventTriggersRefetch(t *testing.T) {
	gw := &mockGateway{orders: []models.OrderSummary{{ID: "ORD1"}}}
	sub := &mockSubscriber{}
	ctrl := NewController(gw, nil, sub, nil)
	defer ctrl.Close()

	ctrl.Configure(customer("u1"), orderapi.ListFilters{})
	require.NoError(t, ctrl.Fetch(context.Background()))
	require.Equal(t, 1, gw.listCalls())

	// The event is a pure invalidation trigger: no diffing, just refetch
	sub.events <- redis.OrderEvent{OrderID: "ORD1", Status: models.OrderPreparing}

	assert.Eventually(t, func() bool {
		return gw.listCalls() == 2
	}, time.Second, 10*time.Millisecond)
}

func TestReconfigureReplacesSubscription(t *testing.T) {
	sub := &mockSubscriber{}
	ctrl := NewController(&mockGateway{}, nil, sub, nil)
	defer ctrl.Close()

	ctrl.Configure(customer("u1"), orderapi.ListFilters{})
	ctrl.Configure(customer("u2"), orderapi.ListFilters{})

	subscribed, cancelled := sub.counts()
	assert.Equal(t, 2, subscribed)
	assert.Equal(t, 1, cancelled)
}

func TestCloseTearsDownSubscription(t *testing.T) {
	sub := &mockSubscriber{}
	ctrl := NewController(&mockGateway{}, nil, sub, nil)

	ctrl.Configure(customer("u1"), orderapi.ListFilters{})
	ctrl.Close()
	ctrl.Close() // idempotent

	subscribed, cancelled := sub.counts()
	assert.Equal(t, 1, subscribed)
	assert.Equal(t, 1, cancelled)
	assert.Equal(t, PhaseIdle, ctrl.Phase())

	// A disposed controller accepts no new configuration
	ctrl.Configure(customer("u2"), orderapi.ListFilters{})
	subscribed, _ = sub.counts()
	assert.Equal(t, 1, subscribed)
}

func TestWarmStartFromCachedListIsStale(t *testing.T) {
	cache := newMockCache()
	cache.lists["u1"] = []models.OrderSummary{{ID: "ORD1"}}
	ctrl := NewController(&mockGateway{}, cache, nil, nil)
	defer ctrl.Close()

	ctrl.Configure(customer("u1"), orderapi.ListFilters{})

	assert.Equal(t, PhaseReady, ctrl.Phase())
	assert.Len(t, ctrl.Orders(), 1)
	// Cached data is displayable but still counts as stale until fetched
	assert.True(t, ctrl.IsStale())
}

func TestRegistryReusesControllerPerViewer(t *testing.T) {
	gw := &mockGateway{}
	sub := &mockSubscriber{}
	registry := NewRegistry(gw, nil, sub, nil)
	defer registry.Close()

	c1 := registry.For(customer("u1"), orderapi.ListFilters{})
	c2 := registry.For(customer("u1"), orderapi.ListFilters{})
	assert.Same(t, c1, c2)

	subscribed, _ := sub.counts()
	assert.Equal(t, 1, subscribed)

	// A filter change reconfigures the same controller
	c3 := registry.For(customer("u1"), orderapi.ListFilters{Search: "x"})
	assert.Same(t, c1, c3)
	subscribed, cancelled := sub.counts()
	assert.Equal(t, 2, subscribed)
	assert.Equal(t, 1, cancelled)
}
