package ordersync

import (
	"sync"

	"athani_mart/internal/models"
	"athani_mart/pkg/orderapi"
)

// Registry keeps one controller per viewer for the HTTP surface, creating
// and reconfiguring them on demand and closing all of them on shutdown.
type Registry struct {
	gateway    Gateway
	cache      Cache
	subscriber Subscriber
	sink       NotificationSink

	mu          sync.Mutex
	controllers map[string]*Controller
}

func NewRegistry(gateway Gateway, cache Cache, subscriber Subscriber, sink NotificationSink) *Registry {
	return &Registry{
		gateway:     gateway,
		cache:       cache,
		subscriber:  subscriber,
		sink:        sink,
		controllers: make(map[string]*Controller),
	}
}

// For returns the viewer's controller, configured with the given filters.
// Reconfigures only when the viewer flags or filters actually changed, so
// an unchanged request reuses the live subscription.
func (r *Registry) For(viewer models.Viewer, filters orderapi.ListFilters) *Controller {
	r.mu.Lock()
	controller, ok := r.controllers[viewer.ID]
	if !ok {
		controller = NewController(r.gateway, r.cache, r.subscriber, r.sink)
		r.controllers[viewer.ID] = controller
	}
	r.mu.Unlock()

	if !ok || controller.Viewer() != viewer || controller.Filters() != filters {
		controller.Configure(viewer, filters)
	}
	return controller
}

// Close disposes every controller; subscriptions are torn down with them.
func (r *Registry) Close() {
	r.mu.Lock()
	controllers := make([]*Controller, 0, len(r.controllers))
	for _, c := range r.controllers {
		controllers = append(controllers, c)
	}
	r.controllers = make(map[string]*Controller)
	r.mu.Unlock()

	for _, c := range controllers {
		c.Close()
	}
}
