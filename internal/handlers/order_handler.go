package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"athani_mart/internal/models"
	"athani_mart/internal/ordersync"
	"athani_mart/internal/redis"
	"athani_mart/internal/services"
	"athani_mart/pkg/orderapi"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	registry     *ordersync.Registry
	gateway      *orderapi.Client
	redisClient  *redis.Client
	agentService services.AgentService
	snapshotTTL  time.Duration
}

func NewOrderHandler(
	registry *ordersync.Registry,
	gateway *orderapi.Client,
	redisClient *redis.Client,
	agentService services.AgentService,
	snapshotTTL time.Duration,
) *OrderHandler {
	return &OrderHandler{
		registry:     registry,
		gateway:      gateway,
		redisClient:  redisClient,
		agentService: agentService,
		snapshotTTL:  snapshotTTL,
	}
}

// resolveViewer builds the viewer identity from the request. Agent
// eligibility flags come from the agent profile, never from the caller.
func (h *OrderHandler) resolveViewer(c *gin.Context) (models.Viewer, bool) {
	viewerID := c.Query("viewer_id")
	role := models.ViewerRole(c.DefaultQuery("role", string(models.RoleCustomer)))

	if viewerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "viewer_id is required"})
		return models.Viewer{}, false
	}

	if role == models.RoleAgent {
		id, err := strconv.ParseUint(viewerID, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid agent id"})
			return models.Viewer{}, false
		}
		agent, err := h.agentService.GetAgentByID(uint(id))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Agent not found"})
			return models.Viewer{}, false
		}
		return h.agentService.ViewerFor(agent), true
	}

	return models.Viewer{ID: viewerID, Role: role}, true
}

// ListOrders serves the synced order list for the requesting viewer.
// An offline or unverified agent gets an idle response and no upstream call.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	viewer, ok := h.resolveViewer(c)
	if !ok {
		return
	}

	filters := orderapi.ListFilters{
		Status: models.OrderStatus(c.Query("status")),
		Search: c.Query("search"),
	}

	controller := h.registry.For(viewer, filters)
	if controller.IsStale() {
		// Errors already reached the notification sink; the stale list is
		// still served below.
		if err := controller.Fetch(c.Request.Context()); err != nil {
			log.Printf("Order fetch failed for viewer %s: %v", viewer.ID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"phase":  controller.Phase(),
		"stale":  controller.IsStale(),
		"orders": controller.Orders(),
	})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID := c.Param("id")

	if h.redisClient != nil {
		if order, err := h.redisClient.GetOrderSnapshot(orderID); err == nil {
			c.JSON(http.StatusOK, order)
			return
		}
	}

	order, err := h.gateway.GetOrderByID(c.Request.Context(), orderID)
	if err != nil {
		h.renderGatewayError(c, err)
		return
	}

	if h.redisClient != nil {
		if err := h.redisClient.SetOrderSnapshot(order, h.snapshotTTL); err != nil {
			log.Printf("Failed to cache order %s: %v", orderID, err)
		}
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	orderID := c.Param("id")

	var req struct {
		ViewerID string             `json:"viewer_id" binding:"required"`
		Role     models.ViewerRole  `json:"role"`
		Status   models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if req.Role == "" {
		req.Role = models.RoleCustomer
	}

	viewer := models.Viewer{ID: req.ViewerID, Role: req.Role}
	if req.Role == models.RoleAgent {
		id, err := strconv.ParseUint(req.ViewerID, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid agent id"})
			return
		}
		agent, err := h.agentService.GetAgentByID(uint(id))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Agent not found"})
			return
		}
		viewer = h.agentService.ViewerFor(agent)
	}

	controller := h.registry.For(viewer, orderapi.ListFilters{})
	updated, err := controller.UpdateStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		h.renderGatewayError(c, err)
		return
	}

	// Nudge the counterpart's push channel so their list refetches too.
	if h.redisClient != nil && updated.CounterpartID != "" {
		event := redis.OrderEvent{OrderID: updated.ID, Status: updated.Status}
		if err := h.redisClient.PublishOrderEvent(updated.CounterpartID, event); err != nil {
			log.Printf("Failed to publish order event for %s: %v", updated.ID, err)
		}
	}

	c.JSON(http.StatusOK, updated)
}

func (h *OrderHandler) renderGatewayError(c *gin.Context, err error) {
	var notFoundErr *orderapi.NotFoundError
	if errors.As(err, &notFoundErr) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
		return
	}
	var conflictErr *orderapi.ConflictError
	if errors.As(err, &conflictErr) {
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Message})
		return
	}
	var netErr *orderapi.NetworkError
	if errors.As(err, &netErr) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Order service unavailable"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
