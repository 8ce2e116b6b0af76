package handlers

import (
	"net/http"
	"strconv"

	"athani_mart/internal/models"
	"athani_mart/internal/services"

	"github.com/gin-gonic/gin"
)

type APIHandler struct {
	agentService        services.AgentService
	storeService        services.StoreService
	notificationService services.NotificationService
}

func NewAPIHandler(
	agentService services.AgentService,
	storeService services.StoreService,
	notificationService services.NotificationService,
) *APIHandler {
	return &APIHandler{
		agentService:        agentService,
		storeService:        storeService,
		notificationService: notificationService,
	}
}

// Agent endpoints

func (h *APIHandler) RegisterAgent(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		PhoneNumber string `json:"phone_number"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	agent := &models.Agent{Name: req.Name, PhoneNumber: req.PhoneNumber}
	if err := h.agentService.RegisterAgent(agent); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register agent"})
		return
	}
	c.JSON(http.StatusOK, agent)
}

func (h *APIHandler) GetAgents(c *gin.Context) {
	agents, err := h.agentService.GetAllAgents()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list agents"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"agents": agents})
}

func (h *APIHandler) SetAgentAvailability(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid agent id"})
		return
	}

	var req struct {
		Online *bool `json:"online" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	agent, err := h.agentService.SetAvailability(uint(id), *req.Online)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Agent not found"})
		return
	}
	c.JSON(http.StatusOK, agent)
}

func (h *APIHandler) VerifyAgent(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid agent id"})
		return
	}

	agent, err := h.agentService.VerifyAgent(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Agent not found"})
		return
	}
	c.JSON(http.StatusOK, agent)
}

// Store profile endpoints

func (h *APIHandler) CreateStore(c *gin.Context) {
	var store models.StoreProfile
	if err := c.ShouldBindJSON(&store); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if store.SellerID == "" || store.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "seller_id and name are required"})
		return
	}

	if err := h.storeService.CreateStore(&store); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create store"})
		return
	}
	c.JSON(http.StatusOK, store)
}

func (h *APIHandler) GetStores(c *gin.Context) {
	if kind := c.Query("kind"); kind != "" {
		stores, err := h.storeService.GetStoresByKind(models.ItemKind(kind))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list stores"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"stores": stores})
		return
	}

	stores, err := h.storeService.GetAllStores()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list stores"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stores": stores})
}

func (h *APIHandler) GetStore(c *gin.Context) {
	store, err := h.storeService.GetStoreBySellerID(c.Param("seller_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return
	}
	c.JSON(http.StatusOK, store)
}

func (h *APIHandler) SetStoreOpen(c *gin.Context) {
	var req struct {
		Open *bool `json:"open" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	store, err := h.storeService.SetOpen(c.Param("seller_id"), *req.Open)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return
	}
	c.JSON(http.StatusOK, store)
}

// Notification endpoint

func (h *APIHandler) GetNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notifications": h.notificationService.Recent()})
}
