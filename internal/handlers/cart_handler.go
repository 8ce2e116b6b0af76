package handlers

import (
	"net/http"

	"athani_mart/internal/cart"
	"athani_mart/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CartHandler struct {
	carts             *cart.Manager
	defaultSessionKey string
}

func NewCartHandler(carts *cart.Manager, defaultSessionKey string) *CartHandler {
	return &CartHandler{
		carts:             carts,
		defaultSessionKey: defaultSessionKey,
	}
}

func (h *CartHandler) sessionKey(c *gin.Context) string {
	if key := c.GetHeader("X-Cart-Session"); key != "" {
		return key
	}
	return h.defaultSessionKey
}

// StartSession hands out a fresh cart session key.
func (h *CartHandler) StartSession(c *gin.Context) {
	key := uuid.NewString()
	h.carts.Cart(key)
	c.JSON(http.StatusOK, gin.H{"session_key": key})
}

// EndSession drops the in-memory cart; the persisted mirror stays.
func (h *CartHandler) EndSession(c *gin.Context) {
	h.carts.Drop(h.sessionKey(c))
	c.JSON(http.StatusOK, gin.H{"status": "ended"})
}

func (h *CartHandler) GetCart(c *gin.Context) {
	userCart := h.carts.Cart(h.sessionKey(c))
	c.JSON(http.StatusOK, gin.H{
		"lines":      userCart.Lines(),
		"total":      userCart.Total(),
		"item_count": userCart.ItemCount(),
		"stores":     userCart.Stores(),
	})
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req struct {
		ID         string          `json:"id"`
		ProductID  string          `json:"product_id" binding:"required"`
		Name       string          `json:"name" binding:"required"`
		UnitPrice  float64         `json:"unit_price"`
		ImageRef   string          `json:"image_ref"`
		SellerID   string          `json:"seller_id"`
		SellerName string          `json:"seller_name"`
		Kind       models.ItemKind `json:"kind"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if req.UnitPrice < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unit price cannot be negative"})
		return
	}
	if req.Kind == "" {
		req.Kind = models.KindProduct
	}
	// Identity defaults to kind:product so re-adding the same product merges.
	if req.ID == "" {
		req.ID = string(req.Kind) + ":" + req.ProductID
	}

	userCart := h.carts.Cart(h.sessionKey(c))
	userCart.AddItem(models.CartLine{
		ID:         req.ID,
		ProductID:  req.ProductID,
		Name:       req.Name,
		UnitPrice:  req.UnitPrice,
		ImageRef:   req.ImageRef,
		SellerID:   req.SellerID,
		SellerName: req.SellerName,
		Kind:       req.Kind,
	})

	c.JSON(http.StatusOK, gin.H{
		"lines":      userCart.Lines(),
		"total":      userCart.Total(),
		"item_count": userCart.ItemCount(),
	})
}

func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	lineID := c.Param("id")

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userCart := h.carts.Cart(h.sessionKey(c))
	userCart.UpdateQuantity(lineID, req.Quantity)

	c.JSON(http.StatusOK, gin.H{
		"lines":      userCart.Lines(),
		"total":      userCart.Total(),
		"item_count": userCart.ItemCount(),
	})
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	lineID := c.Param("id")

	userCart := h.carts.Cart(h.sessionKey(c))
	userCart.RemoveItem(lineID)

	c.JSON(http.StatusOK, gin.H{
		"lines":      userCart.Lines(),
		"total":      userCart.Total(),
		"item_count": userCart.ItemCount(),
	})
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	userCart := h.carts.Cart(h.sessionKey(c))
	userCart.Clear()
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
