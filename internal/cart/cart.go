package cart

import (
	"log"
	"sync"

	"athani_mart/internal/models"
)

// Store is the durable mirror for a cart's line set. Both the Redis client
// and the gorm cart repository satisfy it.
type Store interface {
	SaveLines(sessionKey string, lines []models.CartLine) error
	LoadLines(sessionKey string) ([]models.CartLine, error)
	ClearLines(sessionKey string) error
}

// Cart holds one session's line set. Totals, item count and the seller set
// are always recomputed from the lines, never cached. Operations cannot
// fail; store errors are logged and swallowed.
type Cart struct {
	mu         sync.Mutex
	sessionKey string
	lines      []models.CartLine
	store      Store
}

// New creates a cart for the given session key, loading any persisted lines
// from the store. A load failure starts the cart empty.
func New(sessionKey string, store Store) *Cart {
	c := &Cart{sessionKey: sessionKey, store: store}
	if store != nil {
		lines, err := store.LoadLines(sessionKey)
		if err == nil {
			c.lines = lines
		}
	}
	return c
}

// AddItem inserts a new line at quantity 1, or increments the quantity of
// an existing line with the same identity. The incoming quantity is ignored.
func (c *Cart) AddItem(line models.CartLine) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ID == line.ID {
			c.lines[i].Quantity++
			c.persist()
			return
		}
	}

	line.Quantity = 1
	line.SessionKey = c.sessionKey
	c.lines = append(c.lines, line)
	c.persist()
}

// RemoveItem deletes the line with the given identity. No-op when absent.
func (c *Cart) RemoveItem(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(id)
}

// UpdateQuantity sets a line's quantity. A quantity of zero or below
// removes the line instead of storing a non-positive value. No-op when
// the identity is absent.
func (c *Cart) UpdateQuantity(id string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity <= 0 {
		c.removeLocked(id)
		return
	}

	for i := range c.lines {
		if c.lines[i].ID == id {
			c.lines[i].Quantity = quantity
			c.persist()
			return
		}
	}
}

// Clear empties the line set unconditionally.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	c.persist()
}

// Total returns the sum of unit price times quantity over all lines.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0.0
	for _, line := range c.lines {
		total += line.UnitPrice * float64(line.Quantity)
	}
	return total
}

// ItemCount returns the sum of quantities over all lines.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, line := range c.lines {
		count += line.Quantity
	}
	return count
}

// Stores returns the deduplicated sellers across lines, in first-seen order.
func (c *Cart) Stores() []models.Seller {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]bool)
	sellers := []models.Seller{}
	for _, line := range c.lines {
		if seen[line.SellerID] {
			continue
		}
		seen[line.SellerID] = true
		sellers = append(sellers, models.Seller{ID: line.SellerID, Name: line.SellerName})
	}
	return sellers
}

// Lines returns a copy of the current line set.
func (c *Cart) Lines() []models.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := make([]models.CartLine, len(c.lines))
	copy(lines, c.lines)
	return lines
}

func (c *Cart) removeLocked(id string) {
	for i := range c.lines {
		if c.lines[i].ID == id {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			c.persist()
			return
		}
	}
}

func (c *Cart) persist() {
	if c.store == nil {
		return
	}
	if err := c.store.SaveLines(c.sessionKey, c.lines); err != nil {
		log.Printf("Failed to persist cart %s: %v", c.sessionKey, err)
	}
}
