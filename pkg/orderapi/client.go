package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"athani_mart/internal/models"
)

type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// ListFilters narrows an order list query. Search is best-effort server
// side; the sync controller applies it again client side as a fallback.
type ListFilters struct {
	Status models.OrderStatus
	Search string
}

type listResponse struct {
	Orders []models.OrderSummary `json:"orders"`
}

type updateStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListOrdersForRole returns the orders visible to a customer or vendor.
func (c *Client) ListOrdersForRole(ctx context.Context, viewer models.Viewer, filters ListFilters) ([]models.OrderSummary, error) {
	query := url.Values{}
	query.Set("viewer_id", viewer.ID)
	query.Set("role", string(viewer.Role))
	if filters.Status != "" {
		query.Set("status", string(filters.Status))
	}
	if filters.Search != "" {
		query.Set("search", filters.Search)
	}

	var response listResponse
	if err := c.doRequest(ctx, "GET", "/orders?"+query.Encode(), "", nil, &response); err != nil {
		return nil, err
	}
	return response.Orders, nil
}

// ListOrdersForAgent returns the orders available for claiming.
func (c *Client) ListOrdersForAgent(ctx context.Context, filters ListFilters) ([]models.OrderSummary, error) {
	query := url.Values{}
	if filters.Status != "" {
		query.Set("status", string(filters.Status))
	}
	if filters.Search != "" {
		query.Set("search", filters.Search)
	}

	var response listResponse
	if err := c.doRequest(ctx, "GET", "/orders/available?"+query.Encode(), "", nil, &response); err != nil {
		return nil, err
	}
	return response.Orders, nil
}

func (c *Client) GetOrderByID(ctx context.Context, orderID string) (*models.OrderSummary, error) {
	var order models.OrderSummary
	if err := c.doRequest(ctx, "GET", "/orders/"+url.PathEscape(orderID), orderID, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.OrderSummary, error) {
	body := updateStatusRequest{Status: status}

	var order models.OrderSummary
	if err := c.doRequest(ctx, "PUT", "/orders/"+url.PathEscape(orderID)+"/status", orderID, body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) doRequest(ctx context.Context, method, path, orderID string, body interface{}, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request data: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &NotFoundError{OrderID: orderID}
	case resp.StatusCode == http.StatusConflict:
		return &ConflictError{Message: serverMessage(respBody)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("order api returned status %d: %s", resp.StatusCode, serverMessage(respBody))
	}

	if dest != nil {
		if err := json.Unmarshal(respBody, dest); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

func serverMessage(body []byte) string {
	var response errorResponse
	if err := json.Unmarshal(body, &response); err == nil && response.Error != "" {
		return response.Error
	}
	return string(body)
}
