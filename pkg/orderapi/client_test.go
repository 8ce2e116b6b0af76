package orderapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"athani_mart/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListOrdersForRole(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, "u1", r.URL.Query().Get("viewer_id"))
		assert.Equal(t, "customer", r.URL.Query().Get("role"))
		assert.Equal(t, "PLACED", r.URL.Query().Get("status"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"orders": []models.OrderSummary{
				{ID: "ORD1", Status: models.OrderPlaced, TotalAmount: 250},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-token")
	viewer := models.Viewer{ID: "u1", Role: models.RoleCustomer}

	orders, err := client.ListOrdersForRole(context.Background(), viewer, ListFilters{Status: models.OrderPlaced})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "ORD1", orders[0].ID)
	assert.Equal(t, 250.0, orders[0].TotalAmount)
}

func TestListOrdersForAgentHitsAvailableEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/available", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"orders": []models.OrderSummary{{ID: "ORD2", Status: models.OrderReadyForPickup}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	orders, err := client.ListOrdersForAgent(context.Background(), ListFilters{})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, models.OrderReadyForPickup, orders[0].Status)
}

func TestGetOrderByIDNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "no such order"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	_, err := client.GetOrderByID(context.Background(), "ORD9")

	var notFoundErr *NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "ORD9", notFoundErr.OrderID)
}

func TestUpdateOrderStatusConflictKeepsServerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PUT", r.Method)
		assert.Equal(t, "/orders/ORD1/status", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "DELIVERED", body["status"])

		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "order already cancelled"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	_, err := client.UpdateOrderStatus(context.Background(), "ORD1", models.OrderDelivered)

	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, "order already cancelled", conflictErr.Message)
}

func TestUpdateOrderStatusSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.OrderSummary{ID: "ORD1", Status: models.OrderDelivered})
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	order, err := client.UpdateOrderStatus(context.Background(), "ORD1", models.OrderDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, order.Status)
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	// Nothing listens here
	client := NewClient("http://127.0.0.1:1", "")
	_, err := client.GetOrderByID(context.Background(), "ORD1")

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.NotNil(t, errors.Unwrap(netErr))
}

func TestUnexpectedStatusIsPlainError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "boom"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	_, err := client.GetOrderByID(context.Background(), "ORD1")
	require.Error(t, err)

	var notFoundErr *NotFoundError
	assert.False(t, errors.As(err, &notFoundErr))
	var conflictErr *ConflictError
	assert.False(t, errors.As(err, &conflictErr))
	assert.Contains(t, err.Error(), "500")
}
