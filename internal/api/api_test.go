package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fertidesk/internal/database"
	"fertidesk/internal/live"
	"fertidesk/internal/models"
	"fertidesk/internal/monitoring"
	"fertidesk/internal/orders"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open("sqlite3", filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	seed := []models.Product{
		{ID: 1, Name: "Vermicompost 5kg", Emoji: "🪱", Price: decimal.NewFromInt(10), Category: "organic", CurrentStock: 50, LowStockThreshold: 10},
		{ID: 2, Name: "Urea 1kg", Emoji: "🌾", Price: decimal.NewFromFloat(5.50), Category: "nitrogen", CurrentStock: 3, LowStockThreshold: 5},
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := orders.NewService(db, log)
	return NewServer(db, engine, live.NewHub(log), monitoring.NewMetrics(), log)
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

func orderPayload() map[string]interface{} {
	return map[string]interface{}{
		"items": []map[string]interface{}{
			{"id": 1, "name": "Vermicompost 5kg", "emoji": "🪱", "price": 10, "quantity": 2},
		},
		"totalQuantity": 2,
		"totalCost":     20,
		"customerName":  "Ravi Kumar",
		"customerEmail": "ravi@example.com",
	}
}

func TestCreateOrderEndpoint(t *testing.T) {
	s := testServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/orders", orderPayload())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Order    map[string]interface{} `json:"order"`
		Customer map[string]interface{} `json:"customer"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "waitlist", resp.Order["status"])
	assert.NotEmpty(t, resp.Order["id"])
	assert.Equal(t, float64(2), resp.Order["totalQuantity"])
	assert.Equal(t, float64(20), resp.Order["totalCost"])
	assert.Equal(t, "Ravi Kumar", resp.Customer["name"])
	assert.Equal(t, float64(1), resp.Customer["totalOrders"])
	assert.NotContains(t, w.Body.String(), "subStatus", "waitlist orders carry no sub-status")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestCreateOrderEndpointValidation(t *testing.T) {
	s := testServer(t)

	payload := orderPayload()
	payload["customerName"] = ""
	w := doJSON(t, s, http.MethodPost, "/api/orders", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Validation error", body["message"])
}

func TestCreateOrderEndpointUnknownProduct(t *testing.T) {
	s := testServer(t)

	payload := orderPayload()
	payload["items"] = []map[string]interface{}{
		{"id": 404, "name": "Ghost", "price": 1, "quantity": 1},
	}
	payload["totalQuantity"] = 1
	payload["totalCost"] = 1
	w := doJSON(t, s, http.MethodPost, "/api/orders", payload)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateOrderEndpointInsufficientStock(t *testing.T) {
	s := testServer(t)

	payload := orderPayload()
	payload["items"] = []map[string]interface{}{
		{"id": 2, "name": "Urea 1kg", "price": 5.5, "quantity": 10},
	}
	payload["totalQuantity"] = 10
	payload["totalCost"] = 55
	w := doJSON(t, s, http.MethodPost, "/api/orders", payload)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestOrderPipelineOverHTTP(t *testing.T) {
	s := testServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/orders", orderPayload())
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Order models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.Order.ID

	// confirm
	w = doJSON(t, s, http.MethodPut, "/api/orders", map[string]string{"id": id, "status": "confirmed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var order models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, models.SubStatusUnpacked, order.SubStatus)

	// dispatch before packing is rejected
	w = doJSON(t, s, http.MethodPut, "/api/orders", map[string]string{"id": id, "status": "dispatched"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// pack, then dispatch
	w = doJSON(t, s, http.MethodPut, "/api/orders", map[string]string{"id": id, "subStatus": "packed"})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, s, http.MethodPut, "/api/orders", map[string]string{"id": id, "status": "dispatched"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, models.StatusDispatched, order.Status)
	assert.Empty(t, order.SubStatus)
	assert.NotNil(t, order.DispatchedAt)
}

func TestUpdateOrderEndpointErrors(t *testing.T) {
	s := testServer(t)

	w := doJSON(t, s, http.MethodPut, "/api/orders", map[string]string{"id": "9999991", "status": "confirmed"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, s, http.MethodPost, "/api/orders", orderPayload())
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Order models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, s, http.MethodPut, "/api/orders", map[string]string{"id": created.Order.ID, "subStatus": "half-packed"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOrdersEndpoint(t *testing.T) {
	s := testServer(t)

	for i := 0; i < 3; i++ {
		w := doJSON(t, s, http.MethodPost, "/api/orders", orderPayload())
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, s, http.MethodGet, "/api/orders?status=waitlist", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 3)

	w = doJSON(t, s, http.MethodGet, "/api/orders?status=confirmed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Empty(t, list)

	w = doJSON(t, s, http.MethodGet, "/api/orders?customerId=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCustomerEndpoints(t *testing.T) {
	s := testServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/customers", map[string]interface{}{
		"name": "Meena Devi", "email": "meena@example.com", "phone": "9876543210",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var customer models.Customer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &customer))
	assert.NotZero(t, customer.ID)

	// same email updates in place
	w = doJSON(t, s, http.MethodPost, "/api/customers", map[string]interface{}{
		"name": "Meena D.", "email": "meena@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodPost, "/api/customers", map[string]interface{}{"name": "No Email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/customers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var customers []models.Customer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &customers))
	require.Len(t, customers, 1)
	assert.Equal(t, "Meena D.", customers[0].Name)
}

func TestInventoryEndpoints(t *testing.T) {
	s := testServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/inventory", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var products []models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
	assert.Len(t, products, 2)

	stock := 25
	w = doJSON(t, s, http.MethodPut, "/api/inventory", map[string]interface{}{
		"id": 2, "currentStock": stock,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var product models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &product))
	assert.Equal(t, 25, product.CurrentStock)

	w = doJSON(t, s, http.MethodPut, "/api/inventory", map[string]interface{}{
		"id": 404, "currentStock": 1,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	negative := -1
	w = doJSON(t, s, http.MethodPut, "/api/inventory", map[string]interface{}{
		"id": 1, "currentStock": negative,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthz(t *testing.T) {
	s := testServer(t)
	w := doJSON(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
