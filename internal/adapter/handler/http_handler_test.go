package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nthminh/Pho-Viet/internal/adapter/storage"
	"github.com/nthminh/Pho-Viet/internal/core/service"
	"github.com/nthminh/Pho-Viet/internal/metrics"
)

func newTestRouter(t *testing.T) (*gin.Engine, *service.MenuService, *service.OrderService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	local := storage.NewMemoryStore()
	log := zerolog.Nop()
	met := metrics.New()
	menu := service.NewMenuService(nil, local, log, met)
	orders := service.NewOrderService(nil, local, log, met)

	router := gin.New()
	NewHTTPHandler(menu, orders, log).Register(router)
	return router, menu, orders
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func createMenuItem(t *testing.T, router *gin.Engine, name string, price int64) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/v1/menu", gin.H{
		"name":      name,
		"price":     price,
		"category":  "soup-noodle",
		"available": true,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id, _ := decode(t, w)["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestHealth(t *testing.T) {
	router, _, _ := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStorageMode_Memory(t *testing.T) {
	router, _, _ := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/api/v1/storage-mode", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "memory", body["mode"])
}

func TestMenu_CreateGetDelete(t *testing.T) {
	router, _, _ := newTestRouter(t)

	id := createMenuItem(t, router, "Phở bò tái", 65000)

	w := doJSON(t, router, http.MethodGet, "/api/v1/menu/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Phở bò tái", body["name"])
	assert.Equal(t, float64(65000), body["price"])

	w = doJSON(t, router, http.MethodDelete, "/api/v1/menu/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/menu/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMenu_CreateRejectsBadCategory(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/menu", gin.H{
		"name":     "Bánh flan",
		"price":    20000,
		"category": "dessert",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMenu_Availability(t *testing.T) {
	router, _, _ := newTestRouter(t)
	id := createMenuItem(t, router, "Phở gà", 60000)

	available := false
	w := doJSON(t, router, http.MethodPut, "/api/v1/menu/"+id+"/availability", gin.H{"available": &available})
	require.Equal(t, http.StatusOK, w.Code)

	// Customer menu hides unavailable items.
	w = doJSON(t, router, http.MethodGet, "/api/v1/menu?available=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	assert.Empty(t, items)

	// Admin listing still shows everything.
	w = doJSON(t, router, http.MethodGet, "/api/v1/menu", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	assert.Len(t, items, 1)
}

func TestMenu_Categories(t *testing.T) {
	router, _, _ := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/api/v1/menu/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var categories []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &categories))
	assert.Equal(t, []string{"soup-noodle", "rice-noodle", "appetizer", "beverage"}, categories)
}

func TestMenu_Seed(t *testing.T) {
	router, _, _ := newTestRouter(t)
	w := doJSON(t, router, http.MethodPost, "/api/v1/menu/seed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(12), body["created"])
}

func TestOrders_SubmitAndGet(t *testing.T) {
	router, _, _ := newTestRouter(t)
	itemID := createMenuItem(t, router, "Phở bò tái", 65000)

	w := doJSON(t, router, http.MethodPost, "/api/v1/orders", gin.H{
		"tableNumber": 4,
		"items": []gin.H{
			{"menuItemId": itemID, "quantity": 2, "note": "ít hành"},
		},
		"customerName": "Minh",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	orderID, _ := decode(t, w)["id"].(string)
	require.NotEmpty(t, orderID)

	w = doJSON(t, router, http.MethodGet, "/api/v1/orders/"+orderID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(130000), body["totalAmount"])
	assert.Equal(t, "pending", body["status"])
	assert.Equal(t, "Minh", body["customerName"])
}

func TestOrders_SubmitUnknownMenuItem(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/orders", gin.H{
		"tableNumber": 4,
		"items":       []gin.H{{"menuItemId": "missing", "quantity": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrders_Advance(t *testing.T) {
	router, _, _ := newTestRouter(t)
	itemID := createMenuItem(t, router, "Phở bò tái", 65000)

	w := doJSON(t, router, http.MethodPost, "/api/v1/orders", gin.H{
		"tableNumber": 2,
		"items":       []gin.H{{"menuItemId": itemID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	orderID, _ := decode(t, w)["id"].(string)

	// Skipping a step conflicts.
	w = doJSON(t, router, http.MethodPost, "/api/v1/orders/"+orderID+"/advance", gin.H{"status": "ready"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/orders/"+orderID+"/advance", gin.H{"status": "preparing"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/orders/"+orderID+"/advance", gin.H{"status": "nonsense"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/orders/missing/advance", gin.H{"status": "preparing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrders_ListFiltered(t *testing.T) {
	router, _, _ := newTestRouter(t)
	itemID := createMenuItem(t, router, "Phở bò tái", 65000)

	for _, table := range []int{3, 3, 7} {
		w := doJSON(t, router, http.MethodPost, "/api/v1/orders", gin.H{
			"tableNumber": table,
			"items":       []gin.H{{"menuItemId": itemID, "quantity": 1}},
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, router, http.MethodGet, "/api/v1/orders?table=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var orders []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
	assert.Len(t, orders, 2)

	w = doJSON(t, router, http.MethodGet, "/api/v1/orders?status=completed", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
	assert.Empty(t, orders)

	w = doJSON(t, router, http.MethodGet, "/api/v1/orders?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/orders?table=zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
