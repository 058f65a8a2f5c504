package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovenline/pizzeria/internal/domain/menu"
	"github.com/ovenline/pizzeria/internal/domain/queue"
)

// --- Mock store ---

type memStore struct {
	orders      *queue.Snapshot
	catalog     menu.Snapshot
	saveErr     error
	catalogSave int
}

func (m *memStore) Load(_ context.Context) (*queue.Snapshot, error) {
	if m.orders == nil {
		return &queue.Snapshot{NextNumber: 1}, nil
	}
	return m.orders.Clone(), nil
}

func (m *memStore) Save(_ context.Context, s *queue.Snapshot) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.orders = s.Clone()
	return nil
}

func (m *memStore) LoadCatalog(_ context.Context) (menu.Snapshot, error) {
	return m.catalog, nil
}

func (m *memStore) SaveCatalog(_ context.Context, s menu.Snapshot) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.catalog = s
	m.catalogSave++
	return nil
}

// --- Helpers ---

func newTestHandler(t *testing.T) (*Handler, *memStore, *http.ServeMux) {
	t.Helper()
	store := &memStore{}
	catalog := menu.Default()
	q := queue.New(catalog, store)
	h := NewHandler(q, catalog, store)
	mux := http.NewServeMux()
	h.Routes(mux)
	return h, store, mux
}

func doJSON(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

const createBody = `{
	"customer_name": "Ana",
	"customer_phone": "555-0101",
	"flavor": "Margherita",
	"size": "medium",
	"add_ons": ["Extra Cheddar"]
}`

// --- Tests ---

func TestCreateOrder(t *testing.T) {
	_, _, mux := newTestHandler(t)

	rec := doJSON(mux, http.MethodPost, "/api/orders", createBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["number"])
	assert.Equal(t, "pending", body["status"])
	assert.Equal(t, float64(22), body["prep_minutes"])
	assert.Equal(t, "45.00", body["value"])
}

func TestCreateOrder_UnknownFlavor(t *testing.T) {
	_, _, mux := newTestHandler(t)

	rec := doJSON(mux, http.MethodPost, "/api/orders", `{"customer_name":"Ana","flavor":"Diavola","size":"medium"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "invalid_request", decodeBody(t, rec)["code"])
}

func TestCreateOrder_MissingCustomer(t *testing.T) {
	_, _, mux := newTestHandler(t)

	rec := doJSON(mux, http.MethodPost, "/api/orders", `{"flavor":"Margherita","size":"medium"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateOrder_BadJSON(t *testing.T) {
	_, _, mux := newTestHandler(t)

	rec := doJSON(mux, http.MethodPost, "/api/orders", `{`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_json", decodeBody(t, rec)["code"])
}

func TestGetOrder(t *testing.T) {
	_, _, mux := newTestHandler(t)
	doJSON(mux, http.MethodPost, "/api/orders", createBody)

	rec := doJSON(mux, http.MethodGet, "/api/orders/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "pending", body["location"])

	rec = doJSON(mux, http.MethodGet, "/api/orders/99", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(mux, http.MethodGet, "/api/orders/zero", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestListOrders(t *testing.T) {
	_, _, mux := newTestHandler(t)
	doJSON(mux, http.MethodPost, "/api/orders", createBody)
	doJSON(mux, http.MethodPost, "/api/orders", createBody)

	rec := doJSON(mux, http.MethodGet, "/api/orders", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var pending []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pending))
	assert.Len(t, pending, 2)

	rec = doJSON(mux, http.MethodGet, "/api/orders?view=history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = doJSON(mux, http.MethodGet, "/api/orders?view=bogus", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestDeliver(t *testing.T) {
	_, _, mux := newTestHandler(t)
	doJSON(mux, http.MethodPost, "/api/orders", createBody)
	doJSON(mux, http.MethodPost, "/api/orders", createBody)

	// No body delivers the head of the queue.
	rec := doJSON(mux, http.MethodPost, "/api/deliveries", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["number"])
	assert.Equal(t, "delivered", body["status"])

	rec = doJSON(mux, http.MethodPost, "/api/deliveries", `{"position": 0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decodeBody(t, rec)["number"])

	rec = doJSON(mux, http.MethodPost, "/api/deliveries", "")
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "empty_queue", decodeBody(t, rec)["code"])
}

func TestDeliver_BadPosition(t *testing.T) {
	_, _, mux := newTestHandler(t)
	doJSON(mux, http.MethodPost, "/api/orders", createBody)

	rec := doJSON(mux, http.MethodPost, "/api/deliveries", `{"position": 5}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUpdateOrder(t *testing.T) {
	_, _, mux := newTestHandler(t)
	doJSON(mux, http.MethodPost, "/api/orders", createBody)

	rec := doJSON(mux, http.MethodPatch, "/api/orders/1", `{"size": "family"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "family", body["size"])
	assert.Equal(t, float64(32), body["prep_minutes"])

	rec = doJSON(mux, http.MethodPatch, "/api/orders/1", `{"add_add_on": "Olives"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(34), decodeBody(t, rec)["prep_minutes"])

	rec = doJSON(mux, http.MethodPatch, "/api/orders/1", `{"add_add_on": "Olives"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUpdateOrder_ExactlyOneField(t *testing.T) {
	_, _, mux := newTestHandler(t)
	doJSON(mux, http.MethodPost, "/api/orders", createBody)

	rec := doJSON(mux, http.MethodPatch, "/api/orders/1", `{}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(mux, http.MethodPatch, "/api/orders/1", `{"size":"small","notes":"x"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUpdateOrder_DeliveredIsImmutable(t *testing.T) {
	_, _, mux := newTestHandler(t)
	doJSON(mux, http.MethodPost, "/api/orders", createBody)
	doJSON(mux, http.MethodPost, "/api/deliveries", "")

	rec := doJSON(mux, http.MethodPatch, "/api/orders/1", `{"notes": "late change"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "immutable_record", decodeBody(t, rec)["code"])
}

func TestUpdateStatus(t *testing.T) {
	_, _, mux := newTestHandler(t)
	doJSON(mux, http.MethodPost, "/api/orders", createBody)

	rec := doJSON(mux, http.MethodPost, "/api/orders/1/status", `{"status": "in_preparation"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "in_preparation", decodeBody(t, rec)["status"])

	// Backward transitions are rejected.
	rec = doJSON(mux, http.MethodPost, "/api/orders/1/status", `{"status": "pending"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(mux, http.MethodPost, "/api/orders/1/status", `{"status": "baking"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(mux, http.MethodPost, "/api/orders/1/status", `{"status": "cancelled"}`)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGetMenu(t *testing.T) {
	_, _, mux := newTestHandler(t)

	rec := doJSON(mux, http.MethodGet, "/api/menu", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Len(t, body["sizes"], 4)
	assert.Len(t, body["flavors"], 8)
	assert.Len(t, body["add_ons"], 6)
}

func TestAddFlavor(t *testing.T) {
	_, store, mux := newTestHandler(t)

	rec := doJSON(mux, http.MethodPost, "/api/menu/flavors", `{
		"name": "Diavola",
		"ingredients": ["tomato sauce", "mozzarella", "spicy salami"],
		"prices": {"small": "34", "medium": "44", "large": "54", "family": "64"}
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 1, store.catalogSave)

	// Duplicate names conflict.
	rec = doJSON(mux, http.MethodPost, "/api/menu/flavors", `{
		"name": "Diavola",
		"prices": {"small": "1", "medium": "1", "large": "1", "family": "1"}
	}`)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestAddFlavor_MissingPrice(t *testing.T) {
	_, _, mux := newTestHandler(t)

	rec := doJSON(mux, http.MethodPost, "/api/menu/flavors", `{
		"name": "Diavola",
		"prices": {"small": "34"}
	}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRemoveFlavor(t *testing.T) {
	_, _, mux := newTestHandler(t)

	rec := doJSON(mux, http.MethodDelete, "/api/menu/flavors/Margherita", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(mux, http.MethodDelete, "/api/menu/flavors/Margherita", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRepriceFlavor(t *testing.T) {
	h, _, mux := newTestHandler(t)

	rec := doJSON(mux, http.MethodPut, "/api/menu/flavors/Margherita/price", `{"size": "medium", "price": "42.50"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	p, err := h.catalog.Price("Margherita", menu.SizeMedium)
	require.NoError(t, err)
	assert.Equal(t, "42.50", p.StringFixed(2))
}

func TestAddOnEndpoints(t *testing.T) {
	_, _, mux := newTestHandler(t)

	rec := doJSON(mux, http.MethodPost, "/api/menu/add-ons", `{"name": "Truffle Oil", "price": "9.50"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(mux, http.MethodPut, "/api/menu/add-ons/Truffle%20Oil/price", `{"price": "8"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(mux, http.MethodDelete, "/api/menu/add-ons/Truffle%20Oil", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(mux, http.MethodDelete, "/api/menu/add-ons/Truffle%20Oil", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSalesReport(t *testing.T) {
	_, _, mux := newTestHandler(t)
	doJSON(mux, http.MethodPost, "/api/orders", createBody)
	doJSON(mux, http.MethodPost, "/api/deliveries", "")

	rec := doJSON(mux, http.MethodGet, "/api/reports/sales?period=day", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["total_orders"])
	assert.Equal(t, "45.00", body["total_revenue"])

	rec = doJSON(mux, http.MethodGet, "/api/reports/sales?period=fortnight", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSalesReport_PendingOrdersExcluded(t *testing.T) {
	_, _, mux := newTestHandler(t)
	doJSON(mux, http.MethodPost, "/api/orders", createBody)

	rec := doJSON(mux, http.MethodGet, "/api/reports/sales", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeBody(t, rec)["total_orders"])
}

func TestSalesReport_CustomWindow(t *testing.T) {
	_, _, mux := newTestHandler(t)
	doJSON(mux, http.MethodPost, "/api/orders", createBody)
	doJSON(mux, http.MethodPost, "/api/deliveries", "")

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")

	rec := doJSON(mux, http.MethodGet, "/api/reports/sales?start="+yesterday+"&end="+tomorrow, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["total_orders"])
	assert.Equal(t, "45.00", body["total_revenue"])

	// A window that ended yesterday misses today's delivery.
	rec = doJSON(mux, http.MethodGet, "/api/reports/sales?end="+yesterday, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeBody(t, rec)["total_orders"])
}

func TestSalesReport_BadWindow(t *testing.T) {
	_, _, mux := newTestHandler(t)

	rec := doJSON(mux, http.MethodGet, "/api/reports/sales?start=not-a-date", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(mux, http.MethodGet, "/api/reports/sales?period=day&start=2026-01-01", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(mux, http.MethodGet, "/api/reports/sales?start=2026-02-01&end=2026-01-01", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestParseBound(t *testing.T) {
	start, err := parseBound("2026-01-15", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), start)

	end, err := parseBound("2026-01-15", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 15, 23, 59, 59, 0, time.UTC), end)

	exact, err := parseBound("2026-01-15T08:30:00Z", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 15, 8, 30, 0, 0, time.UTC), exact)

	_, err = parseBound("15/01/2026", false)
	require.Error(t, err)
}

func TestSnapshotSaveFailure(t *testing.T) {
	_, store, mux := newTestHandler(t)
	store.saveErr = context.DeadlineExceeded

	rec := doJSON(mux, http.MethodPost, "/api/orders", createBody)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "persistence_failed", decodeBody(t, rec)["code"])
}
