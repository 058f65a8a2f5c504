// Package handler is the thin HTTP adapter over the order queue, menu
// catalog and reporting engine. It owns request parsing, JSON shaping and
// error-to-status mapping; every domain rule lives below it.
package handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/ovenline/pizzeria/internal/domain/menu"
	"github.com/ovenline/pizzeria/internal/domain/queue"
)

// Handler serves the pizzeria API. The core is single-threaded by
// contract, so a mutex serializes every operation against the queue and
// catalog.
type Handler struct {
	mu           sync.Mutex
	queue        *queue.Queue
	catalog      *menu.Catalog
	catalogStore menu.Store
	now          func() time.Time
}

// NewHandler constructs a Handler around an already-restored queue and
// catalog. Catalog edits are persisted through catalogStore.
func NewHandler(q *queue.Queue, catalog *menu.Catalog, catalogStore menu.Store) *Handler {
	return &Handler{
		queue:        q,
		catalog:      catalog,
		catalogStore: catalogStore,
		now:          time.Now,
	}
}

// Routes registers all API endpoints on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/orders", h.createOrder)
	mux.HandleFunc("GET /api/orders", h.listOrders)
	mux.HandleFunc("GET /api/orders/{number}", h.getOrder)
	mux.HandleFunc("PATCH /api/orders/{number}", h.updateOrder)
	mux.HandleFunc("POST /api/orders/{number}/status", h.updateStatus)
	mux.HandleFunc("POST /api/deliveries", h.deliver)

	mux.HandleFunc("GET /api/menu", h.getMenu)
	mux.HandleFunc("POST /api/menu/flavors", h.addFlavor)
	mux.HandleFunc("DELETE /api/menu/flavors/{name}", h.removeFlavor)
	mux.HandleFunc("PUT /api/menu/flavors/{name}/price", h.repriceFlavor)
	mux.HandleFunc("POST /api/menu/add-ons", h.addAddOn)
	mux.HandleFunc("DELETE /api/menu/add-ons/{name}", h.removeAddOn)
	mux.HandleFunc("PUT /api/menu/add-ons/{name}/price", h.repriceAddOn)

	mux.HandleFunc("GET /api/reports/sales", h.salesReport)
}
