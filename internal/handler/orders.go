package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/ovenline/pizzeria/internal/domain/order"
	"github.com/ovenline/pizzeria/internal/domain/pricing"
	"github.com/ovenline/pizzeria/internal/domain/queue"
)

const timeFormat = time.RFC3339Nano

type createOrderRequest struct {
	CustomerName  string   `json:"customer_name"`
	CustomerPhone string   `json:"customer_phone"`
	Flavor        string   `json:"flavor"`
	Size          string   `json:"size"`
	AddOns        []string `json:"add_ons"`
	Notes         string   `json:"notes"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "malformed request body")
		return
	}
	if req.CustomerName == "" {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", "customer_name is required")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	o, err := h.queue.Enqueue(r.Context(), queue.EnqueueRequest{
		Customer: order.Customer{Name: req.CustomerName, Phone: req.CustomerPhone},
		Flavor:   req.Flavor,
		Size:     req.Size,
		AddOns:   req.AddOns,
		Notes:    req.Notes,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { h.encodeOrder(e, o) })
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var (
		pending []queue.QueuedOrder
		history []*order.Order
	)
	switch r.URL.Query().Get("view") {
	case "", "pending":
		pending = h.queue.PeekAll()
	case "history":
		history = h.queue.History()
	default:
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", "view must be pending or history")
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, qo := range pending {
			h.encodeQueuedOrder(e, qo)
		}
		for _, o := range history {
			h.encodeOrder(e, o)
		}
		e.ArrEnd()
	})
}

// encodeQueuedOrder wraps an order with its queue position metadata.
func (h *Handler) encodeQueuedOrder(e *jx.Encoder, qo queue.QueuedOrder) {
	e.ObjStart()
	e.FieldStart("order")
	h.encodeOrder(e, qo.Order)
	e.FieldStart("waiting_minutes")
	e.Int(int(qo.Waiting / time.Minute))
	e.ObjEnd()
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	number, ok := orderNumber(w, r)
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	o, loc, err := h.queue.Find(number)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("location")
		e.Str(string(loc))
		e.FieldStart("order")
		h.encodeOrder(e, o)
		e.ObjEnd()
	})
}

// updateOrderRequest carries exactly one field change per request, matching
// the one-field-at-a-time mutation contract of the queue.
type updateOrderRequest struct {
	Flavor      *string   `json:"flavor"`
	Size        *string   `json:"size"`
	Notes       *string   `json:"notes"`
	AddAddOn    *string   `json:"add_add_on"`
	RemoveAddOn *string   `json:"remove_add_on"`
	AddOns      *[]string `json:"add_ons"`
}

func (r *updateOrderRequest) fieldCount() int {
	n := 0
	for _, set := range []bool{
		r.Flavor != nil, r.Size != nil, r.Notes != nil,
		r.AddAddOn != nil, r.RemoveAddOn != nil, r.AddOns != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	number, ok := orderNumber(w, r)
	if !ok {
		return
	}
	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "malformed request body")
		return
	}
	if req.fieldCount() != 1 {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", "exactly one field must be set")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var (
		o   *order.Order
		err error
	)
	ctx := r.Context()
	switch {
	case req.Flavor != nil:
		o, err = h.queue.SetFlavor(ctx, number, *req.Flavor)
	case req.Size != nil:
		o, err = h.queue.SetSize(ctx, number, *req.Size)
	case req.Notes != nil:
		o, err = h.queue.SetNotes(ctx, number, *req.Notes)
	case req.AddAddOn != nil:
		o, err = h.queue.AddAddOn(ctx, number, *req.AddAddOn)
	case req.RemoveAddOn != nil:
		o, err = h.queue.RemoveAddOn(ctx, number, *req.RemoveAddOn)
	case req.AddOns != nil:
		o, err = h.queue.ReplaceAddOns(ctx, number, *req.AddOns)
	}
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { h.encodeOrder(e, o) })
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	number, ok := orderNumber(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "malformed request body")
		return
	}
	next := order.Status(req.Status)
	if !next.Valid() {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", "unknown status "+strconv.Quote(req.Status))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	o, err := h.queue.UpdateStatus(r.Context(), number, next)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { h.encodeOrder(e, o) })
}

type deliverRequest struct {
	Position *int `json:"position"`
}

// deliver completes the next pending order, or the one at the requested
// queue position when the body names one.
func (h *Handler) deliver(w http.ResponseWriter, r *http.Request) {
	req := deliverRequest{}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_json", "malformed request body")
			return
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var (
		o   *order.Order
		err error
	)
	if req.Position != nil {
		o, err = h.queue.Deliver(r.Context(), *req.Position)
	} else {
		o, err = h.queue.DeliverNext(r.Context())
	}
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { h.encodeOrder(e, o) })
}

// orderValue prices an order against the current catalog. Callers treat an
// error as "value unavailable".
func (h *Handler) orderValue(o *order.Order) (decimal.Decimal, error) {
	return pricing.Value(h.catalog, o.Flavor, o.Size, o.AddOns.Names())
}

func orderNumber(w http.ResponseWriter, r *http.Request) (int64, bool) {
	n, err := strconv.ParseInt(r.PathValue("number"), 10, 64)
	if err != nil || n < 1 {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", "order number must be a positive integer")
		return 0, false
	}
	return n, true
}
