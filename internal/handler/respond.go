package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/ovenline/pizzeria/internal/domain/menu"
	"github.com/ovenline/pizzeria/internal/domain/order"
	"github.com/ovenline/pizzeria/internal/domain/queue"
)

func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("code")
		e.Str(code)
		e.FieldStart("message")
		e.Str(message)
		e.ObjEnd()
	})
}

// respondError maps domain errors onto HTTP statuses. Anything it does not
// recognize is logged and reported as an internal error.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		dup       *menu.DuplicateNameError
		badSize   *menu.UnknownSizeError
		noPrice   *menu.MissingPriceError
		badFlavor *queue.UnknownFlavorError
		badAddOn  *queue.UnknownAddOnError
		dupAddOn  *queue.DuplicateAddOnError
		missAddOn *queue.AddOnNotOnOrderError
		badPos    *queue.PositionError
		badStatus *order.InvalidTransitionError
	)
	switch {
	case errors.Is(err, queue.ErrSnapshotSave):
		// The operation was applied in memory but the snapshot write
		// failed. Report as unavailable so the operator notices.
		writeError(w, http.StatusServiceUnavailable, "persistence_failed", err.Error())
	case errors.Is(err, menu.ErrFlavorNotFound),
		errors.Is(err, menu.ErrAddOnNotFound),
		errors.Is(err, queue.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.As(err, &dup):
		writeError(w, http.StatusConflict, "duplicate_name", err.Error())
	case errors.Is(err, queue.ErrImmutableRecord):
		writeError(w, http.StatusConflict, "immutable_record", err.Error())
	case errors.Is(err, queue.ErrEmptyQueue):
		writeError(w, http.StatusConflict, "empty_queue", err.Error())
	case errors.As(err, &badSize),
		errors.As(err, &noPrice),
		errors.As(err, &badFlavor),
		errors.As(err, &badAddOn),
		errors.As(err, &dupAddOn),
		errors.As(err, &missAddOn),
		errors.As(err, &badPos),
		errors.As(err, &badStatus):
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", err.Error())
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func encodeCustomer(e *jx.Encoder, c order.Customer) {
	e.ObjStart()
	e.FieldStart("name")
	e.Str(c.Name)
	e.FieldStart("phone")
	e.Str(c.Phone)
	e.ObjEnd()
}

func (h *Handler) encodeOrder(e *jx.Encoder, o *order.Order) {
	e.ObjStart()
	e.FieldStart("number")
	e.Int64(o.Number)
	e.FieldStart("customer")
	encodeCustomer(e, o.Customer)
	e.FieldStart("flavor")
	e.Str(o.Flavor)
	e.FieldStart("size")
	e.Str(o.Size)
	e.FieldStart("add_ons")
	e.ArrStart()
	for _, name := range o.AddOns.Names() {
		e.Str(name)
	}
	e.ArrEnd()
	if o.Notes != "" {
		e.FieldStart("notes")
		e.Str(o.Notes)
	}
	e.FieldStart("created_at")
	e.Str(o.CreatedAt.Format(timeFormat))
	e.FieldStart("status")
	e.Str(string(o.Status))
	e.FieldStart("prep_minutes")
	e.Int(o.PrepMinutes)
	if v, err := h.orderValue(o); err == nil {
		e.FieldStart("value")
		e.Str(v.StringFixed(2))
	}
	e.ObjEnd()
}
