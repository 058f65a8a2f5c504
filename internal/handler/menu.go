package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/ovenline/pizzeria/internal/domain/menu"
	"github.com/ovenline/pizzeria/internal/domain/queue"
)

func (h *Handler) getMenu(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sizes := h.catalog.Sizes()
	flavors := h.catalog.Flavors()
	addOns := h.catalog.AddOns()

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("sizes")
		e.ArrStart()
		for _, s := range sizes {
			e.ObjStart()
			e.FieldStart("label")
			e.Str(s.Label)
			e.FieldStart("base_prep_minutes")
			e.Int(s.BasePrepMinutes)
			e.ObjEnd()
		}
		e.ArrEnd()
		e.FieldStart("flavors")
		e.ArrStart()
		for _, f := range flavors {
			encodeFlavor(e, f, sizes)
		}
		e.ArrEnd()
		e.FieldStart("add_ons")
		e.ArrStart()
		for _, a := range addOns {
			e.ObjStart()
			e.FieldStart("name")
			e.Str(a.Name)
			e.FieldStart("price")
			e.Str(a.Price.StringFixed(2))
			e.ObjEnd()
		}
		e.ArrEnd()
		e.ObjEnd()
	})
}

// encodeFlavor writes prices in catalog size order so the menu renders
// deterministically.
func encodeFlavor(e *jx.Encoder, f menu.Flavor, sizes []menu.Size) {
	e.ObjStart()
	e.FieldStart("name")
	e.Str(f.Name)
	e.FieldStart("ingredients")
	e.ArrStart()
	for _, ing := range f.Ingredients {
		e.Str(ing)
	}
	e.ArrEnd()
	e.FieldStart("prices")
	e.ObjStart()
	for _, s := range sizes {
		if p, ok := f.Prices[s.Label]; ok {
			e.FieldStart(s.Label)
			e.Str(p.StringFixed(2))
		}
	}
	e.ObjEnd()
	e.ObjEnd()
}

type addFlavorRequest struct {
	Name        string                     `json:"name"`
	Ingredients []string                   `json:"ingredients"`
	Prices      map[string]decimal.Decimal `json:"prices"`
}

func (h *Handler) addFlavor(w http.ResponseWriter, r *http.Request) {
	var req addFlavorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "malformed request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", "name is required")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.catalog.AddFlavor(req.Name, req.Ingredients, req.Prices); err != nil {
		respondError(w, r, err)
		return
	}
	h.saveCatalog(w, r, http.StatusCreated)
}

func (h *Handler) removeFlavor(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.catalog.RemoveFlavor(r.PathValue("name")); err != nil {
		respondError(w, r, err)
		return
	}
	h.saveCatalog(w, r, http.StatusNoContent)
}

type repriceFlavorRequest struct {
	Size  string          `json:"size"`
	Price decimal.Decimal `json:"price"`
}

func (h *Handler) repriceFlavor(w http.ResponseWriter, r *http.Request) {
	var req repriceFlavorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "malformed request body")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.catalog.RepriceFlavor(r.PathValue("name"), req.Size, req.Price); err != nil {
		respondError(w, r, err)
		return
	}
	h.saveCatalog(w, r, http.StatusOK)
}

type addAddOnRequest struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

func (h *Handler) addAddOn(w http.ResponseWriter, r *http.Request) {
	var req addAddOnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "malformed request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", "name is required")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.catalog.AddAddOn(req.Name, req.Price); err != nil {
		respondError(w, r, err)
		return
	}
	h.saveCatalog(w, r, http.StatusCreated)
}

func (h *Handler) removeAddOn(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.catalog.RemoveAddOn(r.PathValue("name")); err != nil {
		respondError(w, r, err)
		return
	}
	h.saveCatalog(w, r, http.StatusNoContent)
}

type repriceAddOnRequest struct {
	Price decimal.Decimal `json:"price"`
}

func (h *Handler) repriceAddOn(w http.ResponseWriter, r *http.Request) {
	var req repriceAddOnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "malformed request body")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.catalog.RepriceAddOn(r.PathValue("name"), req.Price); err != nil {
		respondError(w, r, err)
		return
	}
	h.saveCatalog(w, r, http.StatusOK)
}

// saveCatalog persists the catalog after a successful edit. The edit stays
// applied in memory even when the save fails, same contract as the queue.
func (h *Handler) saveCatalog(w http.ResponseWriter, r *http.Request, status int) {
	if err := h.catalogStore.SaveCatalog(r.Context(), h.catalog.Snapshot()); err != nil {
		respondError(w, r, errors.Wrapf(queue.ErrSnapshotSave, "%v", err))
		return
	}
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("status")
		e.Str("ok")
		e.ObjEnd()
	})
}
