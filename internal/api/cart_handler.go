package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/nikolayk812/storefront-cart/internal/domain"
)

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, mapCartToDTO(h.cart.Snapshot()))
}

// AddItem adds one unit either of a catalog product looked up by id
// or of a product given inline.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	var product domain.Product

	switch {
	case req.Product != nil:
		p, err := mapProductDTOToDomain(*req.Product)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_product", err.Error())
			return
		}
		product = p
	case req.ProductID > 0:
		p, err := h.catalog.Product(r.Context(), req.ProductID)
		if err != nil {
			handleError(w, h.logger, err)
			return
		}
		product = p
	default:
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId must be positive")
		return
	}

	cart, err := h.cart.AddItem(product)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, mapCartToDTO(cart))
}

func (h *Handler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(w, r)
	if !ok {
		return
	}

	quantity, ok := quantityBody(w, r)
	if !ok {
		return
	}

	cart, err := h.cart.SetQuantity(index, quantity)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, mapCartToDTO(cart))
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(w, r)
	if !ok {
		return
	}

	cart, err := h.cart.RemoveItem(index)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, mapCartToDTO(cart))
}

func (h *Handler) SetSKUQuantity(w http.ResponseWriter, r *http.Request) {
	quantity, ok := quantityBody(w, r)
	if !ok {
		return
	}

	cart, err := h.cart.SetSKUQuantity(chi.URLParam(r, "sku"), quantity)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, mapCartToDTO(cart))
}

func (h *Handler) RemoveSKU(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cart.RemoveSKU(chi.URLParam(r, "sku"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, mapCartToDTO(cart))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cart.Clear()
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, mapCartToDTO(cart))
}

func indexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_index", "index must be an integer")
		return 0, false
	}
	return index, true
}

// quantityBody accepts zero and negative quantities; those remove the line.
func quantityBody(w http.ResponseWriter, r *http.Request) (int, bool) {
	var req QuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return 0, false
	}

	if req.Quantity == nil {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity is required")
		return 0, false
	}

	return *req.Quantity, true
}
