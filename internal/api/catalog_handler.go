package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Products(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	dtos := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		dtos = append(dtos, mapProductToDTO(p))
	}

	respondJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "id must be a positive integer")
		return
	}

	product, err := h.catalog.Product(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	dto := mapProductToDTO(product)

	// stock is advisory; the product is still shown when inventory is down
	levels, err := h.catalog.CheckStock(r.Context(), product.SKUCode)
	if err != nil {
		h.logger.Warn("failed to check stock", "sku", product.SKUCode, "error", err)
	}
	for _, level := range levels {
		if level.SKUCode == product.SKUCode {
			inStock := level.InStock
			dto.InStock = &inStock
		}
	}

	respondJSON(w, http.StatusOK, dto)
}
