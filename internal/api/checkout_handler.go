package api

import (
	"errors"
	"net/http"

	"github.com/nikolayk812/storefront-cart/internal/checkout"
)

// Checkout blocks until the attempt commits, at most the fallback delay.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.checkout.Submit(r.Context())
	if errors.Is(err, checkout.ErrSubmissionInFlight) {
		respondError(w, http.StatusConflict, "submission_in_flight", err.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusGatewayTimeout, "timeout", "request ended before the order outcome was known")
		return
	}

	status := http.StatusOK
	if !outcome.Succeeded() {
		status = http.StatusUnprocessableEntity
	}

	respondJSON(w, status, mapOutcomeToDTO(outcome))
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, mapStateToDTO(h.status.State()))
}

func (h *Handler) OrderSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reports.OrderSummary(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

func (h *Handler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	notice, err := h.status.Acknowledge()
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, mapNoticeToDTO(notice))
}
