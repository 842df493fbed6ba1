package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/nikolayk812/storefront-cart/internal/port"
)

const anonymousSwitchTimeout = 5 * time.Second

// Login signs in against the backend and switches the cart to the user's
// persisted cart.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_credentials", "username and password are required")
		return
	}

	identity, err := h.session.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	if _, err := h.cart.SwitchIdentity(r.Context(), identity.Username); err != nil {
		h.abandonLogin(identity.Username, err)
		handleError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, mapIdentityToDTO(identity))
}

// abandonLogin drops the credential of a login whose cart could not be loaded.
func (h *Handler) abandonLogin(username string, cause error) {
	h.session.Logout()

	ctx, cancel := context.WithTimeout(context.Background(), anonymousSwitchTimeout)
	defer cancel()

	if _, err := h.cart.SwitchIdentity(ctx, ""); err != nil {
		h.logger.Error("failed to restore anonymous cart", "error", err)
	}

	h.logger.Warn("login abandoned, cart switch failed", "username", username, "error", cause)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_credentials", "username and password are required")
		return
	}

	if err := h.session.Register(r.Context(), req.Username, req.Email, req.Password, req.Role); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// Logout drops the credential and switches back to the anonymous cart.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.session.Logout()

	cart, err := h.cart.SwitchIdentity(r.Context(), "")
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, mapCartToDTO(cart))
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	identity, err := h.session.Me(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, mapIdentityToDTO(identity))
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	identity, err := h.session.UpdateMe(r.Context(), port.Identity{Username: req.Username, Email: req.Email})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, mapIdentityToDTO(identity))
}
