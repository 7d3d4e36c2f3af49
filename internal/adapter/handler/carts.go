package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rl1809/pizzan/internal/core/domain"
)

// CartEntryRequest is the body of POST /mycarts. Email is required.
type CartEntryRequest struct {
	Email    string    `json:"email"`
	FoodID   string    `json:"food_id"`
	Name     string    `json:"name"`
	Maker    string    `json:"maker"`
	Image    string    `json:"image"`
	Category string    `json:"category"`
	Price    float64   `json:"price"`
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"added_at"`
}

func (h *HTTPHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req CartEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, "add to cart", err)
		return
	}

	result, err := h.carts.Add(r.Context(), domain.CartEntry{
		Email:    req.Email,
		FoodID:   req.FoodID,
		Name:     req.Name,
		Maker:    req.Maker,
		Image:    req.Image,
		Category: req.Category,
		Price:    req.Price,
		Quantity: req.Quantity,
		AddedAt:  req.AddedAt,
	})
	if err != nil {
		h.writeError(w, r, "add to cart", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ListCart serves GET /mycarts behind RequireSession.
func (h *HTTPHandler) ListCart(w http.ResponseWriter, r *http.Request) {
	claims, ok := SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, StatusResponse{Success: false, Message: "unauthorized"})
		return
	}

	entries, err := h.carts.ListForOwner(r.Context(), claims.Subject, r.URL.Query().Get("email"))
	if err != nil {
		h.writeError(w, r, "list cart", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *HTTPHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	result, err := h.carts.Remove(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, "remove from cart", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
