package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rl1809/pizzan/internal/core/domain"
)

// UserRequest is the body of POST /users. Email is required.
type UserRequest struct {
	Email   string `json:"email"`
	AdminID string `json:"admin_id"`
	Name    string `json:"name"`
	Photo   string `json:"photo"`
}

func (h *HTTPHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, "create user", err)
		return
	}

	result, err := h.users.Create(r.Context(), domain.User{
		Email:   req.Email,
		AdminID: req.AdminID,
		Name:    req.Name,
		Photo:   req.Photo,
	})
	if err != nil {
		h.writeError(w, r, "create user", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.writeError(w, r, "list users", err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *HTTPHandler) GetUserByAdminID(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByAdminID(r.Context(), chi.URLParam(r, "admin_id"))
	if err != nil {
		h.writeError(w, r, "get user", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
