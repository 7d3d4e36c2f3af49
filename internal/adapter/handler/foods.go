package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rl1809/pizzan/internal/core/domain"
	"github.com/rl1809/pizzan/internal/core/service"
)

// MenuItemRequest is the body of POST /foods and PUT /foods/{id}. No
// field is required.
type MenuItemRequest struct {
	Name        string  `json:"name"`
	Maker       string  `json:"maker"`
	Description string  `json:"description"`
	Origin      string  `json:"origin"`
	Image       string  `json:"image"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Email       string  `json:"email"`
	OrderCount  int     `json:"order_count"`
	Quantity    int     `json:"quantity"`
}

func (req MenuItemRequest) toDomain() domain.MenuItem {
	return domain.MenuItem{
		Name:        req.Name,
		Maker:       req.Maker,
		Description: req.Description,
		Origin:      req.Origin,
		Image:       req.Image,
		Price:       req.Price,
		Category:    req.Category,
		Email:       req.Email,
		OrderCount:  req.OrderCount,
		Quantity:    req.Quantity,
	}
}

// StockUpdateRequest is the body of PATCH /foods/{id}. Both fields are required.
type StockUpdateRequest struct {
	OrderCount *int `json:"order_count"`
	Quantity   *int `json:"quantity"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

func (h *HTTPHandler) ListFoods(w http.ResponseWriter, r *http.Request) {
	query, err := parseFoodQuery(r)
	if err != nil {
		h.writeError(w, r, "list foods", err)
		return
	}

	items, err := h.catalog.List(r.Context(), query)
	if err != nil {
		h.writeError(w, r, "list foods", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func parseFoodQuery(r *http.Request) (domain.FoodQuery, error) {
	q := r.URL.Query()

	page, err := queryInt(q.Get("page"), "page")
	if err != nil {
		return domain.FoodQuery{}, err
	}
	size, err := queryInt(q.Get("size"), "size")
	if err != nil {
		return domain.FoodQuery{}, err
	}
	desc, err := service.ParseSortOrder(q.Get("sortOrder"))
	if err != nil {
		return domain.FoodQuery{}, err
	}

	return domain.FoodQuery{
		Email:     q.Get("email"),
		SortField: q.Get("sortField"),
		SortDesc:  desc,
		Page:      page,
		Size:      size,
	}, nil
}

// queryInt parses an optional non-negative integer parameter; absent means 0.
func queryInt(v, name string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s=%q", service.ErrInvalidPagination, name, v)
	}
	return n, nil
}

func (h *HTTPHandler) CountFoods(w http.ResponseWriter, r *http.Request) {
	count, err := h.catalog.Count(r.Context())
	if err != nil {
		h.writeError(w, r, "count foods", err)
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{Count: count})
}

func (h *HTTPHandler) CreateFood(w http.ResponseWriter, r *http.Request) {
	var req MenuItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, "create food", err)
		return
	}

	result, err := h.catalog.Insert(r.Context(), req.toDomain())
	if err != nil {
		h.writeError(w, r, "create food", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) GetFood(w http.ResponseWriter, r *http.Request) {
	item, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, "get food", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *HTTPHandler) UpdateFoodStock(w http.ResponseWriter, r *http.Request) {
	var req StockUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, "update food", err)
		return
	}

	result, err := h.catalog.UpdateStock(r.Context(), chi.URLParam(r, "id"), req.OrderCount, req.Quantity)
	if err != nil {
		h.writeError(w, r, "update food", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) UpsertFood(w http.ResponseWriter, r *http.Request) {
	var req MenuItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, "upsert food", err)
		return
	}

	result, err := h.catalog.Upsert(r.Context(), chi.URLParam(r, "id"), req.toDomain())
	if err != nil {
		h.writeError(w, r, "upsert food", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
