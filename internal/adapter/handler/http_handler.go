package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rl1809/pizzan/internal/core/domain"
	"github.com/rl1809/pizzan/internal/core/service"
	"github.com/rl1809/pizzan/internal/core/session"
)

const maxBodyBytes = 1 << 20

type HTTPHandler struct {
	catalog      *service.CatalogService
	carts        *service.CartService
	users        *service.UserService
	signer       *session.Signer
	cookieSecure bool
	corsOrigins  []string
	logger       *slog.Logger
}

type Options struct {
	CookieSecure bool
	CORSOrigins  []string
	Logger       *slog.Logger
}

type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func NewHTTPHandler(
	catalog *service.CatalogService,
	carts *service.CartService,
	users *service.UserService,
	signer *session.Signer,
	opts Options,
) *HTTPHandler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &HTTPHandler{
		catalog:      catalog,
		carts:        carts,
		users:        users,
		signer:       signer,
		cookieSecure: opts.CookieSecure,
		corsOrigins:  opts.CORSOrigins,
		logger:       logger,
	}
}

// Routes builds the full HTTP surface.
func (h *HTTPHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware(h.corsOrigins))

	r.Get("/", h.Root)
	r.Get("/health", h.HealthCheck)

	r.Get("/foods", h.ListFoods)
	r.Post("/foods", h.CreateFood)
	r.Get("/foodsCount", h.CountFoods)
	r.Get("/foods/{id}", h.GetFood)
	r.Patch("/foods/{id}", h.UpdateFoodStock)
	r.Put("/foods/{id}", h.UpsertFood)

	r.Post("/mycarts", h.AddToCart)
	r.With(h.RequireSession).Get("/mycarts", h.ListCart)
	r.Delete("/mycarts/{id}", h.RemoveFromCart)

	r.Post("/users", h.CreateUser)
	r.Get("/users", h.ListUsers)
	r.Get("/users/{admin_id}", h.GetUserByAdminID)

	r.Post("/jwt", h.IssueToken)
	r.Post("/logout", h.Logout)

	return r
}

func (h *HTTPHandler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "Pizzan website")
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeError maps service and store errors onto status codes. Anything
// unrecognised is a store failure and is logged with op.
func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, session.ErrInvalidToken):
		status, message = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, service.ErrForbidden):
		status, message = http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		status, message = http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, service.ErrInvalidPagination),
		errors.Is(err, service.ErrInvalidSort),
		errors.Is(err, service.ErrMissingField),
		errors.Is(err, errBadRequest):
		status, message = http.StatusBadRequest, err.Error()
	default:
		h.logger.Error("request failed",
			"op", op,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
	}

	writeJSON(w, status, StatusResponse{Success: false, Message: message})
}

var errBadRequest = errors.New("invalid request body")

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errBadRequest
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *HTTPHandler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(o, "/")] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && allowed[origin] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
				w.Header().Add("Vary", "Origin")
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
