package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rl1809/pizzan/internal/core/service"
	"github.com/rl1809/pizzan/internal/core/session"
)

// CookieName carries the session token.
const CookieName = "token"

type sessionKey struct{}

// TokenRequest is the body of POST /jwt. Email is required; other fields
// are accepted and ignored.
type TokenRequest struct {
	Email string `json:"email"`
}

// RequireSession rejects requests without a valid session cookie before
// any store access and exposes the verified claims to the next handler.
func (h *HTTPHandler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(CookieName)
		if err != nil || cookie.Value == "" {
			writeJSON(w, http.StatusUnauthorized, StatusResponse{Success: false, Message: "unauthorized"})
			return
		}

		claims, err := h.signer.Verify(cookie.Value)
		if err != nil {
			h.logger.Debug("session rejected", "error", err)
			writeJSON(w, http.StatusUnauthorized, StatusResponse{Success: false, Message: "unauthorized"})
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFromContext returns the claims attached by RequireSession.
func SessionFromContext(ctx context.Context) (*session.Claims, bool) {
	claims, ok := ctx.Value(sessionKey{}).(*session.Claims)
	return claims, ok && claims != nil
}

func (h *HTTPHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, "issue token", err)
		return
	}
	if req.Email == "" {
		h.writeError(w, r, "issue token", fmt.Errorf("%w: email", service.ErrMissingField))
		return
	}

	token, _, err := h.signer.Issue(req.Email)
	if err != nil {
		h.writeError(w, r, "issue token", err)
		return
	}

	http.SetCookie(w, h.sessionCookie(token, int(h.signer.TTL().Seconds())))
	writeJSON(w, http.StatusOK, StatusResponse{Success: true})
}

func (h *HTTPHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// MaxAge < 0 renders as Max-Age=0
	http.SetCookie(w, h.sessionCookie("", -1))
	writeJSON(w, http.StatusOK, StatusResponse{Success: true})
}

func (h *HTTPHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	cookie := &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
	if h.cookieSecure {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteNoneMode
	}
	return cookie
}
