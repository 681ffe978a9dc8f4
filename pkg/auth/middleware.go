package auth

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Middleware puts the session's user id on the request context.
type Middleware struct {
	sessions *SessionStore
	logger   *zap.Logger
}

// NewMiddleware creates a new auth middleware backed by the session store.
func NewMiddleware(sessions *SessionStore, logger *zap.Logger) *Middleware {
	return &Middleware{
		sessions: sessions,
		logger:   logger,
	}
}

// RequireUser rejects requests without a logged-in user with 401.
func (m *Middleware) RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := m.sessions.UserID(r)
		if !ok {
			m.logger.Debug("Unauthenticated request", zap.String("path", r.URL.Path))
			unauthorized(w, "Access unauthorized.")
			return
		}
		next(w, r.WithContext(WithUserID(r.Context(), userID)))
	}
}

// OptionalUser sets the user id when there is one and never rejects.
func (m *Middleware) OptionalUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if userID, ok := m.sessions.UserID(r); ok {
			r = r.WithContext(WithUserID(r.Context(), userID))
		}
		next(w, r)
	}
}

// unauthorized returns a 401 response with JSON error body.
func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": message,
	})
}
