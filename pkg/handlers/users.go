package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/social-scuba/divelog/pkg/audit"
	"github.com/social-scuba/divelog/pkg/auth"
	"github.com/social-scuba/divelog/pkg/models"
	"github.com/social-scuba/divelog/pkg/services"
)

// UpdateProfileRequest is the request body for PUT /api/users/profile.
// Password must be the current password.
type UpdateProfileRequest struct {
	models.ProfileUpdate
	Password string `json:"password"`
}

// UsersHandler handles profile and buddy requests.
type UsersHandler struct {
	userService  services.UserService
	buddyService services.BuddyService
	sessions     *auth.SessionStore
	auditor      *audit.SecurityAuditor
	logger       *zap.Logger
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(userService services.UserService, buddyService services.BuddyService, sessions *auth.SessionStore, auditor *audit.SecurityAuditor, logger *zap.Logger) *UsersHandler {
	return &UsersHandler{
		userService:  userService,
		buddyService: buddyService,
		sessions:     sessions,
		auditor:      auditor,
		logger:       logger,
	}
}

// RegisterRoutes registers the users handler's routes on the given mux.
// Every route requires a logged-in user.
func (h *UsersHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/users/{id}", authMiddleware.RequireUser(h.Show))
	mux.HandleFunc("PUT /api/users/profile", authMiddleware.RequireUser(h.UpdateProfile))
	mux.HandleFunc("DELETE /api/users/me", authMiddleware.RequireUser(h.Delete))

	mux.HandleFunc("GET /api/users/{id}/buddies", authMiddleware.RequireUser(h.Buddies))
	mux.HandleFunc("GET /api/users/{id}/buddies-to", authMiddleware.RequireUser(h.BuddiesTo))
	mux.HandleFunc("POST /api/users/add-buddy/{id}", authMiddleware.RequireUser(h.AddBuddy))
	mux.HandleFunc("POST /api/users/remove-buddy/{id}", authMiddleware.RequireUser(h.RemoveBuddy))
	mux.HandleFunc("GET /api/leaderboards", authMiddleware.RequireUser(h.Leaderboards))
}

// Show handles GET /api/users/{id}: profile, stats and recent dives.
func (h *UsersHandler) Show(w http.ResponseWriter, r *http.Request) {
	userID, ok := ParseUserID(w, r, h.logger)
	if !ok {
		return
	}

	profile, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, profile, h.logger)
}

// UpdateProfile handles PUT /api/users/profile.
func (h *UsersHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error(), h.logger)
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())
	user, err := h.userService.UpdateProfile(r.Context(), userID, req.Password, req.ProfileUpdate)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, user, h.logger)
}

// Delete handles DELETE /api/users/me and logs the user out.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	if err := h.userService.Delete(r.Context(), userID); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	h.auditor.LogAccountDeleted(r.Context(), r.RemoteAddr)
	if err := h.sessions.Logout(w, r); err != nil {
		h.logger.Warn("Failed to clear session after delete", zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

// Buddies handles GET /api/users/{id}/buddies: users that user added.
func (h *UsersHandler) Buddies(w http.ResponseWriter, r *http.Request) {
	userID, ok := ParseUserID(w, r, h.logger)
	if !ok {
		return
	}
	list, err := h.buddyService.ListBuddies(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, list, h.logger)
}

// BuddiesTo handles GET /api/users/{id}/buddies-to: users who added that user.
func (h *UsersHandler) BuddiesTo(w http.ResponseWriter, r *http.Request) {
	userID, ok := ParseUserID(w, r, h.logger)
	if !ok {
		return
	}
	list, err := h.buddyService.ListBuddiesOf(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, list, h.logger)
}

// AddBuddy handles POST /api/users/add-buddy/{id}.
func (h *UsersHandler) AddBuddy(w http.ResponseWriter, r *http.Request) {
	buddyID, ok := ParseUserID(w, r, h.logger)
	if !ok {
		return
	}
	userID, _ := auth.UserIDFromContext(r.Context())
	if err := h.buddyService.Add(r.Context(), userID, buddyID); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveBuddy handles POST /api/users/remove-buddy/{id}.
func (h *UsersHandler) RemoveBuddy(w http.ResponseWriter, r *http.Request) {
	buddyID, ok := ParseUserID(w, r, h.logger)
	if !ok {
		return
	}
	userID, _ := auth.UserIDFromContext(r.Context())
	if err := h.buddyService.Remove(r.Context(), userID, buddyID); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Leaderboards handles GET /api/leaderboards for the logged-in user.
func (h *UsersHandler) Leaderboards(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	boards, err := h.buddyService.Leaderboards(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, boards, h.logger)
}
