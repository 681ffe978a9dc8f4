package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/social-scuba/divelog/pkg/audit"
	"github.com/social-scuba/divelog/pkg/auth"
	"github.com/social-scuba/divelog/pkg/models"
	"github.com/social-scuba/divelog/pkg/services"
)

// DivesHandler handles logging, editing and browsing dives.
type DivesHandler struct {
	diveService services.DiveService
	auditor     *audit.SecurityAuditor
	logger      *zap.Logger
}

// NewDivesHandler creates a new dives handler.
func NewDivesHandler(diveService services.DiveService, auditor *audit.SecurityAuditor, logger *zap.Logger) *DivesHandler {
	return &DivesHandler{
		diveService: diveService,
		auditor:     auditor,
		logger:      logger,
	}
}

// RegisterRoutes registers the dives handler's routes on the given mux.
func (h *DivesHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/feed", authMiddleware.RequireUser(h.Feed))
	mux.HandleFunc("POST /api/divesites/{id}/dives", authMiddleware.RequireUser(h.Log))
	mux.HandleFunc("GET /api/dives/{id}", authMiddleware.RequireUser(h.Get))
	mux.HandleFunc("PUT /api/dives/{id}", authMiddleware.RequireUser(h.Edit))
	mux.HandleFunc("DELETE /api/dives/{id}", authMiddleware.RequireUser(h.Delete))
}

// Feed handles GET /api/feed: recent dives by the user and their buddies.
func (h *DivesHandler) Feed(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	dives, err := h.diveService.Feed(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, dives, h.logger)
}

// Log handles POST /api/divesites/{id}/dives.
func (h *DivesHandler) Log(w http.ResponseWriter, r *http.Request) {
	siteID, ok := ParseDiveSiteID(w, r, h.logger)
	if !ok {
		return
	}

	var req models.DiveInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error(), h.logger)
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())
	dive, err := h.diveService.Log(r.Context(), userID, siteID, req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, dive, h.logger)
}

// Get handles GET /api/dives/{id}.
func (h *DivesHandler) Get(w http.ResponseWriter, r *http.Request) {
	diveID, ok := ParseDiveID(w, r, h.logger)
	if !ok {
		return
	}
	dive, err := h.diveService.Get(r.Context(), diveID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, dive, h.logger)
}

// Edit handles PUT /api/dives/{id}.
func (h *DivesHandler) Edit(w http.ResponseWriter, r *http.Request) {
	diveID, ok := ParseDiveID(w, r, h.logger)
	if !ok {
		return
	}

	var req models.DiveInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error(), h.logger)
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())
	dive, err := h.diveService.Edit(r.Context(), userID, diveID, req)
	if err != nil {
		auditDenied(r, err, h.auditor, "edit", "dive", diveID)
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, dive, h.logger)
}

// Delete handles DELETE /api/dives/{id}.
func (h *DivesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	diveID, ok := ParseDiveID(w, r, h.logger)
	if !ok {
		return
	}
	userID, _ := auth.UserIDFromContext(r.Context())
	if err := h.diveService.Delete(r.Context(), userID, diveID); err != nil {
		auditDenied(r, err, h.auditor, "delete", "dive", diveID)
		writeServiceError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
