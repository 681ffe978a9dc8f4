package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/social-scuba/divelog/pkg/audit"
	"github.com/social-scuba/divelog/pkg/auth"
	"github.com/social-scuba/divelog/pkg/models"
	"github.com/social-scuba/divelog/pkg/services"
)

// DiveSitesHandler serves the map, site pages and user-created sites.
type DiveSitesHandler struct {
	siteService services.DiveSiteService
	auditor     *audit.SecurityAuditor
	logger      *zap.Logger
}

// NewDiveSitesHandler creates a new dive sites handler.
func NewDiveSitesHandler(siteService services.DiveSiteService, auditor *audit.SecurityAuditor, logger *zap.Logger) *DiveSitesHandler {
	return &DiveSitesHandler{
		siteService: siteService,
		auditor:     auditor,
		logger:      logger,
	}
}

// RegisterRoutes registers the dive sites handler's routes on the given mux.
func (h *DiveSitesHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /get_dive_sites", authMiddleware.RequireUser(h.InBounds))
	mux.HandleFunc("GET /api/divesites/{id}", authMiddleware.RequireUser(h.Get))
	mux.HandleFunc("POST /api/divesites", authMiddleware.RequireUser(h.Create))
	mux.HandleFunc("DELETE /api/divesites/{id}", authMiddleware.RequireUser(h.Delete))
}

// InBounds handles GET /get_dive_sites?ne_lat=&ne_lng=&sw_lat=&sw_lng=.
func (h *DiveSitesHandler) InBounds(w http.ResponseWriter, r *http.Request) {
	var bounds models.MapBounds
	params := []struct {
		name string
		dst  *float64
	}{
		{"ne_lat", &bounds.NELat},
		{"ne_lng", &bounds.NELng},
		{"sw_lat", &bounds.SWLat},
		{"sw_lng", &bounds.SWLng},
	}
	for _, p := range params {
		v, ok := queryFloat(r, p.name)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_bounds", "Missing or invalid "+p.name, h.logger)
			return
		}
		*p.dst = v
	}

	markers, err := h.siteService.InBounds(r.Context(), bounds)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, markers, h.logger)
}

// Get handles GET /api/divesites/{id}.
func (h *DiveSitesHandler) Get(w http.ResponseWriter, r *http.Request) {
	siteID, ok := ParseDiveSiteID(w, r, h.logger)
	if !ok {
		return
	}
	site, err := h.siteService.Get(r.Context(), siteID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, site, h.logger)
}

// Create handles POST /api/divesites.
func (h *DiveSitesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.NewDiveSite
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error(), h.logger)
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())
	site, err := h.siteService.Create(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, site, h.logger)
}

// Delete handles DELETE /api/divesites/{id}. Only the creator may delete a site.
func (h *DiveSitesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	siteID, ok := ParseDiveSiteID(w, r, h.logger)
	if !ok {
		return
	}
	userID, _ := auth.UserIDFromContext(r.Context())
	if err := h.siteService.Delete(r.Context(), userID, siteID); err != nil {
		auditDenied(r, err, h.auditor, "delete", "divesite", siteID)
		writeServiceError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
