package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/social-scuba/divelog/pkg/auth"
	"github.com/social-scuba/divelog/pkg/services"
)

// Search categories.
const (
	SearchCategoryUsers     = "users"
	SearchCategoryDiveSites = "divesites"
)

// SearchHandler handles GET /api/search.
type SearchHandler struct {
	searchService services.SearchService
	logger        *zap.Logger
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(searchService services.SearchService, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		logger:        logger,
	}
}

// RegisterRoutes registers the search handler's routes on the given mux.
func (h *SearchHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/search", authMiddleware.RequireUser(h.Search))
}

// Search handles GET /api/search?category=&q=&page=. Category defaults to divesites.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	page := queryPage(r)

	switch q.Get("category") {
	case SearchCategoryUsers:
		result, err := h.searchService.Users(r.Context(), query, page)
		if err != nil {
			writeServiceError(w, r, err, h.logger)
			return
		}
		writeJSON(w, http.StatusOK, result, h.logger)
	case SearchCategoryDiveSites, "":
		result, err := h.searchService.DiveSites(r.Context(), query, page)
		if err != nil {
			writeServiceError(w, r, err, h.logger)
			return
		}
		writeJSON(w, http.StatusOK, result, h.logger)
	default:
		writeError(w, http.StatusBadRequest, "invalid_category", "Unknown search category", h.logger)
	}
}
