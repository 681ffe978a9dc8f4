package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// ParseUserID extracts the user ID from the request path.
// Expects path parameter: id
func ParseUserID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (int, bool) {
	return parseID(w, r, "id", "invalid_user_id", "Invalid user ID", logger)
}

// ParseDiveID extracts the dive ID from the request path.
// Expects path parameter: id
func ParseDiveID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (int, bool) {
	return parseID(w, r, "id", "invalid_dive_id", "Invalid dive ID", logger)
}

// ParseDiveSiteID extracts the dive site ID from the request path.
// Expects path parameter: id
func ParseDiveSiteID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (int, bool) {
	return parseID(w, r, "id", "invalid_divesite_id", "Invalid dive site ID", logger)
}

// parseID is the internal helper that does the actual parsing work. IDs are
// positive integers.
func parseID(w http.ResponseWriter, r *http.Request, pathParam, errorCode, errorMessage string, logger *zap.Logger) (int, bool) {
	id, err := strconv.Atoi(r.PathValue(pathParam))
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, errorCode, errorMessage, logger)
		return 0, false
	}
	return id, true
}

// queryFloat parses a required float query parameter.
func queryFloat(r *http.Request, name string) (float64, bool) {
	v, err := strconv.ParseFloat(r.URL.Query().Get(name), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// queryPage returns the 1-based page query parameter, defaulting to 1.
func queryPage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
