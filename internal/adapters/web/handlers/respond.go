package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/lcalzada-xor/vulnmap/internal/core/domain"
)

// pagedResponse is the envelope for every paginated collection.
type pagedResponse struct {
	Data any             `json:"data"`
	Meta domain.PageMeta `json:"meta"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// pageFromQuery reads page and per_page query parameters, applying the
// defaults and caps of NewPageRequest.
func pageFromQuery(r *http.Request) domain.PageRequest {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	return domain.NewPageRequest(page, perPage)
}
