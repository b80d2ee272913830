package handler

import (
	"net/http"
	"strconv"

	"classifieds-api/internal/service"
	"classifieds-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// LocationHandler handles location picker HTTP requests.
type LocationHandler struct {
	locationService *service.LocationService
}

// NewLocationHandler creates a new location handler.
func NewLocationHandler(locationService *service.LocationService) *LocationHandler {
	return &LocationHandler{locationService: locationService}
}

// GetCities handles GET /api/v1/locations/cities
func (h *LocationHandler) GetCities(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	cities, err := h.locationService.GetMajorCities(r.Context(), limit)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, cities)
}

// GetSuburbs handles GET /api/v1/locations/cities/{city}/suburbs
func (h *LocationHandler) GetSuburbs(w http.ResponseWriter, r *http.Request) {
	city := chi.URLParam(r, "city")

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	suburbs, err := h.locationService.GetSuburbsByCity(r.Context(), city, limit)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, suburbs)
}
