package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"classifieds-api/internal/filter"
	"classifieds-api/internal/middleware"
	"classifieds-api/internal/model"
	"classifieds-api/internal/schema"
	"classifieds-api/internal/service"
	"classifieds-api/pkg/apierror"
	"classifieds-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// ListingHandler handles listing HTTP requests.
type ListingHandler struct {
	listingService *service.ListingService
}

// NewListingHandler creates a new listing handler.
func NewListingHandler(listingService *service.ListingService) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

// CreateListingRequest represents the body for creating a listing.
type CreateListingRequest struct {
	CategorySlug string            `json:"category_slug"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	PriceCents   int64             `json:"price_cents"`
	Location     string            `json:"location"`
	Condition    string            `json:"condition"`
	Attributes   map[string]string `json:"attributes"`
}

// CreateListing handles POST /api/v1/listings
func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		response.Error(w, apierror.Unauthorized("session required"))
		return
	}

	var req CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	listing, err := h.listingService.CreateListing(r.Context(), &model.Listing{
		SellerID:     session.AccountID,
		CategorySlug: req.CategorySlug,
		Title:        req.Title,
		Description:  req.Description,
		PriceCents:   req.PriceCents,
		Location:     req.Location,
		Condition:    req.Condition,
		Attributes:   req.Attributes,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Created(w, listing)
}

// GetListing handles GET /api/v1/listings/{public_id}
func (h *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	publicID := chi.URLParam(r, "public_id")

	listing, err := h.listingService.GetListingByPublicID(r.Context(), publicID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, listing)
}

// SearchListings handles GET /api/v1/listings
//
// Generic params (category, q, location, condition, priceMin, priceMax) plus
// any filter key the active category's field schema declares. Unknown keys
// are dropped by the filter bag, so a stale model=Corolla survives a
// category switch only until the bag is rebuilt.
func (h *ListingHandler) SearchListings(w http.ResponseWriter, r *http.Request) {
	filters := filtersFromQuery(r)
	page, limit := pagination(r)

	listings, total, err := h.listingService.Search(r.Context(), filters, limit, (page-1)*limit)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSONWithMeta(w, http.StatusOK, listings, page, limit, total)
}

// VehicleSearch handles GET /api/v1/search/vehicles?q=...
//
// The free-text query is parsed best-effort into make, model, year range,
// price ceiling and location; explicit query params win over parsed tokens.
func (h *ListingHandler) VehicleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		response.Error(w, apierror.BadRequest("q is required"))
		return
	}

	filters := filtersFromQuery(r)
	page, limit := pagination(r)

	listings, total, err := h.listingService.VehicleSearch(r.Context(), query, filters, limit, (page-1)*limit)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSONWithMeta(w, http.StatusOK, listings, page, limit, total)
}

// filtersFromQuery lifts query params into a filter bag. Only generic keys
// and keys declared by the requested category's schema are admitted.
func filtersFromQuery(r *http.Request) filter.Filters {
	filters := filter.New()
	params := r.URL.Query()

	for _, key := range []string{"category", "location", "condition", "priceMin", "priceMax"} {
		filters.Set(key, params.Get(key))
	}
	if search := params.Get("search"); search != "" {
		filters.Set("q", search)
	}

	category := params.Get("category")
	for _, key := range schema.CategoryKeys(category) {
		filters.Set(key, params.Get(key))
	}
	return filters
}

func pagination(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
