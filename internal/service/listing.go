package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"classifieds-api/internal/filter"
	"classifieds-api/internal/model"
	"classifieds-api/internal/repository"
	"classifieds-api/internal/schema"
	"classifieds-api/pkg/apierror"
	"classifieds-api/pkg/uid"
)

// ListingService handles listing creation and filtered search. It is the
// only consumer of the filter bag: free-text vehicle queries, structured
// category fields and the generic price/location/condition filters all
// reconcile into one flat bag before translation into a store query.
type ListingService struct {
	listings repository.ListingRepository
	now      func() time.Time
}

// NewListingService creates a new listing service.
func NewListingService(listings repository.ListingRepository) *ListingService {
	if listings == nil {
		return nil
	}
	return &ListingService{listings: listings, now: time.Now}
}

// CreateListing stores a new listing. Attributes not declared by the
// category's field schema are dropped.
func (s *ListingService) CreateListing(ctx context.Context, l *model.Listing) (*model.Listing, error) {
	if strings.TrimSpace(l.Title) == "" {
		return nil, apierror.ValidationError("title is required",
			apierror.FieldError{Field: "title", Message: "must not be empty"})
	}
	if l.PriceCents <= 0 {
		return nil, apierror.ValidationError("price must be positive",
			apierror.FieldError{Field: "price_cents", Message: "must be a positive integer"})
	}

	l.Attributes = pruneAttributes(l.CategorySlug, l.Attributes)

	now := s.now().UTC()
	l.ID = uid.New()
	l.PublicID = uid.Short()
	l.Status = model.ListingActive
	l.CreatedAt = now
	l.UpdatedAt = now

	if err := s.listings.CreateListing(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}
	return l, nil
}

// GetListingByPublicID returns a listing by its public id.
func (s *ListingService) GetListingByPublicID(ctx context.Context, publicID string) (*model.Listing, error) {
	listing, err := s.listings.GetListingByPublicID(ctx, publicID)
	if err != nil {
		return nil, apierror.NotFound("listing not found")
	}
	return listing, nil
}

// Search executes a filter bag against the listing store and returns the
// page plus total match count.
func (s *ListingService) Search(ctx context.Context, filters filter.Filters, limit, offset int) ([]model.Listing, int64, error) {
	q := BuildSearchQuery(filters)
	q.Limit = limit
	q.Offset = offset

	listings, total, err := s.listings.Search(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search listings: %w", err)
	}
	return listings, total, nil
}

// VehicleSearch runs the best-effort free-text vehicle parser and lays the
// supplied structured filters over its tokens, so an explicit filter always
// beats a parsed one. The category is pinned to vehicles.
func (s *ListingService) VehicleSearch(ctx context.Context, query string, filters filter.Filters, limit, offset int) ([]model.Listing, int64, error) {
	merged := filter.New()
	filter.ParseVehicleQuery(query).Apply(merged)
	if filters != nil {
		merged.Merge(filters)
	}
	merged.Set("category", "vehicles")
	return s.Search(ctx, merged, limit, offset)
}

// BuildSearchQuery translates a flat filter bag into a store query. Keys the
// active category's schema does not declare are ignored, generic keys
// (category, q, location, condition, priceMin/priceMax) aside.
func BuildSearchQuery(filters filter.Filters) repository.SearchQuery {
	q := repository.SearchQuery{
		Attributes:      map[string]string{},
		AttributeRanges: map[string]repository.NumRange{},
	}

	category, _ := filters.Get("category")
	q.Category, _ = category.(string)
	if text, ok := filters.Get("q"); ok {
		q.Text, _ = text.(string)
	}
	if loc, ok := filters.Get("location"); ok {
		q.Location, _ = loc.(string)
	}
	if cond, ok := filters.Get("condition"); ok {
		q.Condition, _ = cond.(string)
	}
	if v, ok := filters.Get("priceMin"); ok {
		if n, ok := toInt64(v); ok {
			cents := n * 100
			q.PriceMinCents = &cents
		}
	}
	if v, ok := filters.Get("priceMax"); ok {
		if n, ok := toInt64(v); ok {
			cents := n * 100
			q.PriceMaxCents = &cents
		}
	}

	for _, field := range schema.GetFilterableFields(q.Category) {
		if field.Type.IsNumeric() {
			rng := repository.NumRange{}
			if v, ok := filters.Get(field.ID + "Min"); ok {
				if f, ok := toFloat64(v); ok {
					rng.Min = &f
				}
			}
			if v, ok := filters.Get(field.ID + "Max"); ok {
				if f, ok := toFloat64(v); ok {
					rng.Max = &f
				}
			}
			if rng.Min != nil || rng.Max != nil {
				q.AttributeRanges[field.ID] = rng
			}
			continue
		}

		if v, ok := filters.Get(field.ID); ok {
			if str, ok := v.(string); ok && str != "" {
				q.Attributes[field.ID] = str
			}
		}
	}

	return q
}

// pruneAttributes keeps only attributes the category schema declares.
func pruneAttributes(categorySlug string, attrs map[string]string) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	allowed := map[string]bool{}
	for _, field := range schema.GetFilterableFields(categorySlug) {
		allowed[field.ID] = true
	}
	pruned := map[string]string{}
	for k, v := range attrs {
		if allowed[k] && v != "" {
			pruned[k] = v
		}
	}
	if len(pruned) == 0 {
		return nil
	}
	return pruned
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		return parsed, err == nil
	}
	return 0, false
}

func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		return parsed, err == nil
	}
	return 0, false
}
