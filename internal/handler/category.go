package handler

import (
	"net/http"

	"classifieds-api/internal/schema"
	"classifieds-api/pkg/apierror"
	"classifieds-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// CategoryHandler serves category field schemas so clients can render
// filter panels and listing forms without hardcoding per-category fields.
type CategoryHandler struct{}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// GetFields handles GET /api/v1/categories/{slug}/fields
//
// An unknown category returns an empty list, not a 404; clients fall back
// to the generic filters.
func (h *CategoryHandler) GetFields(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	response.OK(w, schema.GetFilterableFields(slug))
}

// GetFieldOptions handles GET /api/v1/categories/{slug}/fields/{field_id}/options
//
// For dependent fields (vehicle model depends on make) the parent value is
// passed as ?depends_on=<value>; without it the option set is empty.
func (h *CategoryHandler) GetFieldOptions(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	fieldID := chi.URLParam(r, "field_id")

	for _, field := range schema.GetFilterableFields(slug) {
		if field.ID == fieldID {
			response.OK(w, schema.OptionsFor(field, r.URL.Query().Get("depends_on")))
			return
		}
	}
	response.Error(w, apierror.NotFound("field not found"))
}
