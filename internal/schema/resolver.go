package schema

import (
	"strings"
	"time"

	"classifieds-api/internal/model"
)

// categoryFields declares the ordered field set per category slug. One
// generic rendering/filtering engine consumes these; nothing else in the
// codebase branches on category.
var categoryFields = map[string][]model.FieldSchema{
	"vehicles": {
		{
			ID:      "make",
			Label:   "Make",
			Type:    model.FieldSelect,
			Options: makeOptions(),
		},
		{
			ID:        "model",
			Label:     "Model",
			Type:      model.FieldSelect,
			DependsOn: "make",
		},
		{
			ID:         "year",
			Label:      "Year",
			Type:       model.FieldRange,
			Validation: rangeValidation(1990, float64(time.Now().Year()), 1),
		},
		{
			ID:         "mileage",
			Label:      "Mileage",
			Type:       model.FieldRange,
			Unit:       "km",
			Validation: rangeValidation(0, 300000, 5000),
		},
		{
			ID:    "transmission",
			Label: "Transmission",
			Type:  model.FieldRadio,
			Options: []model.FieldOption{
				{Value: "automatic", Label: "Automatic"},
				{Value: "manual", Label: "Manual"},
			},
		},
		{
			ID:    "fuel_type",
			Label: "Fuel type",
			Type:  model.FieldSelect,
			Options: []model.FieldOption{
				{Value: "petrol", Label: "Petrol"},
				{Value: "diesel", Label: "Diesel"},
				{Value: "hybrid", Label: "Hybrid"},
				{Value: "electric", Label: "Electric"},
			},
		},
	},
	"property": {
		{
			ID:         "bedrooms",
			Label:      "Bedrooms",
			Type:       model.FieldNumber,
			Validation: rangeValidation(1, 10, 1),
		},
		{
			ID:         "bathrooms",
			Label:      "Bathrooms",
			Type:       model.FieldNumber,
			Validation: rangeValidation(1, 6, 1),
		},
		{
			ID:    "property_type",
			Label: "Property type",
			Type:  model.FieldSelect,
			Options: []model.FieldOption{
				{Value: "house", Label: "House"},
				{Value: "apartment", Label: "Apartment"},
				{Value: "townhouse", Label: "Townhouse"},
				{Value: "section", Label: "Section"},
			},
		},
		{
			ID:         "floor_area",
			Label:      "Floor area",
			Type:       model.FieldRange,
			Unit:       "m2",
			Validation: rangeValidation(20, 1000, 10),
		},
		{
			ID:    "parking",
			Label: "Off-street parking",
			Type:  model.FieldCheckbox,
		},
	},
	"fashion": {
		{
			ID:    "size",
			Label: "Size",
			Type:  model.FieldSizeSelector,
			Options: []model.FieldOption{
				{Value: "xs", Label: "XS"},
				{Value: "s", Label: "S"},
				{Value: "m", Label: "M"},
				{Value: "l", Label: "L"},
				{Value: "xl", Label: "XL"},
			},
		},
		{
			ID:    "colour",
			Label: "Colour",
			Type:  model.FieldColorPicker,
		},
		{
			ID:    "brand",
			Label: "Brand",
			Type:  model.FieldMultiSelect,
			Options: []model.FieldOption{
				{Value: "nike", Label: "Nike"},
				{Value: "adidas", Label: "Adidas"},
				{Value: "zara", Label: "Zara"},
				{Value: "hallenstein", Label: "Hallenstein"},
			},
		},
	},
	"electronics": {
		{
			ID:    "brand",
			Label: "Brand",
			Type:  model.FieldMultiSelect,
			Options: []model.FieldOption{
				{Value: "apple", Label: "Apple"},
				{Value: "samsung", Label: "Samsung"},
				{Value: "sony", Label: "Sony"},
				{Value: "lg", Label: "LG"},
			},
		},
		{
			ID:         "screen_size",
			Label:      "Screen size",
			Type:       model.FieldRange,
			Unit:       "in",
			Validation: rangeValidation(4, 85, 1),
		},
	},
}

// GetFilterableFields returns the ordered field schemas for a category slug.
// Unknown categories return an empty slice; callers fall back to the generic
// filters (price, location, condition).
func GetFilterableFields(categorySlug string) []model.FieldSchema {
	fields, ok := categoryFields[strings.ToLower(categorySlug)]
	if !ok {
		return []model.FieldSchema{}
	}

	out := make([]model.FieldSchema, len(fields))
	copy(out, fields)
	return out
}

// OptionsFor resolves the option set for a field given the current value of
// its dependency. Fields without a dependency return their static options.
// An unresolvable dependency value yields an empty set, never an error.
func OptionsFor(field model.FieldSchema, dependencyValue string) []model.FieldOption {
	if field.DependsOn == "" {
		return field.Options
	}
	if dependencyValue == "" {
		return []model.FieldOption{}
	}

	// Only the vehicle model field is dependency-driven today.
	if field.ID == "model" && field.DependsOn == "make" {
		models := ModelsForMake(dependencyValue)
		opts := make([]model.FieldOption, 0, len(models))
		for _, m := range models {
			opts = append(opts, model.FieldOption{Value: strings.ToLower(m), Label: m})
		}
		return opts
	}
	return []model.FieldOption{}
}

// FilterKeys returns the filter-bag keys a field contributes. NUMBER and
// RANGE fields expand into <id>Min/<id>Max; everything else maps to its id.
func FilterKeys(field model.FieldSchema) []string {
	if field.Type.IsNumeric() {
		return []string{field.ID + "Min", field.ID + "Max"}
	}
	return []string{field.ID}
}

// CategoryKeys returns every filter key a category can contribute, used when
// switching categories to drop stale constraints.
func CategoryKeys(categorySlug string) []string {
	fields := GetFilterableFields(categorySlug)
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, FilterKeys(f)...)
	}
	return keys
}

func makeOptions() []model.FieldOption {
	makes := VehicleMakes()
	opts := make([]model.FieldOption, 0, len(makes))
	for _, mk := range makes {
		opts = append(opts, model.FieldOption{Value: strings.ToLower(mk), Label: mk})
	}
	return opts
}

func rangeValidation(min, max, step float64) *model.FieldValidation {
	return &model.FieldValidation{Min: &min, Max: &max, Step: &step}
}
