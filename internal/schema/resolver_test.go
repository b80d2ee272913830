package schema

import (
	"testing"

	"classifieds-api/internal/model"
)

func TestGetFilterableFieldsUnknownCategory(t *testing.T) {
	for _, slug := range []string{"", "boats", "no-such-category"} {
		fields := GetFilterableFields(slug)
		if fields == nil {
			t.Errorf("GetFilterableFields(%q) returned nil, want empty slice", slug)
		}
		if len(fields) != 0 {
			t.Errorf("GetFilterableFields(%q) returned %d fields, want 0", slug, len(fields))
		}
	}
}

func TestGetFilterableFieldsVehicles(t *testing.T) {
	fields := GetFilterableFields("vehicles")
	if len(fields) == 0 {
		t.Fatal("expected vehicle fields")
	}

	byID := map[string]model.FieldSchema{}
	for _, f := range fields {
		byID[f.ID] = f
	}

	modelField, ok := byID["model"]
	if !ok {
		t.Fatal("vehicles schema missing model field")
	}
	if modelField.DependsOn != "make" {
		t.Errorf("model.DependsOn = %q, want %q", modelField.DependsOn, "make")
	}

	mileage, ok := byID["mileage"]
	if !ok {
		t.Fatal("vehicles schema missing mileage field")
	}
	if mileage.Validation == nil || *mileage.Validation.Max != 300000 || *mileage.Validation.Step != 5000 {
		t.Errorf("mileage validation = %+v, want max 300000 step 5000", mileage.Validation)
	}

	year := byID["year"]
	if year.Validation == nil || *year.Validation.Min != 1990 {
		t.Errorf("year validation = %+v, want min 1990", year.Validation)
	}
}

func TestGetFilterableFieldsCaseInsensitiveSlug(t *testing.T) {
	if len(GetFilterableFields("Vehicles")) == 0 {
		t.Error("expected slug lookup to be case-insensitive")
	}
}

func TestOptionsForDependentField(t *testing.T) {
	modelField := model.FieldSchema{ID: "model", Type: model.FieldSelect, DependsOn: "make"}

	if opts := OptionsFor(modelField, ""); len(opts) != 0 {
		t.Errorf("empty dependency should yield no options, got %d", len(opts))
	}
	if opts := OptionsFor(modelField, "not-a-make"); len(opts) != 0 {
		t.Errorf("unknown make should yield no options, got %d", len(opts))
	}

	opts := OptionsFor(modelField, "toyota")
	if len(opts) == 0 {
		t.Fatal("expected options for toyota")
	}
	found := false
	for _, o := range opts {
		if o.Label == "Corolla" {
			found = true
		}
	}
	if !found {
		t.Error("expected Corolla among toyota models")
	}
}

func TestFilterKeysExpansion(t *testing.T) {
	tests := []struct {
		field model.FieldSchema
		want  []string
	}{
		{model.FieldSchema{ID: "mileage", Type: model.FieldRange}, []string{"mileageMin", "mileageMax"}},
		{model.FieldSchema{ID: "bedrooms", Type: model.FieldNumber}, []string{"bedroomsMin", "bedroomsMax"}},
		{model.FieldSchema{ID: "make", Type: model.FieldSelect}, []string{"make"}},
	}
	for _, tt := range tests {
		got := FilterKeys(tt.field)
		if len(got) != len(tt.want) {
			t.Errorf("FilterKeys(%s) = %v, want %v", tt.field.ID, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("FilterKeys(%s) = %v, want %v", tt.field.ID, got, tt.want)
			}
		}
	}
}

func TestCategoryKeysIncludeRangeExpansion(t *testing.T) {
	keys := CategoryKeys("vehicles")
	want := map[string]bool{"make": false, "model": false, "yearMin": false, "yearMax": false, "mileageMin": false}
	for _, k := range keys {
		if _, ok := want[k]; ok {
			want[k] = true
		}
	}
	for k, seen := range want {
		if !seen {
			t.Errorf("CategoryKeys(vehicles) missing %q", k)
		}
	}
}

func TestModelsForMakeUnknown(t *testing.T) {
	models := ModelsForMake("delorean")
	if models == nil || len(models) != 0 {
		t.Errorf("ModelsForMake(delorean) = %v, want empty slice", models)
	}
}
