package filter

import (
	"reflect"

	"classifieds-api/internal/schema"
)

// Filters is the flat key/value bag driving a listing search. Absence of a
// key means "no constraint"; an explicit wildcard is never stored. A few
// legacy select defaults still arrive as the string "all" and are treated
// as absence.
type Filters map[string]interface{}

// New returns an empty filter set.
func New() Filters {
	return Filters{}
}

// Set stores a filter value. Empty values (nil, "", "all", empty slice or
// map) remove the key entirely instead.
func (f Filters) Set(key string, value interface{}) {
	if isEmptyValue(value) {
		delete(f, key)
		return
	}
	f[key] = value
}

// Get returns the stored value and whether the key is constrained.
func (f Filters) Get(key string) (interface{}, bool) {
	v, ok := f[key]
	return v, ok
}

// Clear removes every constraint.
func (f Filters) Clear() {
	for k := range f {
		delete(f, k)
	}
}

// SetCategory switches the active category, dropping every key the previous
// category contributed so stale constraints (a vehicle make on a property
// search) cannot leak across categories.
func (f Filters) SetCategory(prevSlug, newSlug string) {
	for _, key := range schema.CategoryKeys(prevSlug) {
		delete(f, key)
	}
	f.Set("category", newSlug)
}

// ClearDependents removes the values of every field that depends on the
// given field id. Called when the dependency's value changes.
func (f Filters) ClearDependents(categorySlug, fieldID string) {
	for _, field := range schema.GetFilterableFields(categorySlug) {
		if field.DependsOn != fieldID {
			continue
		}
		for _, key := range schema.FilterKeys(field) {
			delete(f, key)
		}
	}
}

// Merge applies every entry of other through Set, so empty values in other
// act as deletions.
func (f Filters) Merge(other Filters) {
	for k, v := range other {
		f.Set(k, v)
	}
}

func isEmptyValue(value interface{}) bool {
	if value == nil {
		return true
	}
	switch v := value.(type) {
	case string:
		return v == "" || v == "all"
	case []string:
		return len(v) == 0
	case []interface{}:
		return len(v) == 0
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
