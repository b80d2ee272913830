package filter

import "testing"

func TestSetRemovesEmptyValues(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
	}{
		{"empty string", ""},
		{"nil", nil},
		{"empty string slice", []string{}},
		{"empty interface slice", []interface{}{}},
		{"legacy all sentinel", "all"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New()
			f.Set("make", "toyota")
			f.Set("make", tt.value)
			if _, ok := f["make"]; ok {
				t.Errorf("Set(make, %v) left the key in place", tt.value)
			}
		})
	}
}

func TestSetStoresNonEmptyValues(t *testing.T) {
	f := New()
	f.Set("make", "toyota")
	f.Set("yearMin", 1990)
	f.Set("brand", []string{"nike", "adidas"})

	if v, ok := f.Get("make"); !ok || v != "toyota" {
		t.Errorf("Get(make) = %v, %v", v, ok)
	}
	if len(f) != 3 {
		t.Errorf("len(filters) = %d, want 3", len(f))
	}
}

func TestClear(t *testing.T) {
	f := New()
	f.Set("make", "toyota")
	f.Set("priceMax", 20000)
	f.Clear()
	if len(f) != 0 {
		t.Errorf("Clear left %d keys", len(f))
	}
}

func TestSetCategoryDropsStaleKeys(t *testing.T) {
	f := New()
	f.Set("category", "vehicles")
	f.Set("make", "toyota")
	f.Set("model", "corolla")
	f.Set("yearMin", 2015)
	f.Set("priceMax", 20000) // generic, must survive

	f.SetCategory("vehicles", "property")

	for _, stale := range []string{"make", "model", "yearMin"} {
		if _, ok := f[stale]; ok {
			t.Errorf("category switch left stale key %q", stale)
		}
	}
	if v, _ := f.Get("category"); v != "property" {
		t.Errorf("category = %v, want property", v)
	}
	if _, ok := f.Get("priceMax"); !ok {
		t.Error("category switch dropped the generic priceMax filter")
	}
}

func TestClearDependents(t *testing.T) {
	f := New()
	f.Set("make", "ford")
	f.Set("model", "ranger")

	f.ClearDependents("vehicles", "make")

	if _, ok := f["model"]; ok {
		t.Error("changing make should clear the dependent model value")
	}
	if _, ok := f["make"]; !ok {
		t.Error("make itself must survive ClearDependents")
	}
}

func TestMergeAppliesDeletions(t *testing.T) {
	f := New()
	f.Set("make", "toyota")
	f.Merge(Filters{"make": "", "location": "Auckland"})

	if _, ok := f["make"]; ok {
		t.Error("merge with empty value should delete the key")
	}
	if v, _ := f.Get("location"); v != "Auckland" {
		t.Errorf("location = %v, want Auckland", v)
	}
}
