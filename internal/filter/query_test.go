package filter

import "testing"

func TestParseVehicleQueryFull(t *testing.T) {
	p := ParseVehicleQuery("2020 toyota corolla under 20k in auckland")

	if p.Make != "Toyota" {
		t.Errorf("Make = %q, want Toyota", p.Make)
	}
	if p.Model != "Corolla" {
		t.Errorf("Model = %q, want Corolla", p.Model)
	}
	if p.PriceMax != 20000 {
		t.Errorf("PriceMax = %d, want 20000", p.PriceMax)
	}
	if p.YearMin != 2020 || p.YearMax != 2020 {
		t.Errorf("Year range = %d..%d, want 2020..2020", p.YearMin, p.YearMax)
	}
	if p.Location != "Auckland" {
		t.Errorf("Location = %q, want Auckland", p.Location)
	}
}

func TestParseVehicleQueryPriceForms(t *testing.T) {
	tests := []struct {
		query string
		want  int64
	}{
		{"ford ranger under $20k", 20000},
		{"mazda3 below 15,000", 15000},
		{"honda civic less than $8000", 8000},
		{"suzuki swift", 0},
	}
	for _, tt := range tests {
		if got := ParseVehicleQuery(tt.query).PriceMax; got != tt.want {
			t.Errorf("ParseVehicleQuery(%q).PriceMax = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestParseVehicleQueryPriceNotMistakenForYear(t *testing.T) {
	p := ParseVehicleQuery("toyota under 2010")
	if p.YearMin != 0 || p.YearMax != 0 {
		t.Errorf("price figure leaked into year range: %d..%d", p.YearMin, p.YearMax)
	}
	if p.PriceMax != 2010 {
		t.Errorf("PriceMax = %d, want 2010", p.PriceMax)
	}
}

func TestParseVehicleQueryYearRange(t *testing.T) {
	p := ParseVehicleQuery("nissan navara 2015 2018")
	if p.YearMin != 2015 || p.YearMax != 2018 {
		t.Errorf("Year range = %d..%d, want 2015..2018", p.YearMin, p.YearMax)
	}
}

func TestParseVehicleQueryUnmatchedTokensIgnored(t *testing.T) {
	p := ParseVehicleQuery("shiny red gocart somewhere")
	if p.Make != "" || p.Model != "" || p.Location != "" || p.PriceMax != 0 || p.YearMin != 0 {
		t.Errorf("expected zero-valued parse, got %+v", p)
	}
}

func TestParsedQueryApply(t *testing.T) {
	f := New()
	ParseVehicleQuery("2020 toyota corolla under 20k in auckland").Apply(f)

	if v, _ := f.Get("make"); v != "toyota" {
		t.Errorf("make = %v", v)
	}
	if v, _ := f.Get("model"); v != "corolla" {
		t.Errorf("model = %v", v)
	}
	if v, _ := f.Get("yearMin"); v != 2020 {
		t.Errorf("yearMin = %v", v)
	}
	if v, _ := f.Get("priceMax"); v != int64(20000) {
		t.Errorf("priceMax = %v", v)
	}
	if v, _ := f.Get("location"); v != "Auckland" {
		t.Errorf("location = %v", v)
	}

	// an empty parse must leave the bag untouched
	g := New()
	ParseVehicleQuery("").Apply(g)
	if len(g) != 0 {
		t.Errorf("empty query populated %d keys", len(g))
	}
}
