package service

import (
	"context"
	"testing"

	"classifieds-api/internal/filter"
	"classifieds-api/internal/model"
)

func TestBuildSearchQueryGenericKeys(t *testing.T) {
	f := filter.New()
	f.Set("category", "vehicles")
	f.Set("q", "corolla")
	f.Set("location", "Auckland")
	f.Set("condition", "used")
	f.Set("priceMin", 5000)
	f.Set("priceMax", "20000")

	q := BuildSearchQuery(f)

	if q.Category != "vehicles" || q.Text != "corolla" || q.Location != "Auckland" || q.Condition != "used" {
		t.Errorf("generic keys not carried: %+v", q)
	}
	if q.PriceMinCents == nil || *q.PriceMinCents != 500_000 {
		t.Errorf("priceMin not converted to cents: %v", q.PriceMinCents)
	}
	if q.PriceMaxCents == nil || *q.PriceMaxCents != 2_000_000 {
		t.Errorf("priceMax not converted to cents: %v", q.PriceMaxCents)
	}
}

func TestBuildSearchQuerySchemaKeys(t *testing.T) {
	f := filter.New()
	f.Set("category", "vehicles")
	f.Set("make", "toyota")
	f.Set("model", "Corolla")
	f.Set("yearMin", 2015)
	f.Set("yearMax", 2020)
	f.Set("mileageMax", 100000)

	q := BuildSearchQuery(f)

	if q.Attributes["make"] != "toyota" || q.Attributes["model"] != "Corolla" {
		t.Errorf("schema attributes not carried: %v", q.Attributes)
	}
	year, ok := q.AttributeRanges["year"]
	if !ok || year.Min == nil || *year.Min != 2015 || year.Max == nil || *year.Max != 2020 {
		t.Errorf("year range not built: %+v", year)
	}
	mileage, ok := q.AttributeRanges["mileage"]
	if !ok || mileage.Min != nil || mileage.Max == nil || *mileage.Max != 100000 {
		t.Errorf("half-open mileage range not built: %+v", mileage)
	}
}

func TestBuildSearchQueryIgnoresUndeclaredKeys(t *testing.T) {
	f := filter.New()
	f.Set("category", "fashion")
	// vehicle keys are not declared by the fashion schema
	f.Set("make", "toyota")
	f.Set("yearMin", 2015)

	q := BuildSearchQuery(f)

	if _, ok := q.Attributes["make"]; ok {
		t.Error("undeclared attribute leaked into the query")
	}
	if _, ok := q.AttributeRanges["year"]; ok {
		t.Error("undeclared range leaked into the query")
	}
}

func TestVehicleSearchExplicitFiltersWin(t *testing.T) {
	repo := newFakeListingRepo()
	svc := NewListingService(repo)

	explicit := filter.New()
	explicit.Set("make", "honda")

	_, _, err := svc.VehicleSearch(context.Background(), "2020 toyota corolla under $20k in auckland", explicit, 20, 0)
	if err != nil {
		t.Fatal(err)
	}

	q := repo.lastQuery
	if q.Category != "vehicles" {
		t.Errorf("category = %q, want vehicles", q.Category)
	}
	if q.Attributes["make"] != "honda" {
		t.Errorf("make = %q, explicit filter should override the parsed token", q.Attributes["make"])
	}
	// Tokens with no explicit counterpart still come from the query text.
	if q.Attributes["model"] != "corolla" {
		t.Errorf("model = %q, want corolla from the query text", q.Attributes["model"])
	}
	if q.PriceMaxCents == nil || *q.PriceMaxCents != 2_000_000 {
		t.Errorf("price ceiling not carried: %v", q.PriceMaxCents)
	}
	if q.Location == "" {
		t.Error("city token from the query text was dropped")
	}
}

func TestCreateListingValidation(t *testing.T) {
	svc := NewListingService(newFakeListingRepo())

	if _, err := svc.CreateListing(context.Background(), &model.Listing{Title: " ", PriceCents: 100}); err == nil {
		t.Error("blank title was accepted")
	}
	if _, err := svc.CreateListing(context.Background(), &model.Listing{Title: "Bike", PriceCents: 0}); err == nil {
		t.Error("zero price was accepted")
	}
}

func TestCreateListingPrunesAttributes(t *testing.T) {
	repo := newFakeListingRepo()
	svc := NewListingService(repo)

	listing, err := svc.CreateListing(context.Background(), &model.Listing{
		SellerID:     "user-1",
		CategorySlug: "vehicles",
		Title:        "2014 Toyota Corolla",
		PriceCents:   1_000_000,
		Attributes: map[string]string{
			"make":       "toyota",
			"size":       "32", // fashion key, not a vehicle field
			"fuel_type":  "petrol",
			"undeclared": "x",
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if listing.Attributes["make"] != "toyota" || listing.Attributes["fuel_type"] != "petrol" {
		t.Errorf("declared attributes dropped: %v", listing.Attributes)
	}
	if _, ok := listing.Attributes["size"]; ok {
		t.Error("foreign-category attribute survived")
	}
	if _, ok := listing.Attributes["undeclared"]; ok {
		t.Error("undeclared attribute survived")
	}

	if listing.PublicID == "" || len(listing.PublicID) != 12 {
		t.Errorf("public id = %q, want 12 characters", listing.PublicID)
	}
	if listing.Status != model.ListingActive {
		t.Errorf("status = %s, want active", listing.Status)
	}
}
