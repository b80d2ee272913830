package schema

import (
	"sort"
	"strings"
)

// vehicleTaxonomy maps a make to its known models. This static table backs
// both the dependent make/model fields and the free-text vehicle search.
var vehicleTaxonomy = map[string][]string{
	"Toyota":        {"Corolla", "Camry", "Hilux", "RAV4", "Yaris", "Land Cruiser", "Prius", "Highlander"},
	"Ford":          {"Ranger", "Focus", "Fiesta", "Mustang", "Everest", "Territory"},
	"Mazda":         {"Mazda2", "Mazda3", "Mazda6", "CX-3", "CX-5", "CX-9", "BT-50"},
	"Honda":         {"Civic", "Accord", "CR-V", "HR-V", "Jazz", "Fit"},
	"Nissan":        {"Navara", "Qashqai", "X-Trail", "Leaf", "Pulsar", "Skyline"},
	"Mitsubishi":    {"Triton", "Outlander", "ASX", "Lancer", "Pajero"},
	"Holden":        {"Commodore", "Colorado", "Captiva", "Cruze", "Astra"},
	"Volkswagen":    {"Golf", "Polo", "Tiguan", "Passat", "Amarok"},
	"Hyundai":       {"Tucson", "Santa Fe", "i30", "Kona", "Elantra"},
	"Kia":           {"Sportage", "Sorento", "Rio", "Cerato", "Seltos"},
	"Subaru":        {"Outback", "Forester", "Impreza", "Legacy", "XV"},
	"BMW":           {"1 Series", "3 Series", "5 Series", "X1", "X3", "X5"},
	"Audi":          {"A3", "A4", "A6", "Q3", "Q5", "Q7"},
	"Mercedes-Benz": {"A-Class", "C-Class", "E-Class", "GLA", "GLC"},
	"Suzuki":        {"Swift", "Vitara", "Jimny", "Baleno"},
	"Tesla":         {"Model 3", "Model S", "Model X", "Model Y"},
}

// VehicleMakes returns all known makes in a stable order.
func VehicleMakes() []string {
	makes := make([]string, 0, len(vehicleTaxonomy))
	for mk := range vehicleTaxonomy {
		makes = append(makes, mk)
	}
	sort.Strings(makes)
	return makes
}

// ModelsForMake returns the known models for a make, matched
// case-insensitively. An unknown make yields an empty slice, never an error;
// the dependent control renders disabled with a "select make first"
// placeholder.
func ModelsForMake(mk string) []string {
	if mk == "" {
		return nil
	}
	for name, models := range vehicleTaxonomy {
		if strings.EqualFold(name, mk) {
			out := make([]string, len(models))
			copy(out, models)
			return out
		}
	}
	return []string{}
}

// MatchMake finds a make whose name appears in the query, case-insensitively.
// Returns the canonical make name or "".
func MatchMake(query string) string {
	q := strings.ToLower(query)
	for mk := range vehicleTaxonomy {
		if strings.Contains(q, strings.ToLower(mk)) {
			return mk
		}
	}
	return ""
}

// MatchModel finds a model of the given make appearing in the query.
// Returns the canonical model name or "".
func MatchModel(mk, query string) string {
	q := strings.ToLower(query)
	for _, model := range ModelsForMake(mk) {
		if strings.Contains(q, strings.ToLower(model)) {
			return model
		}
	}
	return ""
}
