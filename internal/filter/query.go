package filter

import (
	"regexp"
	"strconv"
	"strings"

	"classifieds-api/internal/schema"
)

// knownCities is the fixed city list for location extraction from free-text
// vehicle searches.
var knownCities = []string{
	"Auckland", "Wellington", "Christchurch", "Hamilton", "Tauranga",
	"Dunedin", "Palmerston North", "Napier", "Hastings", "Nelson",
	"Rotorua", "New Plymouth", "Whangarei", "Invercargill", "Queenstown",
}

var (
	// "under $20k", "under 20000", "below $15,000"
	priceCeilingRe = regexp.MustCompile(`(?i)(?:under|below|less than|max)\s*\$?\s*([\d,]+)\s*(k)?`)
	yearTokenRe    = regexp.MustCompile(`\b(19[5-9]\d|20[0-4]\d)\b`)
)

// ParsedQuery is the result of the best-effort vehicle search parser.
// Fields are zero-valued when the query carried no matching token; unmatched
// tokens are silently ignored.
type ParsedQuery struct {
	Make     string
	Model    string
	YearMin  int
	YearMax  int
	PriceMax int64 // whole currency units, not cents
	Location string
}

// ParseVehicleQuery extracts obvious literal tokens from a free-text vehicle
// search: a price ceiling ("under $20k"), a year or year range from 4-digit
// tokens, a make/model against the static taxonomy, and a known city name.
// It is a heuristic, not a grammar; ambiguous queries resolve to whichever
// token matches first.
func ParseVehicleQuery(query string) ParsedQuery {
	var p ParsedQuery
	if strings.TrimSpace(query) == "" {
		return p
	}

	if m := priceCeilingRe.FindStringSubmatch(query); m != nil {
		raw := strings.ReplaceAll(m[1], ",", "")
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			if m[2] != "" {
				n *= 1000
			}
			p.PriceMax = n
		}
	}

	// Price figures can look like years ("under 2010"), so strip the price
	// clause before scanning for year tokens.
	yearSource := priceCeilingRe.ReplaceAllString(query, " ")
	years := yearTokenRe.FindAllString(yearSource, -1)
	if len(years) > 0 {
		lo, _ := strconv.Atoi(years[0])
		hi := lo
		for _, y := range years[1:] {
			n, _ := strconv.Atoi(y)
			if n < lo {
				lo = n
			}
			if n > hi {
				hi = n
			}
		}
		p.YearMin, p.YearMax = lo, hi
	}

	p.Make = schema.MatchMake(query)
	if p.Make != "" {
		p.Model = schema.MatchModel(p.Make, query)
	}

	q := strings.ToLower(query)
	for _, city := range knownCities {
		if strings.Contains(q, strings.ToLower(city)) {
			p.Location = city
			break
		}
	}

	return p
}

// Apply writes the parsed tokens into a filter bag using the derived range
// keys the vehicle schema defines. Zero-valued tokens leave the bag alone.
func (p ParsedQuery) Apply(f Filters) {
	if p.Make != "" {
		f.Set("make", strings.ToLower(p.Make))
	}
	if p.Model != "" {
		f.Set("model", strings.ToLower(p.Model))
	}
	if p.YearMin > 0 {
		f.Set("yearMin", p.YearMin)
		f.Set("yearMax", p.YearMax)
	}
	if p.PriceMax > 0 {
		f.Set("priceMax", p.PriceMax)
	}
	if p.Location != "" {
		f.Set("location", p.Location)
	}
}
