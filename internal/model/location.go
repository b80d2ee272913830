package model

// City is a major city entry used for location pickers and search defaults.
type City struct {
	Name       string `json:"name"`
	Region     string `json:"region"`
	Population int    `json:"population"`
}

// Suburb belongs to a city.
type Suburb struct {
	Name string `json:"name"`
	City string `json:"city"`
}
