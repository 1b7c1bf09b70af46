package domain

import "github.com/google/uuid"

// CarType keys the per-kilometer rate table on a circuit.
type CarType string

const (
	CarHatchback CarType = "hatchback"
	CarSedan     CarType = "sedan"
	CarSUV       CarType = "suv"
)

// FallbackKmRate is charged when a circuit has no rate configured
// for the requested car type (currency units per km).
const FallbackKmRate = 15.0

// Circuit is a themed regional travel package grouping locations,
// experiences and car pricing. Categories and tags are stored normalized
// (lowercase, underscore-joined); normalization happens once at write time.
type Circuit struct {
	ID          uuid.UUID           `json:"id"`
	Name        string              `json:"name"`
	Categories  []string            `json:"categories"`
	Theme       string              `json:"theme,omitempty"`
	Experiences []string            `json:"experiences"`
	Tags        []string            `json:"tags"`
	IsOffbeat   bool                `json:"isOffbeat"`
	CarRates    map[CarType]float64 `json:"carRates"`

	FeaturedActivities []string `json:"featuredActivities,omitempty"`
	Locations          []string `json:"locations,omitempty"`
	BestSeasons        []string `json:"bestSeasons,omitempty"`
	EntryPoints        []string `json:"entryPoints,omitempty"`
	Transport          []string `json:"transport,omitempty"`

	Description string   `json:"description"`
	Duration    string   `json:"duration"`
	Images      []string `json:"images,omitempty"`
}

// KmRate returns the per-km rate for a car type, falling back to
// FallbackKmRate when none is configured.
func (c Circuit) KmRate(ct CarType) float64 {
	if r, ok := c.CarRates[ct]; ok && r > 0 {
		return r
	}
	return FallbackKmRate
}

// CircuitFilter narrows FindCircuits. Nil/empty fields mean "no constraint".
type CircuitFilter struct {
	Categories  []string // any-overlap on categories
	Experiences []string // any-overlap on experiences
	IsOffbeat   *bool
}
