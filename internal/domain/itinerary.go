package domain

import "github.com/google/uuid"

// DayPlanEntry is one day of a pre-built itinerary. Day indices are
// caller-supplied and not checked for uniqueness or contiguity; consumers
// must not assume a well-formed 1..N sequence.
type DayPlanEntry struct {
	Day              int        `json:"day"`
	Title            string     `json:"title,omitempty"`
	Description      string     `json:"description,omitempty"`
	StayAtHomestayID *uuid.UUID `json:"stayAtHomestayId,omitempty"`
	Activities       []string   `json:"activities,omitempty"`
	TravelDistanceKm float64    `json:"travelDistanceKm"`
}

// LocalGuide is the optional guide block attached to an itinerary.
type LocalGuide struct {
	Name     string `json:"name,omitempty"`
	Contact  string `json:"contact,omitempty"`
	Location string `json:"location,omitempty"`
	Bio      string `json:"bio,omitempty"`
	Image    string `json:"image,omitempty"`
}

// Itinerary is a pre-built day-wise travel plan tied to one circuit.
type Itinerary struct {
	ID        uuid.UUID `json:"id"`
	CircuitID uuid.UUID `json:"circuitId"`

	Title string `json:"title"`
	Theme string `json:"theme,omitempty"`

	CategoryTags   []string `json:"categoryTags"`
	ExperienceTags []string `json:"experienceTags"`

	DurationDays int `json:"durationDays"` // >= 1
	PaxMin       int `json:"paxMin"`
	PaxMax       int `json:"paxMax"`

	BudgetMin float64 `json:"budgetMin"`
	BudgetMax float64 `json:"budgetMax"`

	TransportIncluded bool    `json:"transportIncluded"`
	CarType           CarType `json:"carType"`
	Rooms             int     `json:"noOfRooms"`

	DayWisePlan []DayPlanEntry `json:"dayWisePlan"`
	LocalGuide  LocalGuide     `json:"localGuide"`

	IsFeatured bool   `json:"isFeatured"`
	Image      string `json:"image,omitempty"`
}

// TotalKm sums travel distance across the day-wise plan.
func (it Itinerary) TotalKm() float64 {
	var sum float64
	for _, d := range it.DayWisePlan {
		sum += d.TravelDistanceKm
	}
	return sum
}

// ItineraryFilter narrows FindItineraries; the repository resolves the
// linked circuit onto each record so the scorer sees joined data.
type ItineraryFilter struct {
	CircuitID *uuid.UUID
}

// ItineraryWithCircuit is the joined read model the match scorer consumes.
type ItineraryWithCircuit struct {
	Itinerary
	Circuit *Circuit `json:"circuit,omitempty"`
}
