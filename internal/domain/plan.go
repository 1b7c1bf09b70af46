package domain

import "github.com/google/uuid"

// BudgetSlack widens the budget-fit predicate when matching itineraries:
// a candidate passes if budgetMax <= ceiling + BudgetSlack (currency units).
const BudgetSlack = 30000.0

// DurationTolerance is the +/- day window for the duration-fit predicate.
const DurationTolerance = 2

// MatchThreshold is the minimum predicate count (out of six) for an
// itinerary to be kept by the match scorer.
const MatchThreshold = 3

// DailyLocalKm is the fixed local-transport allowance added per trip day
// when a car is requested.
const DailyLocalKm = 30.0

// LeisureDay fills plan days with no matched experience left.
const LeisureDay = "Leisure / Free Day"

// MatchQuery is the ephemeral preference payload for itinerary matching.
// Every field is optional; an empty field is "no constraint", never
// "zero matches". CircuitID and CircuitName are hard filters: when
// supplied and non-matching the candidate is dropped before scoring.
type MatchQuery struct {
	CircuitID   *uuid.UUID
	CircuitName string

	Tags        []string
	Experiences []string
	Theme       string

	Days    *int
	Budget  *float64
	Pax     *int
	Rooms   *int
	WithCar bool
}

// ScoredItinerary is a kept match candidate enriched with computed totals
// and pass-through of the request's pax/days/rooms.
type ScoredItinerary struct {
	ItineraryWithCircuit

	Score            int     `json:"score"`
	TotalItineraryKm float64 `json:"totalItineraryKm"`
	Pax              *int    `json:"pax,omitempty"`
	Days             *int    `json:"days,omitempty"`
	Rooms            *int    `json:"noOfRooms,omitempty"`
}

// GenerationRequest carries the user's trip constraints for plan generation.
type GenerationRequest struct {
	Pax         int
	Days        int
	Tags        []string
	Experiences []string
	Theme       string // offbeat | city | mixed
	WithCar     bool
	CarType     CarType
	Pickup      string
	Drop        string
	Budget      float64
}

// HomestaySummary is the lodging part of a generated plan.
type HomestaySummary struct {
	Name        string      `json:"name"`
	PriceType   PricingType `json:"priceType"`
	PricePerDay float64     `json:"pricePerDay"`
	Total       float64     `json:"total"`
	Distance    float64     `json:"distance"`
	Contact     string      `json:"contact,omitempty"`
	Rooms       int         `json:"rooms"`
}

// TransportSummary is the car part of a generated plan; nil when no car
// was requested.
type TransportSummary struct {
	Pickup    string  `json:"pickup"`
	Drop      string  `json:"drop"`
	CarType   CarType `json:"carType"`
	RatePerKm float64 `json:"ratePerKm"`
	TotalKm   float64 `json:"totalKm"`
	Total     float64 `json:"total"`
}

// PlanDay is one synthesized day of a generated plan.
type PlanDay struct {
	Day      int    `json:"day"`
	Activity string `json:"activity"`
}

// GeneratedPlan is the assembled result of the four-stage generator.
type GeneratedPlan struct {
	Circuit   string            `json:"circuit"`
	Theme     string            `json:"theme"`
	Homestay  HomestaySummary   `json:"homestay"`
	Transport *TransportSummary `json:"transport"`
	Pax       int               `json:"pax"`
	Days      int               `json:"days"`
	Itinerary []PlanDay         `json:"itinerary"`
	TotalCost float64           `json:"totalCost"`
}
