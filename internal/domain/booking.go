package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus tracks a persisted plan's lifecycle.
type BookingStatus string

const (
	BookingGenerated BookingStatus = "Generated"
	BookingBooked    BookingStatus = "Booked"
	BookingCancelled BookingStatus = "Cancelled"
)

// Booking is a persisted snapshot of a generated plan plus customer details.
// The plan fields are copied, not referenced: later edits to circuits or
// homestays must not rewrite history.
type Booking struct {
	ID              uuid.UUID `json:"id"`
	CustomerName    string    `json:"customerName"`
	CustomerContact string    `json:"customerContact"`

	Pax     int    `json:"pax"`
	Days    int    `json:"days"`
	Circuit string `json:"circuit"`
	Theme   string `json:"theme,omitempty"`

	Homestay  HomestaySummary   `json:"homestay"`
	Transport *TransportSummary `json:"transport,omitempty"`
	Itinerary []PlanDay         `json:"itinerary"`
	TotalCost float64           `json:"totalCost"`

	Status    BookingStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}
