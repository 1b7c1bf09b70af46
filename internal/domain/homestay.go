package domain

import (
	"time"

	"github.com/google/uuid"
)

// PricingType selects how a homestay charges. Only per-head is accepted
// at creation; per-room exists for legacy records.
type PricingType string

const (
	PricingPerHead PricingType = "perhead"
	PricingPerRoom PricingType = "perroom"
)

// RoomConfig is one room shape offered by a homestay. Total rooms are
// derived as the sum of counts when any configs are present.
type RoomConfig struct {
	Label    string `json:"label"`
	Capacity int    `json:"capacity"`
	Count    int    `json:"count"`
}

// HomestayReview is an embedded guest review; aggregates live on the homestay.
type HomestayReview struct {
	UserName  string    `json:"userName"`
	Rating    float64   `json:"rating"` // 1..5
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Homestay is a bookable lodging unit tied to one circuit.
type Homestay struct {
	ID        uuid.UUID `json:"id"`
	CircuitID uuid.UUID `json:"circuitId"`

	Name      string `json:"homestayName"`
	PlaceName string `json:"placeName"`

	PricingType PricingType `json:"pricingType"`
	Price       float64     `json:"price"`    // per head per night when perhead
	Distance    float64     `json:"distance"` // km from the circuit reference point
	Rooms       int         `json:"rooms"`
	RoomConfigs []RoomConfig `json:"roomConfigs,omitempty"`

	Contact     string   `json:"contact,omitempty"`
	Description string   `json:"description,omitempty"`
	GuestTypes  []string `json:"guestTypes,omitempty"`
	Addons      []string `json:"addons,omitempty"`

	Experiences         []string           `json:"experiences,omitempty"`
	ExperienceDistances map[string]float64 `json:"experienceDistances,omitempty"`
	LocationTypes       []string           `json:"locationTypes,omitempty"` // Offbeat | City

	IsFeatured bool     `json:"isFeatured"`
	Images     []string `json:"images,omitempty"`

	Reviews       []HomestayReview `json:"reviews,omitempty"`
	AverageRating float64          `json:"averageRating"`
	RatingCount   int              `json:"ratingCount"`
}
