package domain

import (
	"context"

	"github.com/google/uuid"
)

type CircuitRepository interface {
	// Write paths
	InsertCircuit(ctx context.Context, c Circuit) error
	AddCircuitLocation(ctx context.Context, id uuid.UUID, place string) error

	// Read paths
	GetCircuit(ctx context.Context, id uuid.UUID) (Circuit, error)
	// FindCircuits returns matches in stable order (newest first, id as
	// tie-break); the planner's first-seen tie-break depends on this.
	FindCircuits(ctx context.Context, f CircuitFilter) ([]Circuit, error)
	DistinctCategories(ctx context.Context) ([]string, error)
	DistinctExperiences(ctx context.Context) ([]string, error)
}

type HomestayRepository interface {
	InsertHomestay(ctx context.Context, h Homestay) error
	UpdateHomestayReviews(ctx context.Context, h Homestay) error

	GetHomestay(ctx context.Context, id uuid.UUID) (Homestay, error)
	ListHomestays(ctx context.Context) ([]Homestay, error)
	FindHomestaysByCircuit(ctx context.Context, circuitID uuid.UUID) ([]Homestay, error)
}

type ItineraryRepository interface {
	InsertItinerary(ctx context.Context, it Itinerary) error

	GetItinerary(ctx context.Context, id uuid.UUID) (ItineraryWithCircuit, error)
	// FindItineraries resolves the linked circuit onto each record; the
	// match scorer needs circuit tags/categories/experiences joined in.
	FindItineraries(ctx context.Context, f ItineraryFilter) ([]ItineraryWithCircuit, error)
}

type BookingRepository interface {
	InsertBooking(ctx context.Context, b Booking) error
	UpdateBookingStatus(ctx context.Context, id uuid.UUID, st BookingStatus) error
	GetBooking(ctx context.Context, id uuid.UUID) (Booking, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
