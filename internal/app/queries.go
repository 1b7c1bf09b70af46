package app

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"

	"circuit_travel/internal/domain"
)

// QueryService serves the read side through a cache-aside layer. Cache
// failures are ignored; the repository is always the source of truth.
type QueryService struct {
	circuits    domain.CircuitRepository
	homestays   domain.HomestayRepository
	itineraries domain.ItineraryRepository
	bookings    domain.BookingRepository
	cache       domain.Cache
	cacheTTL    time.Duration
}

func NewQueryService(
	c domain.CircuitRepository,
	h domain.HomestayRepository,
	it domain.ItineraryRepository,
	b domain.BookingRepository,
	cache domain.Cache,
	ttl time.Duration,
) *QueryService {
	return &QueryService{circuits: c, homestays: h, itineraries: it, bookings: b, cache: cache, cacheTTL: ttl}
}

func (s *QueryService) ttlSec() int { return int(s.cacheTTL.Seconds()) }

func (s *QueryService) ListCircuits(ctx context.Context) ([]domain.Circuit, error) {
	var out []domain.Circuit
	if ok, _ := s.cache.Get(ctx, "circuits", &out); ok {
		return out, nil
	}
	cs, err := s.circuits.FindCircuits(ctx, domain.CircuitFilter{})
	if err != nil {
		return nil, err
	}
	// copy before caching so callers can't mutate the cached value
	out = append([]domain.Circuit(nil), cs...)
	_ = s.cache.Set(ctx, "circuits", out, s.ttlSec())
	return out, nil
}

func (s *QueryService) GetCircuit(ctx context.Context, id uuid.UUID) (domain.Circuit, error) {
	return s.circuits.GetCircuit(ctx, id)
}

// MatchCircuitsByCategories returns circuits whose category set overlaps
// the given list, ranked by overlap count (ties keep retrieval order).
// A non-empty category list is required.
func (s *QueryService) MatchCircuitsByCategories(ctx context.Context, categories []string) ([]domain.Circuit, error) {
	norm := NormalizeLabels(categories)
	if len(norm) == 0 {
		return nil, invalid("categories must be a non-empty array")
	}
	cs, err := s.circuits.FindCircuits(ctx, domain.CircuitFilter{Categories: norm})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(cs, func(a, b int) bool {
		return overlapCount(cs[a].Categories, norm) > overlapCount(cs[b].Categories, norm)
	})
	return cs, nil
}

// CategoryOption is a label/value pair for selector UIs.
type CategoryOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

func (s *QueryService) DistinctCategories(ctx context.Context) ([]CategoryOption, error) {
	var out []CategoryOption
	if ok, _ := s.cache.Get(ctx, "circuits:categories", &out); ok {
		return out, nil
	}
	cats, err := s.circuits.DistinctCategories(ctx)
	if err != nil {
		return nil, err
	}
	out = make([]CategoryOption, 0, len(cats))
	for _, c := range cats {
		out = append(out, CategoryOption{Label: c, Value: NormalizeLabel(c)})
	}
	_ = s.cache.Set(ctx, "circuits:categories", out, s.ttlSec())
	return out, nil
}

func (s *QueryService) DistinctExperiences(ctx context.Context) ([]CategoryOption, error) {
	var out []CategoryOption
	if ok, _ := s.cache.Get(ctx, "circuits:experiences", &out); ok {
		return out, nil
	}
	exps, err := s.circuits.DistinctExperiences(ctx)
	if err != nil {
		return nil, err
	}
	out = make([]CategoryOption, 0, len(exps))
	for _, e := range exps {
		out = append(out, CategoryOption{Label: e, Value: NormalizeLabel(e)})
	}
	_ = s.cache.Set(ctx, "circuits:experiences", out, s.ttlSec())
	return out, nil
}

// ThemeOption describes one of the fixed travel themes.
type ThemeOption struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// Themes is static; no storage round-trip involved.
func (s *QueryService) Themes() []ThemeOption {
	return []ThemeOption{
		{Label: "Offbeat", Value: "offbeat", Description: "Hidden gems, quiet villages & local life."},
		{Label: "City & Popular Destinations", Value: "city", Description: "Popular towns, sightseeing, cafes & markets."},
		{Label: "Mixed", Value: "mixed", Description: "A blend of offbeat and mainstream spots."},
	}
}

func (s *QueryService) ListHomestays(ctx context.Context) ([]domain.Homestay, error) {
	var out []domain.Homestay
	if ok, _ := s.cache.Get(ctx, "homestays", &out); ok {
		return out, nil
	}
	hs, err := s.homestays.ListHomestays(ctx)
	if err != nil {
		return nil, err
	}
	out = append([]domain.Homestay(nil), hs...)
	// size guard: skip caching oversized lists
	if b, _ := json.Marshal(out); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, "homestays", out, s.ttlSec())
	}
	return out, nil
}

func (s *QueryService) GetHomestay(ctx context.Context, id uuid.UUID) (domain.Homestay, error) {
	return s.homestays.GetHomestay(ctx, id)
}

// HomestayDetail is the rich payload for a homestay details page.
type HomestayDetail struct {
	Homestay     domain.Homestay         `json:"homestay"`
	Reviews      []domain.HomestayReview `json:"reviews"`
	MinPerPerson float64                 `json:"minPerPerson"`
}

func (s *QueryService) GetHomestayDetail(ctx context.Context, id uuid.UUID) (HomestayDetail, error) {
	key := "homestay:" + id.String()
	var out HomestayDetail
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	h, err := s.homestays.GetHomestay(ctx, id)
	if err != nil {
		return HomestayDetail{}, err
	}
	out = HomestayDetail{
		Homestay:     h,
		Reviews:      append([]domain.HomestayReview(nil), h.Reviews...),
		MinPerPerson: h.Price,
	}
	_ = s.cache.Set(ctx, key, out, s.ttlSec())
	return out, nil
}

func (s *QueryService) ListItineraries(ctx context.Context) ([]domain.ItineraryWithCircuit, error) {
	var out []domain.ItineraryWithCircuit
	if ok, _ := s.cache.Get(ctx, "itineraries", &out); ok {
		return out, nil
	}
	its, err := s.itineraries.FindItineraries(ctx, domain.ItineraryFilter{})
	if err != nil {
		return nil, err
	}
	out = append([]domain.ItineraryWithCircuit(nil), its...)
	if b, _ := json.Marshal(out); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, "itineraries", out, s.ttlSec())
	}
	return out, nil
}

// ListItinerariesByCircuit bypasses the cache; per-circuit slices are
// small and rarely re-requested.
func (s *QueryService) ListItinerariesByCircuit(ctx context.Context, circuitID uuid.UUID) ([]domain.ItineraryWithCircuit, error) {
	return s.itineraries.FindItineraries(ctx, domain.ItineraryFilter{CircuitID: &circuitID})
}

func (s *QueryService) GetItinerary(ctx context.Context, id uuid.UUID) (domain.ItineraryWithCircuit, error) {
	return s.itineraries.GetItinerary(ctx, id)
}

func (s *QueryService) GetBooking(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	return s.bookings.GetBooking(ctx, id)
}
