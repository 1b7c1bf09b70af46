package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"circuit_travel/internal/domain"
)

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, msg)
}

// CommandService owns the write paths: create circuits, homestays,
// itineraries and bookings, and append homestay reviews. Writes invalidate
// the read-side cache keys they touch.
type CommandService struct {
	circuits    domain.CircuitRepository
	homestays   domain.HomestayRepository
	itineraries domain.ItineraryRepository
	bookings    domain.BookingRepository
	cache       domain.Cache
}

func NewCommandService(
	c domain.CircuitRepository,
	h domain.HomestayRepository,
	it domain.ItineraryRepository,
	b domain.BookingRepository,
	cache domain.Cache,
) *CommandService {
	return &CommandService{circuits: c, homestays: h, itineraries: it, bookings: b, cache: cache}
}

// ---- circuits ----

type CreateCircuitInput struct {
	Name        string      `json:"name"`
	Categories  FlexStrings `json:"categories"`
	Theme       string      `json:"theme"`
	Experiences FlexStrings `json:"experiences"`
	Tags        FlexStrings `json:"tags"`
	IsOffbeat   bool        `json:"isOffbeat"`

	FeaturedActivities FlexStrings `json:"featuredActivities"`
	Locations          FlexStrings `json:"locations"`
	BestSeasons        FlexStrings `json:"bestSeasons"`
	EntryPoints        FlexStrings `json:"entryPoints"`
	Transport          FlexStrings `json:"transport"`

	Description string `json:"description"`
	Duration    string `json:"duration"`

	CarPriceHatchback float64 `json:"carPriceHatchback"`
	CarPriceSedan     float64 `json:"carPriceSedan"`
	CarPriceSUV       float64 `json:"carPriceSUV"`

	Images FlexStrings `json:"images"`
}

func (s *CommandService) CreateCircuit(ctx context.Context, in CreateCircuitInput) (domain.Circuit, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Circuit{}, invalid("name is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return domain.Circuit{}, invalid("description is required")
	}

	rates := map[domain.CarType]float64{}
	for ct, p := range map[domain.CarType]float64{
		domain.CarHatchback: in.CarPriceHatchback,
		domain.CarSedan:     in.CarPriceSedan,
		domain.CarSUV:       in.CarPriceSUV,
	} {
		if p > 0 {
			rates[ct] = p
		}
	}

	c := domain.Circuit{
		ID:          uuid.New(),
		Name:        name,
		Categories:  NormalizeLabels(in.Categories),
		Theme:       strings.TrimSpace(in.Theme),
		Experiences: trimAll(in.Experiences),
		Tags:        NormalizeLabels(in.Tags),
		IsOffbeat:   in.IsOffbeat,
		CarRates:    rates,

		FeaturedActivities: trimAll(in.FeaturedActivities),
		Locations:          trimAll(in.Locations),
		BestSeasons:        trimAll(in.BestSeasons),
		EntryPoints:        trimAll(in.EntryPoints),
		Transport:          trimAll(in.Transport),

		Description: strings.TrimSpace(in.Description),
		Duration:    strings.TrimSpace(in.Duration),
		Images:      trimAll(in.Images),
	}
	if err := s.circuits.InsertCircuit(ctx, c); err != nil {
		return domain.Circuit{}, err
	}
	s.invalidateCircuits(ctx)
	return c, nil
}

// ---- homestays ----

type RoomConfigInput struct {
	Label    string  `json:"label"`
	Capacity float64 `json:"capacity"`
	Count    float64 `json:"count"`
}

type CreateHomestayInput struct {
	CircuitID   string  `json:"circuitId"`
	Name        string  `json:"homestayName"`
	PlaceName   string  `json:"placeName"`
	Description string  `json:"description"`
	Contact     string  `json:"contact"`
	PricingType string  `json:"pricingType"`
	Price       float64 `json:"price"`
	Distance    float64 `json:"distance"`
	Rooms       int     `json:"rooms"` // overridden by room config sum when present
	IsFeatured  bool    `json:"isFeatured"`

	GuestTypes          FlexStrings       `json:"guestTypes"`
	Addons              FlexStrings       `json:"addons"`
	Experiences         FlexStrings       `json:"experiences"`
	LocationTypes       FlexStrings       `json:"locationTypes"`
	RoomConfigs         []RoomConfigInput `json:"roomConfigs"`
	ExperienceDistances FlexNumberMap     `json:"experienceDistances"`
	Images              FlexStrings       `json:"images"`
}

func (s *CommandService) CreateHomestay(ctx context.Context, in CreateHomestayInput) (domain.Homestay, error) {
	circuitID, err := uuid.Parse(in.CircuitID)
	if err != nil {
		return domain.Homestay{}, invalid("circuitId is required and must be a valid id")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Homestay{}, invalid("homestayName is required")
	}
	place := strings.TrimSpace(in.PlaceName)
	if place == "" {
		return domain.Homestay{}, invalid("placeName is required")
	}

	// Only per-head-per-night pricing is accepted at creation.
	if pt := strings.ToLower(strings.TrimSpace(in.PricingType)); pt != "" && pt != string(domain.PricingPerHead) {
		return domain.Homestay{}, invalid("pricingType must be perhead (per-head with food)")
	}
	if !(in.Price > 0) {
		return domain.Homestay{}, invalid("price (per head per night) must be > 0")
	}
	if in.Distance < 0 {
		return domain.Homestay{}, invalid("distance must be >= 0")
	}

	circuit, err := s.circuits.GetCircuit(ctx, circuitID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Homestay{}, invalid("invalid circuitId")
		}
		return domain.Homestay{}, err
	}

	configs := make([]domain.RoomConfig, 0, len(in.RoomConfigs))
	roomSum := 0
	for _, rc := range in.RoomConfigs {
		cfg := domain.RoomConfig{
			Label:    strings.TrimSpace(rc.Label),
			Capacity: int(rc.Capacity),
			Count:    int(rc.Count),
		}
		if cfg.Label == "" && cfg.Capacity <= 0 && cfg.Count <= 0 {
			continue
		}
		configs = append(configs, cfg)
		roomSum += cfg.Count
	}
	rooms := in.Rooms
	if roomSum > 0 {
		rooms = roomSum
	}
	if rooms < 0 {
		rooms = 0
	}

	h := domain.Homestay{
		ID:        uuid.New(),
		CircuitID: circuit.ID,
		Name:      name,
		PlaceName: place,

		PricingType: domain.PricingPerHead,
		Price:       in.Price,
		Distance:    in.Distance,
		Rooms:       rooms,
		RoomConfigs: configs,

		Contact:     strings.TrimSpace(in.Contact),
		Description: strings.TrimSpace(in.Description),
		GuestTypes:  trimAll(in.GuestTypes),
		Addons:      trimAll(in.Addons),

		Experiences:         trimAll(in.Experiences),
		ExperienceDistances: in.ExperienceDistances,
		LocationTypes:       trimAll(in.LocationTypes),

		IsFeatured: in.IsFeatured,
		Images:     trimAll(in.Images),
	}
	if err := s.homestays.InsertHomestay(ctx, h); err != nil {
		return domain.Homestay{}, err
	}

	// List the place under its circuit (deduped repository-side).
	if !containsString(circuit.Locations, place) {
		if err := s.circuits.AddCircuitLocation(ctx, circuit.ID, place); err != nil {
			return domain.Homestay{}, err
		}
	}

	s.invalidateHomestays(ctx, h.ID)
	s.invalidateCircuits(ctx)
	return h, nil
}

type ReviewInput struct {
	UserName string  `json:"userName"`
	Rating   float64 `json:"rating"`
	Comment  string  `json:"comment"`
}

// AddHomestayReview appends a review and recomputes the aggregates,
// returning the new average and count.
func (s *CommandService) AddHomestayReview(ctx context.Context, id uuid.UUID, in ReviewInput) (avg float64, count int, err error) {
	if in.Rating < 1 || in.Rating > 5 {
		return 0, 0, invalid("rating must be between 1 and 5")
	}

	h, err := s.homestays.GetHomestay(ctx, id)
	if err != nil {
		return 0, 0, err
	}

	h.Reviews = append(h.Reviews, domain.HomestayReview{
		UserName:  strings.TrimSpace(in.UserName),
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
		CreatedAt: time.Now().UTC(),
	})
	var total float64
	for _, r := range h.Reviews {
		total += r.Rating
	}
	h.RatingCount = len(h.Reviews)
	h.AverageRating = total / float64(h.RatingCount)

	if err := s.homestays.UpdateHomestayReviews(ctx, h); err != nil {
		return 0, 0, err
	}
	s.invalidateHomestays(ctx, h.ID)
	return h.AverageRating, h.RatingCount, nil
}

// ---- itineraries ----

type DayPlanInput struct {
	Day              float64     `json:"day"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	StayAtHomestayID string      `json:"stayAtHomestayId"`
	Activities       FlexStrings `json:"activities"`
	TravelDistanceKm float64     `json:"travelDistanceKm"`
}

type CreateItineraryInput struct {
	Title     string `json:"title"`
	CircuitID string `json:"circuitId"`
	Theme     string `json:"theme"`

	CategoryTags   FlexStrings `json:"categoryTags"`
	ExperienceTags FlexStrings `json:"experienceTags"`

	DurationDays int     `json:"durationDays"`
	PaxMin       int     `json:"paxMin"`
	PaxMax       int     `json:"paxMax"`
	BudgetMin    float64 `json:"budgetMin"`
	BudgetMax    float64 `json:"budgetMax"`

	TransportIncluded bool   `json:"transportIncluded"`
	CarType           string `json:"carType"`
	Rooms             int    `json:"noOfRooms"`

	DayWisePlan []DayPlanInput    `json:"dayWisePlan"`
	LocalGuide  domain.LocalGuide `json:"localGuide"`

	IsFeatured bool   `json:"isFeatured"`
	Image      string `json:"image"`
}

func (s *CommandService) CreateItinerary(ctx context.Context, in CreateItineraryInput) (domain.Itinerary, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Itinerary{}, invalid("title is required")
	}
	circuitID, err := uuid.Parse(in.CircuitID)
	if err != nil {
		return domain.Itinerary{}, invalid("circuitId is required and must be a valid id")
	}
	if in.DurationDays < 1 {
		return domain.Itinerary{}, invalid("durationDays must be >= 1")
	}
	if _, err := s.circuits.GetCircuit(ctx, circuitID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Itinerary{}, invalid("invalid circuitId")
		}
		return domain.Itinerary{}, err
	}

	plan := make([]domain.DayPlanEntry, 0, len(in.DayWisePlan))
	for _, d := range in.DayWisePlan {
		entry := domain.DayPlanEntry{
			Day:         int(d.Day),
			Title:       strings.TrimSpace(d.Title),
			Description: strings.TrimSpace(d.Description),
			Activities:  trimAll(d.Activities),
		}
		if d.TravelDistanceKm > 0 {
			entry.TravelDistanceKm = d.TravelDistanceKm
		}
		if sid := strings.TrimSpace(d.StayAtHomestayID); sid != "" {
			hid, err := uuid.Parse(sid)
			if err != nil {
				return domain.Itinerary{}, invalid("stayAtHomestayId must be a valid id")
			}
			entry.StayAtHomestayID = &hid
		}
		plan = append(plan, entry)
	}

	carType := domain.CarType(strings.ToLower(strings.TrimSpace(in.CarType)))
	switch carType {
	case domain.CarHatchback, domain.CarSedan, domain.CarSUV:
	case "":
		carType = domain.CarHatchback
	default:
		return domain.Itinerary{}, invalid("carType must be hatchback, sedan or suv")
	}

	it := domain.Itinerary{
		ID:        uuid.New(),
		CircuitID: circuitID,
		Title:     title,
		Theme:     strings.TrimSpace(in.Theme),

		CategoryTags:   NormalizeLabels(in.CategoryTags),
		ExperienceTags: trimAll(in.ExperienceTags),

		DurationDays: in.DurationDays,
		PaxMin:       in.PaxMin,
		PaxMax:       in.PaxMax,
		BudgetMin:    in.BudgetMin,
		BudgetMax:    in.BudgetMax,

		TransportIncluded: in.TransportIncluded,
		CarType:           carType,
		Rooms:             in.Rooms,

		DayWisePlan: plan,
		LocalGuide:  in.LocalGuide,

		IsFeatured: in.IsFeatured,
		Image:      strings.TrimSpace(in.Image),
	}
	if err := s.itineraries.InsertItinerary(ctx, it); err != nil {
		return domain.Itinerary{}, err
	}
	s.invalidateItineraries(ctx)
	return it, nil
}

// ---- bookings ----

type CreateBookingInput struct {
	CustomerName    string               `json:"customerName"`
	CustomerContact string               `json:"customerContact"`
	Plan            domain.GeneratedPlan `json:"plan"`
}

func (s *CommandService) CreateBooking(ctx context.Context, in CreateBookingInput) (domain.Booking, error) {
	if strings.TrimSpace(in.CustomerName) == "" {
		return domain.Booking{}, invalid("customerName is required")
	}
	if strings.TrimSpace(in.CustomerContact) == "" {
		return domain.Booking{}, invalid("customerContact is required")
	}
	if in.Plan.Circuit == "" || in.Plan.Pax <= 0 || in.Plan.Days <= 0 {
		return domain.Booking{}, invalid("plan is incomplete")
	}

	b := domain.Booking{
		ID:              uuid.New(),
		CustomerName:    strings.TrimSpace(in.CustomerName),
		CustomerContact: strings.TrimSpace(in.CustomerContact),

		Pax:     in.Plan.Pax,
		Days:    in.Plan.Days,
		Circuit: in.Plan.Circuit,
		Theme:   in.Plan.Theme,

		Homestay:  in.Plan.Homestay,
		Transport: in.Plan.Transport,
		Itinerary: in.Plan.Itinerary,
		TotalCost: in.Plan.TotalCost,

		Status:    domain.BookingGenerated,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.bookings.InsertBooking(ctx, b); err != nil {
		return domain.Booking{}, err
	}
	return b, nil
}

func (s *CommandService) UpdateBookingStatus(ctx context.Context, id uuid.UUID, status string) error {
	st := domain.BookingStatus(strings.TrimSpace(status))
	switch st {
	case domain.BookingBooked, domain.BookingCancelled:
	default:
		return invalid("status must be Booked or Cancelled")
	}
	return s.bookings.UpdateBookingStatus(ctx, id, st)
}

// ---- cache invalidation ----

func (s *CommandService) invalidateCircuits(ctx context.Context) {
	if s.cache == nil {
		return
	}
	for _, k := range []string{"circuits", "circuits:categories", "circuits:experiences"} {
		_ = s.cache.Del(ctx, k)
	}
}

func (s *CommandService) invalidateHomestays(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, "homestays")
	_ = s.cache.Del(ctx, "homestay:"+id.String())
}

func (s *CommandService) invalidateItineraries(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, "itineraries")
}
