package app

import (
	"context"
	"math"
	"sort"

	"circuit_travel/internal/domain"
)

// PlannerService builds a day-wise plan from user trip constraints: pick
// the best-fitting circuit, then the best affordable homestay in it, then
// synthesize the days. No persisted state; each call is an independent
// four-stage pipeline that fails fast with a distinct error kind.
type PlannerService struct {
	circuits  domain.CircuitRepository
	homestays domain.HomestayRepository
}

func NewPlannerService(c domain.CircuitRepository, h domain.HomestayRepository) *PlannerService {
	return &PlannerService{circuits: c, homestays: h}
}

// candidateStay carries the per-homestay cost breakdown through stage two.
type candidateStay struct {
	stay        domain.Homestay
	stayCost    float64
	carCost     float64
	carDistance float64
	totalCost   float64
	kmRate      float64
}

func (s *PlannerService) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GeneratedPlan, error) {
	if err := validateGeneration(req); err != nil {
		return domain.GeneratedPlan{}, err
	}

	circuit, err := s.selectCircuit(ctx, req)
	if err != nil {
		return domain.GeneratedPlan{}, err
	}

	chosen, err := s.selectHomestay(ctx, circuit, req)
	if err != nil {
		return domain.GeneratedPlan{}, err
	}

	plan := buildDayPlan(circuit, req)

	out := domain.GeneratedPlan{
		Circuit: circuit.Name,
		Theme:   req.Theme,
		Homestay: domain.HomestaySummary{
			Name:        chosen.stay.Name,
			PriceType:   chosen.stay.PricingType,
			PricePerDay: chosen.stay.Price,
			Total:       chosen.stayCost,
			Distance:    chosen.stay.Distance,
			Contact:     chosen.stay.Contact,
			Rooms:       chosen.stay.Rooms,
		},
		Pax:       req.Pax,
		Days:      req.Days,
		Itinerary: plan,
		TotalCost: chosen.totalCost,
	}
	if req.WithCar {
		out.Transport = &domain.TransportSummary{
			Pickup:    req.Pickup,
			Drop:      req.Drop,
			CarType:   req.CarType,
			RatePerKm: chosen.kmRate,
			TotalKm:   chosen.carDistance,
			Total:     chosen.carCost,
		}
	}
	return out, nil
}

func validateGeneration(req domain.GenerationRequest) error {
	switch {
	case req.Pax <= 0:
		return invalid("pax must be > 0")
	case req.Days <= 0:
		return invalid("days must be > 0")
	case req.Budget <= 0:
		return invalid("budget must be > 0")
	}
	switch req.Theme {
	case "offbeat", "city", "mixed":
	default:
		return invalid("theme must be one of offbeat, city, mixed")
	}
	return nil
}

// Stage 1: circuits whose categories overlap the requested tags AND whose
// experiences overlap the requested experiences (both tests must pass),
// narrowed by theme. Highest experience-overlap count wins; equal scores
// keep retrieval order (stable sort, first-seen wins).
func (s *PlannerService) selectCircuit(ctx context.Context, req domain.GenerationRequest) (domain.Circuit, error) {
	filter := domain.CircuitFilter{
		Categories:  NormalizeLabels(req.Tags),
		Experiences: trimAll(req.Experiences),
	}
	// An empty requested set can intersect nothing, so no circuit can
	// satisfy the AND of the two overlap tests.
	if len(filter.Categories) == 0 || len(filter.Experiences) == 0 {
		return domain.Circuit{}, domain.ErrNoCircuitMatch
	}
	switch req.Theme {
	case "offbeat":
		t := true
		filter.IsOffbeat = &t
	case "city":
		f := false
		filter.IsOffbeat = &f
	}

	matching, err := s.circuits.FindCircuits(ctx, filter)
	if err != nil {
		return domain.Circuit{}, err
	}
	if len(matching) == 0 {
		return domain.Circuit{}, domain.ErrNoCircuitMatch
	}

	scores := make([]int, len(matching))
	for i, c := range matching {
		scores[i] = overlapCount(c.Experiences, req.Experiences)
	}
	order := make([]int, len(matching))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	return matching[order[0]], nil
}

// Stage 2: cost every homestay of the circuit, keep the affordable ones and
// pick the one closest to the budget, nearer stays breaking ties.
func (s *PlannerService) selectHomestay(ctx context.Context, circuit domain.Circuit, req domain.GenerationRequest) (candidateStay, error) {
	stays, err := s.homestays.FindHomestaysByCircuit(ctx, circuit.ID)
	if err != nil {
		return candidateStay{}, err
	}
	if len(stays) == 0 {
		return candidateStay{}, domain.ErrNoHomestayAvailable
	}

	kmRate := circuit.KmRate(req.CarType)

	affordable := make([]candidateStay, 0, len(stays))
	for _, stay := range stays {
		c := costStay(stay, kmRate, req)
		if c.totalCost <= req.Budget {
			affordable = append(affordable, c)
		}
	}
	if len(affordable) == 0 {
		return candidateStay{}, domain.ErrBudgetExceeded
	}

	sort.SliceStable(affordable, func(a, b int) bool {
		da := math.Abs(affordable[a].totalCost - req.Budget)
		db := math.Abs(affordable[b].totalCost - req.Budget)
		if da != db {
			return da < db
		}
		return affordable[a].stay.Distance < affordable[b].stay.Distance
	})
	return affordable[0], nil
}

func costStay(stay domain.Homestay, kmRate float64, req domain.GenerationRequest) candidateStay {
	stayCost := stay.Price * float64(req.Days)
	if stay.PricingType == domain.PricingPerHead {
		stayCost *= float64(req.Pax)
	}

	c := candidateStay{stay: stay, stayCost: stayCost, kmRate: kmRate}
	if req.WithCar {
		// round-trip to the reference point plus a daily local allowance
		c.carDistance = stay.Distance*2 + domain.DailyLocalKm*float64(req.Days)
		c.carCost = c.carDistance * kmRate
	}
	c.totalCost = c.stayCost + c.carCost
	return c
}

// Stage 3: assign the circuit's matched experiences day by day; days beyond
// the matched list become leisure days.
func buildDayPlan(circuit domain.Circuit, req domain.GenerationRequest) []domain.PlanDay {
	matched := make([]string, 0, req.Days)
	for _, exp := range circuit.Experiences {
		if len(matched) == req.Days {
			break
		}
		if containsString(req.Experiences, exp) {
			matched = append(matched, exp)
		}
	}

	plan := make([]domain.PlanDay, req.Days)
	for i := range plan {
		activity := domain.LeisureDay
		if i < len(matched) {
			activity = matched[i]
		}
		plan[i] = domain.PlanDay{Day: i + 1, Activity: activity}
	}
	return plan
}

func overlapCount(have, want []string) int {
	n := 0
	for _, h := range have {
		if containsString(want, h) {
			n++
		}
	}
	return n
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
