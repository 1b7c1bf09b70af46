package app

import (
	"context"
	"math"
	"strings"

	"circuit_travel/internal/domain"
)

// MatchService scores stored itineraries against a preference query.
// Stateless; every call re-reads candidates through the repository port.
type MatchService struct {
	itineraries domain.ItineraryRepository
}

func NewMatchService(r domain.ItineraryRepository) *MatchService {
	return &MatchService{itineraries: r}
}

// Match evaluates six independent predicates per candidate and keeps those
// with at least domain.MatchThreshold passes. An empty query field is "no
// constraint" and its predicate passes vacuously, so an all-empty query
// returns every candidate with score 6. Output keeps repository retrieval
// order; no relevance re-sort is applied.
func (s *MatchService) Match(ctx context.Context, q domain.MatchQuery) ([]domain.ScoredItinerary, error) {
	candidates, err := s.itineraries.FindItineraries(ctx, domain.ItineraryFilter{})
	if err != nil {
		return nil, err
	}

	tags := NormalizeLabels(q.Tags)
	experiences := trimAll(q.Experiences)
	theme := strings.ToLower(strings.TrimSpace(q.Theme))
	wantName := strings.ToLower(strings.TrimSpace(q.CircuitName))

	results := make([]domain.ScoredItinerary, 0, len(candidates))
	for _, it := range candidates {
		// Hard circuit filters: exact-match exclusionary, never scored.
		if q.CircuitID != nil && it.CircuitID != *q.CircuitID {
			continue
		}
		if wantName != "" {
			var name string
			if it.Circuit != nil {
				name = it.Circuit.Name
			}
			if strings.ToLower(name) != wantName {
				continue
			}
		}

		score := scoreItinerary(it, tags, experiences, theme, q)
		if score < domain.MatchThreshold {
			continue
		}

		results = append(results, domain.ScoredItinerary{
			ItineraryWithCircuit: it,
			Score:                score,
			TotalItineraryKm:     it.TotalKm(),
			Pax:                  q.Pax,
			Days:                 q.Days,
			Rooms:                q.Rooms,
		})
	}
	return results, nil
}

func scoreItinerary(it domain.ItineraryWithCircuit, tags, experiences []string, theme string, q domain.MatchQuery) int {
	var circuitTags, circuitExperiences []string
	if it.Circuit != nil {
		circuitTags = append(circuitTags, it.Circuit.Tags...)
		circuitTags = append(circuitTags, it.Circuit.Categories...)
		circuitExperiences = it.Circuit.Experiences
	}

	tagMatch := len(tags) == 0 || anyOverlap(circuitTags, tags)

	experienceMatch := len(experiences) == 0 ||
		anyOverlap(it.ExperienceTags, experiences) ||
		anyOverlap(circuitExperiences, experiences)

	themeMatch := theme == "" || strings.Contains(strings.ToLower(it.Theme), theme)

	budgetMatch := q.Budget == nil || it.BudgetMax <= *q.Budget+domain.BudgetSlack

	daysMatch := q.Days == nil ||
		math.Abs(float64(it.DurationDays-*q.Days)) <= domain.DurationTolerance

	carMatch := !q.WithCar || it.TransportIncluded

	score := 0
	for _, ok := range []bool{tagMatch, experienceMatch, themeMatch, budgetMatch, daysMatch, carMatch} {
		if ok {
			score++
		}
	}
	return score
}

// anyOverlap reports whether have contains at least one of want.
func anyOverlap(have, want []string) bool {
	if len(have) == 0 || len(want) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(want))
	for _, w := range want {
		set[w] = struct{}{}
	}
	for _, h := range have {
		if _, ok := set[h]; ok {
			return true
		}
	}
	return false
}
