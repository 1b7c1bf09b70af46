package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"circuit_travel/internal/app"
	"circuit_travel/internal/domain"
)

// fakeCache stores values as-is, like the real adapter but without Redis.
type fakeCache struct {
	store map[string]any
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *[]domain.Circuit:
		*d = v.([]domain.Circuit)
	case *[]domain.Homestay:
		*d = v.([]domain.Homestay)
	case *[]domain.ItineraryWithCircuit:
		*d = v.([]domain.ItineraryWithCircuit)
	case *[]app.CategoryOption:
		*d = v.([]app.CategoryOption)
	case *app.HomestayDetail:
		*d = v.(app.HomestayDetail)
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

func queryServiceWith(cr *mockCircuitRepo, hr *mockHomestayRepo, ir *mockItineraryRepo, cache domain.Cache) *app.QueryService {
	return app.NewQueryService(cr, hr, ir, &mockBookingRepo{}, cache, 10*time.Minute)
}

func TestListCircuits_CacheMissThenHit(t *testing.T) {
	calls := 0
	cr := &mockCircuitRepo{
		find: func(context.Context, domain.CircuitFilter) ([]domain.Circuit, error) {
			calls++
			return []domain.Circuit{{Name: "Dooars"}}, nil
		},
	}
	q := queryServiceWith(cr, &mockHomestayRepo{}, &mockItineraryRepo{}, &fakeCache{})

	out, err := q.ListCircuits(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out) != 1 || out[0].Name != "Dooars" {
		t.Fatalf("unexpected circuits: %+v", out)
	}

	// second call served from cache
	if _, err := q.ListCircuits(context.Background()); err != nil {
		t.Fatalf("err: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one repo call, got %d", calls)
	}
}

func TestGetHomestayDetail_Cache(t *testing.T) {
	id := uuid.New()
	stay := domain.Homestay{
		ID:      id,
		Name:    "River Lodge",
		Price:   2000,
		Reviews: []domain.HomestayReview{{UserName: "Ana", Rating: 5}},
	}
	calls := 0
	hr := &mockHomestayRepo{
		get: func(context.Context, uuid.UUID) (domain.Homestay, error) {
			calls++
			return stay, nil
		},
	}
	q := queryServiceWith(&mockCircuitRepo{}, hr, &mockItineraryRepo{}, &fakeCache{})

	d, err := q.GetHomestayDetail(context.Background(), id)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if d.MinPerPerson != 2000 || len(d.Reviews) != 1 {
		t.Fatalf("unexpected detail: %+v", d)
	}

	if _, err := q.GetHomestayDetail(context.Background(), id); err != nil {
		t.Fatalf("err: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one repo call, got %d", calls)
	}
}

func TestMatchCircuitsByCategories_RankedByOverlap(t *testing.T) {
	one := domain.Circuit{Name: "One", Categories: []string{"wildlife"}}
	two := domain.Circuit{Name: "Two", Categories: []string{"wildlife", "nature"}}
	cr := &mockCircuitRepo{
		find: func(context.Context, domain.CircuitFilter) ([]domain.Circuit, error) {
			return []domain.Circuit{one, two}, nil
		},
	}
	q := queryServiceWith(cr, &mockHomestayRepo{}, &mockItineraryRepo{}, &fakeCache{})

	out, err := q.MatchCircuitsByCategories(context.Background(), []string{"Wildlife", "Nature"})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out) != 2 || out[0].Name != "Two" {
		t.Fatalf("expected Two ranked first, got %+v", out)
	}
}

func TestMatchCircuitsByCategories_RequiresNonEmptyList(t *testing.T) {
	q := queryServiceWith(&mockCircuitRepo{}, &mockHomestayRepo{}, &mockItineraryRepo{}, &fakeCache{})

	if _, err := q.MatchCircuitsByCategories(context.Background(), nil); err == nil {
		t.Fatal("expected validation error")
	}
	if _, err := q.MatchCircuitsByCategories(context.Background(), []string{"  "}); err == nil {
		t.Fatal("expected validation error for blank-only list")
	}
}

func TestDistinctCategories_FormatsOptions(t *testing.T) {
	cr := &mockCircuitRepo{
		categories: func(context.Context) ([]string, error) {
			return []string{"Tea Gardens", "wildlife"}, nil
		},
	}
	q := queryServiceWith(cr, &mockHomestayRepo{}, &mockItineraryRepo{}, &fakeCache{})

	out, err := q.DistinctCategories(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out) != 2 || out[0].Value != "tea_gardens" || out[0].Label != "Tea Gardens" {
		t.Fatalf("unexpected options: %+v", out)
	}
}

func TestThemes_Static(t *testing.T) {
	q := queryServiceWith(&mockCircuitRepo{}, &mockHomestayRepo{}, &mockItineraryRepo{}, &fakeCache{})

	themes := q.Themes()
	if len(themes) != 3 || themes[0].Value != "offbeat" {
		t.Fatalf("unexpected themes: %+v", themes)
	}
}
