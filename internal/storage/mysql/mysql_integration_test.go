//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"circuit_travel/internal/domain"
	mysqlrepo "circuit_travel/internal/storage/mysql"
)

// ---------- small helpers ----------

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/migrations)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=travel",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "travel")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

// ---------- the test ----------

func TestRepo_MySQL_InsertAndQuery(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	// Arrange: one circuit with a homestay and an itinerary hanging off it.
	circuit := domain.Circuit{
		ID:          uuid.New(),
		Name:        "Dooars Wilds",
		Description: "Forests and rivers",
		Duration:    "3-5 days",
		Theme:       "offbeat",
		IsOffbeat:   true,
		Categories:  []string{"wildlife", "nature"},
		Experiences: []string{"safari", "river_rafting"},
		Tags:        []string{"forest", "offbeat"},
		Locations:   []string{"Lataguri"},
		CarRates:    map[domain.CarType]float64{domain.CarSedan: 18},
	}
	if err := repo.InsertCircuit(ctx, circuit); err != nil {
		t.Fatalf("InsertCircuit: %v", err)
	}

	stay := domain.Homestay{
		ID:          uuid.New(),
		CircuitID:   circuit.ID,
		Name:        "River Lodge",
		PlaceName:   "Lataguri",
		PricingType: domain.PricingPerHead,
		Price:       1500,
		Distance:    12,
		Rooms:       4,
		RoomConfigs: []domain.RoomConfig{{Label: "double", Capacity: 2, Count: 4}},
		Experiences: []string{"safari"},
	}
	if err := repo.InsertHomestay(ctx, stay); err != nil {
		t.Fatalf("InsertHomestay: %v", err)
	}

	it := domain.Itinerary{
		ID:             uuid.New(),
		CircuitID:      circuit.ID,
		Title:          "Wild Weekend",
		Theme:          "offbeat",
		CategoryTags:   []string{"wildlife"},
		ExperienceTags: []string{"safari"},
		DurationDays:   3,
		PaxMin:         2,
		PaxMax:         6,
		BudgetMin:      8000,
		BudgetMax:      15000,
		CarType:        domain.CarSedan,
		Rooms:          2,
		DayWisePlan: []domain.DayPlanEntry{
			{Day: 1, Title: "Arrival", TravelDistanceKm: 60},
			{Day: 2, Title: "Safari", TravelDistanceKm: 25},
		},
	}
	if err := repo.InsertItinerary(ctx, it); err != nil {
		t.Fatalf("InsertItinerary: %v", err)
	}

	// Circuit round-trip, including JSON columns.
	got, err := repo.GetCircuit(ctx, circuit.ID)
	if err != nil {
		t.Fatalf("GetCircuit: %v", err)
	}
	if got.Name != "Dooars Wilds" || !got.IsOffbeat || len(got.Experiences) != 2 {
		t.Fatalf("unexpected circuit: %+v", got)
	}
	if r := got.KmRate(domain.CarSedan); r != 18 {
		t.Fatalf("sedan rate = %v, want 18", r)
	}

	// Overlap filter keeps the circuit; a disjoint filter drops it.
	hits, err := repo.FindCircuits(ctx, domain.CircuitFilter{Categories: []string{"wildlife"}})
	if err != nil {
		t.Fatalf("FindCircuits: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("want 1 circuit, got %d", len(hits))
	}
	none, err := repo.FindCircuits(ctx, domain.CircuitFilter{Categories: []string{"beach"}})
	if err != nil {
		t.Fatalf("FindCircuits: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("want 0 circuits, got %d", len(none))
	}

	// AddCircuitLocation appends once, then dedupes.
	if err := repo.AddCircuitLocation(ctx, circuit.ID, "Murti"); err != nil {
		t.Fatalf("AddCircuitLocation: %v", err)
	}
	if err := repo.AddCircuitLocation(ctx, circuit.ID, "Murti"); err != nil {
		t.Fatalf("AddCircuitLocation repeat: %v", err)
	}
	got, err = repo.GetCircuit(ctx, circuit.ID)
	if err != nil {
		t.Fatalf("GetCircuit after location: %v", err)
	}
	if len(got.Locations) != 2 || got.Locations[1] != "Murti" {
		t.Fatalf("locations = %v", got.Locations)
	}

	cats, err := repo.DistinctCategories(ctx)
	if err != nil {
		t.Fatalf("DistinctCategories: %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("categories = %v", cats)
	}

	// Review aggregates persist through the update path.
	stay.Reviews = []domain.HomestayReview{
		{UserName: "ana", Rating: 5, CreatedAt: time.Now().UTC().Truncate(time.Second)},
	}
	stay.AverageRating = 5
	stay.RatingCount = 1
	if err := repo.UpdateHomestayReviews(ctx, stay); err != nil {
		t.Fatalf("UpdateHomestayReviews: %v", err)
	}
	hs, err := repo.GetHomestay(ctx, stay.ID)
	if err != nil {
		t.Fatalf("GetHomestay: %v", err)
	}
	if hs.RatingCount != 1 || hs.AverageRating != 5 || len(hs.Reviews) != 1 {
		t.Fatalf("unexpected homestay aggregates: %+v", hs)
	}

	byCircuit, err := repo.FindHomestaysByCircuit(ctx, circuit.ID)
	if err != nil {
		t.Fatalf("FindHomestaysByCircuit: %v", err)
	}
	if len(byCircuit) != 1 || byCircuit[0].ID != stay.ID {
		t.Fatalf("unexpected homestays by circuit: %+v", byCircuit)
	}

	// Itinerary reads come back joined with their circuit.
	its, err := repo.FindItineraries(ctx, domain.ItineraryFilter{})
	if err != nil {
		t.Fatalf("FindItineraries: %v", err)
	}
	if len(its) != 1 {
		t.Fatalf("want 1 itinerary, got %d", len(its))
	}
	if its[0].Circuit == nil || its[0].Circuit.ID != circuit.ID {
		t.Fatalf("itinerary missing joined circuit: %+v", its[0])
	}
	if km := its[0].TotalKm(); km != 85 {
		t.Fatalf("total km = %v, want 85", km)
	}

	one, err := repo.GetItinerary(ctx, it.ID)
	if err != nil {
		t.Fatalf("GetItinerary: %v", err)
	}
	if len(one.DayWisePlan) != 2 || one.DayWisePlan[1].Title != "Safari" {
		t.Fatalf("unexpected plan: %+v", one.DayWisePlan)
	}

	if _, err := repo.GetCircuit(ctx, uuid.New()); err != domain.ErrNotFound {
		t.Fatalf("missing circuit err = %v, want ErrNotFound", err)
	}
}

func TestRepo_MySQL_BookingLifecycle(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	b := domain.Booking{
		ID:              uuid.New(),
		CustomerName:    "Rina Das",
		CustomerContact: "+91-9000000000",
		Pax:             4,
		Days:            3,
		Circuit:         "Dooars Wilds",
		Theme:           "offbeat",
		Homestay: domain.HomestaySummary{
			Name:        "River Lodge",
			PriceType:   domain.PricingPerHead,
			PricePerDay: 1500,
			Total:       18000,
			Distance:    12,
			Rooms:       2,
		},
		Transport: &domain.TransportSummary{
			Pickup:    "NJP",
			Drop:      "NJP",
			CarType:   domain.CarSedan,
			RatePerKm: 18,
			TotalKm:   114,
			Total:     2052,
		},
		Itinerary: []domain.PlanDay{
			{Day: 1, Activity: "safari"},
			{Day: 2, Activity: "Leisure / Free Day"},
		},
		TotalCost: 20052,
		Status:    domain.BookingGenerated,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := repo.InsertBooking(ctx, b); err != nil {
		t.Fatalf("InsertBooking: %v", err)
	}

	got, err := repo.GetBooking(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBooking: %v", err)
	}
	if got.Status != domain.BookingGenerated || got.TotalCost != 20052 {
		t.Fatalf("unexpected booking: %+v", got)
	}
	if got.Transport == nil || got.Transport.TotalKm != 114 {
		t.Fatalf("transport did not round-trip: %+v", got.Transport)
	}
	if len(got.Itinerary) != 2 || got.Itinerary[1].Activity != "Leisure / Free Day" {
		t.Fatalf("plan did not round-trip: %+v", got.Itinerary)
	}

	if err := repo.UpdateBookingStatus(ctx, b.ID, domain.BookingBooked); err != nil {
		t.Fatalf("UpdateBookingStatus: %v", err)
	}
	got, err = repo.GetBooking(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBooking after update: %v", err)
	}
	if got.Status != domain.BookingBooked {
		t.Fatalf("status = %s, want Booked", got.Status)
	}

	if err := repo.UpdateBookingStatus(ctx, uuid.New(), domain.BookingCancelled); err != domain.ErrNotFound {
		t.Fatalf("missing booking err = %v, want ErrNotFound", err)
	}
}
