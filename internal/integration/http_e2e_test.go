//go:build integration || !unit

package integration

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	server "circuit_travel/internal/adapters/http_server"
	redisad "circuit_travel/internal/adapters/redis"
	"circuit_travel/internal/app"
	"circuit_travel/internal/domain"
	"circuit_travel/internal/shared"
	mysqlrepo "circuit_travel/internal/storage/mysql"
)

// ---------- helpers ----------

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

// startAPI wires the full stack (MySQL + miniredis cache + chi server)
// behind an httptest server.
func startAPI(t *testing.T) *httptest.Server {
	t.Helper()

	db := startMySQL(t)
	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	cfg := shared.Load()

	repo := mysqlrepo.New(db)
	q := app.NewQueryService(repo, repo, repo, repo, cache, cfg.CacheTTL)
	c := app.NewCommandService(repo, repo, repo, repo, cache)
	match := app.NewMatchService(repo)
	planner := app.NewPlannerService(repo, repo)

	srv := server.New(0, 0) // rate limiting off in tests
	srv.MountHandlers(&server.Handlers{Q: q, C: c, Match: match, Planner: planner})

	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body string, out any) int {
	t.Helper()
	res, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer res.Body.Close()
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return res.StatusCode
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	res, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer res.Body.Close()
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return res.StatusCode
}

// ---------- the test ----------

func TestHTTP_EndToEnd_PlanAndBooking(t *testing.T) {
	ts := startAPI(t)

	// Create a circuit; categories arrive as a comma string on purpose.
	var circuit domain.Circuit
	status := postJSON(t, ts.URL+"/v1/circuits", `{
		"name": "Dooars Wilds",
		"description": "Forests and rivers",
		"duration": "3-5 days",
		"theme": "offbeat",
		"isOffbeat": true,
		"categories": "Wildlife, Nature",
		"experiences": ["safari", "river_rafting"],
		"tags": ["forest", "offbeat"],
		"locations": ["Lataguri"],
		"carPriceSedan": 18
	}`, &circuit)
	if status != http.StatusCreated {
		t.Fatalf("create circuit status %d", status)
	}
	if circuit.Categories[0] != "wildlife" {
		t.Fatalf("categories not normalized: %v", circuit.Categories)
	}

	var stay domain.Homestay
	status = postJSON(t, ts.URL+"/v1/homestays", fmt.Sprintf(`{
		"circuitId": %q,
		"homestayName": "River Lodge",
		"placeName": "Lataguri",
		"pricingType": "perhead",
		"price": 1000,
		"distance": 12,
		"contact": "+91-9000000001",
		"experiences": ["safari"],
		"roomConfigs": [{"label": "double", "capacity": 2, "count": 4}]
	}`, circuit.ID), &stay)
	if status != http.StatusCreated {
		t.Fatalf("create homestay status %d", status)
	}
	if stay.Rooms != 4 {
		t.Fatalf("rooms not derived from configs: %d", stay.Rooms)
	}

	var it domain.Itinerary
	status = postJSON(t, ts.URL+"/v1/itineraries", fmt.Sprintf(`{
		"circuitId": %q,
		"title": "Wild Weekend",
		"theme": "offbeat",
		"categoryTags": ["Wildlife"],
		"experienceTags": ["safari"],
		"durationDays": 3,
		"paxMin": 2, "paxMax": 6,
		"budgetMin": 8000, "budgetMax": 18000,
		"transportIncluded": true,
		"carType": "sedan",
		"dayWisePlan": [
			{"day": 1, "title": "Arrival", "travelDistanceKm": 60},
			{"day": 2, "title": "Safari", "travelDistanceKm": 25}
		]
	}`, circuit.ID), &it)
	if status != http.StatusCreated {
		t.Fatalf("create itinerary status %d", status)
	}

	// Listing twice exercises the cache-aside path.
	var circuits []domain.Circuit
	if st := getJSON(t, ts.URL+"/v1/circuits", &circuits); st != http.StatusOK {
		t.Fatalf("list circuits status %d", st)
	}
	if st := getJSON(t, ts.URL+"/v1/circuits", &circuits); st != http.StatusOK || len(circuits) != 1 {
		t.Fatalf("cached list circuits status %d len %d", st, len(circuits))
	}

	// Match against the stored itinerary.
	var matchRes struct {
		Success bool                     `json:"success"`
		Matched []domain.ScoredItinerary `json:"matchedItineraries"`
	}
	status = postJSON(t, ts.URL+"/v1/itineraries/match", `{
		"tags": ["forest"],
		"experiences": ["safari"],
		"theme": "offbeat",
		"days": 3,
		"budget": 15000
	}`, &matchRes)
	if status != http.StatusOK || !matchRes.Success {
		t.Fatalf("match status %d success %v", status, matchRes.Success)
	}
	if len(matchRes.Matched) != 1 || matchRes.Matched[0].Score < 3 {
		t.Fatalf("unexpected match result: %+v", matchRes.Matched)
	}
	if matchRes.Matched[0].TotalItineraryKm != 85 {
		t.Fatalf("total km = %v", matchRes.Matched[0].TotalItineraryKm)
	}

	// Generate a plan: 4 pax, 3 days, perhead 1000 => stay 12000;
	// car 12*2+30*3=114 km at sedan 18 => 2052.
	var plan domain.GeneratedPlan
	status = postJSON(t, ts.URL+"/v1/plans/generate", `{
		"pax": 4, "days": 3,
		"tags": ["wildlife"],
		"experiences": ["safari"],
		"theme": "offbeat",
		"withCar": true, "carType": "sedan",
		"pickup": "NJP", "drop": "NJP",
		"budget": 20000
	}`, &plan)
	if status != http.StatusOK {
		t.Fatalf("generate status %d", status)
	}
	if plan.Circuit != "Dooars Wilds" || plan.TotalCost != 14052 {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	if plan.Transport == nil || plan.Transport.TotalKm != 114 {
		t.Fatalf("unexpected transport: %+v", plan.Transport)
	}

	// Too small a budget must not produce a plan.
	if st := postJSON(t, ts.URL+"/v1/plans/generate", `{
		"pax": 4, "days": 3,
		"tags": ["wildlife"],
		"experiences": ["safari"],
		"theme": "offbeat",
		"budget": 1000
	}`, nil); st != http.StatusUnprocessableEntity {
		t.Fatalf("over-budget status %d", st)
	}

	// Book the generated plan, then confirm it.
	planJSON, err := json.Marshal(plan)
	if err != nil {
		t.Fatalf("marshal plan: %v", err)
	}
	var booking domain.Booking
	status = postJSON(t, ts.URL+"/v1/bookings", fmt.Sprintf(`{
		"customerName": "Rina Das",
		"customerContact": "+91-9000000000",
		"plan": %s
	}`, planJSON), &booking)
	if status != http.StatusCreated || booking.Status != domain.BookingGenerated {
		t.Fatalf("create booking status %d: %+v", status, booking)
	}

	req, err := http.NewRequest(http.MethodPatch,
		ts.URL+"/v1/bookings/"+booking.ID.String()+"/status",
		bytes.NewBufferString(`{"status": "Booked"}`))
	if err != nil {
		t.Fatalf("build PATCH: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PATCH status: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("update status code %d", res.StatusCode)
	}

	var got domain.Booking
	if st := getJSON(t, ts.URL+"/v1/bookings/"+booking.ID.String(), &got); st != http.StatusOK {
		t.Fatalf("get booking status %d", st)
	}
	if got.Status != domain.BookingBooked {
		t.Fatalf("status = %s, want Booked", got.Status)
	}
}

func TestHTTP_EndToEnd_ETagRevalidation(t *testing.T) {
	ts := startAPI(t)

	var circuit domain.Circuit
	status := postJSON(t, ts.URL+"/v1/circuits", `{
		"name": "Heritage Hills",
		"description": "Hill towns and monasteries",
		"categories": ["Heritage"],
		"experiences": ["monastery_visit"],
		"tags": ["hills"]
	}`, &circuit)
	if status != http.StatusCreated {
		t.Fatalf("create circuit status %d", status)
	}

	url := ts.URL + "/v1/circuits/" + circuit.ID.String()
	res, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	res.Body.Close()
	etag := res.Header.Get("ETag")
	if res.StatusCode != http.StatusOK || etag == "" {
		t.Fatalf("status %d etag %q", res.StatusCode, etag)
	}

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("build GET: %v", err)
	}
	req.Header.Set("If-None-Match", etag)
	res, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("conditional GET: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNotModified {
		t.Fatalf("conditional status %d, want 304", res.StatusCode)
	}
}
