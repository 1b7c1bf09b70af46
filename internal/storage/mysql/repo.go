package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"circuit_travel/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// ---- JSON column helpers ----

func jsonVal(v any) any {
	b, err := json.Marshal(v)
	if err != nil || string(b) == "null" {
		return "[]"
	}
	return string(b)
}

func jsonObjVal(v any) any {
	b, err := json.Marshal(v)
	if err != nil || string(b) == "null" {
		return "{}"
	}
	return string(b)
}

func scanJSON(raw sql.NullString, dst any) {
	if raw.Valid && raw.String != "" {
		_ = json.Unmarshal([]byte(raw.String), dst)
	}
}

// ---- circuits ----

func (r *Repo) InsertCircuit(ctx context.Context, c domain.Circuit) error {
	_, err := r.db.ExecContext(ctx, insertCircuitSQL,
		c.ID.String(), c.Name, c.Description, c.Duration, c.Theme, c.IsOffbeat,
		jsonVal(c.Categories), jsonVal(c.Experiences), jsonVal(c.Tags),
		jsonVal(c.FeaturedActivities), jsonVal(c.Locations),
		jsonVal(c.BestSeasons), jsonVal(c.EntryPoints), jsonVal(c.Transport),
		jsonObjVal(c.CarRates), jsonVal(c.Images),
	)
	return err
}

func (r *Repo) AddCircuitLocation(ctx context.Context, id uuid.UUID, place string) error {
	c, err := r.GetCircuit(ctx, id)
	if err != nil {
		return err
	}
	for _, loc := range c.Locations {
		if loc == place {
			return nil
		}
	}
	locs := append(c.Locations, place)
	_, err = r.db.ExecContext(ctx, updateCircuitLocationsSQL, jsonVal(locs), id.String())
	return err
}

func scanCircuit(sc interface{ Scan(...any) error }) (domain.Circuit, error) {
	var (
		c                            domain.Circuit
		id                           string
		theme, duration              sql.NullString
		cats, exps, tags, acts, locs sql.NullString
		seasons, entries, trans      sql.NullString
		rates, images                sql.NullString
	)
	err := sc.Scan(
		&id, &c.Name, &c.Description, &duration, &theme, &c.IsOffbeat,
		&cats, &exps, &tags, &acts, &locs,
		&seasons, &entries, &trans, &rates, &images,
	)
	if err != nil {
		return domain.Circuit{}, err
	}
	c.ID, err = uuid.Parse(id)
	if err != nil {
		return domain.Circuit{}, fmt.Errorf("bad circuit id %q: %w", id, err)
	}
	c.Duration = duration.String
	c.Theme = theme.String
	scanJSON(cats, &c.Categories)
	scanJSON(exps, &c.Experiences)
	scanJSON(tags, &c.Tags)
	scanJSON(acts, &c.FeaturedActivities)
	scanJSON(locs, &c.Locations)
	scanJSON(seasons, &c.BestSeasons)
	scanJSON(entries, &c.EntryPoints)
	scanJSON(trans, &c.Transport)
	scanJSON(rates, &c.CarRates)
	scanJSON(images, &c.Images)
	return c, nil
}

func (r *Repo) GetCircuit(ctx context.Context, id uuid.UUID) (domain.Circuit, error) {
	c, err := scanCircuit(r.db.QueryRowContext(ctx, getCircuitSQL, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Circuit{}, domain.ErrNotFound
	}
	return c, err
}

// FindCircuits scans all circuits in stable order and applies the overlap
// filters in Go; the data sets involved are small and the JSON columns keep
// the SQL portable.
func (r *Repo) FindCircuits(ctx context.Context, f domain.CircuitFilter) ([]domain.Circuit, error) {
	rows, err := r.db.QueryContext(ctx, listCircuitsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Circuit
	for rows.Next() {
		c, err := scanCircuit(rows)
		if err != nil {
			return nil, err
		}
		if !matchesFilter(c, f) {
			continue
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func matchesFilter(c domain.Circuit, f domain.CircuitFilter) bool {
	if f.IsOffbeat != nil && c.IsOffbeat != *f.IsOffbeat {
		return false
	}
	if len(f.Categories) > 0 && !overlaps(c.Categories, f.Categories) {
		return false
	}
	if len(f.Experiences) > 0 && !overlaps(c.Experiences, f.Experiences) {
		return false
	}
	return true
}

func overlaps(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}

func (r *Repo) DistinctCategories(ctx context.Context) ([]string, error) {
	return r.distinctCircuitField(ctx, func(c domain.Circuit) []string { return c.Categories })
}

func (r *Repo) DistinctExperiences(ctx context.Context) ([]string, error) {
	return r.distinctCircuitField(ctx, func(c domain.Circuit) []string { return c.Experiences })
}

func (r *Repo) distinctCircuitField(ctx context.Context, pick func(domain.Circuit) []string) ([]string, error) {
	cs, err := r.FindCircuits(ctx, domain.CircuitFilter{})
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	var out []string
	for _, c := range cs {
		for _, v := range pick(c) {
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out, nil
}

// ---- homestays ----

func (r *Repo) InsertHomestay(ctx context.Context, h domain.Homestay) error {
	_, err := r.db.ExecContext(ctx, insertHomestaySQL,
		h.ID.String(), h.CircuitID.String(), h.Name, h.PlaceName,
		string(h.PricingType), h.Price, h.Distance, h.Rooms,
		jsonVal(h.RoomConfigs), h.Contact, h.Description,
		jsonVal(h.GuestTypes), jsonVal(h.Addons), jsonVal(h.Experiences),
		jsonObjVal(h.ExperienceDistances), jsonVal(h.LocationTypes),
		h.IsFeatured, jsonVal(h.Images), jsonVal(h.Reviews),
		h.AverageRating, h.RatingCount,
	)
	return err
}

func (r *Repo) UpdateHomestayReviews(ctx context.Context, h domain.Homestay) error {
	res, err := r.db.ExecContext(ctx, updateHomestayReviewsSQL,
		jsonVal(h.Reviews), h.AverageRating, h.RatingCount, h.ID.String())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanHomestay(sc interface{ Scan(...any) error }) (domain.Homestay, error) {
	var (
		h                    domain.Homestay
		id, circuitID        string
		pricing              string
		contact, description sql.NullString
		configs, guests      sql.NullString
		addons, exps         sql.NullString
		expDist, locTypes    sql.NullString
		images, reviews      sql.NullString
	)
	err := sc.Scan(
		&id, &circuitID, &h.Name, &h.PlaceName, &pricing, &h.Price,
		&h.Distance, &h.Rooms, &configs, &contact, &description,
		&guests, &addons, &exps, &expDist, &locTypes,
		&h.IsFeatured, &images, &reviews, &h.AverageRating, &h.RatingCount,
	)
	if err != nil {
		return domain.Homestay{}, err
	}
	if h.ID, err = uuid.Parse(id); err != nil {
		return domain.Homestay{}, fmt.Errorf("bad homestay id %q: %w", id, err)
	}
	if h.CircuitID, err = uuid.Parse(circuitID); err != nil {
		return domain.Homestay{}, fmt.Errorf("bad circuit id %q: %w", circuitID, err)
	}
	h.PricingType = domain.PricingType(pricing)
	h.Contact = contact.String
	h.Description = description.String
	scanJSON(configs, &h.RoomConfigs)
	scanJSON(guests, &h.GuestTypes)
	scanJSON(addons, &h.Addons)
	scanJSON(exps, &h.Experiences)
	scanJSON(expDist, &h.ExperienceDistances)
	scanJSON(locTypes, &h.LocationTypes)
	scanJSON(images, &h.Images)
	scanJSON(reviews, &h.Reviews)
	return h, nil
}

func (r *Repo) GetHomestay(ctx context.Context, id uuid.UUID) (domain.Homestay, error) {
	h, err := scanHomestay(r.db.QueryRowContext(ctx, getHomestaySQL, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Homestay{}, domain.ErrNotFound
	}
	return h, err
}

func (r *Repo) ListHomestays(ctx context.Context) ([]domain.Homestay, error) {
	return r.queryHomestays(ctx, listHomestaysSQL)
}

func (r *Repo) FindHomestaysByCircuit(ctx context.Context, circuitID uuid.UUID) ([]domain.Homestay, error) {
	return r.queryHomestays(ctx, homestaysByCircuitSQL, circuitID.String())
}

func (r *Repo) queryHomestays(ctx context.Context, q string, args ...any) ([]domain.Homestay, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Homestay
	for rows.Next() {
		h, err := scanHomestay(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// ---- itineraries ----

func (r *Repo) InsertItinerary(ctx context.Context, it domain.Itinerary) error {
	_, err := r.db.ExecContext(ctx, insertItinerarySQL,
		it.ID.String(), it.CircuitID.String(), it.Title, it.Theme,
		jsonVal(it.CategoryTags), jsonVal(it.ExperienceTags),
		it.DurationDays, it.PaxMin, it.PaxMax, it.BudgetMin, it.BudgetMax,
		it.TransportIncluded, string(it.CarType), it.Rooms,
		jsonVal(it.DayWisePlan), jsonObjVal(it.LocalGuide),
		it.IsFeatured, it.Image,
	)
	return err
}

func scanItinerary(sc interface{ Scan(...any) error }) (domain.ItineraryWithCircuit, error) {
	var (
		it               domain.ItineraryWithCircuit
		id, circuitID    string
		theme, image     sql.NullString
		carType          string
		catTags, expTags sql.NullString
		plan, guide      sql.NullString

		// joined circuit columns; all nullable on a dangling reference
		cID, cName, cDesc, cDur, cTheme          sql.NullString
		cOffbeat                                 sql.NullBool
		cCats, cExps, cTags, cActs, cLocs        sql.NullString
		cSeasons, cEntries, cTrans, cRates, cImg sql.NullString
	)
	err := sc.Scan(
		&id, &circuitID, &it.Title, &theme, &catTags, &expTags,
		&it.DurationDays, &it.PaxMin, &it.PaxMax, &it.BudgetMin, &it.BudgetMax,
		&it.TransportIncluded, &carType, &it.Rooms, &plan, &guide,
		&it.IsFeatured, &image,
		&cID, &cName, &cDesc, &cDur, &cTheme, &cOffbeat,
		&cCats, &cExps, &cTags, &cActs, &cLocs,
		&cSeasons, &cEntries, &cTrans, &cRates, &cImg,
	)
	if err != nil {
		return domain.ItineraryWithCircuit{}, err
	}
	if it.ID, err = uuid.Parse(id); err != nil {
		return domain.ItineraryWithCircuit{}, fmt.Errorf("bad itinerary id %q: %w", id, err)
	}
	if it.CircuitID, err = uuid.Parse(circuitID); err != nil {
		return domain.ItineraryWithCircuit{}, fmt.Errorf("bad circuit id %q: %w", circuitID, err)
	}
	it.Theme = theme.String
	it.Image = image.String
	it.CarType = domain.CarType(carType)
	scanJSON(catTags, &it.CategoryTags)
	scanJSON(expTags, &it.ExperienceTags)
	scanJSON(plan, &it.DayWisePlan)
	scanJSON(guide, &it.LocalGuide)

	if cID.Valid {
		c := domain.Circuit{
			Name:        cName.String,
			Description: cDesc.String,
			Duration:    cDur.String,
			Theme:       cTheme.String,
			IsOffbeat:   cOffbeat.Bool,
		}
		if c.ID, err = uuid.Parse(cID.String); err != nil {
			return domain.ItineraryWithCircuit{}, fmt.Errorf("bad joined circuit id %q: %w", cID.String, err)
		}
		scanJSON(cCats, &c.Categories)
		scanJSON(cExps, &c.Experiences)
		scanJSON(cTags, &c.Tags)
		scanJSON(cActs, &c.FeaturedActivities)
		scanJSON(cLocs, &c.Locations)
		scanJSON(cSeasons, &c.BestSeasons)
		scanJSON(cEntries, &c.EntryPoints)
		scanJSON(cTrans, &c.Transport)
		scanJSON(cRates, &c.CarRates)
		scanJSON(cImg, &c.Images)
		it.Circuit = &c
	}
	return it, nil
}

func (r *Repo) GetItinerary(ctx context.Context, id uuid.UUID) (domain.ItineraryWithCircuit, error) {
	it, err := scanItinerary(r.db.QueryRowContext(ctx, getItinerarySQL, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ItineraryWithCircuit{}, domain.ErrNotFound
	}
	return it, err
}

func (r *Repo) FindItineraries(ctx context.Context, f domain.ItineraryFilter) ([]domain.ItineraryWithCircuit, error) {
	q := listItinerariesSQL
	var args []any
	if f.CircuitID != nil {
		q = itinerariesByCircuitSQL
		args = append(args, f.CircuitID.String())
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ItineraryWithCircuit
	for rows.Next() {
		it, err := scanItinerary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ---- bookings ----

func (r *Repo) InsertBooking(ctx context.Context, b domain.Booking) error {
	transport := any(nil)
	if b.Transport != nil {
		transport = jsonObjVal(b.Transport)
	}
	_, err := r.db.ExecContext(ctx, insertBookingSQL,
		b.ID.String(), b.CustomerName, b.CustomerContact, b.Pax, b.Days,
		b.Circuit, b.Theme, jsonObjVal(b.Homestay), transport,
		jsonVal(b.Itinerary), b.TotalCost, string(b.Status), b.CreatedAt,
	)
	return err
}

func (r *Repo) UpdateBookingStatus(ctx context.Context, id uuid.UUID, st domain.BookingStatus) error {
	res, err := r.db.ExecContext(ctx, updateBookingStatusSQL, string(st), id.String())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) GetBooking(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	var (
		b         domain.Booking
		bid       string
		theme     sql.NullString
		homestay  sql.NullString
		transport sql.NullString
		plan      sql.NullString
		status    string
	)
	err := r.db.QueryRowContext(ctx, getBookingSQL, id.String()).Scan(
		&bid, &b.CustomerName, &b.CustomerContact, &b.Pax, &b.Days,
		&b.Circuit, &theme, &homestay, &transport, &plan,
		&b.TotalCost, &status, &b.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Booking{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Booking{}, err
	}
	if b.ID, err = uuid.Parse(bid); err != nil {
		return domain.Booking{}, fmt.Errorf("bad booking id %q: %w", bid, err)
	}
	b.Theme = theme.String
	b.Status = domain.BookingStatus(status)
	scanJSON(homestay, &b.Homestay)
	if transport.Valid && transport.String != "" {
		var t domain.TransportSummary
		if err := json.Unmarshal([]byte(transport.String), &t); err == nil {
			b.Transport = &t
		}
	}
	scanJSON(plan, &b.Itinerary)
	return b, nil
}
