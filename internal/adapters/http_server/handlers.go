package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"circuit_travel/internal/adapters/observability"
	"circuit_travel/internal/app"
	"circuit_travel/internal/domain"
)

type Handlers struct {
	Q       *app.QueryService
	C       *app.CommandService
	Match   *app.MatchService
	Planner *app.PlannerService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1/circuits", func(r chi.Router) {
		r.Post("/", h.createCircuit)
		r.Get("/", h.listCircuits)
		r.Post("/match", h.matchCircuits)
		r.Get("/categories", h.listCategories)
		r.Get("/experiences", h.listExperiences)
		r.Get("/themes", h.listThemes)
		r.Get("/{id}", h.getCircuit)
	})

	s.mux.Route("/v1/homestays", func(r chi.Router) {
		r.Post("/", h.createHomestay)
		r.Get("/", h.listHomestays)
		r.Get("/{id}", h.getHomestay)
		r.Get("/{id}/detail", h.getHomestayDetail)
		r.Post("/{id}/reviews", h.addHomestayReview)
	})

	s.mux.Route("/v1/itineraries", func(r chi.Router) {
		r.Post("/", h.createItinerary)
		r.Get("/", h.listItineraries)
		r.Post("/match", h.matchItineraries)
		r.Get("/{id}", h.getItinerary)
	})

	s.mux.Post("/v1/plans/generate", h.generatePlan)
	s.mux.Post("/v1/bookings", h.createBooking)
	s.mux.Get("/v1/bookings/{id}", h.getBooking)
	s.mux.Patch("/v1/bookings/{id}/status", h.updateBookingStatus)
}

// ---- shared plumbing ----

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain error kinds onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeProblem(w, http.StatusBadRequest, "Invalid Request", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrNoCircuitMatch), errors.Is(err, domain.ErrNoHomestayAvailable):
		writeProblem(w, http.StatusNotFound, "No Match", err.Error())
	case errors.Is(err, domain.ErrBudgetExceeded):
		writeProblem(w, http.StatusUnprocessableEntity, "Budget Exceeded", err.Error())
	default:
		log.Error().Err(err).Msg("internal error")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "unexpected error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeProblem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		} else {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", "request body must be valid JSON")
		}
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeWithETag short-circuits to 304 when the client already holds the
// current version.
func writeWithETag(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

// ---- circuits ----

func (h *Handlers) createCircuit(w http.ResponseWriter, r *http.Request) {
	var in app.CreateCircuitInput
	if !decode(w, r, &in) {
		return
	}
	c, err := h.C.CreateCircuit(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handlers) listCircuits(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Q.ListCircuits(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (h *Handlers) getCircuit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.Q.GetCircuit(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeWithETag(w, r, c)
}

type matchCircuitsRequest struct {
	Categories app.FlexStrings `json:"categories"`
}

func (h *Handlers) matchCircuits(w http.ResponseWriter, r *http.Request) {
	var in matchCircuitsRequest
	if !decode(w, r, &in) {
		return
	}
	cs, err := h.Q.MatchCircuitsByCategories(r.Context(), in.Categories)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": cs})
}

func (h *Handlers) listCategories(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.DistinctCategories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) listExperiences(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.DistinctExperiences(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) listThemes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Q.Themes())
}

// ---- homestays ----

func (h *Handlers) createHomestay(w http.ResponseWriter, r *http.Request) {
	var in app.CreateHomestayInput
	if !decode(w, r, &in) {
		return
	}
	hs, err := h.C.CreateHomestay(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, hs)
}

func (h *Handlers) listHomestays(w http.ResponseWriter, r *http.Request) {
	hs, err := h.Q.ListHomestays(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hs)
}

func (h *Handlers) getHomestay(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	hs, err := h.Q.GetHomestay(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeWithETag(w, r, hs)
}

func (h *Handlers) getHomestayDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	d, err := h.Q.GetHomestayDetail(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeWithETag(w, r, d)
}

func (h *Handlers) addHomestayReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in app.ReviewInput
	if !decode(w, r, &in) {
		return
	}
	avg, count, err := h.C.AddHomestayReview(r.Context(), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":       "Review added",
		"averageRating": avg,
		"ratingCount":   count,
	})
}

// ---- itineraries ----

func (h *Handlers) createItinerary(w http.ResponseWriter, r *http.Request) {
	var in app.CreateItineraryInput
	if !decode(w, r, &in) {
		return
	}
	it, err := h.C.CreateItinerary(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (h *Handlers) listItineraries(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("circuitId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid Request", "circuitId must be a valid UUID")
			return
		}
		its, err := h.Q.ListItinerariesByCircuit(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, its)
		return
	}

	its, err := h.Q.ListItineraries(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, its)
}

func (h *Handlers) getItinerary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	it, err := h.Q.GetItinerary(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeWithETag(w, r, it)
}

type matchItinerariesRequest struct {
	CircuitID   string          `json:"circuitId"`
	CircuitName string          `json:"circuitName"`
	Tags        app.FlexStrings `json:"tags"`
	Experiences app.FlexStrings `json:"experiences"`
	Theme       string          `json:"theme"`
	WithCar     bool            `json:"withCar"`
	Days        *int            `json:"days"`
	Budget      *float64        `json:"budget"`
	Pax         *int            `json:"pax"`
	NoOfRooms   *int            `json:"noOfRooms"`
}

func (h *Handlers) matchItineraries(w http.ResponseWriter, r *http.Request) {
	var in matchItinerariesRequest
	if !decode(w, r, &in) {
		return
	}

	q := domain.MatchQuery{
		CircuitName: in.CircuitName,
		Tags:        in.Tags,
		Experiences: in.Experiences,
		Theme:       in.Theme,
		WithCar:     in.WithCar,
		Days:        in.Days,
		Budget:      in.Budget,
		Pax:         in.Pax,
		Rooms:       in.NoOfRooms,
	}
	if in.CircuitID != "" {
		id, err := uuid.Parse(in.CircuitID)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid Request", "circuitId must be a valid UUID")
			return
		}
		q.CircuitID = &id
	}

	matched, err := h.Match.Match(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	observability.ObserveMatch(len(matched))
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "matchedItineraries": matched})
}

// ---- plan generation ----

type generateRequest struct {
	Pax         int             `json:"pax"`
	Days        int             `json:"days"`
	Tags        app.FlexStrings `json:"tags"`
	Experiences app.FlexStrings `json:"experiences"`
	Theme       string          `json:"theme"`
	WithCar     bool            `json:"withCar"`
	CarType     string          `json:"carType"`
	Pickup      string          `json:"pickup"`
	Drop        string          `json:"drop"`
	Budget      float64         `json:"budget"`
}

func (h *Handlers) generatePlan(w http.ResponseWriter, r *http.Request) {
	var in generateRequest
	if !decode(w, r, &in) {
		return
	}

	plan, err := h.Planner.Generate(r.Context(), domain.GenerationRequest{
		Pax:         in.Pax,
		Days:        in.Days,
		Tags:        in.Tags,
		Experiences: in.Experiences,
		Theme:       in.Theme,
		WithCar:     in.WithCar,
		CarType:     domain.CarType(in.CarType),
		Pickup:      in.Pickup,
		Drop:        in.Drop,
		Budget:      in.Budget,
	})
	if err != nil {
		observability.ObservePlanGeneration(planOutcome(err))
		writeError(w, err)
		return
	}
	observability.ObservePlanGeneration("ok")
	writeJSON(w, http.StatusOK, plan)
}

func planOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoCircuitMatch):
		return "no_circuit"
	case errors.Is(err, domain.ErrNoHomestayAvailable):
		return "no_homestay"
	case errors.Is(err, domain.ErrBudgetExceeded):
		return "over_budget"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}

// ---- bookings ----

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	var in app.CreateBookingInput
	if !decode(w, r, &in) {
		return
	}
	b, err := h.C.CreateBooking(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *Handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b, err := h.Q.GetBooking(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeWithETag(w, r, b)
}

type bookingStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handlers) updateBookingStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in bookingStatusRequest
	if !decode(w, r, &in) {
		return
	}
	if err := h.C.UpdateBookingStatus(r.Context(), id, in.Status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "status updated", "status": in.Status})
}
