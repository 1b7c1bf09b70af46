package mysql

const insertCircuitSQL = `
INSERT INTO circuits
  (id, name, description, duration, theme, is_offbeat,
   categories, experiences, tags, featured_activities, locations,
   best_seasons, entry_points, transport, car_rates, images)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const updateCircuitLocationsSQL = `
UPDATE circuits SET locations = ? WHERE id = ?
`

const selectCircuitCols = `
  id, name, description, duration, theme, is_offbeat,
  categories, experiences, tags, featured_activities, locations,
  best_seasons, entry_points, transport, car_rates, images
`

// Stable ordering (newest first, id as tie-break): the planner's
// first-seen tie-break relies on it.
const listCircuitsSQL = `
SELECT ` + selectCircuitCols + `
FROM circuits
ORDER BY created_at DESC, id
`

const getCircuitSQL = `
SELECT ` + selectCircuitCols + `
FROM circuits
WHERE id = ?
`

const insertHomestaySQL = `
INSERT INTO homestays
  (id, circuit_id, homestay_name, place_name, pricing_type, price,
   distance, rooms, room_configs, contact, description, guest_types,
   addons, experiences, experience_distances, location_types,
   is_featured, images, reviews, average_rating, rating_count)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const updateHomestayReviewsSQL = `
UPDATE homestays
SET reviews = ?, average_rating = ?, rating_count = ?
WHERE id = ?
`

const selectHomestayCols = `
  id, circuit_id, homestay_name, place_name, pricing_type, price,
  distance, rooms, room_configs, contact, description, guest_types,
  addons, experiences, experience_distances, location_types,
  is_featured, images, reviews, average_rating, rating_count
`

const getHomestaySQL = `
SELECT ` + selectHomestayCols + `
FROM homestays
WHERE id = ?
`

const listHomestaysSQL = `
SELECT ` + selectHomestayCols + `
FROM homestays
ORDER BY is_featured DESC, created_at DESC, id
`

const homestaysByCircuitSQL = `
SELECT ` + selectHomestayCols + `
FROM homestays
WHERE circuit_id = ?
ORDER BY created_at DESC, id
`

const insertItinerarySQL = `
INSERT INTO itineraries
  (id, circuit_id, title, theme, category_tags, experience_tags,
   duration_days, pax_min, pax_max, budget_min, budget_max,
   transport_included, car_type, no_of_rooms, day_wise_plan,
   local_guide, is_featured, image)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// Itinerary reads join the owning circuit so the match scorer gets
// circuit tags/categories/experiences without a second round-trip.
const selectItineraryJoinCols = `
  i.id, i.circuit_id, i.title, i.theme, i.category_tags, i.experience_tags,
  i.duration_days, i.pax_min, i.pax_max, i.budget_min, i.budget_max,
  i.transport_included, i.car_type, i.no_of_rooms, i.day_wise_plan,
  i.local_guide, i.is_featured, i.image,
  c.id, c.name, c.description, c.duration, c.theme, c.is_offbeat,
  c.categories, c.experiences, c.tags, c.featured_activities, c.locations,
  c.best_seasons, c.entry_points, c.transport, c.car_rates, c.images
`

const listItinerariesSQL = `
SELECT ` + selectItineraryJoinCols + `
FROM itineraries i
LEFT JOIN circuits c ON c.id = i.circuit_id
ORDER BY i.created_at DESC, i.id
`

const itinerariesByCircuitSQL = `
SELECT ` + selectItineraryJoinCols + `
FROM itineraries i
LEFT JOIN circuits c ON c.id = i.circuit_id
WHERE i.circuit_id = ?
ORDER BY i.created_at DESC, i.id
`

const getItinerarySQL = `
SELECT ` + selectItineraryJoinCols + `
FROM itineraries i
LEFT JOIN circuits c ON c.id = i.circuit_id
WHERE i.id = ?
`

const insertBookingSQL = `
INSERT INTO bookings
  (id, customer_name, customer_contact, pax, days, circuit, theme,
   homestay, transport, itinerary, total_cost, status, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const updateBookingStatusSQL = `
UPDATE bookings SET status = ? WHERE id = ?
`

const getBookingSQL = `
SELECT
  id, customer_name, customer_contact, pax, days, circuit, theme,
  homestay, transport, itinerary, total_cost, status, created_at
FROM bookings
WHERE id = ?
`
