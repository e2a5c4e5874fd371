package planner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fleetdispatch/fleetdispatch/internal/api/models"
	"github.com/fleetdispatch/fleetdispatch/internal/geocoding"
	"github.com/fleetdispatch/fleetdispatch/internal/route"
	"github.com/fleetdispatch/fleetdispatch/internal/routing"
)

// Service drives planning drafts. Geocoding and routing calls run
// outside the draft lock; results are applied only if the draft state
// they were computed for is still current.
type Service struct {
	store          *Store
	geocoder       *geocoding.Service
	router         *routing.Service
	routes         *route.Service
	plotterFactory PlotterFactory
	logger         zerolog.Logger
}

// Config holds the planner service dependencies.
type Config struct {
	Store    *Store
	Geocoder *geocoding.Service
	Router   *routing.Service
	Routes   *route.Service

	// PlotterFactory constructs the per-draft map handle. Nil means
	// drafts plot to a NopPlotter.
	PlotterFactory PlotterFactory

	Logger zerolog.Logger
}

// NewService creates a planner service.
func NewService(cfg Config) *Service {
	factory := cfg.PlotterFactory
	if factory == nil {
		factory = func() Plotter { return NopPlotter{} }
	}

	return &Service{
		store:          cfg.Store,
		geocoder:       cfg.Geocoder,
		router:         cfg.Router,
		routes:         cfg.Routes,
		plotterFactory: factory,
		logger:         cfg.Logger.With().Str("component", "planner").Logger(),
	}
}

// NewDraft creates a draft with exactly two empty slots.
func (s *Service) NewDraft(userID string) *models.Draft {
	now := time.Now()
	d := &Draft{
		ID:        "dft_" + uuid.New().String()[:22],
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i := 0; i < MinSlots; i++ {
		d.addSlotLocked()
	}

	s.store.Put(d)
	return s.snapshot(d)
}

// GetDraft returns the current state of a draft.
func (s *Service) GetDraft(userID, draftID string) (*models.Draft, error) {
	d, err := s.store.Get(userID, draftID)
	if err != nil {
		return nil, err
	}
	return s.snapshot(d), nil
}

// CloseDraft removes a draft and disposes its plotter.
func (s *Service) CloseDraft(userID, draftID string) error {
	return s.store.Delete(userID, draftID)
}

// AddSlot appends an empty slot. There is no upper bound.
func (s *Service) AddSlot(userID, draftID string) (*models.Draft, error) {
	d, err := s.store.Get(userID, draftID)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.addSlotLocked()
	d.UpdatedAt = time.Now()
	d.mu.Unlock()

	return s.snapshot(d), nil
}

// RemoveSlot removes a slot. A draft never drops below MinSlots.
// Removing a resolved slot recomputes the route from the remaining
// resolved slots.
func (s *Service) RemoveSlot(ctx context.Context, userID, draftID, slotID string) (*models.Draft, error) {
	d, err := s.store.Get(userID, draftID)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	if len(d.Slots) <= MinSlots {
		d.mu.Unlock()
		return nil, ErrMinSlots
	}

	idx := -1
	for i, slot := range d.Slots {
		if slot.ID == slotID {
			idx = i
			break
		}
	}
	if idx == -1 {
		d.mu.Unlock()
		return nil, ErrSlotNotFound
	}

	wasResolved := d.Slots[idx].Resolved()
	d.Slots = append(d.Slots[:idx], d.Slots[idx+1:]...)
	d.UpdatedAt = time.Now()
	d.mu.Unlock()

	if wasResolved {
		if err := s.recompute(ctx, d); err != nil {
			return nil, err
		}
	}

	return s.snapshot(d), nil
}

// UpdateQuery updates a slot's free-text query. Queries shorter than
// three characters clear the suggestion list without a lookup. A lookup
// result is discarded if the slot's query changed while it was in
// flight, so a late response never clobbers fresher suggestions.
func (s *Service) UpdateQuery(ctx context.Context, userID, draftID, slotID, query string) (*models.Draft, error) {
	d, err := s.store.Get(userID, draftID)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(query)

	d.mu.Lock()
	slot := d.slot(slotID)
	if slot == nil {
		d.mu.Unlock()
		return nil, ErrSlotNotFound
	}

	slot.Query = query
	d.UpdatedAt = time.Now()

	if len([]rune(trimmed)) < geocoding.MinQueryLength {
		d.Suggestions = nil
		d.mu.Unlock()
		return s.snapshot(d), nil
	}
	dispatched := slot.Query
	d.mu.Unlock()

	locations, err := s.geocoder.Search(ctx, trimmed)
	if err != nil {
		// Prior suggestions stay as they were; the caller surfaces
		// the failure.
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	slot = d.slot(slotID)
	if slot == nil || slot.Query != dispatched {
		// Stale response: the slot moved on while we were looking up.
		return s.snapshotLocked(d), nil
	}

	suggestions := make([]Suggestion, 0, len(locations))
	for _, loc := range locations {
		suggestions = append(suggestions, Suggestion{
			SlotID:      slotID,
			DisplayName: loc.DisplayName,
			Lat:         loc.Lat,
			Lon:         loc.Lon,
		})
	}
	d.Suggestions = suggestions

	return s.snapshotLocked(d), nil
}

// PickSuggestion resolves a slot to the chosen candidate, clears the
// suggestion list, and recomputes the route when at least two slots are
// resolved. Other slots are never touched.
func (s *Service) PickSuggestion(ctx context.Context, userID, draftID, slotID string, pick models.SlotPickRequest) (*models.Draft, error) {
	d, err := s.store.Get(userID, draftID)
	if err != nil {
		return nil, err
	}

	if err := s.applyPick(ctx, d, slotID, pick.DisplayName, pick.Lat, pick.Lon); err != nil {
		return nil, err
	}
	return s.snapshot(d), nil
}

// StructuredSearch geocodes structured address fields for a slot. The
// first candidate is applied exactly as a pick would be; an empty result
// leaves the slot untouched and reports ErrNoResults.
func (s *Service) StructuredSearch(ctx context.Context, userID, draftID, slotID string, query geocoding.StructuredQuery) (*models.Draft, error) {
	d, err := s.store.Get(userID, draftID)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	if d.slot(slotID) == nil {
		d.mu.Unlock()
		return nil, ErrSlotNotFound
	}
	d.mu.Unlock()

	locations, err := s.geocoder.StructuredSearch(ctx, query)
	if errors.Is(err, geocoding.ErrNoResults) {
		return nil, ErrNoResults
	}
	if err != nil {
		return nil, err
	}

	first := locations[0]
	if err := s.applyPick(ctx, d, slotID, first.DisplayName, first.Lat, first.Lon); err != nil {
		return nil, err
	}
	return s.snapshot(d), nil
}

// SelectVehicle assigns a vehicle to the draft and loads its route
// history in a single fetch. An empty license plate clears the
// selection and the route list without any lookup.
func (s *Service) SelectVehicle(ctx context.Context, userID, draftID, licensePlate string) (*models.Draft, error) {
	d, err := s.store.Get(userID, draftID)
	if err != nil {
		return nil, err
	}

	if licensePlate == "" {
		d.mu.Lock()
		d.LicensePlate = ""
		d.Routes = nil
		d.UpdatedAt = time.Now()
		d.mu.Unlock()
		return s.snapshot(d), nil
	}

	paged, err := s.routes.ListByPlate(ctx, licensePlate, 1)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.LicensePlate = licensePlate
	d.Routes = paged.Items
	d.UpdatedAt = time.Now()
	d.mu.Unlock()

	return s.snapshot(d), nil
}

// AttachToVehicle saves the drafted route to the selected vehicle. The
// payload carries the latest metrics and the resolved waypoints in slot
// order with 1-based sequences. On success the vehicle's route list is
// re-fetched.
func (s *Service) AttachToVehicle(ctx context.Context, userID, draftID string) (*models.Draft, error) {
	d, err := s.store.Get(userID, draftID)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	if d.LicensePlate == "" {
		d.mu.Unlock()
		return nil, ErrNoVehicleSelected
	}
	if d.Metrics == nil {
		d.mu.Unlock()
		return nil, ErrNoRouteComputed
	}

	resolved := d.resolvedSlots()
	req := &models.RouteCreateRequest{
		LicensePlate:     d.LicensePlate,
		DistanceKm:       d.Metrics.DistanceKm,
		EstimatedTimeSec: d.Metrics.DurationSeconds,
		Waypoints:        make([]models.Waypoint, len(resolved)),
	}
	for i, slot := range resolved {
		req.Waypoints[i] = models.Waypoint{
			Name:      slot.DisplayName,
			Latitude:  slot.Coords.Lat,
			Longitude: slot.Coords.Lon,
			Sequence:  i + 1,
		}
	}
	plate := d.LicensePlate
	d.mu.Unlock()

	if _, err := s.routes.Create(ctx, userID, req); err != nil {
		return nil, fmt.Errorf("attaching plan to vehicle: %w", err)
	}

	paged, err := s.routes.ListByPlate(ctx, plate, 1)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.Routes = paged.Items
	d.UpdatedAt = time.Now()
	d.mu.Unlock()

	return s.snapshot(d), nil
}

// ShowRoute plots a stored route on the draft's map. Draft slots are
// not touched.
func (s *Service) ShowRoute(ctx context.Context, userID, draftID, routeID string) (*models.Draft, error) {
	d, err := s.store.Get(userID, draftID)
	if err != nil {
		return nil, err
	}

	rt, err := s.routes.Get(ctx, routeID)
	if err != nil {
		return nil, err
	}

	waypoints := make([]routing.Coordinate, len(rt.Waypoints))
	for i, wp := range rt.Waypoints {
		waypoints[i] = routing.Coordinate{Lat: wp.Latitude, Lon: wp.Longitude}
	}

	d.mu.Lock()
	s.plotterLocked(d).SetWaypoints(waypoints)
	if len(waypoints) > 0 {
		center := centerOf(waypoints)
		d.MapCenter = &center
	}
	d.UpdatedAt = time.Now()
	d.mu.Unlock()

	return s.snapshot(d), nil
}

// applyPick resolves a slot and triggers a recompute when at least two
// slots are resolved.
func (s *Service) applyPick(ctx context.Context, d *Draft, slotID, displayName string, lat, lon float64) error {
	d.mu.Lock()
	slot := d.slot(slotID)
	if slot == nil {
		d.mu.Unlock()
		return ErrSlotNotFound
	}

	slot.Coords = &routing.Coordinate{Lat: lat, Lon: lon}
	slot.DisplayName = displayName
	slot.Query = displayName
	d.Suggestions = nil
	d.UpdatedAt = time.Now()
	resolved := len(d.resolvedCoords())
	d.mu.Unlock()

	if resolved >= 1 {
		return s.recompute(ctx, d)
	}
	return nil
}

// recompute refreshes the draft's metrics and map from the currently
// resolved slots. With fewer than two resolved slots no routing call is
// made; a single resolved slot only recenters the map.
func (s *Service) recompute(ctx context.Context, d *Draft) error {
	d.mu.Lock()
	coords := d.resolvedCoords()
	d.mu.Unlock()

	switch len(coords) {
	case 0:
		return nil

	case 1:
		d.mu.Lock()
		d.MapCenter = &coords[0]
		d.Metrics = nil
		s.plotterLocked(d).SetWaypoints(coords)
		d.mu.Unlock()
		return nil
	}

	resp, err := s.router.GetDirections(ctx, routing.DirectionsRequest{Waypoints: coords})
	if err != nil {
		return err
	}
	if len(resp.Routes) == 0 {
		return routing.ErrNoRouteFound
	}
	best := resp.Routes[0]

	d.mu.Lock()
	defer d.mu.Unlock()

	// Apply only if the resolved set is unchanged since dispatch.
	if !coordsEqual(coords, d.resolvedCoords()) {
		return nil
	}

	d.Metrics = &RouteMetrics{
		DistanceKm:      round2(best.DistanceMeters / 1000),
		DurationSeconds: int(math.Round(best.DurationSeconds)),
		Geometry:        best.Geometry,
	}
	center := centerOf(coords)
	d.MapCenter = &center
	s.plotterLocked(d).SetWaypoints(coords)

	return nil
}

// plotterLocked returns the draft's plotter, constructing it on first
// use. Callers must hold the draft lock.
func (s *Service) plotterLocked(d *Draft) Plotter {
	if d.disposed {
		return NopPlotter{}
	}
	if d.plotter == nil {
		d.plotter = s.plotterFactory()
	}
	return d.plotter
}

func (d *Draft) addSlotLocked() {
	d.slotSeq++
	d.Slots = append(d.Slots, &Slot{ID: "slt_" + strconv.Itoa(d.slotSeq)})
}

func (s *Service) snapshot(d *Draft) *models.Draft {
	d.mu.Lock()
	defer d.mu.Unlock()
	return s.snapshotLocked(d)
}

func (s *Service) snapshotLocked(d *Draft) *models.Draft {
	out := &models.Draft{
		ID:           d.ID,
		LicensePlate: d.LicensePlate,
		Slots:        make([]models.DraftSlot, len(d.Slots)),
		Suggestions:  make([]models.DraftSuggestion, len(d.Suggestions)),
		Routes:       d.Routes,
		CreatedAt:    models.Timestamp(d.CreatedAt),
	}

	for i, slot := range d.Slots {
		out.Slots[i] = models.DraftSlot{
			ID:          slot.ID,
			Query:       slot.Query,
			DisplayName: slot.DisplayName,
		}
		if slot.Coords != nil {
			out.Slots[i].Point = &models.Point{Lat: slot.Coords.Lat, Lon: slot.Coords.Lon}
		}
	}

	for i, sug := range d.Suggestions {
		out.Suggestions[i] = models.DraftSuggestion{
			SlotID:      sug.SlotID,
			DisplayName: sug.DisplayName,
			Lat:         sug.Lat,
			Lon:         sug.Lon,
		}
	}

	if d.Metrics != nil {
		m := &models.DraftMetrics{
			DistanceKm:      d.Metrics.DistanceKm,
			DurationSeconds: d.Metrics.DurationSeconds,
			Geometry:        make([]models.Point, len(d.Metrics.Geometry)),
		}
		for i, c := range d.Metrics.Geometry {
			m.Geometry[i] = models.Point{Lat: c.Lat, Lon: c.Lon}
		}
		out.Metrics = m
	}

	if d.MapCenter != nil {
		out.MapCenter = &models.Point{Lat: d.MapCenter.Lat, Lon: d.MapCenter.Lon}
	}

	return out
}

func centerOf(coords []routing.Coordinate) routing.Coordinate {
	var lat, lon float64
	for _, c := range coords {
		lat += c.Lat
		lon += c.Lon
	}
	n := float64(len(coords))
	return routing.Coordinate{Lat: lat / n, Lon: lon / n}
}

func coordsEqual(a, b []routing.Coordinate) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
