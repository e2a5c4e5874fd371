// Package planner implements the route-planning draft engine. A draft is
// a server-side scratchpad of waypoint slots that the dispatcher fills in
// through free-text geocoding queries, suggestion picks, or structured
// address searches. Once at least two slots carry coordinates the draft
// computes route metrics, and a finished plan can be attached to a
// vehicle as a stored route.
package planner

import (
	"errors"
	"sync"
	"time"

	"github.com/fleetdispatch/fleetdispatch/internal/api/models"
	"github.com/fleetdispatch/fleetdispatch/internal/routing"
)

// Predefined planner errors.
var (
	ErrDraftNotFound     = errors.New("draft not found")
	ErrSlotNotFound      = errors.New("slot not found")
	ErrMinSlots          = errors.New("a draft must keep at least two slots")
	ErrNoVehicleSelected = errors.New("no vehicle selected")
	ErrNoRouteComputed   = errors.New("no route computed")
	ErrNoResults         = errors.New("no results for address")
)

// MinSlots is the smallest number of slots a draft may hold. Drafts are
// created with exactly this many.
const MinSlots = 2

// Slot is a single waypoint slot. A slot is resolved once it carries
// coordinates from a pick or a structured search.
type Slot struct {
	ID          string
	Query       string
	DisplayName string
	Coords      *routing.Coordinate
}

// Resolved reports whether the slot carries coordinates.
func (s *Slot) Resolved() bool {
	return s.Coords != nil
}

// Suggestion is a geocoding candidate offered for a specific slot.
type Suggestion struct {
	SlotID      string
	DisplayName string
	Lat         float64
	Lon         float64
}

// RouteMetrics is the computed summary of the drafted route.
type RouteMetrics struct {
	DistanceKm      float64 // rounded to 2 decimals
	DurationSeconds int
	Geometry        []routing.Coordinate
}

// Draft is a mutable planning session owned by one user.
type Draft struct {
	ID           string
	UserID       string
	LicensePlate string
	Slots        []*Slot
	Suggestions  []Suggestion
	Metrics      *RouteMetrics
	MapCenter    *routing.Coordinate
	Routes       []models.Route
	CreatedAt    time.Time
	UpdatedAt    time.Time

	mu       sync.Mutex
	plotter  Plotter
	slotSeq  int
	disposed bool
}

func (d *Draft) slot(id string) *Slot {
	for _, s := range d.Slots {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// resolvedCoords returns the coordinates of resolved slots in slot order.
func (d *Draft) resolvedCoords() []routing.Coordinate {
	var coords []routing.Coordinate
	for _, s := range d.Slots {
		if s.Resolved() {
			coords = append(coords, *s.Coords)
		}
	}
	return coords
}

// resolvedSlots returns the resolved slots in slot order.
func (d *Draft) resolvedSlots() []*Slot {
	var slots []*Slot
	for _, s := range d.Slots {
		if s.Resolved() {
			slots = append(slots, s)
		}
	}
	return slots
}
