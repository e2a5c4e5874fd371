package planner

import "github.com/fleetdispatch/fleetdispatch/internal/routing"

// Plotter is a handle to whatever renders the draft's map. Each draft
// owns at most one plotter, constructed lazily on first use and reused
// for every subsequent update. Dispose releases it when the draft is
// closed or evicted, after which the handle must not be used again.
type Plotter interface {
	// SetWaypoints replaces the plotted waypoints.
	SetWaypoints(waypoints []routing.Coordinate)

	// Dispose releases the plotter's resources.
	Dispose()
}

// PlotterFactory constructs a plotter for a draft.
type PlotterFactory func() Plotter

// NopPlotter is a plotter that does nothing. Used when no map frontend
// is attached.
type NopPlotter struct{}

func (NopPlotter) SetWaypoints([]routing.Coordinate) {}
func (NopPlotter) Dispose()                          {}
