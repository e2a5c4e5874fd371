// Package fuel provides fuel consumption history services.
package fuel

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrEntryNotFound = errors.New("fuel entry not found")
)

// Entry is a single fuel consumption record, written when a route finishes
// or reported directly.
type Entry struct {
	ID           string
	VehicleID    string
	RouteID      *string
	FuelConsumed float64
	CreatedAt    time.Time
}
