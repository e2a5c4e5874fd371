// Package geocoding defines the domain model for forward geocoding and the
// provider interface implemented by concrete geocoders.
package geocoding

import (
	"errors"
	"fmt"
)

// Predefined geocoding errors.
var (
	// ErrNoResults indicates the query matched no locations.
	ErrNoResults = errors.New("no locations found")

	// ErrProviderUnavailable indicates the geocoding provider cannot be reached.
	ErrProviderUnavailable = errors.New("geocoding provider unavailable")

	// ErrQueryTooShort indicates the query is below the minimum length.
	ErrQueryTooShort = errors.New("query too short")
)

// Location is a single geocoding result.
type Location struct {
	// DisplayName is the full human-readable place name.
	DisplayName string `json:"display_name"`

	// Lat is the latitude in decimal degrees.
	Lat float64 `json:"lat"`

	// Lon is the longitude in decimal degrees.
	Lon float64 `json:"lon"`
}

// StructuredQuery is an address search split into components. Empty fields
// are omitted from the provider request.
type StructuredQuery struct {
	Street     string
	City       string
	County     string
	State      string
	Country    string
	PostalCode string
}

// IsEmpty reports whether no component is set.
func (q StructuredQuery) IsEmpty() bool {
	return q.Street == "" && q.City == "" && q.County == "" && q.State == "" &&
		q.Country == "" && q.PostalCode == ""
}

// Error wraps a provider failure with enough context to map it to an API
// response.
type Error struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Provider, e.Message, e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}
