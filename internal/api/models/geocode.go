package models

// GeocodeResult is a single geocoding candidate.
type GeocodeResult struct {
	DisplayName string  `json:"displayName"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// GeocodeResponse is the list of candidates for a query.
type GeocodeResponse struct {
	Results []GeocodeResult `json:"results"`
}

// StructuredGeocodeRequest is an address search split into components.
// At least one field must be set.
type StructuredGeocodeRequest struct {
	Street     string `json:"street,omitempty" validate:"max=120"`
	City       string `json:"city,omitempty" validate:"max=80"`
	County     string `json:"county,omitempty" validate:"max=80"`
	State      string `json:"state,omitempty" validate:"max=80"`
	Country    string `json:"country,omitempty" validate:"max=80"`
	PostalCode string `json:"postalCode,omitempty" validate:"max=16"`
}
