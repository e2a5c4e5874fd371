package models

// DraftSlot is a waypoint slot within a planning draft.
type DraftSlot struct {
	ID          string `json:"id"`
	Query       string `json:"query"`
	DisplayName string `json:"displayName,omitempty"`
	Point       *Point `json:"point,omitempty"`
}

// DraftSuggestion is a geocoding candidate offered for a specific slot.
type DraftSuggestion struct {
	SlotID      string  `json:"slotId"`
	DisplayName string  `json:"displayName"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// DraftMetrics is the computed route summary for a draft.
type DraftMetrics struct {
	DistanceKm      float64 `json:"distanceKm"`
	DurationSeconds int     `json:"durationSeconds"`
	Geometry        []Point `json:"geometry,omitempty"`
}

// Draft is a route-planning draft.
type Draft struct {
	ID           string            `json:"id"`
	LicensePlate string            `json:"licensePlate,omitempty"`
	Slots        []DraftSlot       `json:"slots"`
	Suggestions  []DraftSuggestion `json:"suggestions"`
	Metrics      *DraftMetrics     `json:"metrics,omitempty"`
	MapCenter    *Point            `json:"mapCenter,omitempty"`
	Routes       []Route           `json:"routes"`
	CreatedAt    Timestamp         `json:"createdAt"`
}

// SlotQueryRequest updates the free-text query of a slot.
type SlotQueryRequest struct {
	Query string `json:"query"`
}

// SlotPickRequest applies one of the offered suggestions to its slot.
type SlotPickRequest struct {
	DisplayName string  `json:"displayName" validate:"required"`
	Lat         float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon         float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// DraftVehicleRequest selects (or clears) the draft's vehicle.
// An empty license plate clears the selection.
type DraftVehicleRequest struct {
	LicensePlate string `json:"licensePlate"`
}

// ShowRouteRequest loads a stored route onto the draft's map.
type ShowRouteRequest struct {
	RouteID string `json:"routeId" validate:"required"`
}
