package models

// Waypoint is a named stop on a route.
type Waypoint struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Sequence  int     `json:"sequence" validate:"gte=1"`
}

// Route represents a planned or driven route.
type Route struct {
	ID               string      `json:"id"`
	VehicleID        string      `json:"vehicleId"`
	LicensePlate     string      `json:"licensePlate"`
	DistanceKm       float64     `json:"distanceKm"`
	EstimatedTimeSec int         `json:"estimatedTimeSec"`
	Status           RouteStatus `json:"status"`
	StartTime        *Timestamp  `json:"startTime,omitempty"`
	EndTime          *Timestamp  `json:"endTime,omitempty"`
	CreatedAt        Timestamp   `json:"createdAt"`
	Waypoints        []Waypoint  `json:"waypoints"`
}

// PagedRoutes is a page of routes.
type PagedRoutes struct {
	Items []Route           `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}

// RouteCreateRequest is the request to save a planned route.
type RouteCreateRequest struct {
	LicensePlate     string     `json:"licensePlate" validate:"required"`
	DistanceKm       float64    `json:"distanceKm" validate:"required,gt=0"`
	EstimatedTimeSec int        `json:"estimatedTimeSec" validate:"required,gt=0"`
	Waypoints        []Waypoint `json:"waypoints" validate:"required,min=2,dive"`
}

// RouteStatusUpdateRequest advances a route through its lifecycle.
// When finishing a route, fuel consumption is reported either directly or
// as a tank-level difference.
type RouteStatusUpdateRequest struct {
	RouteID      string      `json:"routeId" validate:"required"`
	Status       RouteStatus `json:"status" validate:"required,oneof=PLANNED ACTIVE FINISHED"`
	FuelConsumed *float64    `json:"fuelConsumed,omitempty" validate:"omitempty,gt=0"`
	TankBefore   *float64    `json:"tankBefore,omitempty" validate:"omitempty,gte=0"`
	TankAfter    *float64    `json:"tankAfter,omitempty" validate:"omitempty,gte=0"`
}

// RouteSearchRequest carries route search criteria.
type RouteSearchRequest struct {
	LicensePlate string       `json:"licensePlate,omitempty"`
	Status       *RouteStatus `json:"status,omitempty"`
	WaypointName string       `json:"waypointName,omitempty"`
}
