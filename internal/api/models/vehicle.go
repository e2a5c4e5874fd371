package models

// Vehicle represents a fleet vehicle.
type Vehicle struct {
	ID                 string     `json:"id"`
	LicensePlate       string     `json:"licensePlate"`
	Model              string     `json:"model"`
	Manufacturer       string     `json:"manufacturer"`
	ProductionYear     int        `json:"productionYear"`
	FuelCapacity       float64    `json:"fuelCapacity"`
	AverageConsumption float64    `json:"averageConsumption"`
	Mileage            float64    `json:"mileage"`
	RouteRecords       int        `json:"routeRecords"`
	LastMaintenance    *Timestamp `json:"lastMaintenance,omitempty"`
	CreatedAt          Timestamp  `json:"createdAt"`
}

// PagedVehicles is a page of vehicles.
type PagedVehicles struct {
	Items []Vehicle         `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}

// VehicleCreateRequest is the request to register a new vehicle.
type VehicleCreateRequest struct {
	LicensePlate   string  `json:"licensePlate" validate:"required,max=16"`
	Model          string  `json:"model" validate:"required,max=80"`
	Manufacturer   string  `json:"manufacturer" validate:"required,max=80"`
	ProductionYear int     `json:"productionYear" validate:"required,gte=1950,lte=2100"`
	FuelCapacity   float64 `json:"fuelCapacity" validate:"required,gt=0"`
	Mileage        float64 `json:"mileage" validate:"gte=0"`
}

// VehicleSearchRequest carries substring search criteria.
type VehicleSearchRequest struct {
	LicensePlate string `json:"licensePlate,omitempty"`
	Model        string `json:"model,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
}

// RouteResultRequest records a finished trip against a vehicle's running
// consumption average and mileage.
type RouteResultRequest struct {
	LicensePlate string  `json:"licensePlate" validate:"required"`
	DistanceKm   float64 `json:"distanceKm" validate:"required,gt=0"`
	FuelConsumed float64 `json:"fuelConsumed" validate:"required,gt=0"`
}
