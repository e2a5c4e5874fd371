package models

// FuelEntry is a single fuel consumption record.
type FuelEntry struct {
	ID           string    `json:"id"`
	VehicleID    string    `json:"vehicleId"`
	RouteID      *string   `json:"routeId,omitempty"`
	FuelConsumed float64   `json:"fuelConsumed"`
	CreatedAt    Timestamp `json:"createdAt"`
}

// PagedFuelEntries is a page of fuel entries.
type PagedFuelEntries struct {
	Items []FuelEntry       `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}

// FuelEntryCreateRequest records fuel consumption for a vehicle directly.
type FuelEntryCreateRequest struct {
	LicensePlate string  `json:"licensePlate" validate:"required"`
	FuelConsumed float64 `json:"fuelConsumed" validate:"required,gt=0"`
}
