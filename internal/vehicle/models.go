// Package vehicle provides fleet vehicle management services.
package vehicle

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrDuplicatePlate  = errors.New("license plate already registered")
)

// Vehicle represents a fleet vehicle.
type Vehicle struct {
	ID                 string
	UserID             string
	LicensePlate       string
	Model              string
	Manufacturer       string
	ProductionYear     int
	FuelCapacity       float64
	AverageConsumption float64
	Mileage            float64
	RouteRecords       int
	LastMaintenance    *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// SearchCriteria filters vehicles by substring match on any set field.
type SearchCriteria struct {
	LicensePlate string
	Model        string
	Manufacturer string
}

// IsEmpty reports whether no criterion is set.
func (c SearchCriteria) IsEmpty() bool {
	return c.LicensePlate == "" && c.Model == "" && c.Manufacturer == ""
}
