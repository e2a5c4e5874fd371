package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fleetdispatch/fleetdispatch/internal/api/models"
	"github.com/fleetdispatch/fleetdispatch/internal/api/response"
	"github.com/fleetdispatch/fleetdispatch/internal/fuel"
	"github.com/fleetdispatch/fleetdispatch/internal/vehicle"
)

// FuelHandler handles fuel history endpoints.
type FuelHandler struct {
	fuel     *fuel.Service
	vehicles *vehicle.Service
}

// NewFuelHandler creates a new FuelHandler.
func NewFuelHandler(fuelSvc *fuel.Service, vehicles *vehicle.Service) *FuelHandler {
	return &FuelHandler{fuel: fuelSvc, vehicles: vehicles}
}

// List handles GET /v1/fuel?vehicleId=&page= - a vehicle's fuel history, paged.
func (h *FuelHandler) List(w http.ResponseWriter, r *http.Request) {
	vehicleID := r.URL.Query().Get("vehicleId")
	if vehicleID == "" {
		response.BadRequest(w, r, "vehicleId query parameter is required", nil)
		return
	}

	paged, err := h.fuel.ListByVehicle(r.Context(), vehicleID, pageParam(r))
	if err != nil {
		response.InternalError(w, r, "listing fuel history failed")
		return
	}

	response.JSON(w, r, http.StatusOK, paged)
}

// Record handles POST /v1/fuel - record fuel consumption directly,
// outside of route completion.
func (h *FuelHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req models.FuelEntryCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if !checkRequest(w, r, &req) {
		return
	}

	v, err := h.vehicles.GetByPlate(r.Context(), req.LicensePlate)
	if err != nil {
		if errors.Is(err, vehicle.ErrVehicleNotFound) {
			response.NotFound(w, r, "vehicle not found")
			return
		}
		response.InternalError(w, r, "recording fuel entry failed")
		return
	}

	entry, err := h.fuel.Record(r.Context(), v.ID, nil, req.FuelConsumed)
	if err != nil {
		if errors.Is(err, fuel.ErrInvalidAmount) {
			response.BadRequest(w, r, "fuel consumed must be positive", nil)
			return
		}
		response.InternalError(w, r, "recording fuel entry failed")
		return
	}

	response.Created(w, r, "", entry)
}
