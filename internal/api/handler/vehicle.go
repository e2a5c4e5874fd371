package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fleetdispatch/fleetdispatch/internal/api/models"
	"github.com/fleetdispatch/fleetdispatch/internal/api/response"
	"github.com/fleetdispatch/fleetdispatch/internal/vehicle"
)

// VehicleHandler handles vehicle endpoints.
type VehicleHandler struct {
	vehicles *vehicle.Service
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(vehicles *vehicle.Service) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles}
}

// List handles GET /v1/vehicles?page= - list vehicles, paged.
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	paged, err := h.vehicles.List(r.Context(), pageParam(r))
	if err != nil {
		response.InternalError(w, r, "listing vehicles failed")
		return
	}
	response.JSON(w, r, http.StatusOK, paged)
}

// Search handles POST /v1/vehicles/search - substring search.
func (h *VehicleHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req models.VehicleSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	criteria := vehicle.SearchCriteria{
		LicensePlate: req.LicensePlate,
		Model:        req.Model,
		Manufacturer: req.Manufacturer,
	}

	paged, err := h.vehicles.Search(r.Context(), criteria, pageParam(r))
	if err != nil {
		response.InternalError(w, r, "searching vehicles failed")
		return
	}
	response.JSON(w, r, http.StatusOK, paged)
}

// Create handles POST /v1/vehicles - register a new vehicle.
func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.VehicleCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if !checkRequest(w, r, &req) {
		return
	}

	created, err := h.vehicles.Create(r.Context(), GetUserID(r.Context()), &req)
	if err != nil {
		if errors.Is(err, vehicle.ErrDuplicatePlate) {
			response.Conflict(w, r, "license plate is already registered")
			return
		}
		response.InternalError(w, r, "creating vehicle failed")
		return
	}

	response.Created(w, r, "/v1/vehicles/"+created.LicensePlate, created)
}

// Get handles GET /v1/vehicles/{licensePlate}.
func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	plate := urlParam(r, "licensePlate")

	v, err := h.vehicles.GetByPlate(r.Context(), plate)
	if err != nil {
		if errors.Is(err, vehicle.ErrVehicleNotFound) {
			response.NotFound(w, r, "vehicle not found")
			return
		}
		response.InternalError(w, r, "loading vehicle failed")
		return
	}

	response.JSON(w, r, http.StatusOK, v)
}

// Delete handles DELETE /v1/vehicles/{licensePlate}.
func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	plate := urlParam(r, "licensePlate")

	err := h.vehicles.DeleteByPlate(r.Context(), GetUserID(r.Context()), plate)
	if err != nil {
		if errors.Is(err, vehicle.ErrVehicleNotFound) {
			response.NotFound(w, r, "vehicle not found")
			return
		}
		response.InternalError(w, r, "deleting vehicle failed")
		return
	}

	response.NoContent(w, r)
}

// RecordRouteResult handles PUT /v1/vehicles/route - fold a finished trip
// into the vehicle's consumption average and mileage.
func (h *VehicleHandler) RecordRouteResult(w http.ResponseWriter, r *http.Request) {
	var req models.RouteResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if !checkRequest(w, r, &req) {
		return
	}

	updated, err := h.vehicles.RecordRouteResult(r.Context(), req.LicensePlate, req.DistanceKm, req.FuelConsumed)
	if err != nil {
		switch {
		case errors.Is(err, vehicle.ErrVehicleNotFound):
			response.NotFound(w, r, "vehicle not found")
		case errors.Is(err, vehicle.ErrInvalidRouteResult):
			response.BadRequest(w, r, "distance and fuel consumed must be positive", nil)
		default:
			response.InternalError(w, r, "recording route result failed")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, updated)
}

// pageParam parses the 1-based page query parameter, defaulting to 1.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
