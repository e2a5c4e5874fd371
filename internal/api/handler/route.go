package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fleetdispatch/fleetdispatch/internal/api/models"
	"github.com/fleetdispatch/fleetdispatch/internal/api/response"
	"github.com/fleetdispatch/fleetdispatch/internal/route"
	"github.com/fleetdispatch/fleetdispatch/internal/vehicle"
)

// RouteHandler handles route endpoints.
type RouteHandler struct {
	routes *route.Service
}

// NewRouteHandler creates a new RouteHandler.
func NewRouteHandler(routes *route.Service) *RouteHandler {
	return &RouteHandler{routes: routes}
}

// List handles GET /v1/routes?licensePlate=&page= - a vehicle's routes, paged.
func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	plate := r.URL.Query().Get("licensePlate")
	if plate == "" {
		response.BadRequest(w, r, "licensePlate query parameter is required", nil)
		return
	}

	paged, err := h.routes.ListByPlate(r.Context(), plate, pageParam(r))
	if err != nil {
		if errors.Is(err, vehicle.ErrVehicleNotFound) {
			response.NotFound(w, r, "vehicle not found")
			return
		}
		response.InternalError(w, r, "listing routes failed")
		return
	}

	response.JSON(w, r, http.StatusOK, paged)
}

// Get handles GET /v1/routes/{routeId}.
func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	rt, err := h.routes.Get(r.Context(), urlParam(r, "routeId"))
	if err != nil {
		if errors.Is(err, route.ErrRouteNotFound) {
			response.NotFound(w, r, "route not found")
			return
		}
		response.InternalError(w, r, "loading route failed")
		return
	}

	response.JSON(w, r, http.StatusOK, rt)
}

// Create handles POST /v1/routes - save a planned route.
func (h *RouteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.RouteCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if !checkRequest(w, r, &req) {
		return
	}

	created, err := h.routes.Create(r.Context(), GetUserID(r.Context()), &req)
	if err != nil {
		if errors.Is(err, vehicle.ErrVehicleNotFound) {
			response.NotFound(w, r, "vehicle not found")
			return
		}
		response.InternalError(w, r, "creating route failed")
		return
	}

	response.Created(w, r, "/v1/routes/"+created.ID, created)
}

// UpdateStatus handles PUT /v1/routes/status - advance a route through
// its lifecycle.
func (h *RouteHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req models.RouteStatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if !checkRequest(w, r, &req) {
		return
	}

	updated, err := h.routes.UpdateStatus(r.Context(), GetUserID(r.Context()), &req)
	if err != nil {
		switch {
		case errors.Is(err, route.ErrRouteNotFound):
			response.NotFound(w, r, "route not found")
		case errors.Is(err, route.ErrInvalidTransition):
			response.Conflict(w, r, "invalid route status transition")
		case errors.Is(err, route.ErrMissingFuelReport):
			response.BadRequest(w, r, "finishing a route requires fuelConsumed or tankBefore/tankAfter", nil)
		case errors.Is(err, vehicle.ErrVehicleNotFound):
			response.NotFound(w, r, "vehicle not found")
		default:
			response.InternalError(w, r, "updating route status failed")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, updated)
}

// Delete handles DELETE /v1/routes/{routeId}.
func (h *RouteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.routes.Delete(r.Context(), GetUserID(r.Context()), urlParam(r, "routeId"))
	if err != nil {
		if errors.Is(err, route.ErrRouteNotFound) {
			response.NotFound(w, r, "route not found")
			return
		}
		response.InternalError(w, r, "deleting route failed")
		return
	}

	response.NoContent(w, r)
}

// Search handles POST /v1/routes/search - search routes by plate, status
// or waypoint name.
func (h *RouteHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req models.RouteSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	criteria := route.SearchCriteria{
		LicensePlate: req.LicensePlate,
		WaypointName: req.WaypointName,
	}
	if req.Status != nil {
		status := route.Status(*req.Status)
		criteria.Status = &status
	}

	paged, err := h.routes.Search(r.Context(), criteria, pageParam(r))
	if err != nil {
		response.InternalError(w, r, "searching routes failed")
		return
	}

	response.JSON(w, r, http.StatusOK, paged)
}
