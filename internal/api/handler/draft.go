package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fleetdispatch/fleetdispatch/internal/api/models"
	"github.com/fleetdispatch/fleetdispatch/internal/api/response"
	"github.com/fleetdispatch/fleetdispatch/internal/geocoding"
	"github.com/fleetdispatch/fleetdispatch/internal/planner"
	"github.com/fleetdispatch/fleetdispatch/internal/route"
	"github.com/fleetdispatch/fleetdispatch/internal/routing"
	"github.com/fleetdispatch/fleetdispatch/internal/vehicle"
)

// DraftHandler handles route-planning draft endpoints.
type DraftHandler struct {
	planner *planner.Service
}

// NewDraftHandler creates a new DraftHandler.
func NewDraftHandler(plannerSvc *planner.Service) *DraftHandler {
	return &DraftHandler{planner: plannerSvc}
}

// Create handles POST /v1/drafts - open a new planning draft.
func (h *DraftHandler) Create(w http.ResponseWriter, r *http.Request) {
	draft := h.planner.NewDraft(GetUserID(r.Context()))
	response.Created(w, r, "/v1/drafts/"+draft.ID, draft)
}

// Get handles GET /v1/drafts/{draftId}.
func (h *DraftHandler) Get(w http.ResponseWriter, r *http.Request) {
	draft, err := h.planner.GetDraft(GetUserID(r.Context()), urlParam(r, "draftId"))
	if err != nil {
		h.writeDraftError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, draft)
}

// Close handles DELETE /v1/drafts/{draftId} - discard a draft.
func (h *DraftHandler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.planner.CloseDraft(GetUserID(r.Context()), urlParam(r, "draftId")); err != nil {
		h.writeDraftError(w, r, err)
		return
	}
	response.NoContent(w, r)
}

// AddSlot handles POST /v1/drafts/{draftId}/slots - append an empty slot.
func (h *DraftHandler) AddSlot(w http.ResponseWriter, r *http.Request) {
	draft, err := h.planner.AddSlot(GetUserID(r.Context()), urlParam(r, "draftId"))
	if err != nil {
		h.writeDraftError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, draft)
}

// RemoveSlot handles DELETE /v1/drafts/{draftId}/slots/{slotId}.
func (h *DraftHandler) RemoveSlot(w http.ResponseWriter, r *http.Request) {
	draft, err := h.planner.RemoveSlot(r.Context(), GetUserID(r.Context()),
		urlParam(r, "draftId"), urlParam(r, "slotId"))
	if err != nil {
		h.writeDraftError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, draft)
}

// UpdateQuery handles PUT /v1/drafts/{draftId}/slots/{slotId}/query -
// update a slot's free-text query and refresh its suggestions.
func (h *DraftHandler) UpdateQuery(w http.ResponseWriter, r *http.Request) {
	var req models.SlotQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	draft, err := h.planner.UpdateQuery(r.Context(), GetUserID(r.Context()),
		urlParam(r, "draftId"), urlParam(r, "slotId"), req.Query)
	if err != nil {
		h.writeDraftError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, draft)
}

// PickSuggestion handles POST /v1/drafts/{draftId}/slots/{slotId}/pick -
// resolve a slot to one of the offered suggestions.
func (h *DraftHandler) PickSuggestion(w http.ResponseWriter, r *http.Request) {
	var req models.SlotPickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if !checkRequest(w, r, &req) {
		return
	}

	draft, err := h.planner.PickSuggestion(r.Context(), GetUserID(r.Context()),
		urlParam(r, "draftId"), urlParam(r, "slotId"), req)
	if err != nil {
		h.writeDraftError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, draft)
}

// StructuredSearch handles POST /v1/drafts/{draftId}/slots/{slotId}/address -
// resolve a slot from structured address fields.
func (h *DraftHandler) StructuredSearch(w http.ResponseWriter, r *http.Request) {
	var req models.StructuredGeocodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if !checkRequest(w, r, &req) {
		return
	}

	draft, err := h.planner.StructuredSearch(r.Context(), GetUserID(r.Context()),
		urlParam(r, "draftId"), urlParam(r, "slotId"), geocoding.StructuredQuery{
			Street:     req.Street,
			City:       req.City,
			County:     req.County,
			State:      req.State,
			Country:    req.Country,
			PostalCode: req.PostalCode,
		})
	if err != nil {
		h.writeDraftError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, draft)
}

// SelectVehicle handles PUT /v1/drafts/{draftId}/vehicle - select or
// clear the draft's vehicle.
func (h *DraftHandler) SelectVehicle(w http.ResponseWriter, r *http.Request) {
	var req models.DraftVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	draft, err := h.planner.SelectVehicle(r.Context(), GetUserID(r.Context()),
		urlParam(r, "draftId"), req.LicensePlate)
	if err != nil {
		h.writeDraftError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, draft)
}

// Attach handles POST /v1/drafts/{draftId}/attach - save the drafted
// route to the selected vehicle.
func (h *DraftHandler) Attach(w http.ResponseWriter, r *http.Request) {
	draft, err := h.planner.AttachToVehicle(r.Context(), GetUserID(r.Context()), urlParam(r, "draftId"))
	if err != nil {
		h.writeDraftError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, draft)
}

// ShowRoute handles POST /v1/drafts/{draftId}/show-route - plot a stored
// route on the draft's map.
func (h *DraftHandler) ShowRoute(w http.ResponseWriter, r *http.Request) {
	var req models.ShowRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if !checkRequest(w, r, &req) {
		return
	}

	draft, err := h.planner.ShowRoute(r.Context(), GetUserID(r.Context()),
		urlParam(r, "draftId"), req.RouteID)
	if err != nil {
		h.writeDraftError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, draft)
}

// writeDraftError maps planner errors to Problem responses.
func (h *DraftHandler) writeDraftError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, planner.ErrDraftNotFound):
		response.NotFound(w, r, "draft not found")
	case errors.Is(err, planner.ErrSlotNotFound):
		response.NotFound(w, r, "slot not found")
	case errors.Is(err, planner.ErrMinSlots):
		response.Conflict(w, r, "a draft must keep at least two slots")
	case errors.Is(err, planner.ErrNoVehicleSelected):
		response.Conflict(w, r, "no vehicle selected")
	case errors.Is(err, planner.ErrNoRouteComputed):
		response.Conflict(w, r, "no route computed")
	case errors.Is(err, planner.ErrNoResults):
		response.NotFound(w, r, "no locations found for address")
	case errors.Is(err, vehicle.ErrVehicleNotFound):
		response.NotFound(w, r, "vehicle not found")
	case errors.Is(err, route.ErrRouteNotFound):
		response.NotFound(w, r, "route not found")
	case errors.Is(err, geocoding.ErrNoResults):
		response.NotFound(w, r, "no locations found for query")
	case errors.Is(err, geocoding.ErrQueryTooShort):
		response.BadRequest(w, r, "query must be at least 3 characters", nil)
	case errors.Is(err, geocoding.ErrProviderUnavailable):
		response.ServiceUnavailable(w, r, "geocoding provider is unavailable")
	case errors.Is(err, routing.ErrNoRouteFound):
		response.Conflict(w, r, "no route found through the given waypoints")
	case errors.Is(err, routing.ErrProviderUnavailable):
		response.ServiceUnavailable(w, r, "routing provider is unavailable")
	default:
		response.InternalError(w, r, "draft operation failed")
	}
}
