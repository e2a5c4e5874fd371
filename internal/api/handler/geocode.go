package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fleetdispatch/fleetdispatch/internal/api/models"
	"github.com/fleetdispatch/fleetdispatch/internal/api/response"
	"github.com/fleetdispatch/fleetdispatch/internal/geocoding"
)

// GeocodeHandler handles geocoding endpoints.
type GeocodeHandler struct {
	geocoder *geocoding.Service
}

// NewGeocodeHandler creates a new GeocodeHandler.
func NewGeocodeHandler(geocoder *geocoding.Service) *GeocodeHandler {
	return &GeocodeHandler{geocoder: geocoder}
}

// Search handles GET /v1/geocode?q= - free-text forward geocoding.
func (h *GeocodeHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	locations, err := h.geocoder.Search(r.Context(), query)
	if err != nil {
		h.writeGeocodeError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, toGeocodeResponse(locations))
}

// StructuredSearch handles POST /v1/geocode - structured address geocoding.
func (h *GeocodeHandler) StructuredSearch(w http.ResponseWriter, r *http.Request) {
	var req models.StructuredGeocodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if !checkRequest(w, r, &req) {
		return
	}

	locations, err := h.geocoder.StructuredSearch(r.Context(), geocoding.StructuredQuery{
		Street:     req.Street,
		City:       req.City,
		County:     req.County,
		State:      req.State,
		Country:    req.Country,
		PostalCode: req.PostalCode,
	})
	if err != nil {
		h.writeGeocodeError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, toGeocodeResponse(locations))
}

func (h *GeocodeHandler) writeGeocodeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, geocoding.ErrNoResults):
		response.NotFound(w, r, "no locations found for query")
	case errors.Is(err, geocoding.ErrQueryTooShort):
		response.BadRequest(w, r, "query must be at least 3 characters", nil)
	case errors.Is(err, geocoding.ErrProviderUnavailable):
		response.ServiceUnavailable(w, r, "geocoding provider is unavailable")
	default:
		response.InternalError(w, r, "geocoding failed")
	}
}

func toGeocodeResponse(locations []geocoding.Location) models.GeocodeResponse {
	results := make([]models.GeocodeResult, 0, len(locations))
	for _, loc := range locations {
		results = append(results, models.GeocodeResult{
			DisplayName: loc.DisplayName,
			Lat:         loc.Lat,
			Lon:         loc.Lon,
		})
	}
	return models.GeocodeResponse{Results: results}
}
