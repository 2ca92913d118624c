package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"markev/backend/services/charger-finder/internal/geo"
	"markev/backend/services/charger-finder/internal/models"
	"markev/backend/services/charger-finder/internal/service"
)

// DataSourceHeader reports whether a list came from the store or the fallback catalog.
const DataSourceHeader = "X-Data-Source"

// ChargerHandlers serves the charger endpoints.
type ChargerHandlers struct {
	chargers *service.ChargerService
	logger   *zap.Logger
}

// NewChargerHandlers builds ChargerHandlers.
func NewChargerHandlers(chargers *service.ChargerService, logger *zap.Logger) *ChargerHandlers {
	return &ChargerHandlers{chargers: chargers, logger: logger}
}

// All handles GET /api/chargers/all.
func (h *ChargerHandlers) All(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.chargers.All(r.Context()))
}

// Nearby handles GET /api/chargers/nearby.
func (h *ChargerHandlers) Nearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	box, err := geo.Resolve(geo.RawBounds{
		NorthEastLat: q.Get(geo.ParamNorthEastLat),
		NorthEastLng: q.Get(geo.ParamNorthEastLng),
		SouthWestLat: q.Get(geo.ParamSouthWestLat),
		SouthWestLng: q.Get(geo.ParamSouthWestLng),
	})
	if err != nil {
		switch {
		case errors.Is(err, geo.ErrMissingParameter):
			writeError(w, http.StatusBadRequest, "Missing required parameters")
		case errors.Is(err, geo.ErrInvalidNumber):
			writeError(w, http.StatusBadRequest, "Invalid numeric parameter")
		default:
			writeError(w, http.StatusBadRequest, "Invalid bounding box")
		}
		return
	}

	writeResult(w, h.chargers.Nearby(r.Context(), box))
}

// Seed handles POST /api/chargers/seed.
func (h *ChargerHandlers) Seed(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Message string `json:"message"`
		Count   int    `json:"count"`
	}

	var req []models.ChargerInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body, expected an array of chargers")
		return
	}

	records := make([]models.Charger, 0, len(req))
	for i, in := range req {
		c, err := in.Charger()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("record %d: %s", i, err))
			return
		}
		records = append(records, c)
	}

	count, err := h.chargers.Reseed(r.Context(), records)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCharger) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to seed chargers", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to seed chargers")
		return
	}

	writeJSON(w, http.StatusOK, response{Message: "Chargers seeded", Count: count})
}

func writeResult(w http.ResponseWriter, res service.Result) {
	w.Header().Set(DataSourceHeader, string(res.Source))
	writeJSON(w, http.StatusOK, models.ToDTOs(res.Chargers))
}
