package www

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/angas/windfarm-go/database"
	"github.com/angas/windfarm-go/types"
	"github.com/angas/windfarm-go/types/maybe"
)

func NewLocationListHandler(logger *slog.Logger, db *database.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := db.ListLocations(r.Context())
		if err != nil {
			writeError(logger, w, http.StatusInternalServerError, err)
			return
		}
		locations := make([]locationJSON, 0, len(rows))
		for _, row := range rows {
			locations = append(locations, toLocationJSON(row))
		}
		writeJSON(logger, w, http.StatusOK, locations)
	}
}

type createLocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func NewLocationCreateHandler(logger *slog.Logger, db *database.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createLocationRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(logger, w, http.StatusBadRequest, err)
			return
		}
		if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
			writeError(logger, w, http.StatusBadRequest, errors.New("coordinates out of range"))
			return
		}

		id, err := db.SaveLocation(r.Context(), database.LocationRow{
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
		})
		if err != nil {
			writeError(logger, w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(logger, w, http.StatusCreated, map[string]int64{"id": id})
	}
}

func NewTurbineListHandler(logger *slog.Logger, db *database.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := db.ListWindTurbines(r.Context())
		if err != nil {
			writeError(logger, w, http.StatusInternalServerError, err)
			return
		}
		turbines := make([]windTurbineJSON, 0, len(rows))
		for _, row := range rows {
			turbines = append(turbines, toWindTurbineJSON(row))
		}
		writeJSON(logger, w, http.StatusOK, turbines)
	}
}

type createTurbineRequest struct {
	TurbineType  *string          `json:"turbineType"`
	HubHeight    float64          `json:"hubHeight"`
	NominalPower float64          `json:"nominalPower"` // MW
	PowerCurveID *int64           `json:"powerCurveId"`
	PowerCurve   types.PowerCurve `json:"powerCurve"`
}

// NewTurbineCreateHandler creates a turbine template. An inline power curve
// is persisted as its own row and linked; a curve id references an existing
// one.
func NewTurbineCreateHandler(logger *slog.Logger, db *database.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTurbineRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(logger, w, http.StatusBadRequest, err)
			return
		}
		if req.NominalPower <= 0 {
			writeError(logger, w, http.StatusBadRequest, errors.New("nominal power must be positive"))
			return
		}
		if req.PowerCurveID != nil && len(req.PowerCurve) > 0 {
			writeError(logger, w, http.StatusBadRequest, errors.New("give either a power curve or a power curve id, not both"))
			return
		}

		curveID := maybe.FromPtr(req.PowerCurveID)
		if len(req.PowerCurve) > 0 {
			id, err := db.SavePowerCurve(r.Context(), database.PowerCurveRow{
				Name:  maybe.FromPtr(req.TurbineType),
				Curve: req.PowerCurve,
			})
			if err != nil {
				writeError(logger, w, http.StatusInternalServerError, err)
				return
			}
			curveID = maybe.Some(id)
		}

		id, err := db.SaveWindTurbine(r.Context(), database.WindTurbineRow{
			TurbineType:  maybe.FromPtr(req.TurbineType),
			HubHeight:    req.HubHeight,
			NominalPower: req.NominalPower,
			PowerCurveID: curveID,
		})
		if err != nil {
			writeError(logger, w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(logger, w, http.StatusCreated, map[string]int64{"id": id})
	}
}

func NewPowerCurveListHandler(logger *slog.Logger, db *database.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := db.ListPowerCurves(r.Context())
		if err != nil {
			writeError(logger, w, http.StatusInternalServerError, err)
			return
		}
		curves := make([]powerCurveJSON, 0, len(rows))
		for _, row := range rows {
			curves = append(curves, toPowerCurveJSON(row))
		}
		writeJSON(logger, w, http.StatusOK, curves)
	}
}

func NewFleetListHandler(logger *slog.Logger, db *database.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		farmID, ok := int64Param(r.URL, "farm_id")
		if !ok {
			writeError(logger, w, http.StatusBadRequest, errors.New("farm_id is required"))
			return
		}
		rows, err := db.ListFleets(r.Context(), farmID)
		if err != nil {
			writeError(logger, w, http.StatusInternalServerError, err)
			return
		}
		fleets := make([]fleetJSON, 0, len(rows))
		for _, row := range rows {
			fleets = append(fleets, toFleetJSON(row))
		}
		writeJSON(logger, w, http.StatusOK, fleets)
	}
}

type createFleetRequest struct {
	WindFarmID       int64 `json:"windFarmId"`
	WindTurbineID    int64 `json:"windTurbineId"`
	LocationID       int64 `json:"locationId"`
	NumberOfTurbines int   `json:"numberOfTurbines"`
}

func NewFleetCreateHandler(logger *slog.Logger, db *database.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createFleetRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(logger, w, http.StatusBadRequest, err)
			return
		}

		id, err := db.SaveFleet(r.Context(), database.FleetRow{
			WindFarmID:       req.WindFarmID,
			WindTurbineID:    req.WindTurbineID,
			LocationID:       req.LocationID,
			NumberOfTurbines: req.NumberOfTurbines,
		})
		if err != nil {
			// Most save failures here are bad references (farm, turbine or
			// location id), which sqlite reports as constraint violations.
			writeError(logger, w, http.StatusBadRequest, err)
			return
		}
		writeJSON(logger, w, http.StatusCreated, map[string]int64{"id": id})
	}
}

func NewFleetDeleteHandler(logger *slog.Logger, db *database.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			writeError(logger, w, http.StatusBadRequest, errors.New("invalid fleet id"))
			return
		}
		if err := db.DeleteFleet(r.Context(), id); err != nil {
			writeError(logger, w, http.StatusInternalServerError, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
