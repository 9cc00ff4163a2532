package www

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/angas/windfarm-go/database"
	"github.com/angas/windfarm-go/types/maybe"
)

func NewFarmListHandler(logger *slog.Logger, db *database.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := db.ListWindFarms(r.Context())
		if err != nil {
			writeError(logger, w, http.StatusInternalServerError, err)
			return
		}

		farms := make([]windFarmJSON, 0, len(rows))
		for _, row := range rows {
			farms = append(farms, toWindFarmJSON(row))
		}
		writeJSON(logger, w, http.StatusOK, farms)
	}
}

type createFarmRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func NewFarmCreateHandler(logger *slog.Logger, db *database.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createFarmRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(logger, w, http.StatusBadRequest, err)
			return
		}
		if req.Name == "" {
			writeError(logger, w, http.StatusBadRequest, errors.New("farm name is required"))
			return
		}

		id, err := db.SaveWindFarm(r.Context(), database.WindFarmRow{
			Name:        req.Name,
			Description: maybe.FromPtr(req.Description),
		})
		if err != nil {
			writeError(logger, w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(logger, w, http.StatusCreated, map[string]int64{"id": id})
	}
}

// NewFarmGetHandler returns one farm with its resolved fleets and aggregate
// nameplate capacity.
func NewFarmGetHandler(logger *slog.Logger, db *database.Database) http.HandlerFunc {
	type fleetDetailJSON struct {
		ID               int64           `json:"id"`
		NumberOfTurbines int             `json:"numberOfTurbines"`
		Turbine          windTurbineJSON `json:"turbine"`
		Location         locationJSON    `json:"location"`
	}
	type farmDetailJSON struct {
		windFarmJSON
		CapacityMw float64           `json:"capacityMw"`
		Fleets     []fleetDetailJSON `json:"fleets"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			writeError(logger, w, http.StatusBadRequest, errors.New("invalid farm id"))
			return
		}

		graph, err := db.GetWindFarmGraph(r.Context(), id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				writeError(logger, w, http.StatusNotFound, fmt.Errorf("wind farm %d not found", id))
				return
			}
			writeError(logger, w, http.StatusInternalServerError, err)
			return
		}

		detail := farmDetailJSON{
			windFarmJSON: toWindFarmJSON(graph.Farm),
			CapacityMw:   graph.CapacityMw(),
			Fleets:       make([]fleetDetailJSON, 0, len(graph.Fleets)),
		}
		for _, fleet := range graph.Fleets {
			detail.Fleets = append(detail.Fleets, fleetDetailJSON{
				ID:               fleet.ID,
				NumberOfTurbines: fleet.NumberOfTurbines,
				Turbine:          toWindTurbineJSON(fleet.Turbine),
				Location:         toLocationJSON(fleet.Location),
			})
		}
		writeJSON(logger, w, http.StatusOK, detail)
	}
}

func NewFarmDeleteHandler(logger *slog.Logger, db *database.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			writeError(logger, w, http.StatusBadRequest, errors.New("invalid farm id"))
			return
		}
		if err := db.DeleteWindFarm(r.Context(), id); err != nil {
			writeError(logger, w, http.StatusInternalServerError, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
