package www

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/angas/windfarm-go/database"
	"github.com/angas/windfarm-go/turbinelib"
)

// NewLibraryListHandler lists the turbine templates currently loaded from
// the local catalog directory. Library may be nil when no catalog dir is
// configured.
func NewLibraryListHandler(logger *slog.Logger, library *turbinelib.Library) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if library == nil {
			writeError(logger, w, http.StatusNotFound, errors.New("no turbine catalog directory configured"))
			return
		}
		writeJSON(logger, w, http.StatusOK, library.Entries())
	}
}

// NewLibraryImportHandler persists the loaded catalog entries as turbine
// templates with power curves. Existing turbine types are skipped.
func NewLibraryImportHandler(logger *slog.Logger, db *database.Database, library *turbinelib.Library) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if library == nil {
			writeError(logger, w, http.StatusNotFound, errors.New("no turbine catalog directory configured"))
			return
		}

		result, err := turbinelib.Import(r.Context(), db, library.Entries())
		if err != nil {
			writeError(logger, w, http.StatusInternalServerError, err)
			return
		}
		logger.Info("turbine catalog imported",
			slog.Int("imported", result.Imported),
			slog.Int("skipped", result.Skipped))
		writeJSON(logger, w, http.StatusOK, result)
	}
}

// NewOedbImportHandler downloads the public OEDB turbine library and imports
// every entry that carries a usable power curve.
func NewOedbImportHandler(logger *slog.Logger, db *database.Database, fetcher *turbinelib.Fetcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := fetcher.Fetch(r.Context())
		if err != nil {
			writeError(logger, w, http.StatusBadGateway, err)
			return
		}

		result, err := turbinelib.Import(r.Context(), db, entries)
		if err != nil {
			writeError(logger, w, http.StatusInternalServerError, err)
			return
		}
		logger.Info("oedb turbine library imported",
			slog.Int("fetched", len(entries)),
			slog.Int("imported", result.Imported),
			slog.Int("skipped", result.Skipped))
		writeJSON(logger, w, http.StatusOK, result)
	}
}
