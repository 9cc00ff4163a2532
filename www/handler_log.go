package www

import (
	"log/slog"
	"net/http"

	"github.com/angas/windfarm-go/database"
	"github.com/angas/windfarm-go/logging"
)

func NewLogHandler(logger *slog.Logger, db *database.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		minLevel := slog.LevelInfo
		if v := r.URL.Query().Get("min_level"); v != "" {
			minLevel = logging.LevelFromString(&v)
		}

		rows, err := db.GetLogEntries(r.Context(),
			minLevel,
			intOrDefault(r.URL, "page", 1),
			intOrDefault(r.URL, "page_size", 100))
		if err != nil {
			writeError(logger, w, http.StatusInternalServerError, err)
			return
		}

		entries := make([]logEntryJSON, 0, len(rows))
		for _, row := range rows {
			entries = append(entries, toLogEntryJSON(row))
		}
		writeJSON(logger, w, http.StatusOK, entries)
	}
}
