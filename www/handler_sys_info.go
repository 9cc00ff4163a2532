package www

import (
	"log/slog"
	"net/http"
	"runtime"
	"time"
)

type SysInfo struct {
	Version        string    `json:"version"`
	GoVersion      string    `json:"goVersion"`
	StartedAt      time.Time `json:"startedAt"`
	ScadaConnected bool      `json:"scadaConnected"`
}

func NewSysInfoHandler(logger *slog.Logger, s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(logger, w, http.StatusOK, SysInfo{
			Version:        s.version,
			GoVersion:      runtime.Version(),
			StartedAt:      s.startedAt,
			ScadaConnected: s.scada.Healthy(),
		})
	}
}
