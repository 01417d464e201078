package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shirou/gopsutil/v3/disk"
)

// DiskStatus je zaplnění disku pod jedním z adresářů sinku.
type DiskStatus struct {
	Path        string  `json:"path"`
	FreeMB      float64 `json:"free_mb"`
	UsedPercent float64 `json:"used_percent"`
	Error       string  `json:"error,omitempty"`
}

type HealthResponse struct {
	Status string       `json:"status"`
	Disks  []DiskStatus `json:"disks"`
}

// HealthHandler odpovídá na GET /health. Služba žije, dokud odpovídá 200;
// plný disk je jen informace (zápisy pak skončí 500 u konkrétních požadavků).
type HealthHandler struct {
	dirs   []string
	logger *slog.Logger
}

func NewHealthHandler(logger *slog.Logger, dirs ...string) *HealthHandler {
	return &HealthHandler{dirs: dirs, logger: logger}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Disks: make([]DiskStatus, 0, len(h.dirs))}

	for _, dir := range h.dirs {
		st := DiskStatus{Path: dir}
		usage, err := disk.UsageWithContext(r.Context(), dir)
		if err != nil {
			h.logger.Warn("Nelze zjistit stav disku", "dir", dir, "error", err)
			st.Error = err.Error()
		} else {
			st.FreeMB = float64(usage.Free) / 1024.0 / 1024.0
			st.UsedPercent = usage.UsedPercent
		}
		resp.Disks = append(resp.Disks, st)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Chyba při zápisu JSON odpovědi", "error", err)
	}
}
