package handlers

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/disk"
)

// HealthHandler reports liveness and how full the upload volume is.
type HealthHandler struct {
	uploadDir string
}

// NewHealthHandler creates a new HealthHandler watching uploadDir.
func NewHealthHandler(uploadDir string) *HealthHandler {
	return &HealthHandler{uploadDir: uploadDir}
}

type diskPayload struct {
	TotalBytes  uint64  `json:"totalBytes"`
	FreeBytes   uint64  `json:"freeBytes"`
	UsedPercent float64 `json:"usedPercent"`
}

// Status handles the health check request.
func (h *HealthHandler) Status(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{"status": "ok"}

	usage, err := disk.Usage(h.uploadDir)
	if err != nil {
		// The service is still serving; report health without disk figures.
		log.Warn().Err(err).Str("path", h.uploadDir).Msg("Failed to read disk usage for health check")
	} else {
		payload["disk"] = diskPayload{
			TotalBytes:  usage.Total,
			FreeBytes:   usage.Free,
			UsedPercent: usage.UsedPercent,
		}
	}

	writeJSON(w, http.StatusOK, payload)
}

// Index greets anyone hitting the service root.
func Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "hello everyone"})
}

// Hello greets the caller by name when one is given.
func Hello(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("user_name")
	if name == "" {
		name = "anon"
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("hello %s", name)})
}
