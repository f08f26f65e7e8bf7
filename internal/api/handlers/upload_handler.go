package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/polinaozhigova/eqmon-be/internal/models"
	"github.com/polinaozhigova/eqmon-be/internal/services"
	"github.com/rs/zerolog/log"
)

// UploadHandler handles HTTP requests for file uploads and catalog queries.
type UploadHandler struct {
	service services.UploadServiceProvider
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(service services.UploadServiceProvider) *UploadHandler {
	return &UploadHandler{service: service}
}

// uploadPayload is the response shape for one catalog entry. Period bounds
// are serialized as DD.MM.YYYY on every endpoint, matching the upload form.
type uploadPayload struct {
	ID        int64  `json:"id"`
	Filename  string `json:"filename"`
	FilePath  string `json:"filePath"`
	DateStart string `json:"dateStart"`
	DateEnd   string `json:"dateEnd"`
	DataType  string `json:"dataType"`
	UserID    int64  `json:"userId"`
}

const maxUploadMemory = 32 << 20 // 32MB before multipart spills to disk

// Upload handles a multipart data file upload.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		http.Error(w, "Invalid multipart request", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	result, err := h.service.Upload(services.UploadRequest{
		Filename:  header.Filename,
		File:      file,
		DateStart: r.FormValue("date_start"),
		DateEnd:   r.FormValue("date_end"),
		DataType:  r.FormValue("data_type"),
		Email:     r.FormValue("email"),
	})
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Str("filename", header.Filename).Msg("Failed to process upload")
		http.Error(w, "Failed to process upload", http.StatusInternalServerError)
		return
	}

	if result.AlreadyUploaded {
		writeJSON(w, http.StatusOK, map[string]string{"message": "file already uploaded"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "file uploaded successfully"})
}

// SearchByDate returns the records whose period lies inside the query range.
func (h *UploadHandler) SearchByDate(w http.ResponseWriter, r *http.Request) {
	dateStart, err := time.Parse(models.DateFormat, r.URL.Query().Get("date_start"))
	if err != nil {
		http.Error(w, "date_start must be in DD.MM.YYYY format", http.StatusBadRequest)
		return
	}
	dateEnd, err := time.Parse(models.DateFormat, r.URL.Query().Get("date_end"))
	if err != nil {
		http.Error(w, "date_end must be in DD.MM.YYYY format", http.StatusBadRequest)
		return
	}

	uploads, err := h.service.SearchByDate(dateStart, dateEnd)
	if err != nil {
		log.Error().Err(err).Msg("Failed to search uploads by date")
		http.Error(w, "Failed to search uploads", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toUploadPayloads(uploads))
}

// LatestData returns the most recent record of every user.
func (h *UploadHandler) LatestData(w http.ResponseWriter, r *http.Request) {
	uploads, err := h.service.LatestPerUser()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get latest uploads")
		http.Error(w, "Failed to get latest uploads", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toUploadPayloads(uploads))
}

func toUploadPayloads(uploads []models.Upload) []uploadPayload {
	payloads := make([]uploadPayload, 0, len(uploads))
	for _, u := range uploads {
		payloads = append(payloads, uploadPayload{
			ID:        u.ID,
			Filename:  u.Filename,
			FilePath:  u.FilePath,
			DateStart: u.DateStart.Format(models.DateFormat),
			DateEnd:   u.DateEnd.Format(models.DateFormat),
			DataType:  u.DataType,
			UserID:    u.UserID,
		})
	}
	return payloads
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
