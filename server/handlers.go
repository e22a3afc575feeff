package server

import (
	"encoding/json"
	"net/http"

	"WaveFM/apperr"
	"WaveFM/config"
	"WaveFM/logger"
	"WaveFM/repository"
	"WaveFM/storage"
)

// APIHandler handles all API requests.
type APIHandler struct {
	songRepo repository.SongRepository
	chatRepo repository.ChatRepository
	blobs    storage.BlobStore
	cfg      *config.Config
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(
	songRepo repository.SongRepository,
	chatRepo repository.ChatRepository,
	blobs storage.BlobStore,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		songRepo: songRepo,
		chatRepo: chatRepo,
		blobs:    blobs,
		cfg:      cfg,
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", logger.ErrorField(err))
	}
}

// respondError maps an error to its status and writes the JSON error body.
// Storage failures keep their detail in the logs, not the response.
func respondError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status >= 500 {
		logger.Error("request failed", logger.ErrorField(err))
	} else {
		logger.Warn("request rejected", logger.ErrorField(err))
	}
	respondJSON(w, status, map[string]string{"error": apperr.Message(err)})
}
