package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"WaveFM/apperr"
	"WaveFM/logger"
	"WaveFM/model"
	"WaveFM/repository"
	"WaveFM/storage"

	"github.com/gorilla/mux"
)

const (
	maxUploadSize    = 100 << 20 // 100MB
	maxThumbnailSize = 10 << 20  // 10MB
	uploadTimeout    = 2 * time.Minute

	defaultSearchLimit = 50
	defaultSortColumn  = "play_count"
)

// blobObjectName builds the collision-resistant object name for a blob:
// upload-time millis plus the original base filename.
func blobObjectName(now time.Time, originalName string) string {
	return fmt.Sprintf("%d_%s", now.UnixMilli(), filepath.Base(originalName))
}

// UploadSongHandler handles audio file uploads and metadata.
//
// Ordering matters: blobs are written before the metadata row so a row never
// points at content that was not stored. A crash in between leaves an
// orphaned blob, not a broken row.
func (h *APIHandler) UploadSongHandler(w http.ResponseWriter, r *http.Request) {
	logger.Info("processing upload request",
		logger.String("remoteAddr", r.RemoteAddr),
		logger.Int64("contentLength", r.ContentLength),
	)

	if r.ContentLength > maxUploadSize {
		respondError(w, apperr.Validation(fmt.Sprintf("Request too large. Maximum size is %d MB", maxUploadSize>>20)))
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		logger.Error("failed to parse upload form", logger.ErrorField(err))
		respondError(w, apperr.Validation("Failed to parse upload form"))
		return
	}

	title := r.FormValue("title")
	songFile, songHeader, err := r.FormFile("file")
	if err != nil {
		respondError(w, apperr.Validation("Missing title or file"))
		return
	}
	defer songFile.Close()
	if title == "" {
		respondError(w, apperr.Validation("Missing title or file"))
		return
	}

	artist := r.FormValue("artist")
	if artist == "" {
		artist = model.DefaultArtist
	}

	if songHeader.Size > maxUploadSize {
		respondError(w, apperr.Validation(fmt.Sprintf("File too large. Maximum size is %d MB", maxUploadSize>>20)))
		return
	}
	contentType := songHeader.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = "audio/mpeg"
	}
	if !strings.HasPrefix(contentType, "audio/") {
		respondError(w, apperr.Validation("Invalid file type. Only audio uploads are accepted."))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), uploadTimeout)
	defer cancel()

	// Bucket checks are best-effort; a genuinely unusable bucket makes the
	// upload itself fail right after.
	if err := h.blobs.EnsureBucket(ctx, h.cfg.SongBucket); err != nil {
		logger.Warn("bucket check failed", logger.String("bucket", h.cfg.SongBucket), logger.ErrorField(err))
	}
	if err := h.blobs.EnsureBucket(ctx, h.cfg.ThumbnailBucket); err != nil {
		logger.Warn("bucket check failed", logger.String("bucket", h.cfg.ThumbnailBucket), logger.ErrorField(err))
	}

	now := time.Now()
	audioObject := blobObjectName(now, songHeader.Filename)
	if _, err := h.blobs.UploadObject(ctx, h.cfg.SongBucket, audioObject, songFile, songHeader.Size, contentType); err != nil {
		respondError(w, apperr.Storage("Failed to store audio file", err))
		return
	}
	audioURL := storage.PublicURL(h.cfg, h.cfg.SongBucket, audioObject)
	logger.Info("audio blob stored",
		logger.String("object", audioObject),
		logger.Int64("size", songHeader.Size))

	// Thumbnail failures degrade to a song without cover art; they never
	// fail the upload.
	var thumbnailURL *string
	thumbFile, thumbHeader, err := r.FormFile("thumbnail")
	switch {
	case err == nil:
		defer thumbFile.Close()
		thumbType := thumbHeader.Header.Get("Content-Type")
		if thumbType == "" {
			thumbType = "image/jpeg"
		}
		if thumbHeader.Size > maxThumbnailSize || !strings.HasPrefix(thumbType, "image/") {
			logger.Warn("thumbnail rejected",
				logger.Int64("size", thumbHeader.Size),
				logger.String("contentType", thumbType))
			break
		}
		thumbObject := blobObjectName(now, thumbHeader.Filename)
		if _, err := h.blobs.UploadObject(ctx, h.cfg.ThumbnailBucket, thumbObject, thumbFile, thumbHeader.Size, thumbType); err != nil {
			logger.Error("thumbnail upload failed", logger.ErrorField(err))
			break
		}
		url := storage.PublicURL(h.cfg, h.cfg.ThumbnailBucket, thumbObject)
		thumbnailURL = &url
	case err != http.ErrMissingFile:
		logger.Warn("failed to read thumbnail from form", logger.ErrorField(err))
	}

	song := &model.Song{
		Title:        title,
		Artist:       artist,
		FileURL:      audioURL,
		ThumbnailURL: thumbnailURL,
		PlayCount:    0,
		CreatedAt:    now.UTC(),
	}
	if _, err := h.songRepo.CreateSong(song); err != nil {
		// Compensate for the blob written above; the row never existed.
		if rmErr := h.blobs.RemoveObject(ctx, h.cfg.SongBucket, audioObject); rmErr != nil {
			logger.Error("failed to remove orphaned audio blob",
				logger.String("object", audioObject),
				logger.ErrorField(rmErr))
		}
		respondError(w, apperr.Storage("Failed to save song", err))
		return
	}

	respondJSON(w, http.StatusOK, model.UploadResponse{
		Message:      "Song uploaded successfully!",
		AudioURL:     audioURL,
		ThumbnailURL: thumbnailURL,
	})
}

// GetSongsHandler returns the leaderboard: every song, most played first.
func (h *APIHandler) GetSongsHandler(w http.ResponseWriter, r *http.Request) {
	songs, err := h.songRepo.GetAllSongsByPlayCount()
	if err != nil {
		respondError(w, apperr.Storage("Failed to fetch songs", err))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"songs": songs})
}

// SearchSongsHandler filters, sorts and paginates the song catalog.
func (h *APIHandler) SearchSongsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	sortBy := q.Get("sortBy")
	if sortBy == "" {
		sortBy = defaultSortColumn
	}
	if !repository.IsSortableColumn(sortBy) {
		respondError(w, apperr.Validation(fmt.Sprintf("Invalid sort column %q", sortBy)))
		return
	}

	sortDesc := !strings.EqualFold(q.Get("sortOrder"), "asc")

	limit := defaultSearchLimit
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		limit = v
	}
	offset := 0
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		offset = v
	}

	filter := model.SongFilter{
		Artist:   q.Get("artist"),
		Title:    q.Get("title"),
		SortBy:   sortBy,
		SortDesc: sortDesc,
		Limit:    limit,
		Offset:   offset,
	}

	songs, count, err := h.songRepo.SearchSongs(filter)
	if err != nil {
		respondError(w, apperr.Storage("Failed to search songs", err))
		return
	}

	respondJSON(w, http.StatusOK, model.SearchResponse{
		Songs:   songs,
		Count:   count,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+limit) < count,
	})
}

// GetSongHandler returns one song by ID.
func (h *APIHandler) GetSongHandler(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		respondError(w, apperr.Validation("Missing song ID"))
		return
	}

	song, err := h.songRepo.GetSongByID(id)
	if err != nil {
		respondError(w, apperr.Storage("Failed to fetch song details", err))
		return
	}
	if song == nil {
		respondError(w, apperr.NotFound("Song not found"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"song": song})
}

// PlayHandler records one play of a song.
func (h *APIHandler) PlayHandler(w http.ResponseWriter, r *http.Request) {
	var req model.PlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SongID == 0 {
		respondError(w, apperr.Validation("Missing songId"))
		return
	}

	newCount, err := h.songRepo.IncrementPlayCount(req.SongID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, apperr.NotFound("Song not found"))
			return
		}
		respondError(w, apperr.Storage("Failed to update play count", err))
		return
	}

	logger.Info("play recorded",
		logger.Int64("songId", req.SongID),
		logger.Int64("newCount", newCount))
	respondJSON(w, http.StatusOK, model.PlayResponse{
		Message:  "Play count updated",
		NewCount: newCount,
	})
}
