package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"WaveFM/apperr"
	"WaveFM/logger"
	"WaveFM/model"
)

// parseSince accepts RFC 3339 timestamps with or without sub-second precision.
func parseSince(raw string) (*time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, apperr.Validation("Invalid 'since' timestamp")
}

// GetChatHandler returns the newest messages, oldest-first. With ?since= it
// returns only messages newer than that timestamp. Clients poll this every
// few seconds; there is no push channel.
func (h *APIHandler) GetChatHandler(w http.ResponseWriter, r *http.Request) {
	var since *time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := parseSince(raw)
		if err != nil {
			respondError(w, err)
			return
		}
		since = parsed
	}

	messages, err := h.chatRepo.GetRecentMessages(r.Context(), h.cfg.ChatPageSize, since)
	if err != nil {
		respondError(w, apperr.Storage("Failed to fetch messages", err))
		return
	}
	if messages == nil {
		messages = []*model.ChatMessage{}
	}
	respondJSON(w, http.StatusOK, model.ChatHistoryResponse{Messages: messages})
}

// PostChatHandler appends a message and prunes the history down to the
// retention window. Pruning is best-effort: a failed prune never fails the
// post and the next post corrects it.
func (h *APIHandler) PostChatHandler(w http.ResponseWriter, r *http.Request) {
	var req model.ChatPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperr.Validation("Username and message are required"))
		return
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Message) == "" {
		respondError(w, apperr.Validation("Username and message are required"))
		return
	}

	msg := &model.ChatMessage{
		Username:  req.Username,
		Message:   req.Message,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.chatRepo.CreateMessage(r.Context(), msg); err != nil {
		respondError(w, apperr.Storage("Failed to post message", err))
		return
	}

	if pruned, err := h.chatRepo.PruneMessages(r.Context(), h.cfg.ChatHistoryLimit); err != nil {
		logger.Error("chat prune failed", logger.ErrorField(err))
	} else if pruned > 0 {
		logger.Info("chat history pruned", logger.Int64("deleted", pruned))
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
