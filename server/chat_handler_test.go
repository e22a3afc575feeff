package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"WaveFM/model"
)

type stubChatRepo struct {
	messages []*model.ChatMessage
	getErr   error

	lastLimit int
	lastSince *time.Time

	created   *model.ChatMessage
	createErr error

	prunedKeep int
	pruneErr   error

	count    int64
	countErr error
}

func (s *stubChatRepo) CreateMessage(ctx context.Context, msg *model.ChatMessage) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = msg
	return nil
}

func (s *stubChatRepo) GetRecentMessages(ctx context.Context, limit int, since *time.Time) ([]*model.ChatMessage, error) {
	s.lastLimit = limit
	s.lastSince = since
	return s.messages, s.getErr
}

func (s *stubChatRepo) PruneMessages(ctx context.Context, keep int) (int64, error) {
	s.prunedKeep = keep
	return 0, s.pruneErr
}

func (s *stubChatRepo) CountMessages(ctx context.Context) (int64, error) {
	return s.count, s.countErr
}

func TestPostChatAppendsAndPrunes(t *testing.T) {
	chat := &stubChatRepo{}
	h := newTestHandler(nil, chat)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"username":"alice","message":"hi"}`))
	rec := httptest.NewRecorder()
	h.PostChatHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if chat.created == nil || chat.created.Username != "alice" || chat.created.Message != "hi" {
		t.Fatalf("unexpected created message: %+v", chat.created)
	}
	if chat.created.CreatedAt.IsZero() {
		t.Fatal("message timestamp was not set")
	}
	if chat.prunedKeep != 100 {
		t.Fatalf("prunedKeep = %d, want 100", chat.prunedKeep)
	}

	var resp map[string]bool
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp["success"] {
		t.Fatal("success = false")
	}
}

func TestPostChatMissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing username", `{"message":"hi"}`},
		{"missing message", `{"username":"alice"}`},
		{"blank fields", `{"username":"  ","message":" "}`},
		{"invalid json", `{"username":`},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			chat := &stubChatRepo{}
			h := newTestHandler(nil, chat)

			req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			h.PostChatHandler(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if chat.created != nil {
				t.Fatal("message must not be created on validation failure")
			}
		})
	}
}

func TestPostChatPruneFailureDoesNotFailPost(t *testing.T) {
	chat := &stubChatRepo{pruneErr: errors.New("prune broke")}
	h := newTestHandler(nil, chat)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"username":"alice","message":"hi"}`))
	rec := httptest.NewRecorder()
	h.PostChatHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; retention is best-effort", rec.Code)
	}
}

func TestGetChatDefaultPage(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	chat := &stubChatRepo{messages: []*model.ChatMessage{
		{ID: 1, Username: "alice", Message: "first", CreatedAt: at},
		{ID: 2, Username: "bob", Message: "second", CreatedAt: at.Add(time.Minute)},
	}}
	h := newTestHandler(nil, chat)

	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	rec := httptest.NewRecorder()
	h.GetChatHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if chat.lastLimit != 5 {
		t.Fatalf("lastLimit = %d, want 5", chat.lastLimit)
	}
	if chat.lastSince != nil {
		t.Fatalf("lastSince = %v, want nil", chat.lastSince)
	}

	var resp model.ChatHistoryResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Messages) != 2 || resp.Messages[0].Message != "first" {
		t.Fatalf("unexpected messages: %+v", resp.Messages)
	}
}

func TestGetChatSince(t *testing.T) {
	chat := &stubChatRepo{}
	h := newTestHandler(nil, chat)

	req := httptest.NewRequest(http.MethodGet, "/chat?since=2025-06-01T12:00:00Z", nil)
	rec := httptest.NewRecorder()
	h.GetChatHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if chat.lastSince == nil {
		t.Fatal("since was not forwarded to the repository")
	}
	want := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if !chat.lastSince.Equal(want) {
		t.Fatalf("since = %v, want %v", chat.lastSince, want)
	}

	// Empty result still serializes as an array, not null.
	if !strings.Contains(rec.Body.String(), `"messages":[]`) {
		t.Fatalf("body = %s, want empty messages array", rec.Body.String())
	}
}

func TestGetChatBadSince(t *testing.T) {
	h := newTestHandler(nil, &stubChatRepo{})

	req := httptest.NewRequest(http.MethodGet, "/chat?since=yesterday", nil)
	rec := httptest.NewRecorder()
	h.GetChatHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
