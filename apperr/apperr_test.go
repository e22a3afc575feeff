package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("missing title"), http.StatusBadRequest},
		{"not found", NotFound("song not found"), http.StatusNotFound},
		{"storage", Storage("insert failed", errors.New("duplicate key")), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("handler: %w", NotFound("gone")), http.StatusNotFound},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := HTTPStatus(tc.err); got != tc.want {
				t.Fatalf("HTTPStatus = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestMessageHidesStorageDetail(t *testing.T) {
	err := Storage("Failed to save song", errors.New("table is on fire"))
	if msg := Message(err); msg != "Failed to save song" {
		t.Fatalf("Message = %q", msg)
	}
	// The cause stays reachable for the logs.
	if !errors.Is(err, err.Err) {
		t.Fatal("cause not wrapped")
	}
}

func TestMessageGenericForUnknownErrors(t *testing.T) {
	if msg := Message(errors.New("secret detail")); msg != "internal server error" {
		t.Fatalf("Message = %q", msg)
	}
}
