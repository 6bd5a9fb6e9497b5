package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	domainerrors "github.com/secondbrain/secondbrain/internal/errors"
	"github.com/secondbrain/secondbrain/internal/handler/dto"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorBody {
	t.Helper()
	var response dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return response.Error
}

func TestHandler_NotFound(t *testing.T) {
	h := New()

	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	rec := httptest.NewRecorder()

	h.NotFound(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}

	contentType := rec.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", contentType)
	}

	if body := decodeError(t, rec); body.Code != "NOT_FOUND" {
		t.Errorf("unexpected error code: %s", body.Code)
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h := New()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()

	h.MethodNotAllowed(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", rec.Code)
	}

	if body := decodeError(t, rec); body.Code != "METHOD_NOT_ALLOWED" {
		t.Errorf("unexpected error code: %s", body.Code)
	}
}

func TestRespondError_MapsDomainErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid input", domainerrors.InvalidInput("bad"), http.StatusBadRequest, "INVALID_INPUT"},
		{"unauthenticated", domainerrors.Unauthenticated("Invalid credentials"), http.StatusUnauthorized, "UNAUTHENTICATED"},
		{"conflict", domainerrors.Conflict("Email already in use"), http.StatusConflict, "CONFLICT"},
		{"not found", domainerrors.NotFound("Note not found"), http.StatusNotFound, "NOT_FOUND"},
		{"internal", domainerrors.Internal(errors.New("boom")), http.StatusInternalServerError, "INTERNAL"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
		{"body too large", errBodyTooLarge, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()

			respondError(rec, req, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), tt.err)

			if rec.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rec.Code)
			}
			if body := decodeError(t, rec); body.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, body.Code)
			}
		})
	}
}

func TestRespondError_InternalCauseIsLoggedNotSent(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	rec := httptest.NewRecorder()

	respondError(rec, req, logger, domainerrors.Internal(errors.New("pq: relation \"notes\" does not exist")))

	if strings.Contains(rec.Body.String(), "relation") {
		t.Errorf("cause leaked to client: %s", rec.Body.String())
	}
	if !strings.Contains(logs.String(), "relation") {
		t.Errorf("cause missing from logs: %s", logs.String())
	}
}

func TestRespondError_IncludesDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/notes", nil)
	rec := httptest.NewRecorder()

	respondError(rec, req, slog.Default(), domainerrors.InvalidInputWithDetails("validation failed", map[string]string{"title": "is required"}))

	body := decodeError(t, rec)
	details, ok := body.Details.(map[string]any)
	if !ok {
		t.Fatalf("expected details object, got %T", body.Details)
	}
	if details["title"] != "is required" {
		t.Errorf("unexpected details: %v", details)
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Title string `json:"title"`
	}

	t.Run("empty body decodes as empty object", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		var p payload
		if err := decodeJSON(req, &p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("malformed body is invalid input", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
		var p payload
		err := decodeJSON(req, &p)
		if !errors.Is(err, domainerrors.ErrInvalidInput) {
			t.Fatalf("expected invalid input, got %v", err)
		}
	})

	t.Run("trailing data is invalid input", func(t *testing.T) {
		for _, body := range []string{`{"title":"a"}junk`, `{"title":"a"}{"title":"b"}`, `{"title":"a"}}`} {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
			var p payload
			err := decodeJSON(req, &p)
			if !errors.Is(err, domainerrors.ErrInvalidInput) {
				t.Fatalf("body %q: expected invalid input, got %v", body, err)
			}
		}
	})

	t.Run("trailing whitespace is accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{\"title\":\"a\"}\n\t "))
		var p payload
		if err := decodeJSON(req, &p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Title != "a" {
			t.Errorf("title = %q, want %q", p.Title, "a")
		}
	})

	t.Run("oversized body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"`+strings.Repeat("a", 64)+`"}`))
		rec := httptest.NewRecorder()
		req.Body = http.MaxBytesReader(rec, req.Body, 16)
		var p payload
		if err := decodeJSON(req, &p); !errors.Is(err, errBodyTooLarge) {
			t.Fatalf("expected errBodyTooLarge, got %v", err)
		}
	})
}
