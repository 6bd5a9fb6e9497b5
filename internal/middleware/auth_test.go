package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/secondbrain/secondbrain/internal/auth"
	"github.com/secondbrain/secondbrain/internal/metrics"
)

type stubUsers struct {
	known map[string]bool
	err   error
}

func (s stubUsers) UserExists(_ context.Context, id string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.known[id], nil
}

func newCodec(t *testing.T) *auth.TokenCodec {
	t.Helper()
	codec, err := auth.NewTokenCodec(paseto.NewV4SymmetricKey().ExportHex(), time.Hour)
	if err != nil {
		t.Fatalf("NewTokenCodec failed: %v", err)
	}
	return codec
}

func issue(t *testing.T, codec *auth.TokenCodec, userID string) string {
	t.Helper()
	token, err := codec.Issue(userID)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	return token
}

const wantAuthBody = `{"error":{"code":"UNAUTHENTICATED","message":"Invalid or missing token"}}`

func TestAuth_Rejections(t *testing.T) {
	codec := newCodec(t)
	otherCodec := newCodec(t)
	users := stubUsers{known: map[string]bool{"alice": true}}

	expired := issue(t, codec.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }), "alice")

	tests := []struct {
		name       string
		header     string
		wantReason string
	}{
		{"missing header", "", metrics.ReasonMissingToken},
		{"wrong scheme", "Basic abc", metrics.ReasonMalformedHeader},
		{"bearer without token", "Bearer ", metrics.ReasonMalformedHeader},
		{"garbage token", "Bearer not-a-token", metrics.ReasonInvalidToken},
		{"token from another key", "Bearer " + issue(t, otherCodec, "alice"), metrics.ReasonInvalidToken},
		{"expired token", "Bearer " + expired, metrics.ReasonInvalidToken},
		{"deleted identity", "Bearer " + issue(t, codec, "ghost"), metrics.ReasonUnknownIdentity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			rec := metrics.NewInMemory()
			called := false

			handler := Auth(AuthConfig{
				Logger:  slog.New(slog.NewJSONHandler(&logs, nil)),
				Gate:    auth.NewGate(codec, users),
				Metrics: rec,
			})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/notes", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if called {
				t.Fatal("next handler must not run for rejected requests")
			}
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
			if got := strings.TrimSpace(w.Body.String()); got != wantAuthBody {
				t.Errorf("body = %s, want %s", got, wantAuthBody)
			}
			if got := rec.Snapshot().AuthFailures[tt.wantReason]; got != 1 {
				t.Errorf("auth failures[%s] = %d, want 1", tt.wantReason, got)
			}
			if !strings.Contains(logs.String(), `"reason":"`+tt.wantReason+`"`) {
				t.Errorf("log missing reason %s: %s", tt.wantReason, logs.String())
			}
		})
	}
}

func TestAuth_AttachesIdentity(t *testing.T) {
	codec := newCodec(t)

	var got auth.Identity
	handler := Auth(AuthConfig{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Gate:   auth.NewGate(codec, stubUsers{known: map[string]bool{"alice": true}}),
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, codec, "alice"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if got.UserID() != "alice" {
		t.Errorf("identity = %q, want alice", got.UserID())
	}
}

func TestAuth_StorageFailureIs500(t *testing.T) {
	codec := newCodec(t)

	handler := Auth(AuthConfig{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Gate:   auth.NewGate(codec, stubUsers{err: errors.New("connection refused")}),
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, codec, "alice"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "connection refused") {
		t.Error("storage error must not leak to the client")
	}
}
