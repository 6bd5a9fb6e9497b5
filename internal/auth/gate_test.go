package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubUsers struct {
	ids   map[string]bool
	err   error
	calls int
}

func (s *stubUsers) UserExists(_ context.Context, id string) (bool, error) {
	s.calls++
	if s.err != nil {
		return false, s.err
	}
	return s.ids[id], nil
}

func TestParseBearer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{"valid", "Bearer abc.def", "abc.def", nil},
		{"empty", "", "", ErrMissingCredential},
		{"basic scheme", "Basic abc", "", ErrMalformedCredential},
		{"lowercase scheme", "bearer abc", "", ErrMalformedCredential},
		{"scheme only", "Bearer", "", ErrMalformedCredential},
		{"empty token", "Bearer ", "", ErrMalformedCredential},
		{"two tokens", "Bearer abc def", "", ErrMalformedCredential},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseBearer(tt.header)
			if err != tt.wantErr {
				t.Fatalf("ParseBearer(%q) error = %v, want %v", tt.header, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseBearer(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestGate_Authenticate(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, time.Hour)
	token, err := codec.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	orphan, err := codec.Issue("user-deleted")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	users := &stubUsers{ids: map[string]bool{"user-1": true}}
	gate := NewGate(codec, users)

	id, err := gate.Authenticate(context.Background(), "Bearer "+token)
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if id.UserID() != "user-1" {
		t.Errorf("UserID = %q, want user-1", id.UserID())
	}
	if users.calls != 1 {
		t.Errorf("expected exactly one lookup, got %d", users.calls)
	}

	rejections := []struct {
		name    string
		header  string
		wantErr error
	}{
		{"missing", "", ErrMissingCredential},
		{"malformed", "Token " + token, ErrMalformedCredential},
		{"bad token", "Bearer not-a-token", ErrInvalidToken},
		{"deleted identity", "Bearer " + orphan, ErrUnknownIdentity},
	}

	for _, tt := range rejections {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gate.Authenticate(context.Background(), tt.header)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Authenticate error = %v, want %v", err, tt.wantErr)
			}
			if !IsRejection(err) {
				t.Errorf("IsRejection(%v) = false, want true", err)
			}
		})
	}
}

func TestGate_StorageFailureIsNotRejection(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, time.Hour)
	token, err := codec.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	storageErr := errors.New("connection reset")
	gate := NewGate(codec, &stubUsers{err: storageErr})

	_, err = gate.Authenticate(context.Background(), "Bearer "+token)
	if !errors.Is(err, storageErr) {
		t.Fatalf("Authenticate error = %v, want wrapped storage error", err)
	}
	if IsRejection(err) {
		t.Error("storage failure should not be treated as a rejection")
	}
}

func TestIdentityContext(t *testing.T) {
	t.Parallel()

	if _, ok := IdentityFromContext(context.Background()); ok {
		t.Error("empty context should carry no identity")
	}
	if UserIDFromContext(context.Background()) != "" {
		t.Error("empty context should yield empty user id")
	}

	ctx := ContextWithIdentity(context.Background(), Identity{userID: "user-9"})
	id, ok := IdentityFromContext(ctx)
	if !ok || id.UserID() != "user-9" {
		t.Errorf("IdentityFromContext = (%v, %v), want user-9", id, ok)
	}
}
