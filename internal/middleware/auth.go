package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/secondbrain/secondbrain/internal/auth"
	"github.com/secondbrain/secondbrain/internal/metrics"
)

// Authenticator verifies an Authorization header. auth.Gate implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (auth.Identity, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger  *slog.Logger
	Gate    Authenticator
	Metrics metrics.Recorder
}

// Auth returns a middleware that admits only requests carrying a valid
// session token for an existing identity. The verified identity is
// attached to the request context.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := cfg.Gate.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				if !auth.IsRejection(err) {
					cfg.Logger.Error("identity lookup failed",
						slog.String("error", err.Error()),
						slog.String("request_id", GetRequestID(r.Context())),
					)
					writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
					return
				}

				reason := rejectionReason(err)
				recorder.IncAuthFailure(reason)
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", reason),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			ctx := auth.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// rejectionReason maps a gate rejection to its log and metric label.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingCredential):
		return metrics.ReasonMissingToken
	case errors.Is(err, auth.ErrMalformedCredential):
		return metrics.ReasonMalformedHeader
	case errors.Is(err, auth.ErrUnknownIdentity):
		return metrics.ReasonUnknownIdentity
	default:
		return metrics.ReasonInvalidToken
	}
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Invalid or missing token")
}
