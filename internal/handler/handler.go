// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	domainerrors "github.com/secondbrain/secondbrain/internal/errors"
	"github.com/secondbrain/secondbrain/internal/handler/dto"
	"github.com/secondbrain/secondbrain/internal/middleware"
)

// errBodyTooLarge is returned by decodeJSON when the body limit is exceeded.
var errBodyTooLarge = errors.New("request body too large")

// Handler serves the router's fallback responses.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, string(domainerrors.CodeNotFound), "Resource not found", nil)
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes the standard error envelope.
func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: dto.ErrorBody{Code: code, Message: message, Details: details},
	})
}

// respondError maps a service error to an HTTP response. Anything that is
// not a domain error is treated as internal. Internal causes are logged
// and never sent to the client.
func respondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if errors.Is(err, errBodyTooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large", nil)
		return
	}

	var domainErr *domainerrors.Error
	if !errors.As(err, &domainErr) {
		domainErr = domainerrors.Internal(err)
	}

	if domainErr.Code == domainerrors.CodeInternal {
		logger.Error("internal_error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
	}

	writeError(w, domainErr.HTTPStatus(), string(domainErr.Code), domainErr.Message, domainErr.Details)
}

// decodeJSON decodes the request body into v. An empty body decodes as an
// empty object so that validation reports the missing fields. Anything
// after the first JSON value other than whitespace is rejected.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return bodyError(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return bodyError(err)
	}
	return nil
}

func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errBodyTooLarge
	}
	return domainerrors.InvalidInput("Invalid request body")
}

// decodeInput decodes a request DTO and converts it to service input.
func decodeInput[R interface{ Input() I }, I any](r *http.Request) (I, error) {
	var req R
	if err := decodeJSON(r, &req); err != nil {
		var zero I
		return zero, err
	}
	return req.Input(), nil
}
