package handler

import (
	"log/slog"
	"net/http"

	"github.com/secondbrain/secondbrain/internal/handler/dto"
	"github.com/secondbrain/secondbrain/internal/service"
)

// AuthHandler handles registration, login and the caller's profile.
type AuthHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register handles POST /auth/register and POST /auth/signup.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	session, err := h.svc.Register(r.Context(), req.RegisterInput())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	h.logger.Info("user_registered", slog.String("user_id", session.User.ID))

	writeJSON(w, http.StatusCreated, dto.ToAuthResponse(session))
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	session, err := h.svc.Login(r.Context(), req.LoginInput())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToAuthResponse(session))
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Me(r.Context(), identity(r))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}
