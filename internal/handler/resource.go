package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/secondbrain/secondbrain/internal/auth"
	domainerrors "github.com/secondbrain/secondbrain/internal/errors"
	"github.com/secondbrain/secondbrain/internal/handler/dto"
	"github.com/secondbrain/secondbrain/internal/model"
	"github.com/secondbrain/secondbrain/internal/service"
)

// ResourceCodec translates between HTTP bodies and one entity kind.
type ResourceCodec[T, C, P any] struct {
	DecodeCreate func(*http.Request) (C, error)
	DecodePatch  func(*http.Request) (P, error)
	ID           func(*T) string
	Present      func(entity *T, now time.Time) any
}

// ResourceHandler serves create, list, get, update and delete for one
// entity kind on behalf of the verified caller.
type ResourceHandler[T, C, P any] struct {
	svc    *service.ResourceService[T, C, P]
	codec  ResourceCodec[T, C, P]
	logger *slog.Logger
	now    func() time.Time
}

// NewResourceHandler creates a new ResourceHandler.
func NewResourceHandler[T, C, P any](svc *service.ResourceService[T, C, P], codec ResourceCodec[T, C, P], logger *slog.Logger) *ResourceHandler[T, C, P] {
	return &ResourceHandler[T, C, P]{
		svc:    svc,
		codec:  codec,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// NoteHandler serves /notes.
type NoteHandler = ResourceHandler[model.Note, service.CreateNoteInput, service.UpdateNoteInput]

// LinkHandler serves /links.
type LinkHandler = ResourceHandler[model.Link, service.CreateLinkInput, service.UpdateLinkInput]

// TaskHandler serves /tasks.
type TaskHandler = ResourceHandler[model.Task, service.CreateTaskInput, service.UpdateTaskInput]

// NewNoteHandler creates the notes handler.
func NewNoteHandler(svc *service.NoteService, logger *slog.Logger) *NoteHandler {
	return NewResourceHandler(svc, ResourceCodec[model.Note, service.CreateNoteInput, service.UpdateNoteInput]{
		DecodeCreate: decodeInput[dto.CreateNoteRequest, service.CreateNoteInput],
		DecodePatch:  decodeInput[dto.UpdateNoteRequest, service.UpdateNoteInput],
		ID:           func(n *model.Note) string { return n.ID },
		Present:      func(n *model.Note, _ time.Time) any { return n },
	}, logger)
}

// NewLinkHandler creates the links handler.
func NewLinkHandler(svc *service.LinkService, logger *slog.Logger) *LinkHandler {
	return NewResourceHandler(svc, ResourceCodec[model.Link, service.CreateLinkInput, service.UpdateLinkInput]{
		DecodeCreate: decodeInput[dto.CreateLinkRequest, service.CreateLinkInput],
		DecodePatch:  decodeInput[dto.UpdateLinkRequest, service.UpdateLinkInput],
		ID:           func(l *model.Link) string { return l.ID },
		Present:      func(l *model.Link, _ time.Time) any { return l },
	}, logger)
}

// NewTaskHandler creates the tasks handler. Tasks are presented with
// their overdue flag.
func NewTaskHandler(svc *service.TaskService, logger *slog.Logger) *TaskHandler {
	return NewResourceHandler(svc, ResourceCodec[model.Task, service.CreateTaskInput, service.UpdateTaskInput]{
		DecodeCreate: decodeInput[dto.CreateTaskRequest, service.CreateTaskInput],
		DecodePatch:  decodeInput[dto.UpdateTaskRequest, service.UpdateTaskInput],
		ID:           func(t *model.Task) string { return t.ID },
		Present:      func(t *model.Task, now time.Time) any { return dto.ToTaskResponse(t, now) },
	}, logger)
}

// Routes mounts the handler on r. PUT and PATCH are both partial updates.
// The trailing-slash routes exist so a missing id is INVALID_INPUT rather
// than a routing 404/405.
func (h *ResourceHandler[T, C, P]) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Put("/", h.MissingID)
	r.Patch("/", h.MissingID)
	r.Delete("/", h.MissingID)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// Create handles POST /{kind}.
func (h *ResourceHandler[T, C, P]) Create(w http.ResponseWriter, r *http.Request) {
	in, err := h.codec.DecodeCreate(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	entity, err := h.svc.Create(r.Context(), identity(r), in)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	h.logger.Info(h.svc.Name()+"_created",
		slog.String("id", h.codec.ID(entity)),
		slog.String("user_id", auth.UserIDFromContext(r.Context())),
	)

	writeJSON(w, http.StatusCreated, h.codec.Present(entity, h.now()))
}

// List handles GET /{kind}.
func (h *ResourceHandler[T, C, P]) List(w http.ResponseWriter, r *http.Request) {
	entities, err := h.svc.List(r.Context(), identity(r))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	now := h.now()
	out := make([]any, 0, len(entities))
	for _, e := range entities {
		out = append(out, h.codec.Present(e, now))
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /{kind}/{id}.
func (h *ResourceHandler[T, C, P]) Get(w http.ResponseWriter, r *http.Request) {
	entity, err := h.svc.Get(r.Context(), identity(r), pathID(r))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.codec.Present(entity, h.now()))
}

// Update handles PUT and PATCH /{kind}/{id}.
func (h *ResourceHandler[T, C, P]) Update(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == "" {
		h.MissingID(w, r)
		return
	}

	in, err := h.codec.DecodePatch(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	entity, err := h.svc.Update(r.Context(), identity(r), id, in)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	h.logger.Info(h.svc.Name()+"_updated",
		slog.String("id", id),
		slog.String("user_id", auth.UserIDFromContext(r.Context())),
	)

	writeJSON(w, http.StatusOK, h.codec.Present(entity, h.now()))
}

// Delete handles DELETE /{kind}/{id}.
func (h *ResourceHandler[T, C, P]) Delete(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if err := h.svc.Delete(r.Context(), identity(r), id); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	h.logger.Info(h.svc.Name()+"_deleted",
		slog.String("id", id),
		slog.String("user_id", auth.UserIDFromContext(r.Context())),
	)

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: h.svc.Label() + " deleted"})
}

// MissingID rejects id-addressed requests that carry no id.
func (h *ResourceHandler[T, C, P]) MissingID(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, h.logger, domainerrors.InvalidInputWithDetails("validation failed", map[string]string{"id": "is required"}))
}

func identity(r *http.Request) auth.Identity {
	id, _ := auth.IdentityFromContext(r.Context())
	return id
}

func pathID(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "id"))
}
