package handler

import (
	"log/slog"
	"net/http"

	"github.com/avivros/maagan/internal/auth"
	"github.com/avivros/maagan/internal/model"
	"github.com/avivros/maagan/internal/service"
)

type TherapistHandler struct {
	therapists *service.TherapistService
	logger     *slog.Logger
}

func NewTherapistHandler(therapists *service.TherapistService, logger *slog.Logger) *TherapistHandler {
	return &TherapistHandler{therapists: therapists, logger: logger}
}

func (h *TherapistHandler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	therapists, err := h.therapists.List(p)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if therapists == nil {
		therapists = []model.TherapistProfile{}
	}
	writeJSON(w, http.StatusOK, therapists)
}

func (h *TherapistHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid therapist id")
		return
	}
	t, err := h.therapists.Get(p, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TherapistHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	var in service.CreateTherapistInput
	if !decodeJSON(w, r, &in) {
		return
	}
	created, err := h.therapists.Create(p, in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *TherapistHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid therapist id")
		return
	}
	var in service.UpdateTherapistInput
	if !decodeJSON(w, r, &in) {
		return
	}
	updated, err := h.therapists.Update(p, id, in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *TherapistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid therapist id")
		return
	}
	if err := h.therapists.Delete(p, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
