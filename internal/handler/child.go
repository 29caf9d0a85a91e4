package handler

import (
	"log/slog"
	"net/http"

	"github.com/avivros/maagan/internal/auth"
	"github.com/avivros/maagan/internal/model"
	"github.com/avivros/maagan/internal/service"
)

type ChildHandler struct {
	children *service.ChildService
	logger   *slog.Logger
}

func NewChildHandler(children *service.ChildService, logger *slog.Logger) *ChildHandler {
	return &ChildHandler{children: children, logger: logger}
}

func (h *ChildHandler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	children, err := h.children.List(p)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if children == nil {
		children = []model.Child{}
	}
	writeJSON(w, http.StatusOK, children)
}

func (h *ChildHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid child id")
		return
	}
	c, err := h.children.Get(p, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ChildHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	var c model.Child
	if !decodeJSON(w, r, &c) {
		return
	}
	created, err := h.children.Create(p, &c)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ChildHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid child id")
		return
	}
	var c model.Child
	if !decodeJSON(w, r, &c) {
		return
	}
	updated, err := h.children.Update(p, id, &c)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ChildHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid child id")
		return
	}
	if err := h.children.Delete(p, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
