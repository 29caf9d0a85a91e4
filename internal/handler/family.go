package handler

import (
	"log/slog"
	"net/http"

	"github.com/avivros/maagan/internal/auth"
	"github.com/avivros/maagan/internal/model"
	"github.com/avivros/maagan/internal/service"
)

const maxUploadBytes = 20 << 20

type FamilyHandler struct {
	families  *service.FamilyService
	children  *service.ChildService
	documents *service.DocumentService
	logger    *slog.Logger
}

func NewFamilyHandler(families *service.FamilyService, children *service.ChildService, documents *service.DocumentService, logger *slog.Logger) *FamilyHandler {
	return &FamilyHandler{families: families, children: children, documents: documents, logger: logger}
}

func (h *FamilyHandler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	families, err := h.families.List(p)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if families == nil {
		families = []model.Family{}
	}
	writeJSON(w, http.StatusOK, families)
}

func (h *FamilyHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid family id")
		return
	}
	f, err := h.families.Get(p, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *FamilyHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	var f model.Family
	if !decodeJSON(w, r, &f) {
		return
	}
	created, err := h.families.Create(p, &f)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *FamilyHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid family id")
		return
	}
	var f model.Family
	if !decodeJSON(w, r, &f) {
		return
	}
	updated, err := h.families.Update(p, id, &f)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *FamilyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid family id")
		return
	}
	if err := h.families.Delete(p, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FamilyHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid family id")
		return
	}
	children, err := h.children.ListByFamily(p, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if children == nil {
		children = []model.Child{}
	}
	writeJSON(w, http.StatusOK, children)
}

func (h *FamilyHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid family id")
		return
	}
	docs, err := h.documents.ListByFamily(p, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if docs == nil {
		docs = []model.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

// UploadConsentForm accepts a multipart upload under the "file" field.
func (h *FamilyHandler) UploadConsentForm(w http.ResponseWriter, r *http.Request) {
	h.uploadForm(w, r, h.families.AttachConsentForm)
}

// UploadWaiver accepts the confidentiality waiver upload.
func (h *FamilyHandler) UploadWaiver(w http.ResponseWriter, r *http.Request) {
	h.uploadForm(w, r, h.families.AttachWaiver)
}

func (h *FamilyHandler) uploadForm(w http.ResponseWriter, r *http.Request, attach service.AttachFunc) {
	p, _ := auth.FromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid family id")
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		badRequest(w, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		badRequest(w, "missing file field")
		return
	}
	defer file.Close()

	updated, err := attach(r.Context(), p, id, header.Filename, file, header.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
