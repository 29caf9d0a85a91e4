package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/avivros/maagan/internal/auth"
	"github.com/avivros/maagan/internal/model"
	"github.com/avivros/maagan/internal/service"
)

type DocumentHandler struct {
	documents *service.DocumentService
	logger    *slog.Logger
}

func NewDocumentHandler(documents *service.DocumentService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{documents: documents, logger: logger}
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	docs, err := h.documents.List(p)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if docs == nil {
		docs = []model.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid document id")
		return
	}
	d, err := h.documents.Get(p, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Create accepts a multipart upload: metadata fields plus the file itself
// under the "file" field.
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		badRequest(w, "invalid multipart form")
		return
	}

	d := model.Document{
		Name:  r.FormValue("name"),
		Type:  model.DocumentType(r.FormValue("document_type")),
		Notes: r.FormValue("notes"),
	}
	var parseErr error
	if d.FamilyID, parseErr = optionalID(r.FormValue("family_id")); parseErr != nil {
		badRequest(w, "invalid family_id")
		return
	}
	if d.ChildID, parseErr = optionalID(r.FormValue("child_id")); parseErr != nil {
		badRequest(w, "invalid child_id")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		badRequest(w, "missing file field")
		return
	}
	defer file.Close()

	created, err := h.documents.Create(r.Context(), p, &d, header.Filename, file, header.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid document id")
		return
	}
	var d model.Document
	if !decodeJSON(w, r, &d) {
		return
	}
	updated, err := h.documents.Update(p, id, &d)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid document id")
		return
	}
	if err := h.documents.Delete(r.Context(), p, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Download streams the stored file.
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid document id")
		return
	}
	d, info, rc, err := h.documents.Open(r.Context(), p, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	defer rc.Close()

	if info.ContentType != "" {
		w.Header().Set("Content-Type", info.ContentType)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", d.Name))
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Error("stream document", "document_id", id, "error", err)
	}
}

func optionalID(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid id %q", s)
	}
	return &id, nil
}
