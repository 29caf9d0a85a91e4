package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/avivros/maagan/internal/auth"
	"github.com/avivros/maagan/internal/model"
	"github.com/avivros/maagan/internal/service"
)

type TreatmentHandler struct {
	treatments *service.TreatmentService
	logger     *slog.Logger
}

func NewTreatmentHandler(treatments *service.TreatmentService, logger *slog.Logger) *TreatmentHandler {
	return &TreatmentHandler{treatments: treatments, logger: logger}
}

func (h *TreatmentHandler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	ts, err := h.treatments.List(p)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ts)
}

// Week returns the working week, Sunday through Thursday, containing the
// ?date=YYYY-MM-DD query parameter, defaulting to today.
func (h *TreatmentHandler) Week(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	day := time.Now()
	if q := r.URL.Query().Get("date"); q != "" {
		parsed, err := time.Parse("2006-01-02", q)
		if err != nil {
			badRequest(w, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}
	ts, err := h.treatments.ListWeek(p, day)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ts)
}

func (h *TreatmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid treatment id")
		return
	}
	t, err := h.treatments.Get(p, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TreatmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	var t model.Treatment
	if !decodeJSON(w, r, &t) {
		return
	}
	created, err := h.treatments.Create(p, &t)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *TreatmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid treatment id")
		return
	}
	var t model.Treatment
	if !decodeJSON(w, r, &t) {
		return
	}
	updated, err := h.treatments.Update(p, id, &t)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *TreatmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid treatment id")
		return
	}
	if err := h.treatments.Delete(p, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
