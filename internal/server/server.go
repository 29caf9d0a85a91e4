package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/avivros/maagan/internal/auth"
	"github.com/avivros/maagan/internal/blob"
	"github.com/avivros/maagan/internal/config"
	"github.com/avivros/maagan/internal/handler"
	"github.com/avivros/maagan/internal/middleware"
	"github.com/avivros/maagan/internal/service"
	"github.com/avivros/maagan/internal/store"
)

type Server struct {
	db           *sql.DB
	authH        *handler.AuthHandler
	familyH      *handler.FamilyHandler
	childH       *handler.ChildHandler
	treatmentH   *handler.TreatmentHandler
	documentH    *handler.DocumentHandler
	therapistH   *handler.TherapistHandler
	dashboardH   *handler.DashboardHandler
	resolver     *middleware.PrincipalResolver
	sessionStore *store.SessionStore
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

func New(db *sql.DB, cfg *config.Config, blobs blob.Store, logger *slog.Logger) *Server {
	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	therapistStore := store.NewTherapistStore(db)
	familyStore := store.NewFamilyStore(db)
	childStore := store.NewChildStore(db)
	treatmentStore := store.NewTreatmentStore(db)
	documentStore := store.NewDocumentStore(db)

	therapistSvc := service.NewTherapistService(therapistStore, userStore, logger.With("component", "therapist"))
	familySvc := service.NewFamilyService(familyStore, blobs, logger.With("component", "family"))
	childSvc := service.NewChildService(childStore, familyStore, logger.With("component", "child"))
	treatmentSvc := service.NewTreatmentService(treatmentStore, familyStore, childStore, logger.With("component", "treatment"))
	documentSvc := service.NewDocumentService(documentStore, familyStore, childStore, blobs, logger.With("component", "document"))
	dashboardSvc := service.NewDashboardService(familyStore, childStore, treatmentSvc)

	jwtSvc := auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	resolver := middleware.NewPrincipalResolver(sessionStore, userStore, therapistSvc, jwtSvc, logger.With("component", "auth"))

	return &Server{
		db:           db,
		authH:        handler.NewAuthHandler(userStore, sessionStore, jwtSvc, logger.With("component", "auth")),
		familyH:      handler.NewFamilyHandler(familySvc, childSvc, documentSvc, logger.With("component", "family")),
		childH:       handler.NewChildHandler(childSvc, logger.With("component", "child")),
		treatmentH:   handler.NewTreatmentHandler(treatmentSvc, logger.With("component", "treatment")),
		documentH:    handler.NewDocumentHandler(documentSvc, logger.With("component", "document")),
		therapistH:   handler.NewTherapistHandler(therapistSvc, logger.With("component", "therapist")),
		dashboardH:   handler.NewDashboardHandler(dashboardSvc, logger.With("component", "dashboard")),
		resolver:     resolver,
		sessionStore: sessionStore,
		rateLimiter:  middleware.NewRateLimiter(),
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("POST /api/auth/token", s.rateLimitedHandler(s.authH.Token))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.resolver)
	outerMux.Handle("/api/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/auth/me", s.authH.Me)

	mux.HandleFunc("GET /api/dashboard", s.dashboardH.Summary)

	// Families
	mux.HandleFunc("GET /api/families", s.familyH.List)
	mux.HandleFunc("POST /api/families", s.familyH.Create)
	mux.HandleFunc("GET /api/families/{id}", s.familyH.Get)
	mux.HandleFunc("PUT /api/families/{id}", s.familyH.Update)
	mux.HandleFunc("DELETE /api/families/{id}", s.familyH.Delete)
	mux.HandleFunc("GET /api/families/{id}/children", s.familyH.ListChildren)
	mux.HandleFunc("GET /api/families/{id}/documents", s.familyH.ListDocuments)
	mux.HandleFunc("POST /api/families/{id}/consent-form", s.familyH.UploadConsentForm)
	mux.HandleFunc("POST /api/families/{id}/waiver", s.familyH.UploadWaiver)

	// Children
	mux.HandleFunc("GET /api/children", s.childH.List)
	mux.HandleFunc("POST /api/children", s.childH.Create)
	mux.HandleFunc("GET /api/children/{id}", s.childH.Get)
	mux.HandleFunc("PUT /api/children/{id}", s.childH.Update)
	mux.HandleFunc("DELETE /api/children/{id}", s.childH.Delete)

	// Treatments
	mux.HandleFunc("GET /api/treatments", s.treatmentH.List)
	mux.HandleFunc("GET /api/treatments/week", s.treatmentH.Week)
	mux.HandleFunc("POST /api/treatments", s.treatmentH.Create)
	mux.HandleFunc("GET /api/treatments/{id}", s.treatmentH.Get)
	mux.HandleFunc("PUT /api/treatments/{id}", s.treatmentH.Update)
	mux.HandleFunc("DELETE /api/treatments/{id}", s.treatmentH.Delete)

	// Documents
	mux.HandleFunc("GET /api/documents", s.documentH.List)
	mux.HandleFunc("POST /api/documents", s.documentH.Create)
	mux.HandleFunc("GET /api/documents/{id}", s.documentH.Get)
	mux.HandleFunc("PUT /api/documents/{id}", s.documentH.Update)
	mux.HandleFunc("DELETE /api/documents/{id}", s.documentH.Delete)
	mux.HandleFunc("GET /api/documents/{id}/download", s.documentH.Download)

	// Therapist roster; mutations are admin-only in the service layer.
	mux.HandleFunc("GET /api/therapists", s.therapistH.List)
	mux.HandleFunc("POST /api/therapists", s.therapistH.Create)
	mux.HandleFunc("GET /api/therapists/{id}", s.therapistH.Get)
	mux.HandleFunc("PUT /api/therapists/{id}", s.therapistH.Update)
	mux.HandleFunc("DELETE /api/therapists/{id}", s.therapistH.Delete)
}
