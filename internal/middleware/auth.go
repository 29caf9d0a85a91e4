package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/avivros/maagan/internal/auth"
	"github.com/avivros/maagan/internal/domain"
	"github.com/avivros/maagan/internal/model"
	"github.com/avivros/maagan/internal/service"
	"github.com/avivros/maagan/internal/store"
)

const SessionCookieName = "maagan_session"

// PrincipalResolver turns request credentials into a domain principal. It
// accepts either the session cookie or an Authorization bearer token, and
// provisions a therapist profile for non-admin users on first use.
type PrincipalResolver struct {
	sessions   *store.SessionStore
	users      *store.UserStore
	therapists *service.TherapistService
	tokens     *auth.JWTService
	logger     *slog.Logger
}

func NewPrincipalResolver(sessions *store.SessionStore, users *store.UserStore, therapists *service.TherapistService, tokens *auth.JWTService, logger *slog.Logger) *PrincipalResolver {
	return &PrincipalResolver{
		sessions:   sessions,
		users:      users,
		therapists: therapists,
		tokens:     tokens,
		logger:     logger,
	}
}

// Resolve returns the principal for the request, or nil when the request
// carries no valid credentials.
func (pr *PrincipalResolver) Resolve(r *http.Request) (*domain.Principal, error) {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		claims, err := pr.tokens.ValidateToken(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			return nil, nil
		}
		return pr.principalFor(claims.UserID)
	}

	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}
	sess, err := pr.sessions.GetByToken(cookie.Value)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}
	return pr.principalFor(sess.UserID)
}

func (pr *PrincipalResolver) principalFor(userID int64) (*domain.Principal, error) {
	user, err := pr.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Active {
		return nil, nil
	}
	return pr.Principal(user)
}

// Principal builds the principal for a user, provisioning the therapist
// profile when one is missing.
func (pr *PrincipalResolver) Principal(user *model.User) (*domain.Principal, error) {
	p := domain.Principal{UserID: user.ID, Admin: user.IsAdmin}
	profile, err := pr.therapists.Provision(user)
	if err != nil {
		return nil, err
	}
	if profile != nil && profile.Active {
		p.TherapistID = &profile.ID
	}
	return &p, nil
}

// RequireAuth resolves the request's credentials and stores the principal
// on the context, rejecting unauthenticated requests with 401.
func RequireAuth(resolver *PrincipalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := resolver.Resolve(r)
			if err != nil {
				resolver.logger.Error("resolve principal", "error", err)
				writeAuthError(w, http.StatusInternalServerError, "internal error")
				return
			}
			if p == nil {
				writeAuthError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			ctx := auth.WithPrincipal(r.Context(), *p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects non-admin principals with 403. Must run inside
// RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsAdmin(r.Context()) {
			writeAuthError(w, http.StatusForbidden, "administrator access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
