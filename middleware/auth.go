package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"todo-app/internal/auth"
	"todo-app/models"
)

// UserFinder resolves a session's user id. A nil user with a nil error means
// the id no longer points at anyone.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type Middleware struct {
	Sessions *auth.SessionManager
	Users    UserFinder
	logger   *log.Logger
}

func NewMiddleware(sessions *auth.SessionManager, users UserFinder, logger *log.Logger) *Middleware {
	return &Middleware{Sessions: sessions, Users: users, logger: logger}
}

// CurrentUser looks up the session's user on every call, so deleted users
// drop out immediately. A request without a usable session yields nil.
func (m *Middleware) CurrentUser(r *http.Request) (*models.User, error) {
	userID := m.Sessions.UserID(r)
	if userID == "" {
		return nil, nil
	}
	return m.Users.FindByID(r.Context(), userID)
}

// AuthMiddleware guards API routes: anonymous callers get 401 JSON.
func (m *Middleware) AuthMiddleware(next http.Handler) http.Handler {
	return m.guard(next, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
	})
}

// PageAuthMiddleware guards HTML pages: anonymous callers are sent to the
// login page.
func (m *Middleware) PageAuthMiddleware(next http.Handler) http.Handler {
	return m.guard(next, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusFound)
	})
}

func (m *Middleware) guard(next http.Handler, deny http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.CurrentUser(r)
		if err != nil {
			m.logger.Error("Failed to resolve session user", "err", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if user == nil {
			deny(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
	})
}
