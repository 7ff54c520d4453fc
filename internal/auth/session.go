package auth

import (
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	userIDKey     = "user_id"
	sessionMaxAge = 86400 * 30 // 30 days
)

// SessionManager maps a browser session onto a user id. The cookie is
// signed, so the id cannot be forged, and holds nothing else.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
}

// NewSessionManager creates a cookie-backed session manager.
func NewSessionManager(secret []byte, name string, secure bool) *SessionManager {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store, name: name}
}

// Login associates the caller's session with userID.
func (m *SessionManager) Login(w http.ResponseWriter, r *http.Request, userID string) error {
	// A cookie that fails to decode still yields a usable new session.
	session, _ := m.store.Get(r, m.name)
	session.Values = map[interface{}]interface{}{userIDKey: userID}
	return session.Save(r, w)
}

// Logout drops every value in the session and expires the cookie.
func (m *SessionManager) Logout(w http.ResponseWriter, r *http.Request) error {
	session, _ := m.store.Get(r, m.name)
	session.Values = make(map[interface{}]interface{})
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// UserID returns the user id stored in the session, or "" when the request
// carries no valid session.
func (m *SessionManager) UserID(r *http.Request) string {
	session, err := m.store.Get(r, m.name)
	if err != nil {
		return ""
	}
	userID, _ := session.Values[userIDKey].(string)
	return userID
}
