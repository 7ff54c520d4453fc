package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"todo-app/internal/auth"
	"todo-app/internal/todo"
	"todo-app/internal/user"
	"todo-app/middleware"
	"todo-app/models"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pages = []string{"index", "login", "register"}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type WebHandler struct {
	userService  *user.UserService
	todoHandlers *todo.TodoHandlers
	middleware   *middleware.Middleware
	sessions     *auth.SessionManager
	database     Pinger
	templates    map[string]*template.Template
	logger       *log.Logger
}

type PageData struct {
	Page     string
	User     *models.User
	Error    string
	Username string
}

func NewWebHandler(
	userService *user.UserService,
	todoHandlers *todo.TodoHandlers,
	mw *middleware.Middleware,
	sessions *auth.SessionManager,
	database Pinger,
	logger *log.Logger,
) (*WebHandler, error) {
	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.ParseFS(templateFS, "templates/layouts/base.html", "templates/pages/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", page, err)
		}
		templates[page] = tmpl
	}

	return &WebHandler{
		userService:  userService,
		todoHandlers: todoHandlers,
		middleware:   mw,
		sessions:     sessions,
		database:     database,
		templates:    templates,
		logger:       logger,
	}, nil
}

// Page Handlers
func (h *WebHandler) Index(w http.ResponseWriter, r *http.Request) {
	data := PageData{
		Page: "index",
		User: auth.UserFromContext(r.Context()),
	}
	h.render(w, http.StatusOK, data)
}

func (h *WebHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if h.redirectIfLoggedIn(w, r) {
		return
	}
	h.render(w, http.StatusOK, PageData{Page: "login"})
}

func (h *WebHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.redirectIfLoggedIn(w, r) {
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	u, err := h.userService.Authenticate(r.Context(), username, password)
	if errors.Is(err, user.ErrInvalidCredentials) {
		h.logger.Info("Failed login attempt", "username", username)
		h.render(w, http.StatusUnauthorized, PageData{
			Page:     "login",
			Error:    "Invalid credentials. Please try again.",
			Username: username,
		})
		return
	}
	if err != nil {
		h.serverError(w, "Login", err)
		return
	}

	h.startSession(w, r, u)
}

func (h *WebHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if h.redirectIfLoggedIn(w, r) {
		return
	}
	h.render(w, http.StatusOK, PageData{Page: "register"})
}

func (h *WebHandler) Register(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")

	u, err := h.userService.Register(r.Context(), username, r.FormValue("password"), r.FormValue("confirm"))
	if msg, ok := registerErrorMessage(err); ok {
		h.render(w, http.StatusBadRequest, PageData{
			Page:     "register",
			Error:    msg,
			Username: username,
		})
		return
	}
	if err != nil {
		h.serverError(w, "Register", err)
		return
	}

	h.startSession(w, r, u)
}

func (h *WebHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(w, r); err != nil {
		h.logger.Warn("Logout: failed to clear session", "err", err)
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// Healthz reports whether the database answers a ping.
func (h *WebHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := h.database.PingContext(ctx); err != nil {
		h.logger.Error("Health check failed", "err", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	w.Write([]byte(`{"status":"ok"}`))
}

func registerErrorMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, user.ErrMissingCredentials):
		return "Username and password are required.", true
	case errors.Is(err, user.ErrPasswordMismatch):
		return "Passwords do not match.", true
	case errors.Is(err, user.ErrUsernameTaken):
		return "Username already exists.", true
	default:
		return "", false
	}
}

// redirectIfLoggedIn sends authenticated visitors to the index page and
// reports whether it did so.
func (h *WebHandler) redirectIfLoggedIn(w http.ResponseWriter, r *http.Request) bool {
	u, err := h.middleware.CurrentUser(r)
	if err != nil {
		h.logger.Warn("Failed to resolve session user", "err", err)
		return false
	}
	if u == nil {
		return false
	}
	http.Redirect(w, r, "/", http.StatusFound)
	return true
}

func (h *WebHandler) startSession(w http.ResponseWriter, r *http.Request, u *models.User) {
	if err := h.sessions.Login(w, r, u.ID); err != nil {
		h.serverError(w, "startSession", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *WebHandler) render(w http.ResponseWriter, status int, data PageData) {
	tmpl, ok := h.templates[data.Page]
	if !ok {
		h.serverError(w, "render", fmt.Errorf("unknown page %q", data.Page))
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		h.serverError(w, "render", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (h *WebHandler) serverError(w http.ResponseWriter, where string, err error) {
	h.logger.Error(where+": request failed", "err", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
