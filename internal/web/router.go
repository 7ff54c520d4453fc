package web

import (
	"net/http"

	"github.com/gorilla/mux"
	"todo-app/middleware"
)

func (h *WebHandler) SetupRoutes() *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RecoveryMiddleware(h.logger), middleware.LoggingMiddleware(h.logger))

	// Web pages
	r.Handle("/", h.middleware.PageAuthMiddleware(http.HandlerFunc(h.Index))).Methods("GET")
	r.HandleFunc("/login", h.LoginPage).Methods("GET")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/register", h.RegisterPage).Methods("GET")
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/logout", h.Logout).Methods("POST")
	r.HandleFunc("/healthz", h.Healthz).Methods("GET")

	// Embedded assets are served from /static/...
	r.PathPrefix("/static/").Handler(http.FileServer(http.FS(staticFS))).Methods("GET")

	// JSON API
	api := r.PathPrefix("/api").Subrouter()
	api.Use(h.middleware.AuthMiddleware)
	api.HandleFunc("/todos", h.todoHandlers.ListTodos).Methods("GET")
	api.HandleFunc("/todos", h.todoHandlers.CreateTodo).Methods("POST")
	api.HandleFunc("/todos/{id:[0-9]+}", h.todoHandlers.UpdateTodo).Methods("PATCH")
	api.HandleFunc("/todos/{id:[0-9]+}", h.todoHandlers.DeleteTodo).Methods("DELETE")

	return r
}
