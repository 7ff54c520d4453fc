package todo

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"todo-app/internal/auth"
	"todo-app/models"
)

const maxBodyBytes = 1 << 20

// ErrBodyTooLarge is returned for request bodies over maxBodyBytes.
var ErrBodyTooLarge = errors.New("request body too large")

type TodoHandlers struct {
	Service *TodoService
	logger  *log.Logger
}

func NewTodoHandlers(service *TodoService, logger *log.Logger) *TodoHandlers {
	return &TodoHandlers{Service: service, logger: logger}
}

func (h *TodoHandlers) ListTodos(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	todos, err := h.Service.List(r.Context(), user.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, todos)
}

func (h *TodoHandlers) CreateTodo(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	body, err := readBody(w, r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	text, err := ParseCreate(body)
	if err != nil {
		h.writeError(w, err)
		return
	}

	todo, err := h.Service.Create(r.Context(), user.ID, text)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, todo)
}

func (h *TodoHandlers) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	id, ok := todoID(r)
	if !ok {
		h.writeError(w, ErrTodoNotFound)
		return
	}

	body, err := readBody(w, r)
	var patch models.TodoPatch
	if err == nil {
		patch, err = ParsePatch(body)
	}
	if err != nil {
		// A missing todo wins over a malformed body.
		if _, getErr := h.Service.Get(r.Context(), user.ID, id); getErr != nil {
			err = getErr
		}
		h.writeError(w, err)
		return
	}

	todo, err := h.Service.Update(r.Context(), user.ID, id, patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

func (h *TodoHandlers) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	id, ok := todoID(r)
	if !ok {
		h.writeError(w, ErrTodoNotFound)
		return
	}

	if err := h.Service.Delete(r.Context(), user.ID, id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TodoHandlers) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTextRequired):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Text is required"})
	case errors.Is(err, ErrInvalidBody):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	case errors.Is(err, ErrBodyTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "Request body too large"})
	case errors.Is(err, ErrTodoNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	default:
		h.logger.Error("Todo API request failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
}

// todoID parses the {id} route variable. Ids that overflow int64 cannot
// exist, so callers report them as not found.
func todoID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil
}

// readBody returns the request body, or ErrBodyTooLarge once it exceeds
// maxBodyBytes. Any other read failure is treated like an empty body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, ErrBodyTooLarge
		}
		return nil, nil
	}
	return body, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
