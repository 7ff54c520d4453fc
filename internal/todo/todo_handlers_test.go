package todo

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"todo-app/internal/auth"
	"todo-app/internal/logging"
	"todo-app/internal/testutils"
	"todo-app/models"
)

// asUser injects user into every request, standing in for the session guard.
func asUser(user *models.User, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
	})
}

func TestTodoHandlers(t *testing.T) {
	service, _, alice, bob := setupTodoService(t)
	handlers := NewTodoHandlers(service, logging.Discard())

	router := mux.NewRouter()
	router.HandleFunc("/api/todos", handlers.ListTodos).Methods("GET")
	router.HandleFunc("/api/todos", handlers.CreateTodo).Methods("POST")
	router.HandleFunc("/api/todos/{id:[0-9]+}", handlers.UpdateTodo).Methods("PATCH")
	router.HandleFunc("/api/todos/{id:[0-9]+}", handlers.DeleteTodo).Methods("DELETE")

	server := testutils.NewTestServer(t, asUser(alice, router))
	bobServer := testutils.NewTestServer(t, asUser(bob, router))

	t.Run("ListEmpty", func(t *testing.T) {
		resp := server.GET("/api/todos")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `[]`, testutils.ReadBody(t, resp))
	})

	var created models.Todo
	t.Run("Create", func(t *testing.T) {
		resp := server.POST("/api/todos", map[string]string{"text": "  buy milk  "})
		testutils.AssertJSONResponse(t, resp, http.StatusCreated, &created)
		assert.Equal(t, "buy milk", created.Text)
		assert.False(t, created.Completed)
		assert.Nil(t, created.UpdatedAt)
	})

	t.Run("Representation", func(t *testing.T) {
		resp := server.GET("/api/todos")
		var items []map[string]interface{}
		testutils.AssertJSONResponse(t, resp, http.StatusOK, &items)
		require.Len(t, items, 1)

		item := items[0]
		assert.ElementsMatch(t, []string{"id", "text", "completed", "created_at", "updated_at"}, keys(item))
		assert.Nil(t, item["updated_at"])
		assert.IsType(t, "", item["created_at"])
	})

	t.Run("CreateBlank", func(t *testing.T) {
		resp := server.POST("/api/todos", map[string]string{"text": "   "})
		testutils.AssertErrorResponse(t, resp, http.StatusBadRequest, "Text is required")
	})

	t.Run("CreateInvalidBody", func(t *testing.T) {
		resp := server.POST("/api/todos", map[string]int{"text": 5})
		testutils.AssertErrorResponse(t, resp, http.StatusBadRequest, "Invalid request body")
	})

	path := fmt.Sprintf("/api/todos/%d", created.ID)

	t.Run("PatchEmptyObject", func(t *testing.T) {
		resp := server.PATCHRaw(path, `{}`)
		var todo models.Todo
		testutils.AssertJSONResponse(t, resp, http.StatusOK, &todo)
		assert.Equal(t, "buy milk", todo.Text)
		assert.Nil(t, todo.UpdatedAt)
	})

	t.Run("PatchBlankText", func(t *testing.T) {
		resp := server.PATCH(path, map[string]string{"text": "   "})
		testutils.AssertErrorResponse(t, resp, http.StatusBadRequest, "Text is required")
	})

	t.Run("PatchCompleted", func(t *testing.T) {
		resp := server.PATCHRaw(path, `{"completed": 1}`)
		var todo models.Todo
		testutils.AssertJSONResponse(t, resp, http.StatusOK, &todo)
		assert.True(t, todo.Completed)
		assert.NotNil(t, todo.UpdatedAt)
	})

	t.Run("OversizedBody", func(t *testing.T) {
		huge := strings.Repeat("x", maxBodyBytes)

		resp := server.PATCHRaw(path, `{"completed": false, "text": "`+huge+`"}`)
		testutils.AssertErrorResponse(t, resp, http.StatusRequestEntityTooLarge, "Request body too large")

		resp = server.PATCHRaw("/api/todos/999999", `{"text": "`+huge+`"}`)
		testutils.AssertErrorResponse(t, resp, http.StatusNotFound, "Not found")

		resp = server.POSTRaw("/api/todos", `{"text": "`+huge+`"}`)
		testutils.AssertErrorResponse(t, resp, http.StatusRequestEntityTooLarge, "Request body too large")

		var todos []models.Todo
		testutils.AssertJSONResponse(t, server.GET("/api/todos"), http.StatusOK, &todos)
		require.Len(t, todos, 1)
		assert.Equal(t, "buy milk", todos[0].Text)
		assert.True(t, todos[0].Completed)
	})

	t.Run("PatchMissingTodoWithBadBody", func(t *testing.T) {
		resp := server.PATCHRaw("/api/todos/999999", `{"text": 5}`)
		testutils.AssertErrorResponse(t, resp, http.StatusNotFound, "Not found")
	})

	t.Run("PatchHugeID", func(t *testing.T) {
		resp := server.PATCHRaw("/api/todos/99999999999999999999999", `{}`)
		testutils.AssertErrorResponse(t, resp, http.StatusNotFound, "Not found")
	})

	t.Run("OtherUserCannotSeeOrTouch", func(t *testing.T) {
		resp := bobServer.GET("/api/todos")
		assert.JSONEq(t, `[]`, testutils.ReadBody(t, resp))

		resp = bobServer.PATCH(path, map[string]string{"text": "hijack"})
		testutils.AssertErrorResponse(t, resp, http.StatusNotFound, "Not found")

		resp = bobServer.DELETE(path)
		testutils.AssertErrorResponse(t, resp, http.StatusNotFound, "Not found")
	})

	t.Run("DeleteTwice", func(t *testing.T) {
		resp := server.DELETE(path)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Empty(t, testutils.ReadBody(t, resp))

		resp = server.DELETE(path)
		testutils.AssertErrorResponse(t, resp, http.StatusNotFound, "Not found")
	})
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusTeapot, map[string]string{"a": "b"})
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "b", body["a"])
}
