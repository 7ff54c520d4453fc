package testutils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"todo-app/db"
	"todo-app/internal/auth"
	"todo-app/models"
)

const TestPassword = "test_password"

// CreateTestUser inserts a user whose password is TestPassword.
func CreateTestUser(t *testing.T, repo db.UserRepository, username string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword)
	require.NoError(t, err)

	user := &models.User{Username: username, PasswordHash: hash}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

// CreateTestTodo inserts a todo for userID.
func CreateTestTodo(t *testing.T, repo db.TodoRepository, userID, text string) *models.Todo {
	t.Helper()

	todo := &models.Todo{
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(context.Background(), todo))
	return todo
}
