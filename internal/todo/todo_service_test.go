package todo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"todo-app/db"
	"todo-app/internal/logging"
	"todo-app/internal/testutils"
	"todo-app/models"
)

func setupTodoService(t *testing.T) (*TodoService, *db.RepositoryFactory, *models.User, *models.User) {
	factory, dbManager := testutils.SetupTestRepositoryFactory(t)
	users := factory.NewUserRepository()
	alice := testutils.CreateTestUser(t, users, "alice")
	bob := testutils.CreateTestUser(t, users, "bob")
	service := NewTodoService(factory.NewTodoRepository(), dbManager, logging.Discard())
	return service, factory, alice, bob
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool { return &b }

func TestTodoService_Create(t *testing.T) {
	ctx := context.Background()
	service, factory, alice, _ := setupTodoService(t)

	t.Run("TrimsAndDefaults", func(t *testing.T) {
		todo, err := service.Create(ctx, alice.ID, "  buy milk  ")
		require.NoError(t, err)
		assert.NotZero(t, todo.ID)
		assert.Equal(t, "buy milk", todo.Text)
		assert.False(t, todo.Completed)
		assert.Nil(t, todo.UpdatedAt)

		stored, err := service.Get(ctx, alice.ID, todo.ID)
		require.NoError(t, err)
		assert.Equal(t, "buy milk", stored.Text)
	})

	t.Run("BlankText", func(t *testing.T) {
		before := testutils.CountRows(t, factory.DB, "todos")
		_, err := service.Create(ctx, alice.ID, "   ")
		assert.ErrorIs(t, err, ErrTextRequired)
		assert.Equal(t, before, testutils.CountRows(t, factory.DB, "todos"))
	})
}

func TestTodoService_List(t *testing.T) {
	ctx := context.Background()
	service, _, alice, bob := setupTodoService(t)

	todos, err := service.List(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, todos)

	var created []*models.Todo
	for _, text := range []string{"T1", "T2", "T3"} {
		todo, err := service.Create(ctx, alice.ID, text)
		require.NoError(t, err)
		created = append(created, todo)
	}
	_, err = service.Create(ctx, bob.ID, "bob's")
	require.NoError(t, err)

	todos, err = service.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, todos, 3)
	assert.Equal(t, []string{"T3", "T2", "T1"}, []string{todos[0].Text, todos[1].Text, todos[2].Text})
	assert.Equal(t, created[2].ID, todos[0].ID)
}

func TestTodoService_Update(t *testing.T) {
	ctx := context.Background()
	service, _, alice, bob := setupTodoService(t)

	todo, err := service.Create(ctx, alice.ID, "original")
	require.NoError(t, err)

	t.Run("EmptyPatchIsNoOp", func(t *testing.T) {
		updated, err := service.Update(ctx, alice.ID, todo.ID, models.TodoPatch{})
		require.NoError(t, err)
		assert.Nil(t, updated.UpdatedAt)
	})

	t.Run("SameValuesIsNoOp", func(t *testing.T) {
		updated, err := service.Update(ctx, alice.ID, todo.ID, models.TodoPatch{
			Text:      strPtr("original"),
			Completed: boolPtr(false),
		})
		require.NoError(t, err)
		assert.Nil(t, updated.UpdatedAt)
	})

	t.Run("BlankTextRejectsWholePatch", func(t *testing.T) {
		_, err := service.Update(ctx, alice.ID, todo.ID, models.TodoPatch{
			Text:      strPtr("   "),
			Completed: boolPtr(true),
		})
		assert.ErrorIs(t, err, ErrTextRequired)

		stored, err := service.Get(ctx, alice.ID, todo.ID)
		require.NoError(t, err)
		assert.Equal(t, "original", stored.Text)
		assert.False(t, stored.Completed)
	})

	t.Run("CompletedOnly", func(t *testing.T) {
		updated, err := service.Update(ctx, alice.ID, todo.ID, models.TodoPatch{Completed: boolPtr(true)})
		require.NoError(t, err)
		assert.True(t, updated.Completed)
		assert.Equal(t, "original", updated.Text)
		require.NotNil(t, updated.UpdatedAt)

		stored, err := service.Get(ctx, alice.ID, todo.ID)
		require.NoError(t, err)
		assert.True(t, stored.Completed)
		require.NotNil(t, stored.UpdatedAt)
	})

	t.Run("TextTrimmed", func(t *testing.T) {
		updated, err := service.Update(ctx, alice.ID, todo.ID, models.TodoPatch{Text: strPtr("  renamed ")})
		require.NoError(t, err)
		assert.Equal(t, "renamed", updated.Text)
	})

	t.Run("OtherUsersTodo", func(t *testing.T) {
		_, err := service.Update(ctx, bob.ID, todo.ID, models.TodoPatch{Text: strPtr("hijack")})
		assert.ErrorIs(t, err, ErrTodoNotFound)
	})

	t.Run("NotFoundBeforeValidation", func(t *testing.T) {
		_, err := service.Update(ctx, alice.ID, 999999, models.TodoPatch{Text: strPtr("  ")})
		assert.ErrorIs(t, err, ErrTodoNotFound)
	})
}

func TestTodoService_Delete(t *testing.T) {
	ctx := context.Background()
	service, _, alice, bob := setupTodoService(t)

	todo, err := service.Create(ctx, alice.ID, "gone soon")
	require.NoError(t, err)

	assert.ErrorIs(t, service.Delete(ctx, bob.ID, todo.ID), ErrTodoNotFound)
	require.NoError(t, service.Delete(ctx, alice.ID, todo.ID))
	assert.ErrorIs(t, service.Delete(ctx, alice.ID, todo.ID), ErrTodoNotFound)

	_, err = service.Get(ctx, alice.ID, todo.ID)
	assert.ErrorIs(t, err, ErrTodoNotFound)
}
