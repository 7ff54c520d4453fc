package todo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"todo-app/db"
	"todo-app/models"
)

var (
	ErrTextRequired = errors.New("text is required")
	ErrTodoNotFound = errors.New("todo not found")
)

type TodoService struct {
	Repository db.TodoRepository
	dbManager  *db.DBManager
	logger     *log.Logger
}

func NewTodoService(todoRepo db.TodoRepository, dbManager *db.DBManager, logger *log.Logger) *TodoService {
	return &TodoService{
		Repository: todoRepo,
		dbManager:  dbManager,
		logger:     logger,
	}
}

// List returns the user's todos, newest first.
func (s *TodoService) List(ctx context.Context, userID string) ([]*models.Todo, error) {
	return s.Repository.FindAllByUserID(ctx, userID)
}

// Create stores a new open todo for userID.
func (s *TodoService) Create(ctx context.Context, userID, text string) (*models.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrTextRequired
	}

	todo := &models.Todo{
		UserID:    userID,
		Text:      text,
		Completed: false,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.dbManager.CreateTodo(ctx, s.Repository, todo); err != nil {
		s.logger.Error("TodoService.Create: failed to insert todo", "user_id", userID, "err", err)
		return nil, err
	}

	s.logger.Debug("Todo created", "todo_id", todo.ID, "user_id", userID)
	return todo, nil
}

// Get returns one of the user's todos.
func (s *TodoService) Get(ctx context.Context, userID string, id int64) (*models.Todo, error) {
	todo, err := s.Repository.FindByIDAndUserID(ctx, id, userID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrTodoNotFound
	}
	if err != nil {
		return nil, err
	}
	return todo, nil
}

// Update applies patch to one of the user's todos. Nothing is written when
// the text is blank or when no value actually changes.
func (s *TodoService) Update(ctx context.Context, userID string, id int64, patch models.TodoPatch) (*models.Todo, error) {
	todo, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if patch.Text != nil {
		text := strings.TrimSpace(*patch.Text)
		if text == "" {
			return nil, ErrTextRequired
		}
		patch.Text = &text
	}

	if !patch.Apply(todo) {
		return todo, nil
	}

	now := time.Now().UTC()
	todo.UpdatedAt = &now
	err = s.dbManager.UpdateTodo(ctx, s.Repository, todo)
	if errors.Is(err, db.ErrNotFound) {
		// Deleted by a concurrent request.
		return nil, ErrTodoNotFound
	}
	if err != nil {
		s.logger.Error("TodoService.Update: failed to update todo", "todo_id", id, "err", err)
		return nil, err
	}
	return todo, nil
}

// Delete removes one of the user's todos.
func (s *TodoService) Delete(ctx context.Context, userID string, id int64) error {
	err := s.dbManager.DeleteTodo(ctx, s.Repository, id, userID)
	if errors.Is(err, db.ErrNotFound) {
		return ErrTodoNotFound
	}
	if err != nil {
		s.logger.Error("TodoService.Delete: failed to delete todo", "todo_id", id, "err", err)
		return err
	}
	return nil
}
