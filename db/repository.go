package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"todo-app/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Repository defines a common interface for all repositories
type Repository interface {
	Close() error
}

// UserRepository defines the interface for user operations
type UserRepository interface {
	Repository
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// TodoRepository defines the interface for todo operations. Every method is
// scoped by the owning user's id; an id that belongs to someone else is
// reported as ErrNotFound.
type TodoRepository interface {
	Repository
	FindAllByUserID(ctx context.Context, userID string) ([]*models.Todo, error)
	FindByIDAndUserID(ctx context.Context, id int64, userID string) (*models.Todo, error)
	Create(ctx context.Context, todo *models.Todo) error
	Update(ctx context.Context, todo *models.Todo) error
	DeleteByIDAndUserID(ctx context.Context, id int64, userID string) error
}

// RepositoryFactory creates repositories bound to one database
type RepositoryFactory struct {
	DB *Database
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(database *Database) *RepositoryFactory {
	return &RepositoryFactory{DB: database}
}

// NewUserRepository creates a new user repository
func (f *RepositoryFactory) NewUserRepository() UserRepository {
	return NewSQLUserRepository(f.DB)
}

// NewTodoRepository creates a new todo repository
func (f *RepositoryFactory) NewTodoRepository() TodoRepository {
	return NewSQLTodoRepository(f.DB)
}

// GenerateID generates a unique ID for a record
func GenerateID() string {
	return uuid.New().String()
}
