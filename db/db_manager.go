package db

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"todo-app/internal/util"
	"todo-app/models"
)

// ErrManagerStopped is returned for operations submitted after Stop.
var ErrManagerStopped = errors.New("database manager stopped")

// Operation represents a database operation that needs to be executed
type Operation struct {
	Execute func() error
	Result  chan error
}

// DBManager serializes writes through a single worker. SQLite allows one
// writer at a time; queueing mutations here keeps concurrent requests from
// failing with "database is locked". Reads bypass the manager.
type DBManager struct {
	opQueue  chan Operation
	stopping chan struct{}
	logger   *log.Logger
}

// NewDBManager creates a new database manager
func NewDBManager(logger *log.Logger) *DBManager {
	m := &DBManager{
		opQueue:  make(chan Operation, 100),
		stopping: make(chan struct{}),
		logger:   logger,
	}

	// Start the worker goroutine
	go m.worker()

	return m
}

// worker processes operations one at a time
func (m *DBManager) worker() {
	for {
		select {
		case op := <-m.opQueue:
			op.Result <- util.RetryOnLock(m.logger, op.Execute)
		case <-m.stopping:
			return
		}
	}
}

// ExecuteOperation runs execute on the worker and waits for its result.
func (m *DBManager) ExecuteOperation(ctx context.Context, execute func() error) error {
	select {
	case <-m.stopping:
		return ErrManagerStopped
	default:
	}

	resultChan := make(chan error, 1)
	select {
	case m.opQueue <- Operation{Execute: execute, Result: resultChan}:
	case <-m.stopping:
		return ErrManagerStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-resultChan:
		return err
	case <-m.stopping:
		return ErrManagerStopped
	}
}

// Stop stops the database manager
func (m *DBManager) Stop() {
	close(m.stopping)
}

// Methods for specific repository operations

// CreateUser serializes user creation
func (m *DBManager) CreateUser(ctx context.Context, repo UserRepository, user *models.User) error {
	return m.ExecuteOperation(ctx, func() error {
		return repo.Create(ctx, user)
	})
}

// CreateTodo serializes todo creation
func (m *DBManager) CreateTodo(ctx context.Context, repo TodoRepository, todo *models.Todo) error {
	return m.ExecuteOperation(ctx, func() error {
		return repo.Create(ctx, todo)
	})
}

// UpdateTodo serializes todo updates
func (m *DBManager) UpdateTodo(ctx context.Context, repo TodoRepository, todo *models.Todo) error {
	return m.ExecuteOperation(ctx, func() error {
		return repo.Update(ctx, todo)
	})
}

// DeleteTodo serializes todo deletion
func (m *DBManager) DeleteTodo(ctx context.Context, repo TodoRepository, id int64, userID string) error {
	return m.ExecuteOperation(ctx, func() error {
		return repo.DeleteByIDAndUserID(ctx, id, userID)
	})
}
