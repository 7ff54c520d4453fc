package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"todo-app/models"
)

// SQLUserRepository implements the UserRepository interface for all dialects
type SQLUserRepository struct {
	db *Database
}

// NewSQLUserRepository creates a new SQLUserRepository
func NewSQLUserRepository(db *Database) *SQLUserRepository {
	return &SQLUserRepository{db: db}
}

// Close closes the database connection
func (r *SQLUserRepository) Close() error {
	return r.db.Close()
}

// Create inserts a new user. A username that is already taken yields
// ErrDuplicate, whether it was inserted long ago or a moment earlier by a
// concurrent request.
func (r *SQLUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = GenerateID()
	}

	query := r.db.Rebind(`INSERT INTO users (id, username, password_hash) VALUES (?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query, user.ID, user.Username, user.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("error inserting user: %w", err)
	}
	return nil
}

// FindByID finds a user by ID
func (r *SQLUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := r.db.Rebind(`SELECT id, username, password_hash FROM users WHERE id = ?`)
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// FindByUsername finds a user by exact username
func (r *SQLUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	query := r.db.Rebind(`SELECT id, username, password_hash FROM users WHERE username = ?`)
	return r.scanOne(r.db.QueryRowContext(ctx, query, username))
}

func (r *SQLUserRepository) scanOne(row *sql.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning user: %w", err)
	}
	return &user, nil
}

// SQLTodoRepository implements the TodoRepository interface for all dialects
type SQLTodoRepository struct {
	db *Database
}

// NewSQLTodoRepository creates a new SQLTodoRepository
func NewSQLTodoRepository(db *Database) *SQLTodoRepository {
	return &SQLTodoRepository{db: db}
}

// Close closes the database connection
func (r *SQLTodoRepository) Close() error {
	return r.db.Close()
}

const todoColumns = `id, user_id, text, completed, created_at, updated_at`

// FindAllByUserID returns the user's todos, newest first. Items created in
// the same clock tick keep their insertion order through the id tiebreak.
func (r *SQLTodoRepository) FindAllByUserID(ctx context.Context, userID string) ([]*models.Todo, error) {
	query := r.db.Rebind(`SELECT ` + todoColumns + ` FROM todos WHERE user_id = ? ORDER BY created_at DESC, id DESC`)
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying todos: %w", err)
	}
	defer rows.Close()

	todos := []*models.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating todos: %w", err)
	}
	return todos, nil
}

// FindByIDAndUserID finds one todo owned by userID
func (r *SQLTodoRepository) FindByIDAndUserID(ctx context.Context, id int64, userID string) (*models.Todo, error) {
	query := r.db.Rebind(`SELECT ` + todoColumns + ` FROM todos WHERE id = ? AND user_id = ?`)
	todo, err := scanTodo(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return todo, err
}

// Create inserts todo and fills in its generated ID
func (r *SQLTodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	if r.db.Dialect == MySQL {
		query := `INSERT INTO todos (user_id, text, completed, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
		res, err := r.db.ExecContext(ctx, query, todo.UserID, todo.Text, todo.Completed, todo.CreatedAt, nullTime(todo.UpdatedAt))
		if err != nil {
			return fmt.Errorf("error inserting todo: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("error reading todo id: %w", err)
		}
		todo.ID = id
		return nil
	}

	query := r.db.Rebind(`INSERT INTO todos (user_id, text, completed, created_at, updated_at) VALUES (?, ?, ?, ?, ?) RETURNING id`)
	err := r.db.QueryRowContext(ctx, query, todo.UserID, todo.Text, todo.Completed, todo.CreatedAt, nullTime(todo.UpdatedAt)).Scan(&todo.ID)
	if err != nil {
		return fmt.Errorf("error inserting todo: %w", err)
	}
	return nil
}

// Update writes the mutable fields of todo, scoped to its owner
func (r *SQLTodoRepository) Update(ctx context.Context, todo *models.Todo) error {
	query := r.db.Rebind(`UPDATE todos SET text = ?, completed = ?, updated_at = ? WHERE id = ? AND user_id = ?`)
	res, err := r.db.ExecContext(ctx, query, todo.Text, todo.Completed, nullTime(todo.UpdatedAt), todo.ID, todo.UserID)
	if err != nil {
		return fmt.Errorf("error updating todo: %w", err)
	}
	return requireAffected(res)
}

// DeleteByIDAndUserID deletes one todo owned by userID
func (r *SQLTodoRepository) DeleteByIDAndUserID(ctx context.Context, id int64, userID string) error {
	query := r.db.Rebind(`DELETE FROM todos WHERE id = ? AND user_id = ?`)
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("error deleting todo: %w", err)
	}
	return requireAffected(res)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTodo(row rowScanner) (*models.Todo, error) {
	var todo models.Todo
	var updatedAt sql.NullTime

	err := row.Scan(&todo.ID, &todo.UserID, &todo.Text, &todo.Completed, &todo.CreatedAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("error scanning todo: %w", err)
	}

	todo.CreatedAt = todo.CreatedAt.UTC()
	if updatedAt.Valid {
		t := updatedAt.Time.UTC()
		todo.UpdatedAt = &t
	}
	return &todo, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
