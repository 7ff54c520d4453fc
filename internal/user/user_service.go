package user

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/log"
	"todo-app/db"
	"todo-app/internal/auth"
	"todo-app/models"
)

var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type UserService struct {
	Repository db.UserRepository
	dbManager  *db.DBManager
	logger     *log.Logger
}

func NewUserService(userRepo db.UserRepository, dbManager *db.DBManager, logger *log.Logger) *UserService {
	return &UserService{
		Repository: userRepo,
		dbManager:  dbManager,
		logger:     logger,
	}
}

// Register validates a sign-up form and creates the user. Checks run in a
// fixed order and the first failure is returned without touching storage.
func (s *UserService) Register(ctx context.Context, username, password, confirm string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	if password != confirm {
		return nil, ErrPasswordMismatch
	}
	return s.Create(ctx, username, password)
}

// Create stores a new user with a hashed password. The username must already
// be trimmed and non-empty.
func (s *UserService) Create(ctx context.Context, username, password string) (*models.User, error) {
	exists, err := s.Exists(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Username: username, PasswordHash: hash}
	if err := s.dbManager.CreateUser(ctx, s.Repository, user); err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, db.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		s.logger.Error("UserService.Create: failed to insert user", "username", username, "err", err)
		return nil, err
	}

	s.logger.Info("User created", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Exists reports whether username is taken.
func (s *UserService) Exists(ctx context.Context, username string) (bool, error) {
	_, err := s.Repository.FindByUsername(ctx, username)
	if errors.Is(err, db.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Authenticate returns the user whose username and password match. Unknown
// users and wrong passwords both yield ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	user, err := s.Repository.FindByUsername(ctx, username)
	if errors.Is(err, db.ErrNotFound) {
		auth.BurnPasswordCheck(password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// FindByID resolves a session's user id. An id that no longer resolves
// returns nil, nil so callers treat the request as logged out.
func (s *UserService) FindByID(ctx context.Context, id string) (*models.User, error) {
	if id == "" {
		return nil, nil
	}
	user, err := s.Repository.FindByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
