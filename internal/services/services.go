package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/adanyl0v/go-task-tracker/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail     = errors.New("user with this email already exists")
	ErrUnauthenticated    = errors.New("no authenticated user")
	ErrTaskNotFound       = errors.New("task not found")
	ErrInvalidTask        = errors.New("invalid task")
	ErrCorruptState       = errors.New("persisted state is corrupt")
)

// Keys of the persisted state in the key-value storage.
const (
	TasksKey       = "tasks"
	UsersKey       = "users"
	CurrentUserKey = "user"
)

type SessionService interface {
	// Login authenticates the user by email and password and makes
	// them the current user, replacing any previous session.
	//
	// It returns ErrInvalidCredentials if no user has the given
	// email or the password doesn't match.
	Login(ctx context.Context, params LoginParams) (*models.User, error)

	// Register creates a user with the given profile, hashes the
	// password and logs the new user in.
	//
	// It returns ErrDuplicateEmail if a user with the same email
	// (compared case-insensitively) already exists.
	Register(ctx context.Context, params RegisterParams) (*models.User, error)

	// Logout clears the current session unconditionally.
	Logout(ctx context.Context) error

	// Current returns the authenticated user, if any.
	Current() (*models.User, bool)

	// Restore reloads the session persisted by a previous process.
	// It returns nil, nil when nobody is logged in.
	Restore(ctx context.Context) (*models.User, error)
}

// SessionListener is told about every change of the current user.
type SessionListener interface {
	Load(ctx context.Context, user models.User) error
	Reset()
}

type TaskService interface {
	SessionListener

	// Add creates a task owned by the current user.
	//
	// It returns ErrUnauthenticated if no user is loaded and
	// ErrInvalidTask if the title or description is blank or the
	// status or priority is unknown.
	Add(ctx context.Context, fields models.TaskFields) (*models.Task, error)

	// Update merges patch into the task with the given id and
	// refreshes its updatedAt.
	//
	// It returns ErrTaskNotFound if the current user has no such
	// task; the task list is left unchanged in that case.
	Update(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error)

	// Delete removes the task with the given id.
	//
	// It returns ErrTaskNotFound if the current user has no such task.
	Delete(ctx context.Context, id string) error

	GetByID(id string) (*models.Task, bool)

	// Tasks returns a copy of the current user's task list.
	Tasks() []models.Task
}

type TokenService interface {
	// IssueAccessToken signs a token whose subject is the user ID.
	IssueAccessToken(userID string) (string, time.Time, error)

	// ParseAccessToken parses the given JWT token and returns the registered
	// claims or an error wrapping jwt.ErrTokenExpired if the token is expired.
	ParseAccessToken(token string) (*jwt.RegisteredClaims, error)
}

type LoginParams struct {
	Email    string
	Password string
}

type RegisterParams struct {
	Name     string
	Email    string
	Password string
	Avatar   string
}
