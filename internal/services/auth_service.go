package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-tracker/internal/models"
	"github.com/adanyl0v/go-task-tracker/internal/storage"
)

type sessionServiceImpl struct {
	logger     zerolog.Logger
	store      storage.Storage
	listener   SessionListener
	hashParams *argon2id.Params

	mu      sync.RWMutex
	current *models.User
}

type SessionServiceOption func(*sessionServiceImpl)

// WithHashParams overrides the argon2id parameters used for new passwords.
func WithHashParams(params *argon2id.Params) SessionServiceOption {
	return func(s *sessionServiceImpl) {
		s.hashParams = params
	}
}

func NewSessionService(
	logger zerolog.Logger,
	store storage.Storage,
	listener SessionListener,
	opts ...SessionServiceOption,
) SessionService {
	s := &sessionServiceImpl{
		logger:     logger,
		store:      store,
		listener:   listener,
		hashParams: argon2id.DefaultParams,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *sessionServiceImpl) Login(ctx context.Context, params LoginParams) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := normalizeEmail(params.Email)
	accounts, _, err := readState[[]models.Account](ctx, s.store, UsersKey)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to read users")
		return nil, err
	}

	idx := findAccount(accounts, email)
	if idx < 0 {
		s.logger.Error().
			Str("email", email).
			Msg("user not found")
		return nil, ErrInvalidCredentials
	}
	account := accounts[idx]
	s.logger.Debug().
		Str("user_id", account.ID).
		Str("email", account.Email).
		Msg("found user")

	match, err := argon2id.ComparePasswordAndHash(params.Password, account.PasswordHash)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to compare password")
		return nil, err
	} else if !match {
		s.logger.Error().Msg("passwords do not match")
		return nil, ErrInvalidCredentials
	}

	err = s.authenticate(ctx, account.User)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", account.ID).
		Msg("logged in")
	user := account.User
	return &user, nil
}

func (s *sessionServiceImpl) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := normalizeEmail(params.Email)
	accounts, _, err := readState[[]models.Account](ctx, s.store, UsersKey)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to read users")
		return nil, err
	}

	if findAccount(accounts, email) >= 0 {
		s.logger.Error().
			Str("email", email).
			Msg("user with this email already exists")
		return nil, ErrDuplicateEmail
	}

	userUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate user uuid")
		return nil, err
	}

	passwordHash, err := argon2id.CreateHash(params.Password, s.hashParams)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return nil, err
	}

	account := models.Account{
		User: models.User{
			ID:     userUUID.String(),
			Name:   strings.TrimSpace(params.Name),
			Email:  email,
			Avatar: strings.TrimSpace(params.Avatar),
		},
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	err = writeState(ctx, s.store, UsersKey, append(accounts, account))
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to persist users")
		return nil, err
	}
	s.logger.Debug().
		Str("user_id", account.ID).
		Str("email", account.Email).
		Msg("inserted user")

	err = s.authenticate(ctx, account.User)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", account.ID).
		Msg("registered user")
	user := account.User
	return &user, nil
}

func (s *sessionServiceImpl) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID := ""
	if s.current != nil {
		userID = s.current.ID
	}
	s.current = nil
	s.listener.Reset()

	err := s.store.Delete(ctx, CurrentUserKey)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to delete persisted session")
		return err
	}

	s.logger.Info().
		Str("user_id", userID).
		Msg("logged out")
	return nil
}

func (s *sessionServiceImpl) Current() (*models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, false
	}
	user := *s.current
	return &user, true
}

func (s *sessionServiceImpl) Restore(ctx context.Context) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, found, err := readState[models.User](ctx, s.store, CurrentUserKey)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to read persisted session")
		return nil, err
	}
	if !found || user.ID == "" {
		s.logger.Debug().Msg("no persisted session")
		return nil, nil
	}

	err = s.listener.Load(ctx, user)
	if err != nil && !errors.Is(err, ErrCorruptState) {
		s.logger.Error().
			Err(err).
			Str("user_id", user.ID).
			Msg("failed to load tasks of persisted session")
		s.current = nil
		s.listener.Reset()
		return nil, err
	}
	s.current = &user

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("restored session")
	return &user, nil
}

// authenticate loads the user's tasks, then makes user the current
// user and persists the session. On failure no user is current and
// no session is persisted. The caller must hold s.mu.
func (s *sessionServiceImpl) authenticate(ctx context.Context, user models.User) error {
	err := s.listener.Load(ctx, user)
	if err != nil {
		if !errors.Is(err, ErrCorruptState) {
			s.logger.Error().
				Err(err).
				Str("user_id", user.ID).
				Msg("failed to load tasks")
			s.clearSession(ctx)
			return err
		}
		s.logger.Warn().
			Err(err).
			Str("user_id", user.ID).
			Msg("logged in with an empty task list")
	}

	err = writeState(ctx, s.store, CurrentUserKey, user)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", user.ID).
			Msg("failed to persist session")
		s.clearSession(ctx)
		return err
	}
	s.current = &user
	return nil
}

// clearSession leaves nobody logged in after a failed login. The
// persisted session is removed so the next process doesn't restore it.
// The caller must hold s.mu.
func (s *sessionServiceImpl) clearSession(ctx context.Context) {
	s.current = nil
	s.listener.Reset()

	err := s.store.Delete(ctx, CurrentUserKey)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to delete persisted session")
	}
}

func findAccount(accounts []models.Account, email string) int {
	for i, account := range accounts {
		if strings.EqualFold(account.Email, email) {
			return i
		}
	}
	return -1
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
