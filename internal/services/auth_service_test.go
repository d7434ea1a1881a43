package services

import (
	"context"
	"testing"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-task-tracker/internal/models"
	"github.com/adanyl0v/go-task-tracker/internal/notify"
	"github.com/adanyl0v/go-task-tracker/internal/storage"
)

var testHashParams = &argon2id.Params{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

func newTestServices(t *testing.T, store storage.Storage) (SessionService, TaskService) {
	t.Helper()
	tasks := NewTaskService(zerolog.Nop(), store, notify.Discard{})
	sessions := NewSessionService(zerolog.Nop(), store, tasks, WithHashParams(testHashParams))
	return sessions, tasks
}

func registerAlice(t *testing.T, sessions SessionService) *models.User {
	t.Helper()
	user, err := sessions.Register(context.Background(), RegisterParams{
		Name:     "Alice",
		Email:    "Alice@Example.com ",
		Password: "correct horse",
	})
	require.NoError(t, err)
	return user
}

func TestSessionService_Register(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	sessions, tasks := newTestServices(t, store)

	user := registerAlice(t, sessions)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "alice@example.com", user.Email)

	current, ok := sessions.Current()
	require.True(t, ok)
	assert.Equal(t, user, current)
	assert.Len(t, tasks.Tasks(), 3, "first login seeds sample tasks")

	accounts, found, err := readState[[]models.Account](ctx, store, UsersKey)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, accounts, 1)
	assert.NotContains(t, accounts[0].PasswordHash, "correct horse")
	assert.False(t, accounts[0].CreatedAt.IsZero())

	persisted, found, err := readState[models.User](ctx, store, CurrentUserKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, *user, persisted)
}

func TestSessionService_RegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	sessions, _ := newTestServices(t, storage.NewMemory())
	first := registerAlice(t, sessions)

	_, err := sessions.Register(ctx, RegisterParams{
		Name:     "Other Alice",
		Email:    "ALICE@example.com",
		Password: "another",
	})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	current, ok := sessions.Current()
	require.True(t, ok)
	assert.Equal(t, first.ID, current.ID, "failed registration keeps the session")
}

func TestSessionService_Login(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	sessions, tasks := newTestServices(t, store)
	registered := registerAlice(t, sessions)
	require.NoError(t, sessions.Logout(ctx))

	user, err := sessions.Login(ctx, LoginParams{Email: "alice@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, registered, user)
	assert.Len(t, tasks.Tasks(), 3)

	current, ok := sessions.Current()
	require.True(t, ok)
	assert.Equal(t, registered.ID, current.ID)
}

func TestSessionService_LoginInvalidCredentials(t *testing.T) {
	ctx := context.Background()
	sessions, _ := newTestServices(t, storage.NewMemory())
	registerAlice(t, sessions)
	require.NoError(t, sessions.Logout(ctx))

	tests := []struct {
		name   string
		params LoginParams
	}{
		{name: "wrong password", params: LoginParams{Email: "alice@example.com", Password: "wrong"}},
		{name: "unknown email", params: LoginParams{Email: "bob@example.com", Password: "correct horse"}},
		{name: "empty", params: LoginParams{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sessions.Login(ctx, tt.params)
			assert.ErrorIs(t, err, ErrInvalidCredentials)

			_, ok := sessions.Current()
			assert.False(t, ok)
		})
	}
}

func TestSessionService_Logout(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	sessions, tasks := newTestServices(t, store)
	registerAlice(t, sessions)

	require.NoError(t, sessions.Logout(ctx))

	_, ok := sessions.Current()
	assert.False(t, ok)
	assert.Empty(t, tasks.Tasks())

	_, found, err := store.Get(ctx, CurrentUserKey)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = tasks.Add(ctx, validFields("after logout"))
	assert.ErrorIs(t, err, ErrUnauthenticated)

	require.NoError(t, sessions.Logout(ctx), "logging out twice is harmless")
}

func TestSessionService_Restore(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	sessions, tasks := newTestServices(t, store)
	user := registerAlice(t, sessions)
	created, err := tasks.Add(ctx, validFields("survives restart"))
	require.NoError(t, err)

	restartedSessions, restartedTasks := newTestServices(t, store)
	restored, err := restartedSessions.Restore(ctx)
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, user, restored)

	got, ok := restartedTasks.GetByID(created.ID)
	require.True(t, ok)
	assert.Equal(t, created, got)
}

func TestSessionService_RestoreWithoutSession(t *testing.T) {
	sessions, _ := newTestServices(t, storage.NewMemory())

	user, err := sessions.Restore(context.Background())
	require.NoError(t, err)
	assert.Nil(t, user)

	_, ok := sessions.Current()
	assert.False(t, ok)
}

func TestSessionService_LoginWithCorruptTasks(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	sessions, tasks := newTestServices(t, store)
	registerAlice(t, sessions)
	require.NoError(t, sessions.Logout(ctx))
	require.NoError(t, store.Set(ctx, TasksKey, "[{broken"))

	_, err := sessions.Login(ctx, LoginParams{Email: "alice@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Empty(t, tasks.Tasks())

	_, err = tasks.Add(ctx, validFields("start over"))
	require.NoError(t, err)
	assert.Len(t, tasks.Tasks(), 1)
}

func TestSessionService_CorruptUsers(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	require.NoError(t, store.Set(ctx, UsersKey, "not json"))
	sessions, _ := newTestServices(t, store)

	_, err := sessions.Login(ctx, LoginParams{Email: "alice@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrCorruptState)
}

func TestSessionService_FailedLoginLeavesNobodyLoggedIn(t *testing.T) {
	ctx := context.Background()
	store := &failingStorage{Storage: storage.NewMemory()}
	sessions, tasks := newTestServices(t, store)
	registerAlice(t, sessions)
	_, err := sessions.Register(ctx, RegisterParams{
		Name:     "Bob",
		Email:    "bob@example.com",
		Password: "battery staple",
	})
	require.NoError(t, err)

	_, err = sessions.Login(ctx, LoginParams{Email: "alice@example.com", Password: "correct horse"})
	require.NoError(t, err)

	store.failGetKey = TasksKey
	_, err = sessions.Login(ctx, LoginParams{Email: "bob@example.com", Password: "battery staple"})
	require.Error(t, err)

	_, ok := sessions.Current()
	assert.False(t, ok)
	assert.Empty(t, tasks.Tasks())
	_, err = tasks.Add(ctx, validFields("lost write"))
	assert.ErrorIs(t, err, ErrUnauthenticated)

	store.failGetKey = ""
	restartedSessions, _ := newTestServices(t, store)
	restored, err := restartedSessions.Restore(ctx)
	require.NoError(t, err)
	assert.Nil(t, restored, "neither user is restored after a failed login")
}

func TestSessionService_FailedRestoreUnloadsTasks(t *testing.T) {
	ctx := context.Background()
	store := &failingStorage{Storage: storage.NewMemory()}
	sessions, _ := newTestServices(t, store)
	registerAlice(t, sessions)

	store.failGetKey = TasksKey
	restartedSessions, restartedTasks := newTestServices(t, store)
	_, err := restartedSessions.Restore(ctx)
	require.Error(t, err)

	_, ok := restartedSessions.Current()
	assert.False(t, ok)
	_, err = restartedTasks.Add(ctx, validFields("lost write"))
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
