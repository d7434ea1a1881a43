package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/adanyl0v/go-task-tracker/internal/models"
	"github.com/adanyl0v/go-task-tracker/internal/notify"
	"github.com/adanyl0v/go-task-tracker/internal/services"
	"github.com/adanyl0v/go-task-tracker/internal/storage"
)

type testCLI struct {
	t    *testing.T
	deps Deps
}

// newTestCLI builds fresh services over store, the way every
// invocation of the binary does.
func newTestCLI(t *testing.T, store storage.Storage) *testCLI {
	t.Helper()
	tasks := services.NewTaskService(zerolog.Nop(), store, notify.Discard{})
	sessions := services.NewSessionService(zerolog.Nop(), store, tasks,
		services.WithHashParams(&argon2id.Params{
			Memory:      1024,
			Iterations:  1,
			Parallelism: 1,
			SaltLength:  16,
			KeyLength:   32,
		}))
	_, err := sessions.Restore(context.Background())
	require.NoError(t, err)

	return &testCLI{
		t: t,
		deps: Deps{
			Logger:   zerolog.Nop(),
			Sessions: sessions,
			Tasks:    tasks,
			Serve:    func() {},
		},
	}
}

func (c *testCLI) run(stdin string, args ...string) (string, error) {
	c.t.Helper()
	cmd := NewRootCommand(c.deps)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (c *testCLI) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run("", args...)
	require.NoError(c.t, err, out)
	return out
}

func TestRegisterLoginLogout(t *testing.T) {
	store := storage.NewMemory()
	cli := newTestCLI(t, store)

	_, err := cli.run("", "whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)

	out, err := cli.run("hunter22\n", "register", "--name", "Alice", "--email", "alice@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome, Alice!")

	// A second invocation restores the persisted session.
	cli = newTestCLI(t, store)
	assert.Equal(t, "Alice <alice@example.com>\n", cli.mustRun("whoami"))

	assert.Contains(t, cli.mustRun("logout"), "Logged out.")
	_, err = cli.run("", "tasks", "list")
	assert.ErrorIs(t, err, errNotLoggedIn)

	_, err = cli.run("", "login", "--email", "alice@example.com", "--password", "wrong")
	assert.EqualError(t, err, "invalid email or password")

	out = cli.mustRun("login", "--email", "alice@example.com", "--password", "hunter22")
	assert.Contains(t, out, "Welcome back, Alice!")

	_, err = cli.run("", "register", "--name", "A", "--email", "ALICE@example.com", "--password", "x")
	assert.EqualError(t, err, "ALICE@example.com is already registered")
}

func TestTaskCommands(t *testing.T) {
	store := storage.NewMemory()
	cli := newTestCLI(t, store)
	cli.mustRun("register", "--name", "Alice", "--email", "alice@example.com", "--password", "hunter22")

	out := cli.mustRun("tasks", "list", "--sort-by", "priority", "--order", "desc")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "Complete Project Proposal")
	assert.Contains(t, lines[3], "Team Meeting Preparation")

	yesterday := time.Now().AddDate(0, 0, -1).Format(time.RFC3339)
	out = cli.mustRun("tasks", "add",
		"--title", "File taxes",
		"--description", "Before the deadline",
		"--priority", "high",
		"--due", yesterday,
		"--tags", "home, money")
	id := strings.TrimSpace(strings.TrimPrefix(out, "Created task "))
	require.NotEmpty(t, id)

	out = cli.mustRun("tasks", "list", "--status", "overdue")
	assert.Contains(t, out, "File taxes")
	assert.Contains(t, out, "pending (overdue)")
	assert.Contains(t, out, "home,money")

	cli.mustRun("tasks", "update", id, "--status", "completed", "--tags", "")
	task, ok := cli.deps.Tasks.GetByID(id)
	require.True(t, ok)
	assert.Equal(t, models.StatusCompleted, task.Status)
	assert.Empty(t, task.Tags)
	assert.Equal(t, "File taxes", task.Title)

	assert.Equal(t, "No tasks found.\n", cli.mustRun("tasks", "list", "--status", "overdue"))

	out = cli.mustRun("tasks", "show", id)
	assert.Contains(t, out, "File taxes")
	assert.Contains(t, out, "Status:    completed")

	_, err := cli.run("", "tasks", "update", id)
	assert.Error(t, err)

	_, err = cli.run("", "tasks", "list", "--status", "archived")
	assert.Error(t, err)

	cli.mustRun("tasks", "delete", id)
	_, err = cli.run("", "tasks", "delete", id)
	assert.ErrorIs(t, err, services.ErrTaskNotFound)
	_, err = cli.run("", "tasks", "show", id)
	assert.Error(t, err)
}

func TestTasksExport(t *testing.T) {
	cli := newTestCLI(t, storage.NewMemory())
	cli.mustRun("register", "--name", "Alice", "--email", "alice@example.com", "--password", "hunter22")
	want := cli.deps.Tasks.Tasks()

	var fromJSON []models.Task
	require.NoError(t, json.Unmarshal([]byte(cli.mustRun("tasks", "export")), &fromJSON))
	assert.Equal(t, want, fromJSON)

	var fromYAML []models.Task
	require.NoError(t, yaml.Unmarshal([]byte(cli.mustRun("tasks", "export", "-f", "yaml")), &fromYAML))
	require.Len(t, fromYAML, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, fromYAML[i].ID)
		assert.Equal(t, want[i].Tags, fromYAML[i].Tags)
		assert.True(t, want[i].DueDate.Equal(fromYAML[i].DueDate))
	}

	_, err := cli.run("", "tasks", "export", "-f", "csv")
	assert.EqualError(t, err, "unknown export format: csv")
}

func TestTasksExportToFile(t *testing.T) {
	cli := newTestCLI(t, storage.NewMemory())
	cli.mustRun("register", "--name", "Alice", "--email", "alice@example.com", "--password", "hunter22")
	want := cli.deps.Tasks.Tasks()

	path := filepath.Join(t.TempDir(), "tasks.json")
	assert.Empty(t, cli.mustRun("tasks", "export", "-o", path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []models.Task
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, want, got)

	_, err = cli.run("", "tasks", "export", "-o", filepath.Join(t.TempDir(), "missing", "tasks.json"))
	assert.ErrorContains(t, err, "failed to create")
}

func TestDashboardCommand(t *testing.T) {
	cli := newTestCLI(t, storage.NewMemory())

	_, err := cli.run("", "dashboard")
	assert.ErrorIs(t, err, errNotLoggedIn)

	cli.mustRun("register", "--name", "Alice", "--email", "alice@example.com", "--password", "hunter22")
	out := cli.mustRun("dashboard")
	assert.Contains(t, out, "Welcome back, Alice! You have 2 active tasks.")
	assert.Contains(t, out, "Total:        3")
	assert.Contains(t, out, "Completed:    1")
	assert.Contains(t, out, "Upcoming deadlines:")
}
