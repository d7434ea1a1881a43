// Package cli implements the tasktracker command line. Every command
// works on the same session and task services as the HTTP API, so a
// login made here is visible to the server and vice versa.
package cli

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/adanyl0v/go-task-tracker/internal/services"
)

var errNotLoggedIn = errors.New("not logged in, run `tasktracker login` first")

type Deps struct {
	Logger   zerolog.Logger
	Sessions services.SessionService
	Tasks    services.TaskService
	// Serve blocks running the HTTP API until the process is signalled.
	Serve func()
	Now   func() time.Time
}

func NewRootCommand(deps Deps) *cobra.Command {
	if deps.Now == nil {
		deps.Now = time.Now
	}

	rootCmd := &cobra.Command{
		Use:           "tasktracker",
		Short:         "Personal task tracker",
		Long:          `tasktracker keeps a personal list of tasks with due dates, priorities and tags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newServeCommand(deps))
	rootCmd.AddCommand(newRegisterCommand(deps))
	rootCmd.AddCommand(newLoginCommand(deps))
	rootCmd.AddCommand(newLogoutCommand(deps))
	rootCmd.AddCommand(newWhoamiCommand(deps))
	rootCmd.AddCommand(newTasksCommand(deps))
	rootCmd.AddCommand(newDashboardCommand(deps))
	return rootCmd
}

func newServeCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			deps.Logger.Debug().Msg("serving http api")
			deps.Serve()
		},
	}
}

func requireUser(deps Deps) error {
	if _, ok := deps.Sessions.Current(); !ok {
		return errNotLoggedIn
	}
	return nil
}
