package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/adanyl0v/go-task-tracker/internal/models"
	"github.com/adanyl0v/go-task-tracker/internal/query"
)

func newDashboardCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Summarize your tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, ok := deps.Sessions.Current()
			if !ok {
				return errNotLoggedIn
			}

			now := deps.Now()
			d := query.Summarize(deps.Tasks.Tasks(), now)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Welcome back, %s! You have %d active tasks.\n\n", user.Name, d.Active)
			fmt.Fprintf(w, "Total:        %d\n", d.Total)
			fmt.Fprintf(w, "Completed:    %d\n", d.Completed)
			fmt.Fprintf(w, "In progress:  %d\n", d.InProgress)
			fmt.Fprintf(w, "Pending:      %d\n", d.Pending)
			fmt.Fprintf(w, "Overdue:      %d\n", d.Overdue)

			writeTaskSection(w, "Recent tasks", d.Recent, "No tasks yet.", func(t models.Task) time.Time {
				return t.CreatedAt
			})
			writeTaskSection(w, "Upcoming deadlines", d.Upcoming, "Nothing due.", func(t models.Task) time.Time {
				return t.DueDate
			})
			return nil
		},
	}
}

func writeTaskSection(w io.Writer, title string, tasks []models.Task, empty string, when func(models.Task) time.Time) {
	fmt.Fprintf(w, "\n%s:\n", title)
	if len(tasks) == 0 {
		fmt.Fprintf(w, "  %s\n", empty)
		return
	}
	for _, task := range tasks {
		fmt.Fprintf(w, "  %s  %-8s  %s\n",
			when(task).Local().Format(time.DateOnly),
			task.Priority,
			task.Title)
	}
}
