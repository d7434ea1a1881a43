package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/adanyl0v/go-task-tracker/internal/models"
	"github.com/adanyl0v/go-task-tracker/internal/query"
)

const (
	exportFormatJSON = "json"
	exportFormatYAML = "yaml"
)

func newTasksCommand(deps Deps) *cobra.Command {
	tasksCmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage your tasks",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return requireUser(deps)
		},
	}

	tasksCmd.AddCommand(newTasksListCommand(deps))
	tasksCmd.AddCommand(newTasksAddCommand(deps))
	tasksCmd.AddCommand(newTasksUpdateCommand(deps))
	tasksCmd.AddCommand(newTasksDeleteCommand(deps))
	tasksCmd.AddCommand(newTasksShowCommand(deps))
	tasksCmd.AddCommand(newTasksExportCommand(deps))
	return tasksCmd
}

func newTasksListCommand(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks matching the given filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			search, _ := cmd.Flags().GetString("search")
			status, _ := cmd.Flags().GetString("status")
			priority, _ := cmd.Flags().GetString("priority")
			sortBy, _ := cmd.Flags().GetString("sort-by")
			order, _ := cmd.Flags().GetString("order")

			params := query.Params{
				Search:   search,
				Status:   query.StatusFilter(status),
				Priority: query.PriorityFilter(priority),
				SortBy:   query.SortKey(sortBy),
				Order:    query.Order(order),
			}
			err := params.Validate()
			if err != nil {
				return err
			}

			now := deps.Now()
			tasks := query.Apply(deps.Tasks.Tasks(), params, now)
			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks found.")
				return nil
			}
			return writeTaskTable(cmd.OutOrStdout(), tasks, now)
		},
	}

	cmd.Flags().String("search", "", "Match title or description, case-insensitively")
	cmd.Flags().String("status", string(query.StatusAll), "all, pending, in-progress, completed or overdue")
	cmd.Flags().String("priority", string(query.PriorityAll), "all, low, medium or high")
	cmd.Flags().String("sort-by", string(query.SortByDueDate), "dueDate, createdAt or priority")
	cmd.Flags().String("order", string(query.OrderAsc), "asc or desc")
	return cmd
}

func newTasksAddCommand(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			title, _ := cmd.Flags().GetString("title")
			description, _ := cmd.Flags().GetString("description")
			status, _ := cmd.Flags().GetString("status")
			priority, _ := cmd.Flags().GetString("priority")
			due, _ := cmd.Flags().GetString("due")
			tags, _ := cmd.Flags().GetString("tags")

			dueDate, err := models.ParseDueDate(due)
			if err != nil {
				return err
			}

			task, err := deps.Tasks.Add(cmd.Context(), models.TaskFields{
				Title:       title,
				Description: description,
				Status:      models.Status(status),
				Priority:    models.Priority(priority),
				DueDate:     dueDate,
				Tags:        models.ParseTags(tags),
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created task %s\n", task.ID)
			return nil
		},
	}

	cmd.Flags().String("title", "", "Task title")
	cmd.Flags().String("description", "", "Task description")
	cmd.Flags().String("status", string(models.StatusPending), "pending, in-progress or completed")
	cmd.Flags().String("priority", string(models.PriorityMedium), "low, medium or high")
	cmd.Flags().String("due", "", "Due date, YYYY-MM-DD or RFC 3339")
	cmd.Flags().String("tags", "", "Comma-separated tags")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("due")
	return cmd
}

func newTasksUpdateCommand(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := patchFromFlags(cmd)
			if err != nil {
				return err
			}
			if patch.IsEmpty() {
				return errors.New("nothing to update, pass at least one field flag")
			}

			task, err := deps.Tasks.Update(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s\n", task.ID)
			return nil
		},
	}

	cmd.Flags().String("title", "", "New title")
	cmd.Flags().String("description", "", "New description")
	cmd.Flags().String("status", "", "pending, in-progress or completed")
	cmd.Flags().String("priority", "", "low, medium or high")
	cmd.Flags().String("due", "", "Due date, YYYY-MM-DD or RFC 3339")
	cmd.Flags().String("tags", "", "Comma-separated tags, replaces the current ones")
	return cmd
}

// patchFromFlags builds a patch from the flags set on the command line.
func patchFromFlags(cmd *cobra.Command) (models.TaskPatch, error) {
	var patch models.TaskPatch
	flags := cmd.Flags()

	if flags.Changed("title") {
		title, _ := flags.GetString("title")
		patch.Title = &title
	}
	if flags.Changed("description") {
		description, _ := flags.GetString("description")
		patch.Description = &description
	}
	if flags.Changed("status") {
		status, _ := flags.GetString("status")
		value := models.Status(status)
		patch.Status = &value
	}
	if flags.Changed("priority") {
		priority, _ := flags.GetString("priority")
		value := models.Priority(priority)
		patch.Priority = &value
	}
	if flags.Changed("due") {
		due, _ := flags.GetString("due")
		dueDate, err := models.ParseDueDate(due)
		if err != nil {
			return models.TaskPatch{}, err
		}
		patch.DueDate = &dueDate
	}
	if flags.Changed("tags") {
		text, _ := flags.GetString("tags")
		tags := models.ParseTags(text)
		patch.Tags = &tags
	}
	return patch, nil
}

func newTasksDeleteCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := deps.Tasks.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", args[0])
			return nil
		},
	}
}

func newTasksShowCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show every field of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, ok := deps.Tasks.GetByID(args[0])
			if !ok {
				return fmt.Errorf("task not found: %s", args[0])
			}

			now := deps.Now()
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s\n\n", task.Title)
			fmt.Fprintf(w, "  %s\n\n", task.Description)
			fmt.Fprintf(w, "  ID:        %s\n", task.ID)
			fmt.Fprintf(w, "  Status:    %s\n", statusLabel(task, now))
			fmt.Fprintf(w, "  Priority:  %s\n", task.Priority)
			fmt.Fprintf(w, "  Due:       %s\n", task.DueDate.Local().Format(time.DateOnly))
			fmt.Fprintf(w, "  Tags:      %s\n", strings.Join(task.Tags, ", "))
			fmt.Fprintf(w, "  Created:   %s\n", task.CreatedAt.Local().Format(time.DateTime))
			fmt.Fprintf(w, "  Updated:   %s\n", task.UpdatedAt.Local().Format(time.DateTime))
			return nil
		},
	}
}

func newTasksExportCommand(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all your tasks as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")

			tasks := deps.Tasks.Tasks()
			var err error
			if output == "" {
				err = exportTasks(cmd.OutOrStdout(), tasks, format)
			} else {
				err = exportTasksToFile(output, tasks, format)
			}
			if err != nil {
				return err
			}
			deps.Logger.Debug().
				Int("count", len(tasks)).
				Str("format", format).
				Msg("exported tasks")
			return nil
		},
	}

	cmd.Flags().StringP("format", "f", exportFormatJSON, "json or yaml")
	cmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func exportTasksToFile(path string, tasks []models.Task, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	err = exportTasks(f, tasks, format)
	if err != nil {
		_ = f.Close()
		return err
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func exportTasks(w io.Writer, tasks []models.Task, format string) error {
	switch format {
	case exportFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tasks)
	case exportFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		err := enc.Encode(tasks)
		if err != nil {
			return fmt.Errorf("failed to marshal tasks: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown export format: %s", format)
	}
}

func writeTaskTable(out io.Writer, tasks []models.Task, now time.Time) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tDUE\tTAGS")
	for _, task := range tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			task.ID,
			task.Title,
			statusLabel(&task, now),
			task.Priority,
			task.DueDate.Local().Format(time.DateOnly),
			strings.Join(task.Tags, ","))
	}
	return w.Flush()
}

func statusLabel(task *models.Task, now time.Time) string {
	if task.IsOverdue(now) {
		return string(task.Status) + " (overdue)"
	}
	return string(task.Status)
}
