package query

import (
	"slices"
	"time"

	"github.com/adanyl0v/go-task-tracker/internal/models"
)

const dashboardListSize = 3

type Dashboard struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Overdue    int `json:"overdue"`
	// Active counts tasks that still need work: pending plus in progress.
	Active int `json:"active"`

	// Recent holds the most recently created tasks, newest first.
	Recent []models.Task `json:"recent"`
	// Upcoming holds the not yet completed tasks due soonest, earliest first.
	Upcoming []models.Task `json:"upcoming"`
}

func Summarize(tasks []models.Task, now time.Time) Dashboard {
	var d Dashboard
	d.Total = len(tasks)

	upcoming := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		switch task.Status {
		case models.StatusCompleted:
			d.Completed++
		case models.StatusPending:
			d.Pending++
		case models.StatusInProgress:
			d.InProgress++
		}
		if task.IsOverdue(now) {
			d.Overdue++
		}
		if task.Status != models.StatusCompleted {
			upcoming = append(upcoming, task)
		}
	}
	d.Active = d.Pending + d.InProgress

	recent := slices.Clone(tasks)
	slices.SortStableFunc(recent, func(a, b models.Task) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	d.Recent = head(recent, dashboardListSize)

	slices.SortStableFunc(upcoming, func(a, b models.Task) int {
		return a.DueDate.Compare(b.DueDate)
	})
	d.Upcoming = head(upcoming, dashboardListSize)

	return d
}

func head(tasks []models.Task, n int) []models.Task {
	if len(tasks) > n {
		tasks = tasks[:n]
	}
	if tasks == nil {
		return []models.Task{}
	}
	return slices.Clip(tasks)
}
