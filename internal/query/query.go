// Package query derives read-only views from a task list: filtered and
// sorted listings and dashboard statistics. Every function here is pure;
// the current moment is passed in rather than read from the clock.
package query

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/adanyl0v/go-task-tracker/internal/models"
)

var ErrInvalidParams = errors.New("invalid query parameters")

type StatusFilter string

const (
	StatusAll        StatusFilter = "all"
	StatusPending    StatusFilter = StatusFilter(models.StatusPending)
	StatusInProgress StatusFilter = StatusFilter(models.StatusInProgress)
	StatusCompleted  StatusFilter = StatusFilter(models.StatusCompleted)
	StatusOverdue    StatusFilter = "overdue"
)

type PriorityFilter string

const (
	PriorityAll    PriorityFilter = "all"
	PriorityLow    PriorityFilter = PriorityFilter(models.PriorityLow)
	PriorityMedium PriorityFilter = PriorityFilter(models.PriorityMedium)
	PriorityHigh   PriorityFilter = PriorityFilter(models.PriorityHigh)
)

type SortKey string

const (
	SortByDueDate   SortKey = "dueDate"
	SortByCreatedAt SortKey = "createdAt"
	SortByPriority  SortKey = "priority"
)

type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Params describes a task listing. Zero values mean all statuses,
// all priorities, sorted by due date ascending.
type Params struct {
	Search   string
	Status   StatusFilter
	Priority PriorityFilter
	SortBy   SortKey
	Order    Order
}

func (p Params) withDefaults() Params {
	if p.Status == "" {
		p.Status = StatusAll
	}
	if p.Priority == "" {
		p.Priority = PriorityAll
	}
	if p.SortBy == "" {
		p.SortBy = SortByDueDate
	}
	if p.Order == "" {
		p.Order = OrderAsc
	}
	return p
}

// Validate reports unknown filter, sort key or order values.
func (p Params) Validate() error {
	p = p.withDefaults()

	switch p.Status {
	case StatusAll, StatusPending, StatusInProgress, StatusCompleted, StatusOverdue:
	default:
		return fmt.Errorf("%w: unknown status filter %q", ErrInvalidParams, p.Status)
	}

	switch p.Priority {
	case PriorityAll, PriorityLow, PriorityMedium, PriorityHigh:
	default:
		return fmt.Errorf("%w: unknown priority filter %q", ErrInvalidParams, p.Priority)
	}

	switch p.SortBy {
	case SortByDueDate, SortByCreatedAt, SortByPriority:
	default:
		return fmt.Errorf("%w: unknown sort key %q", ErrInvalidParams, p.SortBy)
	}

	switch p.Order {
	case OrderAsc, OrderDesc:
	default:
		return fmt.Errorf("%w: unknown sort order %q", ErrInvalidParams, p.Order)
	}
	return nil
}

// Apply returns the tasks matching p, sorted by p.SortBy in p.Order.
// Ties keep their input order. The input slice is not modified.
func Apply(tasks []models.Task, p Params, now time.Time) []models.Task {
	p = p.withDefaults()
	search := strings.ToLower(p.Search)

	result := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		if matches(&task, p, search, now) {
			result = append(result, task)
		}
	}

	compare := comparator(p.SortBy)
	if p.Order == OrderDesc {
		asc := compare
		compare = func(a, b models.Task) int { return asc(b, a) }
	}
	slices.SortStableFunc(result, compare)
	return result
}

// Matches reports whether a single task passes the filters of p.
func Matches(task models.Task, p Params, now time.Time) bool {
	p = p.withDefaults()
	return matches(&task, p, strings.ToLower(p.Search), now)
}

func matches(task *models.Task, p Params, search string, now time.Time) bool {
	if search != "" &&
		!strings.Contains(strings.ToLower(task.Title), search) &&
		!strings.Contains(strings.ToLower(task.Description), search) {
		return false
	}

	switch p.Status {
	case StatusAll:
	case StatusOverdue:
		if !task.IsOverdue(now) {
			return false
		}
	default:
		if StatusFilter(task.Status) != p.Status {
			return false
		}
	}

	return p.Priority == PriorityAll || PriorityFilter(task.Priority) == p.Priority
}

func comparator(key SortKey) func(a, b models.Task) int {
	switch key {
	case SortByCreatedAt:
		return func(a, b models.Task) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case SortByPriority:
		return func(a, b models.Task) int { return cmp.Compare(a.Priority.Rank(), b.Priority.Rank()) }
	default:
		return func(a, b models.Task) int { return a.DueDate.Compare(b.DueDate) }
	}
}
