package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "empty", text: "", want: []string{}},
		{name: "single", text: "work", want: []string{"work"}},
		{name: "trims whitespace", text: " work ,  urgent", want: []string{"work", "urgent"}},
		{name: "drops empty entries", text: "a,, ,b,", want: []string{"a", "b"}},
		{name: "keeps order and duplicates", text: "b,a,b", want: []string{"b", "a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTags(tt.text))
		})
	}
}

func TestParseDueDate(t *testing.T) {
	got, err := ParseDueDate("2026-03-14")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)))

	got, err = ParseDueDate("2026-03-14T10:30:00+02:00")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 3, 14, 8, 30, 0, 0, time.UTC)))
	assert.Equal(t, time.UTC, got.Location())

	_, err = ParseDueDate("next tuesday")
	assert.Error(t, err)
}

func TestStatusAndPriority(t *testing.T) {
	assert.True(t, StatusInProgress.Valid())
	assert.False(t, Status("in_progress").Valid())
	assert.True(t, PriorityHigh.Valid())
	assert.False(t, Priority("urgent").Valid())

	assert.Greater(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Greater(t, PriorityMedium.Rank(), PriorityLow.Rank())
	assert.Zero(t, Priority("").Rank())
}

func TestTaskIsOverdue(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	task := Task{Status: StatusPending, DueDate: now.Add(-time.Second)}
	assert.True(t, task.IsOverdue(now))

	task.Status = StatusCompleted
	assert.False(t, task.IsOverdue(now))

	task = Task{Status: StatusInProgress, DueDate: now}
	assert.False(t, task.IsOverdue(now), "due exactly now is not overdue")
}
