package views

import (
	"strings"
	"testing"
	"time"

	dom "taskboard/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() []dom.Task {
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return []dom.Task{
		{ID: "6", Title: "six", Priority: dom.PriorityHigh, Completed: true, CreatedAt: t0.Add(6 * time.Minute)},
		{ID: "5", Title: "five", Priority: dom.PriorityLow, CreatedAt: t0.Add(5 * time.Minute)},
		{ID: "4", Title: "four", Priority: dom.PriorityHigh, CreatedAt: t0.Add(4 * time.Minute)},
		{ID: "3", Title: "three", Priority: dom.PriorityMedium, Completed: true, CreatedAt: t0.Add(3 * time.Minute)},
		{ID: "2", Title: "two", Priority: dom.PriorityMedium, CreatedAt: t0.Add(2 * time.Minute)},
		{ID: "1", Title: "one", Priority: dom.PriorityLow, CreatedAt: t0.Add(time.Minute)},
	}
}

func TestDashboard_Empty(t *testing.T) {
	got := Dashboard(nil)

	assert.Equal(t, 0, got.TotalTasks)
	assert.Equal(t, 0, got.CompletedTasks)
	assert.Equal(t, 0, got.PendingTasks)
	assert.Equal(t, 0, got.CompletionRate)
	assert.Empty(t, got.RecentTasks)
}

func TestDashboard_Counts(t *testing.T) {
	got := Dashboard(sample())

	assert.Equal(t, 6, got.TotalTasks)
	assert.Equal(t, 2, got.CompletedTasks)
	assert.Equal(t, 4, got.PendingTasks)
	assert.Equal(t, 33, got.CompletionRate)
	require.Len(t, got.RecentTasks, RecentLimit)
	assert.Equal(t, "six", got.RecentTasks[0].Title)
	assert.Equal(t, "two", got.RecentTasks[4].Title)
}

func TestDashboard_CompletionRateRounding(t *testing.T) {
	cases := []struct {
		completed, total, want int
	}{
		{1, 1, 100},
		{1, 2, 50},
		{2, 3, 67},
		{1, 8, 13}, // 12.5 rounds up
		{1, 3, 33},
		{0, 4, 0},
	}
	for _, tc := range cases {
		tasks := make([]dom.Task, tc.total)
		for i := 0; i < tc.completed; i++ {
			tasks[i].Completed = true
		}
		assert.Equal(t, tc.want, Dashboard(tasks).CompletionRate, "%d/%d", tc.completed, tc.total)
	}
}

func TestDashboard_RecentIsCopy(t *testing.T) {
	tasks := sample()
	got := Dashboard(tasks)
	got.RecentTasks[0].Title = "changed"

	assert.Equal(t, "six", tasks[0].Title)
}

func TestParseFilter(t *testing.T) {
	assert.Equal(t, FilterAll, ParseFilter(""))
	assert.Equal(t, FilterAll, ParseFilter("bogus"))
	assert.Equal(t, FilterCompleted, ParseFilter("completed"))
	assert.Equal(t, FilterPending, ParseFilter(" Pending "))
	assert.Equal(t, FilterHigh, ParseFilter("HIGH"))
}

func TestApplyFilter(t *testing.T) {
	tasks := sample()

	assert.Len(t, ApplyFilter(tasks, FilterAll), len(tasks))

	for _, task := range ApplyFilter(tasks, FilterHigh) {
		assert.Equal(t, dom.PriorityHigh, task.Priority)
	}
	assert.Len(t, ApplyFilter(tasks, FilterHigh), 2)

	completed := ApplyFilter(tasks, FilterCompleted)
	pending := ApplyFilter(tasks, FilterPending)
	assert.Equal(t, len(tasks), len(completed)+len(pending))
	seen := map[string]int{}
	for _, task := range append(completed, pending...) {
		seen[task.ID]++
	}
	for _, task := range tasks {
		assert.Equal(t, 1, seen[task.ID], "task %s", task.ID)
	}

	assert.Equal(t, []string{"six", "three"}, []string{completed[0].Title, completed[1].Title})
}

func TestFilterOptions(t *testing.T) {
	opts := FilterOptions()
	require.Len(t, opts, 4)
	assert.Equal(t, FilterAll, opts[0].Value)
	assert.Equal(t, "High Priority", opts[3].Label)
}

type recordingAdder struct {
	added []dom.NewTask
}

func (r *recordingAdder) AddTask(in dom.NewTask) dom.Task {
	r.added = append(r.added, in)
	return dom.Task{ID: "x", Title: in.Title, Description: in.Description, Priority: in.Priority}
}

func TestNewTaskForm_DefaultsToMedium(t *testing.T) {
	assert.Equal(t, "medium", NewTaskForm().Priority)
	assert.Equal(t, "", NewTaskForm().Title)
}

func TestValidate(t *testing.T) {
	assert.Nil(t, TaskForm{Title: "ok", Priority: "low"}.Validate())

	errs := TaskForm{Title: "   ", Priority: "medium"}.Validate()
	assert.Equal(t, FieldErrors{"title": "Title is required"}, errs)

	errs = TaskForm{Title: "x", Priority: "urgent"}.Validate()
	assert.Equal(t, "Priority must be one of low, medium, high", errs["priority"])

	errs = TaskForm{Title: "x"}.Validate()
	assert.Equal(t, "Priority is required", errs["priority"])

	errs = TaskForm{Title: strings.Repeat("a", 121), Description: strings.Repeat("b", 1001), Priority: "high"}.Validate()
	assert.Equal(t, "Title must be at most 120 characters", errs["title"])
	assert.Equal(t, "Description must be at most 1000 characters", errs["description"])
	assert.Equal(t, "Title must be at most 120 characters; Description must be at most 1000 characters", errs.Error())
}

func TestSubmit_Valid(t *testing.T) {
	adder := &recordingAdder{}

	task, dialog := Submit(adder, TaskForm{Title: "  Buy milk ", Priority: "LOW"})

	require.NotNil(t, task)
	assert.Equal(t, []dom.NewTask{{Title: "Buy milk", Priority: dom.PriorityLow}}, adder.added)
	assert.False(t, dialog.Open)
	assert.Equal(t, NewTaskForm(), dialog.Form)
	assert.Nil(t, dialog.Errors)
}

func TestSubmit_EmptyTitleKeepsDialogOpen(t *testing.T) {
	adder := &recordingAdder{}
	form := TaskForm{Title: "", Description: "keep me", Priority: "high"}

	task, dialog := Submit(adder, form)

	assert.Nil(t, task)
	assert.Empty(t, adder.added)
	assert.True(t, dialog.Open)
	assert.Equal(t, form, dialog.Form)
	assert.Contains(t, dialog.Errors, "title")
}
