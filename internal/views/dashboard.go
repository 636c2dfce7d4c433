package views

import (
	"math"

	dom "taskboard/internal/domain"
)

// RecentLimit is how many tasks the dashboard lists as recent.
const RecentLimit = 5

// DashboardStats is the summary shown on the dashboard.
type DashboardStats struct {
	TotalTasks     int
	CompletedTasks int
	PendingTasks   int
	// CompletionRate is a whole percentage in [0, 100].
	CompletionRate int
	RecentTasks    []dom.Task
}

// Dashboard summarises tasks, which must already be ordered newest first.
func Dashboard(tasks []dom.Task) DashboardStats {
	completed := 0
	for _, t := range tasks {
		if t.Completed {
			completed++
		}
	}
	total := len(tasks)

	rate := 0
	if total > 0 {
		rate = int(math.Round(float64(completed) / float64(total) * 100))
	}

	recent := tasks[:min(RecentLimit, total)]

	return DashboardStats{
		TotalTasks:     total,
		CompletedTasks: completed,
		PendingTasks:   total - completed,
		CompletionRate: rate,
		RecentTasks:    append([]dom.Task(nil), recent...),
	}
}
