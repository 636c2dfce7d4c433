package dto

import (
	"time"

	dom "taskboard/internal/domain"
	"taskboard/internal/store"
	"taskboard/internal/views"
)

// CreateTaskRequest is the JSON body for POST /tasks. Priority defaults to
// "medium" when omitted.
type CreateTaskRequest struct {
	Title       string `json:"title" example:"Buy milk"`
	Description string `json:"description" example:"2 litres"`
	Priority    string `json:"priority" example:"low" enums:"low,medium,high"`
}

// UpdateTaskRequest is the JSON body for PATCH /tasks/{id}. It replaces all
// editable fields.
type UpdateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority" enums:"low,medium,high"`
}

// Form converts the request into the creation form.
func (r CreateTaskRequest) Form() views.TaskForm {
	f := views.TaskForm{Title: r.Title, Description: r.Description, Priority: r.Priority}
	if f.Priority == "" {
		f.Priority = string(dom.PriorityMedium)
	}
	return f
}

// Form converts the request into the creation form.
func (r UpdateTaskRequest) Form() views.TaskForm {
	return views.TaskForm{Title: r.Title, Description: r.Description, Priority: r.Priority}
}

type TaskResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	Seq         uint64    `json:"seq"`
}

type ListTasksResponse struct {
	Items  []TaskResponse `json:"items"`
	Total  int            `json:"total"`
	Filter string         `json:"filter"`
}

type DashboardResponse struct {
	TotalTasks     int            `json:"total_tasks"`
	CompletedTasks int            `json:"completed_tasks"`
	PendingTasks   int            `json:"pending_tasks"`
	CompletionRate int            `json:"completion_rate"`
	RecentTasks    []TaskResponse `json:"recent_tasks"`
}

// ChangeEvent is the wire form of a store change, used by the SSE stream and
// the Redis change channel.
type ChangeEvent struct {
	Kind     string       `json:"kind"`
	Revision uint64       `json:"revision"`
	Task     TaskResponse `json:"task"`
}

// ErrorResponse is returned on failures. Fields is set for validation errors.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func FromTask(t dom.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		Seq:         t.Seq,
	}
}

func FromTasks(list []dom.Task) []TaskResponse {
	out := make([]TaskResponse, len(list))
	for i := range list {
		out[i] = FromTask(list[i])
	}
	return out
}

func FromDashboard(s views.DashboardStats) DashboardResponse {
	return DashboardResponse{
		TotalTasks:     s.TotalTasks,
		CompletedTasks: s.CompletedTasks,
		PendingTasks:   s.PendingTasks,
		CompletionRate: s.CompletionRate,
		RecentTasks:    FromTasks(s.RecentTasks),
	}
}

func FromChange(c store.Change) ChangeEvent {
	return ChangeEvent{Kind: string(c.Kind), Revision: c.Revision, Task: FromTask(c.Task)}
}
