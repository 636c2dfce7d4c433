package domain

import "time"

// Priority is the urgency level of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists the valid priorities, lowest first.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is the domain entity.
// It does not depend on gin, Postgres or Redis.
type Task struct {
	ID          string
	Title       string
	Description string
	Priority    Priority
	Completed   bool
	CreatedAt   time.Time

	// Seq is the store insertion sequence; it orders tasks created at the same instant.
	Seq uint64
}

// NewTask carries the user-supplied fields of a task.
// ID, CreatedAt, Completed and Seq are assigned by the store.
type NewTask struct {
	Title       string
	Description string
	Priority    Priority
}

// Newer reports whether a sorts before b: later CreatedAt first, later Seq on ties.
func Newer(a, b Task) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.Seq > b.Seq
}
