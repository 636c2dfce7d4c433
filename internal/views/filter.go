package views

import (
	"strings"

	dom "taskboard/internal/domain"
)

// Filter selects which tasks the list shows. Exactly one is active.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterCompleted Filter = "completed"
	FilterPending   Filter = "pending"
	FilterHigh      Filter = "high"
)

// FilterOption is one entry of the filter selector.
type FilterOption struct {
	Value Filter
	Label string
}

var filterOptions = []FilterOption{
	{FilterAll, "All Tasks"},
	{FilterCompleted, "Completed"},
	{FilterPending, "Pending"},
	{FilterHigh, "High Priority"},
}

// FilterOptions returns the selectable filters in display order.
func FilterOptions() []FilterOption {
	return append([]FilterOption(nil), filterOptions...)
}

// ParseFilter maps s to a Filter. Empty or unknown values select FilterAll.
func ParseFilter(s string) Filter {
	f := Filter(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FilterCompleted, FilterPending, FilterHigh:
		return f
	}
	return FilterAll
}

// Match reports whether t passes the filter.
func (f Filter) Match(t dom.Task) bool {
	switch f {
	case FilterCompleted:
		return t.Completed
	case FilterPending:
		return !t.Completed
	case FilterHigh:
		return t.Priority == dom.PriorityHigh
	}
	return true
}

// ApplyFilter returns the tasks matching f, keeping their order.
func ApplyFilter(tasks []dom.Task, f Filter) []dom.Task {
	out := make([]dom.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}
