// Package web holds the HTML shell and page templates.
package web

import (
	"embed"
	"html/template"
	"net/url"
	"strings"
	"time"

	dom "taskboard/internal/domain"
	"taskboard/internal/views"
)

//go:embed templates/*.html
var files embed.FS

// Nav entries of the shell, in display order.
var Nav = []NavItem{
	{Key: "dashboard", Label: "Dashboard", Path: "/"},
	{Key: "tasks", Label: "Tasks", Path: "/tasks"},
}

type NavItem struct {
	Key   string
	Label string
	Path  string
}

// TasksURL is the list page path with filter f applied.
func TasksURL(f views.Filter) string {
	if f == "" || f == views.FilterAll {
		return "/tasks"
	}
	return "/tasks?filter=" + url.QueryEscape(string(f))
}

// Templates parses the embedded templates.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(Funcs()).ParseFS(files, "templates/*.html")
}

func Funcs() template.FuncMap {
	return template.FuncMap{
		"nav":           func() []NavItem { return Nav },
		"priorities":    func() []dom.Priority { return dom.Priorities },
		"filterOptions": views.FilterOptions,
		"titleMax":      func() int { return views.TitleMaxLen },
		"descMax":       func() int { return views.DescriptionMaxLen },
		"tasksURL":      TasksURL,
		"newTaskURL": func(f views.Filter) string {
			u := TasksURL(f)
			if strings.Contains(u, "?") {
				return u + "&new=1"
			}
			return u + "?new=1"
		},
		"date": func(t time.Time) string { return t.Format("Jan 2, 2006 15:04") },
	}
}
