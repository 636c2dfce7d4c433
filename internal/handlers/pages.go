package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	dom "taskboard/internal/domain"
	"taskboard/internal/service"
	"taskboard/internal/views"
	"taskboard/internal/web"

	"github.com/gin-gonic/gin"
)

// PageHandler serves the HTML shell: dashboard and task list.
type PageHandler struct {
	svc *service.TaskService
	log *slog.Logger
}

func NewPageHandler(svc *service.TaskService, log *slog.Logger) *PageHandler {
	return &PageHandler{svc: svc, log: log}
}

// submission is the body of every task list form; Filter carries the list
// filter back to the redirect.
type submission struct {
	views.TaskForm
	Filter string `form:"filter"`
}

func (h *PageHandler) Dashboard(c *gin.Context) {
	c.HTML(http.StatusOK, "dashboard", gin.H{
		"Title":  "Dashboard",
		"Active": "dashboard",
		"Stats":  h.svc.Dashboard(c.Request.Context()),
	})
}

func (h *PageHandler) Tasks(c *gin.Context) {
	dialog := views.DialogState{Open: c.Query("new") == "1", Form: views.NewTaskForm()}
	h.renderTasks(c, http.StatusOK, views.ParseFilter(c.Query("filter")), dialog)
}

// Create handles the creation dialog. A rejected form re-renders the list
// with the dialog open and its field errors.
func (h *PageHandler) Create(c *gin.Context) {
	var sub submission
	if err := c.ShouldBind(&sub); err != nil {
		c.String(http.StatusBadRequest, "bad form: %v", err)
		return
	}
	f := views.ParseFilter(sub.Filter)
	t, dialog := h.svc.Submit(c.Request.Context(), sub.TaskForm)
	if t == nil {
		h.renderTasks(c, http.StatusUnprocessableEntity, f, dialog)
		return
	}
	c.Redirect(http.StatusSeeOther, web.TasksURL(f))
}

// Toggle and Delete ignore ids that are gone: the row was stale.
func (h *PageHandler) Toggle(c *gin.Context) {
	_, err := h.svc.Toggle(c.Request.Context(), c.Param("id"))
	h.back(c, err)
}

func (h *PageHandler) Delete(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	h.back(c, err)
}

func (h *PageHandler) back(c *gin.Context, err error) {
	if err != nil && !errors.Is(err, service.ErrNotFound) {
		h.log.ErrorContext(c.Request.Context(), "row action", "path", c.FullPath(), "err", err)
	}
	c.Redirect(http.StatusSeeOther, web.TasksURL(views.ParseFilter(c.PostForm("filter"))))
}

func (h *PageHandler) renderTasks(c *gin.Context, status int, f views.Filter, dialog views.DialogState) {
	tasks := h.svc.List(c.Request.Context(), f)
	if tasks == nil {
		tasks = []dom.Task{}
	}
	c.HTML(status, "tasks", gin.H{
		"Title":  "Tasks",
		"Active": "tasks",
		"Filter": f,
		"Tasks":  tasks,
		"Dialog": dialog,
	})
}
