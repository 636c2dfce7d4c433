package handlers

import (
	"errors"
	"net/http"

	"taskboard/internal/dto"
	"taskboard/internal/service"
	"taskboard/internal/views"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	svc *service.TaskService
}

func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// Create godoc
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateTaskRequest  true  "Task body"
// @Success      201   {object}  dto.TaskResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	t, err := h.svc.Create(c.Request.Context(), req.Form())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromTask(t))
}

// List godoc
// @Summary      List tasks, newest first
// @Tags         tasks
// @Produce      json
// @Param        filter  query     string  false  "all, completed, pending or high"
// @Success      200     {object}  dto.ListTasksResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	f := views.ParseFilter(c.Query("filter"))
	list := h.svc.List(c.Request.Context(), f)
	c.JSON(http.StatusOK, dto.ListTasksResponse{Items: dto.FromTasks(list), Total: len(list), Filter: string(f)})
}

// GetByID godoc
// @Summary      Get a task by ID
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  dto.TaskResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	t, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromTask(t))
}

// Update godoc
// @Summary      Replace the editable fields of a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "Task ID"
// @Param        body  body      dto.UpdateTaskRequest  true  "Task body"
// @Success      200   {object}  dto.TaskResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) Update(c *gin.Context) {
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	t, err := h.svc.Update(c.Request.Context(), c.Param("id"), req.Form())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromTask(t))
}

// Toggle godoc
// @Summary      Flip the completed flag of a task
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  dto.TaskResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /tasks/{id}/toggle [post]
func (h *TaskHandler) Toggle(c *gin.Context) {
	t, err := h.svc.Toggle(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromTask(t))
}

// Delete godoc
// @Summary      Delete a task
// @Description  Deleting a missing task is a no-op and also returns 204.
// @Tags         tasks
// @Param        id   path  string  true  "Task ID"
// @Success      204
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil && !errors.Is(err, service.ErrNotFound) {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Dashboard godoc
// @Summary      Dashboard statistics
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  dto.DashboardResponse
// @Router       /dashboard [get]
func (h *TaskHandler) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, dto.FromDashboard(h.svc.Dashboard(c.Request.Context())))
}

func writeError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "not found"})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
}
