package app

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/dto"
	"taskboard/internal/service"
	"taskboard/internal/store"
	"taskboard/internal/views"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *service.TaskService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewTaskService(store.New(), nil, log)

	var cfg config.Config
	cfg.App.Env = "test"
	cfg.App.Version = "v-test"
	cfg.Events.Buffer = 16

	r, err := NewRouter(cfg, svc, log)
	require.NoError(t, err)
	return r, svc
}

func do(r http.Handler, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postForm(r http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	return do(r, http.MethodPost, target, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

func TestHealthAndVersion(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"env":"test"}`, w.Body.String())

	w = do(r, http.MethodGet, "/version", nil, "")
	assert.JSONEq(t, `{"version":"v-test"}`, w.Body.String())
}

func TestSwaggerDoc(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodGet, "/swagger-doc.json", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Task Manager API")
}

func TestPages_DashboardCountsTasks(t *testing.T) {
	r, svc := newTestRouter(t)
	ctx := context.Background()
	a, err := svc.Create(ctx, views.TaskForm{Title: "A", Priority: "low"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, views.TaskForm{Title: "B", Priority: "high"})
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, a.ID)
	require.NoError(t, err)

	w := do(r, http.MethodGet, "/", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `<b id="total-tasks">2</b>`)
	assert.Contains(t, body, `<b id="completed-tasks">1</b>`)
	assert.Contains(t, body, `<b id="completion-rate">50%</b>`)
}

func TestPages_SubmitAddsTaskAndRedirects(t *testing.T) {
	r, svc := newTestRouter(t)

	w := postForm(r, "/tasks", url.Values{
		"title":    {"Buy milk"},
		"priority": {"low"},
		"filter":   {"pending"},
	})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/tasks?filter=pending", w.Header().Get("Location"))
	list := svc.List(context.Background(), views.FilterAll)
	require.Len(t, list, 1)
	assert.Equal(t, "Buy milk", list[0].Title)
	assert.False(t, list[0].Completed)
}

func TestPages_SubmitEmptyTitleKeepsDialogOpen(t *testing.T) {
	r, svc := newTestRouter(t)

	w := postForm(r, "/tasks", url.Values{
		"title":       {"   "},
		"description": {"keep me"},
		"priority":    {"high"},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `id="create-dialog"`)
	assert.Contains(t, body, `<span class="error" id="title-error">Title is required</span>`)
	assert.Contains(t, body, "keep me")
	assert.Equal(t, 0, len(svc.List(context.Background(), views.FilterAll)))
}

func TestPages_TasksFilterAndDialog(t *testing.T) {
	r, svc := newTestRouter(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, views.TaskForm{Title: "urgent", Priority: "high"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, views.TaskForm{Title: "later", Priority: "low"})
	require.NoError(t, err)

	w := do(r, http.MethodGet, "/tasks?filter=high", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "urgent")
	assert.NotContains(t, w.Body.String(), "later")
	assert.Contains(t, w.Body.String(), `<span id="task-count">1 tasks</span>`)
	assert.NotContains(t, w.Body.String(), `id="create-dialog"`)

	w = do(r, http.MethodGet, "/tasks?new=1", nil, "")
	assert.Contains(t, w.Body.String(), `id="create-dialog"`)
}

func TestPages_ToggleAndDeleteRedirect(t *testing.T) {
	r, svc := newTestRouter(t)
	ctx := context.Background()
	task, err := svc.Create(ctx, views.TaskForm{Title: "A", Priority: "medium"})
	require.NoError(t, err)

	w := postForm(r, "/tasks/"+task.ID+"/toggle", url.Values{"filter": {"completed"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/tasks?filter=completed", w.Header().Get("Location"))
	got, err := svc.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)

	w = postForm(r, "/tasks/"+task.ID+"/delete", url.Values{})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/tasks", w.Header().Get("Location"))
	assert.Empty(t, svc.List(ctx, views.FilterAll))

	// stale rows are no-ops
	w = postForm(r, "/tasks/"+task.ID+"/toggle", url.Values{})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	w = postForm(r, "/tasks/"+task.ID+"/delete", url.Values{})
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestAPI_CreateAndList(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/v1/tasks", strings.NewReader(`{"title":"Buy milk"}`), "application/json")
	require.Equal(t, http.StatusCreated, w.Code)
	var created dto.TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Buy milk", created.Title)
	assert.Equal(t, "medium", created.Priority)
	assert.NotEmpty(t, created.ID)

	w = do(r, http.MethodGet, "/api/v1/tasks?filter=pending", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.ListTasksResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, "pending", list.Filter)
	assert.Equal(t, created.ID, list.Items[0].ID)
}

func TestAPI_CreateValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/v1/tasks", strings.NewReader(`{"title":"","priority":"urgent"}`), "application/json")

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Title is required", resp.Fields["title"])
	assert.Equal(t, "Priority must be one of low, medium, high", resp.Fields["priority"])

	w = do(r, http.MethodPost, "/api/v1/tasks", strings.NewReader(`{`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_TaskLifecycle(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/v1/tasks", strings.NewReader(`{"title":"A","priority":"low"}`), "application/json")
	require.Equal(t, http.StatusCreated, w.Code)
	var task dto.TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))
	path := "/api/v1/tasks/" + task.ID

	w = do(r, http.MethodPost, path+"/toggle", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))
	assert.True(t, task.Completed)

	w = do(r, http.MethodPatch, path, strings.NewReader(`{"title":"A2","priority":"high"}`), "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))
	assert.Equal(t, "A2", task.Title)
	assert.True(t, task.Completed)

	w = do(r, http.MethodGet, "/api/v1/dashboard", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var stats dto.DashboardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalTasks)
	assert.Equal(t, 100, stats.CompletionRate)

	w = do(r, http.MethodDelete, path, nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(r, http.MethodDelete, path, nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodGet, path, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(r, http.MethodPost, path+"/toggle", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(r, http.MethodPatch, path, strings.NewReader(`{"title":"x","priority":"low"}`), "application/json")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEvents_StreamsChanges(t *testing.T) {
	r, svc := newTestRouter(t)
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	lines := bufio.NewReader(resp.Body)
	readEvent := func() (string, string) {
		var event, data string
		for {
			line, err := lines.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event:"):
				event = strings.TrimPrefix(line, "event:")
			case strings.HasPrefix(line, "data:"):
				data = strings.TrimPrefix(line, "data:")
			case line == "" && event != "":
				return event, data
			}
		}
	}

	event, data := readEvent()
	require.Equal(t, "ready", event)
	assert.JSONEq(t, `{"revision":0}`, data)

	_, err = svc.Create(context.Background(), views.TaskForm{Title: "live", Priority: "high"})
	require.NoError(t, err)

	event, data = readEvent()
	require.Equal(t, "added", event)
	var change dto.ChangeEvent
	require.NoError(t, json.Unmarshal([]byte(data), &change))
	assert.Equal(t, uint64(1), change.Revision)
	assert.Equal(t, "live", change.Task.Title)
}

func TestNewLogger(t *testing.T) {
	var buf strings.Builder
	log := NewLogger(&buf, config.LogConfig{Level: "warn", Format: "json"})

	log.Info("hidden")
	log.Warn("shown", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"k":"v"`)
}
