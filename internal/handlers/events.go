package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"taskboard/internal/dto"
	"taskboard/internal/service"
	"taskboard/internal/store"

	"github.com/gin-gonic/gin"
)

// EventsHandler streams store changes as Server-Sent Events.
type EventsHandler struct {
	svc       *service.TaskService
	buffer    int
	heartbeat time.Duration
	log       *slog.Logger
}

const defaultHeartbeat = 15 * time.Second

func NewEventsHandler(svc *service.TaskService, buffer int, heartbeat time.Duration, log *slog.Logger) *EventsHandler {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	return &EventsHandler{svc: svc, buffer: buffer, heartbeat: heartbeat, log: log}
}

// Stream godoc
// @Summary      Stream task changes
// @Description  Server-Sent Events. A "ready" event carries the current revision, then one event per change named after its kind (added, toggled, updated, deleted) with a dto.ChangeEvent body.
// @Tags         events
// @Produce      text/event-stream
// @Success      200
// @Router       /events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()
	changes := make(chan store.Change, h.buffer)
	unsubscribe := h.svc.Subscribe(func(ch store.Change) {
		select {
		case changes <- ch:
		default:
			h.log.Warn("event stream full, dropping change", "revision", ch.Revision)
		}
	})
	defer unsubscribe()

	// Streams outlive the server write timeout.
	_ = http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{})

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.SSEvent("ready", gin.H{"revision": h.svc.Revision()})
	c.Writer.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ch := <-changes:
			c.SSEvent(string(ch.Kind), dto.FromChange(ch))
			c.Writer.Flush()
		case <-heartbeat.C:
			c.SSEvent("heartbeat", gin.H{"revision": h.svc.Revision()})
			c.Writer.Flush()
		}
	}
}
