package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"taskboard/internal/config"
	"taskboard/internal/handlers"
	"taskboard/internal/service"
	"taskboard/internal/web"

	_ "taskboard/docs"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, svc *service.TaskService, log *slog.Logger) error {
	tmpl, err := web.Templates()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
	))

	pages := handlers.NewPageHandler(svc, log)
	registerPageRoutes(r, pages)

	api := r.Group("/api/v1")
	registerTaskRoutes(api, handlers.NewTaskHandler(svc))
	events := handlers.NewEventsHandler(svc, cfg.Events.Buffer, cfg.Events.Heartbeat.Duration(), log)
	api.GET("/events", events.Stream)
	return nil
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerPageRoutes(r *gin.Engine, h *handlers.PageHandler) {
	r.GET("/", h.Dashboard)
	r.GET("/tasks", h.Tasks)
	r.POST("/tasks", h.Create)
	r.POST("/tasks/:id/toggle", h.Toggle)
	r.POST("/tasks/:id/delete", h.Delete)
}

func registerTaskRoutes(api *gin.RouterGroup, h *handlers.TaskHandler) {
	api.GET("/dashboard", h.Dashboard)
	api.POST("/tasks", h.Create)
	api.GET("/tasks", h.List)
	api.GET("/tasks/:id", h.GetByID)
	api.PATCH("/tasks/:id", h.Update)
	api.DELETE("/tasks/:id", h.Delete)
	api.POST("/tasks/:id/toggle", h.Toggle)
}
