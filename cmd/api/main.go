// @title           Task Manager API
// @version         1.0
// @description     Task board with dashboard statistics, filters and live change events.
// @host            localhost:8080
// @BasePath        /api/v1
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"taskboard/internal/app"
	"taskboard/internal/config"

	gfshutdown "github.com/gelmium/graceful-shutdown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := app.NewLogger(os.Stdout, cfg.Log)
	slog.SetDefault(log)
	log.Info("config loaded", "env", cfg.App.Env, "postgres", cfg.PG.Enabled(), "redis", cfg.Redis.Enabled())

	application, err := app.New(cfg, log)
	if err != nil {
		log.Error("app init", "err", err)
		os.Exit(1)
	}
	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.HTTP.Port,
		Handler:      application.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout.Duration(),
		WriteTimeout: cfg.HTTP.WriteTimeout.Duration(),
		IdleTimeout:  cfg.HTTP.IdleTimeout.Duration(),
	}

	go func() {
		log.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "err", err)
			os.Exit(1)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.HTTP.ShutdownTimeout.Duration(),
		map[string]gfshutdown.Operation{
			"taskboard": func(ctx context.Context) error {
				log.Info("shutting down")
				if err := server.Shutdown(ctx); err != nil {
					return err
				}
				return application.Close(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Info("exited", "code", exitCode)
	os.Exit(exitCode)
}
