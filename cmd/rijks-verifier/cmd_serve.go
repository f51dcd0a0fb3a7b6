package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"rijks-verifier/internal/adapters/primary/http/handlers"
	"rijks-verifier/internal/adapters/primary/http/middleware"
)

func newServeCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the verifier over HTTP",
		Long: `Starts an HTTP server that runs checks on request.

Run history is stored when DATABASE_ENABLED=true.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), cfg, cfg.Database.Enabled)
			if err != nil {
				return err
			}
			defer a.Close()

			return serve(a)
		},
	}
}

func newRouter(a *app) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())

	h := handlers.New(a.svc)
	api := router.Group("/api/v1/verifier")
	h.RegisterRoutes(api)

	// Health check with DB ping when history is enabled
	router.GET("/healthz", func(c *gin.Context) {
		if a.pool != nil {
			if err := a.pool.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}

func serve(a *app) error {
	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: newRouter(a),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}
