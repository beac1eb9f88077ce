// Package httpapi exposes the timer commands as a JSON API for the chat
// UI's timer widget.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/xvierd/tec-office/internal/ports"
)

const shutdownTimeout = 5 * time.Second

// New builds the gin engine. Requests without an X-User-ID header act
// for defaultUser.
func New(controller ports.TimerController, defaultUser string, logger *log.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery(), identify(defaultUser), requestLogger(logger))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	timers := NewTimerHandler(controller)

	api := engine.Group("/api")
	api.GET("/timers", timers.Status)
	api.POST("/timers", timers.Set)
	api.DELETE("/timers/:type", timers.Cancel)
	api.POST("/pomodoro/:action", timers.ControlPomodoro)
	api.POST("/commands", timers.Command)

	return engine
}

// Serve runs handler on addr until ctx is cancelled, then shuts down.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *log.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
