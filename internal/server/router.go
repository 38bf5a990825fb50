// Package server exposes wizard sessions and the approval chain over HTTP.
//
// Each client session gets its own [workflow.Session] keyed by a uuid, so
// concurrent users never share navigation state. Submissions go to the
// shared [approval.Store].
//
// Key types:
//   - [Handler] - gin handlers for paths, sessions and submissions
//   - [SessionManager] - live sessions, one lock per session
//
// Routes (all under /api):
//
//	GET    /paths                        list request paths
//	GET    /paths/:id                    path with its decisions and fields
//	POST   /sessions                     start a session {path_id}
//	GET    /sessions/:id                 session snapshot
//	DELETE /sessions/:id                 discard a session
//	PUT    /sessions/:id/forms/:kind     save form data
//	PUT    /sessions/:id/attachments     save attachments
//	POST   /sessions/:id/next            advance {answer}
//	POST   /sessions/:id/back            go back
//	GET    /sessions/:id/bundle          assembled documents
//	POST   /sessions/:id/submit          confirm and submit {token, submitter}
//	GET    /submissions                  list (?status=&submitter=)
//	GET    /submissions/:id              one submission
//	POST   /submissions/:id/approve      {role, actor}
//	POST   /submissions/:id/reject       {role, actor, reason}
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
)

// shutdownTimeout bounds graceful shutdown in [Run].
const shutdownTimeout = 5 * time.Second

// Setup builds the gin engine with logging and recovery middleware and the
// API mounted under /api. mode is a gin mode; empty means release.
func Setup(mode string, h *Handler) *gin.Engine {
	switch mode {
	case gin.DebugMode, gin.TestMode:
		gin.SetMode(mode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(recovery(h.logger), requestLogger(h.logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": h.sessions.Len()})
	})

	api := r.Group("/api")
	h.RegisterRoutes(api)

	return r
}

// requestLogger logs one line per request.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("route", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("elapsed", time.Since(start)),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("request completed", attrs...)
			return
		}
		logger.Debug("request completed", attrs...)
	}
}

// recovery converts handler panics into 500 responses and logs the stack
// through logger instead of gin's own writer.
func recovery(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		logger.Error("handler panicked",
			slog.String("route", c.FullPath()),
			slog.Any("panic", recovered),
			slog.String("stack", string(debug.Stack())),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	})
}

// Run serves handler on addr until ctx is cancelled, then shuts down
// gracefully.
func Run(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
