// Package server exposes cloze generation, word lookup and history over
// HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/cloze/internal/dictionary"
	"github.com/abhisek/cloze/internal/exercise"
	"github.com/abhisek/cloze/internal/history"
	"github.com/abhisek/cloze/internal/logger"
)

// RouterConfig carries the services the routes call.
type RouterConfig struct {
	Cloze       *exercise.Service
	History     *history.Service
	Dictionary  *dictionary.Service
	Log         *logger.Logger
	CORSOrigins []string
}

// NewRouter builds the gin engine with all routes and middleware.
func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}
	h := &handlers{
		cloze:      cfg.Cloze,
		history:    cfg.History,
		dictionary: cfg.Dictionary,
		log:        log.With("component", "http"),
	}

	router := gin.New()
	router.Use(RequestID(), RequestLogger(h.log), gin.Recovery(), CORS(cfg.CORSOrigins))

	router.GET("/healthcheck", healthCheck)

	api := router.Group("/api")
	{
		api.POST("/cloze", h.generate)
		api.GET("/words/:word", h.lookup)

		api.GET("/history", h.listHistory)
		api.DELETE("/history", h.clearHistory)
		api.POST("/history/import", h.importHistory)
		api.GET("/history/:id", h.getHistory)
		api.DELETE("/history/:id", h.deleteHistory)
		api.PUT("/history/:id/answers", h.recordAnswers)
	}

	return router
}

// Timeouts bounds the HTTP server.
type Timeouts struct {
	Read     time.Duration
	Write    time.Duration
	Shutdown time.Duration
}

// Serve listens on addr until ctx ends, then shuts down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, t Timeouts, log *logger.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: t.Read,
		ReadTimeout:       t.Read,
		WriteTimeout:      t.Write,
	}

	if t.Shutdown <= 0 {
		t.Shutdown = 10 * time.Second
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.Shutdown)
		defer cancel()
		log.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
