// Package main is the entry point for the anydir asset server. It serves the
// web directory embedded at build time, optionally overlaid by directories
// read from disk at run time.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/CageChen/anydir"
	"github.com/CageChen/anydir/internal/config"
	"github.com/CageChen/anydir/internal/handler"
)

//go:generate go run github.com/CageChen/anydir/cmd/embeddir web

func main() {
	// Load configuration
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	anydir.SetLogger(logger.Named("anydir"))

	dirs, err := cfg.Dirs()
	if err != nil {
		log.Fatalf("Failed to open directories: %v", err)
	}

	log.Printf("anydir - Asset Server")
	log.Printf("Config file: %s", cfg.GetConfigFilePath())
	log.Printf("Serving %d layer(s), topmost first:", len(dirs))
	for i, d := range dirs {
		log.Printf("  [%d] %s (%d files)", i, d, len(d.FileEntries()))
	}
	log.Printf("Server starting at: http://localhost:%d", cfg.Port)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newRouter(cfg, anydir.NewOverlay(dirs...), logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, srv); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func newRouter(cfg *config.Config, overlay *anydir.Overlay, logger *zap.Logger) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	fileHandler := handler.NewFileHandler(cfg, overlay, logger)
	fileHandler.Mount(r, handler.NewListHandler(cfg, overlay))

	if cfg.Gzip {
		return gzhttp.GzipHandler(r)
	}

	return r
}

// run serves until ctx is done, then shuts the server down gracefully.
func run(ctx context.Context, srv *http.Server) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, HEAD, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, If-None-Match")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
