package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danmuck/edgeconn/internal/app"
	"github.com/danmuck/edgeconn/internal/config"
	"github.com/danmuck/edgeconn/internal/logging"
	"github.com/danmuck/edgeconn/internal/observability"
	"github.com/danmuck/edgeconn/internal/routing"
	"github.com/danmuck/edgeconn/internal/transport/web"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var startedAt = time.Now()

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "edgeconn: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	path := flag.String("config", "", "path to config.toml (defaults are used when empty)")
	flag.Parse()

	logging.ConfigureRuntime()
	cfg := config.DefaultConfig()
	if *path != "" {
		loaded, err := config.Load(*path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	logging.SetLevel(cfg.LogLevel)

	router, err := routing.NewRouter(demoRoutes()...)
	if err != nil {
		return err
	}
	application := app.New(router, app.WithLogger(log.Logger.With().Str("node", cfg.ID).Logger()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *path != "" {
		go func() {
			err := config.Watch(ctx, *path, func(next config.Config) {
				if logging.SetLevel(next.LogLevel) {
					log.Info().Str("level", next.LogLevel).Msg("log level updated")
				}
			})
			if err != nil {
				log.Warn().Err(err).Msg("config watch disabled")
			}
		}()
	}

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: newEngine(cfg, application),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("node", cfg.ID).Str("addr", cfg.Addr).Msg("edgeconn listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("http server shut down cleanly")
	return nil
}

func newEngine(cfg config.Config, application *app.App) *gin.Engine {
	observability.RegisterMetrics()
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(cfg.ID))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.CORSOrigins,
			AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", observability.RequestIDHeader},
			ExposeHeaders: []string{observability.RequestIDHeader},
			MaxAge:        12 * time.Hour,
		}))
	}
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(startedAt).String(),
			"service": cfg.ID,
			"version": "0.1.0",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.NoRoute(web.Handler(application, cfg.Web))
	return r
}
