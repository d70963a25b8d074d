package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"bugtriage/classifier"
	"bugtriage/config"
	"bugtriage/handlers"
	"bugtriage/logging"
	"bugtriage/services"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(os.Stderr, "api", cfg.Level, cfg.Format)
	log := logging.New("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := classifier.Loader{
		Fetcher:    cfg.Storage.Router(),
		HTTPClient: &http.Client{Timeout: cfg.ModelTimeout},
	}
	artifact, err := loader.Load(ctx, cfg.ModelPath)
	if err != nil {
		log.Error("failed to load model", "path", cfg.ModelPath, "error", err)
		os.Exit(1)
	}
	log.Info("model loaded",
		"location", artifact.Location,
		"format", artifact.Format,
		"digest", artifact.Digest,
		"probabilistic", artifact.Probabilistic(),
	)

	var usage services.UsageRecorder = services.NopUsage{}
	if cfg.UsageEnabled() {
		redisUsage, err := services.NewRedisUsage(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Error("invalid redis config", "error", err)
			os.Exit(1)
		}
		defer redisUsage.Close()
		if err := redisUsage.Ping(ctx); err != nil {
			log.Warn("redis unreachable, usage counters may be incomplete", "error", err)
		} else {
			log.Info("usage counters enabled")
		}
		usage = redisUsage
	}

	server := handlers.New(services.NewPredictionService(artifact, usage), handlers.Options{
		AllowedOrigin: cfg.CORSAllowedOrigin,
		MaxBodyBytes:  cfg.MaxBodyBytes,
	})
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      server.Routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  2 * cfg.ReadTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("bug triage service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
