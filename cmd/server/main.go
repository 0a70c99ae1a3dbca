package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spacesedan/redditpersona/config"
	"github.com/spacesedan/redditpersona/internal/clients"
	"github.com/spacesedan/redditpersona/internal/export"
	"github.com/spacesedan/redditpersona/internal/logging"
	"github.com/spacesedan/redditpersona/internal/monitoring"
	personageneration "github.com/spacesedan/redditpersona/internal/persona_generation"
	"github.com/spacesedan/redditpersona/internal/processing"
	"github.com/spacesedan/redditpersona/internal/server"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	cfg, err := config.Load()
	if err != nil {
		logging.InitLogger("info")
		slog.Error("[Server] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(cfg.LogLevel)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	reddit := clients.NewRedditClient(cfg.Reddit)
	llm := clients.NewLLMClient(cfg.LLM)
	personas := personageneration.NewGenerator(llm, cfg.LLM.RawFallback)

	var archiver export.Archiver
	if cfg.Export.S3Bucket != "" {
		s3Archiver, err := clients.NewS3Archiver(ctx, cfg.Export)
		if err != nil {
			slog.Warn("[Server] S3 archive disabled", slog.String("error", err.Error()))
		} else {
			archiver = s3Archiver
		}
	}
	exporter := export.NewExporter(archiver)

	var opts []processing.AnalyzerOption
	if cfg.Cache.Address != "" {
		cache, err := clients.NewValkeyClient(cfg.Cache)
		if err != nil {
			slog.Warn("[Server] Cache disabled", slog.String("error", err.Error()))
		} else {
			defer cache.Close()

			var healthy atomic.Bool
			healthy.Store(true)
			go monitoring.MonitorCacheHealth(ctx, cache, &healthy, monitoring.HEALTHCHECK_INTERVAL)

			opts = append(opts, processing.WithCache(cache), processing.WithCacheHealth(&healthy))
		}
	}
	if cfg.Events.Broker != "" {
		publisher, err := clients.NewKafkaPublisher(cfg.Events)
		if err != nil {
			slog.Warn("[Server] Analysis events disabled", slog.String("error", err.Error()))
		} else {
			defer publisher.Close()
			opts = append(opts, processing.WithEvents(publisher))
		}
	}

	analyzer := processing.NewAnalyzer(reddit, personas, exporter, opts...)

	redditConfigured, llmConfigured := cfg.HealthFlags()
	api := server.New(analyzer, server.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		Production:     cfg.IsProduction(),
		Health: server.HealthInfo{
			RedditConfigured: redditConfigured,
			LLMConfigured:    llmConfigured,
			LLMProvider:      llm.Provider,
		},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("[Server] Listening",
			slog.String("addr", srv.Addr),
			slog.String("env", cfg.Env),
			slog.String("llm_provider", llm.Provider),
			slog.Bool("cache_enabled", analyzer.CacheEnabled()),
			slog.Bool("events_enabled", analyzer.EventsEnabled()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("[Server] Listen failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("[Server] Shutting down")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("[Server] Forced shutdown", slog.String("error", err.Error()))
	}
	slog.Info("[Server] Exited")
}
