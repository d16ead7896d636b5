package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skillsenselab/transcriptflow/config"
	"github.com/skillsenselab/transcriptflow/dispatch"
	"github.com/skillsenselab/transcriptflow/logger"
	"github.com/skillsenselab/transcriptflow/observability"
	"github.com/skillsenselab/transcriptflow/orchestrator"
	"github.com/skillsenselab/transcriptflow/segment"
	"github.com/skillsenselab/transcriptflow/server"
	"github.com/skillsenselab/transcriptflow/store"
	"github.com/skillsenselab/transcriptflow/transcriber/awstranscribe"
)

const serviceName = "transcriptflow"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run() error {
	configFile := flag.String("config", "", "path to config.yml")
	envFile := flag.String("env", "", "path to .env file")
	flag.Parse()

	var opts []config.LoaderOption
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	if *envFile != "" {
		opts = append(opts, config.WithEnvFile(*envFile))
	}

	var cfg config.Config
	if err := config.Load(serviceName, &cfg, opts...); err != nil {
		return err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.New(&cfg.Logging, cfg.Name)
	logger.SetGlobalLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Init(ctx, cfg.Observability, observability.ServiceInfo{
		Name:        cfg.Name,
		Version:     cfg.Version,
		Environment: cfg.Environment,
	}, log)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	st, err := store.NewS3(ctx, &cfg.Store)
	if err != nil {
		return fmt.Errorf("initializing object store: %w", err)
	}

	provider, err := awstranscribe.New(ctx, cfg.Transcriber, st, log)
	if err != nil {
		return fmt.Errorf("initializing transcription provider: %w", err)
	}

	publisher, err := dispatch.NewKafkaPublisher(cfg.Dispatch, log)
	if err != nil {
		return fmt.Errorf("initializing dispatch publisher: %w", err)
	}

	metrics, err := orchestrator.NewMetrics(observability.Meter(serviceName))
	if err != nil {
		return fmt.Errorf("initializing pipeline metrics: %w", err)
	}

	registry := orchestrator.NewRegistry()
	runner, err := orchestrator.NewRunner(cfg.Orchestrator, orchestrator.Deps{
		Provider:   provider,
		Store:      st,
		Dispatcher: dispatch.NewDispatcher(publisher, log),
		Extractor:  segment.NewExtractor(cfg.Segmentation, log),
		Registry:   registry,
		Metrics:    metrics,
		Log:        log,
	})
	if err != nil {
		return fmt.Errorf("initializing orchestrator: %w", err)
	}

	srv, err := server.New(cfg.Server, server.NewHandler(runner, registry, log), log)
	if err != nil {
		return fmt.Errorf("initializing server: %w", err)
	}
	if err := srv.Start(ctx); err != nil {
		return err
	}

	log.Info("Service started", map[string]interface{}{
		"environment": cfg.Environment,
		"version":     cfg.Version,
	})

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
	}
	if err := publisher.Close(); err != nil {
		log.Error("Publisher close failed", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		log.Error("Telemetry shutdown failed", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
	}

	log.Info("Service stopped")
	return nil
}
