package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telebook/internal/config"
	"telebook/internal/constants"
	"telebook/internal/media"
	"telebook/internal/metrics"
	"telebook/internal/models"
	"telebook/internal/queue"
	"telebook/internal/retry"
	"telebook/internal/scheduler"
	"telebook/internal/service"
	"telebook/internal/tracing"
	"telebook/pkg/facebook"
	"telebook/pkg/telegram"

	"github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	// CLI flags
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	configPath = flag.String("config", "config.json", "Path to configuration file")
	version    = flag.Bool("version", false, "Show version information")
	once       = flag.Bool("once", false, "Run a single schedule and delivery pass, then exit")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("Telebook %s\nBuild Time: %s\nGit Commit: %s\n", Version, BuildTime, GitCommit)
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logrus.Fatalf("Application error: %v", err)
	}
}

func run(ctx context.Context) error {
	// Local deployments keep secrets in a .env next to the binary; absence
	// is fine, the environment may already be populated.
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	logger.WithFields(logrus.Fields{
		"version": Version,
		"build":   BuildTime,
		"commit":  GitCommit,
	}).Info("Starting Telebook")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	configureLogging(logger, cfg)

	tracingManager := tracing.NewManager(cfg.Tracing, logger)
	if err := tracingManager.Initialize(ctx); err != nil {
		logger.Warnf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := tracingManager.Shutdown(context.Background()); err != nil {
			logger.Warnf("Failed to shutdown tracing: %v", err)
		}
	}()

	store := queue.NewFileStore(cfg.Queue.Path, logger)
	manager := queue.NewManager(store)
	registry := metrics.NewRegistry()

	tgClient := telegram.NewClient(cfg.Telegram.APIBaseURL, cfg.Telegram.BotToken,
		&http.Client{Timeout: constants.DefaultDownloadTimeoutSec * time.Second}, logger)

	fetcher, err := media.NewFetcher(tgClient, cfg.Media.ScratchDir, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize media scratch area: %w", err)
	}

	fbClient := facebook.NewClient(facebook.ClientConfig{
		BaseURL:      cfg.Facebook.APIBaseURL,
		GraphVersion: cfg.Facebook.GraphVersion,
		PageID:       cfg.Facebook.PageID,
		AccessToken:  cfg.Facebook.AccessToken,
		ChunkSize:    int64(cfg.Media.VideoChunkSizeMB) * constants.BytesPerMegabyte,
		Timeout:      constants.DefaultUploadTimeoutSec * time.Second,
	}, logger)

	pipeline := service.NewPipeline(fbClient, fetcher, service.PipelineConfig{
		DryRun:      cfg.DryRun,
		Configured:  config.IsFacebookConfigured(cfg),
		MinInterval: constants.MinPostIntervalSec * time.Second,
	}, logger)

	sched, err := scheduler.New(cfg.Schedule, logger)
	if err != nil {
		return fmt.Errorf("failed to build scheduler: %w", err)
	}

	policy := retry.Policy{
		InitialDelay: time.Duration(cfg.Retry.InitialBackoffMin) * time.Minute,
		MaxDelay:     time.Duration(cfg.Retry.MaxBackoffHours) * time.Hour,
		Multiplier:   2.0,
		MaxAttempts:  cfg.Retry.MaxAttempts,
	}

	processor := service.NewProcessor(manager, pipeline, sched, policy, cfg.Queue.PostNowTag, registry, logger)
	ingestor := service.NewIngestor(manager, registry, logger)
	statusReporter := service.NewStatusReporter(manager, cfg)

	if cfg.DryRun {
		logger.Warn("Dry run enabled: no posts will reach the page")
	}
	if !config.IsFacebookConfigured(cfg) && !cfg.DryRun {
		logger.Warn("Page credentials are missing or placeholders; items will queue but not deliver")
	}

	if *once {
		if _, err := processor.Assign(ctx); err != nil {
			return fmt.Errorf("schedule pass failed: %w", err)
		}
		if err := processor.Run(ctx); err != nil {
			return fmt.Errorf("delivery pass failed: %w", err)
		}
		return nil
	}

	jobs, err := startJobs(ctx, cfg, processor, logger)
	if err != nil {
		return fmt.Errorf("failed to start periodic jobs: %w", err)
	}
	defer func() {
		if err := jobs.Shutdown(); err != nil {
			logger.Warnf("Failed to shutdown job scheduler: %v", err)
		}
	}()

	server := NewServer(cfg, ingestor, statusReporter, registry, logger)
	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case err := <-serverErrCh:
		logger.Error(err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.DefaultGracefulShutdownSec*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}

	logger.Info("Server shutdown completed")
	return nil
}

// startJobs wires the two periodic passes, slot assignment and delivery, in
// the configured timezone.
func startJobs(ctx context.Context, cfg *models.Config, processor *service.Processor, logger *logrus.Logger) (gocron.Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		return nil, err
	}

	jobs, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, err
	}

	_, err = jobs.NewJob(
		gocron.DurationJob(time.Duration(cfg.Schedule.AssignIntervalMin)*time.Minute),
		gocron.NewTask(func() {
			if _, err := processor.Assign(ctx); err != nil {
				logger.WithError(err).Error("Schedule pass failed")
			}
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return nil, err
	}

	_, err = jobs.NewJob(
		gocron.DurationJob(time.Duration(cfg.Schedule.ProcessIntervalMin)*time.Minute),
		gocron.NewTask(func() {
			if err := processor.Run(ctx); err != nil {
				logger.WithError(err).Error("Delivery pass failed")
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	jobs.Start()
	logger.WithFields(logrus.Fields{
		"processIntervalMin": cfg.Schedule.ProcessIntervalMin,
		"assignIntervalMin":  cfg.Schedule.AssignIntervalMin,
		"timezone":           cfg.Schedule.Timezone,
	}).Info("Periodic jobs started")

	return jobs, nil
}

func configureLogging(logger *logrus.Logger, cfg *models.Config) {
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
		logger.Info("Verbose logging enabled")
	} else if cfg.LogLevel != "" {
		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			logger.Warnf("Invalid log level %q, defaulting to info", cfg.LogLevel)
			logger.SetLevel(logrus.InfoLevel)
		} else {
			logger.SetLevel(level)
		}
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	if cfg.ErrorLog != "" {
		hook, err := newErrorFileHook(cfg.ErrorLog)
		if err != nil {
			logger.Warnf("Failed to open error log %s: %v", cfg.ErrorLog, err)
		} else {
			logger.AddHook(hook)
		}
	}
}

// errorFileHook mirrors error-and-above entries into a dedicated file so
// delivery failures survive log rotation of the main stream.
type errorFileHook struct {
	file      *os.File
	formatter logrus.Formatter
}

func newErrorFileHook(path string) (*errorFileHook, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640) // #nosec G304 - Operator-supplied log path
	if err != nil {
		return nil, err
	}
	return &errorFileHook{
		file:      f,
		formatter: &logrus.JSONFormatter{},
	}, nil
}

func (h *errorFileHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}
}

func (h *errorFileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.file.Write(line)
	return err
}
