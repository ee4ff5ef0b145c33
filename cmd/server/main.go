package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	_ "docqa/docs"
	"docqa/internal/config"
	"docqa/internal/events"
	"docqa/internal/handler"
	"docqa/internal/llm"
	_ "docqa/internal/llm/providers"
	"docqa/internal/logging"
	"docqa/internal/metrics"
	"docqa/internal/port"
	"docqa/internal/repository/memory"
	"docqa/internal/repository/postgres"
	"docqa/internal/router"
	"docqa/internal/service"
	s3storage "docqa/internal/storage/s3"
)

// @title docqa API
// @version 1.0
// @description Batch question answering over tabular document corpora with large language models.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Session token as "Bearer <token>"

func main() {
	if err := run(); err != nil {
		logrus.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logging.Init(&cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize model invocation
	invoker, err := llm.NewFromConfig(&cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to initialize model provider: %w", err)
	}

	// Initialize metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	observers := events.Multi{
		events.NewLogObserver(logrus.StandardLogger()),
		events.NewMetricsObserver(m),
	}

	// Initialize the optional audit trail
	var readiness []handler.ReadinessCheck
	var eventRepo port.ExtractionEventRepository
	if cfg.Audit.Enabled {
		db, err := postgres.NewDB(&cfg.Audit)
		if err != nil {
			return fmt.Errorf("failed to connect to audit database: %w", err)
		}
		defer db.Close()
		eventRepo = postgres.NewExtractionEventRepo(db)
		observers = append(observers, events.NewAuditObserver(eventRepo))
		readiness = append(readiness, handler.ReadinessCheck{Name: "audit", Check: db.PingContext})
		logrus.Infof("audit trail enabled (%s:%d/%s)", cfg.Audit.Host, cfg.Audit.Port, cfg.Audit.Name)
	}

	// Initialize the optional event stream
	if cfg.Events.NATSURL != "" {
		nc, err := events.Connect(cfg.Events.NATSURL)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer nc.Close()
		observers = append(observers, events.NewNATSPublisher(nc, cfg.Events.SubjectPrefix))
		readiness = append(readiness, handler.ReadinessCheck{Name: "events", Check: events.ConnCheck(nc)})
		logrus.Infof("publishing extraction events to %s.*", cfg.Events.SubjectPrefix)
	}

	// Initialize the optional export storage
	var storage port.ObjectStorage
	if cfg.S3.Enabled {
		storage, err = s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	// Initialize repositories
	sessionRepo := memory.NewSessionRepo()

	// Initialize services
	sessionSvc := service.NewSessionService(sessionRepo, cfg.Session)
	questionSvc := service.NewQuestionService()
	corpusSvc := service.NewCorpusService(&cfg.Extraction, cfg.Upload)
	extractionSvc := service.NewExtractionService(invoker, observers, eventRepo, cfg.Extraction)
	resultSvc := service.NewResultService(storage, cfg.S3)

	// Start background workers
	reaper := service.NewSessionReaper(sessionRepo, cfg.Session.TTL, cfg.Session.ReapInterval)
	go reaper.Start(ctx)

	// Setup router
	r := router.Setup(sessionSvc, router.Handlers{
		Session:    handler.NewSessionHandler(sessionSvc),
		Question:   handler.NewQuestionHandler(questionSvc),
		Corpus:     handler.NewCorpusHandler(corpusSvc),
		Extraction: handler.NewExtractionHandler(extractionSvc),
		Result:     handler.NewResultHandler(resultSvc),
		Health:     handler.NewHealthHandler(readiness...),
	}, m, reg, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("Server starting on %s (%s)", cfg.Server.Port, cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logrus.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
