package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"binwatch/internal/config"
	"binwatch/internal/logger"
	"binwatch/internal/metrics"
	"binwatch/internal/pipeline"
	"binwatch/internal/repository/sqlite"
	"binwatch/internal/route"
	"binwatch/internal/service"
	"binwatch/internal/service/ai"
	"binwatch/internal/service/storage"
	"binwatch/internal/service/video"
	"binwatch/internal/service/websocket"
	"binwatch/internal/tracing"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	config     *config.Config
	logger     *logger.Logger
	db         *sqlite.DB
	classifier *pipeline.Pool
	hubService *websocket.HubService
	shutdown   tracing.Shutdown
	server     *http.Server
}

// NewApp builds every service from cfg. Close releases what it opened.
func NewApp(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*App, error) {
	a := &App{config: cfg, logger: logger}

	shutdown, err := tracing.InitTracer(ctx, cfg.TracingEndpoint)
	if err != nil {
		return nil, err
	}
	a.shutdown = shutdown

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.db = db

	pool, err := ai.NewClassifierPool(cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.classifier = pool

	videos := pipeline.NewVideoClassifier(video.NewCaptureService(logger), pool, logger, pipeline.Options{
		SampleCount:    cfg.SampleCount,
		MaxSampleCount: cfg.MaxSampleCount,
		Workers:        cfg.ClassifierWorkers,
		StrictEmpty:    cfg.StrictEmpty,
	})
	images := pipeline.NewImageClassifier(video.NewImageService(), pool, logger)

	uploads := storage.NewUploadService(cfg, logger)
	a.hubService = websocket.NewHubService(logger)
	m := metrics.New(prometheus.DefaultRegisterer)

	manager := service.NewManager(cfg, images, videos, uploads, sqlite.NewClassificationRepository(db), a.hubService, m, logger)

	a.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           route.SetupRoutes(cfg, logger, manager, a.hubService, uploads, db, m, prometheus.DefaultGatherer),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go a.hubService.Run(hubCtx)

	a.logger.Info("🗑️ Bin Watch server")
	a.logger.Info("📍 URL: http://localhost:%d", a.config.Port)
	a.logger.Info("📁 Uploads: %s", a.config.UploadDirectory)
	a.logger.Info("🤖 Model: %s (%d worker(s))", a.config.ModelPath, a.config.ClassifierWorkers)

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down")
	stopHub()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

// Close releases the classifier networks, the database and the tracer.
func (a *App) Close() error {
	var errs []error
	if a.classifier != nil {
		errs = append(errs, a.classifier.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	if a.shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		errs = append(errs, a.shutdown(ctx))
	}
	return errors.Join(errs...)
}
