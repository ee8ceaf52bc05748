package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"

	"binwatch/internal/config"
	"binwatch/internal/dto"
	"binwatch/internal/logger"
	"binwatch/internal/metrics"
	"binwatch/internal/model"
	"binwatch/internal/repository"
	"binwatch/internal/service/alert"
)

const tracerName = "binwatch/internal/service"

// VideoClassifier classifies a stored video file.
type VideoClassifier interface {
	ClassifyVideo(ctx context.Context, path string, sampleCount int) (model.Result, error)
}

// ImageClassifier classifies a stored image file.
type ImageClassifier interface {
	ClassifyImage(ctx context.Context, path string) (model.Prediction, error)
}

// UploadStore keeps uploaded files.
type UploadStore interface {
	Save(original string, r io.Reader) (string, model.MediaType, error)
	Path(name string) (string, error)
	Remove(name string) error
	Clear() (int, error)
}

// Broadcaster publishes stored classifications to live viewers.
type Broadcaster interface {
	BroadcastClassification(c model.Classification) error
}

// Manager runs uploads through storage, classification, alerting and history.
type Manager struct {
	images      ImageClassifier
	videos      VideoClassifier
	uploads     UploadStore
	repo        repository.ClassificationRepository
	broadcaster Broadcaster
	metrics     *metrics.Metrics
	logger      *logger.Logger

	jobs *semaphore.Weighted
}

func NewManager(cfg *config.Config, images ImageClassifier, videos VideoClassifier, uploads UploadStore,
	repo repository.ClassificationRepository, broadcaster Broadcaster, metrics *metrics.Metrics, logger *logger.Logger) *Manager {
	jobs := cfg.MaxConcurrentJobs
	if jobs < 1 {
		jobs = 1
	}

	m := &Manager{
		images:      images,
		videos:      videos,
		uploads:     uploads,
		repo:        repo,
		broadcaster: broadcaster,
		metrics:     metrics,
		logger:      logger,
		jobs:        semaphore.NewWeighted(int64(jobs)),
	}

	m.logger.Info("Manager started - at most %d concurrent classification(s)", jobs)
	return m
}

func (m *Manager) tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// ClassifyUpload stores the upload, classifies it as an image or video by
// extension, maps the alert, records it in the history and notifies viewers.
// Failed uploads leave no stored file behind.
func (m *Manager) ClassifyUpload(ctx context.Context, original string, r io.Reader) (*model.Classification, error) {
	ctx, span := m.tracer().Start(ctx, "ClassifyUpload", trace.WithAttributes(
		attribute.String("upload.original", original),
	))
	defer span.End()

	if err := m.jobs.Acquire(ctx, 1); err != nil {
		return nil, failSpan(span, err)
	}
	defer m.jobs.Release(1)

	m.metrics.ActiveJobs.Inc()
	defer m.metrics.ActiveJobs.Dec()

	name, mediaType, err := m.store(ctx, original, r)
	if err != nil {
		m.metrics.ClassificationFailures.WithLabelValues("unknown", "store").Inc()
		return nil, failSpan(span, err)
	}
	span.SetAttributes(
		attribute.String("upload.name", name),
		attribute.String("upload.media_type", string(mediaType)),
	)

	c := &model.Classification{
		Filename:  name,
		Original:  original,
		MediaType: mediaType,
	}

	start := time.Now()
	if err := m.classify(ctx, c); err != nil {
		m.metrics.ClassificationFailures.WithLabelValues(string(mediaType), "classify").Inc()
		m.discard(name)
		return nil, failSpan(span, err)
	}
	m.metrics.ClassificationDuration.WithLabelValues(string(mediaType)).Observe(time.Since(start).Seconds())

	a := alert.For(c.Label)
	c.Alert = a.Message
	c.Severity = string(a.Severity)
	span.SetAttributes(
		attribute.String("classification.label", string(c.Label)),
		attribute.Float64("classification.confidence", c.Confidence),
		attribute.String("alert.severity", c.Severity),
	)

	if err := m.persist(ctx, c); err != nil {
		m.metrics.ClassificationFailures.WithLabelValues(string(mediaType), "persist").Inc()
		m.discard(name)
		return nil, failSpan(span, err)
	}

	m.metrics.ClassificationsTotal.WithLabelValues(string(mediaType), string(c.Label)).Inc()

	if a.Actionable() {
		m.logger.Warning("Bin alert for %s (%s): %s", original, c.Severity, c.Alert)
	}

	if m.broadcaster != nil {
		if err := m.broadcaster.BroadcastClassification(*c); err != nil {
			m.logger.Error("Error broadcasting classification %d: %v", c.ID, err)
		}
	}

	return c, nil
}

func (m *Manager) store(ctx context.Context, original string, r io.Reader) (string, model.MediaType, error) {
	_, span := m.tracer().Start(ctx, "store")
	defer span.End()

	name, mediaType, err := m.uploads.Save(original, r)
	if err != nil {
		return "", "", failSpan(span, err)
	}
	return name, mediaType, nil
}

func (m *Manager) classify(ctx context.Context, c *model.Classification) error {
	ctx, span := m.tracer().Start(ctx, "classify", trace.WithAttributes(
		attribute.String("upload.media_type", string(c.MediaType)),
	))
	defer span.End()

	path, err := m.uploads.Path(c.Filename)
	if err != nil {
		return failSpan(span, err)
	}

	switch c.MediaType {
	case model.MediaImage:
		p, err := m.images.ClassifyImage(ctx, path)
		if err != nil {
			return failSpan(span, err)
		}
		c.Label = p.Label
		c.Confidence = model.Round2(p.Confidence)
		c.Status = string(model.StatusOK)

	case model.MediaVideo:
		res, err := m.videos.ClassifyVideo(ctx, path, 0)
		if err != nil {
			return failSpan(span, err)
		}
		c.Label = res.Label
		c.Confidence = res.Confidence
		c.Frames = res.Frames
		c.Votes = res.Votes
		c.Skipped = res.Skipped
		c.Status = string(res.Status)

		m.metrics.FramesClassifiedTotal.Add(float64(res.Frames))
		m.metrics.FramesSkippedTotal.Add(float64(res.Skipped))
		span.SetAttributes(
			attribute.Int("video.frames", res.Frames),
			attribute.Int("video.skipped", res.Skipped),
			attribute.String("video.status", string(res.Status)),
		)

	default:
		return failSpan(span, fmt.Errorf("unsupported media type %q", c.MediaType))
	}
	return nil
}

func (m *Manager) persist(ctx context.Context, c *model.Classification) error {
	_, span := m.tracer().Start(ctx, "persist")
	defer span.End()

	if _, err := m.repo.Insert(c); err != nil {
		return failSpan(span, fmt.Errorf("store classification: %w", err))
	}
	span.SetAttributes(attribute.Int64("classification.id", c.ID))
	return nil
}

func (m *Manager) discard(name string) {
	if err := m.uploads.Remove(name); err != nil {
		m.logger.Error("Failed to remove upload %s: %v", name, err)
	}
}

// Delete removes a classification and its stored upload. It reports whether
// the classification existed.
func (m *Manager) Delete(id int64) (bool, error) {
	c, err := m.repo.GetByID(id)
	if err != nil {
		return false, err
	}
	if c == nil {
		return false, nil
	}

	if err := m.repo.Delete(id); err != nil {
		return false, err
	}
	m.discard(c.Filename)

	m.logger.Info("Deleted classification %d (%s)", id, c.Filename)
	return true, nil
}

// Clear removes every classification and stored upload and returns how many
// files were deleted.
func (m *Manager) Clear() (int, error) {
	removed, err := m.uploads.Clear()
	if err != nil {
		return 0, err
	}
	if err := m.repo.DeleteAll(); err != nil {
		return removed, err
	}

	m.logger.Info("Cleared classification history (%d uploads removed)", removed)
	return removed, nil
}

// Stats summarizes the classification history.
func (m *Manager) Stats() (*dto.ClassificationStats, error) {
	counts, err := m.repo.GetLabelCounts()
	if err != nil {
		return nil, err
	}

	stats := &dto.ClassificationStats{PerLabel: make(map[string]int, len(counts))}
	for label, n := range counts {
		stats.PerLabel[string(label)] = n
		stats.Total += n
		if alert.For(label).Actionable() {
			stats.Alerts += n
		}
	}
	return stats, nil
}

// Repository exposes the history for read-only handlers.
func (m *Manager) Repository() repository.ClassificationRepository {
	return m.repo
}

func failSpan(span trace.Span, err error) error {
	if !errors.Is(err, context.Canceled) {
		span.RecordError(err)
	}
	span.SetStatus(codes.Error, err.Error())
	return err
}
