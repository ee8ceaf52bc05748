package pipeline

import (
	"context"
	"errors"
	"fmt"

	"binwatch/internal/logger"
	"binwatch/internal/model"
)

// ErrImageUnreadable means a still image could not be decoded.
var ErrImageUnreadable = errors.New("image unreadable")

// ImageClassifier classifies still images with the same frame classifier
// used for videos, so both paths share one label ordering.
type ImageClassifier struct {
	loader     ImageLoader
	classifier Classifier
	logger     *logger.Logger
}

// NewImageClassifier wires an image decoder and a frame classifier.
func NewImageClassifier(loader ImageLoader, classifier Classifier, logger *logger.Logger) *ImageClassifier {
	return &ImageClassifier{
		loader:     loader,
		classifier: classifier,
		logger:     logger,
	}
}

// ClassifyImage decodes the image at path and classifies it. Confidence is
// rounded to two decimals.
func (c *ImageClassifier) ClassifyImage(ctx context.Context, path string) (model.Prediction, error) {
	frame, err := c.loader.Load(path)
	if err != nil {
		return model.Prediction{}, fmt.Errorf("%w: %s: %w", ErrImageUnreadable, path, err)
	}
	defer frame.Close()

	p, err := c.classifier.Classify(ctx, frame)
	if err != nil {
		return model.Prediction{}, fmt.Errorf("classify %s: %w", path, err)
	}
	p.Confidence = model.Round2(p.Confidence)

	c.logger.Info("Image %s classified as %s (%.2f%%)", path, p.Label, p.Confidence)
	return p, nil
}
