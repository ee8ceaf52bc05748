package ai

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"binwatch/internal/config"
	"binwatch/internal/logger"
	"binwatch/internal/model"
	"binwatch/internal/pipeline"
	"binwatch/internal/service/video"
)

// ClassifierService runs the fill-level network on single frames.
type ClassifierService struct {
	net        gocv.Net
	mu         sync.Mutex
	modelPath  string
	configPath string
	inputSize  int
	logger     *logger.Logger
}

// NewClassifierService loads the network from the configured model path.
// The config path is only needed for frameworks that split graph and weights.
func NewClassifierService(cfg *config.Config, logger *logger.Logger) (*ClassifierService, error) {
	s := &ClassifierService{
		modelPath:  cfg.ModelPath,
		configPath: cfg.ModelConfigPath,
		inputSize:  cfg.ModelInputSize,
		logger:     logger,
	}

	if err := s.initializeNet(); err != nil {
		return nil, err
	}
	return s, nil
}

// initializeNet loads the DNN network and sets backend/target preferences.
func (s *ClassifierService) initializeNet() error {
	if _, err := os.Stat(s.modelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", s.modelPath)
	}
	if s.configPath != "" {
		if _, err := os.Stat(s.configPath); os.IsNotExist(err) {
			return fmt.Errorf("model config file not found: %s", s.configPath)
		}
	}

	net := gocv.ReadNet(s.modelPath, s.configPath)
	if net.Empty() {
		return fmt.Errorf("failed to load network from %s", s.modelPath)
	}

	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if errBackend != nil || errTarget != nil {
		net.Close()
		return fmt.Errorf("failed to set preferable backend or target")
	}

	s.net = net
	s.logger.Info("Classification network loaded from %s (input %dx%d)", s.modelPath, s.inputSize, s.inputSize)
	return nil
}

// Classify implements pipeline.Classifier for frames decoded by the video package.
func (s *ClassifierService) Classify(ctx context.Context, frame pipeline.Frame) (model.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return model.Prediction{}, err
	}

	mf, ok := frame.(*video.MatFrame)
	if !ok {
		return model.Prediction{}, fmt.Errorf("unsupported frame type %T", frame)
	}

	scores, err := s.Scores(mf.Mat)
	if err != nil {
		return model.Prediction{}, err
	}
	return model.PredictionFromScores(scores)
}

// Scores returns the class probability vector for a BGR image, ordered like model.Labels.
func (s *ClassifierService) Scores(mat gocv.Mat) ([]float32, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("frame is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.net.Empty() {
		return nil, fmt.Errorf("classification network not initialized")
	}

	// Square input scaled to [0,1], channels swapped to the RGB order the model was trained on.
	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(s.inputSize, s.inputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	s.net.SetInput(blob, "")

	output := s.net.Forward("")
	defer output.Close()

	if output.Total() != len(model.Labels) {
		return nil, fmt.Errorf("network produced %d outputs, expected %d", output.Total(), len(model.Labels))
	}

	scores := make([]float32, output.Total())
	for i := range scores {
		scores[i] = output.GetFloatAt(0, i)
	}
	return scores, nil
}

// Close releases the network.
func (s *ClassifierService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.net.Close()
}

// NewClassifierPool loads one network per worker, the way parallel frame
// classification needs it, and shares them through a pipeline.Pool.
func NewClassifierPool(cfg *config.Config, logger *logger.Logger) (*pipeline.Pool, error) {
	classifiers := make([]pipeline.Classifier, 0, cfg.ClassifierWorkers)
	for i := 0; i < cfg.ClassifierWorkers; i++ {
		cs, err := NewClassifierService(cfg, logger)
		if err != nil {
			pipeline.NewPool(classifiers...).Close()
			return nil, fmt.Errorf("load classifier %d: %w", i, err)
		}
		classifiers = append(classifiers, cs)
	}
	return pipeline.NewPool(classifiers...), nil
}
