package pipeline

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"binwatch/internal/logger"
	"binwatch/internal/model"
)

// Options tune a VideoClassifier.
type Options struct {
	// SampleCount is used when ClassifyVideo is called with a count below one.
	SampleCount int
	// MaxSampleCount caps per-call sample counts. Zero means no cap.
	MaxSampleCount int
	// Workers above one classify sampled frames concurrently.
	Workers int
	// StrictEmpty returns ErrEmptyVideo or ErrNoPredictions together with
	// the sentinel result instead of a nil error.
	StrictEmpty bool
}

// VideoClassifier runs the sample, classify, vote pipeline over a video file.
// It holds no per-call state and is safe for concurrent use when its
// Classifier is.
type VideoClassifier struct {
	opener     Opener
	classifier Classifier
	logger     *logger.Logger
	opts       Options
}

// NewVideoClassifier wires a decoder and a frame classifier into a pipeline.
func NewVideoClassifier(opener Opener, classifier Classifier, logger *logger.Logger, opts Options) *VideoClassifier {
	if opts.SampleCount < 1 {
		opts.SampleCount = DefaultSampleCount
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &VideoClassifier{
		opener:     opener,
		classifier: classifier,
		logger:     logger,
		opts:       opts,
	}
}

// SampleCount resolves the target sample count for a request.
func (v *VideoClassifier) SampleCount(requested int) int {
	n := requested
	if n < 1 {
		n = v.opts.SampleCount
	}
	if v.opts.MaxSampleCount > 0 && n > v.opts.MaxSampleCount {
		n = v.opts.MaxSampleCount
	}
	return n
}

// ClassifyVideo samples about sampleCount frames from the video at path,
// classifies each and returns the majority vote.
//
// An unopenable video fails with ErrSourceUnreadable. A video with no frames
// yields the empty-video sentinel without invoking the classifier. Frames
// that fail to decode or classify are skipped; if none succeed the result is
// the no-predictions sentinel.
func (v *VideoClassifier) ClassifyVideo(ctx context.Context, path string, sampleCount int) (model.Result, error) {
	target := v.SampleCount(sampleCount)

	src, err := v.opener.Open(path)
	if err != nil {
		return model.Result{}, fmt.Errorf("%w: %s: %w", ErrSourceUnreadable, path, err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			v.logger.Warning("Failed to release video %s: %v", path, err)
		}
	}()

	sampler, err := NewSampler(src, target)
	if errors.Is(err, ErrEmptyVideo) {
		v.logger.Warning("Video %s reports no frames", path)
		return v.sentinel(model.Result{Label: model.LabelEmpty, Status: model.StatusEmptyVideo}, ErrEmptyVideo)
	}
	if err != nil {
		return model.Result{}, err
	}
	sampler.OnSkip = func(index int, err error) {
		v.logger.Warning("Skipping undecodable frame %d of %s: %v", index, path, err)
	}

	v.logger.Debug("Sampling %s: %d frames, stride %d, target %d", path, sampler.Total(), sampler.Stride(), target)

	var (
		preds  []model.Prediction
		failed int
	)
	if v.opts.Workers > 1 {
		preds, failed, err = v.classifyParallel(ctx, sampler, path)
	} else {
		preds, failed, err = v.classifySequential(ctx, sampler, path)
	}
	if err != nil {
		return model.Result{}, err
	}

	res := Aggregate(preds)
	res.Skipped = sampler.Skipped() + failed

	if res.Status == model.StatusNoPredictions {
		v.logger.Warning("No frame of %s could be classified (%d skipped)", path, res.Skipped)
		return v.sentinel(res, ErrNoPredictions)
	}

	v.logger.Info("Video %s classified as %s (%.2f%%, %d/%d votes, %d skipped)",
		path, res.Label, res.Confidence, res.Votes, res.Frames, res.Skipped)
	return res, nil
}

func (v *VideoClassifier) sentinel(res model.Result, err error) (model.Result, error) {
	if v.opts.StrictEmpty {
		return res, err
	}
	return res, nil
}

// classifySequential extracts, classifies and discards one frame at a time.
func (v *VideoClassifier) classifySequential(ctx context.Context, sampler *Sampler, path string) ([]model.Prediction, int, error) {
	var (
		preds  []model.Prediction
		failed int
	)

	for sampler.Next() {
		frame := sampler.Frame()
		if err := ctx.Err(); err != nil {
			frame.Close()
			return nil, 0, err
		}

		pred, err := v.classifier.Classify(ctx, frame)
		frame.Close()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, 0, ctxErr
			}
			failed++
			v.logger.Warning("Skipping frame %d of %s: classification failed: %v", sampler.Index(), path, err)
			continue
		}
		preds = append(preds, pred)
	}

	if err := sampler.Err(); err != nil {
		return nil, 0, err
	}
	return preds, failed, nil
}

type frameJob struct {
	seq   int
	index int
	frame Frame
}

type scoredFrame struct {
	seq  int
	pred model.Prediction
}

// classifyParallel decodes frames in a single goroutine and fans them out to
// workers. Predictions are put back into temporal order before they are
// returned, since the vote tie-break depends on it.
func (v *VideoClassifier) classifyParallel(ctx context.Context, sampler *Sampler, path string) ([]model.Prediction, int, error) {
	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan frameJob)

	var (
		mu     sync.Mutex
		scored []scoredFrame
		failed int
	)

	for w := 0; w < v.opts.Workers; w++ {
		g.Go(func() error {
			for job := range jobs {
				pred, err := v.classifier.Classify(gctx, job.frame)
				job.frame.Close()
				if err != nil {
					if ctxErr := gctx.Err(); ctxErr != nil {
						return ctxErr
					}
					v.logger.Warning("Skipping frame %d of %s: classification failed: %v", job.index, path, err)
					mu.Lock()
					failed++
					mu.Unlock()
					continue
				}
				mu.Lock()
				scored = append(scored, scoredFrame{seq: job.seq, pred: pred})
				mu.Unlock()
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(jobs)
		for seq := 0; sampler.Next(); seq++ {
			job := frameJob{seq: seq, index: sampler.Index(), frame: sampler.Frame()}
			select {
			case jobs <- job:
			case <-gctx.Done():
				job.frame.Close()
				return gctx.Err()
			}
		}
		return sampler.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	slices.SortFunc(scored, func(a, b scoredFrame) int { return cmp.Compare(a.seq, b.seq) })

	preds := make([]model.Prediction, len(scored))
	for i, s := range scored {
		preds[i] = s.pred
	}
	return preds, failed, nil
}
