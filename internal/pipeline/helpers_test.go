package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"binwatch/internal/model"
)

var errBadFrame = errors.New("corrupt frame")

type fakeFrame struct {
	index  int
	closed *int
	mu     *sync.Mutex
}

func (f *fakeFrame) Width() int  { return 640 }
func (f *fakeFrame) Height() int { return 480 }

func (f *fakeFrame) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	*f.closed++
	return nil
}

// fakeSource reports total frames but actually holds frames; indices in bad
// fail to decode.
type fakeSource struct {
	total  int
	frames int
	bad    map[int]bool
	// failAll makes every read fail without ever reaching end of stream.
	failAll bool

	mu           sync.Mutex
	pos          int
	decoded      []int
	grabs        int
	framesClosed int
	closed       int
}

func newFakeSource(total int) *fakeSource {
	return &fakeSource{total: total, frames: total, bad: map[int]bool{}}
}

func (s *fakeSource) FrameCount() int { return s.total }

func (s *fakeSource) Grab() error {
	if s.failAll {
		s.pos++
		return errBadFrame
	}
	if s.pos >= s.frames {
		return io.EOF
	}
	s.pos++
	s.grabs++
	return nil
}

func (s *fakeSource) Read() (Frame, error) {
	if s.failAll {
		s.pos++
		return nil, errBadFrame
	}
	if s.pos >= s.frames {
		return nil, io.EOF
	}
	idx := s.pos
	s.pos++
	if s.bad[idx] {
		return nil, fmt.Errorf("frame %d: %w", idx, errBadFrame)
	}
	s.decoded = append(s.decoded, idx)
	return &fakeFrame{index: idx, closed: &s.framesClosed, mu: &s.mu}, nil
}

func (s *fakeSource) Close() error {
	s.closed++
	return nil
}

func (s *fakeSource) openFrames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.decoded) - s.framesClosed
}

type fakeOpener struct {
	src *fakeSource
	err error
}

func (o *fakeOpener) Open(path string) (Source, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.src, nil
}

// fakeClassifier labels a frame by its index through fn.
type fakeClassifier struct {
	fn func(index int) (model.Prediction, error)

	mu    sync.Mutex
	calls int
}

func (c *fakeClassifier) Classify(ctx context.Context, frame Frame) (model.Prediction, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.fn(frame.(*fakeFrame).index)
}

func (c *fakeClassifier) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// sequenceClassifier assigns preds to sampled frames in order of index/stride.
func sequenceClassifier(stride int, preds []model.Prediction) *fakeClassifier {
	return &fakeClassifier{fn: func(index int) (model.Prediction, error) {
		i := index / stride
		if i >= len(preds) {
			return model.Prediction{}, fmt.Errorf("no prediction for frame %d", index)
		}
		return preds[i], nil
	}}
}

func pred(label model.Label, conf float64) model.Prediction {
	return model.Prediction{Label: label, Confidence: conf}
}
