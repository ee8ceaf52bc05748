// Package pipeline turns a video into a single bin fill-level result:
// sample frames, classify each one, majority-vote the predictions.
package pipeline

import (
	"context"
	"errors"

	"binwatch/internal/model"
)

var (
	// ErrSourceUnreadable means the video could not be opened at all.
	ErrSourceUnreadable = errors.New("video source unreadable")
	// ErrEmptyVideo means the video opened but reports zero frames.
	ErrEmptyVideo = errors.New("video has no frames")
	// ErrNoPredictions means every sampled frame failed to decode or classify.
	ErrNoPredictions = errors.New("no frame could be classified")
	// ErrInvalidSampleCount means the target sample count is below one.
	ErrInvalidSampleCount = errors.New("sample count must be at least 1")
)

// Frame is one decoded still image. The holder must Close it once classified.
type Frame interface {
	Width() int
	Height() int
	Close() error
}

// Source is a sequentially read video.
//
// Read decodes the next frame and returns io.EOF at end of stream; any other
// error means that frame could not be decoded and the position has still
// advanced past it. Grab advances past one frame without decoding it.
type Source interface {
	FrameCount() int
	Grab() error
	Read() (Frame, error)
	Close() error
}

// Opener opens a video by path.
type Opener interface {
	Open(path string) (Source, error)
}

// Classifier classifies a single frame.
type Classifier interface {
	Classify(ctx context.Context, frame Frame) (model.Prediction, error)
}

// ImageLoader decodes a still image file into a Frame.
type ImageLoader interface {
	Load(path string) (Frame, error)
}
