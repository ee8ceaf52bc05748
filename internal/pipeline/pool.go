package pipeline

import (
	"context"
	"errors"
	"io"

	"binwatch/internal/model"
)

// Pool shares a fixed set of classifiers, each used by one caller at a time.
// Model runtimes are not safe for concurrent inference, so every parallel
// worker needs its own loaded model.
type Pool struct {
	idle chan Classifier
	all  []Classifier
}

// NewPool builds a pool over already loaded classifiers.
func NewPool(classifiers ...Classifier) *Pool {
	p := &Pool{
		idle: make(chan Classifier, len(classifiers)),
		all:  classifiers,
	}
	for _, c := range classifiers {
		p.idle <- c
	}
	return p
}

// Size returns the number of classifiers in the pool.
func (p *Pool) Size() int {
	return len(p.all)
}

// Classify borrows a classifier, waiting until one is free or ctx is done.
func (p *Pool) Classify(ctx context.Context, frame Frame) (model.Prediction, error) {
	if len(p.all) == 0 {
		return model.Prediction{}, errors.New("classifier pool is empty")
	}

	var c Classifier
	select {
	case c = <-p.idle:
	case <-ctx.Done():
		return model.Prediction{}, ctx.Err()
	}
	defer func() { p.idle <- c }()

	return c.Classify(ctx, frame)
}

// Close releases every classifier that holds resources.
func (p *Pool) Close() error {
	var errs []error
	for _, c := range p.all {
		if closer, ok := c.(io.Closer); ok {
			errs = append(errs, closer.Close())
		}
	}
	return errors.Join(errs...)
}
