package pipeline

import (
	"errors"
	"io"
)

// DefaultSampleCount is the number of frames sampled from a video when the
// caller does not ask for a specific count.
const DefaultSampleCount = 30

// Stride returns the interval between sampled frame indices.
func Stride(total, target int) int {
	if target < 1 {
		target = 1
	}
	if s := total / target; s > 1 {
		return s
	}
	return 1
}

// Sampler walks a Source and yields every stride-th frame, starting at index 0.
//
//	s, err := NewSampler(src, 30)
//	for s.Next() {
//		frame := s.Frame()
//		...
//		frame.Close()
//	}
//	err = s.Err()
//
// The Sampler never closes the Source. It reads at most twice the target
// sample positions, which never cuts a scan short within the reported frame
// count and bounds work when the container under-reports it.
type Sampler struct {
	src     Source
	total   int
	stride  int
	limit   int
	sampled int
	pos     int
	frame   Frame
	index   int
	skipped int
	done    bool
	err     error

	// OnSkip, if set, is called for every sampled frame that failed to decode.
	OnSkip func(index int, err error)
}

// NewSampler prepares a scan of src targeting about target frames.
// It returns ErrEmptyVideo when the source reports no frames.
func NewSampler(src Source, target int) (*Sampler, error) {
	if target < 1 {
		return nil, ErrInvalidSampleCount
	}

	total := src.FrameCount()
	if total <= 0 {
		return nil, ErrEmptyVideo
	}

	return &Sampler{
		src:    src,
		total:  total,
		stride: Stride(total, target),
		limit:  2 * target,
		index:  -1,
	}, nil
}

// Stride returns the interval between sampled frames.
func (s *Sampler) Stride() int {
	return s.stride
}

// Total returns the frame count reported by the source.
func (s *Sampler) Total() int {
	return s.total
}

// Next advances to the next sampled frame. It returns false at end of
// stream or on error.
func (s *Sampler) Next() bool {
	s.frame = nil

	for !s.done && s.err == nil {
		idx := s.pos

		if idx%s.stride != 0 {
			err := s.src.Grab()
			s.pos++
			if err != nil && s.stop(idx, err) {
				return false
			}
			continue
		}

		if s.sampled >= s.limit {
			s.done = true
			return false
		}

		frame, err := s.src.Read()
		s.pos++
		s.sampled++
		if err != nil {
			if s.stop(idx, err) {
				return false
			}
			s.skipped++
			if s.OnSkip != nil {
				s.OnSkip(idx, err)
			}
			continue
		}

		s.frame = frame
		s.index = idx
		return true
	}

	return false
}

// stop reports whether a read failure at idx ends the scan. End of stream
// does, and so does any failure past the reported frame count, since a
// source that keeps failing there will never report io.EOF. A source that
// reports ErrSourceUnreadable mid-scan aborts it.
func (s *Sampler) stop(idx int, err error) bool {
	if errors.Is(err, ErrSourceUnreadable) {
		s.err = err
		return true
	}
	if errors.Is(err, io.EOF) || idx >= s.total {
		s.done = true
		return true
	}
	return false
}

// Frame returns the frame produced by the last successful Next.
func (s *Sampler) Frame() Frame {
	return s.frame
}

// Index returns the 0-based position of the current frame in the video.
func (s *Sampler) Index() int {
	return s.index
}

// Skipped returns how many sampled frames failed to decode so far.
func (s *Sampler) Skipped() int {
	return s.skipped
}

// Err returns the error that stopped the scan, if it was not end of stream.
func (s *Sampler) Err() error {
	return s.err
}
