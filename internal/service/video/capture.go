package video

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"binwatch/internal/logger"
	"binwatch/internal/pipeline"
)

var (
	// ErrEmptyFrame is returned for a frame the decoder produced without pixels.
	ErrEmptyFrame = errors.New("decoded frame is empty")
	// ErrCorruptFrame is returned when decoding failed but the stream moved on.
	ErrCorruptFrame = errors.New("frame could not be decoded")
)

// MatFrame is a decoded frame backed by an OpenCV matrix (BGR, 8 bit).
type MatFrame struct {
	Mat gocv.Mat
}

func (f *MatFrame) Width() int  { return f.Mat.Cols() }
func (f *MatFrame) Height() int { return f.Mat.Rows() }

func (f *MatFrame) Close() error {
	return f.Mat.Close()
}

// CaptureService opens video files through OpenCV's VideoCapture.
type CaptureService struct {
	logger *logger.Logger
}

// NewCaptureService creates a video opener.
func NewCaptureService(logger *logger.Logger) *CaptureService {
	return &CaptureService{logger: logger}
}

// Open opens the video at path for sequential reading.
func (s *CaptureService) Open(path string) (pipeline.Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("video file not accessible: %w", err)
	}

	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open video capture: %w", err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("video capture could not open %s", path)
	}

	c := &Capture{
		vc:     vc,
		total:  propertyInt(vc.Get(gocv.VideoCaptureFrameCount)),
		width:  propertyInt(vc.Get(gocv.VideoCaptureFrameWidth)),
		height: propertyInt(vc.Get(gocv.VideoCaptureFrameHeight)),
		fps:    vc.Get(gocv.VideoCaptureFPS),
	}

	s.logger.Info("Opened video %s: %d frames, %dx%d @ %.2f fps", path, c.total, c.width, c.height, c.fps)
	return c, nil
}

// propertyInt converts a VideoCapture property, which OpenCV reports as a
// float that may be negative or NaN when the container does not know it.
func propertyInt(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return int(v)
}

// Capture is an open video. It is not safe for concurrent use.
type Capture struct {
	vc     *gocv.VideoCapture
	total  int
	width  int
	height int
	fps    float64

	closeOnce sync.Once
	closeErr  error
}

// FrameCount returns the container's frame count, 0 when unknown.
func (c *Capture) FrameCount() int {
	return c.total
}

// Size returns the frame dimensions reported by the container.
func (c *Capture) Size() (width, height int) {
	return c.width, c.height
}

// FPS returns the container's frame rate.
func (c *Capture) FPS() float64 {
	return c.fps
}

// Grab advances past one frame without decoding it. VideoCapture gives no
// end-of-stream signal here; the next Read reports it.
func (c *Capture) Grab() error {
	c.vc.Grab(1)
	return nil
}

// Read decodes the next frame. The caller owns the returned frame.
func (c *Capture) Read() (pipeline.Frame, error) {
	before := c.vc.Get(gocv.VideoCapturePosFrames)
	mat := gocv.NewMat()
	if ok := c.vc.Read(&mat); !ok {
		mat.Close()
		return nil, readFailure(before, c.vc.Get(gocv.VideoCapturePosFrames), c.total)
	}
	if mat.Empty() {
		mat.Close()
		return nil, ErrEmptyFrame
	}
	return &MatFrame{Mat: mat}, nil
}

// readFailure decides what a failed Read means from the decoder position
// before and after it. A position that advanced but stays inside the reported
// frame count is a bad frame the scan can skip; anything else is end of stream.
func readFailure(before, after float64, total int) error {
	b, a := propertyInt(before), propertyInt(after)
	if a > b && a <= total {
		return fmt.Errorf("%w at frame %d", ErrCorruptFrame, b)
	}
	return io.EOF
}

// Close releases the decoder. Later calls are no-ops.
func (c *Capture) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.vc.Close()
	})
	return c.closeErr
}
