package video

import (
	"fmt"
	"os"

	"gocv.io/x/gocv"

	"binwatch/internal/pipeline"
)

// ImageService decodes still images into frames for the classifier.
type ImageService struct{}

func NewImageService() *ImageService {
	return &ImageService{}
}

// Load reads and decodes an image file.
func (s *ImageService) Load(path string) (pipeline.Frame, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("image file not accessible: %w", err)
	}

	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("failed to decode image %s", path)
	}
	return &MatFrame{Mat: mat}, nil
}

// Decode decodes an encoded image (JPEG, PNG) held in memory.
func (s *ImageService) Decode(data []byte) (pipeline.Frame, error) {
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %v", err)
	}
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("decoded image is empty")
	}
	return &MatFrame{Mat: mat}, nil
}
