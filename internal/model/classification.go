package model

import "time"

// MediaType distinguishes still images from videos.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Classification is a stored classification record.
type Classification struct {
	ID         int64     `json:"id"`
	Filename   string    `json:"filename"`
	Original   string    `json:"original"`
	MediaType  MediaType `json:"media_type"`
	Label      Label     `json:"label"`
	Confidence float64   `json:"confidence"`
	Frames     int       `json:"frames"`
	Skipped    int       `json:"skipped"`
	Votes      int       `json:"votes"`
	Status     string    `json:"status"`
	Alert      string    `json:"alert"`
	Severity   string    `json:"severity"`
	CreatedAt  time.Time `json:"created_at"`
}
