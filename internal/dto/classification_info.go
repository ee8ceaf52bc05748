package dto

import (
	"encoding/json"

	"binwatch/internal/model"
)

// ClassificationInfo is a stored classification as returned to clients.
type ClassificationInfo struct {
	model.Classification
	FileURL string `json:"fileUrl"`
}

// NewClassificationInfo attaches the upload view URL to a record.
func NewClassificationInfo(c model.Classification) ClassificationInfo {
	return ClassificationInfo{
		Classification: c,
		FileURL:        UploadURL(c.Filename),
	}
}

// UploadURL returns the route that serves a stored upload.
func UploadURL(filename string) string {
	return "/api/uploads/view?file=" + filename
}

// MarshalJSON customizes JSON output for ClassificationInfo to format date and time-of-day.
func (c ClassificationInfo) MarshalJSON() ([]byte, error) {
	type Alias ClassificationInfo
	return json.Marshal(&struct {
		Date      string `json:"date"`
		TimeOfDay string `json:"timeOfDay"`
		Alias
	}{
		Date:      c.CreatedAt.Format("02-01-2006"),
		TimeOfDay: c.CreatedAt.Format("15:04"),
		Alias:     (Alias)(c),
	})
}
