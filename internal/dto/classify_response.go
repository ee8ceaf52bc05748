package dto

import "binwatch/internal/model"

// ClassifyResponse is returned by the upload endpoint.
type ClassifyResponse struct {
	ID         int64              `json:"id"`
	Status     model.Label        `json:"status"`
	Confidence float64            `json:"confidence"`
	Alert      string             `json:"alert"`
	Severity   string             `json:"severity"`
	Filename   string             `json:"filename"`
	FileURL    string             `json:"fileUrl"`
	FileType   model.MediaType    `json:"fileType"`
	Frames     int                `json:"frames,omitempty"`
	Votes      int                `json:"votes,omitempty"`
	Skipped    int                `json:"skipped,omitempty"`
	Result     model.ResultStatus `json:"result"`
}

// NewClassifyResponse builds the upload response from a stored record.
func NewClassifyResponse(c model.Classification) ClassifyResponse {
	return ClassifyResponse{
		ID:         c.ID,
		Status:     c.Label,
		Confidence: c.Confidence,
		Alert:      c.Alert,
		Severity:   c.Severity,
		Filename:   c.Filename,
		FileURL:    UploadURL(c.Filename),
		FileType:   c.MediaType,
		Frames:     c.Frames,
		Votes:      c.Votes,
		Skipped:    c.Skipped,
		Result:     model.ResultStatus(c.Status),
	}
}
