package model

// Prediction is the classifier output for a single frame or image.
// Confidence is a percentage in [0, 100].
type Prediction struct {
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`
}

// ResultStatus tells a real vote apart from the sentinel results.
type ResultStatus string

const (
	StatusOK ResultStatus = "ok"
	// StatusEmptyVideo means the video opened but reported zero frames.
	StatusEmptyVideo ResultStatus = "empty_video"
	// StatusNoPredictions means every sampled frame failed to decode or classify.
	StatusNoPredictions ResultStatus = "no_predictions"
)

// Result is the video-level outcome of a majority vote.
//
// Confidence is the mean confidence of exactly those predictions whose label
// equals Label, rounded to two decimals. Sentinel results carry LabelEmpty
// with zero confidence.
type Result struct {
	Label      Label        `json:"label"`
	Confidence float64      `json:"confidence"`
	Votes      int          `json:"votes"`
	Frames     int          `json:"frames"`
	Skipped    int          `json:"skipped"`
	Status     ResultStatus `json:"status"`
}

// Sentinel reports whether r is a placeholder rather than a vote.
func (r Result) Sentinel() bool {
	return r.Status == StatusEmptyVideo || r.Status == StatusNoPredictions
}
