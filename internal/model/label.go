package model

import (
	"fmt"
	"math"
	"strings"
)

// Label is a bin fill level.
type Label string

const (
	LabelEmpty    Label = "empty"
	LabelFull     Label = "full"
	LabelHalf     Label = "half"
	LabelOverflow Label = "overflow"
)

// Labels is the class ordering of the classifier output vector. Image and
// video classification both index into it, so it must match the model.
var Labels = []Label{LabelEmpty, LabelFull, LabelHalf, LabelOverflow}

// ParseLabel maps a string to a known label, case-insensitively.
func ParseLabel(s string) (Label, bool) {
	l := Label(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Labels {
		if l == known {
			return l, true
		}
	}
	return "", false
}

// Valid reports whether l is one of Labels.
func (l Label) Valid() bool {
	for _, known := range Labels {
		if l == known {
			return true
		}
	}
	return false
}

func (l Label) String() string {
	return string(l)
}

// PredictionFromScores picks the most probable class from a probability
// vector ordered like Labels. Ties go to the lowest index. Confidence is the
// winning probability as a percentage.
func PredictionFromScores(scores []float32) (Prediction, error) {
	if len(scores) != len(Labels) {
		return Prediction{}, fmt.Errorf("expected %d class scores, got %d", len(Labels), len(scores))
	}

	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}

	conf := float64(scores[best]) * 100
	if math.IsNaN(conf) {
		return Prediction{}, fmt.Errorf("classifier returned NaN score")
	}

	return Prediction{
		Label:      Labels[best],
		Confidence: math.Max(0, math.Min(100, conf)),
	}, nil
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
