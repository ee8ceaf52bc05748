package pipeline

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"binwatch/internal/model"
)

func TestAggregate_Empty(t *testing.T) {
	res := Aggregate(nil)

	assert.Equal(t, model.LabelEmpty, res.Label)
	assert.Equal(t, 0.0, res.Confidence)
	assert.Equal(t, model.StatusNoPredictions, res.Status)
	assert.True(t, res.Sentinel())
}

func TestAggregate_MajorityWins(t *testing.T) {
	preds := []model.Prediction{
		pred(model.LabelFull, 80),
		pred(model.LabelFull, 90),
		pred(model.LabelHalf, 99),
		pred(model.LabelOverflow, 99.9),
	}

	res := Aggregate(preds)

	assert.Equal(t, model.LabelFull, res.Label)
	assert.Equal(t, 85.0, res.Confidence, "losing frames never influence confidence")
	assert.Equal(t, 2, res.Votes)
	assert.Equal(t, 4, res.Frames)
	assert.Equal(t, model.StatusOK, res.Status)
}

func TestAggregate_TieGoesToFirstOccurrence(t *testing.T) {
	preds := []model.Prediction{
		pred(model.LabelHalf, 60),
		pred(model.LabelFull, 95),
		pred(model.LabelHalf, 70),
		pred(model.LabelFull, 95),
	}

	res := Aggregate(preds)

	assert.Equal(t, model.LabelHalf, res.Label)
	assert.Equal(t, 65.0, res.Confidence)
}

func TestAggregate_TieIndependentOfClassOrder(t *testing.T) {
	res := Aggregate([]model.Prediction{
		pred(model.LabelOverflow, 50),
		pred(model.LabelEmpty, 50),
	})
	assert.Equal(t, model.LabelOverflow, res.Label)
}

func TestAggregate_RoundsToTwoDecimals(t *testing.T) {
	res := Aggregate([]model.Prediction{
		pred(model.LabelEmpty, 33.333),
		pred(model.LabelEmpty, 33.334),
		pred(model.LabelEmpty, 33.3351),
	})
	assert.Equal(t, 33.33, res.Confidence)
}

func TestAggregate_SinglePrediction(t *testing.T) {
	res := Aggregate([]model.Prediction{pred(model.LabelOverflow, 97.456)})
	assert.Equal(t, model.LabelOverflow, res.Label)
	assert.Equal(t, 97.46, res.Confidence)
	assert.Equal(t, 1, res.Votes)
}

func TestAggregate_DoesNotMutateInput(t *testing.T) {
	preds := []model.Prediction{
		pred(model.LabelHalf, 10),
		pred(model.LabelFull, 20),
		pred(model.LabelFull, 30),
	}
	before := slices.Clone(preds)

	first := Aggregate(preds)
	second := Aggregate(preds)

	assert.Equal(t, before, preds)
	assert.Equal(t, first, second)
}

func drawPredictions(rt *rapid.T) []model.Prediction {
	labels := rapid.SliceOfN(rapid.SampledFrom(model.Labels), 1, 60).Draw(rt, "labels")
	preds := make([]model.Prediction, len(labels))
	for i, l := range labels {
		preds[i] = pred(l, rapid.Float64Range(0, 100).Draw(rt, "confidence"))
	}
	return preds
}

func TestAggregate_PropertyConfidenceIsWinnerMean(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		preds := drawPredictions(rt)
		res := Aggregate(preds)

		var sum float64
		var n int
		for _, p := range preds {
			if p.Label == res.Label {
				sum += p.Confidence
				n++
			}
		}
		if n == 0 {
			rt.Fatalf("winner %s has no predictions", res.Label)
		}
		if want := math.Round(sum/float64(n)*100) / 100; res.Confidence != want {
			rt.Fatalf("confidence %v, want %v", res.Confidence, want)
		}
		if res.Votes != n || res.Frames != len(preds) {
			rt.Fatalf("votes %d frames %d, want %d and %d", res.Votes, res.Frames, n, len(preds))
		}
	})
}

func TestAggregate_PropertyWinnerHasMaxCountAndEarliestTie(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		preds := drawPredictions(rt)
		res := Aggregate(preds)

		counts := map[model.Label]int{}
		first := map[model.Label]int{}
		for i, p := range preds {
			if _, ok := first[p.Label]; !ok {
				first[p.Label] = i
			}
			counts[p.Label]++
		}

		for l, c := range counts {
			if c > counts[res.Label] {
				rt.Fatalf("%s has %d votes, winner %s has %d", l, c, res.Label, counts[res.Label])
			}
			if c == counts[res.Label] && first[l] < first[res.Label] {
				rt.Fatalf("tie with %s which appeared first", l)
			}
		}
	})
}

func TestAggregate_PropertyIdempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		preds := drawPredictions(rt)
		if Aggregate(preds) != Aggregate(preds) {
			rt.Fatalf("aggregate not deterministic")
		}
	})
}
