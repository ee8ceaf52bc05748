package pipeline

import "binwatch/internal/model"

// Aggregate majority-votes per-frame predictions into one result.
//
// The most frequent label wins; on a tie the label that appeared first in
// preds wins. Confidence is the mean over the winning label's predictions
// only, rounded to two decimals. An empty input yields the no-predictions
// sentinel. preds is not modified.
func Aggregate(preds []model.Prediction) model.Result {
	if len(preds) == 0 {
		return model.Result{
			Label:  model.LabelEmpty,
			Status: model.StatusNoPredictions,
		}
	}

	type tally struct {
		count int
		sum   float64
	}

	tallies := make(map[model.Label]*tally, len(model.Labels))
	order := make([]model.Label, 0, len(model.Labels))
	for _, p := range preds {
		t, ok := tallies[p.Label]
		if !ok {
			t = &tally{}
			tallies[p.Label] = t
			order = append(order, p.Label)
		}
		t.count++
		t.sum += p.Confidence
	}

	// order is by first occurrence, so a strict comparison keeps the earliest on ties.
	winner := order[0]
	for _, l := range order[1:] {
		if tallies[l].count > tallies[winner].count {
			winner = l
		}
	}

	w := tallies[winner]
	return model.Result{
		Label:      winner,
		Confidence: model.Round2(w.sum / float64(w.count)),
		Votes:      w.count,
		Frames:     len(preds),
		Status:     model.StatusOK,
	}
}
