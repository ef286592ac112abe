package service

// LabelPrediction pairs the class a model predicted with the true class.
type LabelPrediction struct {
	Predicted string `json:"predicted" validate:"required"`
	Actual    string `json:"actual" validate:"required"`
}

// ConfusionMatrix is a square count table. Counts[i][j] is the number of
// samples of true class Classes[i] predicted as Classes[j].
type ConfusionMatrix struct {
	Classes []string `json:"classes"`
	Counts  [][]int  `json:"counts"`
}

// Metrics are macro-averaged classification scores. Any score may be NaN:
// accuracy for an empty input, F1 when precision and recall are both zero.
type Metrics struct {
	Accuracy        float64
	Precision       float64
	Recall          float64
	F1Score         float64
	ConfusionMatrix ConfusionMatrix
}

// CalculateMetrics builds the confusion matrix for predictions and derives
// accuracy, macro precision, macro recall and F1 from it.
//
// Classes are ordered by first appearance, scanning every predicted label
// before any actual label. A class with no predictions (or no samples)
// contributes 0 to the precision (or recall) average rather than being skipped.
func CalculateMetrics(predictions []LabelPrediction) Metrics {
	index := make(map[string]int)
	classes := make([]string, 0)
	add := func(label string) {
		if _, ok := index[label]; !ok {
			index[label] = len(classes)
			classes = append(classes, label)
		}
	}
	for _, p := range predictions {
		add(p.Predicted)
	}
	for _, p := range predictions {
		add(p.Actual)
	}

	n := len(classes)
	counts := make([][]int, n)
	for i := range counts {
		counts[i] = make([]int, n)
	}
	for _, p := range predictions {
		counts[index[p.Actual]][index[p.Predicted]]++
	}

	var correct int
	var precisionSum, recallSum float64
	for c := 0; c < n; c++ {
		tp := counts[c][c]
		var column, row int
		for k := 0; k < n; k++ {
			column += counts[k][c]
			row += counts[c][k]
		}
		fp := column - tp
		fn := row - tp
		correct += tp

		if tp+fp > 0 {
			precisionSum += float64(tp) / float64(tp+fp)
		}
		if tp+fn > 0 {
			recallSum += float64(tp) / float64(tp+fn)
		}
	}

	// Float division: 0/0 yields NaN instead of panicking.
	total := float64(len(predictions))
	classCount := float64(n)
	accuracy := float64(correct) / total
	precision := precisionSum / classCount
	recall := recallSum / classCount
	f1 := 2 * precision * recall / (precision + recall)

	return Metrics{
		Accuracy:  accuracy,
		Precision: precision,
		Recall:    recall,
		F1Score:   f1,
		ConfusionMatrix: ConfusionMatrix{
			Classes: classes,
			Counts:  counts,
		},
	}
}
