package train

// Metrics are the final evaluation measurements on the validation split.
// Precision, recall and F1 are macro-averaged across classes.
type Metrics struct {
	Accuracy  float64 `json:"accuracy" msgpack:"accuracy"`
	Precision float64 `json:"precision" msgpack:"precision"`
	Recall    float64 `json:"recall" msgpack:"recall"`
	F1        float64 `json:"f1" msgpack:"f1"`
}

// ComputeMetrics evaluates predictions against true labels.
func ComputeMetrics(truth, predictions []int, numClasses int) Metrics {
	if len(truth) == 0 || len(truth) != len(predictions) {
		return Metrics{}
	}

	truePos := make([]int, numClasses)
	falsePos := make([]int, numClasses)
	falseNeg := make([]int, numClasses)
	correct := 0

	for i := range truth {
		if predictions[i] == truth[i] {
			correct++
			truePos[truth[i]]++
		} else {
			falsePos[predictions[i]]++
			falseNeg[truth[i]]++
		}
	}

	precisionSum := 0.0
	recallSum := 0.0
	f1Sum := 0.0
	for c := 0; c < numClasses; c++ {
		precision := 0.0
		if truePos[c]+falsePos[c] > 0 {
			precision = float64(truePos[c]) / float64(truePos[c]+falsePos[c])
		}
		recall := 0.0
		if truePos[c]+falseNeg[c] > 0 {
			recall = float64(truePos[c]) / float64(truePos[c]+falseNeg[c])
		}
		f1 := 0.0
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		precisionSum += precision
		recallSum += recall
		f1Sum += f1
	}

	n := float64(numClasses)
	return Metrics{
		Accuracy:  float64(correct) / float64(len(truth)),
		Precision: precisionSum / n,
		Recall:    recallSum / n,
		F1:        f1Sum / n,
	}
}
