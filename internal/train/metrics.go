package train

import (
	"github.com/eidetic-ml/eidetic/internal/errs"
	"github.com/eidetic-ml/eidetic/internal/nn"
	"github.com/eidetic-ml/eidetic/internal/tensor"
)

// Accuracy returns the fraction of rows whose predicted class matches the
// target class.
//
// With several columns the class is the argmax of the row. With a single
// column it is whether the value is at least 0.5.
func Accuracy(predictions, targets *tensor.Tensor) (float64, error) {
	if !predictions.Shape().Equal(targets.Shape()) {
		return 0, errs.Shape("train.Accuracy", "predictions %v vs targets %v", predictions.Shape(), targets.Shape())
	}
	var predicted, expected []int
	if predictions.Cols() == 1 {
		predicted, expected = threshold(predictions), threshold(targets)
	} else {
		predicted, expected = predictions.ArgmaxRows(), targets.ArgmaxRows()
	}
	correct := 0
	for i := range predicted {
		if predicted[i] == expected[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(predicted)), nil
}

func threshold(t *tensor.Tensor) []int {
	out := make([]int, t.Rows())
	for i, v := range t.Data() {
		if v >= 0.5 {
			out[i] = 1
		}
	}
	return out
}

// Evaluate runs an inference pass over d and returns its loss and accuracy.
func Evaluate(net *nn.Network, loss nn.Loss, d Dataset) (float64, float64, error) {
	predictions, err := net.Predict(d.Inputs)
	if err != nil {
		return 0, 0, err
	}
	value, err := loss.Forward(predictions, d.Targets)
	if err != nil {
		return 0, 0, err
	}
	accuracy, err := Accuracy(predictions, d.Targets)
	if err != nil {
		return 0, 0, err
	}
	return value, accuracy, nil
}
