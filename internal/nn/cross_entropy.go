package nn

import (
	"math"

	"github.com/eidetic-ml/eidetic/internal/tensor"
)

// ProbabilityEpsilon bounds softmax probabilities to [ε, 1-ε] before the
// logarithm, so the loss is always finite.
const ProbabilityEpsilon = 1e-12

// SoftmaxCrossEntropyLoss computes cross-entropy over softmax probabilities.
//
// Mathematical Formulation:
//
//	p = softmax(logits) per row, computed with the row max subtracted
//	Loss = mean over rows of -Σ targets · log(clamp(p, ε, 1-ε))
//
// Gradient (Backward):
//
//	∂L/∂logits = (p - targets) / batch_size
//
// The gradient is the combined softmax+cross-entropy derivative and holds
// for targets whose rows sum to one (one-hot or soft labels).
//
// A single-column prediction is a binary problem: the column z is expanded
// to the logits [z, 1-z] and the target t to [t, 1-t]. Its gradient is
// folded back onto the single column.
type SoftmaxCrossEntropyLoss struct{}

// NewSoftmaxCrossEntropyLoss creates a new softmax cross-entropy loss.
func NewSoftmaxCrossEntropyLoss() SoftmaxCrossEntropyLoss {
	return SoftmaxCrossEntropyLoss{}
}

// Name returns "softmax_cross_entropy".
func (SoftmaxCrossEntropyLoss) Name() string { return "softmax_cross_entropy" }

// Forward computes the mean negative log-likelihood.
func (SoftmaxCrossEntropyLoss) Forward(predictions, targets *tensor.Tensor) (float64, error) {
	if err := checkLossInputs("nn.SoftmaxCrossEntropyLoss.Forward", predictions, targets); err != nil {
		return 0, err
	}
	logits, labels := expandBinary(predictions), expandBinary(targets)
	probs := Softmax(logits)

	total := 0.0
	for r := 0; r < probs.Rows(); r++ {
		p, t := probs.Row(r), labels.Row(r)
		for c := range p {
			if t[c] == 0 {
				continue
			}
			total -= t[c] * math.Log(clamp(p[c], ProbabilityEpsilon, 1-ProbabilityEpsilon))
		}
	}
	return total / float64(probs.Rows()), nil
}

// Backward computes (softmax(predictions) - targets) / batch_size.
func (SoftmaxCrossEntropyLoss) Backward(predictions, targets *tensor.Tensor) (*tensor.Tensor, error) {
	if err := checkLossInputs("nn.SoftmaxCrossEntropyLoss.Backward", predictions, targets); err != nil {
		return nil, err
	}
	batch := float64(predictions.Rows())
	probs := Softmax(expandBinary(predictions))
	grad, err := probs.Sub(expandBinary(targets))
	if err != nil {
		return nil, err
	}
	grad.ScaleInPlace(1 / batch)

	if predictions.Cols() > 1 {
		return grad, nil
	}

	// d/dz of logits [z, 1-z] is g0 - g1.
	folded := tensor.Zeros(predictions.Shape())
	for r := 0; r < grad.Rows(); r++ {
		row := grad.Row(r)
		folded.Data()[r] = row[0] - row[1]
	}
	return folded, nil
}

// Softmax returns the row-wise softmax of x, subtracting each row's max
// before exponentiating.
func Softmax(x *tensor.Tensor) *tensor.Tensor {
	out := x.Clone()
	maxima := x.RowMax().Data()
	for r := 0; r < out.Rows(); r++ {
		row := out.Row(r)
		sum := 0.0
		for c, v := range row {
			e := math.Exp(v - maxima[r])
			row[c] = e
			sum += e
		}
		for c := range row {
			row[c] /= sum
		}
	}
	return out
}

// expandBinary maps a single column x to the two columns [x, 1-x].
// Wider tensors are returned unchanged.
func expandBinary(x *tensor.Tensor) *tensor.Tensor {
	if x.Cols() != 1 {
		return x
	}
	out := tensor.Zeros(tensor.Shape{Rows: x.Rows(), Cols: 2})
	for r, v := range x.Data() {
		row := out.Row(r)
		row[0], row[1] = v, 1-v
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
