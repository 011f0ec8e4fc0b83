package nn

import (
	"github.com/eidetic-ml/eidetic/internal/errs"
	"github.com/eidetic-ml/eidetic/internal/tensor"
)

// Loss compares a prediction with a target.
//
// Forward returns the scalar loss and Backward returns dL/d(prediction).
// Both are stateless and fail with ErrShapeMismatch when the shapes differ
// and with ErrNonFiniteValue when either tensor holds NaN or ±Inf.
type Loss interface {
	Name() string
	Forward(predictions, targets *tensor.Tensor) (float64, error)
	Backward(predictions, targets *tensor.Tensor) (*tensor.Tensor, error)
}

// MSELoss computes Mean Squared Error loss.
//
// Loss = mean((predictions - targets)²) over all elements.
// Gradient = 2(predictions - targets) / element_count.
//
// Example:
//
//	var mse nn.MSELoss
//	loss, err := mse.Forward(predictions, targets)
type MSELoss struct{}

// NewMSELoss creates a new MSE loss function.
func NewMSELoss() MSELoss {
	return MSELoss{}
}

// Name returns "mse".
func (MSELoss) Name() string { return "mse" }

// Forward computes the MSE loss.
func (MSELoss) Forward(predictions, targets *tensor.Tensor) (float64, error) {
	diff, err := lossDiff("nn.MSELoss.Forward", predictions, targets)
	if err != nil {
		return 0, err
	}
	squared, err := diff.MulElem(diff)
	if err != nil {
		return 0, err
	}
	return squared.Mean(), nil
}

// Backward computes 2(predictions - targets) / n.
func (MSELoss) Backward(predictions, targets *tensor.Tensor) (*tensor.Tensor, error) {
	diff, err := lossDiff("nn.MSELoss.Backward", predictions, targets)
	if err != nil {
		return nil, err
	}
	diff.ScaleInPlace(2 / float64(diff.NumElements()))
	return diff, nil
}

// lossDiff validates both tensors and returns predictions - targets.
func lossDiff(op string, predictions, targets *tensor.Tensor) (*tensor.Tensor, error) {
	if err := checkLossInputs(op, predictions, targets); err != nil {
		return nil, err
	}
	return predictions.Sub(targets)
}

func checkLossInputs(op string, predictions, targets *tensor.Tensor) error {
	if !predictions.Shape().Equal(targets.Shape()) {
		return errs.Shape(op, "predictions %v vs targets %v", predictions.Shape(), targets.Shape())
	}
	if err := predictions.CheckFinite(); err != nil {
		return errs.NonFinite(op, "predictions: %v", err)
	}
	if err := targets.CheckFinite(); err != nil {
		return errs.NonFinite(op, "targets: %v", err)
	}
	return nil
}
