package train

import (
	"golang.org/x/exp/rand"

	"github.com/eidetic-ml/eidetic/internal/errs"
	"github.com/eidetic-ml/eidetic/internal/tensor"
)

// Dataset pairs input rows with target rows.
type Dataset struct {
	Inputs  *tensor.Tensor
	Targets *tensor.Tensor
}

// NewDataset validates that inputs and targets have the same number of rows.
func NewDataset(inputs, targets *tensor.Tensor) (Dataset, error) {
	ds := Dataset{Inputs: inputs, Targets: targets}
	return ds, ds.Validate()
}

// Validate checks that both tensors are present and row-aligned.
func (d Dataset) Validate() error {
	if d.Inputs == nil || d.Targets == nil {
		return errs.Config("train.Dataset", "inputs and targets are required")
	}
	if d.Inputs.Rows() != d.Targets.Rows() {
		return errs.Shape("train.Dataset", "%d input rows vs %d target rows", d.Inputs.Rows(), d.Targets.Rows())
	}
	return nil
}

// Len returns the number of samples.
func (d Dataset) Len() int {
	return d.Inputs.Rows()
}

// Shuffle returns a copy of d with its rows permuted by rng. Input and
// target rows stay paired.
func Shuffle(d Dataset, rng *rand.Rand) (Dataset, error) {
	perm := rng.Perm(d.Len())
	inputs, err := d.Inputs.SelectRows(perm)
	if err != nil {
		return Dataset{}, err
	}
	targets, err := d.Targets.SelectRows(perm)
	if err != nil {
		return Dataset{}, err
	}
	return Dataset{Inputs: inputs, Targets: targets}, nil
}

// Batches splits d into consecutive chunks of size rows. The last batch
// holds the remainder and may be shorter.
func Batches(d Dataset, size int) ([]Dataset, error) {
	if size <= 0 {
		return nil, errs.Config("train.Batches", "batch size must be positive, got %d", size)
	}
	n := d.Len()
	batches := make([]Dataset, 0, (n+size-1)/size)
	for from := 0; from < n; from += size {
		batch, err := slice(d, from, min(from+size, n))
		if err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

// Split returns the first n samples and the rest.
func Split(d Dataset, n int) (Dataset, Dataset, error) {
	if n <= 0 || n >= d.Len() {
		return Dataset{}, Dataset{}, errs.New(errs.ErrIndexOutOfBounds, "train.Split",
			"split point %d must be inside (0, %d)", n, d.Len())
	}
	head, err := slice(d, 0, n)
	if err != nil {
		return Dataset{}, Dataset{}, err
	}
	tail, err := slice(d, n, d.Len())
	if err != nil {
		return Dataset{}, Dataset{}, err
	}
	return head, tail, nil
}

func slice(d Dataset, from, to int) (Dataset, error) {
	inputs, err := d.Inputs.SliceRows(from, to)
	if err != nil {
		return Dataset{}, err
	}
	targets, err := d.Targets.SliceRows(from, to)
	if err != nil {
		return Dataset{}, err
	}
	return Dataset{Inputs: inputs, Targets: targets}, nil
}
