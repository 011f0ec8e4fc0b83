// Package datasets generates the small synthetic datasets used by the
// eidetic command and its tests.
package datasets

import (
	"math"
	"sort"

	"golang.org/x/exp/rand"

	"github.com/eidetic-ml/eidetic/internal/errs"
	"github.com/eidetic-ml/eidetic/internal/tensor"
	"github.com/eidetic-ml/eidetic/internal/train"
)

// Generator builds a dataset of about n samples from seed.
type Generator func(n int, seed uint64) (train.Dataset, error)

var generators = map[string]Generator{
	"xor":    XOR,
	"spiral": func(n int, seed uint64) (train.Dataset, error) { return Spiral(n/3, 3, seed) },
	"linear": Linear,
}

// Names returns the registered dataset names, sorted.
func Names() []string {
	names := make([]string, 0, len(generators))
	for name := range generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Generate builds the named dataset.
func Generate(name string, n int, seed uint64) (train.Dataset, error) {
	gen, ok := generators[name]
	if !ok {
		return train.Dataset{}, errs.Config("datasets.Generate", "unknown dataset %q (have %v)", name, Names())
	}
	return gen(n, seed)
}

// XOR returns the four XOR rows repeated to at least n samples, with a
// single 0/1 target column. seed is unused.
func XOR(n int, _ uint64) (train.Dataset, error) {
	base := [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	labels := []float64{0, 1, 1, 0}
	n = max(n, len(base))
	xs := make([][]float64, n)
	ys := make([][]float64, n)
	for i := range xs {
		xs[i] = base[i%len(base)]
		ys[i] = []float64{labels[i%len(base)]}
	}
	return fromRows(xs, ys)
}

// Spiral returns classes interleaved spiral arms of perClass points each,
// with one-hot targets.
func Spiral(perClass, classes int, seed uint64) (train.Dataset, error) {
	if perClass <= 0 || classes < 2 {
		return train.Dataset{}, errs.Config("datasets.Spiral", "need perClass > 0 and classes >= 2, got %d, %d", perClass, classes)
	}
	rng := rand.New(rand.NewSource(seed))
	xs := make([][]float64, 0, perClass*classes)
	ys := make([][]float64, 0, perClass*classes)
	for c := 0; c < classes; c++ {
		for i := 0; i < perClass; i++ {
			r := float64(i) / float64(perClass)
			theta := 4*float64(c) + 4*r + 0.2*rng.NormFloat64()
			xs = append(xs, []float64{r * math.Sin(theta), r * math.Cos(theta)})
			y := make([]float64, classes)
			y[c] = 1
			ys = append(ys, y)
		}
	}
	return fromRows(xs, ys)
}

// Linear samples n points of y = 2·x0 - 3·x1 + 1 on [-1, 1]².
func Linear(n int, seed uint64) (train.Dataset, error) {
	if n <= 0 {
		return train.Dataset{}, errs.Config("datasets.Linear", "n must be positive, got %d", n)
	}
	rng := rand.New(rand.NewSource(seed))
	xs := make([][]float64, n)
	ys := make([][]float64, n)
	for i := range xs {
		x0, x1 := 2*rng.Float64()-1, 2*rng.Float64()-1
		xs[i] = []float64{x0, x1}
		ys[i] = []float64{2*x0 - 3*x1 + 1}
	}
	return fromRows(xs, ys)
}

func fromRows(xs, ys [][]float64) (train.Dataset, error) {
	inputs, err := tensor.FromRows(xs)
	if err != nil {
		return train.Dataset{}, err
	}
	targets, err := tensor.FromRows(ys)
	if err != nil {
		return train.Dataset{}, err
	}
	return train.NewDataset(inputs, targets)
}
