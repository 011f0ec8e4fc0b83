package datasets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eidetic-ml/eidetic/internal/errs"
)

func TestGenerate(t *testing.T) {
	assert.Equal(t, []string{"linear", "spiral", "xor"}, Names())

	xor, err := Generate("xor", 8, 0)
	require.NoError(t, err)
	assert.Equal(t, 8, xor.Len())
	assert.Equal(t, []float64{0, 1, 1, 0, 0, 1, 1, 0}, xor.Targets.Data())

	spiral, err := Generate("spiral", 30, 1)
	require.NoError(t, err)
	assert.Equal(t, 30, spiral.Len())
	assert.Equal(t, 3, spiral.Targets.Cols())
	for r := 0; r < spiral.Len(); r++ {
		sum := 0.0
		for _, v := range spiral.Targets.Row(r) {
			sum += v
		}
		assert.Equal(t, 1.0, sum)
	}

	a, err := Generate("linear", 16, 2)
	require.NoError(t, err)
	b, err := Generate("linear", 16, 2)
	require.NoError(t, err)
	assert.Equal(t, a.Inputs.Data(), b.Inputs.Data())
	x := a.Inputs.Row(3)
	assert.InDelta(t, 2*x[0]-3*x[1]+1, a.Targets.Row(3)[0], 1e-12)

	_, err = Generate("moons", 10, 0)
	assert.ErrorIs(t, err, errs.ErrInvalidConfiguration)
	_, err = Spiral(10, 1, 0)
	assert.ErrorIs(t, err, errs.ErrInvalidConfiguration)
}
