// Copyright 2025 Eidetic Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eidetic-ml/eidetic/tensor"
)

func TestPublicAPI(t *testing.T) {
	x, err := tensor.FromRows([][]float64{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)
	w := tensor.Ones(tensor.Shape{Rows: 3, Cols: 2})

	y, err := x.MatMul(w)
	require.NoError(t, err)
	assert.Equal(t, []float64{6, 6, 15, 15}, y.Data())

	_, err = x.MatMul(x)
	assert.ErrorIs(t, err, tensor.ErrDimensionMismatch)

	_, err = tensor.New(tensor.Shape{Rows: 2, Cols: 2}, []float64{1})
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestPublicArena(t *testing.T) {
	arena := tensor.NewArena(make([]float64, 4))
	_, err := arena.Alloc(tensor.Shape{Rows: 1, Cols: 4})
	require.NoError(t, err)
	_, err = arena.Alloc(tensor.Shape{Rows: 1, Cols: 1})
	assert.ErrorIs(t, err, tensor.ErrCapacityExceeded)
}
