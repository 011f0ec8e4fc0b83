// Copyright 2025 Eidetic Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense float64 matrices eidetic networks
// compute with.
//
// # Overview
//
// Every tensor is rank 2, (rows, cols), stored row-major. A batch is a
// tensor with one sample per row. Operations return new tensors; the
// *InPlace variants and CopyFrom are the only mutators besides Set.
//
// # Basic Usage
//
//	import "github.com/eidetic-ml/eidetic/tensor"
//
//	func main() {
//	    x, _ := tensor.FromRows([][]float64{{1, 2, 3}, {4, 5, 6}})
//	    w := tensor.Ones(tensor.Shape{Rows: 3, Cols: 2})
//
//	    y, err := x.MatMul(w) // (2, 2)
//	    if errors.Is(err, tensor.ErrDimensionMismatch) {
//	        // inner dimensions differ
//	    }
//	    b, _ := tensor.FromRows([][]float64{{0.5, -0.5}})
//	    y, _ = y.AddRowBroadcast(b)
//	}
//
// # Errors
//
// Shape problems are reported as errors matching ErrShapeMismatch or
// ErrDimensionMismatch with errors.Is. Out-of-range indices match
// ErrIndexOutOfBounds.
//
// # Arenas
//
// An Arena hands out tensors backed by one caller-owned buffer and fails
// with ErrCapacityExceeded instead of growing:
//
//	arena := tensor.NewArena(make([]float64, 1024))
//	h, err := arena.Alloc(tensor.Shape{Rows: 32, Cols: 16})
//	// ...
//	arena.Reset()
package tensor
