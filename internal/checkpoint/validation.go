package checkpoint

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Validation limits.
const (
	MaxHeaderSize    = 16 * 1024 * 1024
	MaxTensorCount   = 10_000
	MaxTensorNameLen = 256
)

// validateHeader checks the tensor table against a data section of
// dataSize bytes.
func validateHeader(h *Header, dataSize int64) error {
	if len(h.Tensors) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(h.Tensors), MaxTensorCount),
		}
	}
	seen := make(map[string]bool, len(h.Tensors))
	for _, t := range h.Tensors {
		if err := validateTensorMeta(t); err != nil {
			return err
		}
		if seen[t.Name] {
			return &ValidationError{Type: "duplicate_name", Tensor: t.Name, Details: "appears more than once"}
		}
		seen[t.Name] = true
	}
	return validateOffsets(h.Tensors, dataSize)
}

func validateTensorMeta(t TensorMeta) error {
	if t.Name == "" || len(t.Name) > MaxTensorNameLen || strings.ContainsAny(t.Name, "/\\\x00") {
		return &ValidationError{Type: "invalid_name", Tensor: t.Name, Details: "empty, too long or contains a separator"}
	}
	if t.DType.Size() == 0 {
		return &ValidationError{Type: "invalid_dtype", Tensor: t.Name, Details: fmt.Sprintf("unknown dtype %q", t.DType)}
	}
	if t.Rows <= 0 || t.Cols <= 0 {
		return &ValidationError{Type: "invalid_shape", Tensor: t.Name, Details: fmt.Sprintf("(%d, %d)", t.Rows, t.Cols)}
	}
	elem := int64(t.DType.Size())
	if int64(t.Rows) > math.MaxInt64/int64(t.Cols)/elem {
		return &ValidationError{Type: "invalid_shape", Tensor: t.Name, Details: fmt.Sprintf("(%d, %d) overflows", t.Rows, t.Cols)}
	}
	if want := int64(t.Rows) * int64(t.Cols) * elem; t.Size != want {
		return &ValidationError{
			Type:    "size_mismatch",
			Tensor:  t.Name,
			Details: fmt.Sprintf("size %d, shape (%d, %d) of %s needs %d", t.Size, t.Rows, t.Cols, t.DType, want),
		}
	}
	return nil
}

// validateOffsets rejects negative, out-of-bounds and overlapping regions.
func validateOffsets(tensors []TensorMeta, dataSize int64) error {
	sorted := make([]TensorMeta, len(tensors))
	copy(sorted, tensors)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	for i, t := range sorted {
		if t.Offset < 0 || t.Size < 0 {
			return &ValidationError{
				Type:    "negative_offset",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset=%d, size=%d", t.Offset, t.Size),
			}
		}
		if t.Offset > dataSize || t.Size > dataSize-t.Offset {
			return &ValidationError{
				Type:    "out_of_bounds",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset %d + size %d exceeds data size %d", t.Offset, t.Size, dataSize),
			}
		}
		// Offset+Size cannot overflow below: both are within dataSize.
		if i < len(sorted)-1 {
			next := sorted[i+1]
			if t.Offset+t.Size > next.Offset {
				return &ValidationError{
					Type:    "offset_overlap",
					Tensor:  t.Name,
					Tensor2: next.Name,
					Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
						t.Offset, t.Offset+t.Size, next.Offset, next.Offset+next.Size),
				}
			}
		}
	}
	return nil
}
