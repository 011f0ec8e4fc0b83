// Package checkpoint saves and restores trained networks in the .eidc
// binary format.
//
// File layout (little endian):
//
//	[4 bytes: "EIDC"]
//	[4 bytes: format version]
//	[4 bytes: flags]
//	[8 bytes: header size]
//	[32 bytes: SHA-256 of the tensor data]
//	[N bytes: JSON header]
//	[padding to a 64-byte boundary]
//	[tensor data]
//
// The JSON header records the layer configurations, so a checkpoint is
// enough to rebuild the network without the configuration that trained it.
package checkpoint

import (
	"time"

	"github.com/eidetic-ml/eidetic/internal/nn"
)

// Format constants.
const (
	MagicBytes      = "EIDC"
	FormatVersion   = 1
	HeaderAlignment = 64
	ChecksumSize    = 32

	// magic + version + flags + header size + checksum
	fixedHeaderSize = 4 + 4 + 4 + 8 + ChecksumSize
)

// Flags.
const (
	FlagHasOptimizer uint32 = 1 << 0
	FlagHasTraining  uint32 = 1 << 1
)

// Precision is the on-disk element type of parameter tensors.
// Values are always float64 in memory.
type Precision string

// Supported precisions.
const (
	Float64 Precision = "float64"
	Float32 Precision = "float32"
	Float16 Precision = "float16"
)

// Size returns the number of bytes per element, or 0 for an unknown precision.
func (p Precision) Size() int {
	switch p {
	case Float64:
		return 8
	case Float32:
		return 4
	case Float16:
		return 2
	}
	return 0
}

// Header is the JSON header of a checkpoint.
type Header struct {
	FormatVersion int               `json:"format_version"`
	CreatedAt     time.Time         `json:"created_at"`
	RunID         string            `json:"run_id"`
	Precision     Precision         `json:"precision"`
	Seed          uint64            `json:"seed"`
	Layers        []nn.LayerConfig  `json:"layers"`
	Tensors       []TensorMeta      `json:"tensors"`
	Training      *TrainingMeta     `json:"training,omitempty"`
	Optimizer     *OptimizerMeta    `json:"optimizer,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// TensorMeta locates one tensor in the data section.
type TensorMeta struct {
	Name   string    `json:"name"`
	DType  Precision `json:"dtype"`
	Rows   int       `json:"rows"`
	Cols   int       `json:"cols"`
	Offset int64     `json:"offset"` // relative to the start of the data section
	Size   int64     `json:"size"`   // bytes
}

// TrainingMeta records where training stood when the checkpoint was taken.
type TrainingMeta struct {
	Epoch int     `json:"epoch"`
	Step  int     `json:"step"`
	Loss  float64 `json:"loss"`
}

// OptimizerMeta holds the scalar part of the optimizer state. Velocities
// are stored as tensors named VelocityPrefix + parameter name.
type OptimizerMeta struct {
	Step     int     `json:"step"`
	Epoch    int     `json:"epoch"`
	Momentum float64 `json:"momentum"`
}

// VelocityPrefix prefixes the tensor names of optimizer velocities.
const VelocityPrefix = "velocity."
