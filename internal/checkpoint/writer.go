package checkpoint

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	perrors "github.com/pkg/errors"

	"github.com/eidetic-ml/eidetic/internal/errs"
	"github.com/eidetic-ml/eidetic/internal/nn"
	"github.com/eidetic-ml/eidetic/internal/optim"
)

// Options configures how a checkpoint is written.
type Options struct {
	// Precision of parameter tensors. Default Float64. Optimizer velocities
	// are always stored as Float64.
	Precision Precision
	// RunID identifies the training run. A new random id is used when nil.
	RunID uuid.UUID
	// Seed is the network init seed, reused for dropout when the network is
	// rebuilt with File.Network.
	Seed     uint64
	Metadata map[string]string
}

// Encode serializes net, and opt when non-nil, into the .eidc format.
// meta may be nil.
func Encode(net *nn.Network, opt *optim.SGD, meta *TrainingMeta, opts Options) ([]byte, error) {
	if net == nil {
		return nil, errs.Config("checkpoint.Encode", "network is required")
	}
	if opts.Precision == "" {
		opts.Precision = Float64
	}
	if opts.Precision.Size() == 0 {
		return nil, errs.Config("checkpoint.Encode", "unknown precision %q", opts.Precision)
	}
	if opts.RunID == uuid.Nil {
		opts.RunID = uuid.New()
	}

	header := Header{
		FormatVersion: FormatVersion,
		CreatedAt:     time.Now().UTC(),
		RunID:         opts.RunID.String(),
		Precision:     opts.Precision,
		Seed:          opts.Seed,
		Layers:        net.Configs(),
		Training:      meta,
		Metadata:      opts.Metadata,
	}

	var data []byte
	add := func(name string, values []float64, rows, cols int, p Precision) error {
		offset := len(data)
		var err error
		if data, err = encodeValues(data, name, values, p); err != nil {
			return err
		}
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  p,
			Rows:   rows,
			Cols:   cols,
			Offset: int64(offset),
			Size:   int64(len(data) - offset),
		})
		return nil
	}

	params := net.Parameters()
	for _, p := range params {
		if err := add(p.Name(), p.Value().Data(), p.Shape().Rows, p.Shape().Cols, opts.Precision); err != nil {
			return nil, err
		}
	}
	flags := uint32(0)
	if meta != nil {
		flags |= FlagHasTraining
	}
	if opt != nil {
		st := opt.StateDict()
		if len(st.Velocities) != len(params) {
			return nil, errs.Shape("checkpoint.Encode", "optimizer has %d velocities, network has %d parameters",
				len(st.Velocities), len(params))
		}
		for i, p := range params {
			if err := add(VelocityPrefix+p.Name(), st.Velocities[i], p.Shape().Rows, p.Shape().Cols, Float64); err != nil {
				return nil, err
			}
		}
		header.Optimizer = &OptimizerMeta{Step: st.Step, Epoch: st.Epoch, Momentum: opt.Config().Momentum}
		flags |= FlagHasOptimizer
	}

	return assemble(flags, &header, data)
}

// assemble lays out the fixed header, the JSON header, padding and data.
func assemble(flags uint32, header *Header, data []byte) ([]byte, error) {
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return nil, perrors.Wrap(err, "marshal checkpoint header")
	}
	if len(headerJSON) > MaxHeaderSize {
		return nil, perrors.Wrapf(ErrHeaderTooLarge, "%d bytes", len(headerJSON))
	}

	var buf bytes.Buffer
	buf.Grow(fixedHeaderSize + len(headerJSON) + HeaderAlignment + len(data))
	buf.WriteString(MagicBytes)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(FormatVersion))
	_ = binary.Write(&buf, binary.LittleEndian, flags)
	_ = binary.Write(&buf, binary.LittleEndian, uint64(len(headerJSON)))
	checksum := sha256.Sum256(data)
	buf.Write(checksum[:])
	buf.Write(headerJSON)
	buf.Write(make([]byte, padding(buf.Len())))
	buf.Write(data)
	return buf.Bytes(), nil
}

// Save writes a checkpoint to path. The file is written to a temporary
// name in the same directory and renamed, so path never holds a partial
// checkpoint.
func Save(path string, net *nn.Network, opt *optim.SGD, meta *TrainingMeta, opts Options) error {
	data, err := Encode(net, opt, meta, opts)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return perrors.Wrap(err, "create checkpoint")
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return perrors.Wrapf(err, "write checkpoint %s", path)
	}
	if err := tmp.Close(); err != nil {
		return perrors.Wrapf(err, "write checkpoint %s", path)
	}
	return perrors.Wrapf(os.Rename(tmp.Name(), path), "save checkpoint %s", path)
}
