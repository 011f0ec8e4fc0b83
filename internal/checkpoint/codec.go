package checkpoint

import (
	"encoding/binary"
	"math"

	"github.com/x448/float16"

	"github.com/eidetic-ml/eidetic/internal/errs"
)

// encodeValues appends values to dst in precision p.
//
// Fails with ErrNonFiniteValue if a value is not finite, or would not be
// after narrowing (e.g. 1e6 as float16).
func encodeValues(dst []byte, name string, values []float64, p Precision) ([]byte, error) {
	for i, v := range values {
		switch p {
		case Float64:
			dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(v))
		case Float32:
			f := float32(v)
			if math.IsInf(float64(f), 0) || math.IsNaN(float64(f)) {
				return nil, errs.NonFinite("checkpoint.encode", "%s[%d] = %g does not fit %s", name, i, v, p)
			}
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
		case Float16:
			h := float16.Fromfloat32(float32(v))
			if h.IsInf(0) || h.IsNaN() {
				return nil, errs.NonFinite("checkpoint.encode", "%s[%d] = %g does not fit %s", name, i, v, p)
			}
			dst = binary.LittleEndian.AppendUint16(dst, h.Bits())
		default:
			return nil, errs.Config("checkpoint.encode", "unknown precision %q", p)
		}
	}
	return dst, nil
}

// decodeValues reads n elements of precision p from src, which has already
// been bounds-checked.
func decodeValues(src []byte, n int, p Precision) []float64 {
	out := make([]float64, n)
	size := p.Size()
	for i := range out {
		b := src[i*size:]
		switch p {
		case Float64:
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b))
		case Float32:
			out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
		case Float16:
			out[i] = float64(float16.Frombits(binary.LittleEndian.Uint16(b)).Float32())
		}
	}
	return out
}

func padding(pos int) int {
	return (HeaderAlignment - pos%HeaderAlignment) % HeaderAlignment
}
