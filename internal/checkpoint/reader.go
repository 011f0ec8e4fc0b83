package checkpoint

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"os"

	perrors "github.com/pkg/errors"
)

// Decode parses and validates a checkpoint held in memory.
func Decode(data []byte) (*File, error) {
	if len(data) < fixedHeaderSize {
		return nil, perrors.Wrapf(ErrTruncated, "%d bytes, fixed header needs %d", len(data), fixedHeaderSize)
	}
	if string(data[:4]) != MagicBytes {
		return nil, ErrInvalidMagic
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	if version != FormatVersion {
		return nil, perrors.Wrapf(ErrUnsupportedVersion, "got %d, expected %d", version, FormatVersion)
	}
	flags := binary.LittleEndian.Uint32(data[8:12])
	headerSize := binary.LittleEndian.Uint64(data[12:20])
	if headerSize > MaxHeaderSize {
		return nil, perrors.Wrapf(ErrHeaderTooLarge, "%d bytes, max %d", headerSize, MaxHeaderSize)
	}
	var checksum [ChecksumSize]byte
	copy(checksum[:], data[20:fixedHeaderSize])

	headerEnd := fixedHeaderSize + int(headerSize)
	if headerEnd > len(data) {
		return nil, perrors.Wrapf(ErrTruncated, "header ends at %d, file has %d bytes", headerEnd, len(data))
	}
	var header Header
	if err := json.Unmarshal(data[fixedHeaderSize:headerEnd], &header); err != nil {
		return nil, perrors.Wrap(err, "parse checkpoint header")
	}
	if header.FormatVersion != FormatVersion {
		return nil, perrors.Wrapf(ErrUnsupportedVersion, "header declares version %d", header.FormatVersion)
	}

	dataStart := headerEnd + padding(headerEnd)
	if dataStart > len(data) {
		return nil, perrors.Wrapf(ErrTruncated, "data section starts at %d, file has %d bytes", dataStart, len(data))
	}
	body := data[dataStart:]
	if sum := sha256.Sum256(body); !bytes.Equal(sum[:], checksum[:]) {
		return nil, ErrChecksumMismatch
	}
	if err := validateHeader(&header, int64(len(body))); err != nil {
		return nil, err
	}

	f := &File{Header: header, Flags: flags, tensors: make(map[string]entry, len(header.Tensors))}
	for _, t := range header.Tensors {
		region := body[t.Offset : t.Offset+t.Size]
		f.tensors[t.Name] = entry{meta: t, values: decodeValues(region, t.Rows*t.Cols, t.DType)}
	}
	return f, nil
}

// Load reads and validates the checkpoint at path.
func Load(path string) (*File, error) {
	//nolint:gosec // G304: checkpoint path comes from the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, perrors.Wrap(err, "read checkpoint")
	}
	f, err := Decode(data)
	if err != nil {
		return nil, perrors.Wrapf(err, "load checkpoint %s", path)
	}
	return f, nil
}
