package binary

import (
	"fmt"
	"io"

	"github.com/wasmforge/wasmforge/internal/leb128"
)

// readU32/readI32/readI64 stream a LEB128 immediate one byte at a time
// from a section reader, delegating the actual decode to
// internal/leb128's Read* variants so the container decoder and the
// interpreter share one LEB128 implementation.
func readU32(r io.ByteReader) (uint32, int, error) {
	return leb128.ReadUint32(r)
}

func readI32(r io.ByteReader) (int32, int, error) {
	return leb128.ReadInt32(r)
}

func readI64(r io.ByteReader) (int64, int, error) {
	return leb128.ReadInt64(r)
}

// readName reads a length-prefixed UTF-8 string, the format used for
// import/export/module names (spec.md §4.1).
func readName(r io.ByteReader) (string, error) {
	n, _, err := readU32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	for i := range buf {
		b, err := r.ReadByte()
		if err != nil {
			return "", fmt.Errorf("truncated name: %w", err)
		}
		buf[i] = b
	}
	return string(buf), nil
}

func readByte(r io.ByteReader) (byte, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("unexpected EOF: %w", err)
	}
	return b, nil
}
