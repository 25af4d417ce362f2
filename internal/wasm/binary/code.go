package binary

import (
	"fmt"
	"io"

	"github.com/wasmforge/wasmforge/api"
	"github.com/wasmforge/wasmforge/internal/wasmdebug"
)

// rawCode is one Code section entry: expanded locals plus the raw,
// not-yet-executed instruction bytes. The engine (not the decoder)
// interprets Body.
type rawCode struct {
	locals []api.ValueType
	body   []byte
}

func decodeCodeSection(r io.ByteReader) ([]rawCode, error) {
	count, _, err := readU32(r)
	if err != nil {
		return nil, err
	}
	out := make([]rawCode, count)
	for i := range out {
		out[i], err = decodeCode(r)
		if err != nil {
			return nil, wasmdebug.NewItemDecodeError("code", i, err)
		}
	}
	return out, nil
}

func decodeCode(r io.ByteReader) (rawCode, error) {
	size, _, err := readU32(r)
	if err != nil {
		return rawCode{}, err
	}
	buf := make([]byte, size)
	for i := range buf {
		b, err := r.ReadByte()
		if err != nil {
			return rawCode{}, fmt.Errorf("truncated function body: %w", err)
		}
		buf[i] = b
	}

	bodyReader := &byteSliceReader{b: buf}
	locals, err := decodeLocalDecls(bodyReader)
	if err != nil {
		return rawCode{}, fmt.Errorf("locals: %w", err)
	}
	return rawCode{locals: locals, body: buf[bodyReader.pos:]}, nil
}

// decodeLocalDecls reads the vector of (count, type) local declarations
// at the head of a function body and expands them into one ValueType per
// declared local, preserving declaration order (spec.md §4.3.2).
func decodeLocalDecls(r *byteSliceReader) ([]api.ValueType, error) {
	numGroups, _, err := readU32(r)
	if err != nil {
		return nil, err
	}
	var out []api.ValueType
	for i := uint32(0); i < numGroups; i++ {
		n, _, err := readU32(r)
		if err != nil {
			return nil, err
		}
		vt, err := readValueType(r)
		if err != nil {
			return nil, err
		}
		for j := uint32(0); j < n; j++ {
			out = append(out, vt)
		}
	}
	return out, nil
}

// byteSliceReader is an io.ByteReader over a slice that tracks how many
// bytes have been consumed, so decodeCode can hand the engine the
// remaining, unconsumed bytes as the function's instruction stream.
type byteSliceReader struct {
	b   []byte
	pos int
}

func (r *byteSliceReader) ReadByte() (byte, error) {
	if r.pos >= len(r.b) {
		return 0, io.EOF
	}
	b := r.b[r.pos]
	r.pos++
	return b, nil
}
