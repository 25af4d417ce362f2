// Package leb128 implements LEB128 variable-length integer encoding, the
// integer format used throughout the WASM binary container (spec.md §4.1).
//
// This is deliberately not encoding/binary's Varint: that's a different
// (though related) bit layout and would silently misdecode a real WASM
// module.
package leb128

import (
	"fmt"
	"io"
)

// maxVarintLen32/64 bound how many 7-bit groups a 32/64-bit value can take,
// which in turn bounds how many bytes DecodeUint32/Uint64 will ever read
// before declaring the encoding invalid.
const (
	maxVarintLen32 = 5
	maxVarintLen64 = 10
)

// DecodeUint32 reads an unsigned LEB128 u32 from b, returning the value,
// the number of bytes consumed, and an error if b is truncated or encodes
// more than 32 bits.
func DecodeUint32(b []byte) (uint32, int, error) {
	var result uint32
	var shift uint
	for i := 0; i < len(b); i++ {
		if shift >= 32 {
			return 0, 0, fmt.Errorf("leb128: u32 overflow")
		}
		c := b[i]
		result |= uint32(c&0x7f) << shift
		if c&0x80 == 0 {
			return result, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, fmt.Errorf("leb128: unexpected EOF decoding u32")
}

// DecodeInt32 reads a signed LEB128 i32.
func DecodeInt32(b []byte) (int32, int, error) {
	var result int32
	var shift uint
	var c byte
	n := 0
	for {
		if n >= len(b) {
			return 0, 0, fmt.Errorf("leb128: unexpected EOF decoding i32")
		}
		if shift >= 32 {
			return 0, 0, fmt.Errorf("leb128: i32 overflow")
		}
		c = b[n]
		result |= int32(c&0x7f) << shift
		shift += 7
		n++
		if c&0x80 == 0 {
			break
		}
	}
	if shift < 32 && c&0x40 != 0 {
		result |= -1 << shift
	}
	return result, n, nil
}

// DecodeUint64 reads an unsigned LEB128 u64.
func DecodeUint64(b []byte) (uint64, int, error) {
	var result uint64
	var shift uint
	for i := 0; i < len(b); i++ {
		if shift >= 64 {
			return 0, 0, fmt.Errorf("leb128: u64 overflow")
		}
		c := b[i]
		result |= uint64(c&0x7f) << shift
		if c&0x80 == 0 {
			return result, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, fmt.Errorf("leb128: unexpected EOF decoding u64")
}

// DecodeInt64 reads a signed LEB128 i64.
func DecodeInt64(b []byte) (int64, int, error) {
	var result int64
	var shift uint
	var c byte
	n := 0
	for {
		if n >= len(b) {
			return 0, 0, fmt.Errorf("leb128: unexpected EOF decoding i64")
		}
		if shift >= 64 {
			return 0, 0, fmt.Errorf("leb128: i64 overflow")
		}
		c = b[n]
		result |= int64(c&0x7f) << shift
		shift += 7
		n++
		if c&0x80 == 0 {
			break
		}
	}
	if shift < 64 && c&0x40 != 0 {
		result |= -1 << shift
	}
	return result, n, nil
}

// ReadUint32 decodes an unsigned LEB128 u32 one byte at a time from r,
// for callers streaming a section payload rather than holding the whole
// module in memory (internal/wasm/binary's decoder). Same semantics and
// overflow bound as DecodeUint32.
func ReadUint32(r io.ByteReader) (uint32, int, error) {
	var result uint32
	var shift uint
	n := 0
	for {
		if shift >= 32 {
			return 0, 0, fmt.Errorf("leb128: u32 overflow")
		}
		c, err := r.ReadByte()
		if err != nil {
			return 0, 0, fmt.Errorf("leb128: unexpected EOF decoding u32: %w", err)
		}
		n++
		result |= uint32(c&0x7f) << shift
		if c&0x80 == 0 {
			return result, n, nil
		}
		shift += 7
	}
}

// ReadInt32 is ReadUint32's signed counterpart (streaming i32).
func ReadInt32(r io.ByteReader) (int32, int, error) {
	var result int32
	var shift uint
	var c byte
	n := 0
	for {
		if shift >= 32 {
			return 0, 0, fmt.Errorf("leb128: i32 overflow")
		}
		var err error
		c, err = r.ReadByte()
		if err != nil {
			return 0, 0, fmt.Errorf("leb128: unexpected EOF decoding i32: %w", err)
		}
		n++
		result |= int32(c&0x7f) << shift
		shift += 7
		if c&0x80 == 0 {
			break
		}
	}
	if shift < 32 && c&0x40 != 0 {
		result |= -1 << shift
	}
	return result, n, nil
}

// ReadInt64 is ReadUint32's streaming i64 counterpart.
func ReadInt64(r io.ByteReader) (int64, int, error) {
	var result int64
	var shift uint
	var c byte
	n := 0
	for {
		if shift >= 64 {
			return 0, 0, fmt.Errorf("leb128: i64 overflow")
		}
		var err error
		c, err = r.ReadByte()
		if err != nil {
			return 0, 0, fmt.Errorf("leb128: unexpected EOF decoding i64: %w", err)
		}
		n++
		result |= int64(c&0x7f) << shift
		shift += 7
		if c&0x80 == 0 {
			break
		}
	}
	if shift < 64 && c&0x40 != 0 {
		result |= -1 << shift
	}
	return result, n, nil
}

// EncodeUint32 encodes v as unsigned LEB128.
func EncodeUint32(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
		} else {
			out = append(out, b)
			return out
		}
	}
}

// EncodeInt32 encodes v as signed LEB128.
func EncodeInt32(v int32) []byte {
	var out []byte
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			more = false
		} else {
			b |= 0x80
		}
		out = append(out, b)
	}
	return out
}

// EncodeInt64 encodes v as signed LEB128.
func EncodeInt64(v int64) []byte {
	var out []byte
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			more = false
		} else {
			b |= 0x80
		}
		out = append(out, b)
	}
	return out
}
