package leb128

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeInt32(t *testing.T) {
	for _, c := range []struct {
		input    int32
		expected []byte
	}{
		{input: -165675008, expected: []byte{0x80, 0x80, 0x80, 0xb1, 0x7f}},
		{input: -624485, expected: []byte{0x9b, 0xf1, 0x59}},
		{input: -1, expected: []byte{0x7f}},
		{input: 0, expected: []byte{0x00}},
		{input: 1, expected: []byte{0x01}},
		{input: 624485, expected: []byte{0xe5, 0x8e, 0x26}},
		{input: math.MaxInt32, expected: []byte{0xff, 0xff, 0xff, 0xff, 0x7}},
		{input: math.MinInt32, expected: []byte{0x80, 0x80, 0x80, 0x80, 0x78}},
	} {
		require.Equal(t, c.expected, EncodeInt32(c.input))
		decoded, n, err := DecodeInt32(c.expected)
		require.NoError(t, err)
		require.Equal(t, c.input, decoded)
		require.Equal(t, len(c.expected), n)
	}
}

func TestEncodeDecodeInt64(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 624485, -624485, math.MaxInt64, math.MinInt64} {
		enc := EncodeInt64(v)
		decoded, n, err := DecodeInt64(enc)
		require.NoError(t, err)
		require.Equal(t, v, decoded)
		require.Equal(t, len(enc), n)
	}
}

func TestDecodeUint32(t *testing.T) {
	enc := EncodeUint32(0xdeadbeef)
	v, n, err := DecodeUint32(enc)
	require.NoError(t, err)
	require.Equal(t, uint32(0xdeadbeef), v)
	require.Equal(t, len(enc), n)
}

func TestDecodeUint32_truncated(t *testing.T) {
	_, _, err := DecodeUint32([]byte{0x80, 0x80})
	require.Error(t, err)
}

func TestDecodeUint32_overflow(t *testing.T) {
	// five continuation bytes: shift reaches 35 before the sixth byte.
	_, _, err := DecodeUint32([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01})
	require.Error(t, err)
}

func TestDecodeInt64_Negative(t *testing.T) {
	enc := EncodeInt64(-9876543210)
	v, _, err := DecodeInt64(enc)
	require.NoError(t, err)
	require.Equal(t, int64(-9876543210), v)
}
