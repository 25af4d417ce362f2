package wasm

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wasmforge/wasmforge/internal/wasmdebug"
)

func TestLinearMemory_GrowWithinMax(t *testing.T) {
	m := NewLinearMemory(1, 3, true)
	require.EqualValues(t, 1, m.Size())

	old := m.Grow(2)
	require.EqualValues(t, 1, old)
	require.EqualValues(t, 3, m.Size())
}

func TestLinearMemory_GrowBeyondMaxFails(t *testing.T) {
	m := NewLinearMemory(1, 2, true)
	old := m.Grow(5)
	require.EqualValues(t, -1, old)
	// Unchanged on failure.
	require.EqualValues(t, 1, m.Size())
}

func TestLinearMemory_GrowUnbounded(t *testing.T) {
	m := NewLinearMemory(0, 0, false)
	old := m.Grow(4)
	require.EqualValues(t, 0, old)
	require.EqualValues(t, 4, m.Size())
}

func TestLinearMemory_ReadWriteRoundTrip(t *testing.T) {
	m := NewLinearMemory(1, 1, true)

	require.NoError(t, m.WriteUint32(100, 0xdeadbeef))
	v, err := m.ReadUint32(100)
	require.NoError(t, err)
	require.EqualValues(t, 0xdeadbeef, v)

	require.NoError(t, m.WriteFloat64(200, 3.5))
	f, err := m.ReadFloat64(200)
	require.NoError(t, err)
	require.Equal(t, 3.5, f)

	require.NoError(t, m.WriteBytes(300, []byte("hello")))
	b, err := m.ReadBytes(300, 5)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), b)
}

func TestLinearMemory_OutOfBoundsTraps(t *testing.T) {
	m := NewLinearMemory(1, 1, true)

	_, err := m.ReadUint32(PageSize - 2)
	require.Error(t, err)
	trap, ok := wasmdebug.AsTrap(err)
	require.True(t, ok)
	require.Equal(t, wasmdebug.TrapCodeMemoryOutOfBounds, trap.Code)

	err = m.WriteUint8(PageSize, 1)
	require.Error(t, err)
}
