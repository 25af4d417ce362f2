package wasm

import (
	"encoding/binary"
	"math"

	"github.com/wasmforge/wasmforge/internal/wasmdebug"
)

// PageSize is the fixed linear-memory page granularity (spec.md §4.2).
const PageSize = 65536

// LinearMemory is a growable byte array backing one memory instance,
// grounded on original_source/src/runtime/core/memory.rs's LinearMemory.
// All accessors are bounds-checked; no accessor ever panics on
// out-of-range input, it returns a trap-worthy error instead.
type LinearMemory struct {
	data   []byte
	maxPages uint32
	hasMax   bool
}

// NewLinearMemory allocates a memory of minPages pages, optionally capped
// at maxPages.
func NewLinearMemory(minPages uint32, maxPages uint32, hasMax bool) *LinearMemory {
	return &LinearMemory{
		data:     make([]byte, uint64(minPages)*PageSize),
		maxPages: maxPages,
		hasMax:   hasMax,
	}
}

// Size returns the current size in pages.
func (m *LinearMemory) Size() uint32 { return uint32(len(m.data) / PageSize) }

// SizeBytes returns the current size in bytes.
func (m *LinearMemory) SizeBytes() uint32 { return uint32(len(m.data)) }

// Grow appends delta pages, returning the memory's previous size in
// pages, or -1 without mutating state if growth would exceed the
// declared maximum (spec.md I2: "grow either succeeds entirely or
// leaves memory unchanged").
func (m *LinearMemory) Grow(delta uint32) int32 {
	old := m.Size()
	newSize := uint64(old) + uint64(delta)
	if m.hasMax && newSize > uint64(m.maxPages) {
		return -1
	}
	// Absolute ceiling independent of a declared max, matching
	// memory.rs's guard against unbounded host allocation.
	const absoluteMaxPages = 65536
	if newSize > absoluteMaxPages {
		return -1
	}
	m.data = append(m.data, make([]byte, uint64(delta)*PageSize)...)
	return int32(old)
}

func (m *LinearMemory) bounds(offset uint32, width uint32) error {
	end := uint64(offset) + uint64(width)
	if end > uint64(len(m.data)) {
		return wasmdebug.NewTrap(wasmdebug.TrapCodeMemoryOutOfBounds, "")
	}
	return nil
}

// ReadBytes copies n bytes starting at offset.
func (m *LinearMemory) ReadBytes(offset uint32, n uint32) ([]byte, error) {
	if err := m.bounds(offset, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, m.data[offset:offset+n])
	return out, nil
}

// WriteBytes copies b into memory starting at offset.
func (m *LinearMemory) WriteBytes(offset uint32, b []byte) error {
	if err := m.bounds(offset, uint32(len(b))); err != nil {
		return err
	}
	copy(m.data[offset:], b)
	return nil
}

func (m *LinearMemory) ReadUint8(offset uint32) (uint8, error) {
	if err := m.bounds(offset, 1); err != nil {
		return 0, err
	}
	return m.data[offset], nil
}

func (m *LinearMemory) WriteUint8(offset uint32, v uint8) error {
	if err := m.bounds(offset, 1); err != nil {
		return err
	}
	m.data[offset] = v
	return nil
}

func (m *LinearMemory) ReadUint16(offset uint32) (uint16, error) {
	if err := m.bounds(offset, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(m.data[offset:]), nil
}

func (m *LinearMemory) WriteUint16(offset uint32, v uint16) error {
	if err := m.bounds(offset, 2); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(m.data[offset:], v)
	return nil
}

func (m *LinearMemory) ReadUint32(offset uint32) (uint32, error) {
	if err := m.bounds(offset, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(m.data[offset:]), nil
}

func (m *LinearMemory) WriteUint32(offset uint32, v uint32) error {
	if err := m.bounds(offset, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(m.data[offset:], v)
	return nil
}

func (m *LinearMemory) ReadUint64(offset uint32) (uint64, error) {
	if err := m.bounds(offset, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(m.data[offset:]), nil
}

func (m *LinearMemory) WriteUint64(offset uint32, v uint64) error {
	if err := m.bounds(offset, 8); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(m.data[offset:], v)
	return nil
}

func (m *LinearMemory) ReadFloat32(offset uint32) (float32, error) {
	bits, err := m.ReadUint32(offset)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

func (m *LinearMemory) WriteFloat32(offset uint32, v float32) error {
	return m.WriteUint32(offset, math.Float32bits(v))
}

func (m *LinearMemory) ReadFloat64(offset uint32) (float64, error) {
	bits, err := m.ReadUint64(offset)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

func (m *LinearMemory) WriteFloat64(offset uint32, v float64) error {
	return m.WriteUint64(offset, math.Float64bits(v))
}
