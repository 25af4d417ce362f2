package interpreter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFindMatchingEnd_SkipsMemArgImmediate regresses a bug where
// immediateWidth didn't know load/store opcodes carry a two-LEB128
// (align, offset) immediate: it under-skipped them, and a stray 0x0B
// byte inside that immediate was misread as the construct's END. The
// store's align byte here is deliberately 0x0B (opEnd's value) to catch
// any scan that doesn't consume the memarg as a unit.
func TestFindMatchingEnd_SkipsMemArgImmediate(t *testing.T) {
	body := []byte{
		opI32Store, 0x0B, 0x00, // i32.store align=0x0B offset=0x00 (two single-byte LEBs)
		opEnd,
	}
	end, elsePos, err := findMatchingEnd(body, 0)
	require.NoError(t, err)
	require.Equal(t, 3, end)
	require.Zero(t, elsePos)
}

// TestFindMatchingEnd_SkipsMultiByteMemArgOffset exercises a store whose
// offset immediate spans two bytes (continuation bit set), confirming
// the fixed skip consumes both LEB128 reads rather than one byte.
func TestFindMatchingEnd_SkipsMultiByteMemArgOffset(t *testing.T) {
	body := []byte{
		opI64Load, 0x00, 0x80, 0x01, // i64.load align=0 offset=128 (2-byte LEB)
		opEnd,
	}
	end, _, err := findMatchingEnd(body, 0)
	require.NoError(t, err)
	require.Equal(t, 4, end)
}

// TestFindMatchingEnd_StoreInsideBlockBody exercises the realistic shape
// flagged in review: a block whose body contains a memory access before
// the matching END, the common case in compiled output (a copy loop, a
// stack-spilled local). findMatchingEnd is invoked just past the block's
// header (its block-type byte already consumed by the real run loop),
// so from points at the store opcode directly.
func TestFindMatchingEnd_StoreInsideBlockBody(t *testing.T) {
	body := []byte{blockTypeEmpty, opI32Store, 0x00, 0x00, opEnd}
	end, _, err := findMatchingEnd(body, 1)
	require.NoError(t, err)
	require.Equal(t, 4, end)
}
