package binary

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeModule_Minimal(t *testing.T) {
	input := append(append([]byte{}, Magic...), Version...)

	m, err := DecodeModule(input)
	require.NoError(t, err)
	require.Empty(t, m.Types)
	require.Empty(t, m.Imports)
	require.Empty(t, m.Funcs)
	require.Empty(t, m.Exports)

	_, _, ok := m.FindEntryPoint()
	require.False(t, ok)
}

func TestDecodeModule_InvalidMagic(t *testing.T) {
	input := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x01, 0x00, 0x00, 0x00}

	_, err := DecodeModule(input)
	require.Error(t, err)
}

func TestDecodeModule_UnsupportedVersion(t *testing.T) {
	input := append(append([]byte{}, Magic...), 0x02, 0x00, 0x00, 0x00)

	_, err := DecodeModule(input)
	require.Error(t, err)
}

func TestDecodeModule_SkipsCustomSection(t *testing.T) {
	input := append(append([]byte{}, Magic...), Version...)
	input = append(input,
		byte(SectionIDCustom), 0x07,
		0x04, 'n', 'a', 'm', 'e', 0x00, 0x00)

	m, err := DecodeModule(input)
	require.NoError(t, err)
	require.Empty(t, m.Types)
}

func TestDecodeModule_TypeImportExportRoundTrip(t *testing.T) {
	input := append(append([]byte{}, Magic...), Version...)

	// Type section: one type (i32,i32)->i32.
	input = append(input,
		byte(SectionIDType), 0x07,
		0x01,             // 1 type
		functionTypeTag,  // func
		0x02, 0x7f, 0x7f, // 2 params: i32 i32
		0x01, 0x7f, // 1 result: i32
	)

	// Import section: "env"."add" as a func of type 0.
	input = append(input,
		byte(SectionIDImport), 0x0b,
		0x01, // 1 import
		0x03, 'e', 'n', 'v',
		0x03, 'a', 'd', 'd',
		importDescFunc, 0x00,
	)

	// Export section: export "add" (func index 0, which is the imported one).
	input = append(input,
		byte(SectionIDExport), 0x07,
		0x01,
		0x03, 'a', 'd', 'd',
		importDescFunc, 0x00,
	)

	m, err := DecodeModule(input)
	require.NoError(t, err)
	require.Len(t, m.Types, 1)
	require.Len(t, m.Imports, 1)
	require.Equal(t, "env", m.Imports[0].Module)
	require.Equal(t, "add", m.Imports[0].Name)
	require.Len(t, m.Exports, 1)
	require.Equal(t, "add", m.Exports[0].Name)

	idx, ok := m.ExportedFunc("add")
	require.True(t, ok)
	require.EqualValues(t, 0, idx)
}

func TestDecodeModule_SectionsOutOfOrderFails(t *testing.T) {
	input := append(append([]byte{}, Magic...), Version...)
	// Export section before Type section: invalid ascending order.
	input = append(input, byte(SectionIDExport), 0x01, 0x00)
	input = append(input, byte(SectionIDType), 0x01, 0x00)

	_, err := DecodeModule(input)
	require.Error(t, err)
}

func TestDecodeModule_FunctionCodeMismatchFails(t *testing.T) {
	input := append(append([]byte{}, Magic...), Version...)
	input = append(input,
		byte(SectionIDType), 0x04,
		0x01, functionTypeTag, 0x00, 0x00, // 1 empty type
	)
	input = append(input,
		byte(SectionIDFunction), 0x02,
		0x01, 0x00, // 1 function referencing type 0
	)
	// No Code section at all: count mismatch (1 vs 0).

	_, err := DecodeModule(input)
	require.Error(t, err)
}
