package wasmforge

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmforge/wasmforge/api"
	"github.com/wasmforge/wasmforge/internal/wasm/binary"
)

// TestMarshalArgv_S6 exercises spec.md §4.5 step 4's documented
// best-effort argv marshalling: parse as i32, then i64, else I32(0).
func TestMarshalArgv_S6(t *testing.T) {
	vals := marshalArgv([]string{"5", "3"}, nil)
	require.Equal(t, []api.Value{api.I32(5), api.I32(3)}, vals)

	vals = marshalArgv([]string{"abc", "3"}, nil)
	require.Equal(t, []api.Value{api.I32(0), api.I32(3)}, vals)
}

// buildMainModule returns the bytes of a module exporting a
// zero-argument "main" function that returns the i32 constant 42.
func buildMainModule(t *testing.T) []byte {
	t.Helper()
	b := append([]byte{}, binary.Magic...)
	b = append(b, binary.Version...)

	// Type section: type 0 = () -> i32.
	b = append(b, byte(binary.SectionIDType), 0x05, 0x01, 0x60, 0x00, 0x01, 0x7f)

	// Function section: 1 function of type 0.
	b = append(b, byte(binary.SectionIDFunction), 0x02, 0x01, 0x00)

	// Export section: export "main" as func index 0.
	b = append(b, byte(binary.SectionIDExport), 0x08,
		0x01, 0x04, 'm', 'a', 'i', 'n', 0x00, 0x00)

	// Code section: one function, 0 locals, `i32.const 42; end`.
	b = append(b, byte(binary.SectionIDCode), 0x06,
		0x01, 0x04, 0x00, 0x41, 0x2a, 0x0b)

	return b
}

func TestExecuteBytes_EntryPointReturnsExitCode(t *testing.T) {
	code, err := ExecuteBytes(buildMainModule(t), nil)
	require.NoError(t, err)
	require.Equal(t, 42, code)
}

func TestExecuteBytes_NamedEntryPointOverride(t *testing.T) {
	cfg := NewConfig().WithEntryPoint("main")
	code, err := ExecuteBytes(buildMainModule(t), cfg)
	require.NoError(t, err)
	require.Equal(t, 42, code)
}

func TestExecuteBytes_UnknownFunctionNameFails(t *testing.T) {
	cfg := NewConfig().WithEntryPoint("nope")
	_, err := ExecuteBytes(buildMainModule(t), cfg)
	require.ErrorIs(t, err, ErrFunctionNotFound)
}

func TestExecuteBytes_DecodeFailureIsReported(t *testing.T) {
	_, err := ExecuteBytes([]byte{0x00, 0x01, 0x02}, nil)
	require.Error(t, err)
}

func TestExecute_MissingFileIsReported(t *testing.T) {
	_, err := Execute("/no/such/module.wasm", nil)
	require.ErrorIs(t, err, ErrFileNotFound)
}
