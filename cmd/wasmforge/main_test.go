package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildMainModule mirrors the root package's buildMainModule fixture: a
// module exporting a zero-argument "main" that returns i32 7.
func buildMainModule() []byte {
	magic := []byte{0x00, 0x61, 0x73, 0x6d}
	version := []byte{0x01, 0x00, 0x00, 0x00}
	b := append([]byte{}, magic...)
	b = append(b, version...)
	b = append(b, 0x01, 0x05, 0x01, 0x60, 0x00, 0x01, 0x7f)             // type section
	b = append(b, 0x03, 0x02, 0x01, 0x00)                               // function section
	b = append(b, 0x07, 0x08, 0x01, 0x04, 'm', 'a', 'i', 'n', 0x00, 0x00) // export section
	b = append(b, 0x0a, 0x06, 0x01, 0x04, 0x00, 0x41, 0x07, 0x0b)        // code section
	return b
}

func runMain(t *testing.T, args []string) (exitCode int, stdout, stderr string) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	exitCode = doMain(&outBuf, &errBuf, args)
	return exitCode, outBuf.String(), errBuf.String()
}

func TestRun_ExitCodePropagates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.wasm")
	require.NoError(t, os.WriteFile(path, buildMainModule(), 0o644))

	code, _, stderr := runMain(t, []string{"run", path})
	require.Equal(t, 7, code)
	require.Empty(t, stderr)
}

func TestVersion(t *testing.T) {
	code, stdout, _ := runMain(t, []string{"version"})
	require.Equal(t, 0, code)
	require.Contains(t, stdout, version)
}

func TestRun_MissingFileReportsError(t *testing.T) {
	code, _, stderr := runMain(t, []string{"run", "/no/such/module.wasm"})
	require.Equal(t, 1, code)
	require.NotEmpty(t, stderr)
}
