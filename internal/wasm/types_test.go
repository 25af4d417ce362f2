package wasm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func exportedModule(exports []Export) *Module {
	return &Module{StartFunc: -1, DataCount: -1, Exports: exports}
}

func TestFindEntryPoint_PrefersStart(t *testing.T) {
	m := exportedModule([]Export{
		{Name: "main", Kind: ExportKindFunc, Index: 2},
		{Name: "_start", Kind: ExportKindFunc, Index: 3},
	})
	m.StartFunc = 7

	idx, name, ok := m.FindEntryPoint()
	require.True(t, ok)
	require.EqualValues(t, 7, idx)
	require.Equal(t, "", name)
}

func TestFindEntryPoint_MainBeatsUnderscoreStart(t *testing.T) {
	m := exportedModule([]Export{
		{Name: "_start", Kind: ExportKindFunc, Index: 3},
		{Name: "main", Kind: ExportKindFunc, Index: 2},
	})

	idx, name, ok := m.FindEntryPoint()
	require.True(t, ok)
	require.EqualValues(t, 2, idx)
	require.Equal(t, "main", name)
}

func TestFindEntryPoint_FallsBackToUnderscoreStart(t *testing.T) {
	m := exportedModule([]Export{
		{Name: "_start", Kind: ExportKindFunc, Index: 3},
	})

	idx, name, ok := m.FindEntryPoint()
	require.True(t, ok)
	require.EqualValues(t, 3, idx)
	require.Equal(t, "_start", name)
}

func TestFindEntryPoint_NoneFound(t *testing.T) {
	m := exportedModule(nil)
	_, _, ok := m.FindEntryPoint()
	require.False(t, ok)
}

func TestFuncTypeIndex_SpansImportedAndLocal(t *testing.T) {
	m := &Module{
		StartFunc: -1,
		DataCount: -1,
		Imports: []Import{
			{Kind: ImportKindFunc, TypeIndex: 5},
			{Kind: ImportKindTable},
			{Kind: ImportKindFunc, TypeIndex: 6},
		},
		Funcs: []Function{
			{TypeIndex: 9},
		},
	}

	require.Equal(t, 2, m.NumImportedFuncs())

	ti, ok := m.FuncTypeIndex(0)
	require.True(t, ok)
	require.EqualValues(t, 5, ti)

	ti, ok = m.FuncTypeIndex(1)
	require.True(t, ok)
	require.EqualValues(t, 6, ti)

	ti, ok = m.FuncTypeIndex(2)
	require.True(t, ok)
	require.EqualValues(t, 9, ti)

	_, ok = m.FuncTypeIndex(3)
	require.False(t, ok)

	imported, local := m.IsImportedFunc(1)
	require.True(t, imported)
	require.EqualValues(t, 1, local)

	imported, local = m.IsImportedFunc(2)
	require.False(t, imported)
	require.EqualValues(t, 0, local)
}
