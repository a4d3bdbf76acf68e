package fileselect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveGlobIsSortedAndDeduped(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"c.fasta", "a.fasta", "b.fasta"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(">x\nAK\n"), 0o644))
	}

	got, err := Resolve([]string{filepath.Join(dir, "*.fasta"), filepath.Join(dir, "a.fasta")})
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "a.fasta"),
		filepath.Join(dir, "b.fasta"),
		filepath.Join(dir, "c.fasta"),
	}, got)
}

func TestResolveNoMatchIsError(t *testing.T) {
	_, err := Resolve([]string{filepath.Join(t.TempDir(), "*.fasta")})
	require.Error(t, err)
}
