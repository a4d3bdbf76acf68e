package fasta

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "proteins.fasta")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestReaderYieldsRecordsInOrder(t *testing.T) {
	path := writeFixture(t, ">p1 desc one\nMKVLA\n>p2 desc two\nAKAKBK\n")

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	first, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, "p1 desc one", first.Header)
	require.Equal(t, "MKVLA", first.Sequence)

	second, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, "p2 desc two", second.Header)
	require.Equal(t, "AKAKBK", second.Sequence)

	_, err = r.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestReaderJoinsWrappedSequenceLines(t *testing.T) {
	path := writeFixture(t, ">p1\nMKVL\nAKAK\n")

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	rec, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, "MKVLAKAK", rec.Sequence)
}

func TestCountMatchesRecordTotal(t *testing.T) {
	path := writeFixture(t, ">p1\nMKVLA\n>p2\nAKAKBK\n>p3\nCKDK\n")

	n, err := Count(path)
	require.NoError(t, err)
	require.Equal(t, 3, n)
}
