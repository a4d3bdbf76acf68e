package checksum

import (
	"bytes"
	"crypto/sha256"
	"strings"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/require"
)

func TestStreamMatchesDirectHashes(t *testing.T) {
	content := strings.Repeat(">seq1\nMKV\n", 1000) // exercise the chunked read path
	res, err := Stream(bytes.NewReader([]byte(content)))
	require.NoError(t, err)

	wantSHA := sha256.Sum256([]byte(content))
	require.Equal(t, wantSHA, res.ContentHash)
	require.Equal(t, xxhash.Sum64([]byte(content)), res.FastHash)
	require.Len(t, res.Hex(), 64)
}

func TestStreamEmptyReader(t *testing.T) {
	res, err := Stream(bytes.NewReader(nil))
	require.NoError(t, err)
	require.Equal(t, sha256.Sum256(nil), res.ContentHash)
}
