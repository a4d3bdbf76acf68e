package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.kdl"))
	require.NoError(t, err)
	require.Equal(t, "trypsin", cfg.Digest.DefaultProteaseID)
	require.Equal(t, 500, cfg.Ingest.ProteinBatchSize)
}

func TestLoadOverridesDefaults(t *testing.T) {
	doc := `
store {
    dsn "postgres://db:5432/proteomics_test"
    max_conns 16
}
ingest {
    protein_batch_size 250
    parallel_file_workers 8
}
digest {
    default_min_acids 4
}
`
	path := filepath.Join(t.TempDir(), ".proteomics.kdl")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "postgres://db:5432/proteomics_test", cfg.Store.DSN)
	require.EqualValues(t, 16, cfg.Store.MaxConns)
	require.Equal(t, 250, cfg.Ingest.ProteinBatchSize)
	require.Equal(t, 8, cfg.Ingest.ParallelFileWorkers)
	require.Equal(t, 4, cfg.Digest.DefaultMinAcids)
	// untouched fields keep their defaults
	require.Equal(t, "trypsin", cfg.Digest.DefaultProteaseID)
}
