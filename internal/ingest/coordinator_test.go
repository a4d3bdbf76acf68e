package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/saitomics/proteomics/internal/cleaver"
	"github.com/saitomics/proteomics/internal/registry"
	"github.com/saitomics/proteomics/internal/store"
	"github.com/saitomics/proteomics/internal/store/storetest"
)

const testRule = `([KR](?=[^P]))|((?<=W)K(?=P))|((?<=M)R(?=P))`

func writeFasta(t *testing.T, dir, name string, records [][2]string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	var body string
	for _, rec := range records {
		body += ">" + rec[0] + "\n" + rec[1] + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func testDigest(t *testing.T, gw store.Gateway) registry.Resolved {
	t.Helper()
	rule, err := cleaver.ParseRule(testRule)
	require.NoError(t, err)
	require.NoError(t, gw.FindOrCreateProtease(context.Background(), "trypsin", testRule))
	d, err := gw.FindOrCreateDigest(context.Background(), "trypsin", 0, 1, 0)
	require.NoError(t, err)
	return registry.Resolved{Digest: d, Rule: rule}
}

func TestCoordinatorFileIngestsAndAggregates(t *testing.T) {
	dir := t.TempDir()
	path := writeFasta(t, dir, "myorg.fasta", [][2]string{
		{"p1", "AKAKBK"},
		{"p2", "CKDK"},
		{"p3", "AKAKBK"}, // duplicate sequence of p1
	})

	gw := storetest.New()
	digest := testDigest(t, gw)
	coord := New(gw, Config{ProteinBatchSize: 2, PeptideProbeChunkSize: 10, PeptideBulkChunkSize: 10}, digest)

	skipped, stats, err := coord.File(context.Background(), path)
	require.NoError(t, err)
	require.False(t, skipped)

	require.Equal(t, 1, stats.Taxa)
	require.Equal(t, 2, stats.Proteins) // AKAKBK and CKDK, deduplicated
	require.Equal(t, 3, stats.TaxonProteins)
	require.Equal(t, 2, stats.ProteinDigests)
	require.Greater(t, stats.TaxonDigestPeptides, 0)

	taxonDigestID := int64(1)
	n, err := gw.IndividualPeptideCount(context.Background(), taxonDigestID)
	require.NoError(t, err)
	require.Equal(t, stats.TaxonDigestPeptides, n)
}

func TestCoordinatorFileIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := writeFasta(t, dir, "myorg.fasta", [][2]string{{"p1", "AKAKBK"}})

	gw := storetest.New()
	digest := testDigest(t, gw)
	coord := New(gw, Config{ProteinBatchSize: 10, PeptideProbeChunkSize: 10, PeptideBulkChunkSize: 10}, digest)

	_, _, err := coord.File(context.Background(), path)
	require.NoError(t, err)

	skipped, _, err := coord.File(context.Background(), path)
	require.NoError(t, err)
	require.True(t, skipped)
}

func TestCoordinatorPeptideLengthFilter(t *testing.T) {
	dir := t.TempDir()
	path := writeFasta(t, dir, "myorg.fasta", [][2]string{{"p1", "AK"}}) // shorter than this test's min_acids=3

	gw := storetest.New()
	rule, err := cleaver.ParseRule(testRule)
	require.NoError(t, err)
	require.NoError(t, gw.FindOrCreateProtease(context.Background(), "trypsin", testRule))
	d, err := gw.FindOrCreateDigest(context.Background(), "trypsin", 0, 3, 0)
	require.NoError(t, err)
	digest := registry.Resolved{Digest: d, Rule: rule}

	coord := New(gw, Config{ProteinBatchSize: 10, PeptideProbeChunkSize: 10, PeptideBulkChunkSize: 10}, digest)
	_, stats, err := coord.File(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 0, stats.TaxonDigestPeptides) // "AK" is below min_acids=3, filtered out
}
