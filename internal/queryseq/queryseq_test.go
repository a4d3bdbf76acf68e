package queryseq

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/saitomics/proteomics/internal/store"
	"github.com/saitomics/proteomics/internal/store/storetest"
)

// seedTaxa reproduces spec.md §8 scenario 6: peptide Q present in taxa A
// and B, queried with --max-distance 0, expecting two exact matches.
func seedTaxa(t *testing.T) store.Gateway {
	t.Helper()
	gw := storetest.New()
	ctx := context.Background()

	require.NoError(t, gw.FindOrCreateProtease(ctx, "trypsin", "rule"))
	digest, err := gw.FindOrCreateDigest(ctx, "trypsin", 0, 1, 0)
	require.NoError(t, err)
	_, err = gw.BulkInsertPeptides(ctx, []string{"QPEPTIDE"})
	require.NoError(t, err)

	for _, taxon := range []string{"A", "B"} {
		require.NoError(t, gw.FindOrCreateTaxon(ctx, taxon))
		td, err := gw.FindOrCreateTaxonDigest(ctx, taxon, digest.ID)
		require.NoError(t, err)
		require.NoError(t, gw.BulkInsertTaxonDigestPeptides(ctx, td.ID, []store.TaxonDigestPeptideCount{
			{PeptideSequence: "QPEPTIDE", Count: 1},
		}))
	}

	return gw
}

func TestQueryExactMatchAcrossTaxa(t *testing.T) {
	gw := seedTaxa(t)

	matches, err := Query(context.Background(), gw, "QPEPTIDE", 0)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	taxa := map[string]bool{}
	for _, m := range matches {
		require.Equal(t, 0, m.Distance)
		require.Equal(t, "QPEPTIDE", m.Sequence)
		taxa[m.TaxonID] = true
	}
	require.Equal(t, map[string]bool{"A": true, "B": true}, taxa)
}

func TestQueryRespectsMaxDistance(t *testing.T) {
	gw := seedTaxa(t)

	matches, err := Query(context.Background(), gw, "ZZZZZZZZ", 0)
	require.NoError(t, err)
	require.Empty(t, matches)

	matches, err = Query(context.Background(), gw, "ZPEPTIDE", 1)
	require.NoError(t, err)
	require.Len(t, matches, 2)
}
