package clear

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	sperrors "github.com/saitomics/proteomics/internal/errors"
	"github.com/saitomics/proteomics/internal/store"
	"github.com/saitomics/proteomics/internal/store/storetest"
)

// seedTaxon builds one taxon with a digest, a protein occurrence and an
// aggregated peptide count, matching the pre-clear fixture of spec.md §8
// scenario 4.
func seedTaxon(t *testing.T) (store.Gateway, store.Protein, store.Peptide) {
	t.Helper()
	gw := storetest.New()
	ctx := context.Background()

	require.NoError(t, gw.FindOrCreateProtease(ctx, "trypsin", "rule"))
	digest, err := gw.FindOrCreateDigest(ctx, "trypsin", 0, 1, 0)
	require.NoError(t, err)

	require.NoError(t, gw.FindOrCreateTaxon(ctx, "myorg"))
	td, err := gw.FindOrCreateTaxonDigest(ctx, "myorg", digest.ID)
	require.NoError(t, err)

	proteins, err := gw.BulkInsertProteins(ctx, []string{"AKBK"})
	require.NoError(t, err)
	protein := proteins[0]
	require.NoError(t, gw.BulkInsertTaxonProteins(ctx, "myorg", []store.ProteinOccurrence{
		{Sequence: protein.Sequence, Metadata: "p1"},
	}))
	require.NoError(t, gw.BulkInsertProteinDigests(ctx, []int64{protein.ID}, digest.ID))

	peptides, err := gw.BulkInsertPeptides(ctx, []string{"AK", "BK"})
	require.NoError(t, err)
	require.NoError(t, gw.BulkInsertProteinDigestPeptides(ctx, digest.ID, []store.ProteinDigestPeptideCount{
		{ProteinSequence: protein.Sequence, PeptideSequence: "AK", Count: 1},
		{ProteinSequence: protein.Sequence, PeptideSequence: "BK", Count: 1},
	}))
	require.NoError(t, gw.BulkInsertTaxonDigestPeptides(ctx, td.ID, []store.TaxonDigestPeptideCount{
		{PeptideSequence: "AK", Count: 1},
		{PeptideSequence: "BK", Count: 1},
	}))

	return gw, protein, peptides[0]
}

func TestTaxonClearsTaxonScopedRows(t *testing.T) {
	gw, _, _ := seedTaxon(t)
	ctx := context.Background()

	require.NoError(t, Taxon(ctx, gw, "myorg"))

	exists, err := gw.TaxonExists(ctx, "myorg")
	require.NoError(t, err)
	require.False(t, exists)

	digests, err := gw.ListTaxonDigests(ctx, "myorg")
	require.NoError(t, err)
	require.Empty(t, digests)
}

func TestTaxonLeavesProteinAndPeptideCatalogsIntact(t *testing.T) {
	gw, protein, peptide := seedTaxon(t)
	ctx := context.Background()

	require.NoError(t, Taxon(ctx, gw, "myorg"))

	existing, err := gw.FindExistingProteins(ctx, []string{protein.Sequence})
	require.NoError(t, err)
	require.Len(t, existing, 1)

	existingPeptides, err := gw.FindExistingPeptides(ctx, []string{peptide.Sequence})
	require.NoError(t, err)
	require.Len(t, existingPeptides, 1)
}

func TestTaxonUnknownReturnsUnknownTaxonError(t *testing.T) {
	gw := storetest.New()
	err := Taxon(context.Background(), gw, "nope")

	var unknown *sperrors.UnknownTaxonError
	require.True(t, errors.As(err, &unknown))
	require.Equal(t, "nope", unknown.TaxonID)
}
