package redundancy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/saitomics/proteomics/internal/store"
	"github.com/saitomics/proteomics/internal/store/storetest"
)

// seedFixture reproduces spec.md §8 scenario 5: peptide p assigned to
// taxon-digest td iff p.id % td.id == 0, for td in {1,2,3} and p in {1..12}.
func seedFixture(t *testing.T) (*storetest.Fake, []store.TaxonDigest) {
	t.Helper()
	gw := storetest.New()
	ctx := context.Background()

	require.NoError(t, gw.FindOrCreateProtease(ctx, "trypsin", "rule"))
	digest, err := gw.FindOrCreateDigest(ctx, "trypsin", 0, 1, 0)
	require.NoError(t, err)

	var taxonDigests []store.TaxonDigest
	for _, name := range []string{"t1", "t2", "t3"} {
		require.NoError(t, gw.FindOrCreateTaxon(ctx, name))
		td, err := gw.FindOrCreateTaxonDigest(ctx, name, digest.ID)
		require.NoError(t, err)
		taxonDigests = append(taxonDigests, td)
	}

	peptideIDOf := make(map[int]int64)
	for pid := 1; pid <= 12; pid++ {
		seq := peptideSeq(pid)
		created, err := gw.BulkInsertPeptides(ctx, []string{seq})
		require.NoError(t, err)
		require.Len(t, created, 1)
		peptideIDOf[pid] = created[0].ID
	}

	for _, td := range taxonDigests {
		for pid := 1; pid <= 12; pid++ {
			if pid%int(td.ID) == 0 {
				require.NoError(t, gw.BulkInsertTaxonDigestPeptides(ctx, td.ID, []store.TaxonDigestPeptideCount{
					{PeptideSequence: peptideSeq(pid), Count: 1},
				}))
			}
		}
	}

	return gw, taxonDigests
}

func peptideSeq(id int) string {
	// Distinct filler sequences, one per fixture peptide id.
	letters := "ACDEFGHIKLMNPQRSTVWY"
	return string(letters[id%len(letters)]) + string(rune('A'+id))
}

func TestGenerateRedundancyFixture(t *testing.T) {
	gw, taxonDigests := seedFixture(t)

	tables, err := Generate(context.Background(), gw, taxonDigests)
	require.NoError(t, err)

	n12, ok := tables.Intersection("t1", "t2")
	require.True(t, ok)
	require.Equal(t, 6, n12)

	n13, ok := tables.Intersection("t1", "t3")
	require.True(t, ok)
	require.Equal(t, 4, n13)

	n23, ok := tables.Intersection("t2", "t3")
	require.True(t, ok)
	require.Equal(t, 2, n23)
}

func TestGenerateIsSymmetricLookup(t *testing.T) {
	gw, taxonDigests := seedFixture(t)
	tables, err := Generate(context.Background(), gw, taxonDigests)
	require.NoError(t, err)

	a, _ := tables.Intersection("t1", "t2")
	b, _ := tables.Intersection("t2", "t1")
	require.Equal(t, a, b)
}

func TestIndividualPercentIsNotSymmetric(t *testing.T) {
	gw, taxonDigests := seedFixture(t)
	tables, err := Generate(context.Background(), gw, taxonDigests)
	require.NoError(t, err)

	forward, ok := tables.IndividualPercent("t1", "t2")
	require.True(t, ok)
	backward, ok := tables.IndividualPercent("t2", "t1")
	require.True(t, ok)
	require.NotEqual(t, forward, backward)
}
