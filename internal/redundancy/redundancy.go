// Package redundancy computes pairwise peptide-set redundancy tables
// across taxa for a fixed digest, grounded on
// lib/proteomics/services/redundancy.py's count_common_peptides/
// count_peptide_union/generate_redundancy_tables: sort the taxon_digests
// by taxon id, build upper-triangular tables, and look each pair up
// symmetrically (here by keying every pair on its sorted (min, max) form).
//
// One deliberate departure from the original: count_peptide_union there
// counts raw TaxonDigestPeptide membership rows, which is not the same
// quantity as the true set-union cardinality spec.md's formula
// (100 * |intersection| / |union|) requires. This package computes the
// true union arithmetically as |a| + |b| - |intersection|, which is
// always correct given individual and intersection counts and does not
// depend on replicating the original's apparently divergent query.
package redundancy

import (
	"context"
	"sort"

	"github.com/saitomics/proteomics/internal/store"
)

// Tables holds the four redundancy tables spec.md requires, each keyed by
// the sorted pair of taxon ids (min, max) for symmetric lookup, except
// IndividualCounts, which is keyed by a single taxon id, and
// IndividualPercents, which is keyed by the ordered pair (base, other).
type Tables struct {
	TaxonDigests        []store.TaxonDigest
	IndividualCounts    map[string]int     // taxon id -> peptide count
	IntersectionCounts  map[[2]string]int  // sorted (taxon a, taxon b) -> |a ∩ b|
	UnionPercents       map[[2]string]float64
	IndividualPercents  map[[2]string]float64 // 100 * |a ∩ b| / |a|, not symmetric: keyed (base, other)
}

// Generate computes all four tables for the given set of taxon_digests
// (already resolved to their TaxonDigest rows), sorted by taxon id as the
// original does before building its tables.
func Generate(ctx context.Context, gw store.Gateway, taxonDigests []store.TaxonDigest) (*Tables, error) {
	sorted := append([]store.TaxonDigest(nil), taxonDigests...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].TaxonID < sorted[j].TaxonID })

	t := &Tables{
		TaxonDigests:       sorted,
		IndividualCounts:   make(map[string]int, len(sorted)),
		IntersectionCounts: make(map[[2]string]int),
		UnionPercents:      make(map[[2]string]float64),
		IndividualPercents: make(map[[2]string]float64),
	}

	idByTaxon := make(map[string]int64, len(sorted))
	for _, td := range sorted {
		n, err := gw.IndividualPeptideCount(ctx, td.ID)
		if err != nil {
			return nil, err
		}
		t.IndividualCounts[td.TaxonID] = n
		idByTaxon[td.TaxonID] = td.ID
	}

	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			a, b := sorted[i], sorted[j]
			n, err := gw.IntersectionPeptideCount(ctx, idByTaxon[a.TaxonID], idByTaxon[b.TaxonID])
			if err != nil {
				return nil, err
			}
			key := pairKey(a.TaxonID, b.TaxonID)
			t.IntersectionCounts[key] = n

			union := t.IndividualCounts[a.TaxonID] + t.IndividualCounts[b.TaxonID] - n
			if union > 0 {
				t.UnionPercents[key] = 100 * float64(n) / float64(union)
			}

			if t.IndividualCounts[a.TaxonID] > 0 {
				t.IndividualPercents[[2]string{a.TaxonID, b.TaxonID}] = 100 * float64(n) / float64(t.IndividualCounts[a.TaxonID])
			}
			if t.IndividualCounts[b.TaxonID] > 0 {
				t.IndividualPercents[[2]string{b.TaxonID, a.TaxonID}] = 100 * float64(n) / float64(t.IndividualCounts[b.TaxonID])
			}
		}
	}

	return t, nil
}

func pairKey(a, b string) [2]string {
	if a < b {
		return [2]string{a, b}
	}
	return [2]string{b, a}
}

// Intersection looks up the intersection count for an unordered pair by
// its sorted key, so (a,b) and (b,a) give the same result.
func (t *Tables) Intersection(a, b string) (int, bool) {
	n, ok := t.IntersectionCounts[pairKey(a, b)]
	return n, ok
}

// UnionPercent looks up the union percent for an unordered pair.
func (t *Tables) UnionPercent(a, b string) (float64, bool) {
	p, ok := t.UnionPercents[pairKey(a, b)]
	return p, ok
}

// IndividualPercent looks up what percent of `base`'s peptides are shared
// with `other` — this direction is NOT symmetric (100*|a∩b|/|a| generally
// differs from 100*|a∩b|/|b|), unlike the other three tables.
func (t *Tables) IndividualPercent(base, other string) (float64, bool) {
	p, ok := t.IndividualPercents[[2]string{base, other}]
	return p, ok
}
