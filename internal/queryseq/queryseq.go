// Package queryseq answers approximate peptide-sequence lookups by bounded
// edit distance, grounded on lib/proteomics/scripts/query_by_sequence.py
// (CSV columns query,taxon,lev_distance,match) and on the teacher's
// internal/semantic/fuzzy_matcher.go, which already wires
// github.com/hbollon/go-edlib for string-similarity scoring. Unlike the
// teacher's normalized similarity score, this package needs the raw
// bounded integer edit distance, so it calls edlib's distance function
// directly rather than the normalized StringsSimilarity the teacher uses.
package queryseq

import (
	"context"

	"github.com/hbollon/go-edlib"

	"github.com/saitomics/proteomics/internal/store"
)

// Match is one peptide within maxDistance of a query sequence.
type Match struct {
	Query    string
	TaxonID  string
	Sequence string
	Distance int
}

// Query scans every (taxon, peptide) pair the store holds and reports
// every one within maxDistance of query, via the Gateway's
// IterateTaxonPeptides cursor so the candidate set is never fully
// materialized in memory.
func Query(ctx context.Context, gw store.Gateway, query string, maxDistance int) ([]Match, error) {
	var matches []Match
	err := gw.IterateTaxonPeptides(ctx, func(taxonID, seq string) error {
		dist := edlib.LevenshteinDistance(query, seq)
		if dist <= maxDistance {
			matches = append(matches, Match{Query: query, TaxonID: taxonID, Sequence: seq, Distance: dist})
		}
		return nil
	})
	return matches, err
}
