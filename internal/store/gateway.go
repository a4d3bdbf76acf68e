// Package store defines the Gateway contract spec.md §4.3 describes: the
// single seam every other component uses to read and write the relational
// model, so that internal/ingest, internal/redundancy, internal/queryseq
// and internal/clear never talk to a SQL driver directly.
package store

import (
	"context"
	"time"
)

// Protein identifies a distinct amino acid sequence, deduplicated by its
// natural key (the sequence itself).
type Protein struct {
	ID       int64
	Sequence string
}

// Peptide identifies a distinct digestion product, deduplicated the same
// way as Protein.
type Peptide struct {
	ID       int64
	Sequence string
}

// Digest identifies one (protease, max_missed_cleavages, min_acids,
// max_acids) definition.
type Digest struct {
	ID                 int64
	ProteaseID         string
	CleavageRule       string
	MaxMissedCleavages int
	MinAcids           int
	MaxAcids           int
}

// TaxonDigest identifies the pairing of a taxon with a digest; aggregated
// peptide counts (TaxonDigestPeptide) hang off this id.
type TaxonDigest struct {
	ID       int64
	TaxonID  string
	DigestID int64
}

// ProteinOccurrence carries one occurrence of a protein in a taxon's file,
// keyed by the FASTA record's header metadata.
type ProteinOccurrence struct {
	Sequence string
	Metadata string
}

// ProteinDigestPeptideCount is one peptide produced by digesting one
// protein, with its per-protein multiplicity.
type ProteinDigestPeptideCount struct {
	ProteinSequence string
	PeptideSequence string
	Count           int
}

// TaxonDigestPeptideCount is one row of the final per-taxon aggregate: a
// peptide and how many times it occurs across every protein in the taxon
// for the given digest.
type TaxonDigestPeptideCount struct {
	PeptideSequence string
	Count           int
}

// Gateway is the storage contract. Every bulk operation is chunked by the
// caller (internal/ingest) per spec.md §4.5's batch sizes; Gateway
// implementations are not expected to chunk internally.
type Gateway interface {
	// File / FileDigest

	FindFile(ctx context.Context, contentHash string) (found bool, err error)
	CreateFile(ctx context.Context, contentHash, basename string, fastHash uint64) error
	FindFileDigest(ctx context.Context, contentHash string, digestID int64) (found bool, err error)
	CreateFileDigest(ctx context.Context, contentHash string, digestID int64) error

	// Taxon

	FindOrCreateTaxon(ctx context.Context, taxonID string) error
	FindOrCreateTaxonDigest(ctx context.Context, taxonID string, digestID int64) (TaxonDigest, error)
	DeleteTaxon(ctx context.Context, taxonID string) error
	ListTaxonDigests(ctx context.Context, taxonID string) ([]TaxonDigest, error)
	FindTaxonDigest(ctx context.Context, taxonID string, digestID int64) (found bool, td TaxonDigest, err error)
	DeleteTaxonDigestPeptides(ctx context.Context, taxonDigestID int64) error
	DeleteTaxonDigest(ctx context.Context, taxonDigestID int64) error
	DeleteTaxonProteins(ctx context.Context, taxonID string) error
	TaxonExists(ctx context.Context, taxonID string) (bool, error)

	// Protease / Digest registry

	FindOrCreateProtease(ctx context.Context, proteaseID, cleavageRule string) error
	FindOrCreateDigest(ctx context.Context, proteaseID string, maxMissedCleavages, minAcids, maxAcids int) (Digest, error)
	FindDigest(ctx context.Context, proteaseID string, maxMissedCleavages, minAcids, maxAcids int) (found bool, d Digest, err error)
	ListDigests(ctx context.Context) ([]Digest, error)

	// Protein / Peptide bulk operations

	FindExistingProteins(ctx context.Context, sequences []string) ([]Protein, error)
	BulkInsertProteins(ctx context.Context, sequences []string) ([]Protein, error)
	FindProteinsWithDigest(ctx context.Context, proteinIDs []int64, digestID int64) (withDigest map[int64]bool, err error)
	BulkInsertProteinDigests(ctx context.Context, proteinIDs []int64, digestID int64) error
	BulkInsertTaxonProteins(ctx context.Context, taxonID string, occurrences []ProteinOccurrence) error

	FindExistingPeptides(ctx context.Context, sequences []string) ([]Peptide, error)
	BulkInsertPeptides(ctx context.Context, sequences []string) ([]Peptide, error)
	BulkInsertProteinDigestPeptides(ctx context.Context, digestID int64, counts []ProteinDigestPeptideCount) error

	// Aggregation (server-side cursor; never materializes the full result)

	AggregateTaxonDigestPeptides(ctx context.Context, taxonDigestID int64, batchSize int, fn func([]TaxonDigestPeptideCount) error) error
	BulkInsertTaxonDigestPeptides(ctx context.Context, taxonDigestID int64, counts []TaxonDigestPeptideCount) error

	// Redundancy analytics

	IndividualPeptideCount(ctx context.Context, taxonDigestID int64) (int, error)
	IntersectionPeptideCount(ctx context.Context, a, b int64) (int, error)

	// Query-by-sequence. internal/queryseq applies the bounded-edit-distance
	// filter in Go (via edlib); the Gateway only enumerates candidates,
	// since edit distance is not a predicate Postgres can evaluate without
	// an extension.

	IterateTaxonPeptides(ctx context.Context, fn func(taxonID, peptideSequence string) error) error

	// Lifecycle

	Ping(ctx context.Context) error
	Close()
}

// Now is a clock seam a test could freeze; no code in this module reads it
// at present.
var Now = time.Now
