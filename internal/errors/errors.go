// Package errors defines the typed error kinds the proteomics toolkit
// raises, following the teacher's IndexingError/ParseError/SearchError
// idiom: one struct per kind (StoreError covers both store kinds, told
// apart by its Kind method), and, where an error wraps a cause, an
// Underlying field with an Unwrap method so errors.Is/As reach it.
package errors

import (
	"fmt"
	"time"
)

// Kind identifies which of the seven error categories an error belongs to.
type Kind string

const (
	KindParse          Kind = "parse"           // malformed FASTA record
	KindBadResidue     Kind = "bad_residue"     // residue outside the mass table
	KindStoreTransient Kind = "store_transient" // retryable store failure
	KindStoreFatal     Kind = "store_fatal"     // non-retryable store failure
	KindDigestNotFound Kind = "digest_not_found"
	KindUnknownTaxon   Kind = "unknown_taxon"
	KindUsage          Kind = "usage" // bad CLI invocation, never a runtime failure
)

// ParseError reports a malformed FASTA record.
type ParseError struct {
	FilePath   string
	RecordNum  int
	Underlying error
	Timestamp  time.Time
}

func NewParseError(path string, recordNum int, err error) *ParseError {
	return &ParseError{FilePath: path, RecordNum: recordNum, Underlying: err, Timestamp: time.Now()}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s (record %d): %v", e.FilePath, e.RecordNum, e.Underlying)
}

func (e *ParseError) Unwrap() error { return e.Underlying }

// BadResidueError reports a residue absent from the mass table.
type BadResidueError struct {
	ProteinID  string
	Residue    byte
	Underlying error
	Timestamp  time.Time
}

func NewBadResidueError(proteinID string, residue byte, err error) *BadResidueError {
	return &BadResidueError{ProteinID: proteinID, Residue: residue, Underlying: err, Timestamp: time.Now()}
}

func (e *BadResidueError) Error() string {
	return fmt.Sprintf("bad residue %q in protein %s: %v", e.Residue, e.ProteinID, e.Underlying)
}

func (e *BadResidueError) Unwrap() error { return e.Underlying }

// StoreError reports a failure from the store gateway. Transient marks a
// failure worth retrying (e.g. a dropped connection); a non-transient
// StoreError is fatal to the current run.
type StoreError struct {
	Operation  string
	Transient  bool
	Underlying error
	Timestamp  time.Time
}

func NewStoreError(op string, transient bool, err error) *StoreError {
	return &StoreError{Operation: op, Transient: transient, Underlying: err, Timestamp: time.Now()}
}

func (e *StoreError) Kind() Kind {
	if e.Transient {
		return KindStoreTransient
	}
	return KindStoreFatal
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Operation, e.Underlying)
}

func (e *StoreError) Unwrap() error { return e.Underlying }

// DigestNotFoundError reports that a query named a digest the registry has
// no record of.
type DigestNotFoundError struct {
	DigestID  string
	Timestamp time.Time
}

func NewDigestNotFoundError(digestID string) *DigestNotFoundError {
	return &DigestNotFoundError{DigestID: digestID, Timestamp: time.Now()}
}

func (e *DigestNotFoundError) Error() string {
	return fmt.Sprintf("digest not found: %s", e.DigestID)
}

// UnknownTaxonError reports that a taxon id named on the command line has
// no corresponding Taxon row.
type UnknownTaxonError struct {
	TaxonID   string
	Timestamp time.Time
}

func NewUnknownTaxonError(taxonID string) *UnknownTaxonError {
	return &UnknownTaxonError{TaxonID: taxonID, Timestamp: time.Now()}
}

func (e *UnknownTaxonError) Error() string {
	return fmt.Sprintf("unknown taxon: %s", e.TaxonID)
}

// UsageError reports a malformed CLI invocation (missing/invalid flags or
// arguments), distinct from any runtime failure.
type UsageError struct {
	Underlying error
}

func NewUsageError(err error) *UsageError { return &UsageError{Underlying: err} }

func (e *UsageError) Error() string { return e.Underlying.Error() }

func (e *UsageError) Unwrap() error { return e.Underlying }

// ExitCode classifies err into the CLI exit code spec.md §6 prescribes: 0
// is handled by the caller on a nil error, 1 for usage errors, 2 for any
// other (runtime) error.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if _, ok := err.(*UsageError); ok {
		return 1
	}
	return 2
}
