// Package storetest is an in-memory store.Gateway used by unit tests that
// exercise internal/ingest, internal/redundancy, internal/queryseq and
// internal/clear without a live Postgres, per SPEC_FULL.md §8's note that
// an in-memory fake implementing the same Gateway interface is an
// acceptable substitute for a disposable schema in unit-level tests.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/saitomics/proteomics/internal/store"
)

type taxonProteinRow struct {
	taxonID   string
	proteinID int64
	metadata  string
}

// Fake is a single-process, mutex-guarded implementation of store.Gateway
// backed by plain Go maps. It is not meant to be fast or to enforce every
// constraint a real schema would — only to give the domain packages a
// Gateway they can drive deterministically in tests.
type Fake struct {
	mu sync.Mutex

	files       map[string]string // content_hash -> basename
	fileDigests map[string]bool   // content_hash + "|" + digest_id

	taxa         map[string]bool
	taxonDigests map[string]store.TaxonDigest // taxon_id + "|" + digest_id
	nextTDID     int64

	proteases map[string]string // protease_id -> cleavage_rule
	digests   []store.Digest
	nextDID   int64

	proteins   map[string]store.Protein // sequence -> Protein
	nextPID    int64
	peptides   map[string]store.Peptide // sequence -> Peptide
	nextPepID  int64

	proteinDigests map[string]bool // protein_id + "|" + digest_id

	taxonProteins []taxonProteinRow

	proteinDigestPeptides map[string]int // protein_id|digest_id|peptide_id -> count
	taxonDigestPeptides   map[string]int // taxon_digest_id|peptide_id -> count
}

// New returns an empty Fake, ready to use.
func New() *Fake {
	return &Fake{
		files:                 make(map[string]string),
		fileDigests:           make(map[string]bool),
		taxa:                  make(map[string]bool),
		taxonDigests:          make(map[string]store.TaxonDigest),
		proteases:             make(map[string]string),
		proteins:              make(map[string]store.Protein),
		peptides:              make(map[string]store.Peptide),
		proteinDigests:        make(map[string]bool),
		proteinDigestPeptides: make(map[string]int),
		taxonDigestPeptides:   make(map[string]int),
	}
}

func fdKey(hash string, digestID int64) string { return fmt.Sprintf("%s|%d", hash, digestID) }
func tdKey(taxonID string, digestID int64) string { return fmt.Sprintf("%s|%d", taxonID, digestID) }
func pdKey(proteinID, digestID int64) string { return fmt.Sprintf("%d|%d", proteinID, digestID) }
func pdpKey(proteinID, digestID, peptideID int64) string {
	return fmt.Sprintf("%d|%d|%d", proteinID, digestID, peptideID)
}
func tdpKey(taxonDigestID, peptideID int64) string { return fmt.Sprintf("%d|%d", taxonDigestID, peptideID) }

func (f *Fake) FindFile(ctx context.Context, contentHash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[contentHash]
	return ok, nil
}

func (f *Fake) CreateFile(ctx context.Context, contentHash, basename string, fastHash uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.files[contentHash]; !ok {
		f.files[contentHash] = basename
	}
	return nil
}

func (f *Fake) FindFileDigest(ctx context.Context, contentHash string, digestID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fileDigests[fdKey(contentHash, digestID)], nil
}

func (f *Fake) CreateFileDigest(ctx context.Context, contentHash string, digestID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fileDigests[fdKey(contentHash, digestID)] = true
	return nil
}

func (f *Fake) FindOrCreateTaxon(ctx context.Context, taxonID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.taxa[taxonID] = true
	return nil
}

func (f *Fake) FindOrCreateTaxonDigest(ctx context.Context, taxonID string, digestID int64) (store.TaxonDigest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := tdKey(taxonID, digestID)
	if td, ok := f.taxonDigests[key]; ok {
		return td, nil
	}
	f.nextTDID++
	td := store.TaxonDigest{ID: f.nextTDID, TaxonID: taxonID, DigestID: digestID}
	f.taxonDigests[key] = td
	return td, nil
}

func (f *Fake) FindTaxonDigest(ctx context.Context, taxonID string, digestID int64) (bool, store.TaxonDigest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	td, ok := f.taxonDigests[tdKey(taxonID, digestID)]
	return ok, td, nil
}

func (f *Fake) DeleteTaxon(ctx context.Context, taxonID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.taxa, taxonID)
	return nil
}

func (f *Fake) ListTaxonDigests(ctx context.Context, taxonID string) ([]store.TaxonDigest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.TaxonDigest
	for _, td := range f.taxonDigests {
		if td.TaxonID == taxonID {
			out = append(out, td)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *Fake) DeleteTaxonDigestPeptides(ctx context.Context, taxonDigestID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k := range f.taxonDigestPeptides {
		var id int64
		fmt.Sscanf(k, "%d|", &id)
		if id == taxonDigestID {
			delete(f.taxonDigestPeptides, k)
		}
	}
	return nil
}

func (f *Fake) DeleteTaxonDigest(ctx context.Context, taxonDigestID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, td := range f.taxonDigests {
		if td.ID == taxonDigestID {
			delete(f.taxonDigests, k)
		}
	}
	return nil
}

func (f *Fake) DeleteTaxonProteins(ctx context.Context, taxonID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.taxonProteins[:0]
	for _, row := range f.taxonProteins {
		if row.taxonID != taxonID {
			out = append(out, row)
		}
	}
	f.taxonProteins = out
	return nil
}

func (f *Fake) TaxonExists(ctx context.Context, taxonID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.taxa[taxonID], nil
}

func (f *Fake) FindOrCreateProtease(ctx context.Context, proteaseID, cleavageRule string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.proteases[proteaseID]; !ok {
		f.proteases[proteaseID] = cleavageRule
	}
	return nil
}

func (f *Fake) FindOrCreateDigest(ctx context.Context, proteaseID string, maxMissedCleavages, minAcids, maxAcids int) (store.Digest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.digests {
		if d.ProteaseID == proteaseID && d.MaxMissedCleavages == maxMissedCleavages && d.MinAcids == minAcids && d.MaxAcids == maxAcids {
			return d, nil
		}
	}
	f.nextDID++
	d := store.Digest{
		ID: f.nextDID, ProteaseID: proteaseID, CleavageRule: f.proteases[proteaseID],
		MaxMissedCleavages: maxMissedCleavages, MinAcids: minAcids, MaxAcids: maxAcids,
	}
	f.digests = append(f.digests, d)
	return d, nil
}

func (f *Fake) FindDigest(ctx context.Context, proteaseID string, maxMissedCleavages, minAcids, maxAcids int) (bool, store.Digest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.digests {
		if d.ProteaseID == proteaseID && d.MaxMissedCleavages == maxMissedCleavages && d.MinAcids == minAcids && d.MaxAcids == maxAcids {
			return true, d, nil
		}
	}
	return false, store.Digest{}, nil
}

func (f *Fake) ListDigests(ctx context.Context) ([]store.Digest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]store.Digest(nil), f.digests...), nil
}

func (f *Fake) FindExistingProteins(ctx context.Context, sequences []string) ([]store.Protein, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.Protein
	for _, seq := range sequences {
		if p, ok := f.proteins[seq]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *Fake) BulkInsertProteins(ctx context.Context, sequences []string) ([]store.Protein, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var created []store.Protein
	for _, seq := range sequences {
		if _, ok := f.proteins[seq]; ok {
			continue
		}
		f.nextPID++
		p := store.Protein{ID: f.nextPID, Sequence: seq}
		f.proteins[seq] = p
		created = append(created, p)
	}
	return created, nil
}

func (f *Fake) FindProteinsWithDigest(ctx context.Context, proteinIDs []int64, digestID int64) (map[int64]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int64]bool, len(proteinIDs))
	for _, id := range proteinIDs {
		if f.proteinDigests[pdKey(id, digestID)] {
			out[id] = true
		}
	}
	return out, nil
}

func (f *Fake) BulkInsertProteinDigests(ctx context.Context, proteinIDs []int64, digestID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range proteinIDs {
		f.proteinDigests[pdKey(id, digestID)] = true
	}
	return nil
}

func (f *Fake) BulkInsertTaxonProteins(ctx context.Context, taxonID string, occurrences []store.ProteinOccurrence) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range occurrences {
		p, ok := f.proteins[o.Sequence]
		if !ok {
			return fmt.Errorf("storetest: protein not found for sequence")
		}
		f.taxonProteins = append(f.taxonProteins, taxonProteinRow{taxonID: taxonID, proteinID: p.ID, metadata: o.Metadata})
	}
	return nil
}

func (f *Fake) FindExistingPeptides(ctx context.Context, sequences []string) ([]store.Peptide, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.Peptide
	for _, seq := range sequences {
		if p, ok := f.peptides[seq]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *Fake) BulkInsertPeptides(ctx context.Context, sequences []string) ([]store.Peptide, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var created []store.Peptide
	for _, seq := range sequences {
		if _, ok := f.peptides[seq]; ok {
			continue
		}
		f.nextPepID++
		p := store.Peptide{ID: f.nextPepID, Sequence: seq}
		f.peptides[seq] = p
		created = append(created, p)
	}
	return created, nil
}

func (f *Fake) BulkInsertProteinDigestPeptides(ctx context.Context, digestID int64, counts []store.ProteinDigestPeptideCount) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range counts {
		protein, ok := f.proteins[c.ProteinSequence]
		if !ok {
			return fmt.Errorf("storetest: unresolved protein %q", c.ProteinSequence)
		}
		peptide, ok := f.peptides[c.PeptideSequence]
		if !ok {
			return fmt.Errorf("storetest: unresolved peptide %q", c.PeptideSequence)
		}
		// Mirrors pgstore's ON CONFLICT DO NOTHING: count is this run's
		// full per-protein histogram, not an additive update.
		key := pdpKey(protein.ID, digestID, peptide.ID)
		if _, exists := f.proteinDigestPeptides[key]; !exists {
			f.proteinDigestPeptides[key] = c.Count
		}
	}
	return nil
}

func (f *Fake) AggregateTaxonDigestPeptides(ctx context.Context, taxonDigestID int64, batchSize int, fn func([]store.TaxonDigestPeptideCount) error) error {
	f.mu.Lock()
	var td store.TaxonDigest
	for _, v := range f.taxonDigests {
		if v.ID == taxonDigestID {
			td = v
		}
	}
	// Mirrors pgstore's SQL join: taxon_proteins is joined by protein_id with
	// no DISTINCT, so a protein occurring in taxon_proteins more than once
	// (duplicate FASTA records of the same sequence, which are intentionally
	// additive per spec.md §4.5.3) contributes its ProteinDigestPeptide
	// counts once per occurrence, not once per distinct protein.
	occurrencesByProtein := make(map[int64]int)
	for _, row := range f.taxonProteins {
		if row.taxonID == td.TaxonID {
			occurrencesByProtein[row.proteinID]++
		}
	}
	totals := make(map[int64]int) // peptide id -> count
	for k, count := range f.proteinDigestPeptides {
		var proteinID, digestID, peptideID int64
		fmt.Sscanf(k, "%d|%d|%d", &proteinID, &digestID, &peptideID)
		occurrences := occurrencesByProtein[proteinID]
		if digestID != td.DigestID || occurrences == 0 {
			continue
		}
		totals[peptideID] += count * occurrences
	}
	seqByID := make(map[int64]string, len(f.peptides))
	for seq, p := range f.peptides {
		seqByID[p.ID] = seq
	}
	var rows []store.TaxonDigestPeptideCount
	for id, count := range totals {
		rows = append(rows, store.TaxonDigestPeptideCount{PeptideSequence: seqByID[id], Count: count})
	}
	f.mu.Unlock()

	sort.Slice(rows, func(i, j int) bool { return rows[i].PeptideSequence < rows[j].PeptideSequence })

	for i := 0; i < len(rows); i += batchSize {
		end := i + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := fn(rows[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fake) BulkInsertTaxonDigestPeptides(ctx context.Context, taxonDigestID int64, counts []store.TaxonDigestPeptideCount) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range counts {
		peptide, ok := f.peptides[c.PeptideSequence]
		if !ok {
			return fmt.Errorf("storetest: unresolved peptide %q", c.PeptideSequence)
		}
		f.taxonDigestPeptides[tdpKey(taxonDigestID, peptide.ID)] = c.Count
	}
	return nil
}

func (f *Fake) IndividualPeptideCount(ctx context.Context, taxonDigestID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for k := range f.taxonDigestPeptides {
		var id int64
		fmt.Sscanf(k, "%d|", &id)
		if id == taxonDigestID {
			n++
		}
	}
	return n, nil
}

func (f *Fake) IntersectionPeptideCount(ctx context.Context, a, b int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	peptidesOf := func(taxonDigestID int64) map[int64]bool {
		out := make(map[int64]bool)
		for k := range f.taxonDigestPeptides {
			var tdID, peptideID int64
			fmt.Sscanf(k, "%d|%d", &tdID, &peptideID)
			if tdID == taxonDigestID {
				out[peptideID] = true
			}
		}
		return out
	}
	pa, pb := peptidesOf(a), peptidesOf(b)
	n := 0
	for id := range pa {
		if pb[id] {
			n++
		}
	}
	return n, nil
}

func (f *Fake) IterateTaxonPeptides(ctx context.Context, fn func(taxonID, peptideSequence string) error) error {
	f.mu.Lock()
	tdByID := make(map[int64]store.TaxonDigest, len(f.taxonDigests))
	for _, td := range f.taxonDigests {
		tdByID[td.ID] = td
	}
	seqByID := make(map[int64]string, len(f.peptides))
	for seq, p := range f.peptides {
		seqByID[p.ID] = seq
	}
	type pair struct {
		taxonID string
		seq     string
	}
	seen := make(map[pair]bool)
	for k := range f.taxonDigestPeptides {
		var tdID, peptideID int64
		fmt.Sscanf(k, "%d|%d", &tdID, &peptideID)
		seen[pair{taxonID: tdByID[tdID].TaxonID, seq: seqByID[peptideID]}] = true
	}
	f.mu.Unlock()

	for p := range seen {
		if err := fn(p.taxonID, p.seq); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fake) Ping(ctx context.Context) error { return nil }
func (f *Fake) Close()                         {}
