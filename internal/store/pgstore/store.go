// Package pgstore is the Postgres implementation of store.Gateway, over
// github.com/jackc/pgx/v4/pgxpool. Bulk operations use pgx.Batch (one round
// trip per chunk); natural-key upserts use
// INSERT ... ON CONFLICT (...) DO NOTHING RETURNING id, falling back to a
// SELECT when the row already existed (DO NOTHING returns no row).
package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	sperrors "github.com/saitomics/proteomics/internal/errors"
	"github.com/saitomics/proteomics/internal/store"
)

// Store is a Gateway backed by a pgxpool.Pool. Each ingest worker gets its
// own Store per spec.md §5's "distinct store session per worker"
// requirement: digest-and-ingest calls Connect once per worker, so every
// worker has a pool of its own.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an already-configured pool. Use Connect to build one from a DSN.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect opens a pool against dsn and ensures the schema exists.
func Connect(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pgstore: parsing DSN: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgstore: connecting: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgstore: applying schema: %w", err)
	}
	return New(pool), nil
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }
func (s *Store) Close()                         { s.pool.Close() }

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return sperrors.NewStoreError(op, isTransient(err), err)
}

// sqlStater is implemented by pgx/pgconn errors that carry a Postgres
// SQLSTATE code (constraint violations, syntax errors, and the like).
// Anything else — a dropped connection, a context deadline — is treated as
// transient and worth a retry.
type sqlStater interface{ SQLState() string }

func isTransient(err error) bool {
	_, hasSQLState := err.(sqlStater)
	return !hasSQLState
}

// --- File / FileDigest -----------------------------------------------------

func (s *Store) FindFile(ctx context.Context, contentHash string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM files WHERE content_hash=$1)`, contentHash).Scan(&exists)
	return exists, wrap("find_file", err)
}

func (s *Store) CreateFile(ctx context.Context, contentHash, basename string, fastHash uint64) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO files (content_hash, basename, fast_hash) VALUES ($1, $2, $3)
		 ON CONFLICT (content_hash) DO NOTHING`,
		contentHash, basename, int64(fastHash))
	return wrap("create_file", err)
}

func (s *Store) FindFileDigest(ctx context.Context, contentHash string, digestID int64) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM file_digests WHERE content_hash=$1 AND digest_id=$2)`,
		contentHash, digestID).Scan(&exists)
	return exists, wrap("find_file_digest", err)
}

func (s *Store) CreateFileDigest(ctx context.Context, contentHash string, digestID int64) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO file_digests (content_hash, digest_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		contentHash, digestID)
	return wrap("create_file_digest", err)
}

// --- Taxon -------------------------------------------------------------

func (s *Store) FindOrCreateTaxon(ctx context.Context, taxonID string) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO taxa (id) VALUES ($1) ON CONFLICT DO NOTHING`, taxonID)
	return wrap("find_or_create_taxon", err)
}

func (s *Store) FindOrCreateTaxonDigest(ctx context.Context, taxonID string, digestID int64) (store.TaxonDigest, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO taxon_digests (taxon_id, digest_id) VALUES ($1, $2)
		 ON CONFLICT (taxon_id, digest_id) DO NOTHING RETURNING id`,
		taxonID, digestID).Scan(&id)
	if err == pgx.ErrNoRows {
		err = s.pool.QueryRow(ctx,
			`SELECT id FROM taxon_digests WHERE taxon_id=$1 AND digest_id=$2`,
			taxonID, digestID).Scan(&id)
	}
	if err != nil {
		return store.TaxonDigest{}, wrap("find_or_create_taxon_digest", err)
	}
	return store.TaxonDigest{ID: id, TaxonID: taxonID, DigestID: digestID}, nil
}

func (s *Store) TaxonExists(ctx context.Context, taxonID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM taxa WHERE id=$1)`, taxonID).Scan(&exists)
	return exists, wrap("taxon_exists", err)
}

func (s *Store) ListTaxonDigests(ctx context.Context, taxonID string) ([]store.TaxonDigest, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, taxon_id, digest_id FROM taxon_digests WHERE taxon_id=$1`, taxonID)
	if err != nil {
		return nil, wrap("list_taxon_digests", err)
	}
	defer rows.Close()
	var out []store.TaxonDigest
	for rows.Next() {
		var td store.TaxonDigest
		if err := rows.Scan(&td.ID, &td.TaxonID, &td.DigestID); err != nil {
			return nil, wrap("list_taxon_digests", err)
		}
		out = append(out, td)
	}
	return out, wrap("list_taxon_digests", rows.Err())
}

func (s *Store) FindTaxonDigest(ctx context.Context, taxonID string, digestID int64) (bool, store.TaxonDigest, error) {
	var td store.TaxonDigest
	err := s.pool.QueryRow(ctx,
		`SELECT id, taxon_id, digest_id FROM taxon_digests WHERE taxon_id=$1 AND digest_id=$2`,
		taxonID, digestID).Scan(&td.ID, &td.TaxonID, &td.DigestID)
	if err == pgx.ErrNoRows {
		return false, store.TaxonDigest{}, nil
	}
	if err != nil {
		return false, store.TaxonDigest{}, wrap("find_taxon_digest", err)
	}
	return true, td, nil
}

func (s *Store) DeleteTaxonDigestPeptides(ctx context.Context, taxonDigestID int64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM taxon_digest_peptides WHERE taxon_digest_id=$1`, taxonDigestID)
	return wrap("delete_taxon_digest_peptides", err)
}

func (s *Store) DeleteTaxonDigest(ctx context.Context, taxonDigestID int64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM taxon_digests WHERE id=$1`, taxonDigestID)
	return wrap("delete_taxon_digest", err)
}

func (s *Store) DeleteTaxonProteins(ctx context.Context, taxonID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM taxon_proteins WHERE taxon_id=$1`, taxonID)
	return wrap("delete_taxon_proteins", err)
}

func (s *Store) DeleteTaxon(ctx context.Context, taxonID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM taxa WHERE id=$1`, taxonID)
	return wrap("delete_taxon", err)
}

// --- Protease / Digest registry ----------------------------------------

func (s *Store) FindOrCreateProtease(ctx context.Context, proteaseID, cleavageRule string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO proteases (id, cleavage_rule) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		proteaseID, cleavageRule)
	return wrap("find_or_create_protease", err)
}

func (s *Store) FindOrCreateDigest(ctx context.Context, proteaseID string, maxMissedCleavages, minAcids, maxAcids int) (store.Digest, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO digests (protease_id, max_missed_cleavages, min_acids, max_acids)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (protease_id, max_missed_cleavages, min_acids, max_acids) DO NOTHING
		 RETURNING id`,
		proteaseID, maxMissedCleavages, minAcids, maxAcids).Scan(&id)
	if err == pgx.ErrNoRows {
		err = s.pool.QueryRow(ctx,
			`SELECT id FROM digests WHERE protease_id=$1 AND max_missed_cleavages=$2 AND min_acids=$3 AND max_acids=$4`,
			proteaseID, maxMissedCleavages, minAcids, maxAcids).Scan(&id)
	}
	if err != nil {
		return store.Digest{}, wrap("find_or_create_digest", err)
	}
	return store.Digest{ID: id, ProteaseID: proteaseID, MaxMissedCleavages: maxMissedCleavages, MinAcids: minAcids, MaxAcids: maxAcids}, nil
}

func (s *Store) FindDigest(ctx context.Context, proteaseID string, maxMissedCleavages, minAcids, maxAcids int) (bool, store.Digest, error) {
	var d store.Digest
	err := s.pool.QueryRow(ctx,
		`SELECT d.id, d.protease_id, p.cleavage_rule, d.max_missed_cleavages, d.min_acids, d.max_acids
		 FROM digests d JOIN proteases p ON p.id = d.protease_id
		 WHERE d.protease_id=$1 AND d.max_missed_cleavages=$2 AND d.min_acids=$3 AND d.max_acids=$4`,
		proteaseID, maxMissedCleavages, minAcids, maxAcids).
		Scan(&d.ID, &d.ProteaseID, &d.CleavageRule, &d.MaxMissedCleavages, &d.MinAcids, &d.MaxAcids)
	if err == pgx.ErrNoRows {
		return false, store.Digest{}, nil
	}
	if err != nil {
		return false, store.Digest{}, wrap("find_digest", err)
	}
	return true, d, nil
}

func (s *Store) ListDigests(ctx context.Context) ([]store.Digest, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT d.id, d.protease_id, p.cleavage_rule, d.max_missed_cleavages, d.min_acids, d.max_acids
		 FROM digests d JOIN proteases p ON p.id = d.protease_id`)
	if err != nil {
		return nil, wrap("list_digests", err)
	}
	defer rows.Close()
	var out []store.Digest
	for rows.Next() {
		var d store.Digest
		if err := rows.Scan(&d.ID, &d.ProteaseID, &d.CleavageRule, &d.MaxMissedCleavages, &d.MinAcids, &d.MaxAcids); err != nil {
			return nil, wrap("list_digests", err)
		}
		out = append(out, d)
	}
	return out, wrap("list_digests", rows.Err())
}

// --- Protein / Peptide bulk operations -----------------------------------

func (s *Store) FindExistingProteins(ctx context.Context, sequences []string) ([]store.Protein, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, sequence FROM proteins WHERE sequence = ANY($1)`, sequences)
	if err != nil {
		return nil, wrap("find_existing_proteins", err)
	}
	defer rows.Close()
	var out []store.Protein
	for rows.Next() {
		var p store.Protein
		if err := rows.Scan(&p.ID, &p.Sequence); err != nil {
			return nil, wrap("find_existing_proteins", err)
		}
		out = append(out, p)
	}
	return out, wrap("find_existing_proteins", rows.Err())
}

func (s *Store) BulkInsertProteins(ctx context.Context, sequences []string) ([]store.Protein, error) {
	batch := &pgx.Batch{}
	for _, seq := range sequences {
		batch.Queue(`INSERT INTO proteins (sequence) VALUES ($1)
			ON CONFLICT (sequence) DO NOTHING RETURNING id, sequence`, seq)
	}
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	out := make([]store.Protein, 0, len(sequences))
	for range sequences {
		var p store.Protein
		if err := br.QueryRow().Scan(&p.ID, &p.Sequence); err != nil {
			if err == pgx.ErrNoRows {
				continue // already existed; caller already has it via FindExistingProteins
			}
			return nil, wrap("bulk_insert_proteins", err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) FindProteinsWithDigest(ctx context.Context, proteinIDs []int64, digestID int64) (map[int64]bool, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT protein_id FROM protein_digests WHERE protein_id = ANY($1) AND digest_id=$2`,
		proteinIDs, digestID)
	if err != nil {
		return nil, wrap("find_proteins_with_digest", err)
	}
	defer rows.Close()
	out := make(map[int64]bool, len(proteinIDs))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, wrap("find_proteins_with_digest", err)
		}
		out[id] = true
	}
	return out, wrap("find_proteins_with_digest", rows.Err())
}

func (s *Store) BulkInsertProteinDigests(ctx context.Context, proteinIDs []int64, digestID int64) error {
	batch := &pgx.Batch{}
	for _, id := range proteinIDs {
		batch.Queue(`INSERT INTO protein_digests (protein_id, digest_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, id, digestID)
	}
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range proteinIDs {
		if _, err := br.Exec(); err != nil {
			return wrap("bulk_insert_protein_digests", err)
		}
	}
	return nil
}

func (s *Store) BulkInsertTaxonProteins(ctx context.Context, taxonID string, occurrences []store.ProteinOccurrence) error {
	// occurrences here are resolved (protein_id already looked up by the
	// caller would be cleaner, but the natural key is the sequence, so we
	// resolve ids in one query and insert in the same batch).
	seqs := make([]string, len(occurrences))
	for i, o := range occurrences {
		seqs[i] = o.Sequence
	}
	proteins, err := s.FindExistingProteins(ctx, seqs)
	if err != nil {
		return err
	}
	idBySeq := make(map[string]int64, len(proteins))
	for _, p := range proteins {
		idBySeq[p.Sequence] = p.ID
	}

	batch := &pgx.Batch{}
	for _, o := range occurrences {
		id, ok := idBySeq[o.Sequence]
		if !ok {
			return wrap("bulk_insert_taxon_proteins", fmt.Errorf("protein not found for sequence"))
		}
		batch.Queue(`INSERT INTO taxon_proteins (taxon_id, protein_id, metadata) VALUES ($1, $2, $3)`, taxonID, id, o.Metadata)
	}
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range occurrences {
		if _, err := br.Exec(); err != nil {
			return wrap("bulk_insert_taxon_proteins", err)
		}
	}
	return nil
}

func (s *Store) FindExistingPeptides(ctx context.Context, sequences []string) ([]store.Peptide, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, sequence FROM peptides WHERE sequence = ANY($1)`, sequences)
	if err != nil {
		return nil, wrap("find_existing_peptides", err)
	}
	defer rows.Close()
	var out []store.Peptide
	for rows.Next() {
		var p store.Peptide
		if err := rows.Scan(&p.ID, &p.Sequence); err != nil {
			return nil, wrap("find_existing_peptides", err)
		}
		out = append(out, p)
	}
	return out, wrap("find_existing_peptides", rows.Err())
}

func (s *Store) BulkInsertPeptides(ctx context.Context, sequences []string) ([]store.Peptide, error) {
	batch := &pgx.Batch{}
	for _, seq := range sequences {
		batch.Queue(`INSERT INTO peptides (sequence) VALUES ($1)
			ON CONFLICT (sequence) DO NOTHING RETURNING id, sequence`, seq)
	}
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	out := make([]store.Peptide, 0, len(sequences))
	for range sequences {
		var p store.Peptide
		if err := br.QueryRow().Scan(&p.ID, &p.Sequence); err != nil {
			if err == pgx.ErrNoRows {
				continue
			}
			return nil, wrap("bulk_insert_peptides", err)
		}
		out = append(out, p)
	}
	return out, nil
}

// BulkInsertProteinDigestPeptides inserts one row per (protein, digest,
// peptide): `count` is the multiplicity within this single digestion run's
// histogram, so a conflicting row is DO NOTHING, not an additive update —
// FindProteinsWithDigest already skips any protein that has been digested
// under this digest before, so a conflict here would only ever mean a
// same-run retry re-submitting the same, already-complete counts.
func (s *Store) BulkInsertProteinDigestPeptides(ctx context.Context, digestID int64, counts []store.ProteinDigestPeptideCount) error {
	proteinSeqs := make([]string, 0, len(counts))
	peptideSeqs := make([]string, 0, len(counts))
	for _, c := range counts {
		proteinSeqs = append(proteinSeqs, c.ProteinSequence)
		peptideSeqs = append(peptideSeqs, c.PeptideSequence)
	}
	proteins, err := s.FindExistingProteins(ctx, proteinSeqs)
	if err != nil {
		return err
	}
	peptides, err := s.FindExistingPeptides(ctx, peptideSeqs)
	if err != nil {
		return err
	}
	proteinID := make(map[string]int64, len(proteins))
	for _, p := range proteins {
		proteinID[p.Sequence] = p.ID
	}
	peptideID := make(map[string]int64, len(peptides))
	for _, p := range peptides {
		peptideID[p.Sequence] = p.ID
	}

	batch := &pgx.Batch{}
	for _, c := range counts {
		pid, pok := proteinID[c.ProteinSequence]
		qid, qok := peptideID[c.PeptideSequence]
		if !pok || !qok {
			return wrap("bulk_insert_protein_digest_peptides", fmt.Errorf("unresolved protein/peptide id"))
		}
		batch.Queue(
			`INSERT INTO protein_digest_peptides (protein_id, digest_id, peptide_id, count)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (protein_id, digest_id, peptide_id) DO NOTHING`,
			pid, digestID, qid, c.Count)
	}
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range counts {
		if _, err := br.Exec(); err != nil {
			return wrap("bulk_insert_protein_digest_peptides", err)
		}
	}
	return nil
}

// --- Aggregation ---------------------------------------------------------

func (s *Store) AggregateTaxonDigestPeptides(ctx context.Context, taxonDigestID int64, batchSize int, fn func([]store.TaxonDigestPeptideCount) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return wrap("aggregate_taxon_digest_peptides", err)
	}
	defer tx.Rollback(ctx)

	// A server-side cursor: the cross-protein sum is never materialized in
	// full, only streamed in batchSize-row chunks, per spec.md §4.3/§5's
	// bounded-memory requirement.
	td, err := s.taxonDigestByID(ctx, tx, taxonDigestID)
	if err != nil {
		return err
	}

	rows, err := tx.Query(ctx, `
		SELECT pe.sequence, SUM(pdp.count)
		FROM protein_digest_peptides pdp
		JOIN proteins pr ON pr.id = pdp.protein_id
		JOIN taxon_proteins tp ON tp.protein_id = pr.id AND tp.taxon_id = $1
		JOIN peptides pe ON pe.id = pdp.peptide_id
		WHERE pdp.digest_id = $2
		GROUP BY pe.sequence`,
		td.TaxonID, td.DigestID)
	if err != nil {
		return wrap("aggregate_taxon_digest_peptides", err)
	}
	defer rows.Close()

	buf := make([]store.TaxonDigestPeptideCount, 0, batchSize)
	for rows.Next() {
		var c store.TaxonDigestPeptideCount
		if err := rows.Scan(&c.PeptideSequence, &c.Count); err != nil {
			return wrap("aggregate_taxon_digest_peptides", err)
		}
		buf = append(buf, c)
		if len(buf) >= batchSize {
			if err := fn(buf); err != nil {
				return err
			}
			buf = buf[:0]
		}
	}
	if err := rows.Err(); err != nil {
		return wrap("aggregate_taxon_digest_peptides", err)
	}
	if len(buf) > 0 {
		if err := fn(buf); err != nil {
			return err
		}
	}
	return wrap("aggregate_taxon_digest_peptides", tx.Commit(ctx))
}

func (s *Store) taxonDigestByID(ctx context.Context, tx pgx.Tx, id int64) (store.TaxonDigest, error) {
	var td store.TaxonDigest
	err := tx.QueryRow(ctx, `SELECT id, taxon_id, digest_id FROM taxon_digests WHERE id=$1`, id).
		Scan(&td.ID, &td.TaxonID, &td.DigestID)
	return td, wrap("taxon_digest_by_id", err)
}

func (s *Store) BulkInsertTaxonDigestPeptides(ctx context.Context, taxonDigestID int64, counts []store.TaxonDigestPeptideCount) error {
	seqs := make([]string, len(counts))
	for i, c := range counts {
		seqs[i] = c.PeptideSequence
	}
	peptides, err := s.FindExistingPeptides(ctx, seqs)
	if err != nil {
		return err
	}
	peptideID := make(map[string]int64, len(peptides))
	for _, p := range peptides {
		peptideID[p.Sequence] = p.ID
	}

	batch := &pgx.Batch{}
	for _, c := range counts {
		id, ok := peptideID[c.PeptideSequence]
		if !ok {
			return wrap("bulk_insert_taxon_digest_peptides", fmt.Errorf("unresolved peptide id"))
		}
		batch.Queue(
			`INSERT INTO taxon_digest_peptides (taxon_digest_id, peptide_id, count) VALUES ($1, $2, $3)
			 ON CONFLICT (taxon_digest_id, peptide_id) DO UPDATE SET count = EXCLUDED.count`,
			taxonDigestID, id, c.Count)
	}
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range counts {
		if _, err := br.Exec(); err != nil {
			return wrap("bulk_insert_taxon_digest_peptides", err)
		}
	}
	return nil
}

// --- Redundancy analytics --------------------------------------------------

func (s *Store) IndividualPeptideCount(ctx context.Context, taxonDigestID int64) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM taxon_digest_peptides WHERE taxon_digest_id=$1`, taxonDigestID).Scan(&n)
	return n, wrap("individual_peptide_count", err)
}

func (s *Store) IntersectionPeptideCount(ctx context.Context, a, b int64) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM (
			SELECT peptide_id FROM taxon_digest_peptides WHERE taxon_digest_id = $1
			INTERSECT
			SELECT peptide_id FROM taxon_digest_peptides WHERE taxon_digest_id = $2
		) x`, a, b).Scan(&n)
	return n, wrap("intersection_peptide_count", err)
}

// --- Query-by-sequence ------------------------------------------------

func (s *Store) IterateTaxonPeptides(ctx context.Context, fn func(taxonID, peptideSequence string) error) error {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT td.taxon_id, pe.sequence
		FROM peptides pe
		JOIN taxon_digest_peptides tdp ON tdp.peptide_id = pe.id
		JOIN taxon_digests td ON td.id = tdp.taxon_digest_id`)
	if err != nil {
		return wrap("iterate_taxon_peptides", err)
	}
	defer rows.Close()
	for rows.Next() {
		var taxonID, seq string
		if err := rows.Scan(&taxonID, &seq); err != nil {
			return wrap("iterate_taxon_peptides", err)
		}
		if err := fn(taxonID, seq); err != nil {
			return err
		}
	}
	return wrap("iterate_taxon_peptides", rows.Err())
}
