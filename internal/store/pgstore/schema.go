package pgstore

// schema is the canonical DDL for the twelve-table relational model spec.md
// §3/§6 describes. File's primary key is the hex-encoded SHA-256 content
// hash itself (its identity, per spec.md's invariant); fast_hash is the
// non-identity xxhash prefilter (SPEC_FULL.md §3).
const schema = `
CREATE TABLE IF NOT EXISTS files (
    content_hash TEXT PRIMARY KEY,
    basename     TEXT NOT NULL,
    fast_hash    BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS proteases (
    id            TEXT PRIMARY KEY,
    cleavage_rule TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS digests (
    id                    BIGSERIAL PRIMARY KEY,
    protease_id           TEXT NOT NULL REFERENCES proteases(id),
    max_missed_cleavages  INT NOT NULL,
    min_acids             INT NOT NULL,
    max_acids             INT NOT NULL,
    UNIQUE (protease_id, max_missed_cleavages, min_acids, max_acids)
);

CREATE TABLE IF NOT EXISTS file_digests (
    content_hash TEXT NOT NULL REFERENCES files(content_hash),
    digest_id    BIGINT NOT NULL REFERENCES digests(id),
    PRIMARY KEY (content_hash, digest_id)
);

CREATE TABLE IF NOT EXISTS taxa (
    id TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS taxon_digests (
    id        BIGSERIAL PRIMARY KEY,
    taxon_id  TEXT NOT NULL REFERENCES taxa(id),
    digest_id BIGINT NOT NULL REFERENCES digests(id),
    UNIQUE (taxon_id, digest_id)
);

CREATE TABLE IF NOT EXISTS proteins (
    id       BIGSERIAL PRIMARY KEY,
    sequence TEXT NOT NULL UNIQUE
);
CREATE INDEX IF NOT EXISTS idx_proteins_sequence ON proteins(sequence);

CREATE TABLE IF NOT EXISTS peptides (
    id       BIGSERIAL PRIMARY KEY,
    sequence TEXT NOT NULL UNIQUE
);
CREATE INDEX IF NOT EXISTS idx_peptides_sequence ON peptides(sequence);

CREATE TABLE IF NOT EXISTS taxon_proteins (
    taxon_id   TEXT NOT NULL REFERENCES taxa(id),
    protein_id BIGINT NOT NULL REFERENCES proteins(id),
    metadata   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_taxon_proteins_taxon ON taxon_proteins(taxon_id);

CREATE TABLE IF NOT EXISTS protein_digests (
    protein_id BIGINT NOT NULL REFERENCES proteins(id),
    digest_id  BIGINT NOT NULL REFERENCES digests(id),
    PRIMARY KEY (protein_id, digest_id)
);

CREATE TABLE IF NOT EXISTS protein_digest_peptides (
    protein_id BIGINT NOT NULL REFERENCES proteins(id),
    digest_id  BIGINT NOT NULL REFERENCES digests(id),
    peptide_id BIGINT NOT NULL REFERENCES peptides(id),
    count      INT NOT NULL,
    PRIMARY KEY (protein_id, digest_id, peptide_id)
);

CREATE TABLE IF NOT EXISTS taxon_digest_peptides (
    taxon_digest_id BIGINT NOT NULL REFERENCES taxon_digests(id),
    peptide_id      BIGINT NOT NULL REFERENCES peptides(id),
    count           INT NOT NULL,
    PRIMARY KEY (taxon_digest_id, peptide_id)
);
CREATE INDEX IF NOT EXISTS idx_tdp_taxon_digest ON taxon_digest_peptides(taxon_digest_id);
`
