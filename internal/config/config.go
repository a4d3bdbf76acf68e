// Package config loads application configuration for the proteomics toolkit
// from a KDL document, in the same node-walking style the rest of this
// codebase uses for structured config.
package config

// Store holds the connection parameters for the Postgres-backed Gateway.
type Store struct {
	DSN            string
	MaxConns       int32
	StatementCache bool
}

// Ingest holds the batch/chunk sizes the ingest coordinator uses.
// Defaults mirror the sizes the digestion service has always used:
// 500-record protein batches, 500-row peptide existence probes, and
// 10,000-row chunks for ProteinDigestPeptide/TaxonDigestPeptide bulk work.
type Ingest struct {
	ProteinBatchSize       int
	PeptideProbeChunkSize  int
	PeptideBulkChunkSize   int
	TaxonAggregateBatch    int
	ParallelFileWorkers    int
	SkipBadResiduePolicy   string // "abort" (default) or "skip"
}

// Digest holds the default digest definition applied when a run omits
// --digest-def, matching the trypsin/zero-missed-cleavage default the
// digestion tool has always shipped.
type Digest struct {
	DefaultProteaseID           string
	DefaultCleavageRule         string
	DefaultMaxMissedCleavages   int
	DefaultMinAcids             int
	DefaultMaxAcids             int
}

// Config is the root configuration object, loaded from a KDL file.
type Config struct {
	Store  Store
	Ingest Ingest
	Digest Digest
}

func defaultConfig() *Config {
	return &Config{
		Store: Store{
			DSN:            "postgres://localhost:5432/proteomics",
			MaxConns:       8,
			StatementCache: true,
		},
		Ingest: Ingest{
			ProteinBatchSize:      500,
			PeptideProbeChunkSize: 500,
			PeptideBulkChunkSize:  10000,
			TaxonAggregateBatch:   10000,
			ParallelFileWorkers:   4,
			SkipBadResiduePolicy:  "abort",
		},
		Digest: Digest{
			DefaultProteaseID:         "trypsin",
			DefaultCleavageRule:       `([KR](?=[^P]))|((?<=W)K(?=P))|((?<=M)R(?=P))`,
			DefaultMaxMissedCleavages: 0,
			DefaultMinAcids:           6,
			DefaultMaxAcids:           0,
		},
	}
}
