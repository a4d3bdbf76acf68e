package config

import (
	"fmt"
	"os"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// Load reads a KDL configuration file at path. A missing file is not an
// error: Load returns the built-in defaults instead, mirroring the
// teacher's LoadKDL("no config found, use defaults") behavior.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return parseKDL(string(content))
}

func parseKDL(content string) (*Config, error) {
	cfg := defaultConfig()

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("config: parsing KDL: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "store":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "dsn":
					if s, ok := firstStringArg(cn); ok {
						cfg.Store.DSN = s
					}
				case "max_conns":
					if v, ok := firstIntArg(cn); ok {
						cfg.Store.MaxConns = int32(v)
					}
				case "statement_cache":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Store.StatementCache = b
					}
				}
			}
		case "ingest":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "protein_batch_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Ingest.ProteinBatchSize = v
					}
				case "peptide_probe_chunk_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Ingest.PeptideProbeChunkSize = v
					}
				case "peptide_bulk_chunk_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Ingest.PeptideBulkChunkSize = v
					}
				case "taxon_aggregate_batch":
					if v, ok := firstIntArg(cn); ok {
						cfg.Ingest.TaxonAggregateBatch = v
					}
				case "parallel_file_workers":
					if v, ok := firstIntArg(cn); ok {
						cfg.Ingest.ParallelFileWorkers = v
					}
				case "skip_bad_residue_policy":
					if s, ok := firstStringArg(cn); ok {
						cfg.Ingest.SkipBadResiduePolicy = s
					}
				}
			}
		case "digest":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "default_protease_id":
					if s, ok := firstStringArg(cn); ok {
						cfg.Digest.DefaultProteaseID = s
					}
				case "default_cleavage_rule":
					if s, ok := firstStringArg(cn); ok {
						cfg.Digest.DefaultCleavageRule = s
					}
				case "default_max_missed_cleavages":
					if v, ok := firstIntArg(cn); ok {
						cfg.Digest.DefaultMaxMissedCleavages = v
					}
				case "default_min_acids":
					if v, ok := firstIntArg(cn); ok {
						cfg.Digest.DefaultMinAcids = v
					}
				case "default_max_acids":
					if v, ok := firstIntArg(cn); ok {
						cfg.Digest.DefaultMaxAcids = v
					}
				}
			}
		}
	}

	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}
