package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/saitomics/proteomics/internal/digestdef"
	"github.com/saitomics/proteomics/internal/errors"
	"github.com/saitomics/proteomics/internal/fileselect"
	"github.com/saitomics/proteomics/internal/ingest"
	"github.com/saitomics/proteomics/internal/ingest/driver"
	"github.com/saitomics/proteomics/internal/registry"
	"github.com/saitomics/proteomics/internal/store"
	"github.com/saitomics/proteomics/internal/store/pgstore"
)

var digestAndIngestCommand = &cli.Command{
	Name:      "digest-and-ingest",
	Usage:     "Digest and ingest one or more FASTA proteomes",
	ArgsUsage: "FASTA [FASTA…]",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "digest-def", Usage: "JSON digest-definition file (default: trypsin, 0 missed cleavages, min 6 acids)"},
		&cli.BoolFlag{Name: "json", Usage: "Print the ingestion statistics summary as JSON instead of a table"},
	},
	Action: digestAndIngestAction,
}

func loadDigestDef(ctx context.Context, reg *registry.Registry, path string) (registry.Resolved, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return registry.Resolved{}, errors.NewUsageError(fmt.Errorf("reading --digest-def %s: %w", path, err))
	}
	def, err := digestdef.Parse(raw)
	if err != nil {
		return registry.Resolved{}, errors.NewUsageError(err)
	}
	return reg.FromDefinition(ctx, def)
}

func digestAndIngestAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.NewUsageError(fmt.Errorf("digest-and-ingest requires at least one FASTA argument"))
	}
	paths, err := fileselect.Resolve(c.Args().Slice())
	if err != nil {
		return errors.NewUsageError(err)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx := c.Context
	gw, err := openGateway(ctx, cfg)
	if err != nil {
		return err
	}
	defer gw.Close()

	digest, err := resolveDigest(ctx, gw, cfg, c.String("digest-def"))
	if err != nil {
		return err
	}

	icfg := ingest.Config{
		ProteinBatchSize:      cfg.Ingest.ProteinBatchSize,
		PeptideProbeChunkSize: cfg.Ingest.PeptideProbeChunkSize,
		PeptideBulkChunkSize:  cfg.Ingest.PeptideBulkChunkSize,
		SkipBadResidues:       cfg.Ingest.SkipBadResiduePolicy == "skip",
	}

	newSession := func(ctx context.Context) (store.Gateway, error) {
		return pgstore.Connect(ctx, cfg.Store.DSN, cfg.Store.MaxConns)
	}

	results, runErr := driver.Run(ctx, paths, cfg.Ingest.ParallelFileWorkers, newSession, icfg, digest)

	var total ingest.Stats
	skipped := 0
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", r.Path, r.Err)
			continue
		}
		if r.Skipped {
			skipped++
			continue
		}
		total.Add(r.Stats)
	}

	printStats(c, total, skipped, len(results))

	if runErr != nil {
		return runErr
	}
	return nil
}

func printStats(c *cli.Context, total ingest.Stats, skipped, files int) {
	if c.Bool("json") {
		enc := json.NewEncoder(os.Stderr)
		enc.SetIndent("", "  ")
		enc.Encode(map[string]interface{}{
			"files":                   files,
			"files_skipped":           skipped,
			"taxa":                    total.Taxa,
			"proteins":                total.Proteins,
			"taxon_proteins":          total.TaxonProteins,
			"protein_digests":         total.ProteinDigests,
			"peptides":                total.Peptides,
			"protein_digest_peptides": total.ProteinDigestPeptides,
			"taxon_digest_peptides":   total.TaxonDigestPeptides,
		})
		return
	}

	fmt.Fprintln(os.Stderr, "\nStatistics on records created")
	fmt.Fprintln(os.Stderr, "-----------------------------")
	fmt.Fprintf(os.Stderr, "Files processed:          %d (%d skipped, already ingested)\n", files, skipped)
	fmt.Fprintf(os.Stderr, "Taxa:                     %d\n", total.Taxa)
	fmt.Fprintf(os.Stderr, "Proteins:                 %d\n", total.Proteins)
	fmt.Fprintf(os.Stderr, "TaxonProteins:            %d\n", total.TaxonProteins)
	fmt.Fprintf(os.Stderr, "ProteinDigests:           %d\n", total.ProteinDigests)
	fmt.Fprintf(os.Stderr, "Peptides:                 %d\n", total.Peptides)
	fmt.Fprintf(os.Stderr, "ProteinDigestPeptides:    %d\n", total.ProteinDigestPeptides)
	fmt.Fprintf(os.Stderr, "TaxonDigestPeptides:      %d\n", total.TaxonDigestPeptides)
}
