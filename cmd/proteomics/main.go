package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/saitomics/proteomics/internal/cleaver"
	"github.com/saitomics/proteomics/internal/config"
	"github.com/saitomics/proteomics/internal/digestdef"
	sperrors "github.com/saitomics/proteomics/internal/errors"
	"github.com/saitomics/proteomics/internal/registry"
	"github.com/saitomics/proteomics/internal/store"
	"github.com/saitomics/proteomics/internal/store/pgstore"
	"github.com/saitomics/proteomics/internal/version"
)

// loadConfig reads the --config flag (default .proteomics.kdl) the same way
// across every subcommand.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, sperrors.NewUsageError(fmt.Errorf("loading config: %w", err))
	}
	return cfg, nil
}

// openGateway opens one pgstore.Store session against the configured DSN.
// Every subcommand that touches the store opens exactly one session for its
// own (single-threaded) use; the parallel ingest driver opens one per
// worker via its own SessionFactory.
func openGateway(ctx context.Context, cfg *config.Config) (store.Gateway, error) {
	st, err := pgstore.Connect(ctx, cfg.Store.DSN, cfg.Store.MaxConns)
	if err != nil {
		return nil, err
	}
	return st, nil
}

func main() {
	app := &cli.App{
		Name:    "proteomics",
		Usage:   "Digest and ingest FASTA proteomes, then analyze peptide redundancy",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Config file path",
				Value: ".proteomics.kdl",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				debugOn()
			}
			return nil
		},
		Commands: []*cli.Command{
			digestAndIngestCommand,
			generateRedundancyTablesCommand,
			queryBySequenceCommand,
			clearTaxonDataCommand,
			listDigestsCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(sperrors.ExitCode(err))
	}
}

func resolveDigest(ctx context.Context, gw store.Gateway, cfg *config.Config, digestDefPath string) (registry.Resolved, error) {
	reg := registry.New(gw)
	if digestDefPath == "" {
		return reg.Default(ctx, cfg.Digest)
	}
	return loadDigestDef(ctx, reg, digestDefPath)
}

// resolveDigestForQuery resolves the digest a generate-redundancy-tables
// run refers to without ever creating a Protease/Digest row: a query
// against a digest that was never ingested is a DigestNotFoundError, not
// something to silently create (unlike digest-and-ingest's registry,
// which is the only component permitted to create those rows per
// spec.md §4.4).
func resolveDigestForQuery(ctx context.Context, gw store.Gateway, cfg *config.Config, digestDefPath string) (registry.Resolved, error) {
	proteaseID := cfg.Digest.DefaultProteaseID
	cleavageRule := cfg.Digest.DefaultCleavageRule
	maxMissed := cfg.Digest.DefaultMaxMissedCleavages
	minAcids := cfg.Digest.DefaultMinAcids
	maxAcids := cfg.Digest.DefaultMaxAcids

	if digestDefPath != "" {
		raw, err := os.ReadFile(digestDefPath)
		if err != nil {
			return registry.Resolved{}, sperrors.NewUsageError(fmt.Errorf("reading --digest-def %s: %w", digestDefPath, err))
		}
		def, err := digestdef.Parse(raw)
		if err != nil {
			return registry.Resolved{}, sperrors.NewUsageError(err)
		}
		proteaseID = def.Protease.ID
		cleavageRule = def.Protease.CleavageRule
		maxMissed = def.MaxMissedCleavages
		minAcids = def.MinAcids
		maxAcids = def.MaxAcids
	}

	found, digest, err := gw.FindDigest(ctx, proteaseID, maxMissed, minAcids, maxAcids)
	if err != nil {
		return registry.Resolved{}, err
	}
	if !found {
		return registry.Resolved{}, sperrors.NewDigestNotFoundError(proteaseID)
	}
	rule, err := cleaver.ParseRule(cleavageRule)
	if err != nil {
		return registry.Resolved{}, err
	}
	return registry.Resolved{Digest: digest, Rule: rule}, nil
}
