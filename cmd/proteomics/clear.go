package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/saitomics/proteomics/internal/clear"
	"github.com/saitomics/proteomics/internal/errors"
)

var clearTaxonDataCommand = &cli.Command{
	Name:  "clear-taxon-data",
	Usage: "Delete all TaxonDigestPeptide/TaxonDigest/TaxonProtein/Taxon rows for the given taxa",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{Name: "taxon-ids", Usage: "Taxon ids to clear"},
		&cli.StringFlag{Name: "taxon-ids-file", Usage: "File with one taxon id per line"},
		&cli.BoolFlag{Name: "yes", Usage: "Skip the interactive confirmation prompt (non-interactive use)"},
	},
	Action: clearTaxonDataAction,
}

func clearTaxonDataAction(c *cli.Context) error {
	taxonIDs := c.StringSlice("taxon-ids")
	if path := c.String("taxon-ids-file"); path != "" {
		fromFile, err := readTaxonIDFile(path)
		if err != nil {
			return errors.NewUsageError(err)
		}
		taxonIDs = append(taxonIDs, fromFile...)
	}
	if len(taxonIDs) == 0 {
		return errors.NewUsageError(fmt.Errorf("clear-taxon-data requires --taxon-ids or --taxon-ids-file"))
	}

	if !c.Bool("yes") {
		fmt.Fprintf(os.Stderr, "This will permanently delete all data for %d taxon(s): %v\n", len(taxonIDs), taxonIDs)
		fmt.Fprint(os.Stderr, "Type 'yes' to confirm: ")
		reader := bufio.NewReader(os.Stdin)
		line, _ := reader.ReadString('\n')
		if line != "yes\n" && line != "yes" {
			fmt.Fprintln(os.Stderr, "aborted, no changes made")
			return nil
		}
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

	for _, id := range taxonIDs {
		if err := clear.Taxon(ctx, gw, id); err != nil {
			if _, ok := err.(*errors.UnknownTaxonError); ok {
				// Unknown taxon ids are a no-op, not a failure (spec.md §4.8).
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
				continue
			}
			return err
		}
		fmt.Fprintf(os.Stderr, "cleared taxon %s\n", id)
	}
	return nil
}
