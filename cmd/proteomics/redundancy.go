package main

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/saitomics/proteomics/internal/errors"
	"github.com/saitomics/proteomics/internal/redundancy"
	"github.com/saitomics/proteomics/internal/store"
)

var generateRedundancyTablesCommand = &cli.Command{
	Name:  "generate-redundancy-tables",
	Usage: "Compute pairwise peptide-set redundancy tables across taxa",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "output-dir", Required: true, Usage: "Directory the four CSV tables are written to"},
		&cli.StringSliceFlag{Name: "taxon-ids", Usage: "Taxon ids to include"},
		&cli.StringFlag{Name: "taxon-id-file", Usage: "File with one taxon id per line"},
		&cli.StringFlag{Name: "digest-def", Usage: "Digest definition identifying which digest's peptide sets to use (default: trypsin, 0 missed cleavages, min 6 acids)"},
	},
	Action: generateRedundancyTablesAction,
}

func readTaxonIDFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			ids = append(ids, line)
		}
	}
	return ids, scanner.Err()
}

func generateRedundancyTablesAction(c *cli.Context) error {
	taxonIDs := c.StringSlice("taxon-ids")
	if path := c.String("taxon-id-file"); path != "" {
		fromFile, err := readTaxonIDFile(path)
		if err != nil {
			return errors.NewUsageError(err)
		}
		taxonIDs = append(taxonIDs, fromFile...)
	}
	if len(taxonIDs) == 0 {
		return errors.NewUsageError(fmt.Errorf("generate-redundancy-tables requires --taxon-ids or --taxon-id-file"))
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

	digest, err := resolveDigestForQuery(ctx, gw, cfg, c.String("digest-def"))
	if err != nil {
		return err
	}

	var taxonDigests []store.TaxonDigest
	for _, id := range taxonIDs {
		found, td, err := gw.FindTaxonDigest(ctx, id, digest.Digest.ID)
		if err != nil {
			return err
		}
		if !found {
			fmt.Fprintf(os.Stderr, "warning: %v\n", errors.NewUnknownTaxonError(id))
			continue
		}
		taxonDigests = append(taxonDigests, td)
	}

	tables, err := redundancy.Generate(ctx, gw, taxonDigests)
	if err != nil {
		return err
	}

	outDir := c.String("output-dir")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", outDir, err)
	}

	if err := writeIndividualCounts(outDir, tables); err != nil {
		return err
	}
	if err := writePairTable(outDir, "intersection_counts.csv", tables.TaxonDigests, func(a, b string) (string, bool) {
		n, ok := tables.Intersection(a, b)
		return strconv.Itoa(n), ok
	}); err != nil {
		return err
	}
	if err := writePairTable(outDir, "union_percents.csv", tables.TaxonDigests, func(a, b string) (string, bool) {
		p, ok := tables.UnionPercent(a, b)
		return strconv.FormatFloat(p, 'f', -1, 64), ok
	}); err != nil {
		return err
	}
	if err := writeDirectedPairTable(outDir, "individual_percents.csv", tables.TaxonDigests, func(a, b string) (string, bool) {
		p, ok := tables.IndividualPercent(a, b)
		return strconv.FormatFloat(p, 'f', -1, 64), ok
	}); err != nil {
		return err
	}

	return nil
}

func writeIndividualCounts(outDir string, t *redundancy.Tables) error {
	f, err := os.Create(filepath.Join(outDir, "individual_counts.csv"))
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	w.Write([]string{"taxon", "count"})
	for _, td := range t.TaxonDigests {
		w.Write([]string{td.TaxonID, strconv.Itoa(t.IndividualCounts[td.TaxonID])})
	}
	return w.Error()
}

// writePairTable emits a full square matrix CSV: header row of taxon ids,
// then one row per taxon with 'X' on the diagonal and value(row, col) (or
// blank if absent) in every other cell.
func writePairTable(outDir, name string, taxonDigests []store.TaxonDigest, value func(a, b string) (string, bool)) error {
	f, err := os.Create(filepath.Join(outDir, name))
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"taxon"}
	for _, td := range taxonDigests {
		header = append(header, td.TaxonID)
	}
	w.Write(header)

	for _, row := range taxonDigests {
		rec := []string{row.TaxonID}
		for _, col := range taxonDigests {
			if row.TaxonID == col.TaxonID {
				rec = append(rec, "X")
				continue
			}
			v, ok := value(row.TaxonID, col.TaxonID)
			if !ok {
				v = ""
			}
			rec = append(rec, v)
		}
		w.Write(rec)
	}
	return w.Error()
}

// writeDirectedPairTable is the same shape as writePairTable but value is
// evaluated (row, col) rather than the sorted pair, since individual
// percents are not symmetric.
func writeDirectedPairTable(outDir, name string, taxonDigests []store.TaxonDigest, value func(a, b string) (string, bool)) error {
	return writePairTable(outDir, name, taxonDigests, value)
}
