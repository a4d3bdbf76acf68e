package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/saitomics/proteomics/internal/errors"
	"github.com/saitomics/proteomics/internal/queryseq"
)

var queryBySequenceCommand = &cli.Command{
	Name:  "query-by-sequence",
	Usage: "Find peptides within a bounded edit distance of one or more query sequences",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "max-distance", Value: 0, Usage: "Maximum Levenshtein distance to report"},
		&cli.StringFlag{Name: "sequence", Usage: "A single query sequence"},
		&cli.StringFlag{Name: "sequence-file", Usage: "File with one query sequence per line"},
	},
	Action: queryBySequenceAction,
}

func queryBySequenceAction(c *cli.Context) error {
	var queries []string
	if s := c.String("sequence"); s != "" {
		queries = append(queries, s)
	}
	if path := c.String("sequence-file"); path != "" {
		fromFile, err := readTaxonIDFile(path) // one-per-line reader, shared with redundancy.go
		if err != nil {
			return errors.NewUsageError(err)
		}
		queries = append(queries, fromFile...)
	}
	if len(queries) == 0 {
		return errors.NewUsageError(fmt.Errorf("query-by-sequence requires --sequence or --sequence-file"))
	}
	maxDistance := c.Int("max-distance")
	if maxDistance < 0 {
		return errors.NewUsageError(fmt.Errorf("--max-distance must be non-negative"))
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

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()
	w.Write([]string{"query", "taxon", "lev_distance", "match"})

	for _, q := range queries {
		matches, err := queryseq.Query(ctx, gw, q, maxDistance)
		if err != nil {
			return err
		}
		for _, m := range matches {
			w.Write([]string{m.Query, m.TaxonID, strconv.Itoa(m.Distance), m.Sequence})
		}
	}
	return w.Error()
}
