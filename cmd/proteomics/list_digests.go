package main

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/saitomics/proteomics/internal/registry"
)

var listDigestsCommand = &cli.Command{
	Name:  "list-digests",
	Usage: "List every digest definition already known to the store",
	Action: func(c *cli.Context) error {
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

		digests, err := registry.New(gw).List(ctx)
		if err != nil {
			return err
		}

		w := csv.NewWriter(os.Stdout)
		defer w.Flush()
		w.Write([]string{"digest_id", "protease_id", "cleavage_rule", "max_missed_cleavages", "min_acids", "max_acids"})
		for _, d := range digests {
			w.Write([]string{
				strconv.FormatInt(d.ID, 10),
				d.ProteaseID,
				d.CleavageRule,
				strconv.Itoa(d.MaxMissedCleavages),
				strconv.Itoa(d.MinAcids),
				strconv.Itoa(d.MaxAcids),
			})
		}
		return w.Error()
	},
}
