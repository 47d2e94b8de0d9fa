package root

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/everforgeworks/habit-galaxy/internal/game"
	"github.com/everforgeworks/habit-galaxy/internal/ui"
)

func newOddsCmd() *cobra.Command {
	var draws int
	var seed int64
	cmd := &cobra.Command{
		Use:   "odds",
		Short: "Print the gacha table and simulate draws against it",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCatalog()
			if err != nil {
				return err
			}
			if draws <= 0 {
				return fmt.Errorf("--draws must be positive")
			}

			table := c.Gacha.Table
			odds := game.DrawOdds(table)
			hits := make([]int, len(table))
			rng := rand.New(rand.NewSource(seed))
			for i := 0; i < draws; i++ {
				hits[game.DrawBucket(table, rng.Float64())]++
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconDice, fmt.Sprintf("Mystery Box (%d gems)", c.Gacha.Cost)))
			for i, e := range table {
				fmt.Fprintf(out, "%-24s %s %s\n", bucketName(c, e), ui.Key.Render(ui.Percent(odds[i])),
					ui.Muted.Render("simulated "+ui.Percent(float64(hits[i])/float64(draws))))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&draws, "draws", 100000, "number of simulated draws")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed for the simulation")
	return cmd
}

func bucketName(c *game.Catalog, e game.DrawEntry) string {
	if e.Item == "" {
		return fmt.Sprintf("%s %d Star Coins", ui.IconCoin, e.StarCoins)
	}
	if it := c.Item(e.Item); it != nil {
		return ui.IconBox + " " + it.Name
	}
	return string(e.Item)
}

func loadCatalog() (*game.Catalog, error) {
	return game.LoadCatalog(flags.CatalogPath)
}
