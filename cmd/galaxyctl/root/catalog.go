package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/everforgeworks/habit-galaxy/internal/ui"
)

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Validate galaxy.yaml and summarize it",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCatalog()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconGalaxy, "Catalog OK"))
			fmt.Fprintln(out, ui.LabelValue("Habits", len(c.Habits)))
			for _, h := range c.Habits {
				fmt.Fprintf(out, "- %s %s\n", h.Name, ui.Muted.Render(fmt.Sprintf("(%d xp, %d dmg)", h.XPReward, h.Dmg)))
			}
			fmt.Fprintln(out, ui.LabelValue("Bosses", len(c.Bosses)))
			for _, b := range c.Bosses {
				fmt.Fprintf(out, "- %s %s\n", b.Name, ui.Muted.Render(fmt.Sprintf("(%d hp)", b.MaxHP)))
			}
			fmt.Fprintln(out, ui.LabelValue("Items", len(c.Items)))
			fmt.Fprintln(out, ui.LabelValue("Signup gems", c.Balance.SignupGems))
			return nil
		},
	}
}
