package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/everforgeworks/habit-galaxy/internal/ui"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cleanup, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(ui.IconOK+" schema up to date")+" "+ui.Muted.Render(flags.DBPath))
			return nil
		},
	}
}
