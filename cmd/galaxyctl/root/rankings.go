package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/everforgeworks/habit-galaxy/internal/ui"
)

func newRankingsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "rankings",
		Short: "Show the leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			board, err := store.Profiles().Leaderboard(ctx, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconTrophy, "Rankings"))
			if len(board) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("no players yet"))
				return nil
			}
			for _, e := range board {
				name := e.Username
				if name == "" {
					name = e.UserID
				}
				fmt.Fprintf(out, "%s %-20s %s %s\n", ui.Rank(e.Rank), name,
					ui.Key.Render(fmt.Sprintf("Lv.%d", e.Level)),
					ui.Muted.Render(fmt.Sprintf("%d xp, %d day streak", e.XP, e.Streak)))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of players to show")
	return cmd
}
