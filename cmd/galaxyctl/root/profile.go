package root

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/everforgeworks/habit-galaxy/internal/ui"
)

func newProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile <user-id>",
		Short: "Show a player's account, stored progression, bosses and inventory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			p, err := store.Profiles().Get(ctx, args[0])
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("no profile for %s", args[0])
			}
			items, err := store.Inventory().Load(ctx, p.UserID)
			if err != nil {
				return err
			}
			logged, err := store.HabitLogs().CountByUser(ctx, p.UserID)
			if err != nil {
				return err
			}
			bosses, err := store.Bosses().Load(ctx, p.UserID)
			if err != nil {
				return err
			}
			account, err := store.Users().Get(ctx, p.UserID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			name := p.Username
			if name == "" {
				name = p.UserID
			}
			fmt.Fprintln(out, ui.Heading(ui.IconRocket, name))
			if account == nil {
				fmt.Fprintln(out, ui.Warn.Render(ui.IconWarn+" no account for this profile"))
			} else {
				fmt.Fprintln(out, ui.LabelValue("Email", account.Email))
			}

			day := p.Day
			if day == "" {
				day = "-"
			}
			stats := []string{
				ui.LabelValue("Level", p.Level),
				ui.LabelValue("XP", fmt.Sprintf("%s %d/%d", ui.Bar(p.XP, p.MaxXP, 20), p.XP, p.MaxXP)),
				ui.LabelValue("Streak", fmt.Sprintf("%s %d days", ui.IconFire, p.Streak)),
				ui.LabelValue("Shields", fmt.Sprintf("%s %d", ui.IconShield, p.StreakShields)),
				ui.LabelValue("Gems", fmt.Sprintf("%s %d", ui.IconGem, p.Gems)),
				ui.LabelValue("Star Coins", fmt.Sprintf("%s %d", ui.IconCoin, p.StarCoins)),
				ui.LabelValue("Multiplier", fmt.Sprintf("%.1fx", p.Multiplier)),
				ui.LabelValue("Day", fmt.Sprintf("%s (%d steps)", day, p.StepsToday)),
				ui.LabelValue("Language", p.Language),
				ui.LabelValue("Habits logged", logged),
			}
			fmt.Fprintln(out, ui.Panel.Render(strings.Join(stats, "\n")))
			fmt.Fprintln(out, ui.Muted.Render("updated "+p.UpdatedAt.Format("2006-01-02 15:04:05 MST")))
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.H2.Render(ui.IconTrophy+" Bosses"))
			if len(bosses) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("- untouched"))
			}
			fmt.Fprintln(out, ui.LabelValue("Selected", fmt.Sprintf("#%d in the catalog", p.CurrentBoss+1)))
			for _, b := range bosses {
				fmt.Fprintf(out, "- %s %d hp\n", ui.Key.Render(fmt.Sprintf("boss %d", b.BossID)), b.HP)
			}
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.H2.Render(ui.IconBox+" Inventory"))
			if len(items) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("- empty"))
			}
			for _, it := range items {
				fmt.Fprintf(out, "- %s x%d\n", ui.Key.Render(it.ItemID), it.Qty)
			}
			return nil
		},
	}
}
