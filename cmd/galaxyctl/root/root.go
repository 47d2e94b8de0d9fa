package root

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/everforgeworks/habit-galaxy/internal/ui"
)

const Version = "0.1.0"

// paths defaults the shared flags from the same variables the server reads.
type paths struct {
	DBPath      string `env:"GALAXY_DB_PATH"      envDefault:"galaxy.db"`
	CatalogPath string `env:"GALAXY_CATALOG_PATH" envDefault:"galaxy.yaml"`
}

var flags paths

func newRootCmd() *cobra.Command {
	if err := env.Parse(&flags); err != nil {
		flags = paths{DBPath: "galaxy.db", CatalogPath: "galaxy.yaml"}
	}

	cmd := &cobra.Command{
		Use:           "galaxyctl",
		Short:         "Habit Galaxy admin tool",
		Long:          "galaxyctl migrates the Habit Galaxy database, inspects players and checks the gacha catalog.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}
	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	cmd.PersistentFlags().StringVar(&flags.DBPath, "db", flags.DBPath, "SQLite database path")
	cmd.PersistentFlags().StringVar(&flags.CatalogPath, "catalog", flags.CatalogPath, "galaxy.yaml path")

	cmd.AddCommand(
		newMigrateCmd(),
		newProfileCmd(),
		newRankingsCmd(),
		newOddsCmd(),
		newCatalogCmd(),
	)
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
