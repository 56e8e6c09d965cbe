package cli

import (
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/petstore/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down|status|version|reset]",
	Short: "Apply or inspect schema migrations",
	Long: "Runs goose against the embedded SQL migrations on Postgres. " +
		"SQLite and MySQL only support \"up\", which auto-migrates the models.",
	Args:      cobra.MaximumNArgs(2),
	ValidArgs: []string{"up", "down", "status", "version", "reset"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		command := "up"
		if len(args) > 0 {
			command = args[0]
		}

		a, err := openApp(ctx, cfg, openOpts{})
		if err != nil {
			return err
		}
		defer a.Close()

		if err := migrate.Run(ctx, a.db, a.dialect, command, args[min(1, len(args)):]...); err != nil {
			return err
		}
		logger.Info().Str("command", command).Str("dialect", string(a.dialect)).Msg("migrate_done")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
