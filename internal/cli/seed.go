package cli

import (
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/petstore/internal/seed"
)

var seedKeep bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Recreate the schema and load demo data",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, cfg, openOpts{})
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := seed.Run(ctx, a.db, a.dialect, cfg.Admin, seedKeep)
		if err != nil {
			return err
		}
		cmd.Printf("admin %s (created: %t), %d categories, %d products\n",
			cfg.Admin.Email, res.AdminCreated, res.Categories, res.Products)
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedKeep, "keep", false, "keep existing data and only ensure the admin account")
	rootCmd.AddCommand(seedCmd)
}
