package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var reindexBatch int

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Push every active product to the search index",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if !cfg.Search.Enabled() {
			return errors.New("ES_URL is not set")
		}
		a, err := openApp(ctx, cfg, openOpts{index: true})
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.index.EnsureIndex(ctx); err != nil {
			return err
		}
		n, err := a.productService().Reindex(ctx, reindexBatch)
		if err != nil {
			return err
		}
		logger.Info().Int("products", n).Str("index", cfg.Search.Index).Msg("reindex_done")
		return nil
	},
}

func init() {
	reindexCmd.Flags().IntVar(&reindexBatch, "batch", 200, "products loaded per database batch")
	rootCmd.AddCommand(reindexCmd)
}
