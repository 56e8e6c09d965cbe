package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/petstore/internal/config"
	"github.com/Skotchmaster/petstore/pkg/logging"
)

var (
	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "petstore",
	Short:         "Pet store e-commerce backend",
	Long:          "REST API for the pet store: catalogue, carts, orders and accounts.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		c, err := config.Load()
		if err != nil {
			return err
		}
		cfg = c
		logger = logging.New("petstore", c.App.LogLevel, c.App.LogFormat)
		logging.SetDefault(logger)
		cmd.SetContext(logging.IntoContext(cmd.Context(), logger))
		return nil
	},
}

// Execute runs the CLI. SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.FromContext(ctx).Error().Err(err).Msg("command_failed")
		return err
	}
	return nil
}
