package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	checkout "github.com/novabook/bookify/checkout/cmd"
	"github.com/novabook/bookify/internal/constants"
	"github.com/novabook/bookify/internal/log"
)

func Start() {
	logger := log.InitLogger("/var/log/bookify.log").
		With().
		Str(log.KeyAppName, constants.APP_MAIN_BOOKIFY).
		Str(log.KeyTag, "main Start").
		Logger()

	logger.Info().Msg("adding listener for SIGINT and SIGTERM")
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info().Msg("added listener for SIGINT and SIGTERM")

	c = logger.WithContext(c)

	rootCmd := &cobra.Command{Use: "bookify"}
	commands := []*cobra.Command{
		{
			Use:   "checkout",
			Short: "Run checkout service",
			Run: func(cmd *cobra.Command, args []string) {
				checkout.RunCheckoutService(cmd.Context())
			},
		},
	}
	rootCmd.AddCommand(commands...)
	if err := rootCmd.ExecuteContext(c); err != nil {
		logger.Fatal().Err(err).Msgf("error when executing command=%s", err.Error())
	}
}
