package cmd

import (
	"context"
	"log/slog"

	"github.com/RishalEP/tenx-blockchain/internal/config"
	"github.com/RishalEP/tenx-blockchain/pkg/logger"
	"github.com/RishalEP/tenx-blockchain/pkg/logger/slogx"
	"github.com/spf13/cobra"
)

var cmd = &cobra.Command{
	Use:  "tenx",
	Long: `TenX subscription payment-split accounting service`,
}

func init() {
	var configFile string

	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file, E.g. `./config.yaml`")
	flags.String("network", "local", "network the accounts live on, E.g. `bsc` or `bsc-testnet`")

	config.BindPFlag("network", flags.Lookup("network"))

	cobra.OnInitialize(func() {
		config := config.Parse(configFile)
		if err := logger.Init(config.Logger); err != nil {
			logger.Panic("Failed to initialize logger", slogx.Error(err), slog.Any("config", config.Logger))
		}
	})
}

func Execute(ctx context.Context) {
	cmd.AddCommand(
		NewRunCommand(),
		NewVersionCommand(),
		NewMigrateCommand(),
	)

	if err := cmd.ExecuteContext(ctx); err != nil {
		logger.Panic("Failed to execute root command", slogx.Error(err))
	}
}
