// Package cli implements walletctl, the operator command line for the credit
// wallet.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"zcc-wallet-backend/internal/app"
	"zcc-wallet-backend/internal/config"
	"zcc-wallet-backend/internal/logger"
)

var configPath string

// loadConfig and openApp are replaced in tests.
var loadConfig = func() (*config.Config, error) {
	return config.Load(configPath)
}

var openApp = func() (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger.InitializeWithWriter(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	return app.New(cfg)
}

var rootCmd = &cobra.Command{
	Use:   "walletctl",
	Short: "Operate the ZCC credit wallet",
	Long: `walletctl inspects balances and ledger history, grants credits to users
and prints the product catalog. It talks to the same store as the server.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to configuration file")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
