// Command oxyhdr renders the showcase scene through the HDR pipeline, either live in a
// window or offline into a PNG.
package main

import (
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-hdr/engine/config"
	"github.com/Carmen-Shannon/oxy-hdr/engine/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "oxyhdr",
		Short:         "Deferred HDR lighting with eye adaptation, bloom and Lottes tone mapping",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML config file (OXY_* environment variables override it)")

	rootCmd.AddCommand(newViewCommand(), newShotCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "oxyhdr:", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file named by --config and builds the base logger from it.
func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logger.Console(cfg.Logging.Level), nil
}
