package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"wikigame/pkg/config"
	"wikigame/pkg/version"
)

const defaultConfigPath = "configs/wikigame.yaml"

var configPath string

var rootCmd = &cobra.Command{
	Use:     "wikigame",
	Short:   "Race through encyclopedia links from a random start to a random goal",
	Version: version.Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env is normal; the environment and config file still apply.
		_ = godotenv.Load()
	},
	SilenceUsage: true,
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Generate the default config file and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.GenerateDefault(configPath); err != nil {
			return fmt.Errorf("failed to generate config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Config file generated: %s\n", configPath)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the YAML config file")
	rootCmd.AddCommand(serveCmd, initConfigCmd, fetchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: %v\n", err)
		os.Exit(1)
	}
}
