package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// ConfigFile is the path to the optional YAML configuration.
var (
	ConfigFile string
	// rootCmd is the base command for wikiops.
	rootCmd = &cobra.Command{
		Use:   "wikiops",
		Short: "Operational tooling for the Wiki.js deployment",
		Long: `wikiops provides the operational commands for a containerized
Wiki.js deployment: an environment health check and a PostgreSQL
backup with retention rotation, both driven by the deployment's
.env file and compose CLI.`,
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&ConfigFile, "config", "c",
		filepath.Join("configs", "wikiops.yaml"), "path to YAML config file")
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(backupCmd)
}
