// Package cmd wires the dinoprep subcommands: materialize (metadata to
// link tree), register (tree to config snippet), verify, serve, agent.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentic-research/dinoprep/internal/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "dinoprep",
	Short: "Prepare anomaly-detection image datasets for AnomalyDINO",
	Long: `dinoprep materializes a conventional anomaly-detection dataset layout
(train/good, test/<anomaly-type>, ground_truth/<anomaly-type>) out of
per-category JSON metadata, using filesystem links instead of copies,
and generates the registration snippet the downstream pipeline needs.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to HCL config file (default probes ./dinoprep.hcl)")
}

// loadConfig resolves the tool configuration for the current invocation.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgPath)
}

// requireDir fails with a descriptive error when path is not an
// existing directory.
func requireDir(what, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s not found: %s", what, path)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory: %s", what, path)
	}
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
