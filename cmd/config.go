package cmd

import (
	"os"

	"github.com/safepath/safepath/internal/contract"
	"github.com/spf13/cobra"
)

// configCmd groups configuration helpers.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the effective configuration",
}

// configDumpCmd prints the merged configuration as YAML.
var configDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the effective configuration as YAML",
	Long: `Merge defaults, .safepath.yaml, SAFEPATH_* environment variables and flags,
validate the result and print it as YAML. Credentials are masked.

The output can be saved as .safepath.yaml to pin the current settings.

Examples:
  safepath config dump > .safepath.yaml
  SAFEPATH_BETA=0.9 safepath config dump`,
	Args: cobra.NoArgs,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return resolveConfig()
	},
	Run: func(_ *cobra.Command, _ []string) {
		if err := contract.DumpConfig(os.Stdout, cfg); err != nil {
			contract.LogFatal("Failed to dump config", err)
		}
	},
}
