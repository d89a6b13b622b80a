package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long: `Prints configuration after defaults, config.yaml and OSMAUDIT_* environment
overrides are applied. The output is a valid config.yaml.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return eris.Wrap(err, "config: encode")
		}
		return eris.Wrap(enc.Close(), "config: flush")
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
