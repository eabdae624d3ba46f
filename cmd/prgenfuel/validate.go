package main

import (
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the pipeline configuration and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadConfig(cmd.ErrOrStderr()); err != nil {
			return err
		}
		name := cfgFile
		if name == "" {
			name = "(defaults)"
		}
		printf(cmd.OutOrStdout(), "configuration is valid: %s\n", name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
