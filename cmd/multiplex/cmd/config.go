package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dispatchgate/multiplex/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the effective configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML, after file/env/defaults are applied",
	RunE:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	out, err := cfg.Dump()
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	if configFile := config.ConfigFileUsed(); configFile != "" {
		fmt.Fprintf(os.Stderr, "# source: %s\n", configFile)
	} else {
		fmt.Fprintln(os.Stderr, "# source: defaults + environment only, no config file found")
	}
	_, err = os.Stdout.Write(out)
	return err
}
