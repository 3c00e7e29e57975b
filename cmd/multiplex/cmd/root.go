// Package cmd provides the CLI commands for multiplex.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dispatchgate/multiplex/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "multiplex",
	Short: "multiplex - an embeddable HTTP/1.1+HTTP/2 multiplexing gateway",
	Long: `multiplex serves HTTP/1.1 and HTTP/2, cleartext or TLS, on a single
port, sniffing each connection's preface to hand it to the matching
engine, and runs every request through a dispatcher chain.

Quick start:
  1. Create a config file: multiplex.yaml
  2. Run: multiplex serve

Configuration:
  Config is loaded from multiplex.yaml in the current directory,
  $HOME/.multiplex/, or /etc/multiplex/.

  Environment variables can override config values with the MULTIPLEX_
  prefix. Example: MULTIPLEX_SERVER_ADDR=:9443`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./multiplex.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
