package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dispatchgate/multiplex/internal/config"
	"github.com/dispatchgate/multiplex/pkg/gateway"
)

var (
	addrOverride string
	statusRoute  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the multiplexing gateway",
	Long: `Start the gateway, binding the configured (or overridden) address
and serving HTTP/1.1 and HTTP/2 until interrupted.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&addrOverride, "addr", "", "override server.addr from config")
	serveCmd.Flags().StringVar(&statusRoute, "status-route", "", "expose the built-in status dispatcher at this path, e.g. /status")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if addrOverride != "" {
		cfg.Server.Addr = addrOverride
	}

	opts := []gateway.Option{
		gateway.WithConfig(cfg),
		gateway.WithBuildInfo(gateway.BuildInfo{Version: Version, Commit: Commit}),
	}
	if statusRoute != "" {
		opts = append(opts, gateway.WithStatusRoute(statusRoute))
	}

	srv, err := gateway.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to build gateway: %w", err)
	}

	// ctx cancels on SIGINT/SIGTERM; a second signal restores default
	// handling so it forces an immediate exit.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stop()
	}()

	pidPath := pidFilePath()
	if err := writePIDFile(pidPath); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to write PID file %s: %v\n", pidPath, err)
	} else {
		defer os.Remove(pidPath)
	}

	if configFile := config.ConfigFileUsed(); configFile != "" {
		fmt.Fprintf(os.Stderr, "loaded config: %s\n", configFile)
	}
	fmt.Fprintf(os.Stderr, "multiplex %s listening on %s\n", Version, cfg.Server.Addr)

	if err := srv.Listen(ctx, cfg.Server.Addr); err != nil && ctx.Err() == nil {
		return err
	}

	fmt.Fprintln(os.Stderr, "multiplex stopped")
	return nil
}

// pidFilePath returns the standard location for the multiplex PID file.
func pidFilePath() string {
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".multiplex", "gateway.pid")
	}
	return filepath.Join(os.TempDir(), "multiplex-gateway.pid")
}

// writePIDFile writes the current process PID to path, creating parent
// directories as needed.
func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0644)
}
