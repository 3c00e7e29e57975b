package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestServeCmd_Registered(t *testing.T) {
	found := false
	for _, c := range rootCmd.Commands() {
		if c.Name() == "serve" {
			found = true
			break
		}
	}
	if !found {
		t.Error("serve command not registered with rootCmd")
	}
}

func TestConfigCmd_Registered(t *testing.T) {
	found := false
	for _, c := range rootCmd.Commands() {
		if c.Name() == "config" {
			found = true
			for _, sub := range c.Commands() {
				if sub.Name() == "show" {
					return
				}
			}
			t.Fatal("config command registered without a show subcommand")
		}
	}
	if !found {
		t.Error("config command not registered with rootCmd")
	}
}

func TestPIDFilePath_NonEmpty(t *testing.T) {
	if pidFilePath() == "" {
		t.Error("pidFilePath() returned empty string")
	}
}

func TestWritePIDFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "gateway.pid")

	if err := writePIDFile(path); err != nil {
		t.Fatalf("writePIDFile() unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading pid file: %v", err)
	}
	if len(data) == 0 {
		t.Error("pid file is empty")
	}
}
