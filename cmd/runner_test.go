package main

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/sobatea/chartsync/internal/shared"
	tu "github.com/sobatea/chartsync/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}

			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: logger,
				Output: output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})
			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) != 5 {
			t.Fatalf("register() returned %d commands, want 5", len(commands))
		}

		names := make(map[string]bool)
		for _, command := range commands {
			names[command.Name] = true
		}
		for _, want := range []string{"setup", "auth", "sync", "history", "tui"} {
			if !names[want] {
				t.Errorf("register() missing command %q", want)
			}
		}
	})

	t.Run("requireCatalog", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		if err := runner.requireCatalog(); err == nil {
			t.Error("requireCatalog() expected error without a Spotify client")
		}
	})
}

func TestWriteJSON(t *testing.T) {
	t.Run("compact", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
			t.Fatalf("writeJSON() error: %v", err)
		}

		if !json.Valid(bytes.TrimSpace(output.Bytes())) {
			t.Errorf("writeJSON() produced invalid JSON: %q", output.String())
		}
		if strings.Contains(output.String(), "\n  ") {
			t.Error("compact output should not be indented")
		}
	})

	t.Run("pretty", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
			t.Fatalf("writeJSON() error: %v", err)
		}
		if !strings.Contains(output.String(), "  \"key\"") {
			t.Errorf("pretty output should be indented: %q", output.String())
		}
	})

	t.Run("write failure", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
		if err := runner.writeJSON("data", false); err == nil {
			t.Error("writeJSON() expected write error")
		}
	})
}

func TestWritePlain(t *testing.T) {
	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Output: output})

	if err := runner.writePlain("count: %d\n", 3); err != nil {
		t.Fatalf("writePlain() error: %v", err)
	}
	if output.String() != "count: 3\n" {
		t.Errorf("writePlain() = %q", output.String())
	}

	if err := NewRunner(RunnerOpts{Output: &tu.FWriter{}}).writePlain("x"); err == nil {
		t.Error("writePlain() expected write error")
	}
}
