package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

const testRoutingYAML = `
rules:
  - label: background
    type: model_substring
    params:
      substring: haiku
routes:
  - label: default
    target: claude-3-5-sonnet-20241022
  - label: background
    target: claude-3-5-haiku-20241022
`

// executeCommand executes a cobra command with the given args.
func executeCommand(root *cobra.Command, args ...string) error {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	return root.Execute()
}

// writeRoutingFile writes a valid routing file into a temp dir.
func writeRoutingFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "routing.yaml")
	if err := os.WriteFile(path, []byte(testRoutingYAML), 0o644); err != nil {
		t.Fatalf("write routing file: %v", err)
	}
	return path
}

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	if cmd == nil {
		t.Fatal("NewRootCmd returned nil")
	}

	if cmd.Use != "mr" {
		t.Errorf("expected Use='mr', got %q", cmd.Use)
	}

	// Check key subcommands exist
	wantSubcmds := []string{"version", "classify", "labels", "routes", "validate", "watch", "decisions"}
	subcmds := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subcmds[sub.Name()] = true
	}

	for _, want := range wantSubcmds {
		if !subcmds[want] {
			t.Errorf("missing subcommand: %s", want)
		}
	}

	// Check persistent flags
	wantFlags := []string{"config", "routing", "output", "verbose"}
	for _, flag := range wantFlags {
		if cmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag: %s", flag)
		}
	}
}

func TestVersionCmd_NoError(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"basic", []string{"version"}},
		{"short", []string{"version", "--short"}},
		{"json", []string{"version", "-o", "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCmd()
			if err := executeCommand(cmd, tt.args...); err != nil {
				t.Errorf("error = %v", err)
			}
		})
	}
}

func TestClassifyCmd(t *testing.T) {
	routing := writeRoutingFile(t)

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"synthetic haiku", []string{"classify", "-r", routing, "--model", "claude-3-5-haiku-20241022"}, false},
		{"synthetic tokens", []string{"classify", "-r", routing, "--tokens", "500"}, false},
		{"json output", []string{"classify", "-r", routing, "-m", "gpt-4o", "-o", "json"}, false},
		{"missing request file", []string{"classify", "-r", routing, "no-such-file.json"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCmd()
			err := executeCommand(cmd, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestClassifyCmd_RequestFile(t *testing.T) {
	routing := writeRoutingFile(t)

	reqPath := filepath.Join(t.TempDir(), "request.json")
	if err := os.WriteFile(reqPath, []byte(`{"model": "claude-3-5-haiku-20241022"}`), 0o644); err != nil {
		t.Fatalf("write request file: %v", err)
	}

	cmd := NewRootCmd()
	if err := executeCommand(cmd, "classify", "-r", routing, reqPath); err != nil {
		t.Errorf("classify with request file: %v", err)
	}
}

func TestLabelsCmd(t *testing.T) {
	routing := writeRoutingFile(t)

	tests := []struct {
		name string
		args []string
	}{
		{"basic", []string{"labels", "-r", routing}},
		{"alias", []string{"ls", "-r", routing}},
		{"json", []string{"labels", "-r", routing, "-o", "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCmd()
			if err := executeCommand(cmd, tt.args...); err != nil {
				t.Errorf("error = %v", err)
			}
		})
	}
}

func TestRoutesCmd(t *testing.T) {
	routing := writeRoutingFile(t)

	tests := []struct {
		name string
		args []string
	}{
		{"basic", []string{"routes", "-r", routing}},
		{"by target", []string{"routes", "-r", routing, "--by-target"}},
		{"json", []string{"routes", "-r", routing, "-o", "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCmd()
			if err := executeCommand(cmd, tt.args...); err != nil {
				t.Errorf("error = %v", err)
			}
		})
	}
}

func TestValidateCmd(t *testing.T) {
	valid := writeRoutingFile(t)

	invalidPath := filepath.Join(t.TempDir(), "invalid.yaml")
	if err := os.WriteFile(invalidPath, []byte("routes:\n  - label: default\n"), 0o644); err != nil {
		t.Fatalf("write invalid routing file: %v", err)
	}

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"valid file", []string{"validate", valid}, false},
		{"invalid file", []string{"validate", invalidPath}, true},
		{"missing file", []string{"validate", filepath.Join(t.TempDir(), "nope.yaml")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCmd()
			err := executeCommand(cmd, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecisionsCmd_NotConfigured(t *testing.T) {
	routing := writeRoutingFile(t)

	cmd := NewRootCmd()
	if err := executeCommand(cmd, "decisions", "-r", routing); err == nil {
		t.Error("decisions without a configured log should error")
	}
}
