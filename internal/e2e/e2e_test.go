// Package e2e provides end-to-end integration tests for modelrouter.
package e2e

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/modelrouter/internal/presentation/cli/commands"
)

const routingYAML = `
rules:
  - label: large_context
    type: token_threshold
    params:
      threshold: 10000
  - label: background
    type: model_substring
    params:
      substring: haiku
  - label: think
    type: tag_present
    params:
      key: thinking
  - label: web_search
    type: tool_substring
    params:
      substring: web_search
routes:
  - label: default
    target: claude-3-5-sonnet-20241022
  - label: background
    target: claude-3-5-haiku-20241022
  - label: think
    target: claude-3-7-sonnet-20250219
  - label: large_context
    target: gemini-2.0-flash
  - label: web_search
    target: gpt-4o-search-preview
`

// executeCommand executes a cobra command with the given args and captures output.
func executeCommand(root *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// TestE2E_CLICommands tests that the CLI commands execute without error.
func TestE2E_CLICommands(t *testing.T) {
	dir := t.TempDir()
	routing := writeFile(t, dir, "routing.yaml", routingYAML)
	request := writeFile(t, dir, "request.json", `{"model": "claude-3-5-haiku-20241022"}`)

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		// Version command
		{"version", []string{"version"}, false},
		{"version short", []string{"version", "--short"}, false},
		{"version json", []string{"version", "-o", "json"}, false},

		// Classify command
		{"classify synthetic", []string{"classify", "-r", routing, "--model", "claude-3-5-haiku-20241022"}, false},
		{"classify tokens", []string{"classify", "-r", routing, "--tokens", "20000"}, false},
		{"classify file", []string{"classify", "-r", routing, request}, false},
		{"classify json", []string{"classify", "-r", routing, "-m", "gpt-4o", "-o", "json"}, false},
		{"classify missing file", []string{"classify", "-r", routing, "nope.json"}, true},

		// Labels command
		{"labels", []string{"labels", "-r", routing}, false},
		{"labels alias", []string{"ls", "-r", routing}, false},
		{"labels json", []string{"labels", "-r", routing, "-o", "json"}, false},

		// Routes command
		{"routes", []string{"routes", "-r", routing}, false},
		{"routes by target", []string{"routes", "-r", routing, "--by-target"}, false},
		{"routes json", []string{"routes", "-r", routing, "-o", "json"}, false},

		// Validate command
		{"validate", []string{"validate", routing}, false},
		{"validate missing", []string{"validate", filepath.Join(dir, "absent.yaml")}, true},

		// Decisions command (no log configured)
		{"decisions unconfigured", []string{"decisions", "-r", routing}, true},

		// Help
		{"help", []string{"--help"}, false},
		{"help classify", []string{"classify", "--help"}, false},
		{"help watch", []string{"watch", "--help"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := commands.NewRootCmd()
			_, err := executeCommand(cmd, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("command %v: error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
		})
	}
}

// TestE2E_DecisionLogPipeline classifies through the CLI with a decision log
// configured and then reads the log back with the decisions command.
func TestE2E_DecisionLogPipeline(t *testing.T) {
	dir := t.TempDir()
	routing := writeFile(t, dir, "routing.yaml", routingYAML)
	dbPath := filepath.Join(dir, "decisions.db")

	configYAML := "routing_file: " + routing + "\ndecision_log: " + dbPath + "\n"
	config := writeFile(t, dir, "config.yaml", configYAML)

	cmd := commands.NewRootCmd()
	if _, err := executeCommand(cmd, "classify", "-c", config, "--model", "claude-3-5-haiku-20241022"); err != nil {
		t.Fatalf("classify: %v", err)
	}
	commands.Shutdown()

	cmd = commands.NewRootCmd()
	if _, err := executeCommand(cmd, "decisions", "-c", config); err != nil {
		t.Fatalf("decisions: %v", err)
	}
	commands.Shutdown()
}

// TestE2E_ValidateReportsSkippedRules exercises the dry-run rule construction.
func TestE2E_ValidateReportsSkippedRules(t *testing.T) {
	dir := t.TempDir()
	routing := writeFile(t, dir, "routing.yaml", `
rules:
  - label: broken
    type: token_threshold
routes:
  - label: default
    target: claude-3-5-sonnet-20241022
`)

	// Missing threshold param is reported as an issue, not a hard failure.
	cmd := commands.NewRootCmd()
	if _, err := executeCommand(cmd, "validate", routing); err != nil {
		t.Errorf("validate should succeed with skippable rule issues: %v", err)
	}

	cmd = commands.NewRootCmd()
	if _, err := executeCommand(cmd, "classify", "-r", routing, "--model", "anything"); err != nil {
		t.Fatalf("classify: %v", err)
	}
}
