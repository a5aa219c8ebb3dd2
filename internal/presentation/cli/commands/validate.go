package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/modelrouter/internal/domain/routing"
	"github.com/jbctechsolutions/modelrouter/internal/infrastructure/config"
	"github.com/jbctechsolutions/modelrouter/internal/infrastructure/tokenizer"
	"github.com/jbctechsolutions/modelrouter/internal/presentation/cli/output"
)

// RuleIssue describes a rule declaration that failed to construct.
type RuleIssue struct {
	Label string `json:"label"`
	Type  string `json:"type"`
	Error string `json:"error"`
}

// ValidateOutput represents the output for the validate command.
type ValidateOutput struct {
	Path   string      `json:"path"`
	Valid  bool        `json:"valid"`
	Rules  int         `json:"rules"`
	Routes int         `json:"routes"`
	Issues []RuleIssue `json:"issues,omitempty"`
}

// NewValidateCmd creates the validate command.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [routing.yaml]",
		Short: "Validate a routing file",
		Long: `Parse and validate a routing file without publishing it.

Structural problems (missing targets, empty labels, no routes) make the
file invalid. Rules that fail to construct are reported as issues but do
not make the file invalid, matching the engine's skip-and-continue
behavior at load time.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return runValidate(path)
		},
	}

	return cmd
}

func runValidate(path string) error {
	formatter := GetFormatter()

	if path == "" {
		ctx := GetAppContext()
		if ctx == nil {
			return fmt.Errorf("application not initialized")
		}
		path = ctx.Config.RoutingFile
	}

	result := ValidateOutput{Path: path}

	cfg, err := config.LoadRoutingFile(path)
	if err != nil {
		if formatter.Format() == output.FormatJSON {
			result.Issues = []RuleIssue{{Error: err.Error()}}
			formatter.JSON(result)
		} else {
			formatter.Error("%s: %v", path, err)
		}
		return fmt.Errorf("routing file is invalid")
	}

	result.Valid = true
	result.Rules = len(cfg.Rules)
	result.Routes = len(cfg.Routes)

	// Dry-run rule construction so misconfigured params surface here rather
	// than as warnings at load time.
	registry := routing.NewRegistry(tokenizer.NewCounter())
	for _, decl := range cfg.Rules {
		if _, err := registry.Build(decl.Type, decl.Params); err != nil {
			result.Issues = append(result.Issues, RuleIssue{
				Label: decl.Label,
				Type:  decl.Type,
				Error: err.Error(),
			})
		}
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(result)
	}

	formatter.Success("%s is valid (%d rules, %d routes)", path, result.Rules, result.Routes)
	for _, issue := range result.Issues {
		formatter.Warning("rule %q (%s) would be skipped: %s", issue.Label, issue.Type, issue.Error)
	}
	return nil
}
