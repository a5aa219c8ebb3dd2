package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/modelrouter/internal/presentation/cli/output"
)

// ClassifyOutput represents the result of classifying one request.
type ClassifyOutput struct {
	Label    string         `json:"label"`
	Target   string         `json:"target,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewClassifyCmd creates the classify command.
func NewClassifyCmd() *cobra.Command {
	var (
		file   string
		model  string
		tokens int
	)

	cmd := &cobra.Command{
		Use:   "classify [request.json]",
		Short: "Classify a chat-completion request",
		Long: `Classify a request body against the configured rules and resolve the
label through the routing table.

The request is read as JSON from the positional file argument, from stdin
when the argument is "-" or omitted with piped input, or synthesized from
the --model and --tokens flags for quick checks.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				file = args[0]
			}
			return runClassify(cmd.InOrStdin(), file, model, tokens)
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "model name for a synthetic request")
	cmd.Flags().IntVarP(&tokens, "tokens", "t", 0, "explicit token count for a synthetic request")

	return cmd
}

func runClassify(stdin io.Reader, file, model string, tokens int) error {
	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application not initialized")
	}
	formatter := GetFormatter()

	body, err := readRequestBody(stdin, file, model, tokens)
	if err != nil {
		return err
	}

	label, entry := container.Engine().Route(context.Background(), body)

	result := ClassifyOutput{Label: label}
	if entry != nil {
		result.Target = entry.Target
		result.Metadata = entry.Metadata
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(result)
	}

	formatter.Item("Label", result.Label)
	if result.Target != "" {
		formatter.Item("Target", result.Target)
	} else {
		formatter.Warning("No routes configured; request passes through unrouted")
	}
	return nil
}

// readRequestBody assembles the request to classify from the file argument,
// stdin, or the synthetic flags, in that order of preference.
func readRequestBody(stdin io.Reader, file, model string, tokens int) (any, error) {
	if file != "" && file != "-" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read request file: %w", err)
		}
		return decodeRequestJSON(data)
	}

	if model != "" || tokens > 0 {
		body := map[string]any{}
		if model != "" {
			body["model"] = model
		}
		if tokens > 0 {
			body["token_count"] = tokens
		}
		return body, nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read request from stdin: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("no request provided: pass a file, pipe JSON, or use --model/--tokens")
	}
	return decodeRequestJSON(data)
}

func decodeRequestJSON(data []byte) (any, error) {
	var body any
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("request is not valid JSON: %w", err)
	}
	return body, nil
}
