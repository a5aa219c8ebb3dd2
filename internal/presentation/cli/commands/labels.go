package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/modelrouter/internal/presentation/cli/output"
)

// LabelsOutput represents the output for the labels command.
type LabelsOutput struct {
	Labels []string `json:"labels"`
	Count  int      `json:"count"`
}

// NewLabelsCmd creates the labels command for listing configured labels.
func NewLabelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "labels",
		Short:   "List the labels of the current routing table",
		Long:    `Display the sorted set of labels a request can be routed to.`,
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLabels()
		},
	}

	return cmd
}

func runLabels() error {
	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application not initialized")
	}
	formatter := GetFormatter()

	labels := container.Engine().Labels()

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(LabelsOutput{Labels: labels, Count: len(labels)})
	}

	if len(labels) == 0 {
		formatter.Info("No labels configured")
		return nil
	}

	formatter.Header("Labels")
	for _, label := range labels {
		formatter.Println("  %s", label)
	}
	return nil
}
