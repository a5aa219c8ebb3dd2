package commands

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/modelrouter/internal/presentation/cli/output"
)

// DecisionInfo represents one recorded decision for display.
type DecisionInfo struct {
	ID        string `json:"id"`
	Model     string `json:"model"`
	Label     string `json:"label"`
	Target    string `json:"target"`
	DecidedAt string `json:"decided_at"`
}

// NewDecisionsCmd creates the decisions command for inspecting the decision log.
func NewDecisionsCmd() *cobra.Command {
	var (
		limit   int
		byLabel bool
	)

	cmd := &cobra.Command{
		Use:   "decisions",
		Short: "Show recorded routing decisions",
		Long: `Display recent entries from the SQLite decision log, newest first.
Requires decision_log to be set in the configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecisions(limit, byLabel)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of decisions to show")
	cmd.Flags().BoolVar(&byLabel, "by-label", false, "show decision counts per label instead")

	return cmd
}

func runDecisions(limit int, byLabel bool) error {
	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application not initialized")
	}
	formatter := GetFormatter()

	log := container.DecisionLog()
	if log == nil {
		return fmt.Errorf("decision logging is not configured: set decision_log in the config file")
	}

	ctx := context.Background()

	if byLabel {
		counts, err := log.CountByLabel(ctx)
		if err != nil {
			return fmt.Errorf("failed to count decisions: %w", err)
		}

		if formatter.Format() == output.FormatJSON {
			return formatter.JSON(counts)
		}

		labels := make([]string, 0, len(counts))
		for label := range counts {
			labels = append(labels, label)
		}
		sort.Strings(labels)

		for _, label := range labels {
			formatter.Item(label, strconv.Itoa(counts[label]))
		}
		return nil
	}

	decisions, err := log.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to load decisions: %w", err)
	}

	if formatter.Format() == output.FormatJSON {
		out := make([]DecisionInfo, 0, len(decisions))
		for _, d := range decisions {
			out = append(out, DecisionInfo{
				ID:        d.ID,
				Model:     d.Model,
				Label:     d.Label,
				Target:    d.Target,
				DecidedAt: d.DecidedAt.Format(time.RFC3339),
			})
		}
		return formatter.JSON(out)
	}

	if len(decisions) == 0 {
		formatter.Info("No decisions recorded")
		return nil
	}

	tableData := output.TableData{
		Columns: []output.TableColumn{
			{Header: "TIME", Width: 20, Align: output.AlignLeft},
			{Header: "MODEL", Width: 25, Align: output.AlignLeft},
			{Header: "LABEL", Width: 15, Align: output.AlignLeft},
			{Header: "TARGET", Width: 25, Align: output.AlignLeft},
		},
		Rows: make([][]string, 0, len(decisions)),
	}
	for _, d := range decisions {
		tableData.Rows = append(tableData.Rows, []string{
			d.DecidedAt.Local().Format("2006-01-02 15:04:05"),
			d.Model,
			d.Label,
			d.Target,
		})
	}

	return formatter.Table(tableData)
}
