package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/modelrouter/internal/presentation/cli/output"
)

// RouteInfo represents one routing entry for display.
type RouteInfo struct {
	Label    string         `json:"label"`
	Target   string         `json:"target"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// RoutesOutput represents the output for the routes command.
type RoutesOutput struct {
	Routes []RouteInfo `json:"routes"`
	Count  int         `json:"count"`
}

// TargetGroup represents the labels routed to one target.
type TargetGroup struct {
	Target string   `json:"target"`
	Labels []string `json:"labels"`
}

// NewRoutesCmd creates the routes command for displaying the routing table.
func NewRoutesCmd() *cobra.Command {
	var byTarget bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Show the current routing table",
		Long: `Display the routing table entries in declaration order, or grouped by
target model with --by-target.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoutes(byTarget)
		},
	}

	cmd.Flags().BoolVar(&byTarget, "by-target", false, "group labels by target model")

	return cmd
}

func runRoutes(byTarget bool) error {
	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application not initialized")
	}
	formatter := GetFormatter()

	if byTarget {
		return renderByTarget(formatter, container.Engine().GroupByTarget())
	}

	table := container.Engine().Table()
	entries := table.Entries()

	routes := make([]RouteInfo, 0, len(entries))
	for _, entry := range entries {
		routes = append(routes, RouteInfo{
			Label:    entry.Label,
			Target:   entry.Target,
			Metadata: entry.Metadata,
		})
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(RoutesOutput{Routes: routes, Count: len(routes)})
	}

	if len(routes) == 0 {
		formatter.Info("No routes configured")
		return nil
	}

	tableData := output.TableData{
		Columns: []output.TableColumn{
			{Header: "LABEL", Width: 15, Align: output.AlignLeft},
			{Header: "TARGET", Width: 30, Align: output.AlignLeft},
			{Header: "METADATA", Width: 20, Align: output.AlignLeft},
		},
		Rows: make([][]string, 0, len(routes)),
	}
	for _, r := range routes {
		tableData.Rows = append(tableData.Rows, []string{r.Label, r.Target, formatMetadata(r.Metadata)})
	}

	if err := formatter.Table(tableData); err != nil {
		return err
	}
	formatter.Println("")
	formatter.Println("%s", formatter.Dim(fmt.Sprintf("Total: %d route(s)", len(routes))))
	return nil
}

func renderByTarget(formatter *output.Formatter, groups map[string][]string) error {
	targets := make([]string, 0, len(groups))
	for target := range groups {
		targets = append(targets, target)
	}
	sort.Strings(targets)

	if formatter.Format() == output.FormatJSON {
		out := make([]TargetGroup, 0, len(targets))
		for _, target := range targets {
			out = append(out, TargetGroup{Target: target, Labels: groups[target]})
		}
		return formatter.JSON(out)
	}

	if len(targets) == 0 {
		formatter.Info("No routes configured")
		return nil
	}

	for _, target := range targets {
		formatter.Println("%s", formatter.Bold(target))
		for _, label := range groups[target] {
			formatter.Println("  %s", label)
		}
	}
	return nil
}

func formatMetadata(meta map[string]any) string {
	if len(meta) == 0 {
		return ""
	}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, meta[k]))
	}
	return strings.Join(pairs, ",")
}
