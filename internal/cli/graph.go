package cli

import (
	"encoding/json"
	"fmt"

	"asset-report/internal/workflow"

	"github.com/spf13/cobra"
)

// NewGraphCommand creates the 'reportctl graph' command
func NewGraphCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the report workflow graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			graph := workflow.DescribeGraph()
			output := cmd.OutOrStdout()

			switch format {
			case "json":
				data, err := json.MarshalIndent(graph, "", "  ")
				if err != nil {
					return fmt.Errorf("encode graph: %w", err)
				}
				fmt.Fprintln(output, string(data))
			case "mermaid":
				fmt.Fprint(output, graph.Mermaid())
			default:
				return fmt.Errorf("unknown format %q (want json or mermaid)", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "mermaid", "Output format: json or mermaid")
	return cmd
}
