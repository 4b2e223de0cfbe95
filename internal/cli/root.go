package cli

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates the root command for reportctl
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reportctl",
		Short: "Inspect and run the asset report workflow",
		Long: `reportctl prints the report workflow graph and runs single reports
synchronously against the configured MongoDB, printing the execution trace.`,
		Version:      Version,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewGraphCommand())
	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewDataCommand())
	cmd.AddCommand(NewReportsCommand())

	return cmd
}
