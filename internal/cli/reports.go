package cli

import (
	"context"
	"fmt"
	"io"

	"asset-report/internal/config"
	"asset-report/internal/database"
	"asset-report/internal/models"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type reportLister interface {
	ListReports(ctx context.Context, userID string, limit int64) ([]models.Report, error)
}

// NewReportsCommand creates the 'reportctl reports' command
func NewReportsCommand() *cobra.Command {
	var (
		userID string
		limit  int64
	)

	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List a user's most recent reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			mongoClient, err := database.NewMongoDBClient(cfg.MongoDB)
			if err != nil {
				return fmt.Errorf("connect to MongoDB: %w", err)
			}
			defer mongoClient.Close()

			return printReports(cmd.Context(), cmd.OutOrStdout(), mongoClient, userID, limit)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User whose reports are listed (required)")
	cmd.Flags().Int64Var(&limit, "limit", 20, "Maximum number of reports")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func printReports(ctx context.Context, w io.Writer, lister reportLister, userID string, limit int64) error {
	reports, err := lister.ListReports(ctx, userID, limit)
	if err != nil {
		return fmt.Errorf("list reports: %w", err)
	}
	if len(reports) == 0 {
		fmt.Fprintf(w, "No reports found for user %s\n", userID)
		return nil
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	for _, r := range reports {
		fmt.Fprintf(w, "%s  %-8s %s..%s  ", r.ID, r.Kind, r.PeriodStart, r.PeriodEnd)
		switch r.Status {
		case models.ReportStatusCompleted:
			green.Fprintf(w, "%-10s", r.Status)
		case models.ReportStatusFailed:
			red.Fprintf(w, "%-10s", r.Status)
		default:
			yellow.Fprintf(w, "%-10s", r.Status)
		}
		if q := r.WorkflowMetadata.QualityScore; q != nil {
			fmt.Fprintf(w, " quality %.2f", q.Total)
		}
		if r.ErrorMessage != nil {
			fmt.Fprintf(w, " %s", *r.ErrorMessage)
		}
		fmt.Fprintln(w)
	}
	return nil
}
