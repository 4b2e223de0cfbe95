package cli

import (
	"context"
	"fmt"
	"strings"

	"asset-report/internal/config"
	"asset-report/internal/database"
	"asset-report/internal/models"
	"asset-report/internal/services"
	"asset-report/internal/workflow"

	"github.com/spf13/cobra"
)

// NewRunCommand creates the 'reportctl run' command
func NewRunCommand() *cobra.Command {
	var (
		req      models.GenerateReportRequest
		focus    string
		contents bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate one report synchronously and print its trace",
		Long: `Run loads the server configuration from the environment (and .env),
generates a single report against MongoDB without the worker pool and
prints the execution trace as the workflow finishes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if focus != "" {
				for _, area := range strings.Split(focus, ",") {
					if area = strings.TrimSpace(area); area != "" {
						req.FocusAreas = append(req.FocusAreas, area)
					}
				}
			}
			return runReport(cmd, req, contents)
		},
	}

	cmd.Flags().StringVar(&req.UserID, "user", "", "User whose assets are reported (required)")
	cmd.Flags().StringVar(&req.Kind, "kind", "custom", "Report kind: weekly, monthly, yearly or custom")
	cmd.Flags().StringVar(&req.StartDate, "start", "", "Window start, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&req.EndDate, "end", "", "Window end, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&req.Model, "model", "", "Override the configured model")
	cmd.Flags().StringVar(&focus, "focus", "", "Comma separated focus areas")
	cmd.Flags().BoolVar(&contents, "print-content", false, "Print the report markdown after the trace")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func runReport(cmd *cobra.Command, req models.GenerateReportRequest, printContent bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	mongoClient, err := database.NewMongoDBClient(cfg.MongoDB)
	if err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}
	defer mongoClient.Close()

	engine, err := workflow.NewEngine(mongoClient, mongoClient, services.NewAIService(cfg.OpenAI), cfg.Workflow,
		workflow.WithTemperature(cfg.OpenAI.Temperature))
	if err != nil {
		return fmt.Errorf("build workflow: %w", err)
	}

	var (
		final  *workflow.State
		runErr error
	)
	reports := services.NewReportService(mongoClient, &inlineQueue{runner: engine}, services.NewPDFService(), cfg.OpenAI)
	if _, err := reports.Enqueue(cmd.Context(), req, func(st *workflow.State, err error) {
		final, runErr = st, err
	}); err != nil {
		return err
	}

	output := cmd.OutOrStdout()
	if final != nil {
		printTrace(output, final)
		if printContent && final.Content != "" {
			fmt.Fprintf(output, "\n%s\n", final.Content)
		}
	}
	if runErr != nil {
		return fmt.Errorf("persist report: %w", runErr)
	}
	if final != nil && final.Status() == models.ReportStatusFailed {
		return fmt.Errorf("report %s failed", final.Task.ReportID)
	}
	return nil
}

// inlineQueue runs each job on the caller's goroutine
type inlineQueue struct {
	runner services.Runner
}

func (q *inlineQueue) Submit(job services.Job) error {
	st, err := q.runner.Run(context.Background(), job.Task)
	if job.OnDone != nil {
		job.OnDone(st, err)
	}
	return nil
}

func (q *inlineQueue) InFlight(reportID string) bool { return false }
