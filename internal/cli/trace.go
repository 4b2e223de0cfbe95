package cli

import (
	"fmt"
	"io"

	"asset-report/internal/models"
	"asset-report/internal/workflow"

	"github.com/fatih/color"
)

// printTrace writes the execution trace and the outcome of a run
func printTrace(w io.Writer, st *workflow.State) {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	cyan.Fprintf(w, "\n=== Report %s (%s, %s) ===\n\n", st.Task.ReportID, st.Task.Kind, st.Task.Window)

	for i, entry := range st.Trace {
		fmt.Fprintf(w, "%3d  %s  %-16s ", i+1, entry.Timestamp.Format("15:04:05.000"), entry.Stage)
		switch entry.Status {
		case models.TraceCompleted:
			green.Fprintf(w, "%-9s", entry.Status)
		case models.TraceSkipped:
			yellow.Fprintf(w, "%-9s", entry.Status)
		default:
			red.Fprintf(w, "%-9s", entry.Status)
		}
		fmt.Fprintf(w, " %s\n", entry.Detail)
	}

	fmt.Fprintf(w, "\nStatus: ")
	switch st.Status() {
	case models.ReportStatusCompleted:
		green.Fprintf(w, "%s\n", st.Status())
	case models.ReportStatusFailed:
		red.Fprintf(w, "%s\n", st.Status())
	default:
		yellow.Fprintf(w, "%s\n", st.Status())
	}
	if st.Quality != nil {
		fmt.Fprintf(w, "Quality: %.2f (accuracy %.2f, completeness %.2f, structure %.2f)\n",
			st.Quality.Total, st.Quality.Accuracy, st.Quality.Completeness, st.Quality.Structure)
	}
	fmt.Fprintf(w, "Retries: %d\n", st.RetryCount)
	if st.Err != nil {
		red.Fprintf(w, "Error: %s\n", st.Err)
	}
}
