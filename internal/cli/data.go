package cli

import (
	"context"
	"fmt"
	"io"

	"asset-report/internal/config"
	"asset-report/internal/database"
	"asset-report/internal/models"
	"asset-report/internal/utils"
	"asset-report/internal/workflow"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// previewLimit caps how many raw records are listed per collection
const previewLimit = 10

// NewDataCommand creates the 'reportctl data' command
func NewDataCommand() *cobra.Command {
	var userID, start, end string

	cmd := &cobra.Command{
		Use:   "data",
		Short: "Show the asset records a report would read",
		Long: `Data queries the fixed asset, virtual asset and income collections for
one user and window, prints the first records of each and the snapshots
the collect stages would build from them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			window, err := models.NewWindow(start, end)
			if err != nil {
				return err
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			mongoClient, err := database.NewMongoDBClient(cfg.MongoDB)
			if err != nil {
				return fmt.Errorf("connect to MongoDB: %w", err)
			}
			defer mongoClient.Close()

			return printAssetData(cmd.Context(), cmd.OutOrStdout(), mongoClient, userID, window)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User to inspect (required)")
	cmd.Flags().StringVar(&start, "start", "", "Window start, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&end, "end", "", "Window end, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func printAssetData(ctx context.Context, w io.Writer, store workflow.AssetStore, userID string, window models.Window) error {
	cyan := color.New(color.FgCyan, color.Bold)
	yellow := color.New(color.FgYellow)

	cyan.Fprintf(w, "=== Asset data for %s over %s ===\n\n", userID, window)

	fixed, err := store.QueryFixedAssets(ctx, userID, window)
	if err != nil {
		return fmt.Errorf("query fixed assets: %w", err)
	}
	cyan.Fprintln(w, "Fixed assets:")
	fmt.Fprintf(w, "Found %d records\n", len(fixed))
	for i, a := range fixed {
		if i >= previewLimit {
			fmt.Fprintf(w, "  ... and %d more records\n", len(fixed)-previewLimit)
			break
		}
		fmt.Fprintf(w, "  [%d] %s (%s) bought %s for %s, now %s, %s\n",
			i+1, a.Name, a.Category, utils.FormatDate(a.PurchaseDate), a.PurchasePrice.StringFixed(2), a.CurrentValue.StringFixed(2), a.Status)
	}
	fmt.Fprintln(w)

	virtual, err := store.QueryVirtualAssets(ctx, userID, window)
	if err != nil {
		return fmt.Errorf("query virtual assets: %w", err)
	}
	cyan.Fprintln(w, "Virtual assets:")
	fmt.Fprintf(w, "Found %d records\n", len(virtual))
	for i, a := range virtual {
		if i >= previewLimit {
			fmt.Fprintf(w, "  ... and %d more records\n", len(virtual)-previewLimit)
			break
		}
		expiry := "no expiry"
		if a.ExpiryDate != nil {
			expiry = "expires " + utils.FormatDate(*a.ExpiryDate)
		}
		fmt.Fprintf(w, "  [%d] %s (%s) cost %s, %s, %s, used %d/%d\n",
			i+1, a.Name, a.Category, a.Cost.StringFixed(2), expiry, a.Status, a.UsageCount, a.ExpectedUsage)
	}
	fmt.Fprintln(w)

	income, err := store.QueryIncome(ctx, userID, window)
	if err != nil {
		return fmt.Errorf("query income: %w", err)
	}
	cyan.Fprintln(w, "Income:")
	fmt.Fprintf(w, "Found %d records\n", len(income))
	for i, r := range income {
		if i >= previewLimit {
			fmt.Fprintf(w, "  ... and %d more records\n", len(income)-previewLimit)
			break
		}
		fmt.Fprintf(w, "  [%d] %s %s from %s asset %s (%s)\n",
			i+1, utils.FormatDate(r.Date), r.Amount.StringFixed(2), r.AssetKind, r.AssetID, r.Source)
	}
	fmt.Fprintln(w)

	fixedSnap, err := workflow.CollectFixed(ctx, store, userID, window)
	if err != nil {
		return err
	}
	virtualSnap, err := workflow.CollectVirtual(ctx, store, userID, window)
	if err != nil {
		return err
	}
	cyan.Fprintln(w, "Snapshots:")
	fmt.Fprintf(w, "  Fixed: %d assets, value %s, income %s, health %.2f\n",
		fixedSnap.TotalCount, fixedSnap.TotalCurrentValue.StringFixed(2), fixedSnap.TotalIncome.StringFixed(2), fixedSnap.HealthScore)
	fmt.Fprintf(w, "  Virtual: %d assets, cost %s, wasted %s, efficiency %.2f\n",
		virtualSnap.TotalCount, virtualSnap.TotalCost.StringFixed(2), virtualSnap.WastedCost.StringFixed(2), virtualSnap.EfficiencyScore)

	if fixedSnap.IsEmpty() && virtualSnap.IsEmpty() {
		yellow.Fprintln(w, "\nWARNING: No data found. The window may be empty or the user id may be wrong.")
	}
	return nil
}
