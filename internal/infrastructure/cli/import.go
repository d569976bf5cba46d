package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/planport/planport/pkg/domain/allocation"
	"github.com/planport/planport/pkg/domain/wizard"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import tracker exports into allocation records",
}

var (
	importEpicsPath   string
	importStoriesPath string
	importFY          string
	importQuarter     string
	importDryRun      bool
	importJSONOutput  bool
)

var importRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the import pipeline non-interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		sess, batch, err := services.Import.Run(cmd.Context(),
			importEpicsPath, importStoriesPath, importFY, importQuarter, importDryRun)
		if err != nil {
			return MapError(fmt.Errorf("import run: %w", err))
		}

		if importJSONOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(importSummary(sess, batch != nil))
		}

		printIssues(sess)

		switch {
		case sess.Step == wizard.StepUpload || sess.StepIssues(wizard.StepValidate).HasStructural():
			fmt.Println("Import blocked; fix the errors above and re-run.")
			return NewCLIError("import blocked", "Check the uploaded files and calendar selection", nil)
		case importDryRun:
			fmt.Printf("Dry run: %d allocations would be imported for %s %s\n",
				len(sess.Valid), sess.FinancialYearID, sess.Quarter)
			printPreview(sess.Valid)
		default:
			fmt.Printf("Imported batch %s: %d validated allocations\n", sess.BatchID, len(sess.Valid))
		}
		return nil
	},
}

func importSummary(sess wizard.Session, committed bool) map[string]interface{} {
	return map[string]interface{}{
		"batchId":     sess.BatchID,
		"step":        sess.Step,
		"fy":          sess.FinancialYearID,
		"quarter":     sess.Quarter,
		"allocations": sess.Valid,
		"errors":      sess.AllIssues().Errors(),
		"warnings":    sess.AllIssues().Warnings(),
		"committed":   committed,
	}
}

func printIssues(sess wizard.Session) {
	issues := sess.AllIssues()
	for _, i := range issues.Errors() {
		fmt.Printf("  error: %s\n", i)
	}
	for _, i := range issues.Warnings() {
		fmt.Printf("  warning: %s\n", i)
	}
}

func printPreview(valid []allocation.Result) {
	for _, a := range valid {
		fmt.Printf("  %-20s %-28s %-12s %-10s %3d%%\n", a.TeamName, a.EpicName, a.EpicType, a.Sprint, a.Percentage)
	}
}

func init() {
	importRunCmd.Flags().StringVar(&importEpicsPath, "epics", "", "Path to the epic export CSV")
	importRunCmd.Flags().StringVar(&importStoriesPath, "stories", "", "Path to the story export CSV")
	importRunCmd.Flags().StringVar(&importFY, "fy", "", "Target financial year ID (ISO start date)")
	importRunCmd.Flags().StringVar(&importQuarter, "quarter", "", "Target quarter (Q1-Q4)")
	importRunCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Preview without committing the batch")
	importRunCmd.Flags().BoolVar(&importJSONOutput, "json", false, "Output in JSON format")
	_ = importRunCmd.MarkFlagRequired("epics")
	_ = importRunCmd.MarkFlagRequired("stories")
	_ = importRunCmd.MarkFlagRequired("fy")
	_ = importRunCmd.MarkFlagRequired("quarter")

	importCmd.AddCommand(importRunCmd)
	RootCmd.AddCommand(importCmd)
}
