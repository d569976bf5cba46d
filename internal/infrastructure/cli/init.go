package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/planport/planport/pkg/domain/calendar"
	"github.com/planport/planport/pkg/storage"
)

var initFiscalMonth int
var initFiscalDay int

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a planport workspace in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getWorkspaceRoot()
		if err != nil {
			return err
		}

		repo := storage.NewFilesystemRepository(root)
		if repo.IsInitialized() {
			fmt.Println("Workspace already initialized.")
			return nil
		}

		if err := repo.Initialize(); err != nil {
			return fmt.Errorf("initialize workspace: %w", err)
		}

		cfg := storage.WorkspaceConfig{
			FiscalYearStart: calendar.Anchor{
				Month: time.Month(initFiscalMonth),
				Day:   initFiscalDay,
			},
		}
		if err := repo.SaveConfig(cfg); err != nil {
			return fmt.Errorf("write config: %w", err)
		}

		fmt.Printf("Initialized %s/%s\n", root, storage.PlanportDir)
		fmt.Println("Add teams.yaml, epics.yaml, cycles.yaml and roletypes.yaml to describe your workspace.")
		return nil
	},
}

func init() {
	initCmd.Flags().IntVar(&initFiscalMonth, "fiscal-month", 1, "Month the financial year starts in (1-12)")
	initCmd.Flags().IntVar(&initFiscalDay, "fiscal-day", 1, "Day of the month the financial year starts on")
	RootCmd.AddCommand(initCmd)
}
