package cli

import (
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "planport",
	Version: Version,
	Short:   "Bulk import and reconciliation for capacity planning data",
	Long: `Planport ingests spreadsheet exports (epic/story trackers, planning
allocations, HR rosters), reconciles them against the workspace's teams,
epics and cycle calendar, and emits validated, percentage-normalized
allocation records ready for import.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	return RootCmd.Execute()
}
