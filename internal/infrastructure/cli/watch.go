package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/planport/planport/internal/infrastructure/watch"
	"github.com/planport/planport/pkg/domain/imports"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <inbox-dir>",
	Short: "Watch a directory for dropped exports and pre-validate them",
	Long: `Watch monitors an inbox directory for CSV drops. Each settled file is
parsed against the schema its header matches and the issues are reported.
Nothing is ever committed from watch mode; it exists to catch broken
exports before someone runs the import.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		watcher, err := watch.NewInboxWatcher(watchDebounce, services.Logger, func(ev watch.DropEvent) {
			upload, err := services.Import.ReadUpload(cmd.Context(), ev.Path)
			if err != nil {
				fmt.Printf("%s: %v\n", ev.Path, err)
				return
			}

			schema, res := parseAgainstBestSchema(upload.Text)
			if schema == "" {
				fmt.Printf("%s: header matches no known import schema\n", ev.Path)
				return
			}

			fmt.Printf("%s: %s schema, %d rows, %d errors, %d warnings\n",
				ev.Path, schema, len(res.Rows), len(res.Issues.Errors()), len(res.Issues.Warnings()))
			if schema == imports.AllocationSchema.Name {
				fmt.Printf("  %s\n", summarizeAllocations(imports.AllocationRowsFromRows(res.Rows)))
			}
			for _, i := range res.Issues {
				fmt.Printf("  %s: %s\n", i.Severity, i)
			}
		})
		if err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}

		if err := watcher.Watch(args[0]); err != nil {
			return err
		}

		fmt.Printf("Watching %s for export drops (Ctrl-C to stop)\n", args[0])
		return watcher.Run(cmd.Context())
	},
}

// parseAgainstBestSchema tries each known schema and keeps the first one
// whose required columns are all present in the header.
func parseAgainstBestSchema(text string) (string, imports.ParseResult) {
	for _, schema := range []imports.Schema{
		imports.EpicStorySchema,
		imports.StorySchema,
		imports.AllocationSchema,
		imports.RosterSchema,
	} {
		res := imports.ParseTable(text, schema)
		if !res.Issues.HasStructural() {
			return schema.Name, res
		}
	}
	return "", imports.ParseResult{}
}

// summarizeAllocations condenses an allocation drop into one line so a
// re-exported planning sheet can be sanity-checked at a glance.
func summarizeAllocations(rows []imports.AllocationRow) string {
	teams := make(map[string]struct{})
	quarters := make(map[string]struct{})
	for _, r := range rows {
		teams[imports.FoldName(r.TeamName)] = struct{}{}
		quarters[imports.FoldName(r.Quarter)] = struct{}{}
	}
	return fmt.Sprintf("%d allocation rows across %d teams and %d quarters",
		len(rows), len(teams), len(quarters))
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", time.Second, "Settle time before a dropped file is read")
	RootCmd.AddCommand(watchCmd)
}
