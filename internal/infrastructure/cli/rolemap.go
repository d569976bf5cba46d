package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rolemapCmd = &cobra.Command{
	Use:   "rolemap",
	Short: "Map free-text job titles to canonical role types",
}

var rolemapJSONOutput bool

var rolemapSuggestCmd = &cobra.Command{
	Use:   "suggest <job-title>",
	Short: "Show scored role-type suggestions for a job title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		suggestions, err := services.RoleMap.Suggest(args[0])
		if err != nil {
			return MapError(fmt.Errorf("suggest: %w", err))
		}

		if rolemapJSONOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(suggestions)
		}

		if len(suggestions) == 0 {
			fmt.Println("No suggestions.")
			return nil
		}
		for _, s := range suggestions {
			fmt.Printf("  %-30s %.2f  %s\n", s.RoleTypeName, s.Confidence, s.Reasoning)
		}
		return nil
	},
}

var rolemapListCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted job-title mappings",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		mappings, err := services.RoleMap.List()
		if err != nil {
			return MapError(fmt.Errorf("list mappings: %w", err))
		}

		if rolemapJSONOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(mappings)
		}

		if len(mappings) == 0 {
			fmt.Println("No mappings recorded.")
			return nil
		}
		for _, m := range mappings {
			fmt.Printf("  %-30s -> %-20s %.2f (%s)\n", m.JobTitle, m.RoleTypeID, m.Confidence, m.Source)
		}
		return nil
	},
}

var rolemapSetCmd = &cobra.Command{
	Use:   "set <job-title> <role-type>",
	Short: "Create or replace a manual mapping (role by name or ID)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		mapping, err := services.RoleMap.Set(args[0], args[1])
		if err != nil {
			return MapError(fmt.Errorf("set mapping: %w", err))
		}

		fmt.Printf("Mapped %q to role type %s\n", mapping.JobTitle, mapping.RoleTypeID)
		return nil
	},
}

var rolemapThreshold float64
var rolemapRosterPath string

var rolemapAutoCmd = &cobra.Command{
	Use:   "auto",
	Short: "Auto-map unmapped job titles from a roster export",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		upload, err := services.Import.ReadUpload(cmd.Context(), rolemapRosterPath)
		if err != nil {
			return MapError(fmt.Errorf("read roster: %w", err))
		}

		report, issues, err := services.RoleMap.AutoMapFromRoster(upload.Text, rolemapThreshold)
		if err != nil {
			return MapError(fmt.Errorf("auto-map: %w", err))
		}

		for _, i := range issues {
			fmt.Printf("  %s: %s\n", i.Severity, i)
		}
		if issues.HasStructural() {
			return NewCLIError("roster unusable", "Check the roster file's header row", nil)
		}

		fmt.Printf("Auto-mapped %d titles, skipped %d below threshold %.2f\n",
			report.Mapped, report.Skipped, rolemapThreshold)
		return nil
	},
}

func init() {
	rolemapSuggestCmd.Flags().BoolVar(&rolemapJSONOutput, "json", false, "Output in JSON format")
	rolemapListCmd.Flags().BoolVar(&rolemapJSONOutput, "json", false, "Output in JSON format")
	rolemapAutoCmd.Flags().Float64Var(&rolemapThreshold, "threshold", 0.7, "Minimum confidence for auto-accepting a mapping")
	rolemapAutoCmd.Flags().StringVar(&rolemapRosterPath, "roster", "", "Path to the roster export CSV")
	_ = rolemapAutoCmd.MarkFlagRequired("roster")

	rolemapCmd.AddCommand(rolemapSuggestCmd)
	rolemapCmd.AddCommand(rolemapListCmd)
	rolemapCmd.AddCommand(rolemapSetCmd)
	rolemapCmd.AddCommand(rolemapAutoCmd)
	RootCmd.AddCommand(rolemapCmd)
}
