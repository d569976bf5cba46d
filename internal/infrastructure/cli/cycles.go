package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var cyclesCmd = &cobra.Command{
	Use:   "cycles",
	Short: "Inspect the financial-year and quarter calendar",
}

var cyclesFYCmd = &cobra.Command{
	Use:   "fy",
	Short: "List selectable financial years",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		fys, err := services.Calendar.FinancialYearOptions()
		if err != nil {
			return MapError(fmt.Errorf("financial years: %w", err))
		}

		for _, fy := range fys {
			fmt.Printf("  %-12s %-14s %s .. %s\n", fy.ID, fy.Label,
				fy.Start.Format("2006-01-02"), fy.End.Format("2006-01-02"))
		}
		return nil
	},
}

var cyclesCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the current financial year and quarter",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		fy, quarter, err := services.Calendar.Current()
		if err != nil {
			return MapError(fmt.Errorf("current period: %w", err))
		}

		if fy == "" {
			fmt.Println("No financial year contains today.")
			return nil
		}
		fmt.Printf("Financial year %s", fy)
		if quarter != "" {
			fmt.Printf(", %s", quarter)
		}
		fmt.Println()
		return nil
	},
}

var cyclesQuartersCmd = &cobra.Command{
	Use:   "quarters <financial-year-id>",
	Short: "List the quarters available in a financial year",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		quarters, err := services.Calendar.Quarters(args[0])
		if err != nil {
			return MapError(fmt.Errorf("quarters: %w", err))
		}

		if len(quarters) == 0 {
			fmt.Println("No quarters found for that financial year.")
			return nil
		}
		fmt.Println(strings.Join(quarters, " "))
		return nil
	},
}

func init() {
	cyclesCmd.AddCommand(cyclesFYCmd)
	cyclesCmd.AddCommand(cyclesCurrentCmd)
	cyclesCmd.AddCommand(cyclesQuartersCmd)
	RootCmd.AddCommand(cyclesCmd)
}
