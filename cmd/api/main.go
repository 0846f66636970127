package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/attendly/core/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "attendly",
		Short: "Attendly API Server",
		Long:  `Attendly is an employee attendance system with clock-in/out tracking, daily task logs, a holiday calendar and monthly reporting.`,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewUserCommand())
	rootCmd.AddCommand(commands.NewHolidaysCommand())
	rootCmd.AddCommand(commands.NewExportCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
