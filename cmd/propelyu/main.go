package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "propelyu",
	Short:         "Propelyu advertisement API",
	Long:          "Propelyu serves the advertisement API and runs its maintenance tasks.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	// Server
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)
	rootCmd.AddCommand(scheduleListCmd)

	// Database
	rootCmd.AddCommand(dbIndexesCmd)
	rootCmd.AddCommand(createAdminCmd)

	// Price model
	rootCmd.AddCommand(modelTrainCmd)
}
