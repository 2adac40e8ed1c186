// Package main provides the prospect command line interface for enriching
// company lists without running the API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "prospect-cli",
	Short: "Company web-presence profiler",
	Long: `prospect-cli discovers and extracts company web presence: website,
contact emails, contact form, Facebook page and logo. It enriches CSV
company lists in place or profiles a single company from flags.`,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
