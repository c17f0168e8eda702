package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "leadflow-api",
	Short: "LeadFlow API - mobile CRM backend",
	Long:  `A multi-tenant CRM API: lead tracking, activity logging, engagement scoring, templated messaging, content sharing and webhook ingestion.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
