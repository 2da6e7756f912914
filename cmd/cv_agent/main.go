// Package main provides the entry point for the CV optimizer CLI and API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cv_agent",
	Short: "CV Optimizer",
	Long:  "CV Optimizer tailors a CV to a job posting: it extracts and compares skills, retrieves the most relevant experience, and generates an optimized CV via LLM, either one-shot or through a REST API with a conversational editing assistant.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
