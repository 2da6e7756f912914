package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/cv-optimizer/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveAddr       string
	serveUseBrowser bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for CV optimization, skill extraction and matching, job posting ingestion, and the conversational editing assistant.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Address to listen on")
	serveCmd.Flags().BoolVar(&serveUseBrowser, "use-browser", false, "Use headless browser for SPA job boards (requires Chrome)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	addr := serveAddr
	if !cmd.Flags().Changed("addr") {
		if port := os.Getenv("PORT"); port != "" {
			addr = ":" + port
		}
	}

	cfg := server.Config{
		Addr:        addr,
		APIKey:      apiKey,
		DatabaseURL: os.Getenv("DATABASE_URL"), // empty disables persistence
		UseBrowser:  serveUseBrowser,
	}

	srv, err := server.New(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
