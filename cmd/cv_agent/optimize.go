package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/cv-optimizer/internal/config"
	"github.com/jonathan/cv-optimizer/internal/db"
	"github.com/jonathan/cv-optimizer/internal/ingestion"
	"github.com/jonathan/cv-optimizer/internal/llm"
	"github.com/jonathan/cv-optimizer/internal/observability"
	"github.com/jonathan/cv-optimizer/internal/pipeline"
	"github.com/jonathan/cv-optimizer/internal/types"
	"github.com/spf13/cobra"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Optimize a CV for a job posting",
	Long: `Run the full optimization pipeline once: analyze the CV structure, extract and compare skills, retrieve the most relevant experience, and generate an optimized CV.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runOptimize,
}

var (
	optConfigPath     string
	optCV             string
	optJob            string
	optJobURL         string
	optLanguage       string
	optTemperature    float64
	optMinExperiences int
	optMaxExperiences int
	optOutput         string
	optAPIKey         string
	optUseBrowser     bool
	optVerbose        bool
	optDatabaseURL    string
)

func init() {
	optimizeCmd.Flags().StringVar(&optConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	optimizeCmd.Flags().StringVar(&optCV, "cv", "", "Path to CV text file")
	optimizeCmd.Flags().StringVarP(&optJob, "job", "j", "", "Path to job posting text file (mutually exclusive with --job-url)")
	optimizeCmd.Flags().StringVar(&optJobURL, "job-url", "", "URL to fetch job posting from (mutually exclusive with --job)")
	optimizeCmd.Flags().StringVarP(&optLanguage, "language", "l", "", "Output language: en, fr or es")
	optimizeCmd.Flags().Float64Var(&optTemperature, "temperature", 0, "Generation temperature (0-2)")
	optimizeCmd.Flags().IntVar(&optMinExperiences, "min-experiences", 0, "Minimum experiences to keep")
	optimizeCmd.Flags().IntVar(&optMaxExperiences, "max-experiences", 0, "Maximum experiences to keep")
	optimizeCmd.Flags().StringVarP(&optOutput, "output", "o", "", "Write the optimized CV to a file (default: stdout)")
	optimizeCmd.Flags().BoolVar(&optUseBrowser, "use-browser", false, "Use headless browser for SPA job boards (requires Chrome)")
	optimizeCmd.Flags().BoolVarP(&optVerbose, "verbose", "v", false, "Print detailed run information")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	optimizeCmd.Flags().StringVar(&optAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	// Database URL for run persistence
	optimizeCmd.Flags().StringVar(&optDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(optimizeCmd)
}

// loadOptimizeConfig merges config file, flags, defaults and environment
// into one validated configuration. Flags that were explicitly set win
// over the config file.
func loadOptimizeConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if optConfigPath != "" {
		loadedCfg, err := config.LoadConfig(optConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loadedCfg
	}

	if cmd.Flags().Changed("cv") {
		cfg.CV = optCV
	}
	if cmd.Flags().Changed("job") {
		cfg.Job = optJob
	}
	if cmd.Flags().Changed("job-url") {
		cfg.JobURL = optJobURL
	}
	if cmd.Flags().Changed("language") {
		cfg.Language = optLanguage
	}
	if cmd.Flags().Changed("temperature") {
		cfg.Temperature = optTemperature
	}
	if cmd.Flags().Changed("min-experiences") {
		cfg.MinExperiences = optMinExperiences
	}
	if cmd.Flags().Changed("max-experiences") {
		cfg.MaxExperiences = optMaxExperiences
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = optAPIKey
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = optUseBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = optVerbose
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = optDatabaseURL
	}

	cfg = cfg.MergeWithDefaults(config.Config{
		Language:       types.DefaultLanguage,
		Temperature:    types.DefaultTemperature,
		MinExperiences: types.DefaultMinExperiences,
		MaxExperiences: types.DefaultMaxExperiences,
	})

	if cfg.CV == "" {
		return cfg, fmt.Errorf("--cv is required (via flag or config)")
	}
	if cfg.Job == "" && cfg.JobURL == "" {
		return cfg, fmt.Errorf("either --job or --job-url must be provided (via flag or config)")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.APIKey == "" {
		return cfg, fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	return cfg, nil
}

func runOptimize(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadOptimizeConfig(cmd)
	if err != nil {
		return err
	}

	cvBytes, err := os.ReadFile(cfg.CV)
	if err != nil {
		return fmt.Errorf("failed to read CV file: %w", err)
	}
	cvText := ingestion.CleanUpload(string(cvBytes))

	var jobText string
	if cfg.Job != "" {
		jobBytes, err := os.ReadFile(cfg.Job)
		if err != nil {
			return fmt.Errorf("failed to read job file: %w", err)
		}
		jobText = ingestion.CleanUpload(string(jobBytes))
	} else {
		if cfg.Verbose {
			fmt.Fprintf(os.Stdout, "Fetching job posting from %s\n", cfg.JobURL)
		}
		jobText, _, err = ingestion.IngestFromURL(ctx, cfg.JobURL, cfg.UseBrowser)
		if err != nil {
			return fmt.Errorf("failed to ingest job posting: %w", err)
		}
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig().WithTemperature(float32(cfg.Temperature)), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	state := pipeline.Run(ctx, pipeline.NewDeps(client), pipeline.State{
		CVText:  cvText,
		JobText: jobText,
		Settings: types.OptimizeSettings{
			Temperature:    cfg.Temperature,
			Language:       cfg.Language,
			MinExperiences: cfg.MinExperiences,
			MaxExperiences: cfg.MaxExperiences,
		},
	})

	printer := observability.NewPrinter(os.Stderr)
	if cfg.Verbose {
		printer.PrintRunLog(state.Logs)
		printer.PrintStructure(state.Structure)
		printer.PrintComparison(state.Comparison)
		printer.PrintSources(state.Sources)
	}

	if cfg.DatabaseURL != "" {
		saveRunRecord(ctx, cfg.DatabaseURL, state)
	}

	if state.Err != nil {
		if !cfg.Verbose {
			printer.PrintRunLog(state.Logs)
		}
		return state.Err
	}

	if optOutput != "" {
		if err := os.WriteFile(optOutput, []byte(state.OptimizedCV), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Optimized CV written to %s\n", optOutput)
		return nil
	}

	fmt.Fprintln(os.Stdout, state.OptimizedCV)
	return nil
}

// saveRunRecord persists the run outcome. Persistence failures do not
// fail the run itself.
func saveRunRecord(ctx context.Context, databaseURL string, state pipeline.State) {
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not connect to database: %v\n", err)
		return
	}
	defer database.Close()

	status := "completed"
	matchPercentage := 0.0
	if state.Err != nil {
		status = "failed"
	} else if state.Comparison != nil {
		matchPercentage = state.Comparison.Stats.MatchPercentage
	}

	if _, err := database.SaveRun(ctx, "cli", status, matchPercentage); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save run record: %v\n", err)
	}
}
