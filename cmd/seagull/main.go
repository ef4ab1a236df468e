package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/TobiSchelling/seagull/internal/analyze"
	"github.com/TobiSchelling/seagull/internal/config"
	"github.com/TobiSchelling/seagull/internal/database"
	"github.com/TobiSchelling/seagull/internal/ingest"
	"github.com/TobiSchelling/seagull/internal/llm"
	"github.com/TobiSchelling/seagull/internal/report"
	"github.com/TobiSchelling/seagull/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "seagull",
	Short:   "App review analysis",
	Long:    "Seagull stores app store reviews and produces monthly, quarterly, and yearly rating and theme summaries.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(appsCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("seagull", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/seagull/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure the model provider and data directory.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status [app-id]",
	Short: "Show stored data and analysis state for an app",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openApp(args[0])
		if err != nil {
			return err
		}
		defer db.Close()

		info, err := db.AppInfo()
		if err != nil {
			return err
		}
		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Printf("App: %s (%s, %s)\n\n", info.AppName, info.AppID, info.Store)
		fmt.Println("Reviews:")
		fmt.Printf("  Stored: %d\n", stats.TotalReviews)
		fmt.Printf("  With text: %d\n", stats.ReviewsWithText)
		first, last, err := db.ReviewDateRange()
		if err != nil {
			return err
		}
		if first != "" {
			fmt.Printf("  Date range: %s to %s\n", first, last)
		}
		fmt.Println("\nAnalysis:")
		fmt.Printf("  Monthly periods: %d\n", stats.MonthlyPeriods)
		fmt.Printf("  Themes: %d\n", stats.Themes)
		fmt.Printf("  Runs: %d\n", stats.Runs)
		if info.LastAnalyzedDate != "" {
			fmt.Printf("  Analyzed through: %s\n", info.LastAnalyzedDate)
		}
		if run, _ := db.LastRun(); run != nil {
			fmt.Printf("  Last run: %s to %s (%d new months, %d skipped)\n",
				run.StartDate, run.EndDate, run.MonthsAnalyzed, run.MonthsSkipped)
		}
		return nil
	},
}

// --- apps command ---

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "List tracked apps",
	RunE: func(cmd *cobra.Command, args []string) error {
		apps, err := database.ListApps(cfg.GetDataDir())
		if err != nil {
			return err
		}
		if len(apps) == 0 {
			fmt.Println("No apps yet. Ingest reviews with: seagull ingest <app-id> <file>")
			return nil
		}

		sort.Slice(apps, func(i, j int) bool { return apps[i].AppID < apps[j].AppID })
		fmt.Println("Tracked apps:")
		fmt.Println()
		for _, app := range apps {
			analyzed := "not analyzed"
			if app.LastAnalyzedDate != "" {
				analyzed = "analyzed through " + app.LastAnalyzedDate
			}
			fmt.Printf("  %s (%s): %d reviews, %s\n", app.AppID, app.Store, app.TotalReviews, analyzed)
		}
		return nil
	},
}

var appsDeleteCmd = &cobra.Command{
	Use:   "delete [app-id]",
	Short: "Delete ALL data for an app",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, err := database.DeleteApp(cfg.GetDataDir(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %s (%d reviews)\n", args[0], count)
		return nil
	},
}

func init() {
	appsCmd.AddCommand(appsDeleteCmd)
}

// --- ingest command ---

var (
	ingestName  string
	ingestStore string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [app-id] [file]",
	Short: "Ingest a JSON review export for an app",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		appID, file := args[0], args[1]

		db, err := openApp(appID)
		if err != nil {
			return err
		}
		defer db.Close()

		name := ingestName
		if name == "" {
			name = appID
		}
		store := ingestStore
		if store == "" {
			store = database.SourceGooglePlay
		}
		if err := db.InitMetadata(appID, name, store); err != nil {
			return fmt.Errorf("initializing metadata: %w", err)
		}

		result, err := ingest.New(db).Ingest(ingest.NewFileSupplier(file))
		if err != nil {
			return err
		}

		fmt.Println("Ingestion complete:")
		fmt.Printf("  Total found: %d\n", result.TotalFound)
		fmt.Printf("  New reviews: %d\n", result.NewReviews)
		fmt.Printf("  Duplicates skipped: %d\n", result.Duplicates)
		if result.Skipped > 0 {
			fmt.Printf("  Invalid skipped: %d\n", result.Skipped)
		}
		for source, n := range result.Sources {
			fmt.Printf("  %s: %d\n", source, n)
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestName, "name", "", "App display name (defaults to the app ID)")
	ingestCmd.Flags().StringVar(&ingestStore, "store", "", "Primary store tag (default google_play)")
}

// --- analyze command ---

var (
	analyzeStart  string
	analyzeEnd    string
	analyzeForce  bool
	analyzeWeekly bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [app-id]",
	Short: "Run period analysis over stored reviews",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openApp(args[0])
		if err != nil {
			return err
		}
		defer db.Close()

		start, end := analyzeStart, analyzeEnd
		if start == "" || end == "" {
			first, last, err := db.ReviewDateRange()
			if err != nil {
				return err
			}
			if first == "" {
				return fmt.Errorf("no reviews stored for %s; ingest some first", args[0])
			}
			if start == "" {
				start = first
			}
			if end == "" {
				end = last
			}
		}

		provider := llm.CreateProvider(
			cfg.LLM.Provider, cfg.LLM.Model, cfg.LLM.BaseURL, cfg.LLM.APIKeyEnv,
			cfg.LLM.OllamaModel, cfg.LLM.OllamaURL,
		)
		if provider == nil {
			fmt.Println("Warning: no model provider available; themes will not be extracted.")
		}

		fmt.Printf("Analyzing %s from %s to %s\n", args[0], start, end)
		analyzer := analyze.New(db, provider, cfg.Analysis.MinSample, cfg.LLM.Temperature)
		result, err := analyzer.Run(context.Background(), analyze.Options{
			StartDate:     start,
			EndDate:       end,
			ForceRerun:    analyzeForce,
			IncludeWeekly: analyzeWeekly,
			Progress: func(current, total int, message string) {
				fmt.Printf("  [%d/%d] %s\n", current, total, message)
			},
		})
		if err != nil {
			return err
		}

		fmt.Println("\nAnalysis complete:")
		fmt.Printf("  Months analyzed: %d\n", result.MonthsAnalyzed)
		fmt.Printf("  Months skipped: %d\n", result.MonthsSkipped)
		fmt.Printf("  Quarters: %d\n", result.Quarters)
		fmt.Printf("  Years: %d\n", result.Years)
		if result.Weeks > 0 {
			fmt.Printf("  Weeks: %d\n", result.Weeks)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeStart, "start", "", "Start date (YYYY-MM-DD, defaults to earliest review)")
	analyzeCmd.Flags().StringVar(&analyzeEnd, "end", "", "End date (YYYY-MM-DD, defaults to latest review)")
	analyzeCmd.Flags().BoolVar(&analyzeForce, "force", false, "Purge prior analysis and reprocess every month")
	analyzeCmd.Flags().BoolVar(&analyzeWeekly, "weekly", false, "Also compute weekly rating statistics")
}

// --- clear command ---

var clearCmd = &cobra.Command{
	Use:   "clear [app-id]",
	Short: "Delete analysis results but keep raw reviews",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openApp(args[0])
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.ClearAnalysis(); err != nil {
			return err
		}
		fmt.Printf("Cleared analysis for %s (reviews kept)\n", args[0])
		return nil
	},
}

// --- report command ---

var reportCmd = &cobra.Command{
	Use:   "report [app-id]",
	Short: "Print the markdown analysis report for an app",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openApp(args[0])
		if err != nil {
			return err
		}
		defer db.Close()

		markdown, err := report.Build(db)
		if err != nil {
			return err
		}
		fmt.Println(markdown)
		return nil
	},
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local results server",
	RunE: func(cmd *cobra.Command, args []string) error {
		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(cfg.GetDataDir(), port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (defaults to config)")
}

func openApp(appID string) (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return database.OpenApp(dataDir, appID)
}
