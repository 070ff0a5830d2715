package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"codeatlas/internal/config"
	"codeatlas/internal/crawler"
	"codeatlas/internal/pipeline"
	"codeatlas/internal/storage"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "codeatlas",
		Short: "Repository symbol extraction and dependency analysis",
	}
	dbPath   string
	jsonOut  bool
	exported bool
	category string
	filePath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Default DB path is local to the project
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "codeatlas.db", "Path to the local analysis database (SQLite)")

	scanCmd.Flags().BoolVar(&jsonOut, "json", false, "Print the full analysis result as JSON")

	symbolsCmd.Flags().BoolVar(&exported, "exported", false, "Only exported symbols")
	symbolsCmd.Flags().StringVar(&category, "category", "", "Filter by category (function, class, ...)")
	symbolsCmd.Flags().StringVar(&filePath, "file", "", "Filter by file path")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(symbolsCmd)
	rootCmd.AddCommand(depsCmd)
}

// initStore initializes the SQLite store, honoring the CODEATLAS_DB override.
func initStore() (*storage.SQLiteStore, error) {
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		return nil, err
	}
	path := dbPath
	if !rootCmd.PersistentFlags().Changed("db") && cfg.Storage.DBPath != "" {
		path = cfg.Storage.DBPath
	}
	return storage.NewSQLiteStore(path)
}

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Analyze a project and save symbols and dependencies locally",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig("config.yaml")
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		root := cfg.Project.Root
		if len(args) > 0 {
			root = args[0]
		}
		absRoot, err := filepath.Abs(root)
		if err != nil {
			log.Fatalf("Failed to resolve path: %v", err)
		}

		fmt.Printf("📂 Scanning directory: %s\n", absRoot)

		// 1. Discover source files
		cr := crawler.NewCrawler()
		files, err := cr.ScanProject(absRoot)
		if err != nil {
			log.Fatalf("Scan failed: %v", err)
		}
		fmt.Printf("🗂  Found %d files.\n", len(files))

		// 2. Run the analysis pipeline
		p := pipeline.New(pipeline.Options{
			Workers:       cfg.Analysis.Workers,
			ParseTimeout:  time.Duration(cfg.Analysis.ParseTimeoutMS) * time.Millisecond,
			CoreLanguages: cfg.Analysis.CoreLanguages,
		})

		fmt.Println("🚀 Analyzing...")
		start := time.Now()
		ctx := context.Background()
		result, err := p.Analyze(ctx, files)
		if err != nil {
			log.Fatalf("Analysis failed: %v", err)
		}
		fmt.Printf("✅ Analysis done in %v. %s\n", time.Since(start), result.Summary())
		for _, rec := range result.Errors {
			log.Printf("⚠️  %s: %s", rec.Stage, rec.Message)
		}

		if jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				log.Fatalf("Failed to encode result: %v", err)
			}
		}

		// 3. Save to DB
		store, err := initStore()
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer store.Close()

		fmt.Println("💾 Saving to local database...")
		if err := store.SaveResult(ctx, result); err != nil {
			log.Fatalf("Failed to save result: %v", err)
		}

		fmt.Printf("🎉 Scan complete! Database: %s\n", dbPath)
	},
}

var symbolsCmd = &cobra.Command{
	Use:   "symbols [name]",
	Short: "Query saved symbols by name, category or file",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := ""
		if len(args) > 0 {
			name = args[0]
		}

		store, err := initStore()
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer store.Close()

		entries, err := store.FindSymbols(context.Background(), name, category, filePath, exported)
		if err != nil {
			log.Fatalf("Query failed: %v", err)
		}
		if len(entries) == 0 {
			fmt.Println("No symbols found. Run 'codeatlas scan' first?")
			return
		}

		for _, e := range entries {
			marker := " "
			if e.Symbol.Exported {
				marker = "E"
			}
			fmt.Printf("%5d %s %-10s %-30s %s:%d\n",
				e.ID, marker, e.Symbol.Category, e.Symbol.Name, e.File, e.Symbol.StartLine)
		}
		fmt.Printf("\n%d symbols.\n", len(entries))
	},
}

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Show the saved dependency analysis (cycles, orphans, hotspots, clusters)",
	Run: func(cmd *cobra.Command, args []string) {
		store, err := initStore()
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer store.Close()

		analysis, err := store.LoadAnalysis(context.Background())
		if err != nil {
			log.Fatalf("Failed to load analysis: %v", err)
		}

		fmt.Printf("📊 Graph: %d nodes, %d edges\n", len(analysis.Graph.Nodes), len(analysis.Graph.Edges))

		fmt.Printf("\n🔁 Circular dependencies: %d\n", len(analysis.CircularDependencies))
		for _, cycle := range analysis.CircularDependencies {
			fmt.Print("  ")
			for i, id := range cycle {
				if i > 0 {
					fmt.Print(" -> ")
				}
				fmt.Print(id)
			}
			fmt.Println()
		}

		fmt.Printf("\n🏝  Orphaned symbols: %d\n", len(analysis.OrphanedSymbols))
		fmt.Printf("🔥 Critical dependencies: %d\n", len(analysis.CriticalDependencies))
		for _, id := range analysis.CriticalDependencies {
			fmt.Printf("  %d (%s)\n", id, analysis.Graph.Nodes[id])
		}

		fmt.Printf("\n🧩 Clusters: %d\n", len(analysis.Clusters))
		for id, members := range analysis.Clusters {
			fmt.Printf("  cluster %d: %d symbols\n", id, len(members))
		}
	},
}
