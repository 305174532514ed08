package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hurttlocker/shelfgraph/internal/config"
	"github.com/hurttlocker/shelfgraph/internal/features"
	"github.com/hurttlocker/shelfgraph/internal/ingest"
	"github.com/hurttlocker/shelfgraph/internal/store"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	switch os.Args[1] {
	case "ingest":
		if err := runIngest(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "features":
		if err := runFeatures(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "stats":
		if err := runStats(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "config":
		if err := runConfig(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version", "--version", "-v":
		fmt.Printf("shelfgraph %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runIngest(args []string) error {
	var (
		metaPath   string
		noDB       bool
		flagOut    string
		flagDB     string
		configPath string
	)

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--no-db":
			noDB = true
		case args[i] == "--out":
			i++
			if i >= len(args) {
				return fmt.Errorf("--out requires a directory")
			}
			flagOut = args[i]
		case args[i] == "--db":
			i++
			if i >= len(args) {
				return fmt.Errorf("--db requires a path")
			}
			flagDB = args[i]
		case args[i] == "--config":
			i++
			if i >= len(args) {
				return fmt.Errorf("--config requires a path")
			}
			configPath = args[i]
		case strings.HasPrefix(args[i], "-"):
			return fmt.Errorf("unknown flag: %s", args[i])
		default:
			if metaPath != "" {
				return fmt.Errorf("only one metadata file may be given")
			}
			metaPath = args[i]
		}
	}

	if metaPath == "" {
		return fmt.Errorf("usage: shelfgraph ingest <meta-file> [--out DIR] [--db PATH] [--no-db]")
	}

	cfg, err := config.ResolveConfig(config.ResolveOptions{
		ConfigPath: configPath,
		CLIDBPath:  flagDB,
		CLIOutDir:  flagOut,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Ingesting %s...\n", metaPath)
	tables, result, err := ingest.ParseFile(metaPath)
	if err != nil {
		return err
	}

	outDir := cfg.OutputDir.Value
	if err := ingest.WriteCSV(outDir, tables); err != nil {
		return err
	}

	if !noDB {
		s, err := store.NewStore(store.StoreConfig{DBPath: cfg.DBPath.Value})
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer s.Close()

		if err := s.ReplaceTables(context.Background(), tables); err != nil {
			return fmt.Errorf("storing tables: %w", err)
		}
	}

	fmt.Print(ingest.FormatResult(result))
	fmt.Printf("CSV tables written to %s/\n", outDir)
	return nil
}

func runFeatures(args []string) error {
	var (
		reviewsPath string
		flagDB      string
		flagOut     string
		configPath  string
	)

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--reviews":
			i++
			if i >= len(args) {
				return fmt.Errorf("--reviews requires a path")
			}
			reviewsPath = args[i]
		case args[i] == "--db":
			i++
			if i >= len(args) {
				return fmt.Errorf("--db requires a path")
			}
			flagDB = args[i]
		case args[i] == "--out":
			i++
			if i >= len(args) {
				return fmt.Errorf("--out requires a path")
			}
			flagOut = args[i]
		case args[i] == "--config":
			i++
			if i >= len(args) {
				return fmt.Errorf("--config requires a path")
			}
			configPath = args[i]
		case strings.HasPrefix(args[i], "-"):
			return fmt.Errorf("unknown flag: %s", args[i])
		default:
			return fmt.Errorf("unexpected argument: %s", args[i])
		}
	}

	if reviewsPath != "" && flagDB != "" {
		return fmt.Errorf("specify either --reviews or --db, not both")
	}

	cfg, err := config.ResolveConfig(config.ResolveOptions{
		ConfigPath: configPath,
		CLIDBPath:  flagDB,
	})
	if err != nil {
		return err
	}

	outPath := flagOut
	if outPath == "" {
		outPath = cfg.FeaturesPath.Value
	}

	var reviews []features.Review
	var s store.Store

	if reviewsPath != "" {
		reviews, err = features.ReadReviewsCSV(reviewsPath)
		if err != nil {
			return err
		}
	} else {
		s, err = store.NewStore(store.StoreConfig{DBPath: cfg.DBPath.Value})
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer s.Close()

		reviews, err = s.ListReviews(context.Background())
		if err != nil {
			return err
		}
	}

	rows := features.Compute(reviews)
	if err := features.WriteCSV(outPath, rows); err != nil {
		return err
	}

	if s != nil {
		if err := s.ReplaceFeatures(context.Background(), rows); err != nil {
			return fmt.Errorf("storing features: %w", err)
		}
	}

	fmt.Printf("Wrote %d reviewer feature records to %s\n", len(rows), outPath)
	return nil
}

func runStats(args []string) error {
	var flagDB, configPath string

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--db":
			i++
			if i >= len(args) {
				return fmt.Errorf("--db requires a path")
			}
			flagDB = args[i]
		case args[i] == "--config":
			i++
			if i >= len(args) {
				return fmt.Errorf("--config requires a path")
			}
			configPath = args[i]
		default:
			return fmt.Errorf("unexpected argument: %s", args[i])
		}
	}

	cfg, err := config.ResolveConfig(config.ResolveOptions{
		ConfigPath: configPath,
		CLIDBPath:  flagDB,
	})
	if err != nil {
		return err
	}

	s, err := store.NewStore(store.StoreConfig{DBPath: cfg.DBPath.Value})
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer s.Close()

	st, err := s.Stats(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Products:          %d\n", st.ProductCount)
	fmt.Printf("Edges:             %d\n", st.EdgeCount)
	fmt.Printf("Reviews:           %d\n", st.ReviewCount)
	fmt.Printf("Reviewer features: %d\n", st.FeatureCount)
	fmt.Printf("DB size:           %d bytes\n", st.DBSizeBytes)
	return nil
}

func runConfig(args []string) error {
	var configPath string
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--config":
			i++
			if i >= len(args) {
				return fmt.Errorf("--config requires a path")
			}
			configPath = args[i]
		default:
			return fmt.Errorf("unexpected argument: %s", args[i])
		}
	}

	cfg, err := config.ResolveConfig(config.ResolveOptions{ConfigPath: configPath})
	if err != nil {
		return err
	}

	fmt.Printf("Config file: %s\n\n", cfg.ConfigPath)
	printValue("db_path", cfg.DBPath, store.ExpandPath(store.DefaultDBPath))
	printValue("output_dir", cfg.OutputDir, "")
	printValue("features_path", cfg.FeaturesPath, "")
	return nil
}

func printValue(name string, v config.ResolvedValue, fallback string) {
	value := v.Value
	source := string(v.Source)
	from := v.From
	if value == "" {
		value = fallback
		source = string(config.SourceDefault)
		from = "built-in default"
	}
	if from != "" {
		fmt.Printf("  %-14s %s  (%s: %s)\n", name, value, source, from)
		return
	}
	fmt.Printf("  %-14s %s  (%s)\n", name, value, source)
}

func printUsage() {
	fmt.Printf(`shelfgraph %s — co-purchase metadata ingestion and reviewer profiling

Usage:
  shelfgraph <command> [arguments]

Commands:
  ingest <meta-file>  Parse a product metadata dump (plain or .gz) into
                      products/edges/reviews CSV tables and the SQLite store
  features            Compute per-reviewer features from the store or a
                      reviews CSV
  stats               Show table row counts and database size
  config              Show resolved configuration and value sources
  version             Print version

Ingest Flags:
  --out DIR           Output directory for CSV tables
  --db PATH           SQLite database path
  --no-db             Write CSV only, skip the database

Features Flags:
  --reviews FILE      Read reviews from a CSV instead of the database
  --db PATH           SQLite database path
  --out FILE          Output path for the feature table

Flags:
  --config PATH       Config file (default ~/.shelfgraph/config.yaml)
  -h, --help          Show this help message
  -v, --version       Print version
`, version)
}
