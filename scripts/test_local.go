//go:build ignore
// +build ignore

// Runs the report builder against a local CSV without AWS or Postgres:
// go run scripts/test_local.go dataset.csv
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"hotel-comparables-engine/internal/config"
	"hotel-comparables-engine/internal/services/matcher"
	"hotel-comparables-engine/internal/utils"
)

func main() {
	fmt.Println("=== Hotel Comparables Engine - Local Test ===")
	fmt.Println()

	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  Warning: Could not load .env file: %v\n", err)
	}
	_ = utils.InitLogger("warn")
	defer utils.Sync()

	if len(os.Args) < 2 {
		fmt.Println("usage: go run scripts/test_local.go <dataset.csv>")
		os.Exit(1)
	}

	content, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Printf("❌ Failed to read dataset: %v\n", err)
		os.Exit(1)
	}

	dataset, warnings := utils.NewCSVParser().ParseDataset(string(content))
	fmt.Printf("📄 Parsed %s: %d warnings\n", os.Args[1], len(warnings))
	if dataset == nil {
		fmt.Println("❌ No properties parsed")
		os.Exit(1)
	}
	fmt.Printf("   %d properties\n", dataset.Len())

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Invalid config: %v\n", err)
		os.Exit(1)
	}
	opts, err := matcher.OptionsFromConfig(cfg)
	if err != nil {
		fmt.Printf("❌ Invalid matcher options: %v\n", err)
		os.Exit(1)
	}
	m, err := matcher.NewMatcher(opts)
	if err != nil {
		fmt.Printf("❌ Failed to create matcher: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	report, err := m.BuildReport(ctx, dataset)
	if err != nil {
		fmt.Printf("❌ Report failed: %v\n", err)
		os.Exit(1)
	}

	s := report.Summary()
	fmt.Println()
	fmt.Printf("✅ Report %s (%s, %s)\n", s.ReportID, report.RatioBand, report.Ordering)
	fmt.Printf("   Rows emitted:        %d / %d\n", s.RowsEmitted, s.TotalSubjects)
	fmt.Printf("   Subjects skipped:    %d\n", s.SubjectsSkipped)
	fmt.Printf("   Without comparables: %d\n", s.SubjectsWithoutComparables)
	fmt.Printf("   Processing time:     %.3fs\n", s.ProcessingTimeSeconds)

	out := "comparables_report.csv"
	data, err := utils.ReportCSVBytes(report)
	if err == nil {
		err = os.WriteFile(out, data, 0o644)
	}
	if err != nil {
		fmt.Printf("❌ Failed to write report: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("   Written to %s\n", out)
}
