//go:build ignore
// +build ignore

// Checks the configuration and the dataset database.
// Usage: go run scripts/test_connection.go
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"hotel-comparables-engine/internal/config"
	"hotel-comparables-engine/internal/services/database"
)

var checkedVars = []string{
	"AWS_REGION",
	"S3_BUCKET",
	"DATABASE_URL",
	"SES_SENDER_EMAIL",
	"REPORT_RECIPIENTS",
	"REPORT_WEBHOOK_URL",
}

func main() {
	fmt.Println("Configuration:")
	for _, name := range checkedVars {
		reportVar(name)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("  FAIL config: %v\n", err)
		os.Exit(1)
	}
	band, ordering, _ := cfg.Policies()
	fmt.Printf("  ok   policies: ratio band %s, ordering %s, %d workers\n", band, ordering, cfg.ReportWorkers)

	fmt.Println("\nDatabase:")
	if err := checkDatabase(cfg); err != nil {
		fmt.Printf("  FAIL %v\n", err)
		os.Exit(1)
	}
}

func reportVar(name string) {
	value := os.Getenv(name)
	if value == "" {
		fmt.Printf("  --   %s not set\n", name)
		return
	}
	if name == "DATABASE_URL" && len(value) > 12 {
		value = value[:8] + "..." + value[len(value)-4:]
	}
	fmt.Printf("  ok   %s=%s\n", name, value)
}

func checkDatabase(cfg *config.Config) error {
	db, err := database.New(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fmt.Println("  ok   connected")

	datasets, err := database.NewPropertyRepository(db).ListDatasets(ctx)
	if err != nil {
		fmt.Println("  --   properties table missing, run scripts/init_db.go")
		return nil
	}
	if len(datasets) == 0 {
		fmt.Println("  --   no datasets loaded")
	}
	for _, d := range datasets {
		fmt.Printf("  ok   dataset %q: %d properties\n", d.Name, d.Properties)
	}
	return nil
}
