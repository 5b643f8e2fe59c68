//go:build ignore
// +build ignore

// Creates the comparables database and properties table, and optionally
// seeds it: go run scripts/init_db.go [dataset.csv] [dataset-name]
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"

	"hotel-comparables-engine/internal/services/database"
	"hotel-comparables-engine/internal/utils"
)

func main() {
	fmt.Println("=== Database Initialization Script ===")
	fmt.Println()

	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  Warning: Could not load .env file: %v\n", err)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Println("❌ DATABASE_URL environment variable not set")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	connConfig, err := pgx.ParseConfig(databaseURL)
	if err != nil {
		fmt.Printf("❌ Invalid DATABASE_URL: %v\n", err)
		os.Exit(1)
	}
	dbName := connConfig.Database

	// Connect to the default 'postgres' database to create ours.
	adminConfig := connConfig.Copy()
	adminConfig.Database = "postgres"

	fmt.Println("📡 Connecting to PostgreSQL server...")
	adminConn, err := pgx.ConnectConfig(ctx, adminConfig)
	if err != nil {
		fmt.Printf("❌ Failed to connect to PostgreSQL: %v\n", err)
		os.Exit(1)
	}

	var exists bool
	err = adminConn.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", dbName).Scan(&exists)
	if err != nil {
		fmt.Printf("❌ Failed to check database existence: %v\n", err)
		adminConn.Close(ctx)
		os.Exit(1)
	}

	if !exists {
		fmt.Printf("📦 Creating '%s' database...\n", dbName)
		if _, err := adminConn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{dbName}.Sanitize()); err != nil {
			fmt.Printf("❌ Failed to create database: %v\n", err)
			adminConn.Close(ctx)
			os.Exit(1)
		}
	} else {
		fmt.Printf("✅ Database '%s' already exists\n", dbName)
	}
	adminConn.Close(ctx)

	db, err := database.NewFromURL(databaseURL)
	if err != nil {
		fmt.Printf("❌ Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	fmt.Println("🚀 Creating properties table...")
	if _, err := db.ExecContext(ctx, database.PropertiesSchema); err != nil {
		fmt.Printf("❌ Failed to execute schema: %v\n", err)
		os.Exit(1)
	}

	repo := database.NewPropertyRepository(db)
	datasetName := database.DefaultDatasetName
	if len(os.Args) > 2 {
		datasetName = os.Args[2]
	}

	if len(os.Args) > 1 {
		content, err := os.ReadFile(os.Args[1])
		if err != nil {
			fmt.Printf("❌ Failed to read %s: %v\n", os.Args[1], err)
			os.Exit(1)
		}

		dataset, warnings := utils.NewCSVParser().ParseDataset(string(content))
		for _, w := range warnings {
			fmt.Printf("   ⚠️  %v\n", w)
		}
		if dataset == nil {
			fmt.Println("❌ No properties to load")
			os.Exit(1)
		}

		n, err := repo.BulkLoad(ctx, datasetName, dataset)
		if err != nil {
			fmt.Printf("❌ Failed to load properties: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✅ Loaded %d properties into dataset '%s'\n", n, datasetName)
	}

	count, err := repo.Count(ctx, datasetName)
	if err != nil {
		fmt.Printf("⚠️  Warning: Could not count properties: %v\n", err)
	} else {
		fmt.Printf("   📦 Properties in dataset '%s': %d\n", datasetName, count)
	}

	fmt.Println()
	fmt.Println("🎉 Database initialization completed successfully!")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Test the connection: go run scripts/test_connection.go")
	fmt.Println("  2. Try a lookup: go run ./cmd/comps find 0 --source postgres")
}
