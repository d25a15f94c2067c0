// Package main provides a CLI tool to seed the SAQ question banks.
// Usage: go run cmd/seed-questions/main.go [-type saq_a] [-force]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/paysec-tools/saqadvisor_backend/internal/database"
	"github.com/paysec-tools/saqadvisor_backend/internal/models"
)

func main() {
	// Define command line flags
	qTypeFlag := flag.String("type", "", "Seed only this SAQ type (e.g. saq_a, saq_d_merchant); defaults to all")
	force := flag.Bool("force", false, "Drop the existing question bank(s) before seeding")
	envFile := flag.String("env", "", "Path to .env file (defaults to .env in current dir or backend dir)")
	dryRun := flag.Bool("dry-run", false, "Print what would be seeded without writing to database")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Seeds the SAQ question banks into the SAQ Advisor database.\n\n")
		fmt.Fprintf(os.Stderr, "Configuration is loaded from .env file and/or environment variables.\n")
		fmt.Fprintf(os.Stderr, "Environment variables take precedence over .env file values.\n\n")
		fmt.Fprintf(os.Stderr, "Required config (via .env or environment):\n")
		fmt.Fprintf(os.Stderr, "  SAQADVISOR_DATABASE_URI   MongoDB connection URI\n")
		fmt.Fprintf(os.Stderr, "  SAQADVISOR_DATABASE_NAME  Database name (default: saq_advisor)\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -type saq_a -force\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -env /path/to/.env -dry-run\n", os.Args[0])
	}

	flag.Parse()

	// Load .env file
	loadEnvFile(*envFile)

	// Resolve the set of types to seed
	types := models.AllQuestionnaireTypes()
	if *qTypeFlag != "" {
		qType := models.QuestionnaireType(*qTypeFlag)
		if !qType.IsValid() {
			log.Fatalf("Error: unknown SAQ type: %s", *qTypeFlag)
		}
		types = []models.QuestionnaireType{qType}
	}

	// Load database configuration from environment
	dbURI := os.Getenv("SAQADVISOR_DATABASE_URI")
	if dbURI == "" {
		log.Fatal("Error: SAQADVISOR_DATABASE_URI environment variable is required")
	}
	dbName := os.Getenv("SAQADVISOR_DATABASE_NAME")
	if dbName == "" {
		dbName = "saq_advisor"
	}

	fmt.Println("=== Question Bank Seeding ===")
	for _, qType := range types {
		fmt.Printf("  %s\n", qType)
	}
	if *force {
		fmt.Println("  (existing banks will be dropped)")
	}
	fmt.Println()

	if *dryRun {
		fmt.Println("[DRY RUN] No changes made to database")
		return
	}

	// Connect to MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	clientOpts := options.Client().ApplyURI(dbURI)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if disconnectErr := client.Disconnect(ctx); disconnectErr != nil {
			log.Printf("Error disconnecting from MongoDB: %v", disconnectErr)
		}
	}()

	// Ping database
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}

	db := client.Database(dbName)
	collection := db.Collection(models.Question{}.CollectionName())

	// Drop existing banks first when forced; SeedQuestionBank skips
	// non-empty banks otherwise
	if *force {
		for _, qType := range types {
			result, err := collection.DeleteMany(ctx, bson.M{"questionnaire_type": qType})
			if err != nil {
				log.Fatalf("Failed to drop %s question bank: %v", qType, err)
			}
			if result.DeletedCount > 0 {
				fmt.Printf("✓ Dropped %d existing questions for %s\n", result.DeletedCount, qType)
			}
		}
	}

	seeder := database.NewSeeder(db)
	for _, qType := range types {
		if err := seeder.SeedQuestionBank(ctx, qType); err != nil {
			log.Fatalf("Failed to seed %s question bank: %v", qType, err)
		}
	}

	fmt.Println()
	fmt.Println("Question bank seeding complete!")
}

// loadEnvFile loads environment variables from a .env file
func loadEnvFile(path string) {
	if path == "" {
		// Try to find .env in current dir or backend dir
		cwd, _ := os.Getwd()
		if _, err := os.Stat(filepath.Join(cwd, ".env")); err == nil {
			path = ".env"
		} else if _, err := os.Stat(filepath.Join(cwd, "backend", ".env")); err == nil {
			path = filepath.Join(cwd, "backend", ".env")
		}
	}

	if path != "" {
		if err := godotenv.Load(path); err != nil {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}
}
