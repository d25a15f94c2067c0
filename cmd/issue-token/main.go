// Package main provides a CLI tool to issue a signed access token.
// Usage: go run cmd/issue-token/main.go -email "user@example.com" -merchant-id <hex>
// This is useful for development and API testing when no auth frontend is running.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/paysec-tools/saqadvisor_backend/internal/auth"
)

func main() {
	// Define command line flags
	email := flag.String("email", "", "Email to embed in the token claims (required)")
	merchantID := flag.String("merchant-id", "", "Merchant ObjectID hex (generated if not provided)")
	role := flag.String("role", "merchant", "Token role: merchant, reviewer or admin")
	expiry := flag.Duration("expiry", time.Hour, "Access token lifetime")
	envFile := flag.String("env", "", "Path to .env file (defaults to .env in current dir or backend dir)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Issues a signed RS512 access token (development use).\n\n")
		fmt.Fprintf(os.Stderr, "Configuration is loaded from .env file and/or environment variables.\n\n")
		fmt.Fprintf(os.Stderr, "Required config (via .env or environment):\n")
		fmt.Fprintf(os.Stderr, "  SAQADVISOR_JWT_PRIVATE_KEY_PATH  RSA private key (PEM)\n")
		fmt.Fprintf(os.Stderr, "  SAQADVISOR_JWT_PUBLIC_KEY_PATH   RSA public key (PEM)\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -email \"merchant@acme.com\"\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -email \"reviewer@paysec.tools\" -role reviewer -expiry 8h\n", os.Args[0])
	}

	flag.Parse()

	// Load .env file
	loadEnvFile(*envFile)

	// Validate required flags
	if *email == "" {
		log.Fatal("Error: -email is required")
	}

	// Validate email format
	if !isValidEmail(*email) {
		log.Fatalf("Error: invalid email format: %s", *email)
	}

	switch *role {
	case "merchant", "reviewer", "admin":
	default:
		log.Fatalf("Error: invalid role: %s (expected merchant, reviewer or admin)", *role)
	}

	// Resolve or generate the merchant identity
	var merchantObjectID primitive.ObjectID
	if *merchantID != "" {
		parsed, err := primitive.ObjectIDFromHex(*merchantID)
		if err != nil {
			log.Fatalf("Error: invalid merchant ID: %v", err)
		}
		merchantObjectID = parsed
	} else {
		merchantObjectID = primitive.NewObjectID()
	}
	userID := primitive.NewObjectID()

	// Load key paths from environment
	privateKeyPath := os.Getenv("SAQADVISOR_JWT_PRIVATE_KEY_PATH")
	if privateKeyPath == "" {
		log.Fatal("Error: SAQADVISOR_JWT_PRIVATE_KEY_PATH environment variable is required")
	}
	publicKeyPath := os.Getenv("SAQADVISOR_JWT_PUBLIC_KEY_PATH")
	if publicKeyPath == "" {
		log.Fatal("Error: SAQADVISOR_JWT_PUBLIC_KEY_PATH environment variable is required")
	}

	jwtService, err := auth.NewJWTService(auth.JWTConfig{
		PrivateKeyPath:    privateKeyPath,
		PublicKeyPath:     publicKeyPath,
		AccessTokenExpiry: *expiry,
		InvitationExpiry:  7 * 24 * time.Hour,
		Issuer:            "saqadvisor-backend",
	})
	if err != nil {
		log.Fatalf("Failed to initialize JWT service: %v", err)
	}

	token, expiresAt, err := jwtService.GenerateAccessToken(userID.Hex(), merchantObjectID.Hex(), *email, *role)
	if err != nil {
		log.Fatalf("Failed to generate access token: %v", err)
	}

	// Output results
	fmt.Println()
	fmt.Println("=== Access Token Issued ===")
	fmt.Printf("  Email:       %s\n", *email)
	fmt.Printf("  Role:        %s\n", *role)
	fmt.Printf("  Merchant ID: %s\n", merchantObjectID.Hex())
	fmt.Printf("  User ID:     %s\n", userID.Hex())
	fmt.Printf("  Expires:     %s\n", expiresAt.Format(time.RFC3339))
	fmt.Println()
	fmt.Println("Authorization header:")
	fmt.Printf("Bearer %s\n", token)
}

// isValidEmail performs basic email validation
func isValidEmail(email string) bool {
	pattern := `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	matched, _ := regexp.MatchString(pattern, email)
	return matched
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
