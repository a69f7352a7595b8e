package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/database"
	"github.com/openshelf/openshelf/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "create-admin":
		if err := runCreateAdmin(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "-h", "--help", "help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// runCreateAdmin creates the first administrator account from the command
// line, for deployments where the signup endpoint is not reachable yet.
func runCreateAdmin(args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)
	name := fs.String("name", "", "display name for the account")
	email := fs.String("email", "", "login email")
	password := fs.String("password", "", "password (min 6 characters)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *email == "" || *password == "" {
		return fmt.Errorf("-name, -email and -password are required")
	}

	cfg := config.NewConfig()

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	service := auth.NewService(db.DB, cfg.Auth)

	hasUsers, err := service.HasUsers()
	if err != nil {
		return err
	}
	if hasUsers {
		return fmt.Errorf("users already exist; create accounts via the signup endpoint")
	}

	user, err := service.CreateUser(*name, *email, *password)
	if err != nil {
		return err
	}

	log.Printf("Created administrator account %s (%s)", user.Name, user.Email)
	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve         Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  create-admin  Create the initial administrator account\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
