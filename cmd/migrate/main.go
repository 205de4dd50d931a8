package main

import (
	"context"
	"fmt"
	"os"

	"github.com/welth-app/welth/internal/config"
	"github.com/welth-app/welth/internal/repository/postgres"
	"github.com/welth-app/welth/migrations"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Connect to database
	db, err := postgres.New(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	fmt.Printf("Connected to %s database successfully\n", cfg.Database.Driver)

	ran, err := postgres.RunMigrations(context.Background(), db, migrations.GetFS())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if len(ran) == 0 {
		fmt.Println("No pending migrations")
		return
	}
	for _, name := range ran {
		fmt.Printf("✓ Migration %s completed successfully\n", name)
	}

	fmt.Println("\nAll migrations completed successfully!")
}
