// Command migrate runs schema operations for the backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"inkwell/internal/bootstrap"
	"inkwell/internal/config"
	"inkwell/internal/database"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate -action <auto|status>")
}

func run() error {
	action := flag.String("action", "", "Schema operation: auto or status")
	flag.Parse()
	if *action == "" {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	rt, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = rt.Close(context.Background()) }()

	switch strings.ToLower(strings.TrimSpace(*action)) {
	case "auto":
		if err := database.Migrate(rt.DB); err != nil {
			return fmt.Errorf("auto schema apply failed: %w", err)
		}
		log.Println("automigrations applied")
	case "status":
		statuses, err := database.SchemaStatus(rt.DB)
		if err != nil {
			return fmt.Errorf("schema status failed: %w", err)
		}
		pending := database.Pending(statuses)
		log.Printf("env=%s driver=%s tables=%d pending=%d", cfg.Env, rt.DB.Dialector.Name(), len(statuses), len(pending))
		for _, table := range pending {
			log.Printf("pending: %s", table)
		}
	default:
		return usage()
	}
	return nil
}
