package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/invobase/invobase/internal/config"
	"github.com/invobase/invobase/internal/logger"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const defaultSchemaPath = "scripts/schema.sql"

func main() {
	dryRun := flag.Bool("dry-run", false, "Print schema SQL without executing it")
	schemaPath := flag.String("schema", defaultSchemaPath, "Path to the schema file")
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	schema, err := os.ReadFile(*schemaPath)
	if err != nil {
		logger.Fatalw("Failed to read schema file", "error", err, "path", *schemaPath)
	}

	if *dryRun {
		fmt.Println(string(schema))
		return
	}

	logger.Infow("Connecting to database", "host", cfg.Postgres.Host)
	db, err := sqlx.Connect("postgres", cfg.Postgres.GetDSN())
	if err != nil {
		logger.Fatalw("Failed to connect to postgres", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("Running database migrations...")
	if _, err := db.ExecContext(ctx, string(schema)); err != nil {
		logger.Fatalw("Failed to apply schema", "error", err)
	}

	logger.Info("Migration completed successfully")
}
