package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/ignite/marketing-console/internal/config"
)

// Applies every .sql file under migrations/ in lexical order, one
// transaction per file. Files are idempotent (CREATE TABLE IF NOT EXISTS)
// so re-running is safe.
func main() {
	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	dir := "migrations"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		log.Fatal("failed to list migrations", zap.Error(err))
	}
	sort.Strings(files)

	for _, file := range files {
		contents, err := os.ReadFile(file)
		if err != nil {
			log.Fatal("failed to read migration", zap.String("file", file), zap.Error(err))
		}

		tx, err := db.Beginx()
		if err != nil {
			log.Fatal("failed to begin transaction", zap.Error(err))
		}
		if _, err := tx.Exec(string(contents)); err != nil {
			tx.Rollback()
			log.Fatal("migration failed", zap.String("file", file), zap.Error(err))
		}
		if err := tx.Commit(); err != nil {
			log.Fatal("failed to commit migration", zap.String("file", file), zap.Error(err))
		}
		log.Info("applied migration", zap.String("file", filepath.Base(file)))
	}

	log.Info("migrations complete", zap.Int("count", len(files)))
}
