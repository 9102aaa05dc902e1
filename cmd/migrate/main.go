// File: cmd/migrate/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	pg "chatwarden/internal/infra/db/postgres"
)

// migrate applies deploy/postgres/*.sql against the configured database. It
// is a dev/ops convenience, not a versioned-migration framework: the schema
// is small enough that every statement is idempotent (CREATE ... IF NOT
// EXISTS / ON CONFLICT DO NOTHING), so re-running this binary is always
// safe.
func main() {
	dsn := flag.String("dsn", os.Getenv("DATABASE_URL"), "postgres connection string")
	dir := flag.String("dir", "deploy/postgres", "directory of .sql files to apply, in lexical order")
	flag.Parse()

	if *dsn == "" {
		log.Fatal("migrate: -dsn or DATABASE_URL must be set")
	}

	files, err := filepath.Glob(filepath.Join(*dir, "*.sql"))
	if err != nil {
		log.Fatalf("migrate: glob %s: %v", *dir, err)
	}
	if len(files) == 0 {
		log.Fatalf("migrate: no .sql files found under %s", *dir)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.TryConnect(ctx, *dsn, 5, 30*time.Second)
	if err != nil {
		log.Fatalf("migrate: connect: %v", err)
	}
	defer pool.Close()

	for _, f := range files {
		sql, err := os.ReadFile(f)
		if err != nil {
			log.Fatalf("migrate: read %s: %v", f, err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			log.Fatalf("migrate: apply %s: %v", f, err)
		}
		log.Printf("migrate: applied %s", f)
	}
	log.Println("migrate: done")
}
