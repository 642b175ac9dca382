// migrate-to-postgres copies the scenario archive from SQLite to PostgreSQL.
//
// Usage:
//
//	go run ./cmd/migrate-to-postgres \
//	    -sqlite data/scenarios.db \
//	    -pg-host localhost \
//	    -pg-port 5432 \
//	    -pg-user paintgalaxy \
//	    -pg-password paintgalaxy \
//	    -pg-database paintgalaxy
package main

import (
	"errors"
	"flag"
	"log"

	"github.com/paintgalaxy/server/internal/database"
)

func main() {
	sqlitePath := flag.String("sqlite", "data/scenarios.db", "Path to SQLite database")
	pgURL := flag.String("pg-url", "", "PostgreSQL connection URL (overrides the other -pg flags)")
	pgHost := flag.String("pg-host", "localhost", "PostgreSQL host")
	pgPort := flag.Int("pg-port", 5432, "PostgreSQL port")
	pgUser := flag.String("pg-user", "paintgalaxy", "PostgreSQL user")
	pgPassword := flag.String("pg-password", "paintgalaxy", "PostgreSQL password")
	pgDatabase := flag.String("pg-database", "paintgalaxy", "PostgreSQL database name")
	pgSSLMode := flag.String("pg-sslmode", "disable", "PostgreSQL SSL mode")
	dryRun := flag.Bool("dry-run", false, "Show what would be migrated without making changes")
	flag.Parse()

	log.Println("Scenario Archive Migration Tool")
	log.Println("====================================")

	log.Printf("Opening SQLite database: %s", *sqlitePath)
	src, err := database.OpenSQLite(*sqlitePath)
	if err != nil {
		log.Fatalf("Failed to open SQLite database: %v", err)
	}
	defer src.Close()

	var dst *database.Database
	if !*dryRun {
		pg := database.DefaultPostgresConfig()
		pg.URL = *pgURL
		pg.Host = *pgHost
		pg.Port = *pgPort
		pg.User = *pgUser
		pg.Password = *pgPassword
		pg.Database = *pgDatabase
		pg.SSLMode = *pgSSLMode

		log.Printf("Opening PostgreSQL database: %s@%s:%d/%s", *pgUser, *pgHost, *pgPort, *pgDatabase)
		dst, err = database.Open(database.Config{Driver: "postgres", Postgres: pg})
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL database: %v", err)
		}
		defer dst.Close()
	} else {
		log.Println("DRY RUN MODE - No changes will be made")
	}

	copied, skipped, err := migrate(src, dst)
	if err != nil {
		log.Fatalf("Migration failed after %d scenarios: %v", copied, err)
	}

	log.Println("====================================")
	log.Printf("Migration complete! Scenarios copied: %d, already present: %d", copied, skipped)
	if *dryRun {
		log.Println("(DRY RUN - No actual changes were made)")
	}
}

// migrate copies every scenario from src into dst, keeping ids and
// timestamps. Scenarios already in dst are skipped. A nil dst only counts.
func migrate(src *database.Database, dst *database.Database) (copied, skipped int, err error) {
	err = src.EachScenario(func(s *database.Scenario) error {
		if dst == nil {
			copied++
			return nil
		}
		if err := dst.SaveScenario(s); err != nil {
			if errors.Is(err, database.ErrDuplicateScenario) {
				skipped++
				return nil
			}
			return err
		}
		copied++
		return nil
	})
	return copied, skipped, err
}
