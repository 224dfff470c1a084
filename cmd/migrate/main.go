// Command migrate applies the embedded schema migrations.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/iautomae/platform/migrations"

	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
)

const EnvDatabaseDSN = "DATABASE_DSN"

func main() {
	var (
		dsn   = flag.String("dsn", "", "Database connection string")
		steps = flag.Int("steps", 0, "Limit up/down to N steps (0 = all)")
	)
	flag.Parse()

	if *dsn == "" {
		*dsn = os.Getenv(EnvDatabaseDSN)
	}
	if *dsn == "" {
		log.Fatalf("database connection string required: use -dsn flag or %s env var", EnvDatabaseDSN)
	}

	command := flag.Arg(0)
	if command == "" {
		fmt.Println("usage: migrate -dsn <connection-string> [-steps N] <up|down|version>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		log.Fatalf("failed to load embedded migrations: %v", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, "pgx5://"+trimScheme(*dsn))
	if err != nil {
		log.Fatalf("failed to initialize migrations: %v", err)
	}
	defer m.Close()

	switch command {
	case "up":
		err = run(m.Up, m.Steps, *steps)
	case "down":
		err = run(m.Down, m.Steps, -*steps)
	case "version":
		version, dirty, verr := m.Version()
		if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
			log.Fatalf("failed to read version: %v", verr)
		}
		fmt.Printf("version: %d dirty: %t\n", version, dirty)
		return
	default:
		log.Fatalf("unknown command: %s (expected up, down, or version)", command)
	}

	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Println("no change")
			return
		}
		log.Fatalf("migration failed: %v", err)
	}

	fmt.Printf("%s completed\n", command)
}

// run applies either the full direction or a bounded number of steps.
func run(full func() error, stepped func(int) error, steps int) error {
	if steps != 0 {
		return stepped(steps)
	}
	return full()
}

// trimScheme strips a postgres:// or postgresql:// prefix so the DSN can
// be re-prefixed with the pgx5 driver scheme.
func trimScheme(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://", "pgx5://"} {
		if len(dsn) > len(prefix) && dsn[:len(prefix)] == prefix {
			return dsn[len(prefix):]
		}
	}
	return dsn
}
