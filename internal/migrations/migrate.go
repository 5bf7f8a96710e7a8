package migrations

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"regexp"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
)

//go:embed sql
var files embed.FS

const migrationsTable = "schema_migrations_migrate"

// Run applies the embedded journal migrations for the connection's driver.
// It will baseline the DB to the latest migration if the journal schema
// already exists (matches table present) but migrate's metadata table is
// missing.
func Run(db *sqlx.DB) error {
	if db == nil {
		return errors.New("database is nil")
	}

	var (
		dir    string
		driver database.Driver
		err    error
	)
	switch db.DriverName() {
	case "postgres":
		dir = "sql/postgres"
		driver, err = pg.WithInstance(db.DB, &pg.Config{MigrationsTable: migrationsTable})
	case "sqlite3":
		dir = "sql/sqlite"
		driver, err = sqlite3.WithInstance(db.DB, &sqlite3.Config{MigrationsTable: migrationsTable})
	default:
		return fmt.Errorf("no migrations for driver %q", db.DriverName())
	}
	if err != nil {
		return fmt.Errorf("failed to create migrate driver: %w", err)
	}

	src, err := iofs.New(files, dir)
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, db.DriverName(), driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	// If DB already has schema but migrate metadata table does not exist, baseline to latest migration
	if tableExists(db, "matches") && !tableExists(db, migrationsTable) {
		latest := findLatestMigrationVersion(dir)
		if latest > 0 {
			log.Printf("[MIGRATE] Baseline DB to version %d (existing schema present)", latest)
			if ferr := m.Force(int(latest)); ferr != nil {
				log.Printf("[MIGRATE] Force to version %d failed: %v", latest, ferr)
			}
		}
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read migration version: %w", verr)
	}
	log.Printf("[MIGRATE] Migrations applied (version=%d dirty=%v)", version, dirty)
	return nil
}

func tableExists(db *sqlx.DB, name string) bool {
	var query string
	switch db.DriverName() {
	case "postgres":
		query = "SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)"
	default:
		query = "SELECT EXISTS (SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?)"
	}

	var exists bool
	if err := db.QueryRow(query, name).Scan(&exists); err != nil {
		return false
	}
	return exists
}

// findLatestMigrationVersion scans an embedded migrations directory for files
// that start with a numeric version prefix (e.g. 000001_) and returns the
// highest version number.
func findLatestMigrationVersion(dir string) int64 {
	entries, err := fs.ReadDir(files, dir)
	if err != nil {
		return 0
	}

	re := regexp.MustCompile(`^0*([0-9]+)_`)
	var latest int64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := re.FindStringSubmatch(e.Name())
		if len(m) < 2 {
			continue
		}
		v, _ := strconv.ParseInt(m[1], 10, 64)
		if v > latest {
			latest = v
		}
	}

	return latest
}
