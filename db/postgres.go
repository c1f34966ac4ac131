package db

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"time"

	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrations embed.FS

const defaultMaxOpenConns = 25

type Options struct {
	MaxOpenConns int
}

func Connect(databaseURL string) (*sql.DB, error) {
	return ConnectWithOptions(databaseURL, Options{})
}

func ConnectWithOptions(databaseURL string, opts Options) (*sql.DB, error) {
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = defaultMaxOpenConns
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(min(10, opts.MaxOpenConns))
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, db.Ping()
}

// Migrations returns the bundled schema files in the order they must run.
func Migrations() ([]string, error) {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Migrate applies every bundled migration. The statements are idempotent.
func Migrate(db *sql.DB, progress func(name string)) error {
	names, err := Migrations()
	if err != nil {
		return err
	}
	for _, name := range names {
		if progress != nil {
			progress(name)
		}
		content, err := migrations.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", name, err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", name, err)
		}
	}
	return nil
}
