// cmd/tools/dbtool/main.go
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/golfleague/internal/config"
	"github.com/codr1/golfleague/internal/db"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "Path to config file")
		dbPath     = flag.String("db", "", "Path to SQLite database (overrides config)")
		command    = flag.String("command", "", "Command to run (up, down, version, seed)")
		adminEmail = flag.String("admin-email", os.Getenv("SEED_ADMIN_EMAIL"), "Admin account created by seed")
		adminPass  = flag.String("admin-password", os.Getenv("SEED_ADMIN_PASSWORD"), "Admin password used by seed")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *command == "" {
		log.Error().Msg("The -command flag is required")
		flag.PrintDefaults()
		os.Exit(1)
	}

	path, err := resolveDBPath(*configPath, *dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve database path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create database directory")
	}

	switch *command {
	case "up", "down", "version":
		if err := runMigrationCommand(path, *command); err != nil {
			log.Fatal().Err(err).Str("command", *command).Msg("Migration command failed")
		}
	case "seed":
		database, err := db.New(path)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open database")
		}
		defer database.Close()

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := seed(ctx, database, seedOptions{AdminEmail: *adminEmail, AdminPassword: *adminPass}); err != nil {
			log.Fatal().Err(err).Msg("Seed failed")
		}
		log.Info().Msg("Seed complete")
	default:
		log.Fatal().Str("command", *command).Msg("Unknown command")
	}
}

// resolveDBPath prefers an explicit path and otherwise reads the database
// filename from the YAML config without requiring the runtime secrets.
func resolveDBPath(configPath, override string) (string, error) {
	if override != "" {
		return filepath.Abs(override)
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", fmt.Errorf("read config: %w", err)
	}
	cfg, err := config.Parse(data)
	if err != nil {
		return "", err
	}
	if cfg.Database.Filename == "" {
		return "", errors.New("database filename missing from config")
	}
	return filepath.Abs(cfg.Database.Filename)
}

func runMigrationCommand(path, command string) error {
	sqlDB, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	m, err := db.NewMigrator(sqlDB)
	if err != nil {
		sqlDB.Close()
		return err
	}
	defer m.Close()

	switch command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("run migrations: %w", err)
		}
		log.Info().Msg("Successfully ran migrations up")
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("rollback migrations: %w", err)
		}
		log.Info().Msg("Successfully ran migrations down")
	case "version":
		version, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return fmt.Errorf("get version: %w", err)
		}
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Current migration version")
	}
	return nil
}
