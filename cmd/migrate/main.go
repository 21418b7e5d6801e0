package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/SAP-F-2025/feedback-service/internal/config"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	var migrationDir string
	flag.StringVar(&migrationDir, "path", "migrations", "Path to migration files")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		return
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fatal("Failed to load configuration", err)
	}

	m, err := migrate.New("file://"+migrationDir, cfg.DatabaseURL)
	if err != nil {
		fatal("Migration failed to initialize", err)
	}
	defer m.Close()

	switch args[0] {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			fatal("Up failed", err)
		}
		slog.Info("Migrated up")
	case "down":
		steps := 1
		if len(args) > 1 {
			if steps, err = strconv.Atoi(args[1]); err != nil || steps < 1 {
				fatal("Invalid step count", fmt.Errorf("%q", args[1]))
			}
		}
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			fatal("Down failed", err)
		}
		slog.Info("Migrated down", "steps", steps)
	case "version":
		version, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			fatal("Version failed", err)
		}
		slog.Info("Schema version", "version", version, "dirty", dirty)
	case "force":
		if len(args) < 2 {
			fatal("force requires a version argument", nil)
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			fatal("Invalid version", err)
		}
		if err := m.Force(v); err != nil {
			fatal("Force failed", err)
		}
		slog.Info("Forced version", "version", v)
	default:
		printUsage()
		os.Exit(2)
	}
}

func fatal(msg string, err error) {
	if err != nil {
		slog.Error(msg, "error", err)
	} else {
		slog.Error(msg)
	}
	os.Exit(1)
}

func printUsage() {
	fmt.Println("Usage: migrate [flags] <command>")
	fmt.Println("Commands: up, down [steps], version, force <version>")
	fmt.Println("Flags:")
	flag.PrintDefaults()
}
