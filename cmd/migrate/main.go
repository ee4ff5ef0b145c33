package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"

	"docqa/internal/config"
	"docqa/internal/logging"
)

const usage = "Usage: migrate [up|down|steps N|force V|version]"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	logging.Init(&cfg.Log)

	if !cfg.Audit.Enabled {
		logrus.Warn("audit trail is disabled (DOCQA_AUDIT_ENABLED=false); migrating anyway")
	}

	source := os.Getenv("DOCQA_MIGRATIONS_SOURCE")
	if source == "" {
		source = "file://db/migrations"
	}

	m, err := migrate.New(source, cfg.Audit.DSN())
	if err != nil {
		logrus.Fatalf("failed to create migrate instance: %v", err)
	}
	defer m.Close()

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	switch cmd := os.Args[1]; cmd {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logrus.Fatalf("migration up failed: %v", err)
		}
		logrus.Info("migrations applied successfully")

	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logrus.Fatalf("migration down failed: %v", err)
		}
		logrus.Info("migrations reverted successfully")

	case "steps", "force":
		if len(os.Args) < 3 {
			logrus.Fatalf("%s requires a number argument", cmd)
		}
		n, err := strconv.Atoi(os.Args[2])
		if err != nil {
			logrus.Fatalf("invalid %s argument: %v", cmd, err)
		}
		if cmd == "force" {
			if err := m.Force(n); err != nil {
				logrus.Fatalf("migration force failed: %v", err)
			}
			logrus.Infof("forced schema version %d", n)
			return
		}
		if err := m.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logrus.Fatalf("migration steps failed: %v", err)
		}
		logrus.Infof("applied %d migration steps", n)

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			logrus.Fatalf("failed to get version: %v", err)
		}
		fmt.Printf("version: %d, dirty: %v\n", version, dirty)

	default:
		fmt.Printf("unknown command: %s\n", cmd)
		fmt.Println(usage)
		os.Exit(1)
	}
}
