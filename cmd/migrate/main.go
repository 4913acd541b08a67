package main

import (
	"errors"
	"flag"

	"theralink/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
)

// Usage: migrate [-path migrations] [-steps N] up|down|version
func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	path := flag.String("path", "migrations", "directory holding the SQL migrations")
	steps := flag.Int("steps", 0, "number of migrations to apply (down defaults to 1)")
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		command = "up"
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	m, err := migrate.New("file://"+*path, cfg.DB.URL())
	if err != nil {
		logrus.Fatalf("Failed to initialize migrations: %v", err)
	}
	defer m.Close()

	switch command {
	case "up":
		if *steps > 0 {
			err = m.Steps(*steps)
		} else {
			err = m.Up()
		}
	case "down":
		n := *steps
		if n <= 0 {
			n = 1
		}
		err = m.Steps(-n)
	case "version":
		version, dirty, verr := m.Version()
		if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
			logrus.Fatalf("Failed to read version: %v", verr)
		}
		logrus.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("Current migration version")
		return
	default:
		logrus.Fatalf("Unknown command %q (use up, down or version)", command)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logrus.Fatalf("Migration %s failed: %v", command, err)
	}
	logrus.Infof("Migration %s complete", command)
}
