// Package config builds the server configuration from command-line flags,
// environment variables and an optional .env file. Flags win over the
// environment, which wins over defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const (
	DefaultPort   = 3001
	DefaultDBPath = ":memory:"
)

// Config holds the server settings
type Config struct {
	Port            int
	DBPath          string
	JWTSecret       string
	BaseURL         string
	LogLevel        string
	AdminPassword   string
	ManagerPassword string
	SeedSample      bool
	NoKeyboard      bool
	ShowVersion     bool

	// GeneratedSecret is set when no JWT secret was configured and a
	// random one was made up for this run
	GeneratedSecret bool
}

// LoadEnvFile loads variables from path into the environment without
// overriding ones already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Parse reads flags from args and fills unset values from the environment
func Parse(args []string, usage io.Writer) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("electora", flag.ContinueOnError)
	fs.SetOutput(usage)

	fs.IntVar(&cfg.Port, "port", 0, "HTTP server port (env PORT)")
	fs.StringVar(&cfg.DBPath, "db", "", "SQLite database file; in-memory when unset (env DATABASE_PATH)")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", "", "Token signing secret (env JWT_SECRET)")
	fs.StringVar(&cfg.BaseURL, "base-url", "", "Public URL used in voting links (env BASE_URL)")
	fs.StringVar(&cfg.LogLevel, "loglevel", "", "Log level: debug, info, warn, error (env LOG_LEVEL)")
	fs.StringVar(&cfg.AdminPassword, "adminpw", "", "Password for the seeded admin account (env ADMIN_PASSWORD)")
	fs.BoolVar(&cfg.SeedSample, "seed-sample", false, "Create the sample election on startup (env SEED_SAMPLE)")
	fs.BoolVar(&cfg.NoKeyboard, "nokeyboard", false, "Disable keyboard shortcuts")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version and exit")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, fmt.Errorf("invalid PORT env variable %q", portStr)
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("port %d out of range", cfg.Port)
	}

	cfg.DBPath = firstNonEmpty(cfg.DBPath, os.Getenv("DATABASE_PATH"), DefaultDBPath)
	cfg.BaseURL = firstNonEmpty(cfg.BaseURL, os.Getenv("BASE_URL"))
	cfg.LogLevel = firstNonEmpty(cfg.LogLevel, os.Getenv("LOG_LEVEL"), "info")
	cfg.AdminPassword = firstNonEmpty(cfg.AdminPassword, os.Getenv("ADMIN_PASSWORD"))
	cfg.ManagerPassword = os.Getenv("MANAGER_PASSWORD")

	if !cfg.SeedSample {
		if v := os.Getenv("SEED_SAMPLE"); v != "" {
			seed, err := strconv.ParseBool(v)
			if err != nil {
				return Config{}, fmt.Errorf("invalid SEED_SAMPLE env variable %q", v)
			}
			cfg.SeedSample = seed
		}
	}

	cfg.JWTSecret = firstNonEmpty(cfg.JWTSecret, os.Getenv("JWT_SECRET"))
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = uuid.NewString()
		cfg.GeneratedSecret = true
	}

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
