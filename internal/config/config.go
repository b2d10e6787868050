package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/monocle-dev/fleetwatch/internal/status"
	"gopkg.in/yaml.v3"
)

const (
	BackendDB   = "db"
	BackendNATS = "nats"
)

type Config struct {
	Port                  string
	DBDriver              string
	DatabaseURL           string
	RegistryBackend       string
	NATSURL               string
	NATSBucket            string
	WarningThreshold      time.Duration
	OfflineThreshold      time.Duration
	AuthUser              string
	AuthPassword          string
	JWTSecret             string
	AllowedOrigins        []string
	LogFile               string
	LogLevel              string
	KeepTokenOnReregister bool
}

// fileConfig mirrors the environment keys so one YAML file can stand in for a .env.
type fileConfig struct {
	Port                  string `yaml:"PORT"`
	DBDriver              string `yaml:"DB_DRIVER"`
	DatabaseURL           string `yaml:"DATABASE_URL"`
	RegistryBackend       string `yaml:"REGISTRY_BACKEND"`
	NATSURL               string `yaml:"NATS_URL"`
	NATSBucket            string `yaml:"NATS_BUCKET"`
	WarningThreshold      string `yaml:"WARNING_THRESHOLD"`
	OfflineThreshold      string `yaml:"OFFLINE_THRESHOLD"`
	AuthUser              string `yaml:"AUTH_USER"`
	AuthPassword          string `yaml:"AUTH_PASSWORD"`
	JWTSecret             string `yaml:"JWT_SECRET"`
	AllowedOrigins        string `yaml:"ALLOWED_ORIGINS"`
	LogFile               string `yaml:"LOG_FILE"`
	LogLevel              string `yaml:"LOG_LEVEL"`
	KeepTokenOnReregister string `yaml:"KEEP_TOKEN_ON_REREGISTER"`
}

func defaults() fileConfig {
	return fileConfig{
		Port:             "3000",
		DBDriver:         "sqlite",
		DatabaseURL:      "fleetwatch.db",
		RegistryBackend:  BackendDB,
		NATSURL:          "nats://127.0.0.1:4222",
		NATSBucket:       "fleetwatch",
		WarningThreshold: status.DefaultWarningThreshold.String(),
		OfflineThreshold: status.DefaultOfflineThreshold.String(),
		LogLevel:         "info",
	}
}

// Load reads .env (if present), then CONFIG_FILE (if set), then the process
// environment, later sources winning.
func Load() (*Config, error) {
	_ = godotenv.Load() // ignore error if .env not found

	raw := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := readFile(path, &raw); err != nil {
			return nil, err
		}
	}

	applyEnv(&raw)

	return build(raw)
}

func readFile(path string, raw *fileConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, raw); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

func applyEnv(raw *fileConfig) {
	override := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	override("PORT", &raw.Port)
	override("DB_DRIVER", &raw.DBDriver)
	override("DATABASE_URL", &raw.DatabaseURL)
	override("REGISTRY_BACKEND", &raw.RegistryBackend)
	override("NATS_URL", &raw.NATSURL)
	override("NATS_BUCKET", &raw.NATSBucket)
	override("WARNING_THRESHOLD", &raw.WarningThreshold)
	override("OFFLINE_THRESHOLD", &raw.OfflineThreshold)
	override("AUTH_USER", &raw.AuthUser)
	override("AUTH_PASSWORD", &raw.AuthPassword)
	override("JWT_SECRET", &raw.JWTSecret)
	override("ALLOWED_ORIGINS", &raw.AllowedOrigins)
	override("LOG_FILE", &raw.LogFile)
	override("LOG_LEVEL", &raw.LogLevel)
	override("KEEP_TOKEN_ON_REREGISTER", &raw.KeepTokenOnReregister)
}

func build(raw fileConfig) (*Config, error) {
	warning, err := parseThreshold(raw.WarningThreshold)
	if err != nil {
		return nil, fmt.Errorf("invalid WARNING_THRESHOLD: %w", err)
	}

	offline, err := parseThreshold(raw.OfflineThreshold)
	if err != nil {
		return nil, fmt.Errorf("invalid OFFLINE_THRESHOLD: %w", err)
	}

	if offline < warning {
		return nil, fmt.Errorf("OFFLINE_THRESHOLD (%s) must not be below WARNING_THRESHOLD (%s)", offline, warning)
	}

	driver := strings.ToLower(raw.DBDriver)
	switch driver {
	case "postgres", "postgresql", "mysql", "sqlite", "sqlite3":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", raw.DBDriver)
	}

	backend := strings.ToLower(raw.RegistryBackend)
	if backend != BackendDB && backend != BackendNATS {
		return nil, fmt.Errorf("unsupported REGISTRY_BACKEND %q", raw.RegistryBackend)
	}

	keepToken := false
	if raw.KeepTokenOnReregister != "" {
		keepToken, err = strconv.ParseBool(raw.KeepTokenOnReregister)
		if err != nil {
			return nil, fmt.Errorf("invalid KEEP_TOKEN_ON_REREGISTER: %w", err)
		}
	}

	return &Config{
		Port:                  raw.Port,
		DBDriver:              driver,
		DatabaseURL:           raw.DatabaseURL,
		RegistryBackend:       backend,
		NATSURL:               raw.NATSURL,
		NATSBucket:            raw.NATSBucket,
		WarningThreshold:      warning,
		OfflineThreshold:      offline,
		AuthUser:              raw.AuthUser,
		AuthPassword:          raw.AuthPassword,
		JWTSecret:             raw.JWTSecret,
		AllowedOrigins:        splitList(raw.AllowedOrigins),
		LogFile:               raw.LogFile,
		LogLevel:              raw.LogLevel,
		KeepTokenOnReregister: keepToken,
	}, nil
}

// parseThreshold accepts a Go duration ("90s", "5m") or a bare number of minutes.
func parseThreshold(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)

	if minutes, err := strconv.Atoi(v); err == nil {
		if minutes <= 0 {
			return 0, fmt.Errorf("must be positive, got %d", minutes)
		}
		return time.Duration(minutes) * time.Minute, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}

	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", d)
	}

	return d, nil
}

func splitList(v string) []string {
	var out []string

	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
