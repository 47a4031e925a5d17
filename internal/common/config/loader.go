package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like REPORTS_SERVER_PORT
	viper.SetEnvPrefix("reports")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env != "" {
		viper.SetConfigName(fmt.Sprintf("config.%s", env))
		_ = viper.MergeInConfig() // ignore error if not found
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from multiple possible locations so binaries and
// tests can run from any directory.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "client-report-engine"
	}
	if cfg.App.Version == "" {
		cfg.App.Version = "1.0.0"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 120
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = 10 << 20
	}
	if cfg.Paths.TemplateDir == "" {
		cfg.Paths.TemplateDir = filepath.Join("reports", "templates")
	}
	if cfg.Paths.OutputDir == "" {
		cfg.Paths.OutputDir = filepath.Join("reports", "output")
	}
	if cfg.Paths.BrandsFile == "" {
		cfg.Paths.BrandsFile = filepath.Join("data", "brands.json")
	}
	if cfg.Paths.LogoDir == "" {
		cfg.Paths.LogoDir = "brands"
	}
	if cfg.Convert.Backend == "" {
		cfg.Convert.Backend = "auto"
	}
	if cfg.Convert.TimeoutSeconds == 0 {
		cfg.Convert.TimeoutSeconds = 60
	}
	if cfg.Convert.SofficeBinary == "" {
		cfg.Convert.SofficeBinary = "soffice"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

func validateConfig(cfg *Config) error {
	switch cfg.Convert.Backend {
	case "auto", "libreoffice", "word":
	default:
		return fmt.Errorf("convert.backend must be auto, libreoffice, or word, got %q", cfg.Convert.Backend)
	}
	if cfg.Convert.TimeoutSeconds < 1 {
		return fmt.Errorf("convert.timeout_seconds must be positive, got %d", cfg.Convert.TimeoutSeconds)
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", cfg.Server.Port)
	}
	return nil
}
