package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	Paths   PathsConfig   `mapstructure:"paths"`
	Convert ConvertConfig `mapstructure:"convert"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // seconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // seconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // seconds
	MaxUploadBytes  int64  `mapstructure:"max_upload_bytes"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PathsConfig holds the directories the pipeline reads and writes.
type PathsConfig struct {
	TemplateDir string `mapstructure:"template_dir"`
	OutputDir   string `mapstructure:"output_dir"`
	BrandsFile  string `mapstructure:"brands_file"`
	LogoDir     string `mapstructure:"logo_dir"`
}

// ConvertConfig holds settings for the DOCX to PDF converter.
type ConvertConfig struct {
	// Backend selects the conversion backend: auto, libreoffice, or word.
	Backend        string `mapstructure:"backend"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	SofficeBinary  string `mapstructure:"soffice_binary"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
