package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config represents application configuration
type Config struct {
	Report  ReportConfig  `json:"report"`
	Logging LoggingConfig `json:"logging"`
}

// ReportConfig represents report generation configuration
type ReportConfig struct {
	Format    string `json:"format"`     // text, xlsx, both
	OutputDir string `json:"output_dir"` // empty: next to the input file
	Stdout    bool   `json:"stdout"`     // also stream the text report to stdout
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"` // json, text
}

// Load loads configuration from environment variables and defaults
func Load() (*Config, error) {
	config := &Config{
		Report: ReportConfig{
			Format:    getEnv("REPORT_FORMAT", "text"),
			OutputDir: getEnv("REPORT_OUTPUT_DIR", ""),
			Stdout:    getEnvBool("REPORT_STDOUT", false),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Report.Format {
	case "text", "xlsx", "both":
	default:
		return fmt.Errorf("invalid report format %q, expected text, xlsx or both", c.Report.Format)
	}

	if c.Report.OutputDir != "" {
		info, err := os.Stat(c.Report.OutputDir)
		if err != nil {
			return fmt.Errorf("report output dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("report output dir %q is not a directory", c.Report.OutputDir)
		}
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format %q, expected json or text", c.Logging.Format)
	}

	return nil
}

// Helper functions for environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
