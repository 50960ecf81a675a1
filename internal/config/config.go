package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TextConfig holds the options for the text report writer.
type TextConfig struct {
	// OutputPath is the report destination. When empty, a timestamped
	// default name is generated at write time.
	OutputPath string `yaml:"output_path"`
}

// ClickHouseConfig holds the connection options for the ClickHouse writer.
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// NATSConfig holds the options for the NATS report publisher.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// WriterDef defines a single report writer from the config file.
type WriterDef struct {
	Type       string           `yaml:"type"`
	Enabled    bool             `yaml:"enabled"`
	Text       TextConfig       `yaml:"text"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	NATS       NATSConfig       `yaml:"nats"`
}

// EngineConfig holds tuning knobs for the parsing pipeline.
type EngineConfig struct {
	// MaxLineBytes caps the length of a single flow-log line. Zero means
	// the built-in default.
	MaxLineBytes int `yaml:"max_line_bytes"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Engine  EngineConfig `yaml:"engine"`
	Writers []WriterDef  `yaml:"writers"`
}

// Default returns the configuration used when no config file is given:
// a single enabled text writer with the default output naming.
func Default() *Config {
	return &Config{
		Writers: []WriterDef{{Type: "text", Enabled: true}},
	}
}

// LoadConfig reads the configuration from a YAML file and returns a Config struct.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	return &cfg, nil
}
