package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/schemadb/schemadb/pkg/domain"
)

// Config holds process configuration, resolved from environment variables
// with sensible defaults. Command-line flags override these.
type Config struct {
	Port         string
	DataFile     string
	DatabaseName string
	SchemasFile  string
}

// Load reads configuration from the environment. A .env file in the
// working directory is honored when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:         envOr("SCHEMADB_PORT", "8080"),
		DataFile:     envOr("SCHEMADB_DATA_FILE", "schemadb_data.sdb"),
		DatabaseName: envOr("SCHEMADB_DATABASE", "schemadb"),
		SchemasFile:  os.Getenv("SCHEMADB_SCHEMAS_FILE"),
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// schemasFile is the YAML shape of a schema preload file
type schemasFile struct {
	Schemas []domain.SchemaDefinition `yaml:"schemas"`
}

// LoadSchemasFile parses a YAML file of schema definitions to register at
// startup
func LoadSchemasFile(path string) ([]domain.SchemaDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schemas file: %w", err)
	}
	var parsed schemasFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse schemas file: %w", err)
	}
	return parsed.Schemas, nil
}
