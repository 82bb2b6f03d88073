package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const (
	SourceFile     = "file"
	SourceS3       = "s3"
	SourcePostgres = "postgres"
	SourceRemote   = "remote"
)

// SecretPrefix marks a config value that must be fetched from Secret Manager.
const SecretPrefix = "sm://"

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL"`
	APIBaseURL  string `envconfig:"API_BASE_URL" default:"http://localhost:8080/v1"`

	// Course catalog settings
	CatalogSource string `envconfig:"CATALOG_SOURCE" default:"file"`
	CatalogPath   string `envconfig:"CATALOG_PATH" default:"data/Attendance_Dataset2.csv"`
	CatalogSheet  string `envconfig:"CATALOG_SHEET"`

	// Model settings
	ModelSource            string `envconfig:"MODEL_SOURCE" default:"file"`
	ModelPath              string `envconfig:"MODEL_PATH" default:"data/ensemble_model.json"`
	ModelServiceBaseURL    string `envconfig:"MODEL_SERVICE_BASE_URL"`
	ModelRequestTimeoutSec int    `envconfig:"MODEL_REQUEST_TIMEOUT_SEC" default:"5"`

	// S3-compatible storage (only needed when a source is s3)
	S3URL       string `envconfig:"S3_URL"`
	S3Bucket    string `envconfig:"S3_BUCKET"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`

	// Postgres catalog (only needed when CATALOG_SOURCE=postgres)
	DBConnectionString string `envconfig:"DB_CONNECTION_STRING"`

	// GCP project for resolving sm:// secret references
	GCPProjectID string `envconfig:"GCP_PROJECT_ID"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that depend on each other.
func (c *Config) Validate() error {
	var errs []error

	switch c.CatalogSource {
	case SourceFile, SourceS3, SourcePostgres:
	default:
		errs = append(errs, fmt.Errorf("CATALOG_SOURCE must be file, s3 or postgres, got %q", c.CatalogSource))
	}
	switch c.ModelSource {
	case SourceFile, SourceS3, SourceRemote:
	default:
		errs = append(errs, fmt.Errorf("MODEL_SOURCE must be file, s3 or remote, got %q", c.ModelSource))
	}

	if c.CatalogSource == SourceS3 || c.ModelSource == SourceS3 {
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required when a source is s3"))
		}
		if (c.S3AccessKey == "") != (c.S3SecretKey == "") {
			errs = append(errs, errors.New("S3_ACCESS_KEY and S3_SECRET_KEY must be set together"))
		}
	}
	if c.CatalogSource == SourcePostgres && c.DBConnectionString == "" {
		errs = append(errs, errors.New("DB_CONNECTION_STRING is required when CATALOG_SOURCE=postgres"))
	}
	if c.CatalogSource != SourcePostgres && c.CatalogPath == "" {
		errs = append(errs, errors.New("CATALOG_PATH is required"))
	}
	if c.ModelSource == SourceRemote && c.ModelServiceBaseURL == "" {
		errs = append(errs, errors.New("MODEL_SERVICE_BASE_URL is required when MODEL_SOURCE=remote"))
	}
	if c.ModelSource != SourceRemote && c.ModelPath == "" {
		errs = append(errs, errors.New("MODEL_PATH is required"))
	}
	if c.ModelRequestTimeoutSec <= 0 {
		errs = append(errs, errors.New("MODEL_REQUEST_TIMEOUT_SEC must be positive"))
	}

	return errors.Join(errs...)
}

// SecretResolver fetches the plaintext value behind an sm:// reference.
type SecretResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

func (c *Config) secretFields() map[string]*string {
	return map[string]*string{
		"DB_CONNECTION_STRING": &c.DBConnectionString,
		"S3_ACCESS_KEY":        &c.S3AccessKey,
		"S3_SECRET_KEY":        &c.S3SecretKey,
	}
}

// HasSecretRefs reports whether any secret-capable field holds an sm:// reference.
func (c *Config) HasSecretRefs() bool {
	for _, v := range c.secretFields() {
		if strings.HasPrefix(*v, SecretPrefix) {
			return true
		}
	}
	return false
}

// ResolveSecrets replaces every sm:// reference with its secret value.
func (c *Config) ResolveSecrets(ctx context.Context, r SecretResolver) error {
	for name, v := range c.secretFields() {
		if !strings.HasPrefix(*v, SecretPrefix) {
			continue
		}
		val, err := r.Resolve(ctx, strings.TrimPrefix(*v, SecretPrefix))
		if err != nil {
			return fmt.Errorf("resolving %s: %w", name, err)
		}
		*v = val
	}
	return nil
}
