package config

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.CatalogSource != SourceFile || cfg.ModelSource != SourceFile {
		t.Errorf("expected file sources, got %s/%s", cfg.CatalogSource, cfg.ModelSource)
	}
	if cfg.ModelRequestTimeoutSec != 5 {
		t.Errorf("expected 5s model timeout, got %d", cfg.ModelRequestTimeoutSec)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			CatalogSource:          SourceFile,
			CatalogPath:            "courses.csv",
			ModelSource:            SourceFile,
			ModelPath:              "model.json",
			ModelRequestTimeoutSec: 5,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"unknown catalog source", func(c *Config) { c.CatalogSource = "ftp" }, "CATALOG_SOURCE"},
		{"unknown model source", func(c *Config) { c.ModelSource = "postgres" }, "MODEL_SOURCE"},
		{"s3 without bucket", func(c *Config) { c.CatalogSource = SourceS3 }, "S3_BUCKET"},
		{"s3 half credentials", func(c *Config) {
			c.ModelSource = SourceS3
			c.S3Bucket = "models"
			c.S3AccessKey = "key"
		}, "S3_SECRET_KEY"},
		{"postgres without dsn", func(c *Config) { c.CatalogSource = SourcePostgres }, "DB_CONNECTION_STRING"},
		{"remote without url", func(c *Config) { c.ModelSource = SourceRemote }, "MODEL_SERVICE_BASE_URL"},
		{"zero timeout", func(c *Config) { c.ModelRequestTimeoutSec = 0 }, "MODEL_REQUEST_TIMEOUT_SEC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %s, got %v", tt.wantErr, err)
			}
		})
	}
}

type fakeResolver map[string]string

func (f fakeResolver) Resolve(_ context.Context, ref string) (string, error) {
	v, ok := f[ref]
	if !ok {
		return "", errors.New("secret not found")
	}
	return v, nil
}

func TestResolveSecrets(t *testing.T) {
	cfg := &Config{
		DBConnectionString: "sm://catalog-dsn",
		S3AccessKey:        "plain-key",
		S3SecretKey:        "sm://s3-secret",
	}
	if !cfg.HasSecretRefs() {
		t.Fatal("expected secret references to be detected")
	}
	r := fakeResolver{"catalog-dsn": "postgres://u:p@db/courses", "s3-secret": "shh"}
	if err := cfg.ResolveSecrets(context.Background(), r); err != nil {
		t.Fatalf("ResolveSecrets returned error: %v", err)
	}
	if cfg.DBConnectionString != "postgres://u:p@db/courses" || cfg.S3SecretKey != "shh" || cfg.S3AccessKey != "plain-key" {
		t.Fatalf("unexpected resolved config: %+v", cfg)
	}
	if cfg.HasSecretRefs() {
		t.Fatal("expected no references after resolution")
	}
}

func TestResolveSecretsMissing(t *testing.T) {
	cfg := &Config{S3SecretKey: "sm://missing"}
	err := cfg.ResolveSecrets(context.Background(), fakeResolver{})
	if err == nil || !strings.Contains(err.Error(), "S3_SECRET_KEY") {
		t.Fatalf("expected error naming S3_SECRET_KEY, got %v", err)
	}
}
