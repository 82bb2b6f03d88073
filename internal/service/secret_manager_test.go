package service

import (
	"context"
	"os"
	"testing"

	"attendance/internal/config"

	"github.com/rs/zerolog"
)

func TestSecretResourceName(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"db-url", "projects/my-proj/secrets/db-url/versions/latest"},
		{"db-url/versions/3", "projects/my-proj/secrets/db-url/versions/3"},
		{"projects/other/secrets/s3-key", "projects/other/secrets/s3-key/versions/latest"},
		{"projects/other/secrets/s3-key/versions/1", "projects/other/secrets/s3-key/versions/1"},
	}
	for _, tt := range tests {
		if got := secretResourceName("my-proj", tt.ref); got != tt.want {
			t.Errorf("secretResourceName(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestNewSecretManagerServiceRequiresProject(t *testing.T) {
	if _, err := NewSecretManagerService(context.Background(), ""); err == nil {
		t.Fatal("expected error when project ID is empty")
	}
}

func TestResolveConfigSecretsWithoutRefs(t *testing.T) {
	cfg := &config.Config{DBConnectionString: "postgres://localhost/attendance"}
	// No sm:// values, so no client is created and no project is needed.
	if err := ResolveConfigSecrets(context.Background(), cfg, zerolog.Nop()); err != nil {
		t.Fatalf("ResolveConfigSecrets returned error: %v", err)
	}
	if cfg.DBConnectionString != "postgres://localhost/attendance" {
		t.Fatalf("plain value was modified: %q", cfg.DBConnectionString)
	}
}

func TestResolveWithSecretManager(t *testing.T) {
	project := os.Getenv("GCP_PROJECT_ID")
	ref := os.Getenv("SECRET_MANAGER_TEST_REF")
	if project == "" || ref == "" {
		t.Skip("GCP_PROJECT_ID or SECRET_MANAGER_TEST_REF is not set, skip Secret Manager integration test")
	}

	ctx := context.Background()
	sm, err := NewSecretManagerService(ctx, project)
	if err != nil {
		t.Fatalf("failed to create SecretManagerService: %v", err)
	}
	defer sm.Close()

	val, err := sm.Resolve(ctx, ref)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if val == "" {
		t.Fatal("expected a non-empty secret payload")
	}
}
