package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"attendance/internal/config"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// SecretManagerService resolves sm:// config references against
// Google Cloud Secret Manager
type SecretManagerService interface {
	Resolve(ctx context.Context, ref string) (string, error)
	Close() error
}

type secretManagerService struct {
	client    *secretmanager.Client
	projectID string
}

func NewSecretManagerService(ctx context.Context, projectID string, opts ...option.ClientOption) (SecretManagerService, error) {
	if projectID == "" {
		return nil, errors.New("GCP_PROJECT_ID is required to resolve secret references")
	}

	client, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Secret Manager client: %w", err)
	}

	return &secretManagerService{
		client:    client,
		projectID: projectID,
	}, nil
}

// Resolve reads the payload of a secret version. ref is a secret name,
// optionally with a "/versions/N" suffix, or a full resource name.
func (s *secretManagerService) Resolve(ctx context.Context, ref string) (string, error) {
	req := &secretmanagerpb.AccessSecretVersionRequest{
		Name: secretResourceName(s.projectID, ref),
	}

	result, err := s.client.AccessSecretVersion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to access secret version: %w", err)
	}

	return string(result.Payload.Data), nil
}

func (s *secretManagerService) Close() error {
	return s.client.Close()
}

func secretResourceName(projectID, ref string) string {
	name := ref
	if !strings.HasPrefix(ref, "projects/") {
		name = fmt.Sprintf("projects/%s/secrets/%s", projectID, ref)
	}
	if !strings.Contains(name, "/versions/") {
		name += "/versions/latest"
	}
	return name
}

// ResolveConfigSecrets replaces sm:// references in cfg. It only talks to
// Secret Manager when at least one reference is present.
func ResolveConfigSecrets(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	if !cfg.HasSecretRefs() {
		return nil
	}
	sm, err := NewSecretManagerService(ctx, cfg.GCPProjectID)
	if err != nil {
		return err
	}
	defer func() {
		if err := sm.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close Secret Manager client")
		}
	}()

	if err := cfg.ResolveSecrets(ctx, sm); err != nil {
		return err
	}
	logger.Info().Str("project", cfg.GCPProjectID).Msg("Config secrets resolved from Secret Manager")
	return nil
}
