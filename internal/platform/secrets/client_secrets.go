package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/aws-secretsmanager-caching-go/v2/secretcache"

	"github.com/oraxus/sports-gateway/internal/common/config"
)

// SecretStringGetter reads a secret through a cache. *secretcache.Cache satisfies it.
type SecretStringGetter interface {
	GetSecretString(secretID string) (string, error)
}

// SecretsManagerAPI is the direct Secrets Manager call used when no cache is available
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Loader reads Cognito app client secrets from Secrets Manager
type Loader struct {
	api   SecretsManagerAPI
	cache SecretStringGetter
	log   *slog.Logger
}

// NewLoader creates a loader backed by a Secrets Manager client and secret cache
func NewLoader(ctx context.Context, region string, log *slog.Logger) (*Loader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	client := secretsmanager.NewFromConfig(awsCfg)

	loader := &Loader{api: client, log: log}

	cache, err := secretcache.New(func(c *secretcache.Cache) {
		c.Client = client
	})
	if err != nil {
		// Fall back to direct API calls
		log.Warn("Failed to initialize secret cache", "error", err)
	} else {
		loader.cache = cache
	}

	return loader, nil
}

// NewLoaderWithClients creates a loader from explicit dependencies; cache may be nil
func NewLoaderWithClients(api SecretsManagerAPI, cache SecretStringGetter, log *slog.Logger) *Loader {
	return &Loader{api: api, cache: cache, log: log}
}

// LoadClientSecrets reads and parses the JSON client secrets document
func (l *Loader) LoadClientSecrets(ctx context.Context, secretID string) (config.ClientSecrets, error) {
	raw, err := l.secretString(ctx, secretID)
	if err != nil {
		return config.ClientSecrets{}, fmt.Errorf("failed to get client secrets %q: %w", secretID, err)
	}

	var secrets config.ClientSecrets
	if err := json.Unmarshal([]byte(raw), &secrets); err != nil {
		return config.ClientSecrets{}, fmt.Errorf("failed to parse client secrets %q: %w", secretID, err)
	}

	return secrets, nil
}

func (l *Loader) secretString(ctx context.Context, secretID string) (string, error) {
	if l.cache != nil {
		return l.cache.GetSecretString(secretID)
	}

	result, err := l.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return "", err
	}
	if result.SecretString == nil {
		return "", errors.New("secret has no string value")
	}
	return *result.SecretString, nil
}

// IsNotFound reports whether err means the secret does not exist
func IsNotFound(err error) bool {
	var notFound *types.ResourceNotFoundException
	return errors.As(err, &notFound)
}

// Apply loads the secret named by cfg and overlays it on cfg. A missing
// secret id is a no-op.
func (l *Loader) Apply(ctx context.Context, cfg *config.Config) error {
	if cfg.ClientSecretsSecretID == "" {
		return nil
	}

	secrets, err := l.LoadClientSecrets(ctx, cfg.ClientSecretsSecretID)
	if err != nil {
		return err
	}
	cfg.ApplyClientSecrets(secrets)

	l.log.Info("Loaded Cognito client secrets", "secret_id", cfg.ClientSecretsSecretID,
		"web", secrets.Web != "", "mobile", secrets.Mobile != "")
	return nil
}
