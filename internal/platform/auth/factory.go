package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/oraxus/sports-gateway/internal/common/config"
	"github.com/oraxus/sports-gateway/internal/domain/auth"
	"github.com/oraxus/sports-gateway/internal/platform/cognito"
	ddbclient "github.com/oraxus/sports-gateway/internal/platform/dynamodb/client"
	"github.com/oraxus/sports-gateway/internal/platform/dynamodb/repository"
	"github.com/oraxus/sports-gateway/internal/platform/secrets"
	"github.com/oraxus/sports-gateway/internal/platform/userservice"
)

// Components is the wired gateway core
type Components struct {
	Service  *cognito.Service
	Notifier auth.Notifier
	Audit    *repository.AuthAttemptRepository // nil when auditing is off

	async   *userservice.AsyncNotifier
	closers []func() error
}

// Drain waits for in-flight notifications. Lambda handlers call it before
// returning.
func (c *Components) Drain() {
	if c.async != nil {
		c.async.Wait()
	}
}

// Close drains notifications and releases connections
func (c *Components) Close() error {
	c.Drain()
	var errs []error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewService wires the Cognito auth service and its collaborators from cfg.
// Client secrets stored in Secrets Manager are applied to cfg first.
func NewService(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Components, error) {
	if cfg.ClientSecretsSecretID != "" {
		loader, err := secrets.NewLoader(ctx, cfg.AWSRegion, log)
		if err != nil {
			return nil, err
		}
		if err := applyClientSecrets(ctx, cfg, loader, log); err != nil {
			return nil, err
		}
	}

	registry := ClientRegistryFromConfig(cfg)
	if !registry.Configured() {
		log.Warn("No Cognito app client configured; every operation will fail with CLIENT_NOT_CONFIGURED")
	}

	cognitoClient, err := cognito.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	components := &Components{}

	notifier, err := components.newNotifier(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	components.Notifier = notifier

	opts := cognito.Options{
		UserPoolID: cfg.UserPoolID,
		Clients:    registry,
		Timeout:    cfg.ProviderTimeout,
		Notifier:   notifier,
	}

	if cfg.AuditTableName != "" {
		dbClient, err := ddbclient.NewDynamoDBClient(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
		}
		components.Audit = repository.NewAuthAttemptRepository(dbClient, cfg.AuditTableName, cfg.AuditRetention)
		opts.Recorder = components.Audit
	}

	components.Service = cognito.NewService(cognitoClient, opts, log)

	log.Info("Auth service initialized",
		"userPoolId", cfg.UserPoolID,
		"region", cfg.AWSRegion,
		"notifierMode", cfg.NotifierMode,
		"notifierEnabled", cfg.NotifierEnabled(),
		"audit", cfg.AuditTableName != "")

	return components, nil
}

// secretApplier overlays stored client secrets on the config
type secretApplier interface {
	Apply(ctx context.Context, cfg *config.Config) error
}

func applyClientSecrets(ctx context.Context, cfg *config.Config, loader secretApplier, log *slog.Logger) error {
	err := loader.Apply(ctx, cfg)
	if err == nil {
		return nil
	}
	if secrets.IsNotFound(err) {
		log.Error("Client secrets secret does not exist", "secretId", cfg.ClientSecretsSecretID)
		return fmt.Errorf("client secrets secret %q not found: %w", cfg.ClientSecretsSecretID, err)
	}
	return err
}

// ClientRegistryFromConfig builds the app client registry
func ClientRegistryFromConfig(cfg *config.Config) auth.ClientRegistry {
	return auth.ClientRegistry{
		LegacyClientID:     cfg.ClientID,
		WebClientID:        cfg.ClientIDWeb,
		MobileClientID:     cfg.ClientIDMobile,
		WebClientSecret:    cfg.ClientSecretWeb,
		MobileClientSecret: cfg.ClientSecretMobile,
	}
}

// newNotifier picks the notifier for NOTIFIER_MODE
func (c *Components) newNotifier(ctx context.Context, cfg *config.Config, log *slog.Logger) (auth.Notifier, error) {
	if !cfg.NotifierEnabled() {
		return auth.NopNotifier{}, nil
	}

	switch cfg.NotifierMode {
	case config.NotifierModeQueue:
		rdb, err := userservice.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, rdb.Close)
		return userservice.NewQueuedNotifier(nil, rdb, cfg.NotifierQueueMax, cfg.NotifierTimeout, log), nil
	default:
		if cfg.IsLambda() {
			// Drain holds every response until the call finishes
			log.Warn("Direct notifier delays Lambda responses by up to NOTIFIER_TIMEOUT; use NOTIFIER_MODE=queue in production",
				"notifierTimeout", cfg.NotifierTimeout)
		}
		c.async = userservice.NewAsyncNotifier(userservice.NewClient(cfg.UserServiceURL, cfg.NotifierTimeout), cfg.NotifierTimeout, log)
		return c.async, nil
	}
}

// NewQueueWorker creates the consumer side of the notification queue
func NewQueueWorker(ctx context.Context, cfg *config.Config, log *slog.Logger) (*userservice.QueuedNotifier, *redis.Client, error) {
	if cfg.RedisURL == "" {
		return nil, nil, errors.New("REDIS_URL is required for the queue worker")
	}
	if cfg.UserServiceURL == "" {
		return nil, nil, errors.New("USER_SERVICE_URL is required for the queue worker")
	}

	rdb, err := userservice.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}

	client := userservice.NewClient(cfg.UserServiceURL, cfg.NotifierTimeout)
	return userservice.NewQueuedNotifier(client, rdb, cfg.NotifierQueueMax, cfg.NotifierTimeout, log), rdb, nil
}
