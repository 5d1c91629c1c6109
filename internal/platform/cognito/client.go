package cognito

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"

	appConfig "github.com/oraxus/sports-gateway/internal/common/config"
)

// NewClient creates a new AWS Cognito client.
// Retries are disabled: every provider failure is surfaced to the caller as-is.
func NewClient(ctx context.Context, cfg *appConfig.Config) (*cognitoidentityprovider.Client, error) {
	// Load AWS configuration
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.AWSRegion),
		config.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	// Create Cognito client
	client := cognitoidentityprovider.NewFromConfig(awsCfg)

	return client, nil
}
