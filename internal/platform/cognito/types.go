package cognito

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"go.opentelemetry.io/otel/trace"

	"github.com/oraxus/sports-gateway/internal/domain/auth"
)

// API is the subset of the Cognito Identity Provider client used by the gateway.
// *cognitoidentityprovider.Client satisfies it.
type API interface {
	// AdminInitiateAuth starts CUSTOM_AUTH and ADMIN_NO_SRP_AUTH flows
	AdminInitiateAuth(ctx context.Context, params *cognitoidentityprovider.AdminInitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminInitiateAuthOutput, error)

	// AdminRespondToAuthChallenge answers a pending challenge
	AdminRespondToAuthChallenge(ctx context.Context, params *cognitoidentityprovider.AdminRespondToAuthChallengeInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminRespondToAuthChallengeOutput, error)

	// AdminCreateUser creates a user without sending an invitation
	AdminCreateUser(ctx context.Context, params *cognitoidentityprovider.AdminCreateUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminCreateUserOutput, error)

	// AdminSetUserPassword sets a permanent password
	AdminSetUserPassword(ctx context.Context, params *cognitoidentityprovider.AdminSetUserPasswordInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminSetUserPasswordOutput, error)

	// AdminDeleteUser removes a half-registered user
	AdminDeleteUser(ctx context.Context, params *cognitoidentityprovider.AdminDeleteUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminDeleteUserOutput, error)
}

// Options configures the Cognito auth service
type Options struct {
	UserPoolID string
	Clients    auth.ClientRegistry

	// Timeout bounds each Cognito call; zero leaves the request context as is
	Timeout time.Duration

	Notifier auth.Notifier
	Recorder auth.AttemptRecorder // optional
}

// Service implements the auth.Service interface using AWS Cognito
type Service struct {
	api        API
	userPoolID string
	clients    auth.ClientRegistry
	timeout    time.Duration
	notifier   auth.Notifier
	recorder   auth.AttemptRecorder
	log        *slog.Logger
	tracer     trace.Tracer
	now        func() time.Time
}
