package cognito

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/oraxus/sports-gateway/internal/common/utils"
	"github.com/oraxus/sports-gateway/internal/domain/auth"
	apperrors "github.com/oraxus/sports-gateway/internal/domain/errors"
)

const tracerName = "github.com/oraxus/sports-gateway/internal/platform/cognito"

// Cognito auth parameter keys
const (
	paramUsername       = "USERNAME"
	paramPassword       = "PASSWORD"
	paramAnswer         = "ANSWER"
	paramSecretHash     = "SECRET_HASH"
	paramDeliveryMedium = "DELIVERY_MEDIUM"

	deliveryMediumEmail = "EMAIL"
)

// NewService creates a new Cognito auth service
func NewService(api API, opts Options, log *slog.Logger) *Service {
	notifier := opts.Notifier
	if notifier == nil {
		notifier = auth.NopNotifier{}
	}

	return &Service{
		api:        api,
		userPoolID: opts.UserPoolID,
		clients:    opts.Clients,
		timeout:    opts.Timeout,
		notifier:   notifier,
		recorder:   opts.Recorder,
		log:        log,
		tracer:     otel.Tracer(tracerName),
		now:        time.Now,
	}
}

var _ auth.Service = (*Service)(nil)

// Start begins a CUSTOM_AUTH challenge for the user
func (s *Service) Start(ctx context.Context, input auth.StartInput) (result auth.StartResult, err error) {
	username := utils.NormalizeUsername(input.Username)
	if username == "" {
		return auth.StartResult{}, auth.UsernameRequiredError()
	}
	platform := auth.ParsePlatform(input.Platform)

	ctx, span := s.startSpan(ctx, auth.OperationStart, platform)
	defer func() { endSpan(span, err) }()

	attempt := auth.AuthAttempt{Operation: auth.OperationStart, Username: username, Platform: platform}
	defer func() { s.record(ctx, attempt, err) }()

	cred, err := s.clients.Resolve(platform)
	if err != nil {
		return auth.StartResult{}, err
	}
	attempt.ClientID = cred.ClientID

	params := map[string]string{paramUsername: username}
	if utils.LooksLikeEmail(username) {
		params[paramDeliveryMedium] = deliveryMediumEmail
	}
	if err := attachSecretHash(params, username, cred); err != nil {
		return auth.StartResult{}, err
	}

	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	out, err := s.api.AdminInitiateAuth(callCtx, &cognitoidentityprovider.AdminInitiateAuthInput{
		UserPoolId:     aws.String(s.userPoolID),
		ClientId:       aws.String(cred.ClientID),
		AuthFlow:       types.AuthFlowTypeCustomAuth,
		AuthParameters: params,
	})
	if err != nil {
		if apiErr, ok := providerError(err); ok {
			s.log.Warn("Cognito rejected challenge start", "username", username, "platform", platform, "error", providerMessage(apiErr))
			attempt.Outcome = auth.AttemptRejected
			attempt.Reason = providerMessage(apiErr)
			return auth.StartResult{}, auth.StartFailedError(err)
		}
		s.log.Error("Unexpected error starting challenge", "username", username, "error", err)
		return auth.StartResult{}, auth.InternalError(err)
	}

	result = auth.StartResult{
		Session:       aws.ToString(out.Session),
		ChallengeName: string(out.ChallengeName),
	}
	attempt.Outcome = auth.AttemptChallenged

	s.notify(ctx, username)

	return result, nil
}

// Verify answers the pending custom challenge
func (s *Service) Verify(ctx context.Context, input auth.VerifyInput) (result auth.VerifyResult, err error) {
	if !utils.AllPresent(input.Session, input.Code) {
		return auth.VerifyResult{}, auth.SessionCodeRequiredError()
	}
	username := utils.NormalizeUsername(input.Username)
	platform := auth.ParsePlatform(input.Platform)

	ctx, span := s.startSpan(ctx, auth.OperationVerify, platform)
	defer func() { endSpan(span, err) }()

	attempt := auth.AuthAttempt{Operation: auth.OperationVerify, Username: username, Platform: platform}
	defer func() { s.record(ctx, attempt, err) }()

	cred, err := s.clients.Resolve(platform)
	if err != nil {
		return auth.VerifyResult{}, err
	}
	attempt.ClientID = cred.ClientID

	responses := map[string]string{
		paramUsername: username,
		paramAnswer:   input.Code,
	}
	if err := attachSecretHash(responses, username, cred); err != nil {
		return auth.VerifyResult{}, err
	}

	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	out, err := s.api.AdminRespondToAuthChallenge(callCtx, &cognitoidentityprovider.AdminRespondToAuthChallengeInput{
		UserPoolId:         aws.String(s.userPoolID),
		ClientId:           aws.String(cred.ClientID),
		ChallengeName:      types.ChallengeNameTypeCustomChallenge,
		Session:            aws.String(input.Session),
		ChallengeResponses: responses,
	})
	if err != nil {
		if apiErr, ok := providerError(err); ok {
			s.log.Warn("Cognito rejected challenge answer", "username", username, "platform", platform, "error", providerMessage(apiErr))
			attempt.Outcome = auth.AttemptRejected
			attempt.Reason = providerMessage(apiErr)
			return auth.VerifyResult{}, auth.VerifyFailedError(err)
		}
		s.log.Error("Unexpected error verifying challenge", "username", username, "error", err)
		return auth.VerifyResult{}, auth.InternalError(err)
	}

	if out.AuthenticationResult == nil {
		// Cognito issued another challenge; the session is spent for this gateway
		attempt.Outcome = auth.AttemptRejected
		attempt.Reason = string(out.ChallengeName)
		return auth.VerifyResult{Success: false}, nil
	}

	tokens := tokenSet(out.AuthenticationResult)
	attempt.Outcome = auth.AttemptSucceeded
	attempt.Subject = s.subject(tokens.IDToken)

	return auth.VerifyResult{Success: true, TokenSet: tokens}, nil
}

// Register creates a confirmed user with a permanent password
func (s *Service) Register(ctx context.Context, input auth.RegisterInput) (result auth.RegisterResult, err error) {
	username := utils.NormalizeUsername(input.Username)
	if !utils.AllPresent(username, input.Password) {
		return auth.RegisterResult{}, auth.CredentialsRequiredError()
	}

	ctx, span := s.startSpan(ctx, auth.OperationRegister, auth.PlatformUnspecified)
	defer func() { endSpan(span, err) }()

	attempt := auth.AuthAttempt{Operation: auth.OperationRegister, Username: username}
	defer func() { s.record(ctx, attempt, err) }()

	var attributes []types.AttributeType
	if input.Email != "" {
		attributes = append(attributes, types.AttributeType{
			Name:  aws.String("email"),
			Value: aws.String(input.Email),
		})
	}
	if input.PhoneNumber != "" {
		attributes = append(attributes, types.AttributeType{
			Name:  aws.String("phone_number"),
			Value: aws.String(input.PhoneNumber),
		})
	}

	createCtx, cancelCreate := s.callContext(ctx)
	defer cancelCreate()

	_, err = s.api.AdminCreateUser(createCtx, &cognitoidentityprovider.AdminCreateUserInput{
		UserPoolId:     aws.String(s.userPoolID),
		Username:       aws.String(username),
		UserAttributes: attributes,
		MessageAction:  types.MessageActionTypeSuppress,
	})
	if err != nil {
		return s.registerFailed(&attempt, username, "create user", err)
	}

	setCtx, cancelSet := s.callContext(ctx)
	defer cancelSet()

	_, err = s.api.AdminSetUserPassword(setCtx, &cognitoidentityprovider.AdminSetUserPasswordInput{
		UserPoolId: aws.String(s.userPoolID),
		Username:   aws.String(username),
		Password:   aws.String(input.Password),
		Permanent:  true,
	})
	if err != nil {
		s.deleteUser(ctx, username)
		return s.registerFailed(&attempt, username, "set password", err)
	}

	attempt.Outcome = auth.AttemptSucceeded
	result = auth.RegisterResult{Success: true, Message: auth.RegisteredMessage}

	s.notify(ctx, username)

	return result, nil
}

func (s *Service) registerFailed(attempt *auth.AuthAttempt, username, step string, err error) (auth.RegisterResult, error) {
	if apiErr, ok := providerError(err); ok {
		msg := providerMessage(apiErr)
		s.log.Info("Cognito rejected registration", "username", username, "step", step, "error", msg)
		attempt.Outcome = auth.AttemptRejected
		attempt.Reason = msg
		return auth.RegisterResult{Success: false, Message: msg}, nil
	}
	s.log.Error("Unexpected error registering user", "username", username, "step", step, "error", err)
	return auth.RegisterResult{}, auth.InternalError(err)
}

// deleteUser removes a user whose password could not be set. The request
// context may already be done, so the call runs detached from cancellation.
func (s *Service) deleteUser(ctx context.Context, username string) {
	callCtx, cancel := s.callContext(context.WithoutCancel(ctx))
	defer cancel()

	_, err := s.api.AdminDeleteUser(callCtx, &cognitoidentityprovider.AdminDeleteUserInput{
		UserPoolId: aws.String(s.userPoolID),
		Username:   aws.String(username),
	})
	if err != nil {
		s.log.Error("Failed to delete partially registered user", "username", username, "error", err)
		return
	}
	s.log.Info("Deleted partially registered user", "username", username)
}

// Login authenticates with username and password (ADMIN_NO_SRP_AUTH)
func (s *Service) Login(ctx context.Context, input auth.LoginInput) (result auth.LoginResult, err error) {
	username := utils.NormalizeUsername(input.Username)
	if !utils.AllPresent(username, input.Password) {
		return auth.LoginResult{}, auth.CredentialsRequiredError()
	}
	platform := auth.ParsePlatform(input.Platform)

	ctx, span := s.startSpan(ctx, auth.OperationLogin, platform)
	defer func() { endSpan(span, err) }()

	attempt := auth.AuthAttempt{Operation: auth.OperationLogin, Username: username, Platform: platform}
	defer func() { s.record(ctx, attempt, err) }()

	cred, err := s.clients.Resolve(platform)
	if err != nil {
		return auth.LoginResult{}, err
	}
	attempt.ClientID = cred.ClientID

	params := map[string]string{
		paramUsername: username,
		paramPassword: input.Password,
	}
	if err := attachSecretHash(params, username, cred); err != nil {
		return auth.LoginResult{}, err
	}

	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	out, err := s.api.AdminInitiateAuth(callCtx, &cognitoidentityprovider.AdminInitiateAuthInput{
		UserPoolId:     aws.String(s.userPoolID),
		ClientId:       aws.String(cred.ClientID),
		AuthFlow:       types.AuthFlowTypeAdminNoSrpAuth,
		AuthParameters: params,
	})
	if err != nil {
		if apiErr, ok := providerError(err); ok {
			msg := providerMessage(apiErr)
			s.log.Info("Cognito rejected login", "username", username, "platform", platform, "error", msg)
			attempt.Outcome = auth.AttemptRejected
			attempt.Reason = msg
			return auth.LoginResult{Outcome: auth.LoginRejected, Success: false, Message: msg}, nil
		}
		s.log.Error("Unexpected error during login", "username", username, "error", err)
		return auth.LoginResult{}, auth.InternalError(err)
	}

	if out.AuthenticationResult != nil {
		tokens := tokenSet(out.AuthenticationResult)
		attempt.Outcome = auth.AttemptSucceeded
		attempt.Subject = s.subject(tokens.IDToken)
		return auth.LoginResult{Outcome: auth.LoginAuthenticated, Success: true, TokenSet: tokens}, nil
	}

	attempt.Outcome = auth.AttemptChallenged
	attempt.Reason = string(out.ChallengeName)
	return auth.LoginResult{
		Outcome:       auth.LoginChallenged,
		Success:       false,
		Message:       auth.ChallengeMessage,
		Session:       aws.ToString(out.Session),
		ChallengeName: string(out.ChallengeName),
	}, nil
}

// attachSecretHash adds SECRET_HASH when the resolved client has a secret
func attachSecretHash(params map[string]string, username string, cred auth.ClientCredential) error {
	if !cred.HasSecret() {
		return nil
	}
	hash, err := auth.SecretHash(username, cred.ClientID, cred.ClientSecret)
	if err != nil {
		return err
	}
	params[paramSecretHash] = hash
	return nil
}

func tokenSet(r *types.AuthenticationResultType) auth.TokenSet {
	return auth.TokenSet{
		AccessToken:  aws.ToString(r.AccessToken),
		IDToken:      aws.ToString(r.IdToken),
		RefreshToken: aws.ToString(r.RefreshToken),
	}
}

// providerError reports whether err is an exception returned by Cognito itself
func providerError(err error) (smithy.APIError, bool) {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func providerMessage(apiErr smithy.APIError) string {
	if msg := apiErr.ErrorMessage(); msg != "" {
		return msg
	}
	return apiErr.ErrorCode()
}

func (s *Service) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// notify tells the user service about the user. It never affects the result.
func (s *Service) notify(ctx context.Context, username string) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Warn("User service notifier panicked", "username", username, "panic", r)
		}
	}()
	s.notifier.EnsureUserExists(ctx, username)
}

func (s *Service) subject(idToken string) string {
	sub, err := utils.SubjectFromIDToken(idToken)
	if err != nil {
		s.log.Debug("Could not read subject from ID token", "error", err)
		return ""
	}
	return sub
}

// record writes the audit record for an operation. Failures are logged only.
func (s *Service) record(ctx context.Context, attempt auth.AuthAttempt, err error) {
	if s.recorder == nil {
		return
	}
	if err != nil {
		if attempt.Outcome == "" {
			attempt.Outcome = auth.AttemptFailed
		}
		if attempt.Reason == "" {
			attempt.Reason = apperrors.Translate(err).Code
		}
	}

	attempt.ID = ulid.Make().String()
	attempt.Timestamp = s.now().UTC()

	recCtx, cancel := s.callContext(context.WithoutCancel(ctx))
	defer cancel()

	if recErr := s.recorder.RecordAttempt(recCtx, attempt); recErr != nil {
		s.log.Warn("Failed to record auth attempt", "operation", attempt.Operation, "username", attempt.Username, "error", recErr)
	}
}

func (s *Service) startSpan(ctx context.Context, op auth.Operation, p auth.Platform) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "cognito."+string(op),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("auth.operation", string(op)),
			attribute.String("auth.platform", string(p)),
		),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperrors.Translate(err).Code)
	}
	span.End()
}
