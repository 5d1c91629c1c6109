package cognito

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oraxus/sports-gateway/internal/domain/auth"
	apperrors "github.com/oraxus/sports-gateway/internal/domain/errors"
)

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
	panic bool
}

func (n *recordingNotifier) EnsureUserExists(_ context.Context, username string) {
	n.mu.Lock()
	n.calls = append(n.calls, username)
	n.mu.Unlock()
	if n.panic {
		panic("user service exploded")
	}
}

type recordingRecorder struct {
	attempts []auth.AuthAttempt
	err      error
}

func (r *recordingRecorder) RecordAttempt(_ context.Context, attempt auth.AuthAttempt) error {
	r.attempts = append(r.attempts, attempt)
	return r.err
}

var testClients = auth.ClientRegistry{
	WebClientID:     "web-client",
	WebClientSecret: "s3cret",
	MobileClientID:  "mobile-client",
}

func newTestService(api API, notifier auth.Notifier, recorder auth.AttemptRecorder) *Service {
	opts := Options{
		UserPoolID: "ap-northeast-1_pool",
		Clients:    testClients,
		Timeout:    time.Second,
		Notifier:   notifier,
	}
	if recorder != nil {
		opts.Recorder = recorder
	}
	return NewService(api, opts, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testIDToken(t *testing.T, sub string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub}).SignedString([]byte("k"))
	require.NoError(t, err)
	return token
}

func TestStart(t *testing.T) {
	mock := NewMockCognitoClient()
	var got *cognitoidentityprovider.AdminInitiateAuthInput
	mock.AdminInitiateAuthFn = func(_ context.Context, params *cognitoidentityprovider.AdminInitiateAuthInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminInitiateAuthOutput, error) {
		got = params
		return &cognitoidentityprovider.AdminInitiateAuthOutput{
			Session:       aws.String("S1"),
			ChallengeName: types.ChallengeNameTypeCustomChallenge,
		}, nil
	}
	notifier := &recordingNotifier{}
	svc := newTestService(mock, notifier, nil)

	result, err := svc.Start(context.Background(), auth.StartInput{Username: " user@example.com ", Platform: "web"})
	require.NoError(t, err)

	assert.Equal(t, auth.StartResult{Session: "S1", ChallengeName: "CUSTOM_CHALLENGE"}, result)
	assert.Equal(t, []string{"user@example.com"}, notifier.calls)

	require.NotNil(t, got)
	assert.Equal(t, types.AuthFlowTypeCustomAuth, got.AuthFlow)
	assert.Equal(t, "web-client", aws.ToString(got.ClientId))
	assert.Equal(t, "ap-northeast-1_pool", aws.ToString(got.UserPoolId))
	assert.Equal(t, map[string]string{
		"USERNAME":        "user@example.com",
		"DELIVERY_MEDIUM": "EMAIL",
		"SECRET_HASH":     "nHkB7zai7mbQXv/sxJk8Q3X+weMe6oFOl2iMVtLXCAE=",
	}, got.AuthParameters)
}

func TestStartWithoutSecret(t *testing.T) {
	mock := NewMockCognitoClient()
	var got *cognitoidentityprovider.AdminInitiateAuthInput
	mock.AdminInitiateAuthFn = func(_ context.Context, params *cognitoidentityprovider.AdminInitiateAuthInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminInitiateAuthOutput, error) {
		got = params
		return &cognitoidentityprovider.AdminInitiateAuthOutput{}, nil
	}
	svc := newTestService(mock, nil, nil)

	_, err := svc.Start(context.Background(), auth.StartInput{Username: "+819012345678", Platform: "MOBILE"})
	require.NoError(t, err)

	assert.Equal(t, "mobile-client", aws.ToString(got.ClientId))
	assert.Equal(t, map[string]string{"USERNAME": "+819012345678"}, got.AuthParameters)
}

func TestStartRequiresUsername(t *testing.T) {
	for _, username := range []string{"", "   "} {
		mock := NewMockCognitoClient()
		notifier := &recordingNotifier{}
		recorder := &recordingRecorder{}
		svc := newTestService(mock, notifier, recorder)

		_, err := svc.Start(context.Background(), auth.StartInput{Username: username, Platform: "web"})

		assert.ErrorIs(t, err, apperrors.ErrInvalidRequest)
		assert.Zero(t, mock.TotalCalls())
		assert.Empty(t, notifier.calls)
		assert.Empty(t, recorder.attempts)
	}
}

func TestStartErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode error
	}{
		{
			name:     "provider rejection",
			err:      &types.UserNotFoundException{Message: aws.String("User does not exist.")},
			wantCode: apperrors.ErrProviderStartFailed,
		},
		{
			name:     "network failure",
			err:      errors.New("connection reset by peer"),
			wantCode: apperrors.ErrInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockCognitoClient()
			mock.AdminInitiateAuthFn = func(context.Context, *cognitoidentityprovider.AdminInitiateAuthInput, ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminInitiateAuthOutput, error) {
				return nil, tt.err
			}
			notifier := &recordingNotifier{}
			svc := newTestService(mock, notifier, nil)

			_, err := svc.Start(context.Background(), auth.StartInput{Username: "user@example.com"})

			assert.ErrorIs(t, err, tt.wantCode)
			assert.Empty(t, notifier.calls)
		})
	}
}

func TestStartClientNotConfigured(t *testing.T) {
	mock := NewMockCognitoClient()
	svc := NewService(mock, Options{UserPoolID: "pool"}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := svc.Start(context.Background(), auth.StartInput{Username: "bob", Platform: "web"})

	assert.ErrorIs(t, err, apperrors.ErrClientNotConfigured)
	assert.Zero(t, mock.TotalCalls())
}

func TestStartNotifierPanicIsIsolated(t *testing.T) {
	mock := NewMockCognitoClient()
	mock.AdminInitiateAuthFn = func(context.Context, *cognitoidentityprovider.AdminInitiateAuthInput, ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminInitiateAuthOutput, error) {
		return &cognitoidentityprovider.AdminInitiateAuthOutput{Session: aws.String("S1")}, nil
	}
	notifier := &recordingNotifier{panic: true}
	svc := newTestService(mock, notifier, nil)

	result, err := svc.Start(context.Background(), auth.StartInput{Username: "bob"})

	require.NoError(t, err)
	assert.Equal(t, "S1", result.Session)
	assert.Len(t, notifier.calls, 1)
}

func TestVerify(t *testing.T) {
	idToken := testIDToken(t, "sub-123")
	mock := NewMockCognitoClient()
	var got *cognitoidentityprovider.AdminRespondToAuthChallengeInput
	mock.AdminRespondToAuthChallengeFn = func(_ context.Context, params *cognitoidentityprovider.AdminRespondToAuthChallengeInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminRespondToAuthChallengeOutput, error) {
		got = params
		return &cognitoidentityprovider.AdminRespondToAuthChallengeOutput{
			AuthenticationResult: &types.AuthenticationResultType{
				AccessToken:  aws.String("A"),
				IdToken:      aws.String(idToken),
				RefreshToken: aws.String("R"),
			},
		}, nil
	}
	recorder := &recordingRecorder{}
	svc := newTestService(mock, nil, recorder)

	result, err := svc.Verify(context.Background(), auth.VerifyInput{
		Username: "user@example.com",
		Session:  "S1",
		Code:     "123456",
		Platform: "web",
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "A", result.AccessToken)
	assert.Equal(t, idToken, result.IDToken)
	assert.Equal(t, "R", result.RefreshToken)

	assert.Equal(t, types.ChallengeNameTypeCustomChallenge, got.ChallengeName)
	assert.Equal(t, "S1", aws.ToString(got.Session))
	assert.Equal(t, "123456", got.ChallengeResponses["ANSWER"])
	assert.Equal(t, "user@example.com", got.ChallengeResponses["USERNAME"])
	assert.Equal(t, "nHkB7zai7mbQXv/sxJk8Q3X+weMe6oFOl2iMVtLXCAE=", got.ChallengeResponses["SECRET_HASH"])

	require.Len(t, recorder.attempts, 1)
	attempt := recorder.attempts[0]
	assert.Equal(t, auth.OperationVerify, attempt.Operation)
	assert.Equal(t, auth.AttemptSucceeded, attempt.Outcome)
	assert.Equal(t, "sub-123", attempt.Subject)
	assert.Equal(t, "web-client", attempt.ClientID)
	assert.NotEmpty(t, attempt.ID)
}

func TestVerifyWithoutAuthenticationResult(t *testing.T) {
	mock := NewMockCognitoClient()
	mock.AdminRespondToAuthChallengeFn = func(context.Context, *cognitoidentityprovider.AdminRespondToAuthChallengeInput, ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminRespondToAuthChallengeOutput, error) {
		return &cognitoidentityprovider.AdminRespondToAuthChallengeOutput{
			ChallengeName: types.ChallengeNameTypeCustomChallenge,
			Session:       aws.String("S2"),
		}, nil
	}
	svc := newTestService(mock, nil, nil)

	result, err := svc.Verify(context.Background(), auth.VerifyInput{Username: "bob", Session: "S1", Code: "000000"})

	require.NoError(t, err)
	assert.Equal(t, auth.VerifyResult{Success: false}, result)
}

func TestVerifyRequiresSessionAndCode(t *testing.T) {
	mock := NewMockCognitoClient()
	svc := newTestService(mock, nil, nil)

	_, err := svc.Verify(context.Background(), auth.VerifyInput{Username: "bob", Session: "", Code: "123456"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidRequest)

	_, err = svc.Verify(context.Background(), auth.VerifyInput{Username: "bob", Session: "S1", Code: ""})
	assert.ErrorIs(t, err, apperrors.ErrInvalidRequest)

	assert.Zero(t, mock.TotalCalls())
}

func TestVerifyErrors(t *testing.T) {
	mock := NewMockCognitoClient()
	mock.AdminRespondToAuthChallengeFn = func(context.Context, *cognitoidentityprovider.AdminRespondToAuthChallengeInput, ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminRespondToAuthChallengeOutput, error) {
		return nil, &types.NotAuthorizedException{Message: aws.String("Invalid session for the user.")}
	}
	svc := newTestService(mock, nil, nil)

	_, err := svc.Verify(context.Background(), auth.VerifyInput{Username: "bob", Session: "S1", Code: "1"})
	assert.ErrorIs(t, err, apperrors.ErrProviderVerifyFailed)

	appErr := apperrors.Translate(err)
	assert.Equal(t, "Failed to verify authentication", appErr.Message)

	mock.AdminRespondToAuthChallengeFn = func(context.Context, *cognitoidentityprovider.AdminRespondToAuthChallengeInput, ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminRespondToAuthChallengeOutput, error) {
		return nil, context.DeadlineExceeded
	}
	_, err = svc.Verify(context.Background(), auth.VerifyInput{Username: "bob", Session: "S1", Code: "1"})
	assert.ErrorIs(t, err, apperrors.ErrInternal)
}

func TestLogin(t *testing.T) {
	mock := NewMockCognitoClient()
	var got *cognitoidentityprovider.AdminInitiateAuthInput
	mock.AdminInitiateAuthFn = func(_ context.Context, params *cognitoidentityprovider.AdminInitiateAuthInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminInitiateAuthOutput, error) {
		got = params
		return &cognitoidentityprovider.AdminInitiateAuthOutput{
			AuthenticationResult: &types.AuthenticationResultType{
				AccessToken:  aws.String("A"),
				IdToken:      aws.String("I"),
				RefreshToken: aws.String("R"),
			},
		}, nil
	}
	notifier := &recordingNotifier{}
	svc := newTestService(mock, notifier, nil)

	result, err := svc.Login(context.Background(), auth.LoginInput{Username: "bob", Password: "pw", Platform: "web"})
	require.NoError(t, err)

	assert.Equal(t, auth.LoginAuthenticated, result.Outcome)
	assert.True(t, result.Success)
	assert.Equal(t, auth.TokenSet{AccessToken: "A", IDToken: "I", RefreshToken: "R"}, result.TokenSet)

	assert.Equal(t, types.AuthFlowTypeAdminNoSrpAuth, got.AuthFlow)
	assert.Equal(t, "pw", got.AuthParameters["PASSWORD"])
	assert.Contains(t, got.AuthParameters, "SECRET_HASH")
	assert.Empty(t, notifier.calls, "login does not notify")
}

func TestLoginWrongPassword(t *testing.T) {
	mock := NewMockCognitoClient()
	var got *cognitoidentityprovider.AdminInitiateAuthInput
	mock.AdminInitiateAuthFn = func(_ context.Context, params *cognitoidentityprovider.AdminInitiateAuthInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminInitiateAuthOutput, error) {
		got = params
		return nil, &types.NotAuthorizedException{Message: aws.String("Incorrect username or password")}
	}
	recorder := &recordingRecorder{}
	svc := newTestService(mock, nil, recorder)

	result, err := svc.Login(context.Background(), auth.LoginInput{Username: "bob", Password: "wrongpw", Platform: "mobile"})
	require.NoError(t, err)

	assert.Equal(t, auth.LoginRejected, result.Outcome)
	assert.False(t, result.Success)
	assert.Equal(t, "Incorrect username or password", result.Message)
	assert.Empty(t, result.Session)

	assert.Equal(t, "mobile-client", aws.ToString(got.ClientId))
	assert.NotContains(t, got.AuthParameters, "SECRET_HASH")

	require.Len(t, recorder.attempts, 1)
	assert.Equal(t, auth.AttemptRejected, recorder.attempts[0].Outcome)
	assert.Equal(t, "Incorrect username or password", recorder.attempts[0].Reason)
}

func TestLoginChallenge(t *testing.T) {
	mock := NewMockCognitoClient()
	mock.AdminInitiateAuthFn = func(context.Context, *cognitoidentityprovider.AdminInitiateAuthInput, ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminInitiateAuthOutput, error) {
		return &cognitoidentityprovider.AdminInitiateAuthOutput{
			ChallengeName: types.ChallengeNameTypeNewPasswordRequired,
			Session:       aws.String("S9"),
		}, nil
	}
	svc := newTestService(mock, nil, nil)

	result, err := svc.Login(context.Background(), auth.LoginInput{Username: "bob", Password: "pw"})
	require.NoError(t, err)

	assert.Equal(t, auth.LoginChallenged, result.Outcome)
	assert.False(t, result.Success)
	assert.Equal(t, "challenge", result.Message)
	assert.Equal(t, "S9", result.Session)
	assert.Equal(t, "NEW_PASSWORD_REQUIRED", result.ChallengeName)
}

func TestLoginErrors(t *testing.T) {
	mock := NewMockCognitoClient()
	svc := newTestService(mock, nil, nil)

	_, err := svc.Login(context.Background(), auth.LoginInput{Username: "bob"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidRequest)
	assert.Zero(t, mock.TotalCalls())

	mock.AdminInitiateAuthFn = func(context.Context, *cognitoidentityprovider.AdminInitiateAuthInput, ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminInitiateAuthOutput, error) {
		return nil, errors.New("dial tcp: i/o timeout")
	}
	_, err = svc.Login(context.Background(), auth.LoginInput{Username: "bob", Password: "pw"})
	assert.ErrorIs(t, err, apperrors.ErrInternal)
}

func TestRegister(t *testing.T) {
	mock := NewMockCognitoClient()
	var created *cognitoidentityprovider.AdminCreateUserInput
	var password *cognitoidentityprovider.AdminSetUserPasswordInput
	mock.AdminCreateUserFn = func(_ context.Context, params *cognitoidentityprovider.AdminCreateUserInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminCreateUserOutput, error) {
		created = params
		return &cognitoidentityprovider.AdminCreateUserOutput{}, nil
	}
	mock.AdminSetUserPasswordFn = func(_ context.Context, params *cognitoidentityprovider.AdminSetUserPasswordInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminSetUserPasswordOutput, error) {
		password = params
		return &cognitoidentityprovider.AdminSetUserPasswordOutput{}, nil
	}
	notifier := &recordingNotifier{}
	svc := newTestService(mock, notifier, nil)

	result, err := svc.Register(context.Background(), auth.RegisterInput{
		Username:    "alice",
		Password:    "Str0ng!pass",
		Email:       "alice@example.com",
		PhoneNumber: "+819012345678",
	})
	require.NoError(t, err)

	assert.Equal(t, auth.RegisterResult{Success: true, Message: "User registered"}, result)
	assert.Equal(t, []string{"alice"}, notifier.calls)

	assert.Equal(t, types.MessageActionTypeSuppress, created.MessageAction)
	require.Len(t, created.UserAttributes, 2)
	assert.Equal(t, "email", aws.ToString(created.UserAttributes[0].Name))
	assert.Equal(t, "phone_number", aws.ToString(created.UserAttributes[1].Name))
	assert.True(t, password.Permanent)
	assert.Equal(t, "Str0ng!pass", aws.ToString(password.Password))
	assert.Zero(t, mock.Calls["AdminDeleteUser"])
}

func TestRegisterWeakPassword(t *testing.T) {
	mock := NewMockCognitoClient()
	mock.AdminSetUserPasswordFn = func(context.Context, *cognitoidentityprovider.AdminSetUserPasswordInput, ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminSetUserPasswordOutput, error) {
		return nil, &types.InvalidPasswordException{Message: aws.String("weak password")}
	}
	var deleted string
	mock.AdminDeleteUserFn = func(_ context.Context, params *cognitoidentityprovider.AdminDeleteUserInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminDeleteUserOutput, error) {
		deleted = aws.ToString(params.Username)
		return &cognitoidentityprovider.AdminDeleteUserOutput{}, nil
	}
	notifier := &recordingNotifier{}
	svc := newTestService(mock, notifier, nil)

	result, err := svc.Register(context.Background(), auth.RegisterInput{Username: "alice", Password: "x"})
	require.NoError(t, err)

	assert.Equal(t, auth.RegisterResult{Success: false, Message: "weak password"}, result)
	assert.Equal(t, "alice", deleted)
	assert.Empty(t, notifier.calls)
}

func TestRegisterCompensationFailureKeepsPasswordMessage(t *testing.T) {
	mock := NewMockCognitoClient()
	mock.AdminSetUserPasswordFn = func(context.Context, *cognitoidentityprovider.AdminSetUserPasswordInput, ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminSetUserPasswordOutput, error) {
		return nil, &types.InvalidPasswordException{Message: aws.String("weak password")}
	}
	mock.AdminDeleteUserFn = func(context.Context, *cognitoidentityprovider.AdminDeleteUserInput, ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminDeleteUserOutput, error) {
		return nil, errors.New("throttled")
	}
	svc := newTestService(mock, nil, nil)

	result, err := svc.Register(context.Background(), auth.RegisterInput{Username: "alice", Password: "x"})

	require.NoError(t, err)
	assert.Equal(t, "weak password", result.Message)
	assert.Equal(t, 1, mock.Calls["AdminDeleteUser"])
}

func TestRegisterDuplicateUser(t *testing.T) {
	mock := NewMockCognitoClient()
	mock.AdminCreateUserFn = func(context.Context, *cognitoidentityprovider.AdminCreateUserInput, ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminCreateUserOutput, error) {
		return nil, &types.UsernameExistsException{Message: aws.String("User account already exists")}
	}
	svc := newTestService(mock, nil, nil)

	result, err := svc.Register(context.Background(), auth.RegisterInput{Username: "alice", Password: "Str0ng!pass"})

	require.NoError(t, err)
	assert.Equal(t, auth.RegisterResult{Success: false, Message: "User account already exists"}, result)
	assert.Zero(t, mock.Calls["AdminSetUserPassword"])
	assert.Zero(t, mock.Calls["AdminDeleteUser"])
}

func TestRegisterRequiresCredentials(t *testing.T) {
	mock := NewMockCognitoClient()
	svc := newTestService(mock, nil, nil)

	_, err := svc.Register(context.Background(), auth.RegisterInput{Username: " ", Password: "pw"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidRequest)

	_, err = svc.Register(context.Background(), auth.RegisterInput{Username: "alice"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidRequest)

	assert.Zero(t, mock.TotalCalls())
}

func TestRecorderFailureDoesNotAffectResult(t *testing.T) {
	mock := NewMockCognitoClient()
	recorder := &recordingRecorder{err: errors.New("table missing")}
	svc := newTestService(mock, nil, recorder)

	result, err := svc.Register(context.Background(), auth.RegisterInput{Username: "alice", Password: "pw"})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, recorder.attempts, 1)
}
