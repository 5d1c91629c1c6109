package handlers

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oraxus/sports-gateway/internal/domain/auth"
	apperrors "github.com/oraxus/sports-gateway/internal/domain/errors"
)

// testService is a test implementation of auth.Service
type testService struct {
	startInput    auth.StartInput
	verifyInput   auth.VerifyInput
	registerInput auth.RegisterInput
	loginInput    auth.LoginInput

	startResult    auth.StartResult
	verifyResult   auth.VerifyResult
	registerResult auth.RegisterResult
	loginResult    auth.LoginResult
	err            error
}

func (s *testService) Start(_ context.Context, input auth.StartInput) (auth.StartResult, error) {
	s.startInput = input
	return s.startResult, s.err
}

func (s *testService) Verify(_ context.Context, input auth.VerifyInput) (auth.VerifyResult, error) {
	s.verifyInput = input
	return s.verifyResult, s.err
}

func (s *testService) Register(_ context.Context, input auth.RegisterInput) (auth.RegisterResult, error) {
	s.registerInput = input
	return s.registerResult, s.err
}

func (s *testService) Login(_ context.Context, input auth.LoginInput) (auth.LoginResult, error) {
	s.loginInput = input
	return s.loginResult, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func request(body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod:     http.MethodPost,
		Body:           body,
		RequestContext: events.APIGatewayProxyRequestContext{RequestID: "req-1"},
	}
}

func TestStartHandler(t *testing.T) {
	svc := &testService{startResult: auth.StartResult{Session: "S1", ChallengeName: "CUSTOM_CHALLENGE"}}
	h := NewAuthHandler(svc)

	resp, err := h.Start(context.Background(), discardLogger(), request(`{"username":"user@example.com","platform":"web"}`))

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"session":"S1","challengeName":"CUSTOM_CHALLENGE"}`, resp.Body)
	assert.Equal(t, auth.StartInput{Username: "user@example.com", Platform: "web"}, svc.startInput)
}

func TestVerifyHandler(t *testing.T) {
	svc := &testService{verifyResult: auth.VerifyResult{
		Success:  true,
		TokenSet: auth.TokenSet{AccessToken: "A", IDToken: "I", RefreshToken: "R"},
	}}
	h := NewAuthHandler(svc)

	resp, err := h.Verify(context.Background(), discardLogger(), request(`{"username":"u","session":"S1","code":"123456"}`))

	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"accessToken":"A","idToken":"I","refreshToken":"R"}`, resp.Body)
	assert.Equal(t, "123456", svc.verifyInput.Code)
}

func TestVerifyHandlerFailureHasNoTokens(t *testing.T) {
	h := NewAuthHandler(&testService{verifyResult: auth.VerifyResult{Success: false}})

	resp, err := h.Verify(context.Background(), discardLogger(), request(`{"session":"S1","code":"1"}`))

	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false}`, resp.Body)
}

func TestRegisterHandler(t *testing.T) {
	svc := &testService{registerResult: auth.RegisterResult{Success: true, Message: auth.RegisteredMessage}}
	h := NewAuthHandler(svc)

	body := base64.StdEncoding.EncodeToString([]byte(`{"username":"alice","password":"pw","phoneNumber":"+819012345678"}`))
	req := request(body)
	req.IsBase64Encoded = true

	resp, err := h.Register(context.Background(), discardLogger(), req)

	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"message":"User registered"}`, resp.Body)
	assert.Equal(t, "+819012345678", svc.registerInput.PhoneNumber)
}

func TestLoginHandlerOutcomes(t *testing.T) {
	tests := []struct {
		name   string
		result auth.LoginResult
		want   string
	}{
		{
			name:   "rejected",
			result: auth.LoginResult{Outcome: auth.LoginRejected, Message: "Incorrect username or password"},
			want:   `{"success":false,"message":"Incorrect username or password"}`,
		},
		{
			name:   "challenge",
			result: auth.LoginResult{Outcome: auth.LoginChallenged, Message: "challenge", Session: "S9", ChallengeName: "CUSTOM_CHALLENGE"},
			want:   `{"success":false,"message":"challenge","session":"S9","challengeName":"CUSTOM_CHALLENGE"}`,
		},
		{
			name:   "authenticated",
			result: auth.LoginResult{Outcome: auth.LoginAuthenticated, Success: true, TokenSet: auth.TokenSet{AccessToken: "A", IDToken: "I", RefreshToken: "R"}},
			want:   `{"success":true,"accessToken":"A","idToken":"I","refreshToken":"R"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&testService{loginResult: tt.result})

			resp, err := h.Login(context.Background(), discardLogger(), request(`{"username":"bob","password":"pw"}`))

			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.JSONEq(t, tt.want, resp.Body)
		})
	}
}

func TestHandlerInvalidJSON(t *testing.T) {
	h := NewAuthHandler(&testService{})

	resp, err := h.Login(context.Background(), discardLogger(), request(`{"username":`))

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, resp.Body, `"error":"INVALID_REQUEST"`)
}

func TestHandlerEmptyBodyReachesService(t *testing.T) {
	svc := &testService{err: apperrors.NewInvalidRequestError("Username is required")}
	h := NewAuthHandler(svc)

	_, err := h.Start(context.Background(), discardLogger(), request(""))

	assert.ErrorIs(t, err, apperrors.ErrInvalidRequest)
}

func TestHandlerPropagatesServiceErrors(t *testing.T) {
	h := NewAuthHandler(&testService{err: errors.New("boom")})

	_, err := h.Verify(context.Background(), discardLogger(), request(`{"session":"S","code":"c"}`))

	assert.EqualError(t, err, "boom")
}
