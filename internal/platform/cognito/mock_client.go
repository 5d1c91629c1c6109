package cognito

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
)

// MockCognitoClient is a mock implementation of the API interface for testing
type MockCognitoClient struct {
	AdminInitiateAuthFn           func(ctx context.Context, params *cognitoidentityprovider.AdminInitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminInitiateAuthOutput, error)
	AdminRespondToAuthChallengeFn func(ctx context.Context, params *cognitoidentityprovider.AdminRespondToAuthChallengeInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminRespondToAuthChallengeOutput, error)
	AdminCreateUserFn             func(ctx context.Context, params *cognitoidentityprovider.AdminCreateUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminCreateUserOutput, error)
	AdminSetUserPasswordFn        func(ctx context.Context, params *cognitoidentityprovider.AdminSetUserPasswordInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminSetUserPasswordOutput, error)
	AdminDeleteUserFn             func(ctx context.Context, params *cognitoidentityprovider.AdminDeleteUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminDeleteUserOutput, error)

	// Calls counts invocations per operation name
	Calls map[string]int
}

// NewMockCognitoClient creates a new mock Cognito client
func NewMockCognitoClient() *MockCognitoClient {
	return &MockCognitoClient{Calls: make(map[string]int)}
}

// TotalCalls returns the number of calls across all operations
func (m *MockCognitoClient) TotalCalls() int {
	total := 0
	for _, n := range m.Calls {
		total += n
	}
	return total
}

// AdminInitiateAuth implements the API.AdminInitiateAuth method
func (m *MockCognitoClient) AdminInitiateAuth(ctx context.Context, params *cognitoidentityprovider.AdminInitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminInitiateAuthOutput, error) {
	m.Calls["AdminInitiateAuth"]++
	if m.AdminInitiateAuthFn != nil {
		return m.AdminInitiateAuthFn(ctx, params, optFns...)
	}
	return &cognitoidentityprovider.AdminInitiateAuthOutput{}, nil
}

// AdminRespondToAuthChallenge implements the API.AdminRespondToAuthChallenge method
func (m *MockCognitoClient) AdminRespondToAuthChallenge(ctx context.Context, params *cognitoidentityprovider.AdminRespondToAuthChallengeInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminRespondToAuthChallengeOutput, error) {
	m.Calls["AdminRespondToAuthChallenge"]++
	if m.AdminRespondToAuthChallengeFn != nil {
		return m.AdminRespondToAuthChallengeFn(ctx, params, optFns...)
	}
	return &cognitoidentityprovider.AdminRespondToAuthChallengeOutput{}, nil
}

// AdminCreateUser implements the API.AdminCreateUser method
func (m *MockCognitoClient) AdminCreateUser(ctx context.Context, params *cognitoidentityprovider.AdminCreateUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminCreateUserOutput, error) {
	m.Calls["AdminCreateUser"]++
	if m.AdminCreateUserFn != nil {
		return m.AdminCreateUserFn(ctx, params, optFns...)
	}
	return &cognitoidentityprovider.AdminCreateUserOutput{}, nil
}

// AdminSetUserPassword implements the API.AdminSetUserPassword method
func (m *MockCognitoClient) AdminSetUserPassword(ctx context.Context, params *cognitoidentityprovider.AdminSetUserPasswordInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminSetUserPasswordOutput, error) {
	m.Calls["AdminSetUserPassword"]++
	if m.AdminSetUserPasswordFn != nil {
		return m.AdminSetUserPasswordFn(ctx, params, optFns...)
	}
	return &cognitoidentityprovider.AdminSetUserPasswordOutput{}, nil
}

// AdminDeleteUser implements the API.AdminDeleteUser method
func (m *MockCognitoClient) AdminDeleteUser(ctx context.Context, params *cognitoidentityprovider.AdminDeleteUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminDeleteUserOutput, error) {
	m.Calls["AdminDeleteUser"]++
	if m.AdminDeleteUserFn != nil {
		return m.AdminDeleteUserFn(ctx, params, optFns...)
	}
	return &cognitoidentityprovider.AdminDeleteUserOutput{}, nil
}
