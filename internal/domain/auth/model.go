package auth

import (
	"strings"
	"time"
)

// Platform identifies the client category used to pick a Cognito app client
type Platform string

const (
	// PlatformUnspecified means no (or an unknown) platform hint was supplied
	PlatformUnspecified Platform = ""
	// PlatformWeb is the browser client
	PlatformWeb Platform = "web"
	// PlatformMobile is the native mobile client
	PlatformMobile Platform = "mobile"
)

// ParsePlatform maps a raw platform hint onto a Platform. Matching is
// case-insensitive; anything other than "web" or "mobile" is unspecified.
func ParsePlatform(s string) Platform {
	switch {
	case strings.EqualFold(s, string(PlatformWeb)):
		return PlatformWeb
	case strings.EqualFold(s, string(PlatformMobile)):
		return PlatformMobile
	default:
		return PlatformUnspecified
	}
}

// ClientCredential is the Cognito app client resolved for a single request.
// An empty ClientSecret means the app client has no secret.
type ClientCredential struct {
	ClientID     string
	ClientSecret string
}

// HasSecret reports whether a SECRET_HASH must accompany provider calls
func (c ClientCredential) HasSecret() bool {
	return c.ClientSecret != ""
}

// TokenSet holds the tokens issued on a completed authentication
type TokenSet struct {
	AccessToken  string `json:"accessToken,omitempty"`
	IDToken      string `json:"idToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// StartInput represents the input for starting a custom challenge
type StartInput struct {
	Username string `json:"username"`
	Platform string `json:"platform,omitempty"`
}

// StartResult carries the opaque session and the challenge Cognito issued
type StartResult struct {
	Session       string `json:"session"`
	ChallengeName string `json:"challengeName"`
}

// VerifyInput represents the answer to a custom challenge
type VerifyInput struct {
	Username string `json:"username"`
	Session  string `json:"session"`
	Code     string `json:"code"`
	Platform string `json:"platform,omitempty"`
}

// VerifyResult reports whether the challenge completed. Success=false is a
// terminal outcome for the session, not an error.
type VerifyResult struct {
	Success bool `json:"success"`
	TokenSet
}

// RegisterInput represents the input for user registration
type RegisterInput struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// RegisteredMessage is the message of a successful registration
const RegisteredMessage = "User registered"

// RegisterResult represents the output of user registration
type RegisterResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// LoginInput represents the input for password login
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Platform string `json:"platform,omitempty"`
}

// LoginOutcome tags which variant of LoginResult is populated
type LoginOutcome int

const (
	// LoginRejected means Cognito refused the credentials; Message holds the reason
	LoginRejected LoginOutcome = iota
	// LoginAuthenticated means tokens were issued
	LoginAuthenticated
	// LoginChallenged means a further challenge must be answered via verify
	LoginChallenged
)

// ChallengeMessage is the login message used when a challenge is pending
const ChallengeMessage = "challenge"

// LoginResult represents the output of password login
type LoginResult struct {
	Outcome LoginOutcome `json:"-"`
	Success bool         `json:"success"`
	TokenSet
	Message       string `json:"message,omitempty"`
	Session       string `json:"session,omitempty"`
	ChallengeName string `json:"challengeName,omitempty"`
}

// Operation names the gateway operation an attempt belongs to
type Operation string

const (
	OperationStart    Operation = "start"
	OperationVerify   Operation = "verify"
	OperationRegister Operation = "register"
	OperationLogin    Operation = "login"
)

// AttemptOutcome classifies how an operation ended
type AttemptOutcome string

const (
	AttemptSucceeded  AttemptOutcome = "success"
	AttemptChallenged AttemptOutcome = "challenge"
	AttemptRejected   AttemptOutcome = "rejected"
	AttemptFailed     AttemptOutcome = "error"
)

// AuthAttempt is the audit record written after each operation
type AuthAttempt struct {
	ID        string
	Operation Operation
	Username  string
	Platform  Platform
	ClientID  string
	Outcome   AttemptOutcome
	Reason    string
	Subject   string // Cognito sub, when tokens were issued
	Timestamp time.Time
}
