package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/oraxus/sports-gateway/internal/domain/auth"
	"github.com/oraxus/sports-gateway/internal/platform/dynamodb/client"
)

// DefaultRetention is how long attempts are kept before DynamoDB TTL removes them
const DefaultRetention = 90 * 24 * time.Hour

const itemTypeAuthAttempt = "AuthAttempt"

// attemptTimeLayout keeps nanoseconds at a fixed width so sort keys order
// chronologically. time.RFC3339Nano trims trailing zeros and does not.
const attemptTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// authAttemptItem is the DynamoDB representation of an auth.AuthAttempt.
//
//	PK  USER#<username>
//	SK  ATTEMPT#<fixed-width UTC timestamp>#<id>
type authAttemptItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Type      string `dynamodbav:"Type"`
	ID        string `dynamodbav:"ID"`
	Operation string `dynamodbav:"Operation"`
	Username  string `dynamodbav:"Username"`
	Platform  string `dynamodbav:"Platform,omitempty"`
	ClientID  string `dynamodbav:"ClientID,omitempty"`
	Outcome   string `dynamodbav:"Outcome"`
	Reason    string `dynamodbav:"Reason,omitempty"`
	Subject   string `dynamodbav:"Subject,omitempty"`
	CreatedAt string `dynamodbav:"CreatedAt"`
	TTL       int64  `dynamodbav:"TTL"`
}

// AuthAttemptRepository stores auth attempts in DynamoDB
type AuthAttemptRepository struct {
	client    client.Client
	tableName string
	retention time.Duration
}

var _ auth.AttemptRecorder = (*AuthAttemptRepository)(nil)

// NewAuthAttemptRepository creates a new auth attempt repository.
// A non-positive retention falls back to DefaultRetention.
func NewAuthAttemptRepository(dbClient client.Client, tableName string, retention time.Duration) *AuthAttemptRepository {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &AuthAttemptRepository{
		client:    dbClient,
		tableName: tableName,
		retention: retention,
	}
}

func userPK(username string) string {
	return fmt.Sprintf("USER#%s", username)
}

func attemptSK(ts time.Time, id string) string {
	return fmt.Sprintf("ATTEMPT#%s#%s", ts.UTC().Format(attemptTimeLayout), id)
}

// RecordAttempt writes one attempt. Attempts are immutable; an existing key is
// a conflict.
func (r *AuthAttemptRepository) RecordAttempt(ctx context.Context, attempt auth.AuthAttempt) error {
	item, err := attributevalue.MarshalMap(authAttemptItem{
		PK:        userPK(attempt.Username),
		SK:        attemptSK(attempt.Timestamp, attempt.ID),
		Type:      itemTypeAuthAttempt,
		ID:        attempt.ID,
		Operation: string(attempt.Operation),
		Username:  attempt.Username,
		Platform:  string(attempt.Platform),
		ClientID:  attempt.ClientID,
		Outcome:   string(attempt.Outcome),
		Reason:    attempt.Reason,
		Subject:   attempt.Subject,
		CreatedAt: attempt.Timestamp.UTC().Format(attemptTimeLayout),
		TTL:       attempt.Timestamp.Add(r.retention).Unix(), // DynamoDB TTL
	})
	if err != nil {
		return fmt.Errorf("failed to marshal auth attempt: %w", err)
	}

	cond, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name("PK"))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build condition expression: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     item,
		ConditionExpression:      cond.Condition(),
		ExpressionAttributeNames: cond.Names(),
	})
	if err != nil {
		return fmt.Errorf("failed to put auth attempt: %w", err)
	}

	return nil
}

// ListAttempts returns the most recent attempts for a username, newest first
func (r *AuthAttemptRepository) ListAttempts(ctx context.Context, username string, limit int32) ([]auth.AuthAttempt, error) {
	keyCondition := expression.Key("PK").Equal(expression.Value(userPK(username))).
		And(expression.Key("SK").BeginsWith("ATTEMPT#"))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCondition).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build key condition: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query auth attempts: %w", err)
	}

	var items []authAttemptItem
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal auth attempts: %w", err)
	}

	attempts := make([]auth.AuthAttempt, 0, len(items))
	for _, item := range items {
		// RFC3339Nano parsing accepts any fraction width, including none
		createdAt, _ := time.Parse(time.RFC3339Nano, item.CreatedAt)
		attempts = append(attempts, auth.AuthAttempt{
			ID:        item.ID,
			Operation: auth.Operation(item.Operation),
			Username:  item.Username,
			Platform:  auth.Platform(item.Platform),
			ClientID:  item.ClientID,
			Outcome:   auth.AttemptOutcome(item.Outcome),
			Reason:    item.Reason,
			Subject:   item.Subject,
			Timestamp: createdAt,
		})
	}

	return attempts, nil
}
