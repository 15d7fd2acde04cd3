package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// LoginLimiter throttles login attempts per email address using DynamoDB
// as the state store, so the limit holds across Lambda invocations and
// multiple API instances. Entries expire via the table's TTL attribute.
type LoginLimiter struct {
	client    *dynamodb.Client
	tableName string
	limit     int
	window    time.Duration
}

type loginLimitEntry struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Count     int    `dynamodbav:"Count"`
	WindowEnd string `dynamodbav:"WindowEnd"`
	TTL       int64  `dynamodbav:"TTL"`
}

// NewLoginLimiter creates a login limiter. A nil client disables limiting,
// which is how local development runs.
func NewLoginLimiter(client *dynamodb.Client, tableName string, attemptsPerWindow int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		client:    client,
		tableName: tableName,
		limit:     attemptsPerWindow,
		window:    window,
	}
}

// Allow checks whether another login attempt for the email is permitted.
// Storage errors fail open so an outage never locks everyone out.
func (l *LoginLimiter) Allow(ctx context.Context, email string) (bool, error) {
	if l.client == nil {
		return true, nil
	}

	now := time.Now()
	windowStart := now.Truncate(l.window)
	windowEnd := windowStart.Add(l.window)

	pk := fmt.Sprintf("RATELIMIT#LOGIN#%s#%d", email, windowStart.Unix())

	// Atomic increment, conditional on the counter staying below the limit
	update := &dynamodb.UpdateItemInput{
		TableName: aws.String(l.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: "RATELIMIT"},
		},
		UpdateExpression:    aws.String("SET #count = if_not_exists(#count, :zero) + :incr, WindowEnd = :window_end, #ttl = :ttl"),
		ConditionExpression: aws.String("attribute_not_exists(#count) OR #count < :limit"),
		ExpressionAttributeNames: map[string]string{
			"#count": "Count",
			"#ttl":   "TTL",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":zero":       &types.AttributeValueMemberN{Value: "0"},
			":incr":       &types.AttributeValueMemberN{Value: "1"},
			":limit":      &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", l.limit)},
			":window_end": &types.AttributeValueMemberS{Value: windowEnd.Format(time.RFC3339)},
			":ttl":        &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", windowEnd.Add(time.Hour).Unix())},
		},
		ReturnValues: types.ReturnValueAllNew,
	}

	result, err := l.client.UpdateItem(ctx, update)
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return false, nil
		}
		return true, fmt.Errorf("login limiter error (failing open): %w", err)
	}

	var entry loginLimitEntry
	if err := attributevalue.UnmarshalMap(result.Attributes, &entry); err != nil {
		return true, fmt.Errorf("failed to parse login limit entry (failing open): %w", err)
	}

	return entry.Count <= l.limit, nil
}

// Reset clears the limit for an email in the current window
func (l *LoginLimiter) Reset(ctx context.Context, email string) error {
	if l.client == nil {
		return nil
	}

	windowStart := time.Now().Truncate(l.window)
	pk := fmt.Sprintf("RATELIMIT#LOGIN#%s#%d", email, windowStart.Unix())

	_, err := l.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(l.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: "RATELIMIT"},
		},
	})
	return err
}
