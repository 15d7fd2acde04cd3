package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"mathtree-backend/domain/core/entities"
	pkgerrors "mathtree-backend/pkg/errors"
	"mathtree-backend/pkg/observability"
)

// emailIndex resolves login email addresses to user ids
const emailIndex = "GSI2"

// UserRepository implements ports.UserRepository using DynamoDB.
//
// Table layout:
//
//	PK = USER#<id>        SK = PROFILE
//	GSI2PK = EMAIL#<email>  GSI2SK = PROFILE
type UserRepository struct {
	client    *dynamodb.Client
	tableName string
	tracer    *observability.Tracer
	logger    *zap.Logger
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(client *dynamodb.Client, tableName string, tracer *observability.Tracer, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		client:    client,
		tableName: tableName,
		tracer:    tracer,
		logger:    logger,
	}
}

type userItem struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	GSI2PK       string `dynamodbav:"GSI2PK"`
	GSI2SK       string `dynamodbav:"GSI2SK"`
	EntityType   string `dynamodbav:"EntityType"`
	UserID       string `dynamodbav:"UserID"`
	Email        string `dynamodbav:"Email"`
	DisplayName  string `dynamodbav:"DisplayName"`
	PasswordHash string `dynamodbav:"PasswordHash"`
	CreatedAt    string `dynamodbav:"CreatedAt"`
}

func userPK(id string) string {
	return fmt.Sprintf("USER#%s", id)
}

func emailKey(email string) string {
	return fmt.Sprintf("EMAIL#%s", strings.ToLower(email))
}

func toUserItem(user *entities.User) userItem {
	return userItem{
		PK:           userPK(user.ID()),
		SK:           "PROFILE",
		GSI2PK:       emailKey(user.Email()),
		GSI2SK:       "PROFILE",
		EntityType:   "USER",
		UserID:       user.ID(),
		Email:        user.Email(),
		DisplayName:  user.DisplayName(),
		PasswordHash: user.PasswordHash(),
		CreatedAt:    user.CreatedAt().UTC().Format(time.RFC3339Nano),
	}
}

func toUserEntity(item userItem) (*entities.User, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("corrupt user timestamp %q: %w", item.CreatedAt, err)
	}
	return entities.ReconstructUser(item.UserID, item.Email, item.DisplayName, item.PasswordHash, createdAt)
}

// Save persists a new user. The email GSI is eventually consistent, so
// uniqueness is enforced with a second item keyed by the email address
// written in the same transaction.
func (r *UserRepository) Save(ctx context.Context, user *entities.User) error {
	return r.tracer.TraceFunction(ctx, "dynamodb.user.save", func(ctx context.Context) error {
		av, err := attributevalue.MarshalMap(toUserItem(user))
		if err != nil {
			return fmt.Errorf("failed to marshal user: %w", err)
		}

		_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: []types.TransactWriteItem{
				{
					Put: &types.Put{
						TableName:           aws.String(r.tableName),
						Item:                av,
						ConditionExpression: aws.String("attribute_not_exists(PK)"),
					},
				},
				{
					Put: &types.Put{
						TableName: aws.String(r.tableName),
						Item: map[string]types.AttributeValue{
							"PK":         &types.AttributeValueMemberS{Value: emailKey(user.Email())},
							"SK":         &types.AttributeValueMemberS{Value: "UNIQUE"},
							"EntityType": &types.AttributeValueMemberS{Value: "EMAIL_CLAIM"},
							"UserID":     &types.AttributeValueMemberS{Value: user.ID()},
						},
						ConditionExpression: aws.String("attribute_not_exists(PK)"),
					},
				},
			},
		})
		if err != nil {
			var canceled *types.TransactionCanceledException
			if errors.As(err, &canceled) {
				for _, reason := range canceled.CancellationReasons {
					if isConditionFailure(reason) {
						return pkgerrors.NewConflictError("email already registered")
					}
				}
			}
			return pkgerrors.NewDatabaseError("save user", err)
		}
		return nil
	})
}

// GetByEmail retrieves a user by email address
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	var user *entities.User
	err := r.tracer.TraceFunction(ctx, "dynamodb.user.getByEmail", func(ctx context.Context) error {
		keyCond := expression.Key("GSI2PK").Equal(expression.Value(emailKey(email))).
			And(expression.Key("GSI2SK").Equal(expression.Value("PROFILE")))
		expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
		if err != nil {
			return fmt.Errorf("failed to build query expression: %w", err)
		}

		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			IndexName:                 aws.String(emailIndex),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			Limit:                     aws.Int32(1),
		})
		if err != nil {
			return pkgerrors.NewDatabaseError("get user by email", err)
		}
		if len(out.Items) == 0 {
			return pkgerrors.NewNotFoundError("user")
		}

		var item userItem
		if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
			return fmt.Errorf("failed to unmarshal user: %w", err)
		}
		user, err = toUserEntity(item)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID retrieves a user by its ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	var user *entities.User
	err := r.tracer.TraceFunction(ctx, "dynamodb.user.getByID", func(ctx context.Context) error {
		out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: userPK(id)},
				"SK": &types.AttributeValueMemberS{Value: "PROFILE"},
			},
		})
		if err != nil {
			return pkgerrors.NewDatabaseError("get user", err)
		}
		if out.Item == nil {
			return pkgerrors.NewNotFoundError("user")
		}

		var item userItem
		if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
			return fmt.Errorf("failed to unmarshal user: %w", err)
		}
		user, err = toUserEntity(item)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
