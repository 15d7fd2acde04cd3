package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"mathtree-backend/domain/core/entities"
	"mathtree-backend/domain/core/valueobjects"
	pkgerrors "mathtree-backend/pkg/errors"
	"mathtree-backend/pkg/observability"
)

// recencyIndex orders all nodes by creation time for forest reads
const recencyIndex = "GSI1"

// NodeRepository implements ports.NodeRepository using DynamoDB.
//
// Table layout (single table, shared with users):
//
//	PK = NODE#<id>   SK = METADATA
//	GSI1PK = NODE    GSI1SK = <createdAt>#<id>
//
// The GSI1 sort key is an RFC3339Nano timestamp, so a descending query on
// the index yields most-recent-first without a client-side sort.
type NodeRepository struct {
	client    *dynamodb.Client
	tableName string
	tracer    *observability.Tracer
	logger    *zap.Logger
}

// NewNodeRepository creates a new NodeRepository
func NewNodeRepository(client *dynamodb.Client, tableName string, tracer *observability.Tracer, logger *zap.Logger) *NodeRepository {
	return &NodeRepository{
		client:    client,
		tableName: tableName,
		tracer:    tracer,
		logger:    logger,
	}
}

// nodeItem represents the DynamoDB item structure for a node. Decimal
// values are stored as strings; DynamoDB numbers are binary floats on the
// way through some SDKs and the whole point of decimals is not rounding.
type nodeItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	GSI1PK     string `dynamodbav:"GSI1PK"`
	GSI1SK     string `dynamodbav:"GSI1SK"`
	EntityType string `dynamodbav:"EntityType"`
	NodeID     string `dynamodbav:"NodeID"`
	Value      string `dynamodbav:"Value"`
	Operation  string `dynamodbav:"Operation,omitempty"`
	Operand    string `dynamodbav:"Operand,omitempty"`
	ParentID   string `dynamodbav:"ParentID,omitempty"`
	AuthorID   string `dynamodbav:"AuthorID"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
}

func nodePK(id string) string {
	return fmt.Sprintf("NODE#%s", id)
}

func toNodeItem(node *entities.Node) nodeItem {
	createdAt := node.CreatedAt().UTC().Format(time.RFC3339Nano)
	item := nodeItem{
		PK:         nodePK(node.ID().String()),
		SK:         "METADATA",
		GSI1PK:     "NODE",
		GSI1SK:     fmt.Sprintf("%s#%s", createdAt, node.ID().String()),
		EntityType: "NODE",
		NodeID:     node.ID().String(),
		Value:      node.Value().String(),
		AuthorID:   node.AuthorID(),
		CreatedAt:  createdAt,
	}
	if op, ok := node.Operation(); ok {
		item.Operation = string(op)
	}
	if operand, ok := node.Operand(); ok {
		item.Operand = operand.String()
	}
	if parentID, ok := node.ParentID(); ok {
		item.ParentID = parentID.String()
	}
	return item
}

func (r *NodeRepository) toEntity(item nodeItem) (*entities.Node, error) {
	id, err := valueobjects.NewNodeIDFromString(item.NodeID)
	if err != nil {
		return nil, fmt.Errorf("corrupt node id %q: %w", item.NodeID, err)
	}

	value, err := decimal.NewFromString(item.Value)
	if err != nil {
		return nil, fmt.Errorf("corrupt node value %q: %w", item.Value, err)
	}

	var operation *valueobjects.Operation
	if item.Operation != "" {
		op, err := valueobjects.ParseOperation(item.Operation)
		if err != nil {
			return nil, fmt.Errorf("corrupt node operation %q: %w", item.Operation, err)
		}
		operation = &op
	}

	var operand *decimal.Decimal
	if item.Operand != "" {
		d, err := decimal.NewFromString(item.Operand)
		if err != nil {
			return nil, fmt.Errorf("corrupt node operand %q: %w", item.Operand, err)
		}
		operand = &d
	}

	var parentID *valueobjects.NodeID
	if item.ParentID != "" {
		pid, err := valueobjects.NewNodeIDFromString(item.ParentID)
		if err != nil {
			return nil, fmt.Errorf("corrupt parent id %q: %w", item.ParentID, err)
		}
		parentID = &pid
	}

	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("corrupt node timestamp %q: %w", item.CreatedAt, err)
	}

	return entities.ReconstructNode(id, value, operation, operand, parentID, item.AuthorID, createdAt)
}

// Insert persists a new node. A derived node is written in a transaction
// with a condition check on its parent, so the parent cannot disappear
// between the application-level lookup and the write.
func (r *NodeRepository) Insert(ctx context.Context, node *entities.Node) error {
	return r.tracer.TraceFunction(ctx, "dynamodb.node.insert", func(ctx context.Context) error {
		av, err := attributevalue.MarshalMap(toNodeItem(node))
		if err != nil {
			return fmt.Errorf("failed to marshal node: %w", err)
		}

		parentID, hasParent := node.ParentID()
		if !hasParent {
			_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
				TableName:           aws.String(r.tableName),
				Item:                av,
				ConditionExpression: aws.String("attribute_not_exists(PK)"),
			})
			if err != nil {
				var ccf *types.ConditionalCheckFailedException
				if errors.As(err, &ccf) {
					return pkgerrors.NewConflictError("node already exists: " + node.ID().String())
				}
				return pkgerrors.NewDatabaseError("insert node", err)
			}
			return nil
		}

		_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: []types.TransactWriteItem{
				{
					ConditionCheck: &types.ConditionCheck{
						TableName: aws.String(r.tableName),
						Key: map[string]types.AttributeValue{
							"PK": &types.AttributeValueMemberS{Value: nodePK(parentID.String())},
							"SK": &types.AttributeValueMemberS{Value: "METADATA"},
						},
						ConditionExpression: aws.String("attribute_exists(PK)"),
					},
				},
				{
					Put: &types.Put{
						TableName:           aws.String(r.tableName),
						Item:                av,
						ConditionExpression: aws.String("attribute_not_exists(PK)"),
					},
				},
			},
		})
		if err != nil {
			var canceled *types.TransactionCanceledException
			if errors.As(err, &canceled) {
				// Reason order matches TransactItems order
				if len(canceled.CancellationReasons) > 0 && isConditionFailure(canceled.CancellationReasons[0]) {
					return pkgerrors.NewNotFoundError("parent node " + parentID.String())
				}
				if len(canceled.CancellationReasons) > 1 && isConditionFailure(canceled.CancellationReasons[1]) {
					return pkgerrors.NewConflictError("node already exists: " + node.ID().String())
				}
			}
			return pkgerrors.NewDatabaseError("insert node", err)
		}
		return nil
	})
}

func isConditionFailure(reason types.CancellationReason) bool {
	return reason.Code != nil && *reason.Code == "ConditionalCheckFailed"
}

// FindByID retrieves a node by its ID
func (r *NodeRepository) FindByID(ctx context.Context, id valueobjects.NodeID) (*entities.Node, error) {
	var node *entities.Node
	err := r.tracer.TraceFunction(ctx, "dynamodb.node.find", func(ctx context.Context) error {
		out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: nodePK(id.String())},
				"SK": &types.AttributeValueMemberS{Value: "METADATA"},
			},
		})
		if err != nil {
			return pkgerrors.NewDatabaseError("get node", err)
		}
		if out.Item == nil {
			return pkgerrors.NewNotFoundError("node " + id.String())
		}

		var item nodeItem
		if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
			return fmt.Errorf("failed to unmarshal node: %w", err)
		}

		node, err = r.toEntity(item)
		return err
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

// ListAll retrieves every node, most recently created first
func (r *NodeRepository) ListAll(ctx context.Context) ([]*entities.Node, error) {
	var nodes []*entities.Node
	err := r.tracer.TraceFunction(ctx, "dynamodb.node.list", func(ctx context.Context) error {
		keyCond := expression.Key("GSI1PK").Equal(expression.Value("NODE"))
		expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
		if err != nil {
			return fmt.Errorf("failed to build query expression: %w", err)
		}

		var lastKey map[string]types.AttributeValue
		for {
			out, err := r.client.Query(ctx, &dynamodb.QueryInput{
				TableName:                 aws.String(r.tableName),
				IndexName:                 aws.String(recencyIndex),
				KeyConditionExpression:    expr.KeyCondition(),
				ExpressionAttributeNames:  expr.Names(),
				ExpressionAttributeValues: expr.Values(),
				ScanIndexForward:          aws.Bool(false),
				ExclusiveStartKey:         lastKey,
			})
			if err != nil {
				return pkgerrors.NewDatabaseError("list nodes", err)
			}

			for _, raw := range out.Items {
				var item nodeItem
				if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
					return fmt.Errorf("failed to unmarshal node: %w", err)
				}
				node, err := r.toEntity(item)
				if err != nil {
					// A single corrupt item must not take down the
					// whole forest read
					r.logger.Error("Skipping corrupt node item",
						zap.String("nodeID", item.NodeID),
						zap.Error(err),
					)
					continue
				}
				nodes = append(nodes, node)
			}

			if out.LastEvaluatedKey == nil {
				break
			}
			lastKey = out.LastEvaluatedKey
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return nodes, nil
}
