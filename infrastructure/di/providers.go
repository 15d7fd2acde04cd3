package di

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"mathtree-backend/application/commands"
	"mathtree-backend/application/commands/bus"
	commands_handlers "mathtree-backend/application/commands/handlers"
	"mathtree-backend/application/ports"
	"mathtree-backend/application/queries"
	querybus "mathtree-backend/application/queries/bus"
	queries_handlers "mathtree-backend/application/queries/handlers"
	"mathtree-backend/infrastructure/cache"
	"mathtree-backend/infrastructure/config"
	"mathtree-backend/infrastructure/messaging/eventbridge"
	"mathtree-backend/infrastructure/persistence/dynamodb"
	"mathtree-backend/infrastructure/persistence/memory"
	"mathtree-backend/interfaces/http/rest"
	"mathtree-backend/interfaces/http/rest/handlers"
	"mathtree-backend/pkg/auth"
	pkgerrors "mathtree-backend/pkg/errors"
	"mathtree-backend/pkg/observability"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideTracer creates the tracer instance
func ProvideTracer() *observability.Tracer {
	return observability.NewTracer("mathtree-backend")
}

// ProvideMetrics creates the metrics instance. Without the metrics flag
// the CloudWatch client is withheld, which turns recording into a no-op.
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	namespace := fmt.Sprintf("MathTree/%s", cfg.Environment)
	if !cfg.EnableMetrics {
		return observability.NewMetrics(namespace, nil, logger)
	}
	return observability.NewMetrics(namespace, client, logger)
}

// ProvideNodeRepository creates a node repository
func ProvideNodeRepository(client *awsdynamodb.Client, cfg *config.Config, tracer *observability.Tracer, logger *zap.Logger) ports.NodeRepository {
	if cfg.UseMemoryStore {
		return memory.NewNodeRepository()
	}
	return dynamodb.NewNodeRepository(client, cfg.DynamoDBTable, tracer, logger)
}

// ProvideUserRepository creates a user repository
func ProvideUserRepository(client *awsdynamodb.Client, cfg *config.Config, tracer *observability.Tracer, logger *zap.Logger) ports.UserRepository {
	if cfg.UseMemoryStore {
		return memory.NewUserRepository()
	}
	return dynamodb.NewUserRepository(client, cfg.DynamoDBTable, tracer, logger)
}

// ProvideEventPublisher creates an event publisher. No configured bus
// means events are dropped.
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	if cfg.EventBusName == "" {
		return eventbridge.NopPublisher{}
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideCache creates the query result cache
func ProvideCache() ports.Cache {
	return cache.NewMemoryCache()
}

// ProvideJWTService creates the token service
func ProvideJWTService(cfg *config.Config) (*auth.JWTService, error) {
	return auth.NewJWTService(cfg.JWTSecretOrDefault(), cfg.JWTIssuer, cfg.TokenTTL)
}

// ProvideLoginLimiter creates the login throttle
func ProvideLoginLimiter(client *awsdynamodb.Client, cfg *config.Config) *auth.LoginLimiter {
	if cfg.UseMemoryStore {
		// Nil client disables the limiter for local runs
		return auth.NewLoginLimiter(nil, "", cfg.LoginAttempts, cfg.LoginWindow)
	}
	return auth.NewLoginLimiter(client, cfg.DynamoDBTable, cfg.LoginAttempts, cfg.LoginWindow)
}

// ProvideErrorHandler creates the HTTP error handler
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// zapLoggerAdapter adapts zap to the command bus logger interface
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Sugar().Infow(msg, keysAndValues...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Sugar().Errorw(msg, keysAndValues...)
}

// CommandHandlerAdapter adapts specific command handlers to the generic interface
type CommandHandlerAdapter struct {
	handler func(context.Context, bus.Command) error
}

func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd bus.Command) error {
	return a.handler(ctx, cmd)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	nodeRepo ports.NodeRepository,
	publisher ports.EventPublisher,
	queryCache ports.Cache,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *bus.CommandBus {
	commandBus := bus.NewCommandBus(
		bus.LoggingMiddleware(&zapLoggerAdapter{logger}),
		bus.MetricsMiddleware(metrics),
	)

	rootHandler := commands_handlers.NewCreateRootNodeHandler(nodeRepo, publisher, queryCache, logger)
	commandBus.Register(commands.CreateRootNodeCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			rootCmd, ok := cmd.(commands.CreateRootNodeCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return rootHandler.Handle(ctx, rootCmd)
		},
	})

	childHandler := commands_handlers.NewCreateChildNodeHandler(nodeRepo, publisher, queryCache, logger)
	commandBus.Register(commands.CreateChildNodeCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			childCmd, ok := cmd.(commands.CreateChildNodeCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return childHandler.Handle(ctx, childCmd)
		},
	})

	return commandBus
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	nodeRepo ports.NodeRepository,
	queryCache ports.Cache,
	cfg *config.Config,
	logger *zap.Logger,
) *querybus.QueryBus {
	queryBus := querybus.NewQueryBus()

	listForestHandler := queries_handlers.NewListForestHandler(nodeRepo, queryCache, cfg.ForestCacheTTL, logger)
	queryBus.Register(queries.ListForestQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			listQuery, ok := query.(queries.ListForestQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return listForestHandler.Handle(ctx, listQuery)
		},
	})

	getNodeHandler := queries_handlers.NewGetNodeHandler(nodeRepo, logger)
	queryBus.Register(queries.GetNodeQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetNodeQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return getNodeHandler.Handle(ctx, getQuery)
		},
	})

	return queryBus
}

// ProvideNodeHandler creates the node HTTP handler
func ProvideNodeHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *handlers.NodeHandler {
	return handlers.NewNodeHandler(commandBus, queryBus, errorHandler, logger)
}

// ProvideAuthHandler creates the auth HTTP handler
func ProvideAuthHandler(
	userRepo ports.UserRepository,
	publisher ports.EventPublisher,
	jwtService *auth.JWTService,
	loginLimiter *auth.LoginLimiter,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *handlers.AuthHandler {
	return handlers.NewAuthHandler(userRepo, publisher, jwtService, loginLimiter, errorHandler, logger)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	nodeHandler *handlers.NodeHandler,
	authHandler *handlers.AuthHandler,
	jwtService *auth.JWTService,
	cfg *config.Config,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(nodeHandler, authHandler, jwtService, cfg.AllowedOrigins, logger)
}
