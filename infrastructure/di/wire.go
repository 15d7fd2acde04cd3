//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"mathtree-backend/application/commands/bus"
	"mathtree-backend/application/ports"
	querybus "mathtree-backend/application/queries/bus"
	"mathtree-backend/infrastructure/config"
	"mathtree-backend/interfaces/http/rest"
	"mathtree-backend/pkg/auth"
	"mathtree-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *zap.Logger
	Router         *rest.Router
	CommandBus     *bus.CommandBus
	QueryBus       *querybus.QueryBus
	NodeRepository ports.NodeRepository
	UserRepository ports.UserRepository
	EventPublisher ports.EventPublisher
	Cache          ports.Cache
	JWTService     *auth.JWTService
	Metrics        *observability.Metrics
	Tracer         *observability.Tracer
}

// SuperSet is the complete provider set
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideTracer,
	ProvideMetrics,
	ProvideNodeRepository,
	ProvideUserRepository,
	ProvideEventPublisher,
	ProvideCache,
	ProvideJWTService,
	ProvideLoginLimiter,
	ProvideErrorHandler,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideNodeHandler,
	ProvideAuthHandler,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired dependency container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil
}
