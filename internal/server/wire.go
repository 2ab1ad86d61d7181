//go:build wireinject
// +build wireinject

package server

import (
	"context"

	"github.com/google/wire"
	adapterpg "github.com/pharmaseek/marketplace/backend/internal/adapters/postgres"
	"github.com/pharmaseek/marketplace/backend/internal/adapters/rest"
	"github.com/pharmaseek/marketplace/backend/internal/adapters/rest/middleware"
	medicinesapp "github.com/pharmaseek/marketplace/backend/internal/medicines/application"
	pharmaciesapp "github.com/pharmaseek/marketplace/backend/internal/pharmacies/application"
	"github.com/pharmaseek/marketplace/backend/internal/platform/eventbus"
	"github.com/pharmaseek/marketplace/backend/internal/platform/logger"
	"github.com/pharmaseek/marketplace/backend/internal/platform/metrics"
	"github.com/pharmaseek/marketplace/backend/internal/platform/ownership"
	platformpg "github.com/pharmaseek/marketplace/backend/internal/platform/postgres"
	reservationsapp "github.com/pharmaseek/marketplace/backend/internal/reservations/application"
	usersapp "github.com/pharmaseek/marketplace/backend/internal/users/application"
)

// InitializeApp creates a fully configured App with all dependencies
func InitializeApp(ctx context.Context) (*App, func(), error) {
	wire.Build(
		// Bootstrap phase
		logger.NewBootstrapLogger,
		LoadConfig,

		// Logger configuration
		provideLoggerConfig,

		// Main logger
		logger.NewConfiguredLogger,
		wire.Bind(new(logger.Logger), new(*logger.SlogAdapter)),

		// Database
		ConnectDatabase,
		platformpg.NewTransactionManager,

		// Repository providers (includes interface binding)
		adapterpg.ProviderSet,

		// Platform services
		provideOwnershipRegistry,
		wire.Bind(new(ownership.Registry), new(*ownership.DefaultRegistry)),
		eventbus.ProviderSet,
		metrics.ProviderSet,

		// Application services
		usersapp.ProviderSet,
		pharmaciesapp.ProviderSet,
		medicinesapp.ProviderSet,
		reservationsapp.ProviderSet,

		// REST handlers
		rest.ProviderSet,
		provideVersion, // Provide version string for HealthHandler

		// Auth middleware
		provideJWTMiddleware,
		middleware.NewPrincipalResolver,
		middleware.NewAuthorizationMiddleware,

		// HTTP Server
		NewHTTPServer,

		// App
		NewApp,
	)

	return nil, nil, nil
}
