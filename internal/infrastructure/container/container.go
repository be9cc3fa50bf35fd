package container

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/amora-app/amora-backend/internal/cache"
	"github.com/amora-app/amora-backend/internal/config"
	httpdelivery "github.com/amora-app/amora-backend/internal/delivery/http"
	"github.com/amora-app/amora-backend/internal/delivery/http/handler"
	"github.com/amora-app/amora-backend/internal/delivery/http/middleware"
	"github.com/amora-app/amora-backend/internal/filter"
	"github.com/amora-app/amora-backend/internal/geo"
	"github.com/amora-app/amora-backend/internal/infrastructure/database"
	"github.com/amora-app/amora-backend/internal/infrastructure/notify"
	"github.com/amora-app/amora-backend/internal/infrastructure/server"
	"github.com/amora-app/amora-backend/internal/logging"
	"github.com/amora-app/amora-backend/internal/repository/postgres"
	"github.com/amora-app/amora-backend/internal/usecase/discovery"
	"github.com/amora-app/amora-backend/internal/usecase/location"
	"github.com/amora-app/amora-backend/internal/usecase/matches"
	"github.com/amora-app/amora-backend/internal/usecase/swipe"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *sqlx.DB
	Redis  *redis.Client
	Server *server.Server
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	logger, err := logging.NewLogger(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Initialize database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize Redis
	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	// Initialize repositories
	profileStore := postgres.NewProfileStore(db)
	swipeRepo := postgres.NewSwipeRepository(db)
	matchRepo := postgres.NewMatchRepository(db)

	// Initialize Redis-backed components
	geoIndex := geo.NewIndex(redisClient, cfg.Discovery.GeoMetadataTTL, logger)
	discoveryCache := cache.NewDiscovery(redisClient, cfg.Discovery.CacheTTL, logger)
	undoLog := cache.NewUndoLog(redisClient, cfg.Discovery.UndoDepth, cfg.Discovery.UndoWindow)
	incognitoStore := cache.NewIncognitoStore(redisClient)

	notifier := notify.NewLogNotifier(logger)
	filterEngine := filter.NewEngine()

	// Initialize use cases
	discoveryUseCase := discovery.NewDiscoveryUseCase(
		profileStore,
		swipeRepo,
		geoIndex,
		discoveryCache,
		incognitoStore,
		filterEngine,
		cfg.Discovery,
		logger,
	)

	swipeUseCase := swipe.NewSwipeUseCase(
		swipeRepo,
		matchRepo,
		profileStore,
		undoLog,
		notifier,
		logger,
	)

	matchesUseCase := matches.NewMatchesUseCase(
		matchRepo,
		profileStore,
		logger,
	)

	locationUseCase := location.NewLocationUseCase(
		profileStore,
		geoIndex,
		discoveryCache,
		incognitoStore,
		logger,
	)

	// Initialize handlers
	discoveryHandler := handler.NewDiscoveryHandler(discoveryUseCase)
	swipeHandler := handler.NewSwipeHandler(swipeUseCase)
	matchHandler := handler.NewMatchHandler(matchesUseCase)
	locationHandler := handler.NewLocationHandler(locationUseCase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.AccessSecret)

	// Initialize router
	router := httpdelivery.NewRouter(
		discoveryHandler,
		swipeHandler,
		matchHandler,
		locationHandler,
		authMiddleware,
		logger,
	)

	ginRouter := router.Setup()

	// Initialize server
	srv := server.NewServer(&cfg.Server, ginRouter, logger)

	return &Container{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Redis:  redisClient,
		Server: srv,
	}, nil
}

// Close closes all connections
func (c *Container) Close() error {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Error("error closing redis", zap.Error(err))
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}
