package http

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/amora-app/amora-backend/internal/delivery/http/handler"
	"github.com/amora-app/amora-backend/internal/delivery/http/middleware"
	"github.com/amora-app/amora-backend/internal/domain"
)

type Router struct {
	discoveryHandler *handler.DiscoveryHandler
	swipeHandler     *handler.SwipeHandler
	matchHandler     *handler.MatchHandler
	locationHandler  *handler.LocationHandler
	authMiddleware   *middleware.AuthMiddleware
	logger           *zap.Logger
}

func NewRouter(
	discoveryHandler *handler.DiscoveryHandler,
	swipeHandler *handler.SwipeHandler,
	matchHandler *handler.MatchHandler,
	locationHandler *handler.LocationHandler,
	authMiddleware *middleware.AuthMiddleware,
	logger *zap.Logger,
) *Router {
	return &Router{
		discoveryHandler: discoveryHandler,
		swipeHandler:     swipeHandler,
		matchHandler:     matchHandler,
		locationHandler:  locationHandler,
		authMiddleware:   authMiddleware,
		logger:           logger,
	}
}

// registerValidations installs custom binding validators so malformed
// requests are rejected at bind time, before reaching a use case.
func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("swipeaction", func(fl validator.FieldLevel) bool {
			return domain.SwipeType(fl.Field().String()).Valid()
		})
	}
}

func (r *Router) Setup() *gin.Engine {
	registerValidations()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(r.logger))

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	// API v1
	v1 := router.Group("/api/v1")
	protected := v1.Group("")
	protected.Use(r.authMiddleware.RequireAuth())
	{
		protected.POST("/discover", r.discoveryHandler.Discover)

		swipe := protected.Group("/swipe")
		{
			swipe.POST("", r.swipeHandler.CreateSwipe)
			swipe.POST("/undo", r.swipeHandler.UndoSwipe)
		}

		matches := protected.Group("/matches")
		{
			matches.GET("/paginated", r.matchHandler.ListPaginated)
			matches.GET("/:id", r.matchHandler.GetByID)
			matches.POST("/unmatch", r.matchHandler.Unmatch)
		}

		protected.PUT("/location", r.locationHandler.UpdateLocation)
		protected.GET("/visibility", r.locationHandler.GetVisibility)
		protected.PUT("/visibility", r.locationHandler.SetVisibility)
	}

	return router
}
