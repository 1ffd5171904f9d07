package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/soltixdb/kcluster/internal/config"
	"github.com/soltixdb/kcluster/internal/handlers"
	"github.com/soltixdb/kcluster/internal/logging"
	"github.com/soltixdb/kcluster/internal/middleware"
	"github.com/soltixdb/kcluster/internal/services"
	"github.com/soltixdb/kcluster/internal/utils"
)

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, clusterService *services.ClusterService, cfg config.Config) *handlers.Handler {
	h := handlers.New(logger, clusterService)

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger, logging.DefaultMiddlewareConfig()))

	// Health check (no auth required)
	app.Get("/health", h.Health)

	authMiddleware := middleware.APIKeyAuth(logger, cfg.Auth.APIKeys, cfg.Auth.Enabled)
	v1 := app.Group("/v1", authMiddleware)

	// Clustering Routes
	clusters := v1.Group("/cluster")
	clusters.Get("/seeders", h.Seeders)
	clusters.Post("/kplusplus", h.Run(services.OpKPlusPlus))
	clusters.Post("/kplusplus/all", h.Run(services.OpKPlusPlusAll))
	clusters.Post("/ksimple", h.Run(services.OpKSimple))
	clusters.Post("/ksimple/all", h.Run(services.OpKSimpleAll))
	clusters.Post("/knear", h.Run(services.OpKNear))
	clusters.Post("/knear/avg", h.Run(services.OpKNearAvg))
	clusters.Post("/kdynamic", h.Run(services.OpKDynamic))
	clusters.Post("/kband", h.Run(services.OpKBand))
	clusters.Post("/run", h.Run(services.OpRun))

	// Breakpoint Routes
	v1.Post("/breaks", h.Run(services.OpKBig))

	// Adjacency Diagnostics Routes
	v1.Post("/adjacency/count", h.Run(services.OpAdjacencyCount))
	v1.Post("/adjacency/diffs", h.Run(services.OpAdjacencyDiffs))

	// 404 handler
	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, clusterService *services.ClusterService, cfg config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "kcluster",
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(logger),
		ReadTimeout:           utils.ServerReadTimeout,
		WriteTimeout:          utils.ServerWriteTimeout,
		IdleTimeout:           utils.ServerIdleTimeout,
		BodyLimit:             utils.BodyLimit,
	})

	Setup(app, logger, clusterService, cfg)

	return app
}
