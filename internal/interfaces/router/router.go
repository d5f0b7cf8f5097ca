package router

import (
	"fmt"

	"hatchery-backend/internal/application/calculator"
	catalogsvc "hatchery-backend/internal/application/catalog"
	gridsvc "hatchery-backend/internal/application/grid"
	cyclesvc "hatchery-backend/internal/application/hatchcycles"
	"hatchery-backend/internal/config"
	"hatchery-backend/internal/infrastructure/database"
	cataloghandler "hatchery-backend/internal/interfaces/handlers/catalog"
	gridhandler "hatchery-backend/internal/interfaces/handlers/grid"
	cyclehandler "hatchery-backend/internal/interfaces/handlers/hatchcycles"
	healthhandler "hatchery-backend/internal/interfaces/handlers/health"
	"hatchery-backend/internal/middleware"
	"hatchery-backend/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Server is the assembled application and the resources main has to close.
type Server struct {
	App   *fiber.App
	DB    *gorm.DB
	Redis *redis.Client
	Grids *gridsvc.Registry
}

// CreateApp connects to the configured stores and builds the app. Without a
// database only the health routes are mounted.
func CreateApp(cfg *config.Config) (*Server, error) {
	logger.Setup(cfg.LogLevel, cfg.LogPretty)

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis url: %w", err)
		}
		rdb = redis.NewClient(opt)
	}

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if cfg.Env != "production" {
			if err := database.AutoMigrate(db); err != nil {
				return nil, fmt.Errorf("auto migrate: %w", err)
			}
		}
	}
	return Build(cfg, db, rdb)
}

// Build wires middleware, services and routes over already opened stores.
func Build(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*Server, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler(rdb),
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix:  cfg.FrontendURLEndsWith,
		DevPassword:    cfg.DevPassword,
		AllowLocalhost: cfg.AllowCrossSiteDev,
	}))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Session(rdb))

	srv := &Server{App: app, DB: db, Redis: rdb}
	hh := &healthhandler.Handlers{Rdb: rdb, HealthAdminKey: cfg.HealthAdminKey}
	hh.Register(app)

	if db == nil {
		log.Warn().Msg("router: no database configured, serving health routes only")
		return srv, nil
	}
	if sqlDB, err := db.DB(); err == nil {
		hh.DB = sqlDB
	}

	policy := calculator.Policy{RecomputeExpected: cfg.RecomputeExpected, RecomputeCulled: cfg.RecomputeCulled}
	cycles, err := cyclesvc.NewService(db, policy)
	if err != nil {
		return nil, err
	}
	cat, err := catalogsvc.New(db)
	if err != nil {
		return nil, err
	}
	srv.Grids = gridsvc.NewRegistry(cycles, cfg.GridIdleTTL)
	hh.Grid = srv.Grids

	api := app.Group("/api/v1", middleware.RequireAuth())
	(&cyclehandler.Handlers{Service: cycles}).Register(api.Group("/hatch-cycles"))
	(&gridhandler.Handlers{Registry: srv.Grids}).Register(api.Group("/grid"))
	cataloghandler.Mount(api, cat)

	return srv, nil
}
