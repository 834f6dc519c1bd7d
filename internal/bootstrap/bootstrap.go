package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/yigit/coursecatalog/internal/app/controllers"
	"github.com/yigit/coursecatalog/internal/app/jobs"
	appMigrations "github.com/yigit/coursecatalog/internal/app/migrations"
	appRepos "github.com/yigit/coursecatalog/internal/app/repositories"
	"github.com/yigit/coursecatalog/internal/app/repositories/memstore"
	appRoutes "github.com/yigit/coursecatalog/internal/app/routes"
	appServices "github.com/yigit/coursecatalog/internal/app/services"
	"github.com/yigit/coursecatalog/internal/config"
	"github.com/yigit/coursecatalog/internal/db"
	appMiddleware "github.com/yigit/coursecatalog/internal/middleware"
	pkgAuth "github.com/yigit/coursecatalog/internal/pkg/auth"
	"github.com/yigit/coursecatalog/internal/pkg/helpers"
	"github.com/yigit/coursecatalog/internal/pkg/logger"
	"github.com/yigit/coursecatalog/internal/pkg/metrics"
	"github.com/yigit/coursecatalog/internal/pkg/snapshot"
	"github.com/yigit/coursecatalog/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	Services       *appServices.Services
	Cache          *snapshot.Cache
	JWTService     *pkgAuth.JWTService
	AuthMiddleware *appMiddleware.AuthMiddleware
	RateLimiter    *appMiddleware.RateLimiter // nil when rate limiting is disabled
	Scheduler      *jobs.Scheduler
	Controllers    appRoutes.Controllers
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase opens the record store selected by the configuration. For
// Postgres it also applies migrations and, when enabled, seeds an empty
// database from the fixture. The returned close function releases the store.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*appRepos.Repositories, func(), error) {
	if cfg.Database.Driver == config.DriverMemory {
		data, err := loadFixture(cfg.Database.FixturePath, lgr)
		if err != nil {
			return nil, nil, err
		}
		lgr.Info().Int("courses", len(data.Courses)).Int("fces", len(data.FCEs)).Msg("Using in-memory record store")
		return memstore.NewRepositories(memstore.New(data)), func() {}, nil
	}

	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	migrator := appMigrations.NewMigrator(database.Pool, lgr)
	if err := migrator.MigrateFromDirectory(ctx, cfg.Database.MigrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if cfg.Database.SeedOnStart && cfg.Database.FixturePath != "" {
		data, err := loadFixture(cfg.Database.FixturePath, lgr)
		if err == nil {
			err = seed.LoadCatalog(ctx, database, data, lgr)
		}
		if err != nil {
			// Serving an unseeded database is still useful.
			lgr.Error().Err(err).Msg("Failed to seed catalog, proceeding anyway...")
		}
	}

	return appRepos.NewRepositories(database.Pool), database.Close, nil
}

func loadFixture(path string, lgr zerolog.Logger) (*memstore.Data, error) {
	if path == "" {
		lgr.Warn().Msg("No fixture configured, starting with an empty catalog")
		return &memstore.Data{}, nil
	}
	data, err := memstore.LoadFile(path)
	if err != nil {
		lgr.Error().Err(err).Str("path", path).Msg("Failed to load catalog fixture")
		return nil, err
	}
	return data, nil
}

// BuildDependencies initializes services, middleware, jobs and controllers over repos.
func BuildDependencies(cfg *config.Config, repos *appRepos.Repositories, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr, Repos: repos}

	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	deps.Cache = snapshot.New(
		snapshot.WithObserver(metrics.SnapshotObserver{}),
		snapshot.WithLogger(lgr.With().Str("component", "snapshot").Logger()),
	)
	listingTTL := helpers.ParseDuration(cfg.Cache.TTL, appServices.DefaultListingTTL)
	deps.Services = appServices.NewServices(repos, deps.Cache, listingTTL)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.JWT.Secret,
		TokenIssuer: cfg.JWT.Issuer,
	})
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	var cleaner jobs.LimiterCleaner
	if cfg.RateLimit.Enabled {
		deps.RateLimiter = appMiddleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, lgr)
		cleaner = deps.RateLimiter
	}

	scheduler, err := jobs.NewScheduler(deps.Services, deps.Cache, cleaner, cfg.Cache.WarmSchedule, lgr)
	if err != nil {
		return nil, err
	}
	deps.Scheduler = scheduler

	deps.Controllers = appRoutes.Controllers{
		Course:  appControllers.NewCourseController(deps.Services.Course),
		Listing: appControllers.NewListingController(deps.Services.Syllabus, deps.Services.Instructor),
		FCE:     appControllers.NewFCEController(deps.Services.FCE),
		Health:  appControllers.NewHealthController(deps.Cache),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	router.Use(
		gin.Recovery(),
		appMiddleware.RequestID(),
		appMiddleware.RequestLogger(lgr.With().Str("component", "http").Logger()),
		metrics.GinMiddleware(),
	)

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.RateLimiter)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router, nil
}

// WarmSnapshots fills the listing snapshots once at startup. Failures are
// logged; the listings recompute on first request.
func WarmSnapshots(ctx context.Context, deps *Dependencies) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := deps.Scheduler.Warm(ctx); err != nil {
		deps.Logger.Warn().Err(err).Msg("Initial snapshot warm-up incomplete")
	}
}
