package bootstrap

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/scholarhub/internal/app/auth"
	appControllers "github.com/yigit/scholarhub/internal/app/controllers"
	appMigrations "github.com/yigit/scholarhub/internal/app/migrations"
	appRepos "github.com/yigit/scholarhub/internal/app/repositories"
	appRoutes "github.com/yigit/scholarhub/internal/app/routes"
	appServices "github.com/yigit/scholarhub/internal/app/services"
	"github.com/yigit/scholarhub/internal/config"
	"github.com/yigit/scholarhub/internal/db"
	"github.com/yigit/scholarhub/internal/jobs"
	appMiddleware "github.com/yigit/scholarhub/internal/middleware"
	pkgAuth "github.com/yigit/scholarhub/internal/pkg/auth"
	"github.com/yigit/scholarhub/internal/pkg/cache"
	"github.com/yigit/scholarhub/internal/pkg/email"
	"github.com/yigit/scholarhub/internal/pkg/filestorage"
	"github.com/yigit/scholarhub/internal/pkg/helpers"
	"github.com/yigit/scholarhub/internal/pkg/logger"
	"github.com/yigit/scholarhub/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	ApplicationService appServices.ApplicationService
	ReviewService      appServices.ReviewService
	ScholarshipService appServices.ScholarshipService
	RequirementService appServices.RequirementService
	StudentService     appServices.StudentService
	DashboardService   appServices.DashboardService
	AuthService        *appServices.AuthService

	AuthController        *appControllers.AuthController
	ApplicationController *appControllers.ApplicationController
	ReviewController      *appControllers.ReviewController
	ScholarshipController *appControllers.ScholarshipController
	StudentController     *appControllers.StudentController
	HealthController      *appControllers.HealthController
	AuthMiddleware        *appMiddleware.AuthMiddleware

	Repos        *appRepos.Repositories
	JWTService   *pkgAuth.JWTService
	AuthzService *appAuth.AuthorizationService
	FileStorage  *filestorage.LocalStorage
	Cache        cache.Cache
	Notifier     *appServices.Notifier
	Jobs         *jobs.Manager
	Logger       zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.ConfigFromStrings(cfg.Logging.Level, cfg.Logging.Format))
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// migrationSource prefers an on-disk migrations directory and falls back to
// the files compiled into the binary.
func migrationSource(dir string, lgr zerolog.Logger) fs.FS {
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			lgr.Info().Str("path", dir).Msg("Using migrations from directory")
			return os.DirFS(dir)
		}
	}
	return appMigrations.Embedded()
}

// SetupDatabase establishes the database connection, runs migrations and seeds default data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool
	lgr.Info().Msg("Database connection successfully established.")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool, logger.Component("migrations"))
	if err := migrator.Migrate(ctx, migrationSource(cfg.Database.MigrationsDir, lgr)); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	opts := seed.Options{
		AdminUsername: cfg.Seed.AdminUsername,
		AdminPassword: cfg.Seed.AdminPassword,
		SampleData:    cfg.Seed.SampleData,
	}
	if err := seed.CreateDefaultData(ctx, dbPool, opts, logger.Component("seed")); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// setupCache connects to Redis when configured. Without Redis every read goes to the database.
func setupCache(cfg *config.Config, lgr zerolog.Logger) cache.Cache {
	if cfg.Redis.URL == "" {
		lgr.Info().Msg("Redis not configured, catalog caching disabled")
		return cache.NoopCache{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	redisCache, err := cache.NewRedisCache(ctx, cfg.Redis.URL)
	if err != nil {
		lgr.Warn().Err(err).Msg("Redis unavailable, catalog caching disabled")
		return cache.NoopCache{}
	}
	lgr.Info().Msg("Redis cache connected")
	return redisCache
}

// setupNotifier returns nil when no SMTP host is configured, which disables email
func setupNotifier(cfg *config.Config, repos *appRepos.Repositories, lgr zerolog.Logger) *appServices.Notifier {
	if cfg.SMTP.Host == "" {
		lgr.Info().Msg("SMTP not configured, email notifications disabled")
		return nil
	}
	mailer := email.NewEmailService(email.SMTPConfig{
		Host:          cfg.SMTP.Host,
		Port:          cfg.SMTP.Port,
		Username:      cfg.SMTP.Username,
		Password:      cfg.SMTP.Password,
		FromName:      cfg.SMTP.FromName,
		FromEmail:     cfg.SMTP.FromEmail,
		SkipTLSVerify: cfg.SMTP.SkipTLSVerify,
	}, logger.Component("email"))
	return appServices.NewNotifier(repos.ApplicationRepository, mailer)
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Storage.Path)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.Cache = setupCache(cfg, lgr)
	deps.Notifier = setupNotifier(cfg, deps.Repos, lgr)

	deps.AuthzService = appAuth.NewAuthorizationService(deps.Repos.ApplicationRepository)
	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.TokenExpiration, 24*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	catalogTTL := helpers.ParseDuration(cfg.Redis.CatalogTTL, 10*time.Minute)

	deps.AuthService = appServices.NewAuthService(dbPool, deps.Repos, deps.JWTService, logger.Component("auth"))
	deps.ApplicationService = appServices.NewApplicationService(dbPool, deps.Repos, deps.FileStorage, deps.AuthzService, deps.Notifier, cfg.Storage.MaxUploadBytes)
	deps.ReviewService = appServices.NewReviewService(dbPool, deps.Repos, deps.FileStorage, deps.Notifier)
	deps.ScholarshipService = appServices.NewScholarshipService(dbPool, deps.Repos, deps.Cache, catalogTTL)
	deps.RequirementService = appServices.NewRequirementService(dbPool, deps.Repos, deps.FileStorage, deps.Cache)
	deps.StudentService = appServices.NewStudentService(dbPool, deps.Repos)
	deps.DashboardService = appServices.NewDashboardService(deps.Repos)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, lgr)
	deps.ApplicationController = appControllers.NewApplicationController(deps.ApplicationService, cfg.Storage.MaxUploadBytes)
	deps.ReviewController = appControllers.NewReviewController(deps.ReviewService)
	deps.ScholarshipController = appControllers.NewScholarshipController(deps.ScholarshipService, deps.RequirementService)
	deps.StudentController = appControllers.NewStudentController(deps.StudentService, deps.DashboardService)
	deps.HealthController = appControllers.NewHealthController(dbPool)

	deps.Jobs = jobs.NewManager(logger.Component("jobs"))
	sweeper := jobs.NewOrphanUploadSweeper(
		deps.FileStorage,
		deps.Repos.SubmissionRepository,
		helpers.ParseDuration(cfg.Storage.SweepGrace, time.Hour),
		logger.Component("orphan_sweeper"),
	)
	if err := deps.Jobs.Register(cfg.Storage.SweepSchedule, sweeper); err != nil {
		deps.Cache.Close()
		return nil, fmt.Errorf("failed to schedule orphan upload sweep: %w", err)
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(logger.Component("http")), appMiddleware.Metrics())
	// multipart bodies above this spill to temporary files
	router.MaxMultipartMemory = cfg.Storage.MaxUploadBytes + 1<<20

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.ApplicationController,
		deps.ReviewController,
		deps.ScholarshipController,
		deps.StudentController,
		deps.HealthController,
		deps.AuthMiddleware,
		metricsPath,
	)

	return router
}
