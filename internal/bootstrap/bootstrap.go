package bootstrap

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/altklausuren/internal/app/controllers"
	appRepos "github.com/yigit/altklausuren/internal/app/repositories"
	appRoutes "github.com/yigit/altklausuren/internal/app/routes"
	appServices "github.com/yigit/altklausuren/internal/app/services"
	"github.com/yigit/altklausuren/internal/config"
	"github.com/yigit/altklausuren/internal/db"
	appMiddleware "github.com/yigit/altklausuren/internal/middleware"
	pkgAuth "github.com/yigit/altklausuren/internal/pkg/auth"
	"github.com/yigit/altklausuren/internal/pkg/logger"
	"github.com/yigit/altklausuren/internal/pkg/metrics"
	"github.com/yigit/altklausuren/internal/pkg/session"
	"github.com/yigit/altklausuren/web"
)

// ConfigPathEnv overrides the default configuration file location
const ConfigPathEnv = "CONFIG_PATH"

const (
	tokenIssuer          = "altklausuren"
	sessionSweepInterval = 10 * time.Minute
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	ExamService       appServices.ExamService
	SolutionService   appServices.SolutionService
	UploadService     appServices.UploadService
	AuthService       appServices.AuthService
	ExamController    *appControllers.ExamController
	AuthController    *appControllers.AuthController
	UploadController  *appControllers.UploadController
	HealthController  *appControllers.HealthController
	SessionMiddleware *appMiddleware.SessionMiddleware
	Repos             *appRepos.Repositories
	Sessions          session.Store
	Tokens            *pkgAuth.SessionTokenService
	Metrics           *metrics.Metrics
	Assets            fs.FS
	Logger            zerolog.Logger
}

// Close releases resources owned by the dependencies
func (d *Dependencies) Close() error {
	if d.Sessions != nil {
		return d.Sessions.Close()
	}
	return nil
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	if p := os.Getenv(ConfigPathEnv); p != "" {
		configPath = p
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase creates the connection pool and reports whether the store
// answered. An unreachable store is logged and the caller keeps serving;
// queries fail until it comes back.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, bool, error) {
	lgr.Info().Str("host", cfg.Database.Host).Str("port", cfg.Database.Port).Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to create database pool")
		return nil, false, err
	}

	if err := database.Ping(context.Background()); err != nil {
		lgr.Warn().Err(err).Msg("Database not reachable, starting without it")
		return database, false, nil
	}
	lgr.Info().Msg("Database connection successfully established.")

	if cfg.Database.RunMigrations {
		lgr.Info().Msg("Running database migrations...")
		if err := database.RunMigrations(); err != nil {
			lgr.Error().Err(err).Msg("Database migration error, continuing with existing schema")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exams, solutions, err := database.TableCounts(ctx)
	if err != nil {
		lgr.Warn().Err(err).Msg("Could not count stored documents")
	} else {
		lgr.Info().Int64("klausuren", exams).Int64("loesungen", solutions).Msg("Archive contents")
	}

	return database, true, nil
}

// SetupSessionStore selects the configured session backend
func SetupSessionStore(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (session.Store, error) {
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		rdb, err := session.NewRedisClient(ctx, session.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			lgr.Error().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to redis")
			return nil, err
		}
		lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Using redis session store")
		return session.NewRedisStore(rdb, cfg.SessionTTL()), nil
	default:
		lgr.Info().Dur("ttl", cfg.SessionTTL()).Msg("Using in-memory session store")
		return session.NewMemoryStore(cfg.SessionTTL(), sessionSweepInterval), nil
	}
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, sessions session.Store, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Logger:   lgr,
		Sessions: sessions,
		Metrics:  metrics.New(),
	}

	assets, err := web.Assets(cfg.Server.StaticDir)
	if err != nil {
		lgr.Error().Err(err).Str("dir", cfg.Server.StaticDir).Msg("Failed to open static assets")
		return nil, fmt.Errorf("failed to open static assets: %w", err)
	}
	deps.Assets = assets

	deps.Repos = appRepos.NewRepositories(database.Pool)

	deps.Tokens = pkgAuth.NewSessionTokenService(pkgAuth.TokenConfig{
		SecretKey: cfg.Session.Secret,
		Issuer:    tokenIssuer,
	})

	deps.ExamService = appServices.NewExamService(deps.Repos.ExamRepository)
	deps.SolutionService = appServices.NewSolutionService(deps.Repos.SolutionRepository)
	deps.UploadService = appServices.NewUploadService(
		deps.Repos.Transactor,
		cfg.Upload.MaxFileSize,
		logger.WithComponent("upload"),
	)
	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		pkgAuth.NewBcryptHasher(pkgAuth.BcryptCost),
		sessions,
		logger.WithComponent("auth"),
	)

	deps.SessionMiddleware = appMiddleware.NewSessionMiddleware(deps.Tokens, deps.AuthService, appMiddleware.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.SecureCookie,
	})

	deps.ExamController = appControllers.NewExamController(deps.ExamService, deps.SolutionService)
	deps.AuthController = appControllers.NewAuthController(deps.AuthService, deps.SessionMiddleware, deps.Metrics)
	deps.UploadController = appControllers.NewUploadController(deps.UploadService, deps.Metrics, cfg.Upload.MaxFileSize)
	deps.HealthController = appControllers.NewHealthController(database)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.MaxMultipartMemory = cfg.Upload.MaxFileSize
	router.Use(
		appMiddleware.Recovery(),
		appMiddleware.RequestLogger(),
		appMiddleware.Metrics(deps.Metrics),
		deps.SessionMiddleware.LoadSession(),
	)

	appRoutes.SetupRouter(router,
		deps.ExamController,
		deps.AuthController,
		deps.UploadController,
		deps.HealthController,
		deps.SessionMiddleware,
		cfg.Upload.MaxFileSize,
	)
	appRoutes.SetupStatic(router, deps.Assets)
	appRoutes.SetupMetrics(router, deps.Metrics)

	return router
}
