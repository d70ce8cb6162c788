package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/pawmatch/pawmatch-backend/internal/config"
	"github.com/pawmatch/pawmatch-backend/internal/handler"
	"github.com/pawmatch/pawmatch-backend/internal/jobs"
	"github.com/pawmatch/pawmatch-backend/internal/middleware"
	"github.com/pawmatch/pawmatch-backend/internal/migration"
	"github.com/pawmatch/pawmatch-backend/internal/repository"
	"github.com/pawmatch/pawmatch-backend/internal/routes"
	"github.com/pawmatch/pawmatch-backend/internal/service"
	"github.com/pawmatch/pawmatch-backend/internal/ws"
	pkgcache "github.com/pawmatch/pawmatch-backend/pkg/cache"
	"github.com/pawmatch/pawmatch-backend/pkg/jwt"
	"github.com/pawmatch/pawmatch-backend/pkg/lock"
	pkglogger "github.com/pawmatch/pawmatch-backend/pkg/logger"
	pkgredis "github.com/pawmatch/pawmatch-backend/pkg/redis"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const shutdownTimeout = 15 * time.Second

// getConfigPath returns config file path based on APP_ENV
func getConfigPath(env string) string {
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	dotenvFiles := config.LoadDotEnv(env)

	pkglogger.InitStructured(env)
	log := pkglogger.GetLogger()
	log.Info().Str("env", env).Strs("env_files", dotenvFiles).Msg("starting")

	configPath := getConfigPath(env)
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", configPath).Msg("failed to load config")
	}
	config.LogResolved(cfg)

	db, err := initDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := migration.Run(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	// the swipe reconciler relies on the unique pair index
	if err := migration.Verify(db); err != nil {
		log.Fatal().Err(err).Msg("schema verification failed")
	}
	log.Info().Msg("connected to MySQL")

	// Redis is optional: without it the feed is not cached, rate limits are
	// off and notifications stay on this instance.
	redisClient, err := pkgredis.NewClient(pkgredis.Options{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, continuing without it")
		redisClient = nil
	}

	var cacheService pkgcache.Service
	if redisClient != nil {
		cacheService = pkgcache.NewService(redisClient)
	}

	wsHub := ws.NewHub(redisClient)
	go wsHub.Run()

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn, cfg.JWT.RefreshIn)

	locker, err := newLocker(cfg, redisClient)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid lock backend")
	}

	// Repositories
	postRepo := repository.NewPostRepository(db)
	storyRepo := repository.NewStoryRepository(db)
	followRepo := repository.NewFollowRepository(db)
	blockRepo := repository.NewBlockRepository(db)
	interactionRepo := repository.NewInteractionRepository(db)
	petRepo := repository.NewPetRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	matchRepo := repository.NewMatchRepository(db)

	// Services
	feedService := service.NewFeedService(postRepo, storyRepo, followRepo, blockRepo, interactionRepo, cacheService, service.FeedOptions{
		Window:          cfg.FeedWindow(),
		PoolCap:         cfg.Feed.PoolCap,
		SponsorSlot:     cfg.Feed.SponsorSlot,
		StoryCap:        cfg.Feed.StoryCap,
		DefaultPageSize: cfg.Feed.DefaultPageSize,
		MaxPageSize:     cfg.Feed.MaxPageSize,
		CacheTTL:        cfg.FeedCacheTTL(),
	})
	matchService := service.NewMatchService(matchRepo, petRepo, locker, wsHub, service.MatchOptions{
		CandidateCap: cfg.Match.CandidateCap,
		MaxAttempts:  cfg.Match.MaxAttempts,
	})
	petService := service.NewPetService(petRepo)
	socialService := service.NewSocialService(followRepo, blockRepo, feedService)
	postService := service.NewPostService(postRepo, likeRepo, commentRepo, petRepo, followRepo, feedService, wsHub)
	storyService := service.NewStoryService(storyRepo, petRepo, followRepo, blockRepo, feedService)

	// Periodic jobs
	scheduler := jobs.NewScheduler(time.Minute)
	scheduler.Register("story-cleanup", time.Duration(cfg.Jobs.StoryCleanupMinutes)*time.Minute, func(ctx context.Context) error {
		n, err := storyService.PurgeExpired(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			pkglogger.FromContext(ctx).Info().Int64("deleted", n).Msg("expired stories purged")
		}
		return nil
	})
	scheduler.Register("db-stats", time.Minute, func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		middleware.RecordDBStats(sqlDB.Stats())
		return nil
	})

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	allowOrigins := cfg.CORS.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "http://localhost:3000"
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     splitAndTrim(allowOrigins, ","),
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Remaining"},
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	router.Use(middleware.SecurityHeaders())
	if redisClient != nil && !cfg.IsDevelopment() {
		router.Use(middleware.RateLimit(redisClient, middleware.DefaultRateLimitConfig()))
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	probes := map[string]handler.Pinger{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if cacheService != nil {
		probes["redis"] = cacheService.Ping
	}
	router.GET("/health", handler.NewHealthHandler(probes, scheduler).Health)

	routes.Setup(router, routes.Handlers{
		Feed:   handler.NewFeedHandler(feedService),
		Match:  handler.NewMatchHandler(matchService),
		Pet:    handler.NewPetHandler(petService),
		Social: handler.NewSocialHandler(socialService),
		Post:   handler.NewPostHandler(postService),
		Story:  handler.NewStoryHandler(storyService),
		WS:     handler.NewWSHandler(wsHub, cfg.CORS.AllowOrigins),
	}, jwtManager, redisClient)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler.Start(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	scheduler.Stop()
	wsHub.Stop()
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// newLocker picks the pair lock backend. The redis backend is required
// when more than one API instance serves swipes.
func newLocker(cfg *config.Config, redisClient *goredis.Client) (lock.Locker, error) {
	switch cfg.Match.LockBackend {
	case "local":
		return lock.NewKeyedMutex(), nil
	case "redis":
		if redisClient == nil {
			return nil, errors.New("match.lock_backend is redis but redis is unavailable")
		}
		return lock.NewRedisLocker(redisClient, time.Duration(cfg.Match.LockTTLSeconds)*time.Second), nil
	default:
		return nil, fmt.Errorf("unknown match.lock_backend %q", cfg.Match.LockBackend)
	}
}

// splitAndTrim splits s by sep and drops empty parts
func splitAndTrim(s, sep string) []string {
	parts := []string{}
	for _, part := range strings.Split(s, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

// initDB opens MySQL with UTC timestamps and translated driver errors
func initDB(cfg *config.Config) (*gorm.DB, error) {
	mysqlCfg, err := mysqldriver.ParseDSN(cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}
	if mysqlCfg.Params == nil {
		mysqlCfg.Params = map[string]string{}
	}
	mysqlCfg.Params["time_zone"] = "'+00:00'"

	logLevel := gormlogger.Warn
	if cfg.IsDevelopment() {
		logLevel = gormlogger.Info
	}
	db, err := gorm.Open(mysql.Open(mysqlCfg.FormatDSN()), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	return db, nil
}
