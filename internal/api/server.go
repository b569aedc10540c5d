package api

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SundayYogurt/rolematch/config"
	"github.com/SundayYogurt/rolematch/infra/queue"
	"github.com/SundayYogurt/rolematch/internal/api/rest/handlers"
	"github.com/SundayYogurt/rolematch/internal/api/rest/middleware"
	"github.com/SundayYogurt/rolematch/internal/domain"
	"github.com/SundayYogurt/rolematch/internal/metrics"
	"github.com/SundayYogurt/rolematch/internal/repository"
	"github.com/SundayYogurt/rolematch/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ใช้เลขคงที่ตัวเดียวกันทั้งระบบเพื่อ lock งาน migrate
const migrateLockID int64 = 20260222

const applyRateWindow = time.Minute

func StartServer(cfg config.Config, log *logrus.Logger, seed bool) error {
	// ---------- DB ----------
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DatabaseDSN,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return err
	}
	log.Info("database connected")

	if err := migrate(db); err != nil {
		return err
	}
	log.Info("migration successful")

	if seed {
		if err := seedDemoData(db, log); err != nil {
			return err
		}
	}

	// ---------- Infra ----------
	kafkaProducer := queue.NewProducer(
		cfg.Kafka.Broker,
		cfg.Kafka.Topic,
		cfg.Kafka.Username,
		cfg.Kafka.Password,
		log,
	)
	defer kafkaProducer.Close()

	limiter := newApplyLimiter(cfg, log)

	// ---------- Repositories ----------
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)

	// ---------- Services ----------
	authSvc := services.NewAuthService(userRepo, sessionRepo, log)
	catalogSvc := services.NewCatalogService(projectRepo, roleRepo, userRepo, applicationRepo, log)
	applicationSvc := services.NewApplicationService(applicationRepo, roleRepo, userRepo, kafkaProducer, log)

	app := newApp(cfg)
	handlers.NewAuthHandler(authSvc).SetupRoutes(app)
	handlers.NewCatalogHandler(catalogSvc, authSvc).SetupRoutes(app)
	handlers.NewApplicationHandler(applicationSvc, authSvc, limiter, log).SetupRoutes(app)

	// ---------- Listen ----------
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.ServerPort).Info("listening")
		errCh <- app.Listen(cfg.ServerPort)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(ctx)
}

func newApp(cfg config.Config) *fiber.App {
	app := fiber.New(fiber.Config{AppName: "rolematch"})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(metrics.Middleware())

	// ---------- CORS ----------
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.BaseURL,
		AllowHeaders:     "Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowCredentials: cfg.BaseURL != "*",
	}))

	// ---------- Health ----------
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", metrics.Handler())
	return app
}

// migrate runs AutoMigrate under a Postgres advisory lock so that several
// instances starting together do not race on DDL.
func migrate(db *gorm.DB) error {
	return withMigrateLock(db, func(conn *gorm.DB) error {
		return conn.AutoMigrate(
			&domain.User{},
			&domain.AuthToken{},
			&domain.Project{},
			&domain.Role{},
			&domain.RoleApplication{},
		)
	})
}

// withMigrateLock pins one pooled connection for the lock, fn and the unlock.
// Advisory locks belong to the session that took them.
func withMigrateLock(db *gorm.DB, fn func(conn *gorm.DB) error) error {
	return db.Connection(func(conn *gorm.DB) error {
		if err := conn.Exec("SELECT pg_advisory_lock(?)", migrateLockID).Error; err != nil {
			return err
		}
		defer func() {
			_ = conn.Exec("SELECT pg_advisory_unlock(?)", migrateLockID).Error
		}()
		return fn(conn)
	})
}

// newApplyLimiter prefers Redis so limits hold across instances, and falls
// back to an in-process limiter when Redis is absent or unreachable.
func newApplyLimiter(cfg config.Config, log logrus.FieldLogger) middleware.Limiter {
	if cfg.ApplyRateLimit <= 0 {
		return nil
	}
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.WithError(err).Warn("invalid REDIS_URL - using local rate limiter")
		} else {
			client := redis.NewClient(opts)
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			err := client.Ping(ctx).Err()
			if err == nil {
				log.Info("redis rate limiter enabled")
				return middleware.NewRedisLimiter(client, cfg.ApplyRateLimit, applyRateWindow)
			}
			log.WithError(err).Warn("redis unreachable - using local rate limiter")
			_ = client.Close()
		}
	}
	return middleware.NewLocalLimiter(cfg.ApplyRateLimit, applyRateWindow)
}
