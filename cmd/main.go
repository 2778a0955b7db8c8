package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oksasatya/go-contacts-api/config"
	"github.com/oksasatya/go-contacts-api/internal/container"
	"github.com/oksasatya/go-contacts-api/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/go-contacts-api/internal/infrastructure/postgres"
	"github.com/oksasatya/go-contacts-api/internal/infrastructure/search"
	"github.com/oksasatya/go-contacts-api/internal/router"
	"github.com/oksasatya/go-contacts-api/pkg/helpers"
	"github.com/oksasatya/go-contacts-api/pkg/mailer"
	mailtpl "github.com/oksasatya/go-contacts-api/pkg/mailer/templates"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	container.SetConfig(cfg)
	container.SetLogger(logger)

	jwtManager, err := helpers.NewJWTManager(cfg.JWTSecret)
	if err != nil {
		log.Fatalf("jwt: %v", err)
	}
	container.SetJWT(jwtManager)

	// Storage
	switch cfg.StorageDriver {
	case "memory":
		logger.Warn("STORAGE_DRIVER=memory; data is lost on restart")
		container.SetUserRepo(memory.NewUserRepository())
		container.SetContactStore(memory.NewContactStore())
	default:
		pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{
			DSN:         cfg.PostgresDSN(),
			MaxConns:    cfg.DBMaxConns,
			MinConns:    cfg.DBMinConns,
			MaxConnLife: cfg.DBMaxConnLife,
		})
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()

		// Run migrations using database/sql with pgx stdlib
		if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		container.SetPGPool(pool)
		container.SetUserRepo(pginfra.NewUserRepository(pool))
		container.SetContactStore(pginfra.NewContactStore(pool))
	}

	// Redis backs the rate gate; the gate fails open while it is down
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()
	if err := helpers.PingRedis(ctx, rdb); err != nil {
		helpers.LogWarn(logger, "redis unavailable, rate limits disabled until it recovers", err, logrus.Fields{"addr": cfg.RedisAddr})
	}
	container.SetRedis(rdb)

	// Elasticsearch (optional full-text search)
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		index := search.NewContactIndex(es, cfg.ESContactsIndex)
		if err := index.EnsureIndex(ctx); err != nil {
			helpers.LogError(logger, "ensure contacts index failed", err, logrus.Fields{"index": cfg.ESContactsIndex})
		}
		container.SetES(es)
		container.SetContactIndex(index)
	}

	// GCS (optional avatar storage)
	if cfg.GCSBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			log.Fatalf("failed to init GCS client: %v", err)
		}
		defer func() { _ = gcsClient.Close() }()
		uploader, err := helpers.NewGCSUploader(gcsClient, cfg.GCSBucket)
		if err != nil {
			log.Fatalf("gcs uploader: %v", err)
		}
		container.SetAvatarStorage(uploader)
	}

	// Confirmation mail: queue to the email worker, or log the link
	if cfg.MailSendEnabled {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			log.Fatalf("rabbitmq: %v", err)
		}
		defer pub.Close()
		pub.AppID = cfg.AppName
		branding := mailtpl.Branding{AppName: cfg.AppName, SupportURL: cfg.SupportURL}
		container.SetMailer(mailer.NewQueueSender(pub, cfg.PublicBaseURL, branding, cfg.EmailTokenTTL))
	} else {
		container.SetMailer(mailer.LogMailer{Logger: logger, BaseURL: cfg.PublicBaseURL})
	}

	r := router.NewEngine(cfg)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	// Open sql DB via pgx stdlib
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
