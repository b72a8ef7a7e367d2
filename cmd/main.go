package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"homenest/internal/app/store/config"
	"homenest/internal/app/store/handler"
	"homenest/internal/app/store/infrastructure"
	"homenest/internal/app/store/infrastructure/archive"
	"homenest/internal/app/store/infrastructure/messaging"
	"homenest/internal/app/store/repository"
	"homenest/internal/app/store/service"
	"homenest/internal/app/store/util"
	"homenest/pkg/logger"
)

func main() {
	// === КОНФИГУРАЦИЯ И ЛОГГЕР ===
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init("homenest", getLogLevel())

	// === ПОДКЛЮЧЕНИЕ К POSTGRESQL ===
	// gorm для каталога и заказов, pgxpool для пользователей,
	// категорий и обратной связи
	gormDB, err := connectGorm(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database (gorm)")
	}

	pgxPool, err := connectPgx(context.Background(), cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database (pgx)")
	}
	defer pgxPool.Close()
	logger.Info().Msg("connected to PostgreSQL")

	// === ПОДКЛЮЧЕНИЕ К REDIS ===
	// Кэш дерева категорий; без Redis работаем напрямую с БД
	redisClient, err := util.NewRedisClient(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, category cache disabled")
		redisClient = nil
	} else {
		defer redisClient.Close()
		logger.Info().Msg("connected to Redis")
	}

	// === KAFKA PRODUCER ===
	// События ORDER_CREATED, ORDER_STATUS_UPDATED, REVIEW_CREATED
	kafkaProducer := messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer kafkaProducer.Close()
	logger.Info().Str("topic", cfg.Kafka.Topic).Msg("initialized Kafka producer")

	// === АРХИВ ЗАКАЗОВ В MONGODB ===
	// Недоступный архив не блокирует магазин
	var orderArchive *archive.MongoArchive
	archiveCtx, cancelArchive := context.WithTimeout(context.Background(), 15*time.Second)
	orderArchive, err = archive.NewMongoArchive(archiveCtx, cfg.Mongo.URI, cfg.Mongo.Database)
	cancelArchive()
	if err != nil {
		logger.Warn().Err(err).Msg("mongodb unavailable, order archiving disabled")
		orderArchive = nil
	} else {
		defer orderArchive.Close(context.Background())
		logger.Info().Msg("connected to MongoDB archive")
	}

	// === РЕПОЗИТОРИИ ===
	productRepo := repository.NewProductRepository(gormDB)
	categoryRepo := repository.NewCategoryRepository(pgxPool)
	orderRepo := repository.NewOrderRepository(gormDB)
	reviewRepo := repository.NewReviewRepository(gormDB)
	notificationRepo := repository.NewNotificationRepository(gormDB)
	userRepo := repository.NewUserRepository(pgxPool)
	contactRepo := repository.NewContactRepository(pgxPool)
	addressRepo := repository.NewAddressRepository(gormDB)
	wishlistRepo := repository.NewWishlistRepository(gormDB)
	testimonialRepo := repository.NewTestimonialRepository(gormDB)

	// === БИЗНЕС-ЛОГИКА ===
	jwtManager := util.NewJWTManager(cfg.JWT.Secret, cfg.JWT.TokenDuration)

	catalogService := service.NewCatalogService(productRepo, categoryRepo, redisClient)
	orderService := service.NewOrderService(orderRepo, productRepo, userRepo, kafkaProducer, archiverOrNil(orderArchive), cfg.WhatsApp.Phone)
	authService := service.NewAuthService(userRepo, jwtManager)
	reviewService := service.NewReviewService(reviewRepo, kafkaProducer)
	accountService := service.NewAccountService(addressRepo, wishlistRepo, notificationRepo, productRepo)
	supportService := service.NewSupportService(contactRepo, testimonialRepo)

	// === HTTP HANDLERS И МАРШРУТЫ ===
	handlers := handler.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Catalog: handler.NewCatalogHandler(catalogService),
		Order:   handler.NewOrderHandler(orderService),
		Review:  handler.NewReviewHandler(reviewService),
		Account: handler.NewAccountHandler(accountService),
		Support: handler.NewSupportHandler(supportService),
	}
	authMiddleware := handler.NewAuthMiddleware(jwtManager)
	router := handler.SetupRoutes(handlers, authMiddleware)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.Address()).Msg("starting homenest")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// === GRACEFUL SHUTDOWN ===
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("stopped gracefully")
}

// archiverOrNil не дает типизированному nil-указателю попасть в интерфейс
func archiverOrNil(a *archive.MongoArchive) infrastructure.OrderArchiver {
	if a == nil {
		return nil
	}
	return a
}

// connectGorm подключает gorm с повторными попытками.
// При старте в Docker PostgreSQL может быть еще не готов.
func connectGorm(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
			Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
			TranslateError: true,
		})
		if err == nil {
			return db, nil
		}
		logger.Warn().Err(err).Int("attempt", i+1).Msg("database connection failed, retrying")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}

// connectPgx подключает пул pgx с повторными попытками
func connectPgx(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 5 * time.Minute
	poolConfig.MaxConnIdleTime = time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	var pool *pgxpool.Pool
	for i := 0; i < 10; i++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		logger.Warn().Err(err).Int("attempt", i+1).Msg("database connection failed, retrying")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}

func getLogLevel() string {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		return level
	}
	return "info"
}
