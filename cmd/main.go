package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"touristiq/iqhub/internal/codegen"
	"touristiq/iqhub/internal/config"
	"touristiq/iqhub/internal/events"
	"touristiq/iqhub/internal/handler"
	"touristiq/iqhub/internal/model"
	"touristiq/iqhub/internal/ratelimit"
	"touristiq/iqhub/internal/repository"
	"touristiq/iqhub/internal/service"
	"touristiq/iqhub/pkg/crypto"
	jwtpkg "touristiq/iqhub/pkg/jwt"
)

type repositories struct {
	codes    repository.IQCodeRepository
	credits  repository.CreditRepository
	otcs     repository.OneTimeCodeRepository
	recovery repository.RecoveryRepository
	feedback repository.FeedbackRepository
	partners repository.PartnerRepository
}

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	// 1. Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	// 2. Initialize logger
	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	// 3. Open the relational store (PostgreSQL or in-memory)
	var repos repositories
	switch cfg.Storage.Backend {
	case "postgres":
		db, err := config.NewPostgresDB(cfg.Database.Postgres)
		if err != nil {
			logger.Fatal("failed to connect to postgres", zap.Error(err))
		}
		if cfg.Database.Postgres.AutoMigrate {
			if err := model.AutoMigrate(db); err != nil {
				logger.Fatal("failed to auto-migrate", zap.Error(err))
			}
			logger.Info("database migration completed")
		}
		repos = repositories{
			codes:    repository.NewPGIQCodeRepository(db),
			credits:  repository.NewPGCreditRepository(db),
			otcs:     repository.NewPGOneTimeCodeRepository(db),
			recovery: repository.NewPGRecoveryRepository(db),
			feedback: repository.NewPGFeedbackRepository(db),
			partners: repository.NewPGPartnerRepository(db),
		}
	case "memory":
		mem := repository.NewMemoryDB()
		repos = repositories{
			codes:    repository.NewMemoryIQCodeRepository(mem),
			credits:  repository.NewMemoryCreditRepository(mem),
			otcs:     repository.NewMemoryOneTimeCodeRepository(mem),
			recovery: repository.NewMemoryRecoveryRepository(mem),
			feedback: repository.NewMemoryFeedbackRepository(mem),
			partners: repository.NewMemoryPartnerRepository(mem),
		}
		logger.Warn("using in-memory storage, data is lost on restart")
	default:
		logger.Fatal("unknown storage backend", zap.String("backend", cfg.Storage.Backend))
	}

	// 4. Initialize session store and rate limiter (Redis or in-memory)
	var (
		sessionStore repository.SessionStore
		redisClient  *redis.Client
	)
	switch cfg.State.Backend {
	case "redis":
		redisClient, err = config.NewRedisClient(cfg.Database.Redis)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
		sessionStore = repository.NewRedisSessionStore(redisClient)
		logger.Info("using Redis state store")
	case "memory":
		sessionStore = repository.NewMemorySessionStore()
		logger.Info("using in-memory state store")
	default:
		logger.Fatal("unknown state backend", zap.String("backend", cfg.State.Backend))
	}

	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		settings := ratelimit.Settings{
			Capacity:       cfg.RateLimit.Capacity,
			RefillTokens:   cfg.RateLimit.RefillTokens,
			RefillInterval: cfg.RateLimit.RefillInterval,
			TTL:            cfg.RateLimit.TTL,
			Prefix:         cfg.RateLimit.Prefix,
		}
		if redisClient != nil {
			limiter = ratelimit.NewRedisLimiter(redisClient, settings)
		} else {
			limiter = ratelimit.NewMemoryLimiter(settings)
		}
	}

	// 5. Event publisher
	publisher := events.NewNoopPublisher()
	if cfg.Events.Enabled {
		publisher, err = events.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.DiscountQueue, cfg.Events.FeedbackQueue, logger)
		if err != nil {
			logger.Fatal("failed to connect to rabbitmq", zap.Error(err))
		}
		logger.Info("publishing domain events", zap.String("discount_queue", cfg.Events.DiscountQueue))
	}
	defer publisher.Close()

	// 6. Session signing and recovery sealing keys
	signingKey := cfg.Session.SigningKey
	if signingKey == "" {
		if signingKey, err = crypto.GenerateRandomString(32); err != nil {
			logger.Fatal("failed to generate session key", zap.Error(err))
		}
		logger.Warn("session.signing_key not set, sessions will not survive a restart")
	}
	jwtManager := jwtpkg.NewManager(signingKey, cfg.Session.Issuer, cfg.Session.TTL)

	sealKey := cfg.Recovery.SealKey
	if sealKey == "" {
		if sealKey, err = crypto.GenerateSealKey(); err != nil {
			logger.Fatal("failed to generate seal key", zap.Error(err))
		}
		logger.Warn("recovery.seal_key not set, using a throwaway key for the in-memory store")
	}
	sealer, err := crypto.NewSealer(sealKey)
	if err != nil {
		logger.Fatal("invalid recovery.seal_key", zap.Error(err))
	}

	// 7. Initialize services
	generator := codegen.New()
	sessionService := service.NewSessionService(repos.codes, sessionStore, jwtManager)
	codeService := service.NewCodeService(repos.codes, generator, cfg.OTC.InitialUses, logger)
	creditService := service.NewCreditService(repos.codes, repos.credits, logger)
	otcService := service.NewOTCService(repos.otcs, repos.codes, repos.partners, generator, publisher, logger)
	recoveryService := service.NewRecoveryService(repos.recovery, sealer, logger)
	feedbackService := service.NewFeedbackService(repos.feedback, repos.otcs, publisher, logger)
	partnerService := service.NewPartnerService(repos.partners, repos.codes, repos.feedback)

	if err := bootstrapAdmin(context.Background(), cfg.Admin, repos.codes, creditService); err != nil {
		logger.Fatal("failed to bootstrap admin", zap.Error(err))
	}

	// 8. Initialize handlers and router
	router := handler.SetupRouter(cfg, logger, sessionService, limiter, handler.Handlers{
		Auth:     handler.NewAuthHandler(sessionService, cfg.Session, logger),
		Admin:    handler.NewAdminHandler(codeService, creditService, feedbackService, logger),
		Issuer:   handler.NewIssuerHandler(codeService, creditService, logger),
		Tourist:  handler.NewTouristHandler(otcService, feedbackService, partnerService, logger),
		Partner:  handler.NewPartnerHandler(otcService, partnerService, feedbackService, logger),
		Recovery: handler.NewRecoveryHandler(recoveryService, logger),
	})

	// 9. Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 10. Start server with graceful shutdown
	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited gracefully")
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zc.Level = level
	}
	return zc.Build()
}

// bootstrapAdmin creates the configured admin code and its credit package
// on first start. Both steps are idempotent.
func bootstrapAdmin(ctx context.Context, cfg config.AdminConfig, codes repository.IQCodeRepository, credits service.CreditService) error {
	if cfg.BootstrapCode == "" {
		return nil
	}
	err := codes.Create(ctx, &model.IQCode{
		Code:      cfg.BootstrapCode,
		Role:      model.RoleAdmin,
		IsActive:  true,
		Status:    model.CodeStatusApproved,
		CodeType:  model.CodeTypeProfessional,
		CreatedBy: "system",
	})
	if err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return err
	}
	if cfg.InitialCredits > 0 {
		return credits.Seed(ctx, cfg.BootstrapCode, cfg.InitialCredits)
	}
	return nil
}
