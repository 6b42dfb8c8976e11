package bootstrap

import (
	"context"
	"log"

	"ai-survey-be/internal/config"
	"ai-survey-be/internal/constant"
	"ai-survey-be/internal/controller"
	"ai-survey-be/internal/pkg/logger"
	"ai-survey-be/internal/pkg/mailer"
	"ai-survey-be/internal/repository/memory"
	"ai-survey-be/internal/repository/unitofwork"
	"ai-survey-be/internal/service"
	"ai-survey-be/pkg/llm"
	"ai-survey-be/pkg/proxyclient"
	"ai-survey-be/pkg/ratelimit"

	pkgNats "ai-survey-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	SurveyController   controller.ISurveyController
	GenerateController controller.IGenerateController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS, optional: the survey works without external subscribers
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Rate-limit counters: in-memory for a single instance, Redis when
	// several instances share the limits
	var counterStore ratelimit.CounterStore
	if cfg.RateLimit.Store == "redis" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		counterStore = ratelimit.NewRedisStore(rdb)
		log.Printf("[INFO] Using rate-limit store: REDIS")
	} else {
		counterStore = ratelimit.NewMemoryStore()
		log.Printf("[INFO] Using rate-limit store: MEMORY")
	}
	limiter := ratelimit.NewLimiter(counterStore, cfg.RateLimit.PerMinute, cfg.RateLimit.PerHour)

	// In-memory session state, expires with the session timeout
	stateRepo := memory.NewSessionStateRepository()

	// The generate endpoint is the only holder of the model credential
	llmProvider := llm.NewGeminiProvider(cfg.Keys.GoogleGemini)
	proxyClient := proxyclient.NewClient(cfg.Keys.GenerateURL)

	// 3. Services
	publisherService := service.NewPublisherService(constant.TopicSessionCompleted, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		constant.TopicSessionCompleted,
		emailService,
		natsPub,
	)

	surveyService := service.NewSurveyService(
		uowFactory,
		stateRepo,
		proxyClient,
		publisherService,
		sysLogger,
	)

	// 4. Controllers
	return &Container{
		SurveyController: controller.NewSurveyController(surveyService),
		GenerateController: controller.NewGenerateController(
			llmProvider,
			limiter,
			cfg.App.AllowedOrigins(),
			sysLogger,
		),

		ConsumerService: consumerService,
		Logger:          sysLogger,
	}
}
