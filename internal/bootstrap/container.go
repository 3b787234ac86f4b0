package bootstrap

import (
	"context"
	"log"

	"customer-service-be/internal/config"
	"customer-service-be/internal/constant"
	"customer-service-be/internal/controller"
	"customer-service-be/internal/handler"
	"customer-service-be/internal/pkg/logger"
	"customer-service-be/internal/pkg/mailer"
	"customer-service-be/internal/repository/unitofwork"
	"customer-service-be/internal/service"
	"customer-service-be/internal/websocket"
	"customer-service-be/pkg/agent"
	"customer-service-be/pkg/catalog"
	"customer-service-be/pkg/history"
	"customer-service-be/pkg/llm"
	pktNats "customer-service-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController    controller.IChatController
	CatalogController controller.ICatalogController

	// Background services, started by main
	ConsumerService service.IConsumerService
	HandoffNotifier service.IHandoffNotifier

	// Agent console
	AgentConsoleHandler *handler.AgentConsoleHandler
	WebSocketHub        *websocket.Hub

	Logger logger.ILogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	c := &Container{}

	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	c.Logger = sysLogger

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.SMTP.SenderName,
		sysLogger,
	)

	// 2. In-process index queue
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { pubSub.Close() })

	// 3. Model providers
	embeddingProvider, err := NewEmbeddingProvider(cfg)
	if err != nil {
		return nil, err
	}
	llmProvider, err := NewLLMProvider(cfg)
	if err != nil {
		return nil, err
	}

	// 4. Infrastructure
	var (
		natsPub *pktNats.Publisher
		natsSub *pktNats.Subscriber
	)
	nc, js, err := pktNats.Connect(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] NATS unavailable, handoffs are delivered inline: %v", err)
	} else {
		natsPub = pktNats.NewPublisher(js)
		natsSub = pktNats.NewSubscriber(js)
		c.closers = append(c.closers, func() {
			natsSub.Stop()
			nc.Close()
		})
	}

	rdb := NewRedisClient(cfg.App.RedisURL)
	c.closers = append(c.closers, func() { rdb.Close() })

	// 5. Conversation pipeline
	registry := agent.NewRegistry(agent.Dependencies{
		Store:     newHistoryStore(cfg, rdb),
		Searcher:  catalog.NewVectorSearcher(embeddingProvider, uowFactory, cfg.Catalog.SimilarityThreshold),
		Generator: agent.NewLLMGenerator(llmProvider, llm.WithTemperature(cfg.Ai.Temperature)),
		Logger:    sysLogger,
		Config: agent.Config{
			SystemPrompt:    constant.AgentSystemPromptV1,
			SearchLimit:     cfg.Agent.SearchLimit,
			HistoryTimeout:  cfg.Agent.HistoryTimeout,
			SearchTimeout:   cfg.Agent.SearchTimeout,
			LLMTimeout:      cfg.Agent.LLMTimeout,
			PersistRetryMax: cfg.Agent.PersistRetryMax,
		},
	}, cfg.Agent.SessionIdleTTL)

	// 6. Agent console
	wsLogger := logger.NewIsolatedLogger(cfg.App.ConsoleLogFilePath)
	wsHub := websocket.NewHub(rdb, wsLogger)
	hubCtx, stopHub := context.WithCancel(context.Background())
	go wsHub.Run(hubCtx)
	c.closers = append(c.closers, stopHub)

	handoffNotifier := service.NewHandoffNotifier(natsSub, wsHub, emailService, uowFactory, cfg.Handoff.SupportEmail, sysLogger)

	// 7. Services
	var publisher service.EventPublisher
	if natsPub != nil {
		publisher = natsPub
	}
	chatService := service.NewChatService(registry, uowFactory, publisher, handoffNotifier, cfg.Handoff, sysLogger)

	indexer := catalog.NewIndexer(embeddingProvider, uowFactory, sysLogger)
	publisherService := service.NewPublisherService(cfg.Catalog.IndexTopic, pubSub)
	catalogService := service.NewCatalogService(
		catalog.NewVectorSearcher(embeddingProvider, uowFactory, cfg.Catalog.SimilarityThreshold),
		publisherService,
		sysLogger,
	)

	c.ConsumerService = service.NewConsumerService(pubSub, cfg.Catalog.IndexTopic, indexer, sysLogger)
	c.HandoffNotifier = handoffNotifier

	// 8. Controllers
	c.ChatController = controller.NewChatController(chatService)
	c.CatalogController = controller.NewCatalogController(catalogService, cfg.App.JwtSecret)
	c.AgentConsoleHandler = handler.NewAgentConsoleHandler(wsHub, cfg.App.JwtSecret, wsLogger)
	c.WebSocketHub = wsHub

	return c, nil
}

func newHistoryStore(cfg *config.Config, rdb redis.UniversalClient) history.Store {
	if cfg.Agent.HistoryBackend == "memory" {
		log.Printf("[WARN] Using in-memory history store, history is lost on restart")
		return history.NewMemoryStore()
	}
	return history.NewRedisStore(rdb, history.WithTTL(cfg.Agent.HistoryTTL))
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}
