package bootstrap

import (
	"context"
	"log"

	"ai-research-be/internal/config"
	"ai-research-be/internal/constant"
	"ai-research-be/internal/controller"
	"ai-research-be/internal/pkg/logger"
	"ai-research-be/internal/repository/memory"
	"ai-research-be/internal/repository/unitofwork"
	"ai-research-be/internal/service"
	"ai-research-be/internal/websocket"
	"ai-research-be/pkg/agent"
	"ai-research-be/pkg/dedup"
	"ai-research-be/pkg/embedding"
	"ai-research-be/pkg/extractor"
	"ai-research-be/pkg/llm/factory"
	"ai-research-be/pkg/pipeline"
	"ai-research-be/pkg/vectorstore"
	"ai-research-be/pkg/websearch"

	pktNats "ai-research-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	MonitorService  *service.MonitorService

	// WebSockets
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	embeddingProvider := embedding.NewOllamaProvider(
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.EmbeddingModel,
	)
	log.Printf("[INFO] Using Embedding Model: %s", cfg.Ai.EmbeddingModel)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.ChatModel,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.ChatModel)

	store, err := vectorstore.NewVectorStore(cfg.VectorStore.Provider, cfg.VectorStore.FaissURL, db)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize vector store: %v", err)
	}
	log.Printf("[INFO] Using Vector Store: %s", cfg.VectorStore.Provider)

	// 4. Pipeline Components
	dedupEngine := dedup.NewEngine(
		cfg.Dedup.KeepRatio,
		cfg.Dedup.SimilarityThreshold,
		cfg.Dedup.MinSentenceWords,
		sysLogger,
	)
	webClient := websearch.NewClient(sysLogger, websearch.WithRateLimit(cfg.WebSearch.RateLimit))
	chunker := extractor.NewChunker(cfg.WebSearch.ChunkTokens)

	dispatcher := pipeline.NewDispatcher(pipeline.Deps{
		Validator: agent.NewValidator(llmProvider, cfg.Ai.AgentModel, sysLogger),
		Router:    agent.NewRouter(llmProvider, cfg.Ai.AgentModel, sysLogger),
		Planner:   agent.NewPlanner(llmProvider, cfg.Ai.AgentModel, sysLogger),
		Expander:  agent.NewQueryExpander(llmProvider, cfg.Ai.AgentModel, cfg.WebSearch.MaxQueries),
		LLM:       llmProvider,
		Embedder:  embeddingProvider,
		Store:     store,
		Dedup:     dedupEngine,
		Web:       webClient,
		Chunker:   chunker,
		Log:       sysLogger,
	}, pipeline.Config{
		ChatModel:     cfg.Ai.ChatModel,
		VisionModel:   cfg.Ai.VisionModel,
		TopK:          cfg.VectorStore.TopK,
		LinksPerQuery: cfg.WebSearch.LinksPerPage,
		MinChunkLen:   cfg.WebSearch.MinChunkLen,
		WebCollection: constant.WebSearchCollectionName,
	})

	// 5. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

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

	wsLogger := logger.NewIsolatedLogger("logs/stream.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 6. Services
	sessionRepo := memory.NewSessionRepository()
	publisherService := service.NewPublisherService(cfg.App.TranscriptTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.App.TranscriptTopic, uowFactory)
	monitorService := service.NewMonitorService(natsSub, sysLogger)

	chatService := service.NewChatService(
		uowFactory,
		dispatcher,
		publisherService,
		natsPub,
		sessionRepo,
		wsHub,
		sysLogger,
	)

	// 7. Controllers
	chatController := controller.NewChatController(chatService)

	return &Container{
		ChatController:  chatController,
		ConsumerService: consumerService,
		MonitorService:  monitorService,
		WebSocketHub:    wsHub,
	}
}
