package bootstrap

import (
	"fmt"

	"ai-support-agent-be/internal/config"
	"ai-support-agent-be/internal/handler"
	"ai-support-agent-be/internal/pkg/logger"
	"ai-support-agent-be/internal/service"
	internalWS "ai-support-agent-be/internal/websocket"
	"ai-support-agent-be/pkg/audio"
	"ai-support-agent-be/pkg/audio/whisper"
	"ai-support-agent-be/pkg/knowledge"
	"ai-support-agent-be/pkg/llm"
	"ai-support-agent-be/pkg/llm/factory"
	"ai-support-agent-be/pkg/rag"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Container is the single construction site for the whole process: one
// config value, one logger, everything else wired from them.
type Container struct {
	Logger         logger.ILogger
	Provider       llm.LLMProvider
	KnowledgeStore *knowledge.Store
	Engine         *rag.Engine
	Registry       *internalWS.Registry
	Router         *internalWS.Router
	ChatHandler    *handler.ChatHandler

	// Background services (exposed for main.go to run)
	ConsumerService service.IInteractionConsumerService
}

func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	analyticsLogger := logger.NewIsolatedLogger(cfg.Paths.InteractionLogPath)

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)

	// 3. Generation backend
	provider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.OllamaBaseURL)
	if err != nil {
		return nil, fmt.Errorf("init LLM provider: %w", err)
	}

	// 4. Knowledge base + retrieval
	store := knowledge.NewStore(cfg.Retrieval.ChunkSize, cfg.Ai.LLMModel, sysLogger)
	engine := rag.NewEngine(store, provider, cfg.Ai.Temperature, cfg.Ai.MaxTokens, cfg.Retrieval.TopKResults, sysLogger)

	// 5. Audio capabilities. Synthesis stays disabled regardless of
	// transcription backend; the response path is a documented no-op.
	var transcriber audio.Transcriber
	disabled := audio.NewDisabled(sysLogger)
	if cfg.Audio.WhisperBaseURL != "" {
		transcriber = whisper.NewClient(cfg.Audio.WhisperBaseURL, cfg.Audio.WhisperModel)
		sysLogger.Info("Bootstrap", "Using transcription backend", map[string]interface{}{"base_url": cfg.Audio.WhisperBaseURL})
	} else {
		transcriber = disabled
	}

	// 6. Interaction analytics pipeline
	recorder := service.NewInteractionRecorder(pubSub, service.InteractionTopic, sysLogger)
	consumer := service.NewInteractionConsumerService(pubSub, service.InteractionTopic, analyticsLogger, sysLogger)

	// 7. Session layer
	registry := internalWS.NewRegistry(cfg.Languages.Default, sysLogger)
	router := internalWS.NewRouter(registry, engine, transcriber, disabled, recorder, cfg.Languages, sysLogger)

	chatHandler := handler.NewChatHandler(router, store, registry, sysLogger)

	return &Container{
		Logger:          sysLogger,
		Provider:        provider,
		KnowledgeStore:  store,
		Engine:          engine,
		Registry:        registry,
		Router:          router,
		ChatHandler:     chatHandler,
		ConsumerService: consumer,
	}, nil
}
