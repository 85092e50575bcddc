package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-support-agent-be/internal/pkg/logger"
	"ai-support-agent-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// InteractionTopic carries one event per answered query.
const InteractionTopic = "USER_INTERACTION"

// Interaction is one answered user query, recorded for analytics.
type Interaction struct {
	SessionID        string  `json:"session_id"`
	UserMessage      string  `json:"user_message"`
	BotResponse      string  `json:"bot_response"`
	Language         string  `json:"language"`
	ProcessingTimeMs float64 `json:"processing_time_ms"`
	RecordedAt       string  `json:"timestamp"`
}

var _ events.Event = Interaction{}

func (i Interaction) EventType() string {
	return InteractionTopic
}

func (i Interaction) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id":         i.SessionID,
		"language":           i.Language,
		"user_message":       i.UserMessage,
		"bot_response":       i.BotResponse,
		"processing_time_ms": i.ProcessingTimeMs,
		"timestamp":          i.RecordedAt,
	}
}

func (i Interaction) Timestamp() time.Time {
	t, err := time.Parse(time.RFC3339, i.RecordedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// IInteractionRecorder publishes interactions; recording must never block or
// fail the message flow that produced them.
type IInteractionRecorder interface {
	Record(ctx context.Context, interaction Interaction)
}

type interactionRecorder struct {
	pubSub    *gochannel.GoChannel
	topicName string
	logger    logger.ILogger
}

func NewInteractionRecorder(pubSub *gochannel.GoChannel, topicName string, log logger.ILogger) IInteractionRecorder {
	return &interactionRecorder{
		pubSub:    pubSub,
		topicName: topicName,
		logger:    log,
	}
}

func (ir *interactionRecorder) Record(ctx context.Context, interaction Interaction) {
	// Truncate for privacy before anything leaves the handler.
	interaction.UserMessage = truncate(interaction.UserMessage, 200)
	interaction.BotResponse = truncate(interaction.BotResponse, 200)
	if interaction.RecordedAt == "" {
		interaction.RecordedAt = time.Now().Format(time.RFC3339)
	}

	payload, err := json.Marshal(interaction)
	if err != nil {
		ir.logger.Error("InteractionRecorder", "Failed to marshal interaction", map[string]interface{}{"error": err.Error()})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := ir.pubSub.Publish(ir.topicName, msg); err != nil {
		ir.logger.Error("InteractionRecorder", "Failed to publish interaction", map[string]interface{}{"error": err.Error()})
	}
}

// IInteractionConsumerService drains the interaction topic into the
// analytics log.
type IInteractionConsumerService interface {
	Consume(ctx context.Context) error
}

type interactionConsumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	analytics logger.ILogger // isolated file-only logger
	logger    logger.ILogger
}

func NewInteractionConsumerService(pubSub *gochannel.GoChannel, topicName string, analytics, log logger.ILogger) IInteractionConsumerService {
	return &interactionConsumerService{
		pubSub:    pubSub,
		topicName: topicName,
		analytics: analytics,
		logger:    log,
	}
}

func (cs *interactionConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *interactionConsumerService) processMessage(msg *message.Message) {
	var interaction Interaction
	if err := json.Unmarshal(msg.Payload, &interaction); err != nil {
		cs.logger.Error("InteractionConsumer", "Failed to unmarshal interaction", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.analytics.Info("Interaction", "User interaction logged", interaction.Payload())

	msg.Ack()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
