package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"ai-support-agent-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingLogger struct {
	logger.NopLogger

	mu      sync.Mutex
	entries []map[string]interface{}
}

func (c *capturingLogger) Info(module, message string, details map[string]interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, details)
}

func (c *capturingLogger) waitForEntry(t *testing.T) map[string]interface{} {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		if len(c.entries) > 0 {
			entry := c.entries[0]
			c.mu.Unlock()
			return entry
		}
		c.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("no analytics entry arrived")
	return nil
}

func newRawMessage(payload string) *message.Message {
	return message.NewMessage(watermill.NewUUID(), []byte(payload))
}

func newPubSub(t *testing.T) *gochannel.GoChannel {
	t.Helper()
	ps := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { ps.Close() })
	return ps
}

func TestRecorderAndConsumerRoundTrip(t *testing.T) {
	pubSub := newPubSub(t)
	analytics := &capturingLogger{}

	consumer := NewInteractionConsumerService(pubSub, InteractionTopic, analytics, logger.NopLogger{})
	require.NoError(t, consumer.Consume(context.Background()))

	recorder := NewInteractionRecorder(pubSub, InteractionTopic, logger.NopLogger{})
	recorder.Record(context.Background(), Interaction{
		SessionID:        "s1",
		UserMessage:      "where is my order",
		BotResponse:      "it shipped yesterday",
		Language:         "en",
		ProcessingTimeMs: 12.34,
	})

	entry := analytics.waitForEntry(t)
	assert.Equal(t, "s1", entry["session_id"])
	assert.Equal(t, "where is my order", entry["user_message"])
	assert.Equal(t, "it shipped yesterday", entry["bot_response"])
	assert.Equal(t, "en", entry["language"])
	assert.Equal(t, 12.34, entry["processing_time_ms"])
	assert.NotEmpty(t, entry["timestamp"])
}

func TestRecordTruncatesLongMessages(t *testing.T) {
	pubSub := newPubSub(t)
	analytics := &capturingLogger{}

	consumer := NewInteractionConsumerService(pubSub, InteractionTopic, analytics, logger.NopLogger{})
	require.NoError(t, consumer.Consume(context.Background()))

	recorder := NewInteractionRecorder(pubSub, InteractionTopic, logger.NopLogger{})
	recorder.Record(context.Background(), Interaction{
		SessionID:   "s1",
		UserMessage: strings.Repeat("a", 500),
		BotResponse: strings.Repeat("b", 201),
		Language:    "en",
	})

	entry := analytics.waitForEntry(t)
	assert.Len(t, entry["user_message"], 200)
	assert.Len(t, entry["bot_response"], 200)
}

func TestConsumerSkipsInvalidPayloads(t *testing.T) {
	pubSub := newPubSub(t)
	analytics := &capturingLogger{}

	consumer := NewInteractionConsumerService(pubSub, InteractionTopic, analytics, logger.NopLogger{})
	require.NoError(t, consumer.Consume(context.Background()))

	// An invalid payload must be acked and dropped, not wedge the stream.
	require.NoError(t, pubSub.Publish(InteractionTopic, newRawMessage("{not json")))

	recorder := NewInteractionRecorder(pubSub, InteractionTopic, logger.NopLogger{})
	recorder.Record(context.Background(), Interaction{SessionID: "after-bad", Language: "en"})

	entry := analytics.waitForEntry(t)
	assert.Equal(t, "after-bad", entry["session_id"])
}

func TestInteractionEventContract(t *testing.T) {
	i := Interaction{
		SessionID:  "s1",
		Language:   "fr",
		RecordedAt: "2026-09-01T10:00:00Z",
	}

	assert.Equal(t, InteractionTopic, i.EventType())
	assert.Equal(t, "fr", i.Payload()["language"])
	assert.Equal(t, 2026, i.Timestamp().Year())
	assert.True(t, Interaction{}.Timestamp().IsZero())
}
