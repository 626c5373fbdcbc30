package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehdighelich1379/Heart-Disease/internal/domain/event"
	"github.com/mehdighelich1379/Heart-Disease/internal/infrastructure/kafka"
	"github.com/mehdighelich1379/Heart-Disease/pkg/events"
	pkgkafka "github.com/mehdighelich1379/Heart-Disease/pkg/kafka"
	"github.com/mehdighelich1379/Heart-Disease/pkg/observability"
	"github.com/mehdighelich1379/Heart-Disease/pkg/testutil"
)

type fakeProducer struct {
	err      error
	topic    string
	messages []pkgkafka.Message
	calls    int
}

func (f *fakeProducer) Publish(_ context.Context, topic string, messages ...pkgkafka.Message) error {
	f.calls++
	f.topic = topic
	f.messages = append(f.messages, messages...)
	return f.err
}

type unencodableEvent struct {
	events.BaseEvent
	Done chan struct{} `json:"done"`
}

func TestPublisher_Publish(t *testing.T) {
	assessmentID := uuid.New()
	completed := event.NewAssessmentCompleted(assessmentID, testutil.TestTenantID, "mrn-1", "stub", "ternary",
		0.91, "high", "high", false, []string{"cholesterol"}, time.Now())
	highRisk := event.NewHighRiskDetected(assessmentID, testutil.TestTenantID, "mrn-1", 0.91, false,
		[]string{"cholesterol"}, time.Now())

	t.Run("sends one keyed message per event", func(t *testing.T) {
		producer := &fakeProducer{}
		pub := kafka.NewPublisher(producer, "heart.assessments", observability.DiscardLogger())

		require.NoError(t, pub.Publish(context.Background(), completed, highRisk))

		assert.Equal(t, 1, producer.calls)
		assert.Equal(t, "heart.assessments", producer.topic)
		require.Len(t, producer.messages, 2)

		msg := producer.messages[1]
		assert.Equal(t, assessmentID.String(), string(msg.Key))
		assert.Equal(t, event.EventTypeHighRiskDetected, msg.Headers[kafka.HeaderEventType])
		assert.Equal(t, testutil.TestTenantID.String(), msg.Headers[kafka.HeaderTenantID])
		assert.Equal(t, highRisk.EventID().String(), msg.Headers[kafka.HeaderEventID])
		assert.Equal(t, string(msg.Key), string(producer.messages[0].Key), "one assessment, one partition key")

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(msg.Value, &decoded))
		assert.Equal(t, event.EventTypeHighRiskDetected, decoded["event_type"])
		assert.Equal(t, "mrn-1", decoded["subject_ref"])
		assert.InDelta(t, 0.91, decoded["probability"], 1e-9)
	})

	t.Run("no events is a no-op", func(t *testing.T) {
		producer := &fakeProducer{}
		pub := kafka.NewPublisher(producer, "t", observability.DiscardLogger())

		require.NoError(t, pub.Publish(context.Background()))
		assert.Zero(t, producer.calls)
	})

	t.Run("encoding failure sends nothing", func(t *testing.T) {
		producer := &fakeProducer{}
		pub := kafka.NewPublisher(producer, "t", observability.DiscardLogger())

		bad := unencodableEvent{BaseEvent: events.NewBaseEvent("test.bad", assessmentID, event.AggregateType, testutil.TestTenantID, time.Now())}
		err := pub.Publish(context.Background(), completed, bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to encode test.bad event")
		assert.Zero(t, producer.calls)
	})

	t.Run("producer errors are wrapped", func(t *testing.T) {
		producer := &fakeProducer{err: errors.New("leader not available")}
		pub := kafka.NewPublisher(producer, "t", observability.DiscardLogger())

		err := pub.Publish(context.Background(), completed)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to publish events to topic t")
	})
}
