//go:build integration

package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/metaarchitect/research-engine/pkg/eventbus"
	"github.com/metaarchitect/research-engine/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

func setupBrokers(t *testing.T) []string {
	t.Helper()

	ctx := context.Background()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("research-test"),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)

	config := sarama.NewConfig()
	config.Version = sarama.V2_6_0_0

	admin, err := sarama.NewClusterAdmin(brokers, config)
	require.NoError(t, err)

	defer func() {
		_ = admin.Close()
	}()

	err = admin.CreateTopic(events.Topic, &sarama.TopicDetail{NumPartitions: 1, ReplicationFactor: 1}, false)
	require.NoError(t, err)

	return brokers
}

func TestCreateChannel_DeliversResearchEvents(t *testing.T) {
	brokers := setupBrokers(t)

	pub, sub, err := CreateChannel(watermill.NopLogger{}, brokers, "research-test")
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	t.Cleanup(func() { _ = bus.Close() })

	received := make(chan *events.ResearchUnlocked, 1)

	require.NoError(t, bus.Handle(events.ResearchUnlockedEvent, func(_ context.Context, event any) error {
		received <- event.(*events.ResearchUnlocked)

		return nil
	}))
	require.NoError(t, bus.Subscribe(t.Context()))

	require.NoError(t, bus.Publish(t.Context(), "rec1", events.ResearchUnlocked{
		BaseEvent:      events.NewBaseEvent(events.ResearchUnlockedEvent, "wf-1", "rec1"),
		RestoredStatus: "selected",
		Reason:         "Lock cleared manually",
	}))

	select {
	case event := <-received:
		assert.Equal(t, "selected", event.RestoredStatus)
		assert.Equal(t, "wf-1", event.WorkflowID)
	case <-time.After(60 * time.Second):
		t.Fatal("event not delivered")
	}
}
