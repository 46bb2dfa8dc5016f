package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/fjod/go_restaurant/internal/cart"
	"github.com/fjod/go_restaurant/internal/domain"
	"github.com/fjod/go_restaurant/internal/storage"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
)

func setupKafka(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	})

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, brokerAddr string) {
	conn, err := kafkaGo.Dial("tcp", brokerAddr)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkaGo.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	require.NoError(t, err)
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafkaGo.TopicConfig{
		Topic:             Topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		t.Logf("topic creation error (may already exist): %v", err)
	}
}

func publish(t *testing.T, brokerAddr string, event OrderPlacedEvent) {
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	w := &kafkaGo.Writer{
		Addr:                   kafkaGo.TCP(brokerAddr),
		Topic:                  Topic,
		Balancer:               &kafkaGo.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	defer w.Close()

	err = w.WriteMessages(context.Background(), kafkaGo.Message{
		Key:   []byte(event.SessionID),
		Value: payload,
	})
	require.NoError(t, err)
}

func TestConsumer_ClearsCartFromKafka(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping kafka integration test in short mode")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	brokerAddr := setupKafka(t)
	createTopic(t, brokerAddr)

	st := storage.NewMemoryStorage()
	manager := cart.NewManager(st, discardLogger())
	store, err := manager.Session(ctx, "session-kafka")
	require.NoError(t, err)
	store.AddItem(ctx, domain.MenuItem{ID: "pho", Name: "Pho", Price: decimal.NewFromInt(9)})

	publish(t, brokerAddr, OrderPlacedEvent{SessionID: "session-kafka", OrderID: "o-77"})

	c := NewConsumer(manager, discardLogger(), brokerAddr)
	defer c.Close()
	go c.Run(ctx)

	require.Eventually(t, func() bool {
		return store.Count() == 0
	}, 30*time.Second, 500*time.Millisecond)

	raw, err := st.Get(ctx, cart.Key("session-kafka"))
	require.NoError(t, err)
	require.Equal(t, "[]", raw)
}
