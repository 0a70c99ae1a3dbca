package clients

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/redditpersona/config"
	"github.com/spacesedan/redditpersona/internal/models"
)

// KafkaPublisher emits one AnalysisEvent per finished analysis.
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaPublisher(cfg config.EventsConfig) (*KafkaPublisher, error) {
	slog.Info("[KafkaClient] Initializing Kafka Producer...", slog.String("broker", cfg.Broker))

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":   cfg.Broker,
		"security.protocol":   "PLAINTEXT",
		"api.version.request": "true",
		"enable.idempotence":  true,
		"acks":                "all",
	})
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create producer: %w", err)
	}

	kp := &KafkaPublisher{producer: p, topic: cfg.Topic}
	go kp.watchDeliveries()

	slog.Info("[KafkaClient] Kafka Producer initialized successfully", slog.String("topic", cfg.Topic))
	return kp, nil
}

func (kp *KafkaPublisher) watchDeliveries() {
	for e := range kp.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				slog.Warn("[KafkaClient] Delivery failed",
					slog.String("key", string(ev.Key)),
					slog.String("error", ev.TopicPartition.Error.Error()))
			}
		case kafka.Error:
			slog.Warn("[KafkaClient] Producer error", slog.String("error", ev.Error()))
		}
	}
}

// Publish enqueues the event keyed by username. Delivery is reported asynchronously.
func (kp *KafkaPublisher) Publish(event models.AnalysisEvent) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	topic := kp.topic
	err = kp.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.Username),
		Value:          jsonData,
	}, nil)
	if err != nil {
		return fmt.Errorf("[KafkaClient] failed to produce analysis event: %w", err)
	}

	slog.Info("[KafkaClient] Published analysis event",
		slog.String("topic", topic),
		slog.String("event_id", event.ID),
		slog.String("username", event.Username))
	return nil
}

func (kp *KafkaPublisher) Close() {
	slog.Info("[KafkaClient] Shutting down Kafka producer...")
	if remaining := kp.producer.Flush(5000); remaining > 0 {
		slog.Warn("[KafkaClient] Not all messages were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	kp.producer.Close()
	slog.Info("[KafkaClient] Kafka producer shut down")
}
