package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/ledgerworks/funds-transfer-service/src/internal/domain"
)

// Verify that KafkaPublisher implements the publisher contract
var _ domain.TransactionEventPublisher = (*KafkaPublisher)(nil)

// KafkaPublisher writes transaction events to a kafka topic, keyed by account
// id so all events of one account stay on one partition, in order.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (p *KafkaPublisher) PublishTransaction(ctx context.Context, event domain.TransactionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal transaction event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.AccountID),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("publish transaction event: %w", err)
	}

	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
