package repository

import (
	"context"

	"titandash/internal/domain/models"
	"titandash/internal/domain/repository"
	pkgkafka "titandash/pkg/kafka"
)

// KafkaPublisher implements Publisher for Kafka.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) PublishPrice(ctx context.Context, symbol string, pd models.PriceData) error {
	return p.producer.Publish(ctx, p.topic, []byte(symbol), map[string]interface{}{
		"symbol": symbol,
		"t":      pd.LastUpdate,
		"c":      pd.Price,
		"v":      pd.Volume24h,
	})
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
