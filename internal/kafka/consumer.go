package kafka

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/segmentio/kafka-go"

	"alert-service/internal/logging"
	"alert-service/internal/market"
)

// tick is the wire format of a market tick message.
type tick struct {
	Asset string   `json:"asset"`
	Value *float64 `json:"value"`
}

// Consumer reads market tick messages and feeds the market cache.
type Consumer struct {
	reader *kafka.Reader
	cache  *market.Cache
	logger *logging.Logger
}

// NewConsumer constructs a consumer for the given brokers and topic.
func NewConsumer(brokers []string, topic, groupID string, cache *market.Cache, logger *logging.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})
	return &Consumer{reader: reader, cache: cache, logger: logger}
}

// Start consumes until the context is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	c.logger.Infof("Kafka market consumer started")
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Infof("Kafka market consumer stopped")
				return
			}
			c.logger.Errorf("Read message failed: %v", err)
			continue
		}

		var t tick
		if err := json.Unmarshal(msg.Value, &t); err != nil {
			c.logger.Errorf("Unmarshal tick failed: %v", err)
			continue
		}
		if t.Asset == "" || t.Value == nil {
			c.logger.Errorf("Invalid tick: missing asset or value")
			continue
		}

		c.cache.Put(t.Asset, *t.Value)
		c.logger.Debugf("Tick %s = %f", t.Asset, *t.Value)
	}
}

// Close releases the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
