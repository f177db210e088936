package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"go-marketplace-ledger/internal/model"
)

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaConfig struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// KafkaPublisher writes every event to a topic, keyed by product id so all
// events of one product land on the same partition in order.
type KafkaPublisher struct {
	writer  messageWriter
	timeout time.Duration
	logger  *zap.Logger
}

func NewKafkaPublisher(cfg KafkaConfig, logger *zap.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}
	return newKafkaPublisher(w, cfg.WriteTimeout, logger)
}

func newKafkaPublisher(w messageWriter, timeout time.Duration, logger *zap.Logger) *KafkaPublisher {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &KafkaPublisher{writer: w, timeout: timeout, logger: logger.Named("kafka")}
}

func encodeMessage(event model.ProductEvent) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatUint(event.ID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "topic", Value: []byte(event.Topic)},
		},
		Time: event.EmittedAt,
	}, nil
}

func (p *KafkaPublisher) Notify(ctx context.Context, event model.ProductEvent) {
	msg, err := encodeMessage(event)
	if err != nil {
		p.logger.Error("encode event", zap.Error(err), zap.Uint64("id", event.ID))
		return
	}

	// The request context may end right after the response is written.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	if err := p.writer.WriteMessages(writeCtx, msg); err != nil {
		p.logger.Warn("publish event failed",
			zap.Error(err),
			zap.String("type", string(event.Type)),
			zap.Uint64("id", event.ID),
		)
	}
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
