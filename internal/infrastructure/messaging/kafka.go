package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"theralink/config"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"
)

const (
	TopicBooking = "booking"
	TopicPayment = "payment"
	TopicWallet  = "wallet"
)

// Domain event types
const (
	EventBookingRequested = "booking.requested"
	EventBookingAccepted  = "booking.accepted"
	EventBookingRejected  = "booking.rejected"
	EventBookingCancelled = "booking.cancelled"
	EventPaymentCompleted = "payment.completed"
	EventPaymentFailed    = "payment.failed"
	EventWalletCredited   = "wallet.credited"
	EventWalletWithdrawn  = "wallet.withdrawn"
)

// Envelope is the JSON value written for every event.
type Envelope struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

type EventPublisher interface {
	Publish(ctx context.Context, topic, key, eventType string, data interface{}) error
	Close() error
}

type kafkaPublisher struct {
	producer sarama.SyncProducer
	prefix   string
	log      *logrus.Logger
}

// NewEventPublisher returns a no-op publisher when Kafka is disabled.
func NewEventPublisher(cfg config.KafkaConfig, log *logrus.Logger) (EventPublisher, error) {
	if !cfg.Enabled {
		log.Info("Kafka producer is disabled in configuration")
		return NewNoopPublisher(), nil
	}

	saramaCfg := sarama.NewConfig()
	saramaCfg.ClientID = cfg.ClientID
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Producer.Retry.Max = 3
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Net.DialTimeout = 5 * time.Second
	saramaCfg.Net.ReadTimeout = 10 * time.Second
	saramaCfg.Net.WriteTimeout = 10 * time.Second

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return NewKafkaPublisher(producer, cfg.TopicPrefix, log), nil
}

func NewKafkaPublisher(producer sarama.SyncProducer, prefix string, log *logrus.Logger) EventPublisher {
	return &kafkaPublisher{
		producer: producer,
		prefix:   prefix,
		log:      log,
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, topic, key, eventType string, data interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	value, err := json.Marshal(Envelope{
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
	if err != nil {
		p.log.Warnf("Failed to marshal event %s: %+v", eventType, err)
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic(topic),
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(value),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.log.Warnf("Failed to send event %s to %s: %+v", eventType, msg.Topic, err)
		return err
	}

	p.log.WithFields(logrus.Fields{
		"topic":     msg.Topic,
		"event":     eventType,
		"partition": partition,
		"offset":    offset,
	}).Debug("Event published")

	return nil
}

func (p *kafkaPublisher) topic(name string) string {
	if p.prefix == "" {
		return name
	}
	return p.prefix + "." + name
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

type noopPublisher struct{}

func NewNoopPublisher() EventPublisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, string, string, string, interface{}) error {
	return nil
}

func (noopPublisher) Close() error {
	return nil
}
