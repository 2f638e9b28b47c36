package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"campaign-access-service/internal/client"
	"campaign-access-service/internal/model"
	"campaign-access-service/internal/util"
)

// SecurityEventPublisher pushes events onto the security topic.
type SecurityEventPublisher interface {
	PublishSecurityEvent(ctx context.Context, event model.SecurityEvent) error
}

// EventRecorder appends events to the audit store.
type EventRecorder interface {
	Record(event model.SecurityEvent)
}

// KafkaSecurityPublisher publishes security events keyed by login id.
type KafkaSecurityPublisher struct {
	producer *client.KafkaProducer
	topic    string
	logger   *zap.Logger
}

func NewKafkaSecurityPublisher(producer *client.KafkaProducer, topic string, logger *zap.Logger) *KafkaSecurityPublisher {
	return &KafkaSecurityPublisher{producer: producer, topic: topic, logger: logger}
}

func (p *KafkaSecurityPublisher) PublishSecurityEvent(ctx context.Context, event model.SecurityEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal security event: %w", err)
	}

	if err := p.producer.ProduceMessage(ctx, p.topic, []byte(event.LoginID), payload); err != nil {
		return fmt.Errorf("failed to publish security event: %w", err)
	}

	p.logger.Debug("security event published",
		util.String("event_type", event.EventType),
		util.String("login_id", event.LoginID))
	return nil
}
