// Package service provides data subject notifiers for emergency grants.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	emergencyDomain "github.com/medmarket/phiguard/internal/emergency/domain"
	apperrors "github.com/medmarket/phiguard/internal/errors"
)

// Notification is the message published for each emergency grant. The reason
// is omitted; subjects read it through their audit trail.
type Notification struct {
	GrantID   string    `json:"grantId"`
	Resource  string    `json:"resource"`
	Grantee   string    `json:"grantee"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func newNotification(grant *emergencyDomain.Grant) Notification {
	return Notification{
		GrantID:   grant.ID.String(),
		Resource:  grant.Resource,
		Grantee:   grant.Grantee,
		IssuedAt:  grant.IssuedAt,
		ExpiresAt: grant.ExpiresAt,
	}
}

// Producer is the subset of *kgo.Client used by KafkaNotifier.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaNotifier publishes notifications keyed by resource for the messaging service.
type KafkaNotifier struct {
	producer Producer
	topic    string
}

// NewKafkaNotifier creates a notifier producing to topic.
func NewKafkaNotifier(producer Producer, topic string) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, topic: topic}
}

// NotifyEmergencyAccess produces one record and waits for the acknowledgement.
func (k *KafkaNotifier) NotifyEmergencyAccess(ctx context.Context, grant *emergencyDomain.Grant) error {
	value, err := json.Marshal(newNotification(grant))
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal emergency notification")
	}

	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(grant.Resource),
		Value: value,
	}
	if err := k.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return apperrors.Wrap(err, "failed to produce emergency notification")
	}
	return nil
}

// LogNotifier writes notifications to the application log.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier for deployments without a messaging service.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// NotifyEmergencyAccess logs the notification at warn level.
func (l *LogNotifier) NotifyEmergencyAccess(_ context.Context, grant *emergencyDomain.Grant) error {
	l.logger.Warn("emergency access granted",
		slog.String("grant_id", grant.ID.String()),
		slog.String("resource", grant.Resource),
		slog.String("grantee", grant.Grantee),
		slog.Time("expires_at", grant.ExpiresAt),
	)
	return nil
}
