package repository

import (
	"context"
	"encoding/json"

	"github.com/twmb/franz-go/pkg/kgo"

	auditDomain "github.com/medmarket/phiguard/internal/audit/domain"
	apperrors "github.com/medmarket/phiguard/internal/errors"
)

// Producer is the subset of *kgo.Client used by KafkaSink.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaSink publishes entries as JSON records keyed by request ID so that all
// entries of one request land on the same partition.
type KafkaSink struct {
	producer Producer
	topic    string
}

// Name returns the sink name.
func (k *KafkaSink) Name() string {
	return "kafka"
}

// Write produces entry and waits for the broker acknowledgement.
func (k *KafkaSink) Write(ctx context.Context, entry *auditDomain.Entry) error {
	value, err := json.Marshal(entry)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit entry")
	}

	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(entry.RequestID),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "entry-id", Value: []byte(entry.ID.String())},
			{Key: "action", Value: []byte(entry.Action)},
		},
	}

	if err := k.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return apperrors.Wrap(err, "failed to produce audit entry")
	}
	return nil
}

// NewKafkaSink creates a sink producing to topic.
func NewKafkaSink(producer Producer, topic string) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic}
}

// NewKafkaClient creates a franz-go client that requires acknowledgement from
// all in-sync replicas before a write is considered durable.
func NewKafkaClient(brokers []string, topic string) (*kgo.Client, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create kafka client")
	}
	return client, nil
}
