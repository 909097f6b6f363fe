package service

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	emergencyDomain "github.com/medmarket/phiguard/internal/emergency/domain"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		f.records = append(f.records, r)
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

func testGrant() *emergencyDomain.Grant {
	issued := time.Date(2026, 7, 4, 2, 15, 0, 0, time.UTC)
	return &emergencyDomain.Grant{
		ID:        uuid.Must(uuid.NewV7()),
		Grantee:   "rn-1",
		Resource:  "subjects/p-1",
		Reason:    "trauma bay 2",
		IssuedAt:  issued,
		ExpiresAt: issued.Add(emergencyDomain.DefaultWindow),
	}
}

func TestKafkaNotifier(t *testing.T) {
	producer := &fakeProducer{}
	notifier := NewKafkaNotifier(producer, "phiguard.emergency")
	grant := testGrant()

	require.NoError(t, notifier.NotifyEmergencyAccess(context.Background(), grant))
	require.Len(t, producer.records, 1)

	rec := producer.records[0]
	assert.Equal(t, "phiguard.emergency", rec.Topic)
	assert.Equal(t, []byte("subjects/p-1"), rec.Key)

	var n Notification
	require.NoError(t, json.Unmarshal(rec.Value, &n))
	assert.Equal(t, grant.ID.String(), n.GrantID)
	assert.Equal(t, "rn-1", n.Grantee)
	assert.NotContains(t, string(rec.Value), "trauma bay 2")
}

func TestKafkaNotifier_Error(t *testing.T) {
	notifier := NewKafkaNotifier(&fakeProducer{err: assert.AnError}, "t")
	assert.ErrorIs(t, notifier.NotifyEmergencyAccess(context.Background(), testGrant()), assert.AnError)
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	notifier := NewLogNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, notifier.NotifyEmergencyAccess(context.Background(), testGrant()))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "subjects/p-1", line["resource"])
}
