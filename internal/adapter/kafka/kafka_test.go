package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/city-explorer-service/internal/config"
	"github.com/couchcryptid/city-explorer-service/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	fetched := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	ev := domain.RefreshEvent{
		Category:   "weather",
		LocationID: 42,
		Reason:     domain.RefreshStale,
		Records:    8,
		FetchedAt:  fetched,
	}

	msg, err := serializeToMessage(ev)
	require.NoError(t, err)

	assert.Equal(t, []byte("42"), msg.Key)
	assert.JSONEq(t,
		`{"category":"weather","location_id":42,"reason":"stale","records":8,"fetched_at":"2024-04-26T15:10:00Z"}`,
		string(msg.Value))
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "category", msg.Headers[0].Key)
	assert.Equal(t, []byte("weather"), msg.Headers[0].Value)
	assert.Equal(t, "reason", msg.Headers[1].Key)
	assert.Equal(t, []byte("stale"), msg.Headers[1].Value)
	assert.Equal(t, "fetched_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(fetched.Format(time.RFC3339)), msg.Headers[2].Value)
}

func TestNewWriter_UsesRefreshTopic(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaRefreshTopic: "refresh"}
	w := NewWriter(cfg, nil)
	defer func() { _ = w.Close() }()

	assert.Equal(t, "refresh", w.writer.Topic)
	assert.Equal(t, "localhost:9092", w.writer.Addr.String())
}
