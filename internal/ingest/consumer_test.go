package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/edulens/engagement-api/internal/models"
)

type recordingEventRepo struct {
	created []models.LogEvent
}

func (r *recordingEventRepo) Create(_ context.Context, event *models.LogEvent) error {
	r.created = append(r.created, *event)
	return nil
}

func (r *recordingEventRepo) QueryWindow(context.Context, []uint, time.Time, time.Time) ([]models.LogEvent, error) {
	return nil, nil
}

func newTestConsumer(t *testing.T) (*Consumer, *recordingEventRepo) {
	t.Helper()
	repo := &recordingEventRepo{}
	consumer, err := NewConsumer(nil, "platform.activity.events", repo, zerolog.Nop())
	require.NoError(t, err)
	return consumer, repo
}

func TestDecodeValidPayload(t *testing.T) {
	consumer, _ := newTestConsumer(t)

	payload := []byte(`{
		"context_id": 4101,
		"user_id": 7,
		"event_name": "assign.submission_created",
		"crud": "c",
		"occurred_at": "2026-04-03T10:30:00Z",
		"metadata": {"attempt": 1}
	}`)

	event, err := consumer.decode(payload)
	require.NoError(t, err)
	require.Equal(t, uint(4101), event.ContextID)
	require.Equal(t, uint(7), event.UserID)
	require.Equal(t, "assign.submission_created", event.EventName)
	require.Equal(t, models.CRUDCreate, event.CRUD)
	require.Equal(t, time.Date(2026, 4, 3, 10, 30, 0, 0, time.UTC), event.OccurredAt)
	require.Equal(t, float64(1), event.Metadata["attempt"])
}

func TestDecodeRejectsInvalidPayloads(t *testing.T) {
	consumer, _ := newTestConsumer(t)

	cases := map[string]string{
		"not json":          `{`,
		"missing field":     `{"context_id": 1, "user_id": 7, "crud": "c", "occurred_at": "2026-04-03T10:30:00Z"}`,
		"bad crud":          `{"context_id": 1, "user_id": 7, "event_name": "x", "crud": "x", "occurred_at": "2026-04-03T10:30:00Z"}`,
		"zero context":      `{"context_id": 0, "user_id": 7, "event_name": "x", "crud": "c", "occurred_at": "2026-04-03T10:30:00Z"}`,
		"empty event name":  `{"context_id": 1, "user_id": 7, "event_name": "", "crud": "c", "occurred_at": "2026-04-03T10:30:00Z"}`,
		"garbage timestamp": `{"context_id": 1, "user_id": 7, "event_name": "x", "crud": "c", "occurred_at": "not-a-time"}`,
	}

	for name, payload := range cases {
		_, err := consumer.decode([]byte(payload))
		require.Error(t, err, name)
	}
}

func TestStartWithoutConnection(t *testing.T) {
	consumer, _ := newTestConsumer(t)
	require.Error(t, consumer.Start())
}
