package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/datatypes"

	"github.com/edulens/engagement-api/internal/models"
	"github.com/edulens/engagement-api/internal/repository"
)

// activityEventSchema guards the event log: payloads arriving from the
// platform bus must carry every field the scoring predicates rely on.
const activityEventSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["context_id", "user_id", "event_name", "crud", "occurred_at"],
  "properties": {
    "context_id": {"type": "integer", "minimum": 1},
    "user_id": {"type": "integer", "minimum": 1},
    "event_name": {"type": "string", "minLength": 1},
    "crud": {"type": "string", "enum": ["c", "r", "u", "d"]},
    "occurred_at": {"type": "string"},
    "metadata": {"type": "object"}
  }
}`

type activityEventMessage struct {
	ContextID  uint                   `json:"context_id"`
	UserID     uint                   `json:"user_id"`
	EventName  string                 `json:"event_name"`
	CRUD       string                 `json:"crud"`
	OccurredAt time.Time              `json:"occurred_at"`
	Metadata   map[string]interface{} `json:"metadata"`
}

// Consumer subscribes to the platform's activity event subject and appends
// validated events to the log. Malformed payloads are logged and dropped;
// the bus redelivers nothing, so there is no retry path.
type Consumer struct {
	conn    *nats.Conn
	subject string
	events  repository.LogEventRepository
	schema  *jsonschema.Schema
	logger  zerolog.Logger
	sub     *nats.Subscription
}

// NewConsumer compiles the payload schema and prepares a consumer.
func NewConsumer(conn *nats.Conn, subject string, events repository.LogEventRepository, logger zerolog.Logger) (*Consumer, error) {
	schema, err := jsonschema.CompileString("activity_event.json", activityEventSchema)
	if err != nil {
		return nil, fmt.Errorf("compile activity event schema: %w", err)
	}

	return &Consumer{
		conn:    conn,
		subject: subject,
		events:  events,
		schema:  schema,
		logger:  logger.With().Str("component", "event_ingest").Logger(),
	}, nil
}

// Start subscribes to the configured subject.
func (c *Consumer) Start() error {
	if c.conn == nil {
		return fmt.Errorf("nats connection is not configured")
	}
	if c.subject == "" {
		return fmt.Errorf("event subject is not configured")
	}

	sub, err := c.conn.Subscribe(c.subject, c.handle)
	if err != nil {
		return fmt.Errorf("subscribe to %q: %w", c.subject, err)
	}
	c.sub = sub

	c.logger.Info().Str("subject", c.subject).Msg("activity event ingestion started")
	return nil
}

// Stop unsubscribes; in-flight handlers finish on their own.
func (c *Consumer) Stop() {
	if c.sub != nil {
		_ = c.sub.Unsubscribe()
		c.sub = nil
	}
}

func (c *Consumer) handle(msg *nats.Msg) {
	event, err := c.decode(msg.Data)
	if err != nil {
		c.logger.Warn().Err(err).Msg("dropping malformed activity event")
		return
	}

	if err := c.events.Create(context.Background(), event); err != nil {
		c.logger.Error().Err(err).
			Uint("context_id", event.ContextID).
			Str("event_name", event.EventName).
			Msg("failed to persist activity event")
	}
}

func (c *Consumer) decode(payload []byte) (*models.LogEvent, error) {
	var document interface{}
	if err := json.Unmarshal(payload, &document); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if err := c.schema.Validate(document); err != nil {
		return nil, fmt.Errorf("validate payload: %w", err)
	}

	var message activityEventMessage
	if err := json.Unmarshal(payload, &message); err != nil {
		return nil, fmt.Errorf("decode event fields: %w", err)
	}
	if message.OccurredAt.IsZero() {
		return nil, fmt.Errorf("occurred_at is not a valid timestamp")
	}

	return &models.LogEvent{
		ContextID:  message.ContextID,
		UserID:     message.UserID,
		EventName:  message.EventName,
		CRUD:       message.CRUD,
		OccurredAt: message.OccurredAt,
		Metadata:   datatypes.JSONMap(message.Metadata),
	}, nil
}
