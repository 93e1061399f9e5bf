package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"pharmacy-store/internal/models"
	"pharmacy-store/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher is the part of Producer the event publisher needs.
type Publisher interface {
	PublishEvent(ctx context.Context, key string, event interface{}) error
}

// EventPublisher publishes schema and entity events
type EventPublisher struct {
	producer Publisher
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer Publisher) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishSchemaMigrated publishes SchemaMigrated event. All migration events
// share a key so consumers see steps in the order they were applied.
func (ep *EventPublisher) PublishSchemaMigrated(ctx context.Context, event *models.SchemaMigratedEvent) error {
	return ep.producer.PublishEvent(ctx, "schema", event)
}

// PublishEntityChanged publishes EntityChanged event keyed by table and row
func (ep *EventPublisher) PublishEntityChanged(ctx context.Context, event *models.EntityChangedEvent) error {
	key := fmt.Sprintf("%s-%s", event.Table, event.Key)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming events by type
type EventHandler struct {
	onSchemaMigrated func(context.Context, *models.SchemaMigratedEvent) error
	onEntityChanged  func(context.Context, *models.EntityChangedEvent) error
	logger           *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.Named("events")}
}

// OnSchemaMigrated registers a handler for SchemaMigrated events
func (eh *EventHandler) OnSchemaMigrated(handler func(context.Context, *models.SchemaMigratedEvent) error) {
	eh.onSchemaMigrated = handler
}

// OnEntityChanged registers a handler for EntityChanged events
func (eh *EventHandler) OnEntityChanged(handler func(context.Context, *models.EntityChangedEvent) error) {
	eh.onEntityChanged = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	eh.logger.Debug("Handling event",
		zap.String("type", baseEvent.EventType),
		zap.String("id", baseEvent.EventID))

	switch baseEvent.EventType {
	case models.EventTypeSchemaMigrated:
		if eh.onSchemaMigrated != nil {
			var event models.SchemaMigratedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal SchemaMigrated event: %w", err)
			}
			return eh.onSchemaMigrated(ctx, &event)
		}

	case models.EventTypeEntityChanged:
		if eh.onEntityChanged != nil {
			var event models.EntityChangedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal EntityChanged event: %w", err)
			}
			return eh.onEntityChanged(ctx, &event)
		}

	default:
		eh.logger.Warn("Unhandled event type", zap.String("type", baseEvent.EventType))
	}

	return nil
}
