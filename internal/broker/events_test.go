package broker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"pharmacy-store/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capture struct {
	keys   []string
	events []interface{}
}

func (c *capture) PublishEvent(ctx context.Context, key string, event interface{}) error {
	c.keys = append(c.keys, key)
	c.events = append(c.events, event)
	return nil
}

func message(t *testing.T, event interface{}) kafka.Message {
	t.Helper()
	b, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Value: b}
}

func TestPublisherKeys(t *testing.T) {
	c := &capture{}
	ep := NewEventPublisher(c)
	ctx := context.Background()

	require.NoError(t, ep.PublishSchemaMigrated(ctx, &models.SchemaMigratedEvent{MigrationID: "0001_create_brand"}))
	require.NoError(t, ep.PublishEntityChanged(ctx, &models.EntityChangedEvent{Table: "cart_items", Key: "7"}))

	assert.Equal(t, []string{"schema", "cart_items-7"}, c.keys)
}

func TestHandleMessageRoutesByType(t *testing.T) {
	eh := NewEventHandler()

	var migrated *models.SchemaMigratedEvent
	var changed *models.EntityChangedEvent
	eh.OnSchemaMigrated(func(ctx context.Context, e *models.SchemaMigratedEvent) error {
		migrated = e
		return nil
	})
	eh.OnEntityChanged(func(ctx context.Context, e *models.EntityChangedEvent) error {
		changed = e
		return nil
	})

	ctx := context.Background()
	err := eh.HandleMessage(ctx, message(t, &models.SchemaMigratedEvent{
		BaseEvent:   models.BaseEvent{EventID: "e1", EventType: models.EventTypeSchemaMigrated, Timestamp: time.Now()},
		MigrationID: "0005_create_product",
	}))
	require.NoError(t, err)
	require.NotNil(t, migrated)
	assert.Equal(t, "0005_create_product", migrated.MigrationID)

	err = eh.HandleMessage(ctx, message(t, &models.EntityChangedEvent{
		BaseEvent: models.BaseEvent{EventID: "e2", EventType: models.EventTypeEntityChanged},
		Entity:    "Product",
		Operation: models.ChangeDeleted,
	}))
	require.NoError(t, err)
	require.NotNil(t, changed)
	assert.Equal(t, "Product", changed.Entity)

	err = eh.HandleMessage(ctx, message(t, &models.BaseEvent{EventType: "SOMETHING_ELSE"}))
	assert.NoError(t, err)

	err = eh.HandleMessage(ctx, kafka.Message{Value: []byte("not json")})
	assert.Error(t, err)
}
