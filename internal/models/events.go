package models

import "time"

// Event types
const (
	EventTypeSchemaMigrated = "SCHEMA_MIGRATED"
	EventTypeEntityChanged  = "ENTITY_CHANGED"
)

// Entity change operations
const (
	ChangeUpdated = "UPDATED"
	ChangeDeleted = "DELETED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// SchemaMigratedEvent published after a migration step is applied
type SchemaMigratedEvent struct {
	BaseEvent
	MigrationID string `json:"migration_id"`
	Description string `json:"description"`
}

// EntityChangedEvent published when the admin console edits or deletes a row
type EntityChangedEvent struct {
	BaseEvent
	Entity    string                 `json:"entity"`
	Table     string                 `json:"table"`
	Key       string                 `json:"key"`
	Operation string                 `json:"operation"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}
